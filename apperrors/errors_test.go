package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOfCodes(t *testing.T) {
	tests := map[Code]Kind{
		CodeRestaurantNotFound:   KindNotFound,
		CodeProductNotFound:      KindNotFound,
		CodeOrderNotFound:        KindNotFound,
		CodeForbidden:            KindForbidden,
		CodeInvalidProductLine:   KindInvalidInput,
		CodeProductUnavailable:   KindProductUnavailable,
		CodeCrossRestaurantOrder: KindCrossRestaurantOrder,
		CodeOrderAlreadyStarted:  KindInvalidTransition,
		CodeImmutableField:       KindImmutableField,
		Code("Unknown"):          KindInternal,
	}
	for code, kind := range tests {
		assert.Equal(t, kind, KindOf(New(code, "x")), "code %s", code)
	}
}

func TestAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("creating order: %w", ForProduct(CodeProductUnavailable, 7, "product %d is not available", 7))

	rej, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, uint(7), rej.ProductID)
	assert.True(t, Is(err, CodeProductUnavailable))
	assert.False(t, Is(err, CodeProductNotFound))
}

func TestUntypedErrorsAreInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("failed to store order", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, KindInternal, err.Kind())
}
