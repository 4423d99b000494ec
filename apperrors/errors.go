// Package apperrors defines the typed rejections returned by the order rules.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind is the broad class of a rejection, used to pick a transport status.
type Kind string

const (
	KindNotFound             Kind = "NotFound"
	KindForbidden            Kind = "Forbidden"
	KindInvalidInput         Kind = "InvalidInput"
	KindProductUnavailable   Kind = "ProductUnavailable"
	KindCrossRestaurantOrder Kind = "CrossRestaurantOrder"
	KindInvalidTransition    Kind = "InvalidTransition"
	KindImmutableField       Kind = "ImmutableField"
	KindInternal             Kind = "Internal"
)

// Code names the exact rule that rejected the request.
type Code string

const (
	CodeRestaurantNotFound   Code = "RestaurantNotFound"
	CodeProductNotFound      Code = "ProductNotFound"
	CodeOrderNotFound        Code = "OrderNotFound"
	CodeForbidden            Code = "Forbidden"
	CodeInvalidInput         Code = "InvalidInput"
	CodeInvalidProductLine   Code = "InvalidProductLine"
	CodeProductUnavailable   Code = "ProductUnavailable"
	CodeCrossRestaurantOrder Code = "CrossRestaurantOrder"
	CodeInvalidTransition    Code = "InvalidTransition"
	CodeOrderAlreadyStarted  Code = "OrderAlreadyStarted"
	CodeImmutableField       Code = "ImmutableField"
	CodeInternal             Code = "Internal"
)

var codeKinds = map[Code]Kind{
	CodeRestaurantNotFound:   KindNotFound,
	CodeProductNotFound:      KindNotFound,
	CodeOrderNotFound:        KindNotFound,
	CodeForbidden:            KindForbidden,
	CodeInvalidInput:         KindInvalidInput,
	CodeInvalidProductLine:   KindInvalidInput,
	CodeProductUnavailable:   KindProductUnavailable,
	CodeCrossRestaurantOrder: KindCrossRestaurantOrder,
	CodeInvalidTransition:    KindInvalidTransition,
	CodeOrderAlreadyStarted:  KindInvalidTransition,
	CodeImmutableField:       KindImmutableField,
	CodeInternal:             KindInternal,
}

// Error is a deterministic business-rule rejection. It is never retried.
type Error struct {
	Code      Code
	Detail    string
	ProductID uint // set for product-scoped rejections
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Kind returns the taxonomy class of the rejection.
func (e *Error) Kind() Kind {
	if k, ok := codeKinds[e.Code]; ok {
		return k
	}
	return KindInternal
}

func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// ForProduct builds a rejection that identifies the offending product.
func ForProduct(code Code, productID uint, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.ProductID = productID
	return e
}

// Internal wraps an unexpected store failure.
func Internal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Detail: msg, Err: err}
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the taxonomy class of err. Untyped errors are Internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind()
	}
	return KindInternal
}

// Is reports whether err is a rejection with the given code.
func Is(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
