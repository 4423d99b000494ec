package repositories

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func TestCatalogQueryLocking(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "lock_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, locked := NewRestaurantRepository(db).catalogQuery(ctx).Statement.Clauses["FOR"]
	assert.False(t, locked, "plain lookups must not lock")

	c, locked := NewRestaurantRepository(db).ForShare().catalogQuery(ctx).Statement.Clauses["FOR"]
	require.True(t, locked, "order transactions must lock the catalog rows they validate")
	locking, ok := c.Expression.(clause.Locking)
	require.True(t, ok)
	assert.Equal(t, "SHARE", locking.Strength)
}
