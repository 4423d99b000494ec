package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("JWT_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("JWT_TTL", "tomorrow")

	_, err := Load()
	assert.Error(t, err)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	log := NewLogger(&Config{LogLevel: "verbose"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())

	log = NewLogger(&Config{LogLevel: "debug"})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestOpenDBMigratesSQLite(t *testing.T) {
	db, err := OpenDB(&Config{DBDriver: "sqlite", DatabaseDSN: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)

	for _, table := range []string{"users", "restaurants", "products", "orders", "order_products", "order_status_histories"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}
}

func TestOpenDBUnknownDriver(t *testing.T) {
	_, err := OpenDB(&Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
