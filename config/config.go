package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"deliverus-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	GinMode     string        `envconfig:"GIN_MODE" default:"debug"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	DBDriver    string        `envconfig:"DB_DRIVER" default:"sqlite"`
	DatabaseDSN string        `envconfig:"DATABASE_DSN" default:"deliverus.db"`
	JWTSecret   string        `envconfig:"JWT_SECRET" default:"deliverus_dev_secret"`
	JWTTTL      time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	return &cfg, nil
}

// NewLogger builds the JSON logrus logger at the configured level.
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		log.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, level)
	}
	log.SetLevel(level)
	return log
}

// OpenDB connects with the configured driver and migrates all models.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.DBDriver) {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate auto-migrates all models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Product{},
		&models.Order{},
		&models.OrderProduct{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
