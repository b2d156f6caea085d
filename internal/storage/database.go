package storage

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

type ConnectionConfig struct {
	DatabaseURL     string
	IsDevelopment   bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// NewConnection opens the postgres connection used for user preferences
// and the optimization-run audit log.
func NewConnection(databaseURL string, isDevelopment bool) (*DB, error) {
	return NewConnectionWithConfig(ConnectionConfig{
		DatabaseURL:     databaseURL,
		IsDevelopment:   isDevelopment,
		MaxIdleConns:    5,
		MaxOpenConns:    20,
		ConnMaxLifetime: time.Hour,
	})
}

func NewConnectionWithConfig(config ConnectionConfig) (*DB, error) {
	logLevel := logger.Error
	if config.IsDevelopment {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(config.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&UserPreference{}, &OptimizationRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"max_idle_conns": config.MaxIdleConns,
		"max_open_conns": config.MaxOpenConns,
	}).Info("Database connection established successfully")

	return &DB{db}, nil
}

// HealthCheck pings the underlying connection.
func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
