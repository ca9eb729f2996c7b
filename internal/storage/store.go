// Package storage persists fee transactions, the receipt display setting,
// and the student directory in PostgreSQL via GORM.
//
// The transaction table is append-only: rows are inserted once at collection
// time and never updated or deleted, so corrections are always new
// offsetting rows. The receipt setting is a single logical row with
// upsert-with-defaults semantics.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/errors"
	"github.com/DurgaPydahSoft/PydahFeeManagement-sub000/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds database connection settings
type Config struct {
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	// MaxScanRows caps the rows returned by range queries; zero disables
	// the guard
	MaxScanRows int `json:"max_scan_rows"`
}

// DefaultConfig returns connection defaults suitable for a single instance
func DefaultConfig() *Config {
	return &Config{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		MaxScanRows:     100000,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "dsn", c.DSN, nil)
	}
	return nil
}

// Store wraps the database handle and the fetch-boundary limits
type Store struct {
	db     *gorm.DB
	config *Config
	logger logger.Logger
}

// Open connects to the database and migrates the schema
func Open(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log := logger.GetGlobalLogger().WithComponent("storage")

	db, err := gorm.Open(postgres.Open(config.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "open", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "open", err)
	}
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := db.AutoMigrate(&TransactionRow{}, &DemandRow{}, &ReceiptSettingRow{}, &StudentRow{}); err != nil {
		return nil, errors.StorageError(errors.CodeStorageUnavailable, "migrate", err)
	}

	log.Info("Storage opened and schema migrated")

	return &Store{db: db, config: config, logger: log}, nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying connection: %w", err)
	}
	return sqlDB.Close()
}
