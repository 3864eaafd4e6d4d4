// Package database is the settings store. Alert data itself never touches
// the database; only operator-editable configuration lives here.
package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance
var DB *gorm.DB

// Connect opens the settings database. A postgres:// DSN selects the
// Postgres driver; anything else is treated as a sqlite file DSN, which is
// the default for a single-console install.
func Connect(dsn string, logLevel logger.LogLevel) error {
	var (
		dialector gorm.Dialector
		err       error
	)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

// AutoMigrate runs database migrations.
func AutoMigrate() error {
	if err := DB.AutoMigrate(
		&DeviceSettings{},
		&SlackSettings{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// InitializeDefaults creates default records if they don't exist.
func InitializeDefaults() error {
	var count int64
	DB.Model(&DeviceSettings{}).Count(&count)
	if count == 0 {
		if err := DB.Create(&DeviceSettings{}).Error; err != nil {
			return fmt.Errorf("failed to create default device settings: %w", err)
		}
		log.Println("Created default device settings")
	}

	DB.Model(&SlackSettings{}).Count(&count)
	if count == 0 {
		if err := DB.Create(&SlackSettings{Enabled: false}).Error; err != nil {
			return fmt.Errorf("failed to create default slack settings: %w", err)
		}
		log.Println("Created default Slack settings (disabled)")
	}
	return nil
}
