package db

import (
	"fmt" // Error formatting

	"money_transfer/internal/config" // Custom package for configuration

	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // Postgres driver for GORM
	"gorm.io/driver/sqlite"   // SQLite driver for GORM
	"gorm.io/gorm"            // GORM ORM library
	"gorm.io/gorm/logger"     // GORM logger
)

// DSN builds the data source name for the configured driver
func DSN(cfg *config.Config) string {
	if cfg.DBDSN != "" {
		return cfg.DBDSN // Explicit DSN wins
	}
	switch cfg.DBDriver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	case "sqlite":
		// Writers wait on each other at most LockTimeout
		return fmt.Sprintf("file:%s.db?_busy_timeout=%d&_foreign_keys=on", cfg.DBName, cfg.LockTimeout.Milliseconds())
	default:
		return cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	}
}

// Dialector returns the GORM dialector for driver
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql", "":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open connects to the configured database
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.DBDriver, DSN(cfg))
	if err != nil {
		return nil, err
	}
	return OpenWith(dialector, cfg.IsProd)
}

// OpenWith connects using dialector. Driver errors are translated so unique
// violations surface as gorm.ErrDuplicatedKey.
func OpenWith(dialector gorm.Dialector, quiet bool) (*gorm.DB, error) {
	gcfg := &gorm.Config{TranslateError: true}
	if quiet {
		gcfg.Logger = logger.Default.LogMode(logger.Silent) // No SQL logging in production
	}
	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, err
	}
	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1) // SQLite has a single writer
	}
	return db, nil
}
