package db

import (
	"context" // Context for seeding

	"money_transfer/internal/account" // Account manager
	"money_transfer/internal/domain"  // Importing domain models
	"money_transfer/internal/ledger"  // Ledger tables

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(ledger.Models()...); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

// Seed creates the platform and its fee account if they are missing and
// returns their handle.
func Seed(ctx context.Context, manager *account.Manager, name string, feeRate int) (domain.PlatformHandle, error) {
	handle, err := manager.EnsurePlatform(ctx, name, feeRate)
	if err != nil {
		return handle, err
	}
	logrus.WithFields(logrus.Fields{
		"platform_id": handle.PlatformID, // Platform row
		"account_id":  handle.AccountID,  // Fee account
	}).Info("Platform ready")
	return handle, nil
}
