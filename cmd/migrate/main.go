package main

import (
	"context" // Context for seeding

	"money_transfer/internal/account" // Account manager
	"money_transfer/internal/config"  // Custom import path (Config)
	"money_transfer/internal/db"      // Custom import path (Database)
	"money_transfer/internal/ledger"  // Ledger store

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	gdb, err := db.Open(cfg) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	// Create the platform singleton and its fee account
	manager := account.NewManager(ledger.New(gdb, cfg.LockTimeout), nil)
	if _, err := db.Seed(context.Background(), manager, cfg.PlatformName, cfg.PlatformFeeRate); err != nil {
		logrus.Fatalf("seeding failed: %v", err)
	}
}
