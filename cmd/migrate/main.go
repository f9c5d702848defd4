package main

import (
	"context" // Seeding context
	"errors"  // Error classification

	"trade_journal/internal/config" // Custom import path (Config)
	"trade_journal/internal/db"     // Custom import path (Database)
	"trade_journal/internal/domain" // Roles
	"trade_journal/internal/store"  // Credential store
	"trade_journal/internal/utils"  // Password hashing

	"github.com/sirupsen/logrus" // Logging
)

// Main entry point for migration. When ADMIN_EMAIL is set an admin account
// is provisioned; this is the only way an admin comes to exist.
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	dialector, err := db.Dialector(cfg)
	if err != nil {
		logrus.Fatalf("failed to configure DB: %v", err)
	}
	gdb, err := db.Open(dialector, cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}

	if cfg.AdminEmail == "" {
		return
	}
	if len(cfg.AdminPassword) < 8 {
		logrus.Fatal("ADMIN_PASSWORD must be at least 8 characters")
	}
	users := store.NewUsers(gdb, utils.NewBcryptHasher(cfg.BcryptCost))
	admin, err := users.Provision(context.Background(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, domain.RoleAdmin)
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		logrus.WithField("email", store.NormalizeEmail(cfg.AdminEmail)).Info("Admin already exists, skipping")
	case err != nil:
		logrus.Fatalf("admin provisioning failed: %v", err)
	default:
		logrus.WithField("user_id", admin.ID).Info("Admin provisioned")
	}
}
