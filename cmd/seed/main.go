package main

import (
	"context"
	"log"

	"adbond/internal/config"
	"adbond/internal/database"
	"adbond/internal/domain"
	"adbond/internal/logger"
	"adbond/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// seed creates the bootstrap admin from SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD.
// Running it again with an existing admin is a no-op.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.AppEnv, cfg.AppName+"-seed")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.SeedAdminEmail == "" || len(cfg.SeedAdminPassword) < 8 {
		zl.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD (min 8 chars) are required")
	}

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("DB connection failed", zap.Error(err))
	}

	zl.Info("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		zl.Fatal("AutoMigrate failed", zap.Error(err))
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	exists, err := users.ExistsByEmail(ctx, cfg.SeedAdminEmail)
	if err != nil {
		zl.Fatal("lookup admin failed", zap.Error(err))
	}
	if exists {
		zl.Info("admin already exists, nothing to do", zap.String("email", cfg.SeedAdminEmail))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		zl.Fatal("hash password failed", zap.Error(err))
	}

	admin := &domain.User{
		Email:        cfg.SeedAdminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		FirstName:    "AdBond",
		LastName:     "Admin",
	}
	if err := users.Create(ctx, admin); err != nil {
		zl.Fatal("create admin failed", zap.Error(err))
	}

	zl.Info("admin created", zap.String("email", admin.Email), zap.String("user_id", admin.ID))
}
