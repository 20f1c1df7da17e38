package main

import (
	"context"
	"log"
	"time"

	"adbond/internal/config"
	"adbond/internal/database"
	"adbond/internal/logger"
	"adbond/internal/repository"

	"go.uber.org/zap"
)

// auth_cleanup reports provisioned accounts whose temporary password expired
// unused. Those users cannot log in until an admin calls
// POST /api/entities/:id/reissue-credentials.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.AppEnv, cfg.AppName+"-auth-cleanup")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	expired, err := repository.NewUserRepository(db).ListExpiredTempCredentials(ctx, time.Now())
	if err != nil {
		zl.Fatal("list expired temporary credentials failed", zap.Error(err))
	}

	for _, u := range expired {
		fields := []zap.Field{
			zap.String("user_id", u.ID),
			zap.String("email", u.Email),
			zap.Timep("expired_at", u.TempPasswordExpires),
		}
		if u.EntityID != nil {
			fields = append(fields, zap.String("entity_id", *u.EntityID))
		}
		zl.Warn("temporary password expired unused", fields...)
	}

	zl.Info("auth cleanup completed", zap.Int("expired_temp_credentials", len(expired)))
}
