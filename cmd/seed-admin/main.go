// seed-admin creates the back office account or resets its password.
//
// Usage:
//
//	ADMIN_EMAIL=owner@example.com ADMIN_PASSWORD=... go run ./cmd/seed-admin
package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/piano-academy-api/internal/models"
	"github.com/noah-isme/piano-academy-api/internal/repository"
	"github.com/noah-isme/piano-academy-api/pkg/config"
	"github.com/noah-isme/piano-academy-api/pkg/database"
	"github.com/noah-isme/piano-academy-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "Academy Admin"
	}
	if email == "" || len(password) < 8 {
		logr.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD (min 8 chars) are required")
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logr.Fatal("failed to hash password", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user := &models.User{Email: email, PasswordHash: string(hash), FullName: name}
	inserted, err := repository.NewUserRepository(db).UpsertAdmin(ctx, user)
	if err != nil {
		logr.Fatal("failed to seed admin", zap.Error(err))
	}
	if inserted {
		logr.Info("admin created", zap.String("email", email), zap.String("id", user.ID))
		return
	}
	logr.Info("admin password reset", zap.String("email", email), zap.String("id", user.ID))
}
