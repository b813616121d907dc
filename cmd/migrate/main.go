// migrate applies the embedded schema, or an extra SQL file given as the
// first argument.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/piano-academy-api/migrations"
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	name, script := "schema.sql", migrations.Schema
	if len(os.Args) > 1 {
		name = os.Args[1]
		content, err := os.ReadFile(name)
		if err != nil {
			logr.Fatal("failed to read sql file", zap.String("file", name), zap.Error(err))
		}
		script = string(content)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logr.Info("applying migration", zap.String("file", name))
	if _, err := db.ExecContext(ctx, script); err != nil {
		logr.Fatal("migration failed", zap.String("file", name), zap.Error(err))
	}
	logr.Info("migration applied", zap.String("file", name))
}
