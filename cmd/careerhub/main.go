package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/careerhub/careerhub/internal/app"
	"github.com/careerhub/careerhub/internal/config"
	"github.com/careerhub/careerhub/internal/security"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		configPath   string
		migrateOnly  bool
		hashPassword string
	)
	flag.StringVar(&configPath, "config", "", "path to config.yaml (defaults to $CAREERHUB_CONFIG or ./config.yaml)")
	flag.BoolVar(&migrateOnly, "migrate", false, "run database migrations and exit")
	flag.StringVar(&hashPassword, "hash-password", "", "print the bcrypt hash for an admin password and exit")
	flag.Parse()

	if hashPassword != "" {
		hash, errHash := security.HashPassword(hashPassword)
		if errHash != nil {
			log.Fatalf("hash password: %v", errHash)
		}
		fmt.Println(hash)
		return
	}

	if errEnv := config.LoadDotEnv(); errEnv != nil {
		log.Fatalf("load .env: %v", errEnv)
	}
	resolved := config.ResolveConfigPath(configPath)
	if !config.ConfigExists(resolved) {
		log.Warnf("config %s not found, using defaults and environment", resolved)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.AppConfig{ConfigPath: resolved}
	if migrateOnly {
		if errMigrate := app.Migrate(ctx, cfg); errMigrate != nil {
			log.Fatalf("migrate: %v", errMigrate)
		}
		return
	}
	if errRun := app.RunServer(ctx, cfg); errRun != nil {
		log.Fatalf("server: %v", errRun)
	}
}
