package main

import (
	"context"
	"log"
	"time"

	"github.com/existflow/ironmeet/internal/billing"
	"github.com/existflow/ironmeet/internal/config"
	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/files"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logConfig := logger.DefaultConfig()
	logConfig.Level = logger.ParseLevel(cfg.LogLevel)
	logConfig.FilePath = cfg.LogFile
	logConfig.Console = true
	l, err := logger.New(logConfig)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer l.Close()

	if err := cfg.CheckServer(); err != nil {
		l.Error("Refusing to start", logger.Err(err))
		log.Fatalf("Invalid server config: %v", err)
	}

	store, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if n, err := store.DeleteExpiredSessions(context.Background(), time.Now()); err != nil {
		l.Warn("Failed to prune expired sessions", logger.Err(err))
	} else if n > 0 {
		l.Info("Pruned expired sessions", logger.F("count", n))
	}

	fs, err := files.NewLocal(cfg.Storage.Root, cfg.Storage.BaseURL, cfg.Storage.Secret)
	if err != nil {
		log.Fatalf("Failed to open file storage: %v", err)
	}

	catalog, err := billing.NewCatalog(cfg.Billing.Plans)
	if err != nil {
		log.Fatalf("Invalid billing plans: %v", err)
	}

	srv, err := server.New(server.Options{
		DB:            store,
		Files:         fs,
		Catalog:       catalog,
		SessionTTL:    cfg.Server.SessionTTL,
		URLTTL:        cfg.Storage.URLTTL,
		WebhookSecret: cfg.Billing.WebhookSecret,
		Logger:        l,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	l.Info("IronMeet server starting",
		logger.F("port", cfg.Server.Port),
		logger.F("driver", store.Driver()))
	if err := srv.Start(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
