package cli

import (
	"fmt"

	"github.com/existflow/ironmeet/internal/backend"
	"github.com/existflow/ironmeet/internal/client"
	"github.com/existflow/ironmeet/internal/db"
	"github.com/existflow/ironmeet/internal/files"
	"github.com/existflow/ironmeet/internal/logger"
)

// session is an open backend plus whatever must be released after the
// command finishes
type session struct {
	backend.Backend
	close func() error
}

func (s *session) Close() {
	if s.close == nil {
		return
	}
	if err := s.close(); err != nil {
		logger.Warn("Failed to close backend", logger.Err(err))
	}
}

// openBackend returns the local database, or the server when --remote is set
func openBackend() (*session, error) {
	if useRemote {
		c, err := newClient()
		if err != nil {
			return nil, err
		}
		if !c.IsLoggedIn() {
			return nil, client.ErrNotLoggedIn
		}
		return &session{Backend: c}, nil
	}

	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Error("Failed to open database", logger.Err(err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	fs, err := files.NewLocal(cfg.Storage.Root, cfg.Storage.BaseURL, cfg.Storage.Secret)
	if err != nil {
		logger.Warn("File storage unavailable, reports are kept inline", logger.Err(err))
		fs = nil
	}

	return &session{
		Backend: backend.NewLocal(database, db.LocalUserID, fs),
		close: func() error {
			logger.Info("Database closed")
			return database.Close()
		},
	}, nil
}

func newClient() (*client.Client, error) {
	return client.New(client.DefaultSessionPath(), cfg.Server.URL)
}
