package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/auth"
	"github.com/ziadkadry99/puter-gallery/internal/catalog"
	"github.com/ziadkadry99/puter-gallery/internal/config"
	"github.com/ziadkadry99/puter-gallery/internal/db"
	"github.com/ziadkadry99/puter-gallery/internal/files"
	"github.com/ziadkadry99/puter-gallery/internal/history"
	"github.com/ziadkadry99/puter-gallery/internal/hosting"
	"github.com/ziadkadry99/puter-gallery/internal/kv"
	"github.com/ziadkadry99/puter-gallery/internal/llm"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
	"github.com/ziadkadry99/puter-gallery/internal/runner"
)

// app is the fully wired self-hosted platform plus the gallery core.
type app struct {
	db       *db.DB
	auth     *auth.Service
	hosting  *hosting.Service
	history  *history.Store
	platform platform.Platform
	catalog  *catalog.Catalog
	runner   *runner.Runner
}

// buildApp opens the database and wires every capability from c.
func buildApp(c *config.Config) (*app, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	database, err := db.Open(filepath.Join(c.DataDir, "gallery.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	fileStore, err := files.NewStore(filepath.Join(c.DataDir, "files"), c.Files.Hidden, c.Files.MaxBytes, logger)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating file store: %w", err)
	}

	provider, err := llm.NewProvider(llm.Options{
		Provider:     string(c.AI.Provider),
		Model:        c.AI.Model,
		BaseURL:      c.AI.BaseURL,
		RateLimitRPM: c.AI.RateLimitRPM,
	})
	if err != nil {
		// The AI examples report ErrNotConfigured; everything else still works.
		logger.Warn("AI chat disabled", zap.Error(err))
		provider = nil
	}

	authSvc := auth.NewService(database, auth.Options{
		GuestSignIn: c.Auth.GuestSignIn,
		SessionTTL:  c.Auth.SessionTTL,
	}, logger)
	hostingSvc := hosting.NewService(database, fileStore, c.Hosting.Domain, c.PublicURL(), logger)
	historyStore := history.NewStore(database)

	p := platform.Platform{
		Auth:       authSvc,
		FS:         fileStore,
		KV:         kv.NewStore(database),
		AI:         llm.NewChat(provider, c.AI.Model, c.AI.SystemPrompt),
		Hosting:    hostingSvc,
		RandomName: platform.RandomName,
	}
	cat, err := catalog.Default(p, logger)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	return &app{
		db:       database,
		auth:     authSvc,
		hosting:  hostingSvc,
		history:  historyStore,
		platform: p,
		catalog:  cat,
		runner:   runner.New(authSvc, historyStore, logger),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// sessionToken returns the token headless commands resume, if any.
func sessionToken() string {
	return os.Getenv("GALLERY_SESSION")
}
