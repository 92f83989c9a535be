package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/puter-gallery/internal/auth"
	"github.com/ziadkadry99/puter-gallery/internal/gallery"
	"github.com/ziadkadry99/puter-gallery/internal/history"
	"github.com/ziadkadry99/puter-gallery/internal/hosting"
	"github.com/ziadkadry99/puter-gallery/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gallery web server",
	Long:  `Starts the gallery web server: the example page, its live socket, the run and history APIs, and hosted sites.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(cfg.Server, logger, auth.Middleware(cfg.Auth.CookieName))
		r := srv.Router()
		gallery.New(a.catalog, a.runner, cfg.Auth.CookieName, logger).RegisterRoutes(r)
		history.RegisterRoutes(r, a.history, auth.RequireUser(a.auth))
		hosting.RegisterRoutes(r, a.hosting, auth.RequireUser(a.auth))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go purgeSessions(ctx, a)

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown", zap.Error(err))
			}
		}()

		fmt.Fprintf(os.Stderr, "gallery %s serving on %s\n", Version, cfg.PublicURL())
		fmt.Fprintf(os.Stderr, "  Data: %s\n", cfg.DataDir)
		fmt.Fprintf(os.Stderr, "  AI provider: %s\n", cfg.AI.Provider)
		return srv.Start()
	},
}

// purgeSessions removes expired sessions hourly until ctx is done.
func purgeSessions(ctx context.Context, a *app) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		if n, err := a.auth.PurgeExpired(ctx); err != nil {
			logger.Warn("purging sessions", zap.Error(err))
		} else if n > 0 {
			logger.Debug("purged expired sessions", zap.Int("count", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
