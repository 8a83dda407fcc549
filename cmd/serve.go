package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	appservices "luastyle/internal/application/services"
	"luastyle/internal/application/usecases"
	"luastyle/internal/infrastructure/api"
	"luastyle/internal/infrastructure/repositories"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the try-on session API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP port")
	serveCmd.Flags().Duration("session-ttl", 30*time.Minute, "idle session expiry")
	_ = v.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("session_ttl", serveCmd.Flags().Lookup("session-ttl"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sessionRepo := repositories.NewCacheSessionRepository(cfg.SessionTTL)
	application, err := newApp(cfg, sessionRepo)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer application.Close()

	secret, err := cookieSecret(cfg.CookieSecret)
	if err != nil {
		return err
	}
	store := repositories.NewCookieStore(secret)
	parameterService := appservices.NewParameterService()

	// API層を初期化
	router := api.NewRouter(
		api.NewTryOnHandler(application.tryOn, parameterService),
		api.NewResultHandler(application.results, parameterService),
		api.NewPreferenceHandler(func(w http.ResponseWriter, r *http.Request) *usecases.PreferenceUseCase {
			return usecases.NewPreferenceUseCase(repositories.NewCookiePreferenceRepository(store, w, r))
		}),
	)

	// wait=true の試着は長時間かかるため WriteTimeout は設定しない
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", srv.Addr, "backend", cfg.Backend, "session_ttl", cfg.SessionTTL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// cookieSecret returns the configured key, or a random one that lives as long
// as the process.
func cookieSecret(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate cookie secret: %w", err)
	}
	slog.Warn("COOKIE_SECRET is not set, theme cookies will not survive a restart")
	return secret, nil
}
