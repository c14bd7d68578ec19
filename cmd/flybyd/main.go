// Command flybyd serves the flyby lookup over HTTP, with Prometheus
// metrics and health probes.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/he945/flyby/internal/api"
	"github.com/he945/flyby/internal/assets"
	"github.com/he945/flyby/internal/auth"
	"github.com/he945/flyby/internal/flyby"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables")
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	serverCfg := loadServerConfig(logger)

	client := assets.NewClient(os.Getenv("FLYBY_API_BASE_URL"), os.Getenv("FLYBY_API_KEY"), logger)
	svc := flyby.NewService(client, logger)

	srv := api.NewServer(serverCfg, logger, authCfg, svc)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			"addr", serverCfg.Addr,
			"auth_enabled", authCfg.Enabled,
			"imagery_endpoint", client.BaseURL(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("FLYBY_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("FLYBY_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("FLYBY_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("FLYBY_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadServerConfig(logger *slog.Logger) api.Config {
	cfg := api.Config{
		Addr: ":8080",
	}

	if v := os.Getenv("FLYBY_HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}

	if v := os.Getenv("FLYBY_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid FLYBY_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			cfg.TrustProxy = trust
		}
	}

	logger.Info("server config",
		"addr", cfg.Addr,
		"trust_proxy", cfg.TrustProxy,
	)

	return cfg
}
