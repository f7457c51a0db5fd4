package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskboard/taskboard-go/internal/config"
	"github.com/taskboard/taskboard-go/internal/crypto"
	"github.com/taskboard/taskboard-go/internal/handler"
	"github.com/taskboard/taskboard-go/internal/logging"
	"github.com/taskboard/taskboard-go/internal/middleware"
	"github.com/taskboard/taskboard-go/internal/observability"
	"github.com/taskboard/taskboard-go/internal/service"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}

	defaults := config.Default()
	flags := cmd.Flags()
	flags.String("port", defaults.Port, "HTTP listen port")
	flags.String("env", defaults.Env, "environment name (development or production)")
	flags.String("log-format", defaults.Log.Format, "log format (json or text)")
	addDatabaseFlags(flags)

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.SetDefault("taskboard", version, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           buildRouter(ctx, cfg, st, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SERVER_SHUTDOWN_FAILED").Wrap(err)
	}

	logger.Info("server stopped")
	return nil
}

// buildRouter wires services and handlers onto the chosen stores. The rate
// limiter's janitor stops with ctx.
func buildRouter(ctx context.Context, cfg config.Config, st *stores, logger *slog.Logger) http.Handler {
	tokens := crypto.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.Expiry)
	hasher := crypto.NewArgon2idHasher(crypto.DefaultHashParams())

	authService := service.NewAuthService(st.users, hasher, tokens)
	projectService := service.NewProjectService(st.projects, st.tasks, st.tx)
	taskService := service.NewTaskService(st.tasks, st.projects, st.tx)

	return handler.NewRouter(handler.RouterConfig{
		Auth:     handler.NewAuthHandler(authService, logger),
		Projects: handler.NewProjectHandler(projectService, logger),
		Tasks:    handler.NewTaskHandler(taskService, logger),
		Verifier: tokens,
		Metrics:  observability.NewMetrics(),
		Logger:   logger,
		Limiter:  middleware.RateLimit(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Ping:     st.ping,
	})
}
