// Package app wires configuration, storage, services, and transport into a
// running HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/forgewell/appforge-backend/internal/adapter/postgres"
	accessrepo "github.com/forgewell/appforge-backend/internal/adapter/postgres/access"
	entityrepo "github.com/forgewell/appforge-backend/internal/adapter/postgres/entity"
	fieldrepo "github.com/forgewell/appforge-backend/internal/adapter/postgres/field"
	permissionrepo "github.com/forgewell/appforge-backend/internal/adapter/postgres/permission"
	userrepo "github.com/forgewell/appforge-backend/internal/adapter/postgres/user"
	versionrepo "github.com/forgewell/appforge-backend/internal/adapter/postgres/version"
	"github.com/forgewell/appforge-backend/internal/auth"
	"github.com/forgewell/appforge-backend/internal/authz"
	"github.com/forgewell/appforge-backend/internal/config"
	"github.com/forgewell/appforge-backend/internal/dispatch"
	entitysvc "github.com/forgewell/appforge-backend/internal/service/entity"
	usersvc "github.com/forgewell/appforge-backend/internal/service/user"
	"github.com/forgewell/appforge-backend/internal/transport/api"
	"github.com/forgewell/appforge-backend/internal/transport/api/loader"
	"github.com/forgewell/appforge-backend/internal/transport/middleware"
	"github.com/forgewell/appforge-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, assembles services and the operation registry, and serves
// HTTP until the context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	entities := entityrepo.New(pool)
	fields := fieldrepo.New(pool)
	versions := versionrepo.New(pool)
	permissions := permissionrepo.New(pool)
	users := userrepo.New(pool)
	access := accessrepo.New(pool)

	entityService := entitysvc.NewService(logger, entities, fields, versions, permissions, users, txManager)
	userService := usersvc.NewService(logger, users)

	resolver := authz.NewResolver(access, access)
	registry := dispatch.NewRegistry(logger, resolver)
	api.RegisterOperations(registry, entityService, userService, cfg.API)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	apiHandler := api.NewHandler(logger, registry, cfg.API.MaxBodyBytes)
	healthHandler := rest.NewHealthHandler(pool, BuildVersion())

	apiChain := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(jwtManager),
		loader.Middleware(&loader.Repos{
			Field:      fields,
			Permission: permissions,
			User:       users,
		}),
	)

	mux := http.NewServeMux()
	mux.Handle("POST /api", apiChain(apiHandler))
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /health/live", healthHandler.Live)
	mux.HandleFunc("GET /health/ready", healthHandler.Ready)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
