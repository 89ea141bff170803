// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/shelfwise/docs" // Swagger spec registration

	"github.com/tomtom215/shelfwise/internal/api"
	"github.com/tomtom215/shelfwise/internal/auth"
	"github.com/tomtom215/shelfwise/internal/authz"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/database"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/middleware"
	"github.com/tomtom215/shelfwise/internal/models"
	"github.com/tomtom215/shelfwise/internal/supervisor"
	"github.com/tomtom215/shelfwise/internal/supervisor/services"
	"github.com/tomtom215/shelfwise/internal/validation"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_driver", cfg.Database.Driver).
		Str("token_backend", cfg.Tokens.Backend).
		Bool("basic_auth", cfg.Security.BasicAuthEnabled).
		Msg("Starting Shelfwise")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("driver", cfg.Database.Driver).Msg("Database initialized successfully")

	admin, err := bootstrapAdmin(ctx, db, cfg)
	if err != nil {
		// Fatal skips deferred calls.
		_ = db.Close()
		logging.Fatal().Err(err).Msg("Failed to bootstrap admin user")
	}

	if cfg.Database.SeedDemoData {
		var authorID int64
		if admin != nil {
			authorID = admin.ID
		}
		if _, err := db.SeedDemoData(ctx, authorID); err != nil {
			_ = db.Close()
			logging.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tokenStore, closeTokens, err := openTokenStore(cfg, db, tree)
	if err != nil {
		_ = db.Close()
		logging.Fatal().Err(err).Msg("Failed to open token store")
	}
	defer closeTokens()
	tokens := auth.NewTokenManager(tokenStore, cfg.Tokens.Backend)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	verifier, err := auth.NewCredentialVerifier(db, cfg.Security.BcryptCost)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize credential verifier")
	}

	enforcer, err := authz.NewEnforcer(ctx, authz.EnforcerConfigFrom(&cfg.Security.Casbin))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization policy")
	}
	defer enforcer.Close()
	if enforcer.ReloadEnabled() {
		tree.AddMaintenanceService(services.NewPeriodicService("policy-reload", enforcer.ReloadInterval(), enforcer.Reload))
		logging.Info().
			Str("policy", cfg.Security.Casbin.PolicyPath).
			Dur("interval", enforcer.ReloadInterval()).
			Msg("Policy reload added to supervisor tree")
	}

	audit := logging.NewAuditLogger()

	authenticators := []auth.Authenticator{
		auth.NewTokenAuthenticator(tokens),
		auth.NewJWTAuthenticator(jwtManager),
	}
	if cfg.Security.BasicAuthEnabled {
		authenticators = append(authenticators, auth.NewBasicAuthenticator(verifier))
		logging.Warn().Msg("Basic Auth transmits credentials with each request. Use HTTPS in production!")
	}
	authn, err := auth.NewMiddleware(&auth.MiddlewareConfig{
		Authenticator: auth.NewMultiAuthenticator(authenticators...),
		Resolver:      auth.NewResolver(db),
		Respond:       api.WriteAuthError,
		Challenge:     api.AuthChallenge,
		Audit:         audit,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authentication middleware")
	}

	if cfg.Security.DisableRateLimits {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMITS=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().
			Strs("cors_origins", cfg.Security.CORSOrigins).
			Msg("CORS allows any origin; set CORS_ORIGINS to specific origins in production")
	}

	handler, err := api.NewHandler(api.HandlerDeps{
		DB:        db,
		Validator: validation.NewDefaultRegistry(db),
		Decider:   authz.NewDecider(enforcer, audit),
		Verifier:  verifier,
		Tokens:    tokens,
		JWT:       jwtManager,
		Config:    cfg,
		Audit:     audit,
		PerfMon:   middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowThreshold),
		Challenge: api.AuthChallenge,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize API handler")
	}

	router := api.NewRouter(handler, authn, api.NewChiMiddlewareFromConfig(&cfg.Security))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Shelfwise stopped gracefully")
}

// bootstrapAdmin creates the configured superuser when it does not exist
// yet. It returns nil when no bootstrap admin is configured. A password
// failing the admin policy is fatal in production and a warning elsewhere.
func bootstrapAdmin(ctx context.Context, db *database.DB, cfg *config.Config) (*models.User, error) {
	b := cfg.Bootstrap
	if b.AdminUsername == "" {
		return nil, nil
	}

	if err := validation.AdminPasswordPolicy().CheckError(b.AdminPassword, b.AdminUsername); err != nil {
		if cfg.IsProduction() {
			return nil, err
		}
		logging.Warn().Err(err).Msg("ADMIN_PASSWORD does not meet the admin password policy")
	}

	hash, err := auth.HashPassword(b.AdminPassword, cfg.Security.BcryptCost)
	if err != nil {
		return nil, err
	}
	admin := &models.User{
		Username:     b.AdminUsername,
		Email:        b.AdminEmail,
		PasswordHash: hash,
	}
	created, err := db.EnsureAdmin(ctx, admin)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Str("username", logging.SanitizeUsername(admin.Username)).
		Bool("created", created).
		Msg("Bootstrap admin ready")
	return admin, nil
}

// openTokenStore selects the API token backend. For badger it also adds
// value-log GC to the maintenance layer. The returned func closes whatever
// was opened.
func openTokenStore(cfg *config.Config, db *database.DB, tree *supervisor.SupervisorTree) (auth.TokenStore, func(), error) {
	if cfg.Tokens.Backend != config.TokenBackendBadger {
		return auth.NewDatabaseTokenStore(db), func() {}, nil
	}

	store, err := auth.OpenBadgerTokenStore(cfg.Tokens.BadgerPath)
	if err != nil {
		return nil, nil, err
	}
	tree.AddMaintenanceService(services.NewPeriodicService("badger-gc", cfg.Tokens.GCInterval, func(context.Context) error {
		return store.RunGC()
	}))
	logging.Info().Dur("interval", cfg.Tokens.GCInterval).Msg("Badger GC added to supervisor tree")

	closeFn := func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing badger token store")
		}
	}
	return store, closeFn, nil
}
