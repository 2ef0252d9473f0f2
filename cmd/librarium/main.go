package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/librarium/librarium/pkg/admin"
	"github.com/librarium/librarium/pkg/bootstrap"
	"github.com/librarium/librarium/pkg/config"
	"github.com/librarium/librarium/pkg/identity"
	"github.com/librarium/librarium/pkg/library"
	libraryapi "github.com/librarium/librarium/pkg/library/api"
	"github.com/librarium/librarium/pkg/profile"
	"github.com/librarium/librarium/pkg/role"
)

type Config struct {
	AppConfig       config.AppConfig
	DatabaseConfig  config.DatabaseConfig
	IdentityConfig  config.IdentityConfig
	BootstrapConfig bootstrap.Config
}

func main() {
	// Missing .env is fine; the environment may be set by the deployment
	godotenv.Load()

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	if err := cfg.IdentityConfig.Validate(); err != nil {
		slog.Error("Invalid identity configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseConfig.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed creating database pool",
			"db", cfg.DatabaseConfig.Database, "host", cfg.DatabaseConfig.Host, "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	roleService := role.NewRoleService(role.NewPostgresRepository(pool))
	profileService := profile.NewProfileService(profile.NewPostgresRepository(pool))
	libraryService := library.NewLibraryService(library.NewPostgresRepository(pool), roleService)

	// Identity either lives in an external service or in the local database
	var identityStore identity.Store
	var localStore *identity.LocalStore
	if cfg.IdentityConfig.UseExternal() {
		identityStore, err = identity.NewHTTPStore(cfg.IdentityConfig)
		if err != nil {
			slog.Error("Failed configuring identity service client", "err", err)
			os.Exit(1)
		}
	} else {
		localStore = identity.NewLocalStore(
			identity.NewPostgresAccountRepository(pool),
			identity.NewTokenIssuer(cfg.IdentityConfig.TokenSecret, "librarium", cfg.IdentityConfig.TokenExpiry),
		)
		identityStore = localStore
	}

	bootstrapService := bootstrap.NewService(identityStore, roleService, profileService, cfg.BootstrapConfig)
	adminService := admin.NewAdminService(identityStore, roleService, profileService)

	if result, err := bootstrapService.EnsureOwner(ctx); err != nil {
		slog.Error("Owner bootstrap failed", "err", err)
		os.Exit(1)
	} else if result.Created {
		slog.Info("Owner account created on startup", "email", result.Email)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if localStore != nil {
		r.Mount("/auth", identity.NewHandle(localStore).Routes())
	}
	r.Mount("/admin", admin.NewHandle(adminService, bootstrapService).Routes())
	r.Mount("/", libraryapi.NewHandle(libraryService, identityStore).Routes())

	server := &http.Server{
		Addr:    cfg.AppConfig.Addr(),
		Handler: r,
	}

	go func() {
		slog.Info("Listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "err", err)
	}
	slog.Info("Server stopped")
}
