// Development server: every store in memory, no Postgres required. State is
// lost on exit; the bootstrap procedure recreates the owner on each start.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilyakaznacheev/cleanenv"

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
	AppConfig config.AppConfig
}

func main() {
	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	identityStore := identity.NewLocalStore(
		identity.NewInMemoryAccountRepository(),
		identity.NewTokenIssuer("dev-secret", "librarium-dev", time.Hour),
	)
	roleService := role.NewRoleService(role.NewInMemoryRepository())
	profileService := profile.NewProfileService(profile.NewInMemoryRepository())
	libraryService := library.NewLibraryService(library.NewInMemoryRepository(), roleService)

	bootstrapService := bootstrap.NewService(identityStore, roleService, profileService, bootstrap.Config{})
	adminService := admin.NewAdminService(identityStore, roleService, profileService)

	result, err := bootstrapService.EnsureOwner(context.Background())
	if err != nil {
		slog.Error("Owner bootstrap failed", "err", err)
		os.Exit(1)
	}
	if result.Created {
		slog.Info("Development owner ready", "email", result.Email, "password", result.Password)
	} else {
		slog.Info("Development owner already exists", "email", result.Email)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/auth", identity.NewHandle(identityStore).Routes())
	r.Mount("/admin", admin.NewHandle(adminService, bootstrapService).Routes())
	r.Mount("/", libraryapi.NewHandle(libraryService, identityStore).Routes())

	slog.Info("Listening", "addr", cfg.AppConfig.Addr())
	if err := http.ListenAndServe(cfg.AppConfig.Addr(), r); err != nil {
		slog.Error("Server failed", "err", err)
		os.Exit(1)
	}
}
