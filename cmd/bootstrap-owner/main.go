// One-shot owner bootstrap. Connects to the configured stores, ensures the
// owner account exists and prints the outcome. Safe to run repeatedly.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/librarium/librarium/pkg/bootstrap"
	"github.com/librarium/librarium/pkg/config"
	"github.com/librarium/librarium/pkg/identity"
	"github.com/librarium/librarium/pkg/profile"
	"github.com/librarium/librarium/pkg/role"
)

type Config struct {
	DatabaseConfig  config.DatabaseConfig
	IdentityConfig  config.IdentityConfig
	BootstrapConfig bootstrap.Config
}

func main() {
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
		slog.Error("Failed creating database pool", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	roleService := role.NewRoleService(role.NewPostgresRepository(pool))
	profileService := profile.NewProfileService(profile.NewPostgresRepository(pool))

	var identityStore identity.Store
	if cfg.IdentityConfig.UseExternal() {
		identityStore, err = identity.NewHTTPStore(cfg.IdentityConfig)
		if err != nil {
			slog.Error("Failed configuring identity service client", "err", err)
			os.Exit(1)
		}
	} else {
		identityStore = identity.NewLocalStore(
			identity.NewPostgresAccountRepository(pool),
			identity.NewTokenIssuer(cfg.IdentityConfig.TokenSecret, "librarium", cfg.IdentityConfig.TokenExpiry),
		)
	}

	result, err := bootstrap.NewService(identityStore, roleService, profileService, cfg.BootstrapConfig).EnsureOwner(ctx)
	if err != nil {
		slog.Error("Owner bootstrap failed", "err", err)
		os.Exit(1)
	}

	if !result.Created {
		fmt.Println("Owner account already exists; nothing to do.")
		return
	}
	fmt.Printf("Owner account created.\n  email:    %s\n  password: %s\nChange the password after first login.\n",
		result.Email, result.Password)
}
