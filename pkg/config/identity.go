package config

import (
	"time"

	"github.com/librarium/librarium/pkg/errors"
)

// IdentityConfig configures how the service reaches the identity store.
//
// When ServiceURL is set the external HTTP identity store is used and both
// connection secrets are required. When it is empty the self-hosted identity
// store runs against the local database and TokenSecret signs its bearer
// tokens.
type IdentityConfig struct {
	ServiceURL  string        `env:"IDENTITY_SERVICE_URL" env-default:""`
	ServiceKey  string        `env:"IDENTITY_SERVICE_KEY" env-default:""`
	Timeout     time.Duration `env:"IDENTITY_TIMEOUT" env-default:"10s"`
	TokenSecret string        `env:"IDENTITY_TOKEN_SECRET" env-default:""`
	TokenExpiry time.Duration `env:"IDENTITY_TOKEN_EXPIRY" env-default:"1h"`
}

// UseExternal reports whether the external HTTP identity store is configured
func (c IdentityConfig) UseExternal() bool {
	return c.ServiceURL != "" || c.ServiceKey != ""
}

// Validate checks that the configured mode has every secret it needs
func (c IdentityConfig) Validate() error {
	if c.UseExternal() {
		if c.ServiceURL == "" {
			return errors.ConfigMissing("IDENTITY_SERVICE_URL")
		}
		if c.ServiceKey == "" {
			return errors.ConfigMissing("IDENTITY_SERVICE_KEY")
		}
		return nil
	}
	if c.TokenSecret == "" {
		return errors.ConfigMissing("IDENTITY_TOKEN_SECRET")
	}
	return nil
}
