// Package config holds the deployment configuration structs shared by the
// librarium binaries. All settings are read from the process environment via
// cleanenv struct tags; required identity-service settings that are missing
// surface as CONFIG_MISSING errors rather than silent no-ops.
package config
