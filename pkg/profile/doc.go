// Package profile is the profile store: per-user metadata keyed by the
// identity store's user id. Profiles are created lazily with idempotent
// upsert semantics the first time they are needed.
package profile
