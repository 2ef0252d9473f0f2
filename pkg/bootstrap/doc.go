// Package bootstrap guarantees exactly one owner account exists: an
// idempotent, parameterless procedure safe to run on every service start.
// Partial failures compensate by deleting the just-created identity, and a
// failed compensation is reported as an explicit inconsistent state.
package bootstrap
