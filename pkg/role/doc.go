// Package role is the role registry: the source of truth mapping a user id
// to its single assigned role. The system-wide single-owner invariant is
// enforced at the storage layer (a unique index over role = 'owner'), so a
// check-then-act race during bootstrap degrades to a CONFLICT instead of a
// second owner.
package role
