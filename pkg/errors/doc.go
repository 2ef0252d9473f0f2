// Package errors provides structured error handling with error codes for
// librarium's authorization and privileged-operation layer.
//
// Every failure crossing a package boundary carries one of the taxonomy
// codes (UNAUTHENTICATED, FORBIDDEN, VALIDATION_FAILED, CONFLICT, NOT_FOUND,
// CONFIG_MISSING, DOWNSTREAM_ERROR, INTERNAL_ERROR) so operation handlers can
// convert errors to HTTP responses without inspecting store internals.
//
// Creating errors:
//
//	err := errors.NotFound("user", userID.String())
//	err := errors.Wrap(dbErr, errors.ErrCodeDownstream, "role registry query failed")
//
// Inspecting errors:
//
//	if errors.IsCode(err, errors.ErrCodeConflict) {
//		// duplicate owner, invariant held at the storage layer
//	}
//
// Standard errors.Is / errors.As keep working through Unwrap.
package errors
