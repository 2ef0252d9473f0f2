// Package api exposes the authenticated catalog CRUD surface over HTTP.
// Authorization decisions happen in the library service, not here; handlers
// only resolve the caller, decode input and shape responses.
package api
