// Package identity is the boundary to the identity store: the system of
// record for credentials and account existence.
//
// The gateway only consumes the Store interface, so the external HTTP
// collaborator (HTTPStore) and the self-hosted implementation (LocalStore)
// are interchangeable. Every request re-verifies the bearer credential
// through the store; nothing is cached across requests.
package identity
