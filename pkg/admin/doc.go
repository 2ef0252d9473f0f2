// Package admin implements the privileged administrative operations exposed
// by the gateway: owner bootstrap and administrative user deletion. Every
// request re-derives the caller's authorization from the identity store and
// role registry; nothing is cached between requests.
package admin
