// Package library manages the content domain: libraries and the books they
// contain. Every library belongs to exactly one user; deleting a library
// removes its books. All mutations go through the authorization policy with
// the caller's freshly loaded role.
package library
