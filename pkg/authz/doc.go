// Package authz holds the authorization policy shared by every privileged
// operation. Both gateway endpoints and the library CRUD surface call
// Decide instead of re-implementing role comparisons inline.
package authz
