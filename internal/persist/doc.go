// Package persist is the bulk persistence area: a JSON-valued key-value
// store on SQLite, restored once at startup and mirrored best-effort
// afterwards.
//
// Persist is fire-and-forget and ordered; Write is the synchronous
// write-through path used where a mutation must survive an immediate
// process kill. Neither rolls back in-memory state on failure.
//
// Credentials do not live here; see package credential.
package persist
