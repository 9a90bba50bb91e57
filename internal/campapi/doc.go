// Package campapi provides an HTTP client for the campground directory API.
//
// # Overview
//
// The API is an opaque JSON collaborator exposing four read-only
// collections under a base URL:
//
//   - GET {base}campsites
//   - GET {base}comments
//   - GET {base}promotions
//   - GET {base}partners
//
// Each endpoint returns a JSON array that is decoded into the matching
// struct in types.go.
//
// # Error Handling
//
// Failures are returned, never retried:
//
//   - Non-2xx responses: *StatusError ("api /campsites returned status 503")
//   - Network errors: "execute request: dial tcp: connection refused"
//   - Malformed bodies: "decode response: unexpected EOF"
//
// The caller decides whether to fetch again.
//
// # URL Construction
//
// The base URL keeps its path so the API can live under a prefix:
//
//   - "localhost:3001"               → http://localhost:3001/
//   - "http://10.0.0.2:3001/api"     → http://10.0.0.2:3001/api/
//
// Query strings and fragments are dropped.
//
// # Thread Safety
//
// Client is safe for concurrent use; the four collections are normally
// fetched in parallel.
package campapi
