// Package services implements the HTTP side of the shelf client.
//
// # Client
//
// [Client] is the single path to the backend. Every request:
//   - carries Content-Type: application/json and an X-Request-ID
//   - carries Authorization: Bearer <token> when durable storage holds a token (read per request)
//   - merges caller headers last, so callers can override defaults
//
// Responses are unwrapped from the backend's {success, data, error} envelope when present.
//
// # Error Handling
//
// Failures use the typed errors from the shared package:
//   - [shared.NetworkError] : no response was received (transport failure, cancellation, throttle wait aborted)
//   - [shared.APIError] : non-2xx status or success=false envelope; Message comes from the body's error field
//
// Nothing is retried. Each failure is logged once here and returned to the caller.
//
// # Book Service
//
// [BookService] maps backend endpoints to typed calls used by the view models:
// login and registration, the library collection (list, add, status update, delete) and catalog search.
// Catalog search accepts both the flat result list and the catalog's items[].volumeInfo shape.
package services
