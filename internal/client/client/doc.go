// Package client is the lawdesk backend contract and its HTTP/JSON
// implementation.
//
// # Overview
//
// The package provides:
//  1. Per-domain API contracts (AuthAPI, ResearchAPI, MyLogAPI, CatalogAPI,
//     ChatAPI) combined into Client.
//  2. HTTPClient, which attaches the bearer token from a TokenSource, tags
//     every request with an X-Request-ID, waits on a client-side rate
//     limiter and retries a small set of idempotent-enough mutations with
//     capped exponential backoff.
//  3. VideoClient for the external video listing.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Responses with status >= 400 become *APIError whose Detail is the
// backend's detail field (a string, or validation messages joined with
// "; "). 401/403 match ErrUnauthorized and 404 matches ErrNotFound through
// errors.Is. Failures where no response arrived wrap ErrUnavailable.
//
// Detail endpoints may answer with JSON or with an HTML fragment; the
// returned models.Document says which.
package client
