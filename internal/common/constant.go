// Package common contains constants and user-facing messages shared by the
// lawdesk client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"
	// BearerPrefix precedes the session token in the Authorization header.
	BearerPrefix = "Bearer "
	// RequestIDHeaderName carries a per-request uuid for log correlation.
	RequestIDHeaderName = "X-Request-ID"
)
