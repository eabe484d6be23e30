// Package netx classifies transport-level failures of outbound HTTP calls.
package netx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"syscall"
)

// IsConnectionError reports whether err means no HTTP response was received:
// DNS failure, refused or reset connection, or a client-side timeout.
// Caller cancellation is not a connection error.
func IsConnectionError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// IsTransientStatus reports whether an HTTP status is worth retrying.
func IsTransientStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
