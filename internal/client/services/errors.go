package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/common"
)

var (
	ErrLoginRequired  = errors.New(common.MessageLoginRequired)
	ErrUnknownEmail   = errors.New(common.MessageUnknownEmail)
	ErrResearchFailed = errors.New(common.MessageResearchFailed)
)

// ValidationError is a form problem caught before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Describe turns an error from any service into the message shown to the
// user: validation messages and server details verbatim, transport failures
// as a retry hint.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	switch {
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return common.MessageConnectionFailed
	case errors.Is(err, client.ErrNotFound):
		return common.MessageNotFound
	case errors.Is(err, client.ErrUnauthorized):
		return common.MessageUnauthorized
	}
	return err.Error()
}
