package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", invalid("Email", common.MessageInvalidEmail), common.MessageInvalidEmail},
		{"server detail", &client.APIError{Status: 400, Detail: "email taken"}, "email taken"},
		{"unavailable", fmt.Errorf("login: %w", client.ErrUnavailable), common.MessageConnectionFailed},
		{"deadline", context.DeadlineExceeded, common.MessageConnectionFailed},
		{"not found", client.ErrNotFound, common.MessageNotFound},
		{"unauthorized", &client.APIError{Status: 401}, common.MessageUnauthorized},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}
