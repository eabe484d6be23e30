package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/lawdesk/internal/client/models"
)

func (c *HTTPClient) SendMessage(ctx context.Context, category, message string) (*models.ChatReply, error) {
	body := struct {
		Message string `json:"message"`
	}{message}

	var out models.ChatReply
	if err := c.call(ctx, request{
		op: "chatbot", method: http.MethodPost, path: "/chatbot/" + segment(category), body: body, long: true,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
