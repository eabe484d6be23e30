package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/common"
)

// ChatService sends a question to the category's chatbot.
type ChatService interface {
	Send(ctx context.Context, category, message string) (string, error)
}

type chatService struct {
	api client.ChatAPI
}

func NewChatService(api client.ChatAPI) ChatService {
	return &chatService{api: api}
}

func (s *chatService) Send(ctx context.Context, category, message string) (string, error) {
	if err := checkCategory(category); err != nil {
		return "", err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", invalid("Message", common.MessageMessageRequired)
	}
	reply, err := s.api.SendMessage(ctx, category, message)
	if err != nil {
		return "", err
	}
	return reply.Response, nil
}
