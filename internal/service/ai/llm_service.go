package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/whisper/backend/internal/model/persona"
)

// ErrEmptyReply is returned when the model answers with no message at all.
var ErrEmptyReply = errors.New("model returned no message")

// Service turns user text into a persona reply with a single model call.
type Service struct {
	chatModel model.BaseChatModel
	persona   persona.Persona
	template  prompt.ChatTemplate
}

// NewService creates a new AI service instance for the given persona.
func NewService(chatModel model.BaseChatModel, p persona.Persona) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	promptManager := NewPersonaPromptManager()
	template := prompt.FromMessages(
		schema.FString,
		schema.UserMessage(promptManager.BuildPrompt(p)),
	)

	return &Service{
		chatModel: chatModel,
		persona:   p,
		template:  template,
	}, nil
}

// Reply formats the persona prompt around userInput and asks the model for
// one completion. Model errors are returned unwrapped so callers can surface
// the provider's own message.
func (s *Service) Reply(ctx context.Context, userInput string) (string, error) {
	messages, err := s.template.Format(ctx, map[string]any{UserInputKey: userInput})
	if err != nil {
		return "", fmt.Errorf("failed to format prompt: %w", err)
	}

	response, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", err
	}
	if response == nil {
		return "", ErrEmptyReply
	}

	reply := strings.TrimSpace(response.Content)
	log.Printf("[ai] generated reply persona=%s length=%d", s.persona.ID, len(reply))
	return reply, nil
}
