package chat

import (
	"context"
	"log"

	analysis "github.com/zhouzirui/whisper/backend/internal/analysis/emotion"
	"github.com/zhouzirui/whisper/backend/internal/model/chat"
)

const (
	// ErrorReplyPrefix prefixes the in-band reply when generation fails.
	ErrorReplyPrefix = "Error generating response: "
	// MemoryTagLength is how many trailing characters of the input form the memory tag.
	MemoryTagLength = 80
)

// Generator produces the persona reply for a user message.
type Generator interface {
	Reply(ctx context.Context, userInput string) (string, error)
}

// Classifier scores the emotions expressed in a text.
type Classifier interface {
	Classify(ctx context.Context, text string) analysis.Scores
}

// Service relays one user message to the generator and the classifier.
// It holds no per-conversation state.
type Service struct {
	generator  Generator
	classifier Classifier
}

// NewService wires the relay to its collaborators.
func NewService(generator Generator, classifier Classifier) *Service {
	return &Service{
		generator:  generator,
		classifier: classifier,
	}
}

// Respond never fails: generation errors are reported inside Response.
func (s *Service) Respond(ctx context.Context, userInput string) chat.Response {
	reply, err := s.generator.Reply(ctx, userInput)
	if err != nil {
		log.Printf("[chat] generation failed: %v", err)
		reply = ErrorReplyPrefix + err.Error()
	}

	label := analysis.Dominant(s.classifier.Classify(ctx, userInput))

	return chat.Response{
		Response:  reply,
		Emotion:   string(label),
		MemoryTag: MemoryTag(userInput),
	}
}

// MemoryTag returns the last MemoryTagLength characters of userInput.
func MemoryTag(userInput string) string {
	runes := []rune(userInput)
	if len(runes) <= MemoryTagLength {
		return userInput
	}
	return string(runes[len(runes)-MemoryTagLength:])
}
