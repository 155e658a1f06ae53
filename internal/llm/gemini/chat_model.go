// Package gemini exposes Google Gemini as an eino chat model so the rest of
// the backend can treat it the same way as any other provider.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

const (
	roleUser  = "user"
	roleModel = "model"
)

var (
	// ErrEmptyResponse is returned when Gemini answers without any text part.
	ErrEmptyResponse = errors.New("gemini returned an empty response")
	// ErrNoUserTurn is returned when the conversation does not end with a user message.
	ErrNoUserTurn = errors.New("gemini request must end with a user message")
)

// Config holds the client settings for a Gemini chat model.
type Config struct {
	APIKey      string
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int32
}

// ChatModel implements model.ChatModel on top of the Gemini SDK.
type ChatModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

var _ model.ChatModel = (*ChatModel)(nil)

// NewChatModel creates the Gemini client and configures the generative model.
func NewChatModel(ctx context.Context, cfg *Config) (*ChatModel, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}

	name := strings.TrimSpace(cfg.Model)
	if name == "" {
		name = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	gm := client.GenerativeModel(name)
	if cfg.Temperature != nil {
		gm.SetTemperature(*cfg.Temperature)
	}
	if cfg.TopP != nil {
		gm.SetTopP(*cfg.TopP)
	}
	if cfg.MaxTokens != nil {
		gm.SetMaxOutputTokens(*cfg.MaxTokens)
	}

	return &ChatModel{client: client, model: gm, name: name}, nil
}

// Generate sends the conversation to Gemini and returns the assistant reply.
// Provider errors are returned as-is.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	req, err := buildRequest(input)
	if err != nil {
		return nil, err
	}

	// per-call copy: SystemInstruction and options must not leak between requests
	gm := *m.model
	gm.SystemInstruction = req.system
	applyOptions(&gm, model.GetCommonOptions(&model.Options{}, opts...))

	session := gm.StartChat()
	session.History = req.history

	resp, err := session.SendMessage(ctx, req.parts...)
	if err != nil {
		return nil, err
	}

	text := extractText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return schema.AssistantMessage(text, nil), nil
}

// Stream has no incremental mode; it yields the full reply as one chunk.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// BindTools is not supported; the relay never issues tool calls.
func (m *ChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) == 0 {
		return nil
	}
	return errors.New("gemini chat model does not support tool binding")
}

// GetType reports the component type to eino callbacks.
func (m *ChatModel) GetType() string {
	return "Gemini"
}

// Name returns the configured model identifier.
func (m *ChatModel) Name() string {
	return m.name
}

// Close releases the underlying client.
func (m *ChatModel) Close() error {
	return m.client.Close()
}

type request struct {
	system  *genai.Content
	history []*genai.Content
	parts   []genai.Part
}

// buildRequest maps eino messages onto Gemini's system instruction, chat
// history and final user turn.
func buildRequest(input []*schema.Message) (*request, error) {
	var (
		system   []string
		contents []*genai.Content
	)

	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			if strings.TrimSpace(msg.Content) != "" {
				system = append(system, msg.Content)
			}
		case schema.User:
			contents = append(contents, &genai.Content{Role: roleUser, Parts: []genai.Part{genai.Text(msg.Content)}})
		case schema.Assistant:
			contents = append(contents, &genai.Content{Role: roleModel, Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			return nil, fmt.Errorf("gemini chat model: unsupported message role %q", msg.Role)
		}
	}

	if len(contents) == 0 || contents[len(contents)-1].Role != roleUser {
		return nil, ErrNoUserTurn
	}

	req := &request{
		history: contents[:len(contents)-1],
		parts:   contents[len(contents)-1].Parts,
	}
	if len(system) > 0 {
		req.system = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))}}
	}
	return req, nil
}

func applyOptions(gm *genai.GenerativeModel, opts *model.Options) {
	if opts == nil {
		return
	}
	if opts.Temperature != nil {
		gm.SetTemperature(*opts.Temperature)
	}
	if opts.TopP != nil {
		gm.SetTopP(*opts.TopP)
	}
	if opts.MaxTokens != nil {
		gm.SetMaxOutputTokens(int32(*opts.MaxTokens))
	}
	if len(opts.Stop) > 0 {
		gm.StopSequences = append([]string(nil), opts.Stop...)
	}
}

// extractText concatenates the text parts of the first candidate that has content.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		if text.Len() > 0 {
			return text.String()
		}
	}
	return ""
}
