package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/zhouzirui/whisper/backend/internal/analysis/emotion"
)

// Config 控制情绪分析服务的行为。
type Config struct {
	Enabled bool
}

// Service 使用大模型为文本打情绪分，失败时回退到词表分类器。
type Service struct {
	enabled    bool
	classifier compose.Runnable[map[string]any, *schema.Message]
	fallback   func(text string) analysis.Scores
}

// NewService 创建情绪分析服务。chatModel 为空或未启用时只使用词表分类器。
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	svc := &Service{
		enabled:  cfg.Enabled && chatModel != nil,
		fallback: analysis.Analyze,
	}

	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(emotionSystemPrompt),
		schema.UserMessage(emotionUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile emotion classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled 返回大模型分类是否启用。
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Classify 返回 text 的情绪分数。只分析用户原文，从不返回错误。
func (s *Service) Classify(ctx context.Context, text string) analysis.Scores {
	if !s.Enabled() {
		return s.lexicon(text)
	}

	msg, err := s.classifier.Invoke(ctx, map[string]any{"text": strings.TrimSpace(text)})
	if err != nil {
		log.Printf("[emotion] classifier invoke failed, use fallback: %v", err)
		return s.lexicon(text)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return s.lexicon(text)
	}

	scores, err := parseClassifierOutput(msg.Content)
	if err != nil {
		log.Printf("[emotion] classifier output parse failed, use fallback: %v", err)
		return s.lexicon(text)
	}
	if len(scores) == 0 {
		return s.lexicon(text)
	}
	return scores
}

func (s *Service) lexicon(text string) analysis.Scores {
	if s == nil || s.fallback == nil {
		return analysis.Analyze(text)
	}
	return s.fallback(text)
}

// parseClassifierOutput 解析大模型返回的 JSON，丢弃未知标签与非正分数。
func parseClassifierOutput(content string) (analysis.Scores, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	raw := map[string]float64{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &raw); err != nil {
		return nil, err
	}

	scores := make(analysis.Scores, len(raw))
	for key, value := range raw {
		label, ok := analysis.ParseLabel(key)
		if !ok || value <= 0 {
			continue
		}
		scores[label] = clampScore(value)
	}
	return scores, nil
}

func clampScore(val float64) float64 {
	if val > 1 {
		return 1
	}
	return val
}

const emotionSystemPrompt = "You are an emotion analyst. Read the user's message and rate how strongly it expresses each of these emotions: Happy, Angry, Surprise, Sad, Fear.\n" +
	"Return only a JSON object whose keys are exactly those five labels and whose values are numbers between 0 and 1. Use 0 for emotions that are absent. Do not output any other text."

const emotionUserPrompt = "Message:\n{text}"
