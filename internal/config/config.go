package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/whisper/backend/internal/llm/gemini"
)

// Supported generation providers.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// Supported emotion classifiers.
const (
	ClassifierLexicon = "lexicon"
	ClassifierLLM     = "llm"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Emotion EmotionConfig
}

// Load 从环境变量加载配置。缺少所选供应商的凭证时返回错误，服务不应启动。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	emotion, err := loadEmotionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Emotion: emotion}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址与跨域来源。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	addr := port
	if !strings.Contains(port, ":") {
		addr = ":" + port
	}

	return ServerConfig{
		Addr:           addr,
		AllowedOrigins: parseListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string

	GeminiAPIKey string
	GeminiModel  string

	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkModel     string
	ArkBaseURL   string
	ArkRegion    string

	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Validate 检查所选供应商是否提供了必需的凭证。
func (c AIConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set in your environment")
		}
	case ProviderArk:
		if c.ArkAPIKey == "" && (c.ArkAccessKey == "" || c.ArkSecretKey == "") {
			return fmt.Errorf("ARK_API_KEY (or ARK_ACCESS_KEY + ARK_SECRET_KEY) must be set in your environment")
		}
		if c.ArkModel == "" {
			return fmt.Errorf("ARK_MODEL must be set when LLM_PROVIDER=ark")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (expected %s or %s)", c.Provider, ProviderGemini, ProviderArk)
	}
	return nil
}

// ModelName 返回实际请求的模型标识。
func (c AIConfig) ModelName() string {
	if c.Provider == ProviderArk {
		return c.ArkModel
	}
	return c.GeminiModel
}

// NewChatModel 使用配置创建一个模型实例。Gemini 实例需要调用方在退出时 Close。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	switch c.Provider {
	case ProviderArk:
		var maxTokens *int
		if c.MaxTokens != nil {
			val := *c.MaxTokens
			maxTokens = &val
		}

		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     c.ArkBaseURL,
			Region:      c.ArkRegion,
			APIKey:      c.ArkAPIKey,
			AccessKey:   c.ArkAccessKey,
			SecretKey:   c.ArkSecretKey,
			Model:       c.ArkModel,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			TopP:        topP,
		})
	default:
		var maxTokens *int32
		if c.MaxTokens != nil {
			val := int32(*c.MaxTokens)
			maxTokens = &val
		}

		return gemini.NewChatModel(ctx, &gemini.Config{
			APIKey:      c.GeminiAPIKey,
			Model:       c.GeminiModel,
			Temperature: temperature,
			TopP:        topP,
			MaxTokens:   maxTokens,
		})
	}
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("LLM_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	cfg := AIConfig{
		Provider:     strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", gemini.DefaultModel),
		ArkAPIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
		ArkBaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
	}

	if err := cfg.Validate(); err != nil {
		return AIConfig{}, err
	}
	return cfg, nil
}

// EmotionConfig 描述情绪分类器的选择。
type EmotionConfig struct {
	Classifier string
}

// LLMEnabled 表示是否使用大模型进行情绪打分。
func (c EmotionConfig) LLMEnabled() bool {
	return c.Classifier == ClassifierLLM
}

func loadEmotionConfig() (EmotionConfig, error) {
	classifier := strings.ToLower(getEnvOrDefault("EMOTION_CLASSIFIER", ClassifierLexicon))
	switch classifier {
	case ClassifierLexicon, ClassifierLLM:
		return EmotionConfig{Classifier: classifier}, nil
	default:
		return EmotionConfig{}, fmt.Errorf("unsupported EMOTION_CLASSIFIER %q (expected %s or %s)", classifier, ClassifierLexicon, ClassifierLLM)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	var items []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
