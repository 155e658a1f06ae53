package gemini

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestSingleUserTurn(t *testing.T) {
	req, err := buildRequest([]*schema.Message{schema.UserMessage("hello there")})
	require.NoError(t, err)

	assert.Nil(t, req.system)
	assert.Empty(t, req.history)
	require.Len(t, req.parts, 1)
	assert.Equal(t, genai.Text("hello there"), req.parts[0])
}

func TestBuildRequestSplitsSystemAndHistory(t *testing.T) {
	req, err := buildRequest([]*schema.Message{
		schema.SystemMessage("be kind"),
		schema.UserMessage("first"),
		schema.AssistantMessage("reply", nil),
		schema.SystemMessage("be brief"),
		schema.UserMessage("second"),
	})
	require.NoError(t, err)

	require.NotNil(t, req.system)
	assert.Equal(t, []genai.Part{genai.Text("be kind\n\nbe brief")}, req.system.Parts)

	require.Len(t, req.history, 2)
	assert.Equal(t, roleUser, req.history[0].Role)
	assert.Equal(t, roleModel, req.history[1].Role)
	assert.Equal(t, []genai.Part{genai.Text("second")}, req.parts)
}

func TestBuildRequestRequiresTrailingUserTurn(t *testing.T) {
	_, err := buildRequest([]*schema.Message{schema.SystemMessage("only system")})
	assert.ErrorIs(t, err, ErrNoUserTurn)

	_, err = buildRequest([]*schema.Message{
		schema.UserMessage("question"),
		schema.AssistantMessage("answer", nil),
	})
	assert.ErrorIs(t, err, ErrNoUserTurn)
}

func TestBuildRequestRejectsToolMessages(t *testing.T) {
	_, err := buildRequest([]*schema.Message{schema.ToolMessage("{}", "call-1"), schema.UserMessage("hi")})
	assert.Error(t, err)
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("I hear "), genai.Text("you.")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	assert.Equal(t, "I hear you.", extractText(resp))
	assert.Equal(t, "", extractText(nil))
	assert.Equal(t, "", extractText(&genai.GenerateContentResponse{}))
}

func TestApplyOptions(t *testing.T) {
	gm := &genai.GenerativeModel{}
	temperature := float32(0.2)
	maxTokens := 64

	applyOptions(gm, model.GetCommonOptions(&model.Options{},
		model.WithTemperature(temperature),
		model.WithMaxTokens(maxTokens),
		model.WithStop([]string{"Human:"}),
	))

	require.NotNil(t, gm.Temperature)
	assert.Equal(t, temperature, *gm.Temperature)
	require.NotNil(t, gm.MaxOutputTokens)
	assert.Equal(t, int32(64), *gm.MaxOutputTokens)
	assert.Equal(t, []string{"Human:"}, gm.StopSequences)
}

func TestNewChatModelRequiresKey(t *testing.T) {
	_, err := NewChatModel(context.Background(), &Config{})
	assert.Error(t, err)

	_, err = NewChatModel(context.Background(), nil)
	assert.Error(t, err)
}

func TestBindTools(t *testing.T) {
	m := &ChatModel{}
	assert.NoError(t, m.BindTools(nil))
	assert.Error(t, m.BindTools([]*schema.ToolInfo{{Name: "lookup"}}))
}
