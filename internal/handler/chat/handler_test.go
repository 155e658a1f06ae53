package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	analysis "github.com/zhouzirui/whisper/backend/internal/analysis/emotion"
	"github.com/zhouzirui/whisper/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/whisper/backend/internal/service/chat"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) Reply(context.Context, string) (string, error) {
	return g.reply, g.err
}

type stubClassifier struct {
	scores analysis.Scores
}

func (c stubClassifier) Classify(context.Context, string) analysis.Scores {
	return c.scores
}

func setupRouter(gen stubGenerator, cls stubClassifier) *chi.Mux {
	handler := New(chatservice.NewService(gen, cls))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postChat(t *testing.T, r http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeResponse(t *testing.T, resp *httptest.ResponseRecorder) chat.Response {
	t.Helper()
	var raw map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	for _, field := range []string{"response", "emotion", "memory_tag"} {
		if _, ok := raw[field].(string); !ok {
			t.Fatalf("expected string field %q in %v", field, raw)
		}
	}

	var out chat.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestChatEndToEnd(t *testing.T) {
	r := setupRouter(
		stubGenerator{reply: "I hear that you're in pain..."},
		stubClassifier{scores: analysis.Scores{analysis.Sad: 0.9}},
	)

	resp := postChat(t, r, `{"user_input": "I feel hopeless today"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json content type, got %q", ct)
	}

	got := decodeResponse(t, resp)
	want := chat.Response{Response: "I hear that you're in pain...", Emotion: "Sad", MemoryTag: "I feel hopeless today"}
	if got != want {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestChatGenerationFailureStillOK(t *testing.T) {
	r := setupRouter(stubGenerator{err: errors.New("quota exceeded")}, stubClassifier{})

	resp := postChat(t, r, `{"user_input": "hello"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	got := decodeResponse(t, resp)
	if got.Response != "Error generating response: quota exceeded" {
		t.Fatalf("unexpected response text: %q", got.Response)
	}
	if got.Emotion != "neutral" {
		t.Fatalf("expected neutral emotion, got %q", got.Emotion)
	}
}

func TestChatLongInputMemoryTag(t *testing.T) {
	r := setupRouter(stubGenerator{reply: "ok"}, stubClassifier{scores: analysis.Scores{analysis.Happy: 0.8, analysis.Sad: 0.1}})
	input := strings.Repeat("a", 20) + strings.Repeat("z", 80)
	payload, _ := json.Marshal(map[string]string{"user_input": input})

	resp := postChat(t, r, string(payload))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	got := decodeResponse(t, resp)
	if got.MemoryTag != strings.Repeat("z", 80) {
		t.Fatalf("unexpected memory tag %q", got.MemoryTag)
	}
	if got.Emotion != "Happy" {
		t.Fatalf("expected Happy, got %q", got.Emotion)
	}
}

func TestChatEmptyInputIsAccepted(t *testing.T) {
	r := setupRouter(stubGenerator{reply: "Take your time."}, stubClassifier{})

	resp := postChat(t, r, `{"user_input": ""}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := decodeResponse(t, resp); got.MemoryTag != "" {
		t.Fatalf("expected empty memory tag, got %q", got.MemoryTag)
	}
}

func TestChatRejectsInvalidBodies(t *testing.T) {
	r := setupRouter(stubGenerator{reply: "ok"}, stubClassifier{})

	cases := map[string]string{
		"empty body":     ``,
		"not json":       `user_input=hi`,
		"missing field":  `{}`,
		"wrong type":     `{"user_input": 42}`,
		"null field":     `{"user_input": null}`,
		"trailing value": `{"user_input": "a"} {"user_input": "b"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postChat(t, r, body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
			var payload map[string]string
			if err := json.NewDecoder(bytes.NewReader(resp.Body.Bytes())).Decode(&payload); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if payload["error"] == "" {
				t.Fatal("expected error message")
			}
		})
	}
}

func TestChatRejectsGet(t *testing.T) {
	r := setupRouter(stubGenerator{reply: "ok"}, stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}
