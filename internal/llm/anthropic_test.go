package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicReply is a minimal Messages API response body.
func anthropicReply(text, stopReason string) map[string]any {
	content := []map[string]any{}
	if text != "" {
		content = append(content, map[string]any{"type": "text", "text": text})
	}
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     content,
		"model":       "claude-sonnet-4-20250514",
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	// No SDK retries so error mapping is observable.
	p, err := NewAnthropicProvider(AnthropicConfig{
		APIKey:  "test-key",
		Model:   "claude-sonnet",
		BaseURL: server.URL,
	}, option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func replyWith(body map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	const scores = `{"reading_comprehension":80,"grammar":70,"vocabulary":75,"feedback":"Good."}`
	p := newTestAnthropicProvider(t, replyWith(anthropicReply(scores, "end_turn")))

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Score these answers."}},
		Format:    FormatJSON,
		MaxTokens: 1024,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != scores {
		t.Errorf("content = %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 80 {
		t.Errorf("total tokens = %d, want 80", resp.Usage.TotalTokens)
	}
	if resp.StopReason != StopEnd {
		t.Errorf("stop reason = %q, want %q", resp.StopReason, StopEnd)
	}
}

func TestAnthropicProvider_SendsModelAndBudget(t *testing.T) {
	var body map[string]any
	var apiKey string
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-Api-Key")
		json.NewDecoder(r.Body).Decode(&body)
		replyWith(anthropicReply("ok", "end_turn"))(w, r)
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "prompt"}},
		MaxTokens: 1024,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apiKey != "test-key" {
		t.Errorf("X-Api-Key = %q, want test-key", apiKey)
	}
	if body["model"] != "claude-sonnet-4-20250514" {
		t.Errorf("model = %v, want claude-sonnet-4-20250514", body["model"])
	}
	if body["max_tokens"] != float64(1024) {
		t.Errorf("max_tokens = %v, want 1024", body["max_tokens"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 1 || msgs[0].(map[string]any)["role"] != "user" {
		t.Fatalf("messages = %v, want one user message", body["messages"])
	}
	if _, ok := body["system"]; ok {
		t.Errorf("system prompt sent for a request without one")
	}
}

func TestAnthropicProvider_JoinsTextBlocks(t *testing.T) {
	reply := anthropicReply(`{"grammar":`, "end_turn")
	reply["content"] = append(reply["content"].([]map[string]any), map[string]any{"type": "text", "text": ` 70}`})
	p := newTestAnthropicProvider(t, replyWith(reply))

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "prompt"}},
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != `{"grammar": 70}` {
		t.Fatalf("content = %q", resp.Text())
	}
}

func TestAnthropicProvider_MaxTokens(t *testing.T) {
	p := newTestAnthropicProvider(t, replyWith(anthropicReply(`{"grammar": 7`, "max_tokens")))

	t.Run("text reply is returned", func(t *testing.T) {
		resp, err := p.Generate(context.Background(), Request{
			Messages:  []Message{{Role: RoleUser, Content: "prompt"}},
			MaxTokens: 8,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StopReason != StopMaxTokens {
			t.Errorf("stop reason = %q, want %q", resp.StopReason, StopMaxTokens)
		}
	})

	t.Run("JSON reply is truncated", func(t *testing.T) {
		_, err := p.Generate(context.Background(), Request{
			Messages:  []Message{{Role: RoleUser, Content: "prompt"}},
			Format:    FormatJSON,
			MaxTokens: 8,
		})
		var trunc *ErrMaxTokensExceeded
		if !errors.As(err, &trunc) {
			t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
		}
		if string(trunc.Content) != `{"grammar": 7` {
			t.Errorf("partial content = %q", trunc.Content)
		}
	})
}

func TestAnthropicProvider_NoTextBlock(t *testing.T) {
	p := newTestAnthropicProvider(t, replyWith(anthropicReply("", "end_turn")))

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "prompt"}},
		MaxTokens: 16,
	})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		errType string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "rate limit",
			status:  http.StatusTooManyRequests,
			errType: "rate_limit_error",
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				if !errors.As(err, &rl) {
					t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
				}
				if rl.RetryAfter != 7*time.Second {
					t.Errorf("retry after = %s, want 7s", rl.RetryAfter)
				}
			},
		},
		{
			name:    "bad key",
			status:  http.StatusUnauthorized,
			errType: "authentication_error",
			check: func(t *testing.T, err error) {
				var ua *ErrUnauthorized
				if !errors.As(err, &ua) {
					t.Fatalf("expected ErrUnauthorized, got: %T (%v)", err, err)
				}
				if ua.Provider != "anthropic" {
					t.Errorf("provider = %q, want anthropic", ua.Provider)
				}
			},
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			errType: "api_error",
			check: func(t *testing.T, err error) {
				var unavail *ErrProviderUnavailable
				if !errors.As(err, &unavail) {
					t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "7")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": tt.errType, "message": tt.name},
				})
			})

			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, anthropicModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
