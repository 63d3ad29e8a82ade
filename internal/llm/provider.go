// Package llm talks to hosted large-language-model APIs behind a single
// Provider abstraction.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Provider is the core abstraction for LLM interaction.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its reply.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Format selects the shape of the reply the caller expects.
type Format int

const (
	// FormatText requests free text.
	FormatText Format = iota
	// FormatJSON asks the provider for a bare JSON object, using its native
	// JSON mode where one exists. Providers without one rely on the prompt.
	FormatJSON
)

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Optional.
	System string

	// Messages is the conversation. Scoring sends a single user message.
	Messages []Message

	// Format is the reply shape hint.
	Format Format

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Zero leaves the provider default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the LLM's output.
type Response struct {
	// Content is the raw reply text. It is not guaranteed to be valid JSON,
	// even for FormatJSON requests; callers validate it themselves.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Text returns the reply as a string.
func (r *Response) Text() string {
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// complete applies the checks shared by every provider to a decoded reply:
// an empty reply is invalid, and a JSON reply that stopped at the token limit
// is truncated.
func complete(req Request, resp *Response) (*Response, error) {
	if len(bytes.TrimSpace(resp.Content)) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty reply from %s", resp.Model)}
	}
	if req.Format == FormatJSON && resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	return resp, nil
}
