// Package evaluation scores a student's answers by asking an LLM to grade
// them against the reading passage.
package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/educoach-ai/educoach/internal/content"
	"github.com/educoach-ai/educoach/internal/llm"
	"github.com/educoach-ai/educoach/internal/scores"
)

// Reason tags why an evaluation failed.
type Reason string

const (
	// ReasonCredential means the API key is missing or was rejected.
	ReasonCredential Reason = "credential"
	// ReasonProvider covers network, rate-limit and API errors.
	ReasonProvider Reason = "provider"
	// ReasonMalformed means the reply was empty, truncated or could not be
	// turned into scores.
	ReasonMalformed Reason = "malformed"
)

// Error is a failed evaluation. Callers decide whether to substitute Fallback.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("evaluation failed (%s): %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result is the outcome of scoring one set of answers.
type Result struct {
	Scores   scores.Set
	Feedback string
}

// Score returns the integer score for area.
func (r *Result) Score(area scores.Area) int {
	return int(r.Scores[area])
}

// Fallback is the neutral result reported when evaluation fails.
func Fallback(feedback string) *Result {
	set := scores.Set{}
	for _, a := range scores.Areas {
		set[a] = scores.Neutral
	}
	return &Result{Scores: set, Feedback: feedback}
}

// Config holds evaluator settings.
type Config struct {
	MaxTokens int
}

// DefaultConfig returns the settings used in production.
func DefaultConfig() Config {
	return Config{MaxTokens: 1024}
}

// Evaluator grades answers to the content's questions.
type Evaluator struct {
	provider llm.Provider
	content  *content.Content
	cfg      Config
}

// New creates an Evaluator.
func New(provider llm.Provider, c *content.Content, cfg Config) *Evaluator {
	return &Evaluator{provider: provider, content: c, cfg: cfg}
}

// Evaluate sends the answers to the LLM and parses the returned scores.
// LLM and parsing failures are returned as *Error; anything else is a
// programming or content error.
func (e *Evaluator) Evaluate(ctx context.Context, answers []string) (*Result, error) {
	questions := e.content.Questions()
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("got %d answers for %d questions", len(answers), len(questions))
	}

	prompt, err := buildPrompt(e.content.Passage(), questions, answers)
	if err != nil {
		return nil, fmt.Errorf("build evaluation prompt: %w", err)
	}

	ctx = llm.WithPurpose(ctx, "answer-evaluation")
	resp, err := e.provider.Generate(ctx, llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Format:    llm.FormatJSON,
		MaxTokens: e.cfg.MaxTokens,
	})
	if err != nil {
		return nil, &Error{Reason: classify(err), Err: err}
	}

	result, err := parseReply(resp.Text(), e.content.FeedbackDefault())
	if err != nil {
		return nil, &Error{Reason: ReasonMalformed, Err: err}
	}
	return result, nil
}

// classify tags a provider failure.
func classify(err error) Reason {
	var (
		notConfigured *llm.ErrNotConfigured
		unauthorized  *llm.ErrUnauthorized
		truncated     *llm.ErrMaxTokensExceeded
		invalid       *llm.ErrInvalidResponse
	)
	switch {
	case errors.As(err, &notConfigured), errors.As(err, &unauthorized):
		return ReasonCredential
	case errors.As(err, &truncated), errors.As(err, &invalid):
		return ReasonMalformed
	default:
		return ReasonProvider
	}
}

// parseReply turns the raw LLM reply into a Result.
func parseReply(reply, defaultFeedback string) (*Result, error) {
	text := stripCodeFence(reply)

	if !gjson.Valid(text) {
		return nil, &llm.ErrInvalidResponse{
			Content: json.RawMessage(text),
			Err:     fmt.Errorf("reply is not valid JSON"),
		}
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return nil, &llm.ErrInvalidResponse{
			Content: json.RawMessage(text),
			Err:     fmt.Errorf("reply is not a JSON object"),
		}
	}
	if err := llm.Validate(ScoresSchema, json.RawMessage(text)); err != nil {
		return nil, err
	}

	set := scores.Set{}
	for _, area := range scores.Areas {
		v, err := coerceScore(doc.Get(string(area)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", area, err)
		}
		set[area] = float64(v)
	}

	feedback := defaultFeedback
	if f := doc.Get("feedback"); f.Exists() && f.Type != gjson.Null {
		feedback = f.String()
	}

	return &Result{Scores: set, Feedback: feedback}, nil
}

// coerceScore converts a score field to an integer. Missing fields score
// scores.Neutral; fractional numbers are truncated. Values outside the int32
// range are rejected rather than wrapped.
func coerceScore(v gjson.Result) (int, error) {
	var f float64
	switch {
	case !v.Exists():
		return scores.Neutral, nil
	case v.Type == gjson.Number:
		f = math.Trunc(v.Num)
	case v.Type == gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, fmt.Errorf("score %q is not an integer", v.Str)
		}
		f = float64(n)
	default:
		return 0, fmt.Errorf("score has unsupported type %s", v.Type)
	}

	if math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("score %s is out of range", v.Raw)
	}
	return int(f), nil
}

// stripCodeFence removes markdown code fences the model may wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```", "")
	case strings.HasPrefix(s, "```"):
		s = strings.ReplaceAll(s, "```", "")
	}
	return strings.TrimSpace(s)
}
