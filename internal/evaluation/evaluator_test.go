package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educoach-ai/educoach/internal/content"
	"github.com/educoach-ai/educoach/internal/llm"
	"github.com/educoach-ai/educoach/internal/scores"
)

var sampleAnswers = []string{
	"Edison tried thousands of materials.",
	"He saw failure as learning what does not work.",
	"Persistence matters more than talent.",
}

func newEvaluator(responses ...llm.MockResponse) (*Evaluator, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	return New(mock, content.Default(), DefaultConfig()), mock
}

func TestEvaluate_PlainJSON(t *testing.T) {
	ev, _ := newEvaluator(llm.MockText(`{"reading_comprehension": 85, "grammar": 70, "vocabulary": 75, "feedback": "좋아요"}`))

	res, err := ev.Evaluate(context.Background(), sampleAnswers)
	require.NoError(t, err)
	assert.Equal(t, 85, res.Score(scores.AreaReadingComprehension))
	assert.Equal(t, 70, res.Score(scores.AreaGrammar))
	assert.Equal(t, 75, res.Score(scores.AreaVocabulary))
	assert.Equal(t, "좋아요", res.Feedback)
}

func TestEvaluate_FencedJSON(t *testing.T) {
	reply := "```json\n{\"reading_comprehension\": 85, \"grammar\": 70, \"vocabulary\": 75, \"feedback\": \"Good\"}\n```"
	ev, _ := newEvaluator(llm.MockText(reply))

	res, err := ev.Evaluate(context.Background(), sampleAnswers)
	require.NoError(t, err)
	assert.Equal(t, 85, res.Score(scores.AreaReadingComprehension))
	assert.Equal(t, "Good", res.Feedback)
}

func TestEvaluate_BareFence(t *testing.T) {
	ev, _ := newEvaluator(llm.MockText("```\n{\"grammar\": 61}\n```"))

	res, err := ev.Evaluate(context.Background(), sampleAnswers)
	require.NoError(t, err)
	assert.Equal(t, 61, res.Score(scores.AreaGrammar))
}

func TestEvaluate_MissingFieldsDefault(t *testing.T) {
	ev, _ := newEvaluator(llm.MockText(`{"grammar": 90}`))

	res, err := ev.Evaluate(context.Background(), sampleAnswers)
	require.NoError(t, err)
	assert.Equal(t, scores.Neutral, res.Score(scores.AreaReadingComprehension))
	assert.Equal(t, 90, res.Score(scores.AreaGrammar))
	assert.Equal(t, scores.Neutral, res.Score(scores.AreaVocabulary))
	assert.Equal(t, content.Default().FeedbackDefault(), res.Feedback)
}

func TestEvaluate_CoercesScores(t *testing.T) {
	ev, _ := newEvaluator(llm.MockText(`{"reading_comprehension": "72", "grammar": 64.9, "vocabulary": " 80 "}`))

	res, err := ev.Evaluate(context.Background(), sampleAnswers)
	require.NoError(t, err)
	assert.Equal(t, 72, res.Score(scores.AreaReadingComprehension))
	assert.Equal(t, 64, res.Score(scores.AreaGrammar))
	assert.Equal(t, 80, res.Score(scores.AreaVocabulary))
}

func TestEvaluate_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "prose", reply: "The student did well."},
		{name: "array", reply: `[85, 70, 75]`},
		{name: "non-numeric string", reply: `{"grammar": "good"}`},
		{name: "null score", reply: `{"grammar": null}`},
		{name: "boolean score", reply: `{"vocabulary": true}`},
		{name: "truncated", reply: `{"grammar": 70, "vocab`},
		{name: "huge score", reply: `{"reading_comprehension": 1e30, "grammar": 85, "vocabulary": 90}`},
		{name: "huge negative score", reply: `{"grammar": -1e30}`},
		{name: "overflowing exponent", reply: `{"grammar": 1e400}`},
		{name: "huge string score", reply: `{"vocabulary": "99999999999"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, _ := newEvaluator(llm.MockText(tt.reply))

			res, err := ev.Evaluate(context.Background(), sampleAnswers)
			assert.Nil(t, res)

			var evErr *Error
			require.ErrorAs(t, err, &evErr)
			assert.Equal(t, ReasonMalformed, evErr.Reason)
		})
	}
}

func TestEvaluate_NullFeedbackKeepsScores(t *testing.T) {
	ev, _ := newEvaluator(llm.MockText(`{"reading_comprehension": 85, "grammar": 70, "vocabulary": 75, "feedback": null}`))

	res, err := ev.Evaluate(context.Background(), sampleAnswers)
	require.NoError(t, err)
	assert.Equal(t, 85, res.Score(scores.AreaReadingComprehension))
	assert.Equal(t, 70, res.Score(scores.AreaGrammar))
	assert.Equal(t, 75, res.Score(scores.AreaVocabulary))
	assert.Equal(t, content.Default().FeedbackDefault(), res.Feedback)
}

func TestEvaluate_ProviderError(t *testing.T) {
	ev, _ := newEvaluator(llm.MockError(&llm.ErrRateLimit{RetryAfter: 0}))

	_, err := ev.Evaluate(context.Background(), sampleAnswers)

	var evErr *Error
	require.ErrorAs(t, err, &evErr)
	assert.Equal(t, ReasonProvider, evErr.Reason)

	var rl *llm.ErrRateLimit
	assert.True(t, errors.As(err, &rl), "underlying provider error should be preserved")
}

func TestEvaluate_MissingCredential(t *testing.T) {
	p := llm.Unconfigured(&llm.ErrNotConfigured{Provider: "anthropic"})
	ev := New(p, content.Default(), DefaultConfig())

	_, err := ev.Evaluate(context.Background(), sampleAnswers)

	var evErr *Error
	require.ErrorAs(t, err, &evErr)
	assert.Equal(t, ReasonCredential, evErr.Reason)
}

func TestEvaluate_ClassifiesProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Reason
	}{
		{"rejected key", &llm.ErrUnauthorized{Provider: "openai"}, ReasonCredential},
		{"truncated reply", &llm.ErrMaxTokensExceeded{Content: []byte(`{"grammar": 7`)}, ReasonMalformed},
		{"empty reply", &llm.ErrInvalidResponse{}, ReasonMalformed},
		{"outage", &llm.ErrProviderUnavailable{}, ReasonProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, _ := newEvaluator(llm.MockError(tt.err))

			_, err := ev.Evaluate(context.Background(), sampleAnswers)

			var evErr *Error
			require.ErrorAs(t, err, &evErr)
			assert.Equal(t, tt.want, evErr.Reason)
		})
	}
}

func TestEvaluate_WrongAnswerCount(t *testing.T) {
	ev, mock := newEvaluator()

	_, err := ev.Evaluate(context.Background(), sampleAnswers[:2])
	require.Error(t, err)

	var evErr *Error
	assert.False(t, errors.As(err, &evErr))
	assert.Zero(t, mock.CallCount())
}

func TestEvaluate_Request(t *testing.T) {
	ev, mock := newEvaluator(llm.MockText(`{}`))

	_, err := ev.Evaluate(context.Background(), sampleAnswers)
	require.NoError(t, err)
	require.Equal(t, 1, mock.CallCount())

	req := mock.Calls()[0]
	assert.Equal(t, llm.FormatJSON, req.Format)
	assert.Equal(t, 1024, req.MaxTokens)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)

	prompt := req.Messages[0].Content
	c := content.Default()
	assert.Contains(t, prompt, c.Passage())
	for i, q := range c.Questions() {
		assert.Contains(t, prompt, q)
		assert.Contains(t, prompt, "Q"+string(rune('1'+i))+": "+sampleAnswers[i])
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	c := content.Default()
	a, err := buildPrompt(c.Passage(), c.Questions(), sampleAnswers)
	require.NoError(t, err)
	b, err := buildPrompt(c.Passage(), c.Questions(), sampleAnswers)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	assert.True(t, strings.Index(a, "<passage>") < strings.Index(a, "<questions>"))
	assert.True(t, strings.Index(a, "<questions>") < strings.Index(a, "<student_answers>"))
}

func TestFallback(t *testing.T) {
	res := Fallback("평가 중 오류가 발생했습니다.")
	for _, a := range scores.Areas {
		assert.Equal(t, scores.Neutral, res.Score(a))
	}
	assert.Equal(t, "평가 중 오류가 발생했습니다.", res.Feedback)
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}\n":           `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		"```json{\"a\":1}```   ":  `{"a":1}`,
		"prefix ```json {} ```":   "prefix ```json {} ```",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripCodeFence(in), "input %q", in)
	}
}
