// Package coach runs the evaluate, diagnose and recommend pipeline for one
// set of answers. It is shared by the HTTP server and the CLI.
package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/educoach-ai/educoach/internal/content"
	"github.com/educoach-ai/educoach/internal/diagnosis"
	"github.com/educoach-ai/educoach/internal/evaluation"
	"github.com/educoach-ai/educoach/internal/llm"
	"github.com/educoach-ai/educoach/internal/recommend"
	"github.com/educoach-ai/educoach/internal/scores"
)

// InputError reports answers that fail validation. Message is user-facing.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// ValidateAnswers checks that there is one non-blank answer per question.
func ValidateAnswers(c *content.Content, answers []string) error {
	msgs := c.Messages()
	if len(answers) != content.QuestionCount {
		return &InputError{Message: msgs.AnswerCount}
	}
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			return &InputError{Message: msgs.BlankAnswer}
		}
	}
	return nil
}

// ScoreReport is the scores section of a Report.
type ScoreReport struct {
	ReadingComprehension int    `json:"reading_comprehension"`
	Grammar              int    `json:"grammar"`
	Vocabulary           int    `json:"vocabulary"`
	Feedback             string `json:"feedback"`
}

// Report is the full assessment returned to the student.
type Report struct {
	Scores          ScoreReport         `json:"scores"`
	Diagnosis       diagnosis.Diagnosis `json:"diagnosis"`
	Recommendations recommend.Bundle    `json:"recommendations"`
}

// Coach wires the pipeline stages to shared content and an LLM provider.
type Coach struct {
	content  *content.Content
	provider llm.Provider
	cfg      evaluation.Config
	logger   *slog.Logger
}

// New creates a Coach. A nil logger means slog.Default().
func New(provider llm.Provider, c *content.Content, logger *slog.Logger) *Coach {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coach{
		content:  c,
		provider: provider,
		cfg:      evaluation.DefaultConfig(),
		logger:   logger,
	}
}

// Assess validates answers and runs them through the pipeline. A failed
// evaluation is logged and replaced with neutral fallback scores, so the
// only errors returned are *InputError and unexpected internal failures.
func (c *Coach) Assess(ctx context.Context, answers []string) (*Report, error) {
	if err := ValidateAnswers(c.content, answers); err != nil {
		return nil, err
	}

	evaluator := evaluation.New(c.provider, c.content, c.cfg)
	diagnoser := diagnosis.New(c.content)
	recommender := recommend.New(c.content)

	result, err := evaluator.Evaluate(ctx, answers)
	if err != nil {
		var evErr *evaluation.Error
		if !errors.As(err, &evErr) {
			return nil, fmt.Errorf("evaluate answers: %w", err)
		}
		c.logger.WarnContext(ctx, "evaluation failed, using fallback scores",
			"reason", evErr.Reason,
			"request_id", llm.RequestIDFrom(ctx),
			"error", evErr.Err,
		)
		result = evaluation.Fallback(c.content.FeedbackFallback())
	}

	set := scores.Set{}
	for _, a := range scores.Areas {
		set[a] = float64(result.Score(a))
	}

	diag, err := diagnoser.Diagnose(set)
	if err != nil {
		return nil, fmt.Errorf("diagnose scores: %w", err)
	}

	return &Report{
		Scores: ScoreReport{
			ReadingComprehension: result.Score(scores.AreaReadingComprehension),
			Grammar:              result.Score(scores.AreaGrammar),
			Vocabulary:           result.Score(scores.AreaVocabulary),
			Feedback:             result.Feedback,
		},
		Diagnosis:       diag,
		Recommendations: recommender.Recommend(diag),
	}, nil
}
