// Package diagnosis maps per-area scores to a proficiency level and the
// student's weakest area.
package diagnosis

import (
	"fmt"

	"github.com/educoach-ai/educoach/internal/content"
	"github.com/educoach-ai/educoach/internal/scores"
)

// Diagnoser classifies score sets. It holds no state beyond the content it
// renders summaries from.
type Diagnoser struct {
	content *content.Content
}

// New creates a Diagnoser.
func New(c *content.Content) *Diagnoser {
	return &Diagnoser{content: c}
}

// Diagnose derives the level, weakness and summary for s.
func (d *Diagnoser) Diagnose(s scores.Set) (Diagnosis, error) {
	weak := Weaknesses(s)

	summary := d.content.StrongSummary()
	if len(weak) > 0 {
		names := make([]string, len(weak))
		for i, a := range weak {
			names[i] = string(a)
		}
		var err error
		summary, err = d.content.WeakSummary(names)
		if err != nil {
			return Diagnosis{}, err
		}
	}

	return Diagnosis{
		Level:    LevelFor(s),
		Weakness: weak,
		Summary:  summary,
	}, nil
}

// DiagnoseJSON parses a JSON score object with scores.Parse and diagnoses it.
func (d *Diagnoser) DiagnoseJSON(raw []byte) (Diagnosis, error) {
	s, err := scores.Parse(raw)
	if err != nil {
		return Diagnosis{}, fmt.Errorf("diagnose: %w", err)
	}
	return d.Diagnose(s)
}
