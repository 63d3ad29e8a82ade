// Package content holds the fixed, read-only data the service is built
// around: the reading passage, its questions, the canned recommendation table
// and every user-facing string. It is loaded once at process start and handed
// to each component explicitly.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// QuestionCount is the number of questions (and therefore answers) per test.
const QuestionCount = 3

// GeneralKey is the table entry holding level-wide study tips.
const GeneralKey = "general"

//go:embed default.yaml
var defaultYAML []byte

// Endpoint describes one route advertised by the service metadata.
type Endpoint struct {
	Name  string `yaml:"name"`
	Route string `yaml:"route"`
}

// Service is the metadata returned by the root route.
type Service struct {
	Message     string     `yaml:"message"`
	Description string     `yaml:"description"`
	Endpoints   []Endpoint `yaml:"endpoints"`
}

// Messages are the localized HTTP error messages.
type Messages struct {
	AnswerCount   string `yaml:"answer_count"`
	BlankAnswer   string `yaml:"blank_answer"`
	InvalidBody   string `yaml:"invalid_body"`
	InternalError string `yaml:"internal_error"`
}

// document mirrors the YAML layout.
type document struct {
	Service    Service  `yaml:"service"`
	Passage    string   `yaml:"passage"`
	Questions  []string `yaml:"questions"`
	Evaluation struct {
		FeedbackDefault  string `yaml:"feedback_default"`
		FeedbackFallback string `yaml:"feedback_fallback"`
	} `yaml:"evaluation"`
	Diagnosis struct {
		WeakSummary   string `yaml:"weak_summary"`
		StrongSummary string `yaml:"strong_summary"`
	} `yaml:"diagnosis"`
	Recommendations struct {
		DefaultLevel string                         `yaml:"default_level"`
		AllStrong    string                         `yaml:"all_strong"`
		LevelAdvice  map[string]string              `yaml:"level_advice"`
		Levels       map[string]map[string][]string `yaml:"levels"`
	} `yaml:"recommendations"`
	Messages Messages `yaml:"messages"`
}

// Content is the parsed, validated content set. All accessors return copies,
// so a *Content can be shared freely between concurrent requests.
type Content struct {
	doc         document
	weakSummary *template.Template
}

// Default returns the content embedded in the binary.
func Default() *Content {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded content is invalid: %v", err))
	}
	return c
}

// Load reads content from a YAML file. An empty path yields Default().
func Load(path string) (*Content, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("content file %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML content document.
func Parse(data []byte) (*Content, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}

	if err := doc.validate(); err != nil {
		return nil, err
	}

	tmpl, err := template.New("weak-summary").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(doc.Diagnosis.WeakSummary)
	if err != nil {
		return nil, fmt.Errorf("parse diagnosis.weak_summary: %w", err)
	}

	return &Content{doc: doc, weakSummary: tmpl}, nil
}

func (d *document) validate() error {
	switch {
	case strings.TrimSpace(d.Passage) == "":
		return fmt.Errorf("passage is empty")
	case len(d.Questions) != QuestionCount:
		return fmt.Errorf("want %d questions, got %d", QuestionCount, len(d.Questions))
	case d.Evaluation.FeedbackFallback == "":
		return fmt.Errorf("evaluation.feedback_fallback is empty")
	case d.Diagnosis.WeakSummary == "" || d.Diagnosis.StrongSummary == "":
		return fmt.Errorf("diagnosis summaries must both be set")
	case d.Recommendations.AllStrong == "":
		return fmt.Errorf("recommendations.all_strong is empty")
	}
	for i, q := range d.Questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("question %d is empty", i+1)
		}
	}
	if _, ok := d.Recommendations.LevelAdvice[d.Recommendations.DefaultLevel]; !ok {
		return fmt.Errorf("no level_advice for default level %q", d.Recommendations.DefaultLevel)
	}
	return nil
}

// Service returns the service metadata.
func (c *Content) Service() Service {
	s := c.doc.Service
	s.Endpoints = append([]Endpoint(nil), s.Endpoints...)
	return s
}

// Passage returns the reading passage.
func (c *Content) Passage() string { return c.doc.Passage }

// Questions returns the questions in the order answers are expected.
func (c *Content) Questions() []string {
	return append([]string(nil), c.doc.Questions...)
}

// FeedbackDefault is used when the LLM omits its feedback field.
func (c *Content) FeedbackDefault() string { return c.doc.Evaluation.FeedbackDefault }

// FeedbackFallback is reported alongside the neutral fallback scores.
func (c *Content) FeedbackFallback() string { return c.doc.Evaluation.FeedbackFallback }

// WeakSummary renders the summary sentence naming the weak areas.
func (c *Content) WeakSummary(areas []string) (string, error) {
	var buf bytes.Buffer
	if err := c.weakSummary.Execute(&buf, struct{ Areas []string }{areas}); err != nil {
		return "", fmt.Errorf("render weak summary: %w", err)
	}
	return buf.String(), nil
}

// StrongSummary is the sentence used when no area is weak.
func (c *Content) StrongSummary() string { return c.doc.Diagnosis.StrongSummary }

// LevelAdvice returns the advice sentence for level, falling back to the
// default level's sentence for levels without one.
func (c *Content) LevelAdvice(level string) string {
	if advice, ok := c.doc.Recommendations.LevelAdvice[level]; ok {
		return advice
	}
	return c.doc.Recommendations.LevelAdvice[c.doc.Recommendations.DefaultLevel]
}

// Suggestions looks up the table entry for (level, key). The second result
// reports whether the entry exists.
func (c *Content) Suggestions(level, key string) ([]string, bool) {
	areas, ok := c.doc.Recommendations.Levels[level]
	if !ok {
		return nil, false
	}
	items, ok := areas[key]
	if !ok {
		return nil, false
	}
	return append([]string(nil), items...), true
}

// AllStrong is the single recommendation given when no area is weak.
func (c *Content) AllStrong() string { return c.doc.Recommendations.AllStrong }

// Messages returns the HTTP error messages.
func (c *Content) Messages() Messages { return c.doc.Messages }
