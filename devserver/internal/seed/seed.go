// Package seed loads the default test questions into an empty store.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Cowspump/some-diploma-stuff/client"
)

//go:embed questions.yaml
var defaultQuestions []byte

type option struct {
	Text   string `yaml:"text"`
	Points int    `yaml:"points"`
}

type question struct {
	Text    string   `yaml:"text"`
	Options []option `yaml:"options"`
}

type file struct {
	Questions []question `yaml:"questions"`
}

// QuestionStore is the part of the store seeding needs.
type QuestionStore interface {
	CountQuestions(ctx context.Context) (int, error)
	AddQuestion(ctx context.Context, text string, options []client.AnswerOption) (int64, error)
}

// Questions parses a questions document.
func Questions(raw []byte) ([]client.QuestionInput, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	out := make([]client.QuestionInput, 0, len(f.Questions))
	for i, q := range f.Questions {
		if q.Text == "" || len(q.Options) == 0 {
			return nil, fmt.Errorf("question %d needs text and options", i+1)
		}
		in := client.QuestionInput{Text: q.Text}
		for _, o := range q.Options {
			in.Options = append(in.Options, client.AnswerOption{Text: o.Text, Points: o.Points})
		}
		out = append(out, in)
	}
	return out, nil
}

// Defaults returns the built-in questions.
func Defaults() ([]client.QuestionInput, error) {
	return Questions(defaultQuestions)
}

// Apply inserts the built-in questions when the store has none and returns
// how many were added.
func Apply(ctx context.Context, s QuestionStore) (int, error) {
	n, err := s.CountQuestions(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	qs, err := Defaults()
	if err != nil {
		return 0, err
	}
	for _, q := range qs {
		if _, err := s.AddQuestion(ctx, q.Text, q.Options); err != nil {
			return 0, err
		}
	}
	log.Info().Int("questions", len(qs)).Msg("seeded default test")
	return len(qs), nil
}
