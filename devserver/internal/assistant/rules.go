package assistant

import (
	"context"
	"strings"

	"github.com/Cowspump/some-diploma-stuff/client/scoring"
)

// Rules is the offline assistant. It answers from scoring recommendations
// and never fails.
type Rules struct{}

func (Rules) Reply(_ context.Context, prompt string, h History) (string, error) {
	var b strings.Builder
	b.WriteString("Thanks for sharing. ")
	b.WriteString(Facts(h))
	for _, rec := range scoring.Recommend(h.Totals, h.Moods, h.LastNote) {
		b.WriteString("\n- ")
		b.WriteString(rec.Title)
		b.WriteString(": ")
		b.WriteString(rec.Description)
	}
	if strings.TrimSpace(prompt) != "" {
		b.WriteString("\nIf this keeps bothering you, consider talking it through with your therapist.")
	}
	return b.String(), nil
}

func (Rules) Summarize(_ context.Context, h History) (string, error) {
	return truncate(Facts(h), maxSummaryRunes), nil
}
