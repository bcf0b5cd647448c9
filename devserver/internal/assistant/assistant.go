// Package assistant produces replies for /ai/ask and the per-user history
// summaries the replies are grounded on.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cowspump/some-diploma-stuff/client/scoring"
)

// History is what the assistant knows about a user.
type History struct {
	// Moods are journal scores, newest first.
	Moods []int
	// Totals are test totals, oldest first.
	Totals []int
	// LastNote is the text of the newest journal note.
	LastNote string
	// Summary is the most recent stored summary, if any.
	Summary string
}

// Assistant answers user prompts.
type Assistant interface {
	Reply(ctx context.Context, prompt string, h History) (string, error)
	Summarize(ctx context.Context, h History) (string, error)
}

const maxSummaryRunes = 2000

// Facts renders the history as plain sentences. It seeds both the rule based
// replies and the context sent to a language model.
func Facts(h History) string {
	in := scoring.Summarize(h.Totals, h.Moods, h.LastNote)
	var b strings.Builder
	if in.Entries > 0 {
		fmt.Fprintf(&b, "Average mood %.2f over %d journal entries.", in.AverageMood, in.Entries)
		if scoring.HasNegativeMood(h.Moods) {
			b.WriteString(" Some recent entries show a low mood.")
		}
	} else {
		b.WriteString("No journal entries yet.")
	}
	if in.Tests > 0 {
		fmt.Fprintf(&b, " Average test score %.2f over %d tests (%s, trend %s).",
			in.AverageScore, in.Tests, in.Badge.Label(), in.Trend)
	} else {
		b.WriteString(" No test results yet.")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
