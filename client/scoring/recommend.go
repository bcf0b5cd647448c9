package scoring

import (
	"fmt"
	"math"
)

// Category groups recommendations for display.
type Category string

const (
	CategoryUrgency   Category = "urgency"
	CategoryAnalytics Category = "analytics"
	CategoryWellness  Category = "wellness"
	CategoryJournal   Category = "journal"
	CategoryGeneral   Category = "general"
)

// Trend compares the newest test total with the oldest.
type Trend string

const (
	TrendInitial   Trend = "initial data"
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Recommendation is one piece of advice.
type Recommendation struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

// Insights is the summary of a user's history.
type Insights struct {
	AverageMood     float64          `json:"average_mood"`
	AverageScore    float64          `json:"average_score"`
	Badge           Badge            `json:"badge"`
	Trend           Trend            `json:"trend"`
	Entries         int              `json:"entries"`
	Tests           int              `json:"tests"`
	Recommendations []Recommendation `json:"recommendations"`
}

const (
	stressThreshold = 50
	noteEchoRunes   = 50
)

// TrendOf classifies chronologically ordered totals (oldest first).
func TrendOf(totals []int) Trend {
	if len(totals) < 2 {
		return TrendInitial
	}
	first, last := totals[0], totals[len(totals)-1]
	switch {
	case last > first:
		return TrendImproving
	case last < first:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Recommend builds advice from test totals (oldest first), journal moods and
// the text of the newest journal note. The result is never empty.
func Recommend(totals, moods []int, lastNote string) []Recommendation {
	var recs []Recommendation

	if len(totals) > 0 {
		avg := AverageScore(totals)
		if avg < stressThreshold {
			recs = append(recs, Recommendation{
				Title:       "Elevated stress",
				Description: "Your results point to a high stress level. Take regular breaks and try meditation.",
				Category:    CategoryUrgency,
			})
		}
		recs = append(recs, Recommendation{
			Title:       "Trend analysis",
			Description: fmt.Sprintf("Your average result: %.1f. Trend: %s", avg, TrendOf(totals)),
			Category:    CategoryAnalytics,
		})
	}

	if len(moods) > 0 {
		if HasNegativeMood(moods) {
			recs = append(recs, Recommendation{
				Title:       "Mental health",
				Description: "We noticed periods of negative emotions. Try mindfulness techniques.",
				Category:    CategoryWellness,
			})
		}
		recs = append(recs, Recommendation{
			Title:       "Latest entry",
			Description: fmt.Sprintf(`"%s"`, excerpt(lastNote)),
			Category:    CategoryJournal,
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Title:       "Start with the basics",
			Description: "Fill in the mood journal and take the test to get personal recommendations.",
			Category:    CategoryGeneral,
		})
	}
	return recs
}

func excerpt(note string) string {
	if note == "" {
		return "No text..."
	}
	r := []rune(note)
	if len(r) > noteEchoRunes {
		r = r[:noteEchoRunes]
	}
	return string(r) + "..."
}

// Summarize computes Insights. totals are oldest first; lastNote is the note
// of the newest journal entry.
func Summarize(totals, moods []int, lastNote string) Insights {
	avgScore := AverageScore(totals)
	return Insights{
		AverageMood:     AverageMood(moods),
		AverageScore:    avgScore,
		Badge:           BadgeFor(int(math.Round(avgScore))),
		Trend:           TrendOf(totals),
		Entries:         len(moods),
		Tests:           len(totals),
		Recommendations: Recommend(totals, moods, lastNote),
	}
}
