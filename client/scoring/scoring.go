// Package scoring aggregates journal moods and test totals into the figures
// and advice shown to a user. Every function is pure and deterministic.
package scoring

import (
	"fmt"
	"math"

	"github.com/Cowspump/some-diploma-stuff/client/internal/types"
)

// MoodLevel buckets a 0-5 journal score.
type MoodLevel string

const (
	MoodVeryBad  MoodLevel = "very-bad"
	MoodBad      MoodLevel = "bad"
	MoodNeutral  MoodLevel = "neutral"
	MoodGood     MoodLevel = "good"
	MoodVeryGood MoodLevel = "very-good"
)

// Badge grades a test total.
type Badge string

const (
	BadgeExcellent      Badge = "excellent"
	BadgeGood           Badge = "good"
	BadgeAverage        Badge = "average"
	BadgeNeedsAttention Badge = "needs-attention"
)

// Label is the human-readable badge text.
func (b Badge) Label() string {
	switch b {
	case BadgeExcellent:
		return "Excellent"
	case BadgeGood:
		return "Good"
	case BadgeAverage:
		return "Average"
	default:
		return "Needs attention"
	}
}

// Negative moods are at or below this score.
const negativeMoodThreshold = 2

// AverageMood is the mean journal score rounded to two decimals; 0 when there
// are no entries.
func AverageMood(scores []int) float64 {
	return mean(scores)
}

// AverageScore applies the same rule to test totals.
func AverageScore(totals []int) float64 {
	return mean(totals)
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return round2(float64(sum) / float64(len(xs)))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// MoodLevelFor maps a journal score to its bucket.
func MoodLevelFor(score int) MoodLevel {
	switch {
	case score <= 1:
		return MoodVeryBad
	case score == 2:
		return MoodBad
	case score == 3:
		return MoodNeutral
	case score == 4:
		return MoodGood
	default:
		return MoodVeryGood
	}
}

// BadgeFor grades a test total.
func BadgeFor(total int) Badge {
	switch {
	case total >= 80:
		return BadgeExcellent
	case total >= 60:
		return BadgeGood
	case total >= 40:
		return BadgeAverage
	default:
		return BadgeNeedsAttention
	}
}

// HasNegativeMood reports whether any score is 2 or lower.
func HasNegativeMood(scores []int) bool {
	for _, s := range scores {
		if s <= negativeMoodThreshold {
			return true
		}
	}
	return false
}

// TotalScore sums the points of the selected option for each answered
// question. answers maps question id to option index.
func TotalScore(questions []types.Question, answers map[int]int) (int, error) {
	byID := make(map[int]types.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	total := 0
	for qid, idx := range answers {
		q, ok := byID[qid]
		if !ok {
			return 0, fmt.Errorf("question %d not found", qid)
		}
		if idx < 0 || idx >= len(q.Options) {
			return 0, fmt.Errorf("invalid option index %d for question %d", idx, qid)
		}
		total += q.Options[idx].Points
	}
	return total, nil
}
