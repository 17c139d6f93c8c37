// Package stats computes monthly goal completion statistics.
package stats

import (
	"math"

	"github.com/worklane/worklane/internal/domain/goal"
)

// Bucket holds completion counts for one YYYY-MM target month.
type Bucket struct {
	Month          string `json:"month"`
	Achieved       int    `json:"achieved"`
	Pending        int    `json:"pending"`
	CompletionRate int    `json:"completion_rate"`
}

// Summary extends a Bucket with month-over-month deltas.
type Summary struct {
	Bucket
	PreviousAchieved int `json:"previous_achieved"`
	AchievedDelta    int `json:"achieved_delta"`
	// DeltaPercent is the rounded percentage change against the previous
	// month: 100 when the previous month had no achievements but this one
	// does, and 0 ("no change") when both are zero.
	DeltaPercent int `json:"delta_percent"`
}

// count tallies achieved and pending goals whose target month matches.
// Rejected goals are excluded from the completion denominator.
func count(goals []goal.Goal, month string) (achieved, pending int) {
	for _, g := range goals {
		if goal.NormalizeMonth(g.TargetMonth) != month {
			continue
		}
		switch g.Status {
		case goal.StatusAchieved:
			achieved++
		case goal.StatusPending:
			pending++
		}
	}
	return achieved, pending
}

// completionRate returns round(achieved/(achieved+pending)*100), or 0 when
// the denominator is zero.
func completionRate(achieved, pending int) int {
	total := achieved + pending
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(achieved) / float64(total) * 100))
}

// Monthly computes the completion summary for one reference month, including
// the delta against the immediately preceding month.
func Monthly(goals []goal.Goal, month string) Summary {
	achieved, pending := count(goals, month)
	prevAchieved, _ := count(goals, goal.PrevMonth(month))

	delta := achieved - prevAchieved
	var deltaPct int
	switch {
	case prevAchieved != 0:
		deltaPct = int(math.Round(float64(delta) / float64(prevAchieved) * 100))
	case achieved != 0:
		deltaPct = 100
	default:
		deltaPct = 0
	}

	return Summary{
		Bucket: Bucket{
			Month:          month,
			Achieved:       achieved,
			Pending:        pending,
			CompletionRate: completionRate(achieved, pending),
		},
		PreviousAchieved: prevAchieved,
		AchievedDelta:    delta,
		DeltaPercent:     deltaPct,
	}
}

// Window computes a rolling window of n month buckets starting at start.
// Months with no goals report zero counts; buckets are never absent.
func Window(goals []goal.Goal, start string, n int) []Bucket {
	months := goal.MonthsFrom(start, n)
	buckets := make([]Bucket, 0, len(months))
	for _, m := range months {
		achieved, pending := count(goals, m)
		buckets = append(buckets, Bucket{
			Month:          m,
			Achieved:       achieved,
			Pending:        pending,
			CompletionRate: completionRate(achieved, pending),
		})
	}
	return buckets
}
