// Package ranking implements the feed scoring math. Hot scores are measured
// against a fixed epoch so a post's rank only moves when its votes do, which
// lets the score live in a column and the sort run in the database.
package ranking

import (
	"math"
	"time"
)

// Epoch is the fixed reference instant for the hot-score age term. It must
// never change once data exists: ordering only holds while every stored
// hot_score was computed against the same instant.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// decayDivisor scales the age term; 45000 seconds is ~12.5 hours per unit of
// the log score term.
const decayDivisor = 45000.0

// Score returns net votes
func Score(upCount, downCount int64) int64 {
	return upCount - downCount
}

// Sign returns the direction of a score: +1, -1 or 0
func Sign(score int64) int {
	switch {
	case score > 0:
		return 1
	case score < 0:
		return -1
	default:
		return 0
	}
}

// HotScore computes the time-decayed rank value for hot sorting.
//
// The log10 term flattens vote-count outliers; the age term gives newer
// content a boost proportional to seconds since Epoch. A zero score zeroes
// the sign, so all zero-score items share a hot score of exactly 0 and order
// among themselves falls to the id tie-break.
func HotScore(upCount, downCount int64, createdAt time.Time) float64 {
	score := Score(upCount, downCount)
	order := math.Log10(math.Max(math.Abs(float64(score)), 1))
	ageSeconds := createdAt.Sub(Epoch).Seconds()
	return order + float64(Sign(score))*ageSeconds/decayDivisor
}
