package ranking

import (
	"math"
	"testing"
	"time"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		up, down int64
		expected int64
	}{
		{"all up", 10, 0, 10},
		{"all down", 0, 4, -4},
		{"mixed", 7, 3, 4},
		{"zero", 0, 0, 0},
		{"balanced", 5, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.up, tt.down); got != tt.expected {
				t.Errorf("Score(%d, %d) = %d, want %d", tt.up, tt.down, got, tt.expected)
			}
		})
	}
}

func TestSign(t *testing.T) {
	tests := []struct {
		name     string
		score    int64
		expected int
	}{
		{"positive", 12, 1},
		{"negative", -3, -1},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sign(tt.score); got != tt.expected {
				t.Errorf("Sign(%d) = %d, want %d", tt.score, got, tt.expected)
			}
		})
	}
}

func TestHotScoreLogTerm(t *testing.T) {
	at := Epoch // zero age term isolates the log term

	tests := []struct {
		name     string
		up, down int64
		expected float64
	}{
		{"zero score", 0, 0, 0},
		{"score 1", 1, 0, 0},
		{"score 10", 10, 0, 1},
		{"score 100", 100, 0, 2},
		{"score -10 mirrors magnitude", 0, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HotScore(tt.up, tt.down, at)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("HotScore(%d, %d, epoch) = %f, want %f", tt.up, tt.down, got, tt.expected)
			}
		})
	}
}

// Two posts with the same positive score: the newer one must rank higher.
func TestHotScoreDecayPositive(t *testing.T) {
	older := Epoch.Add(24 * time.Hour)
	newer := Epoch.Add(48 * time.Hour)

	oldScore := HotScore(5, 0, older)
	newScore := HotScore(5, 0, newer)

	if newScore <= oldScore {
		t.Errorf("newer post should outrank older at equal score: new=%f old=%f", newScore, oldScore)
	}
}

// Negative-score posts decay: the newer one ranks lower, so downvoted
// content sinks instead of riding the age boost.
func TestHotScoreDecayNegative(t *testing.T) {
	older := Epoch.Add(24 * time.Hour)
	newer := Epoch.Add(48 * time.Hour)

	oldScore := HotScore(0, 5, older)
	newScore := HotScore(0, 5, newer)

	if newScore >= oldScore {
		t.Errorf("newer negative post should rank below older: new=%f old=%f", newScore, oldScore)
	}
}

// Zero-score posts have no age term at all: age never breaks their ties.
func TestHotScoreZeroIgnoresAge(t *testing.T) {
	a := HotScore(0, 0, Epoch.Add(time.Hour))
	b := HotScore(3, 3, Epoch.Add(1000*time.Hour))

	if a != 0 || b != 0 {
		t.Errorf("zero-score hot scores should be exactly 0, got %f and %f", a, b)
	}
}

// A big vote gap moves rank less than linearly: 100 net votes only buys one
// log unit over 10 net votes, about 12.5 hours of age.
func TestHotScoreVotesVsAge(t *testing.T) {
	modest := HotScore(10, 0, Epoch.Add(13*time.Hour))
	viral := HotScore(100, 0, Epoch)

	if viral >= modest {
		t.Errorf("13h of freshness should beat a 10x vote gap: viral=%f modest=%f", viral, modest)
	}
}
