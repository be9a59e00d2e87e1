package voting

import (
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name               string
		current, requested int
		expected           int
	}{
		{"fresh upvote", None, Upvote, Upvote},
		{"fresh downvote", None, Downvote, Downvote},
		{"repeat upvote retracts", Upvote, Upvote, None},
		{"repeat downvote retracts", Downvote, Downvote, None},
		{"up replaces down", Downvote, Upvote, Upvote},
		{"down replaces up", Upvote, Downvote, Downvote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.current, tt.requested); got != tt.expected {
				t.Errorf("Resolve(%d, %d) = %d, want %d", tt.current, tt.requested, got, tt.expected)
			}
		})
	}
}

func TestDeltas(t *testing.T) {
	tests := []struct {
		name          string
		current, next int
		up, down      int64
	}{
		{"none to up", None, Upvote, 1, 0},
		{"none to down", None, Downvote, 0, 1},
		{"up to none", Upvote, None, -1, 0},
		{"down to none", Downvote, None, 0, -1},
		{"up to down", Upvote, Downvote, -1, 1},
		{"down to up", Downvote, Upvote, 1, -1},
		{"no change", None, None, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := Deltas(tt.current, tt.next)
			if up != tt.up || down != tt.down {
				t.Errorf("Deltas(%d, %d) = (%d, %d), want (%d, %d)",
					tt.current, tt.next, up, down, tt.up, tt.down)
			}
		})
	}
}

// Toggle is periodic: apply sets, apply again unsets, a third apply sets
// again, and the counters come back to where they started after each pair.
func TestToggleCycle(t *testing.T) {
	status := None
	var up, down int64 = 7, 2

	apply := func(requested int) {
		next := Resolve(status, requested)
		du, dd := Deltas(status, next)
		up += du
		down += dd
		status = next
	}

	apply(Upvote)
	if status != Upvote || up != 8 || down != 2 {
		t.Fatalf("after first upvote: status=%d up=%d down=%d", status, up, down)
	}

	apply(Upvote)
	if status != None || up != 7 || down != 2 {
		t.Fatalf("after retract: status=%d up=%d down=%d", status, up, down)
	}

	apply(Upvote)
	if status != Upvote || up != 8 || down != 2 {
		t.Fatalf("after re-apply: status=%d up=%d down=%d", status, up, down)
	}

	apply(Downvote)
	if status != Downvote || up != 7 || down != 3 {
		t.Fatalf("after replace: status=%d up=%d down=%d", status, up, down)
	}
}

func TestValid(t *testing.T) {
	if !Valid(Upvote) || !Valid(Downvote) {
		t.Error("1 and -1 are valid vote requests")
	}
	if Valid(None) || Valid(2) || Valid(-2) {
		t.Error("only 1 and -1 are valid vote requests")
	}
}
