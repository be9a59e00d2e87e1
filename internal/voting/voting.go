// Package voting holds the toggle-with-replace vote state machine shared by
// posts and comments. The persistence side lives in internal/db; everything
// here is pure so the transition rules are testable in isolation.
package voting

// Vote status values as seen by a single user on a single item
const (
	None     = 0
	Upvote   = 1
	Downvote = -1
)

// Valid reports whether v is an acceptable vote request
func Valid(v int) bool {
	return v == Upvote || v == Downvote
}

// Resolve applies a toggle-with-replace request to the caller's current
// status. Re-submitting the active direction retracts it; anything else
// replaces it. There is no explicit clear operation.
func Resolve(current, requested int) int {
	if current == requested {
		return None
	}
	return requested
}

// Deltas returns the up/down counter adjustments for a transition from
// current to next status.
func Deltas(current, next int) (upDelta, downDelta int64) {
	switch current {
	case Upvote:
		upDelta--
	case Downvote:
		downDelta--
	}
	switch next {
	case Upvote:
		upDelta++
	case Downvote:
		downDelta++
	}
	return upDelta, downDelta
}
