// Package reward decides whether a proposed ticket reward can be paid out
// directly or must be escalated to a higher rank for review.
package reward

// Decision is the outcome of evaluating a proposed reward.
type Decision int

const (
	// Finalize pays the reward out and closes the ticket.
	Finalize Decision = iota
	// Escalate defers the reward to the next rank up.
	Escalate
)

func (d Decision) String() string {
	if d == Escalate {
		return "escalate"
	}
	return "finalize"
}

const (
	// maxDirectCredits is the largest credit grant a reviewer may finalize
	// without higher sign-off.
	maxDirectCredits = 100
	// payCapMultiplier bounds a direct payout to a multiple of the
	// assignee's base pay.
	payCapMultiplier = 5.0
)

// Decide evaluates a proposed reward against the assignee's base pay. Both
// boundaries are strict: credits of exactly 100 or pay of exactly five times
// base pay still finalize. An assignee whose rank pays 0 escalates on any
// non-zero pay proposal.
func Decide(credits int, pay, basePay float64) Decision {
	if credits > maxDirectCredits || pay > basePay*payCapMultiplier {
		return Escalate
	}
	return Finalize
}
