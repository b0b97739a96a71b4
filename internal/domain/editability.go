package domain

import (
	"fmt"
	"math"
	"time"
)

// EditWindow is the period after creation during which the single latest
// movement may still be amended.
const EditWindow = 30 * time.Minute

// Editability reasons surfaced to callers.
const (
	ReasonNotFound      = "movement not found in the ledger"
	ReasonNotLatest     = "only the most recent movement may be edited"
	ReasonWindowExpired = "edit window expired: more than 30 minutes have passed since creation"
)

// EditDecision is the result of the editability evaluation.
type EditDecision struct {
	Reason           string
	RemainingMinutes int
	Editable         bool
}

// EvaluateEditability decides whether a movement may still be edited.
//
// A movement is editable only while it is simultaneously the most recently
// created movement in the whole ledger and younger than EditWindow. The
// latest movement is the one with the greatest CreatedAt; identical
// CreatedAt values are broken by the greater Seq. The window check is a
// strict greater-than: at exactly EditWindow elapsed the movement is still
// editable with zero minutes remaining.
//
// The function is pure; now is injected by the caller.
func EvaluateEditability(m *Movement, peers []*Movement, now time.Time) EditDecision {
	if m == nil || len(peers) == 0 {
		return EditDecision{Reason: ReasonNotFound}
	}

	var latest *Movement
	found := false
	for _, p := range peers {
		if p == nil {
			continue
		}
		if p.ID == m.ID {
			found = true
		}
		if latest == nil || moreRecent(p, latest) {
			latest = p
		}
	}

	if !found || latest == nil {
		return EditDecision{Reason: ReasonNotFound}
	}

	if latest.ID != m.ID {
		return EditDecision{Reason: ReasonNotLatest}
	}

	elapsed := now.Sub(m.CreatedAt).Minutes()
	if elapsed > EditWindow.Minutes() {
		return EditDecision{Reason: ReasonWindowExpired}
	}

	remaining := int(math.Ceil(EditWindow.Minutes() - elapsed))

	return EditDecision{
		Editable:         true,
		RemainingMinutes: remaining,
		Reason:           remainingReason(remaining),
	}
}

// moreRecent reports whether a was created after b, with Seq as the
// deterministic tie-break.
func moreRecent(a, b *Movement) bool {
	if a.CreatedAt.After(b.CreatedAt) {
		return true
	}
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.Seq > b.Seq
	}
	return false
}

func remainingReason(remaining int) string {
	if remaining == 1 {
		return "editable for 1 more minute"
	}
	return fmt.Sprintf("editable for %d more minutes", remaining)
}
