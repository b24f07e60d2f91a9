// Package presence derives online status from last-access timestamps.
//
// Nothing here is stored: every call recomputes from the timestamp and the
// supplied current time, so staleness is bounded by how often callers ask.
package presence

import (
	"time"

	"github.com/prudhvinik1/grftalk/internal/models"
)

// Window is how recent a last access must be to count as online.
const Window = 5 * time.Minute

// IsOnline reports now-lastAccess < Window. Exactly Window ago is offline.
// A zero timestamp (never seen) is offline.
func IsOnline(lastAccess, now time.Time) bool {
	return IsOnlineWithin(lastAccess, now, Window)
}

func IsOnlineWithin(lastAccess, now time.Time, window time.Duration) bool {
	if lastAccess.IsZero() {
		return false
	}
	return now.Sub(lastAccess) < window
}

// Evaluator binds a clock and window for repeated evaluation.
type Evaluator struct {
	Now    func() time.Time
	Window time.Duration
}

func NewEvaluator(now func() time.Time, window time.Duration) Evaluator {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = Window
	}
	return Evaluator{Now: now, Window: window}
}

func (e Evaluator) Status(p models.Participant) models.PresenceStatus {
	return statusAt(p, e.Now(), e.Window)
}

// Statuses evaluates every conversation against a single reading of the
// clock, in sequence order.
func (e Evaluator) Statuses(chats []models.Conversation) []models.PresenceStatus {
	now := e.Now()
	out := make([]models.PresenceStatus, len(chats))
	for i, c := range chats {
		out[i] = statusAt(c.User, now, e.Window)
	}
	return out
}

func statusAt(p models.Participant, now time.Time, window time.Duration) models.PresenceStatus {
	if IsOnlineWithin(p.LastAccess, now, window) {
		return models.StatusOnline
	}
	return models.StatusOffline
}
