package domain

import "time"

// ─── Ledger Events ──────────────────────────────────────────────────────────
// Every observable state transition signals exactly one event. Sinks run
// synchronously inside the operation that produced the event and must not
// call back into the ledger.

// EventKind classifies a ledger event.
type EventKind string

const (
	EventRegistered    EventKind = "REGISTERED"
	EventScoreUpdated  EventKind = "SCORE_UPDATED"
	EventDecayApplied  EventKind = "DECAY_APPLIED"
	EventAuthGranted   EventKind = "AUTH_GRANTED"
	EventAuthRevoked   EventKind = "AUTH_REVOKED"
	EventParamsChanged EventKind = "PARAMS_CHANGED"
)

// Event is a single entry in the reputation audit trail.
type Event struct {
	ID       string    `json:"id"`
	Kind     EventKind `json:"kind"`
	Identity string    `json:"identity"`           // the identity the event is about
	Rater    string    `json:"rater,omitempty"`    // SCORE_UPDATED only
	OldScore int64     `json:"old_score"`          // score before the transition
	NewScore int64     `json:"new_score"`          // score after the transition
	At       time.Time `json:"at"`
}

// EventSink receives ledger events.
type EventSink interface {
	Publish(ev Event)
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []EventSink

// Publish implements EventSink.
func (m MultiSink) Publish(ev Event) {
	for _, s := range m {
		s.Publish(ev)
	}
}
