// Package reputation implements the reputation-scoring ledger.
//
// Every registered identity owns exactly one mutable score record in
// [0, 1000]. Scores evolve through three mechanisms:
//   - Lazy compounding decay: 1‰ of the current score per elapsed period,
//     paid off on demand whenever a record is read or written.
//   - Weighted aggregation: a submitted rating is scaled by the rater's
//     own decayed reputation, then folded into the ratee's running average.
//   - Clamping: the derived score is clamped to [0, 1000] after every
//     transition; intermediate weighted contributions are not.
//
// The Ledger is the sole mutating entry point. Every mutating operation
// runs to completion as one atomic unit: preconditions are checked before
// any state changes, the transition is computed on a local copy, and a
// single store write commits it.
package reputation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/repute-network/repute/internal/domain"
)

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Ledger owns all score transitions. Thread-safe: one mutex serializes
// mutating operations end to end, and an in-progress marker guards each
// mutating body against re-entry (event sinks run inside the operation
// and must not call back in).
type Ledger struct {
	mu       sync.RWMutex
	store    domain.Store
	events   domain.EventSink
	params   domain.Params
	admin    string
	inFlight bool

	// Injectable clock for testing.
	now func() time.Time
}

// New creates a ledger over the given store. The admin identity is the
// only principal allowed to register users, manage the authorization set,
// and tune parameters. Persisted parameters take precedence over defaults.
func New(store domain.Store, admin string, events domain.EventSink) (*Ledger, error) {
	params := domain.DefaultParams()
	if p, ok, err := store.LoadParams(); err != nil {
		return nil, err
	} else if ok {
		params = p
	}
	return &Ledger{
		store:  store,
		events: events,
		params: params,
		admin:  admin,
		now:    time.Now,
	}, nil
}

// begin acquires the ledger for one mutating operation and returns the
// release func. The marker is cleared on every exit path via defer.
func (l *Ledger) begin() func() {
	l.mu.Lock()
	if l.inFlight {
		panic("reputation: mutating operation re-entered")
	}
	l.inFlight = true
	return func() {
		l.inFlight = false
		l.mu.Unlock()
	}
}

func (l *Ledger) emit(ev domain.Event) {
	if l.events == nil {
		return
	}
	ev.ID = uuid.NewString()
	l.events.Publish(ev)
}

// ─── Registration ───────────────────────────────────────────────────────────

// RegisterUser creates a score record for a new identity. Admin-only.
// The record starts at the neutral initial score with zero counters and
// both timestamps set to the current time.
func (l *Ledger) RegisterUser(caller, identity string) error {
	defer l.begin()()

	if caller != l.admin {
		return domain.ErrUnauthorized
	}

	now := l.now()
	rec := domain.ReputationRecord{
		Identity:   identity,
		Score:      domain.InitialScore,
		LastUpdate: now,
		LastDecay:  now,
		Registered: true,
	}
	if err := l.store.Register(rec); err != nil {
		return err
	}

	l.emit(domain.Event{
		Kind:     domain.EventRegistered,
		Identity: identity,
		NewScore: rec.Score,
		At:       now,
	})
	return nil
}

// ─── Authorization ──────────────────────────────────────────────────────────

// GrantAuthorization allows an identity to submit ratings. Admin-only.
func (l *Ledger) GrantAuthorization(caller, identity string) error {
	defer l.begin()()

	if caller != l.admin {
		return domain.ErrUnauthorized
	}
	if err := l.store.GrantAuthorization(identity); err != nil {
		return err
	}
	l.emit(domain.Event{Kind: domain.EventAuthGranted, Identity: identity, At: l.now()})
	return nil
}

// RevokeAuthorization removes an identity from the authorization set.
// Admin-only.
func (l *Ledger) RevokeAuthorization(caller, identity string) error {
	defer l.begin()()

	if caller != l.admin {
		return domain.ErrUnauthorized
	}
	if err := l.store.RevokeAuthorization(identity); err != nil {
		return err
	}
	l.emit(domain.Event{Kind: domain.EventAuthRevoked, Identity: identity, At: l.now()})
	return nil
}

// IsAuthorized reports whether an identity may submit ratings.
func (l *Ledger) IsAuthorized(identity string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.IsAuthorized(identity)
}

// ─── Rating Submission ──────────────────────────────────────────────────────

// SubmitRating folds one rating from rater into ratee's running average.
// The caller is the invoking principal — the pre-authorized submission
// layer — distinct from the rater whose reputation weights the rating.
//
// The sequence decay → weight → aggregate → clamp is indivisible: all
// preconditions are checked before any state changes, and the updated
// record is committed with a single store write.
func (l *Ledger) SubmitRating(caller, ratee string, rawRating int64, rater string) error {
	defer l.begin()()

	authorized, err := l.store.IsAuthorized(caller)
	if err != nil {
		return err
	}
	if !authorized {
		RatingsRejected.WithLabelValues("unauthorized").Inc()
		return domain.ErrUnauthorized
	}
	if ratee == rater {
		RatingsRejected.WithLabelValues("self_rating").Inc()
		return domain.ErrSelfRatingNotAllowed
	}
	if rawRating < 0 || rawRating > domain.MaxScore {
		RatingsRejected.WithLabelValues("invalid_score").Inc()
		return domain.ErrInvalidScore
	}

	rateeRec, err := l.store.Get(ratee)
	if err != nil {
		RatingsRejected.WithLabelValues("not_registered").Inc()
		return err
	}
	raterRec, err := l.store.Get(rater)
	if err != nil {
		RatingsRejected.WithLabelValues("not_registered").Inc()
		return err
	}

	now := l.now()

	// Pay off the ratee's elapsed decay before aggregating.
	preDecay := rateeRec.Score
	decayed := computeDecayed(rateeRec, now, l.params)
	decayApplied := decayed != preDecay
	if decayApplied {
		rateeRec.Score = decayed
		rateeRec.LastDecay = now
	}
	oldScore := rateeRec.Score

	// Weight the rating by the rater's current decayed reputation.
	raterDecayed := computeDecayed(raterRec, now, l.params)
	effective := computeWeight(rawRating, raterDecayed, l.params)

	rateeRec.TotalRatings++
	rateeRec.TotalScore += effective
	score := rateeRec.TotalScore / rateeRec.TotalRatings
	if score > domain.MaxScore {
		score = domain.MaxScore
	}
	rateeRec.Score = score
	rateeRec.LastUpdate = now

	if err := l.store.Put(rateeRec); err != nil {
		return err
	}

	if decayApplied {
		l.emit(domain.Event{
			Kind:     domain.EventDecayApplied,
			Identity: ratee,
			OldScore: preDecay,
			NewScore: decayed,
			At:       now,
		})
	}
	l.emit(domain.Event{
		Kind:     domain.EventScoreUpdated,
		Identity: ratee,
		Rater:    rater,
		OldScore: oldScore,
		NewScore: score,
		At:       now,
	})
	EffectiveRatings.Observe(float64(effective))
	return nil
}

// ─── Decay ──────────────────────────────────────────────────────────────────

// ForceApplyDecay pays off and persists all elapsed decay for one identity
// without requiring a rating submission. Callable by anyone: decay only
// ever reduces a score, so there is nothing to gate.
func (l *Ledger) ForceApplyDecay(identity string) error {
	defer l.begin()()

	rec, err := l.store.Get(identity)
	if err != nil {
		return err
	}
	if !l.params.DecayEnabled {
		return nil
	}

	now := l.now()
	decayed := computeDecayed(rec, now, l.params)
	if decayed == rec.Score {
		return nil
	}

	oldScore := rec.Score
	rec.Score = decayed
	rec.LastDecay = now
	if err := l.store.Put(rec); err != nil {
		return err
	}

	l.emit(domain.Event{
		Kind:     domain.EventDecayApplied,
		Identity: identity,
		OldScore: oldScore,
		NewScore: decayed,
		At:       now,
	})
	return nil
}

// ─── Parameter Administration ───────────────────────────────────────────────

// SetDecayEnabled toggles the global decay flag. Admin-only.
func (l *Ledger) SetDecayEnabled(caller string, enabled bool) error {
	defer l.begin()()

	if caller != l.admin {
		return domain.ErrUnauthorized
	}
	l.params.DecayEnabled = enabled
	if err := l.store.SaveParams(l.params); err != nil {
		return err
	}
	l.emit(domain.Event{Kind: domain.EventParamsChanged, At: l.now()})
	return nil
}

// UpdateWeightingParameters tunes the rating-weighting curve. Admin-only.
// Rejects minRaterReputation above the score ceiling and multipliers
// below the ×1.00 identity.
func (l *Ledger) UpdateWeightingParameters(caller string, minRaterReputation, maxWeightMult int64) error {
	defer l.begin()()

	if caller != l.admin {
		return domain.ErrUnauthorized
	}

	next := l.params
	next.MinRaterReputation = minRaterReputation
	next.MaxWeightMult = maxWeightMult
	if !next.ValidWeighting() {
		return domain.ErrInvalidParameters
	}

	l.params = next
	if err := l.store.SaveParams(l.params); err != nil {
		return err
	}
	l.emit(domain.Event{Kind: domain.EventParamsChanged, At: l.now()})
	return nil
}

// Params returns the current parameter block.
func (l *Ledger) Params() domain.Params {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.params
}

// ─── Queries ────────────────────────────────────────────────────────────────

// GetReputation returns an identity's current decayed score. Read-only:
// the decayed value is computed on demand and never persisted here.
func (l *Ledger) GetReputation(identity string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, err := l.store.Get(identity)
	if err != nil {
		return 0, err
	}
	return computeDecayed(rec, l.now(), l.params), nil
}

// GetReputationData returns an identity's full record with the score
// decay-applied. The stored record is not mutated.
func (l *Ledger) GetReputationData(identity string) (domain.ReputationRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, err := l.store.Get(identity)
	if err != nil {
		return domain.ReputationRecord{}, err
	}
	rec.Score = computeDecayed(rec, l.now(), l.params)
	return rec, nil
}

// ListRegistered returns a page of registered identities in insertion
// order. An offset at or past the end yields an empty page.
func (l *Ledger) ListRegistered(offset, limit int) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.ListRegistered(offset, limit)
}

// Count returns the total number of registered identities.
func (l *Ledger) Count() (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.CountRegistered()
}
