// domain.Store implementation: records, registration ledger, authorization
// set, and the parameter block. Timestamps are stored as RFC3339Nano TEXT
// so decay arithmetic survives a round trip exactly.
package sqlite

import (
	"database/sql"
	"time"

	"github.com/repute-network/repute/internal/domain"
)

const timeLayout = time.RFC3339Nano

// ─── Record Operations ──────────────────────────────────────────────────────

// Register creates the record and appends the identity to the registration
// ledger in one transaction. Fails with ErrAlreadyRegistered on a repeat.
func (db *DB) Register(rec domain.ReputationRecord) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`
		SELECT COUNT(*) FROM reputation_records WHERE identity = ?
	`, rec.Identity).Scan(&exists); err != nil {
		return err
	}
	if exists > 0 {
		return domain.ErrAlreadyRegistered
	}

	if _, err := tx.Exec(`
		INSERT INTO reputation_records (identity, score, total_ratings, total_score, last_update, last_decay)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Identity, rec.Score, rec.TotalRatings, rec.TotalScore,
		rec.LastUpdate.UTC().Format(timeLayout), rec.LastDecay.UTC().Format(timeLayout)); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO registration_ledger (identity) VALUES (?)
	`, rec.Identity); err != nil {
		return err
	}
	return tx.Commit()
}

// Get retrieves an identity's record.
func (db *DB) Get(identity string) (domain.ReputationRecord, error) {
	rec := domain.ReputationRecord{Identity: identity, Registered: true}
	var updateStr, decayStr string
	err := db.db.QueryRow(`
		SELECT score, total_ratings, total_score, last_update, last_decay
		FROM reputation_records WHERE identity = ?
	`, identity).Scan(&rec.Score, &rec.TotalRatings, &rec.TotalScore, &updateStr, &decayStr)
	if err == sql.ErrNoRows {
		return domain.ReputationRecord{}, domain.ErrNotRegistered
	}
	if err != nil {
		return domain.ReputationRecord{}, err
	}

	if rec.LastUpdate, err = time.Parse(timeLayout, updateStr); err != nil {
		return domain.ReputationRecord{}, err
	}
	if rec.LastDecay, err = time.Parse(timeLayout, decayStr); err != nil {
		return domain.ReputationRecord{}, err
	}
	return rec, nil
}

// Put replaces an existing record. Never creates one.
func (db *DB) Put(rec domain.ReputationRecord) error {
	res, err := db.db.Exec(`
		UPDATE reputation_records
		SET score = ?, total_ratings = ?, total_score = ?, last_update = ?, last_decay = ?
		WHERE identity = ?
	`, rec.Score, rec.TotalRatings, rec.TotalScore,
		rec.LastUpdate.UTC().Format(timeLayout), rec.LastDecay.UTC().Format(timeLayout),
		rec.Identity)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotRegistered
	}
	return nil
}

// Contains reports whether an identity has a record.
func (db *DB) Contains(identity string) (bool, error) {
	var count int
	err := db.db.QueryRow(`
		SELECT COUNT(*) FROM reputation_records WHERE identity = ?
	`, identity).Scan(&count)
	return count > 0, err
}

// ─── Registration Ledger Operations ─────────────────────────────────────────

// ListRegistered returns one page of identities in registration order.
func (db *DB) ListRegistered(offset, limit int) ([]string, error) {
	if offset < 0 || limit < 0 {
		return nil, nil
	}
	rows, err := db.db.Query(`
		SELECT identity FROM registration_ledger ORDER BY position LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			return nil, err
		}
		out = append(out, identity)
	}
	return out, rows.Err()
}

// CountRegistered returns the total number of registered identities.
func (db *DB) CountRegistered() (int, error) {
	var count int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM registration_ledger`).Scan(&count)
	return count, err
}

// ─── Authorization Operations ───────────────────────────────────────────────

// GrantAuthorization adds an identity to the authorization set. Idempotent.
func (db *DB) GrantAuthorization(identity string) error {
	_, err := db.db.Exec(`
		INSERT OR IGNORE INTO authorized_callers (identity) VALUES (?)
	`, identity)
	return err
}

// RevokeAuthorization removes an identity from the set. Idempotent.
func (db *DB) RevokeAuthorization(identity string) error {
	_, err := db.db.Exec(`
		DELETE FROM authorized_callers WHERE identity = ?
	`, identity)
	return err
}

// IsAuthorized reports authorization-set membership.
func (db *DB) IsAuthorized(identity string) (bool, error) {
	var count int
	err := db.db.QueryRow(`
		SELECT COUNT(*) FROM authorized_callers WHERE identity = ?
	`, identity).Scan(&count)
	return count > 0, err
}

// ─── Parameter Operations ───────────────────────────────────────────────────

// SaveParams upserts the single-row parameter block.
func (db *DB) SaveParams(p domain.Params) error {
	enabled := 0
	if p.DecayEnabled {
		enabled = 1
	}
	_, err := db.db.Exec(`
		INSERT INTO params (id, decay_enabled, decay_period_seconds, decay_rate_per_mille, min_rater_reputation, max_weight_multiplier)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			decay_enabled         = excluded.decay_enabled,
			decay_period_seconds  = excluded.decay_period_seconds,
			decay_rate_per_mille  = excluded.decay_rate_per_mille,
			min_rater_reputation  = excluded.min_rater_reputation,
			max_weight_multiplier = excluded.max_weight_multiplier
	`, enabled, int64(p.DecayPeriod/time.Second), p.DecayRatePerMille, p.MinRaterReputation, p.MaxWeightMult)
	return err
}

// LoadParams returns the persisted block, or ok=false when none exists.
func (db *DB) LoadParams() (domain.Params, bool, error) {
	var p domain.Params
	var enabled int
	var periodSeconds int64
	err := db.db.QueryRow(`
		SELECT decay_enabled, decay_period_seconds, decay_rate_per_mille, min_rater_reputation, max_weight_multiplier
		FROM params WHERE id = 1
	`).Scan(&enabled, &periodSeconds, &p.DecayRatePerMille, &p.MinRaterReputation, &p.MaxWeightMult)
	if err == sql.ErrNoRows {
		return domain.Params{}, false, nil
	}
	if err != nil {
		return domain.Params{}, false, err
	}
	p.DecayEnabled = enabled == 1
	p.DecayPeriod = time.Duration(periodSeconds) * time.Second
	return p, true, nil
}

// ─── Event Audit Operations ─────────────────────────────────────────────────

// AppendEvent adds one event to the audit trail.
func (db *DB) AppendEvent(ev domain.Event) error {
	_, err := db.db.Exec(`
		INSERT INTO reputation_events (id, kind, identity, rater, old_score, new_score, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, string(ev.Kind), ev.Identity, ev.Rater, ev.OldScore, ev.NewScore,
		ev.At.UTC().Format(timeLayout))
	return err
}

// RecentEvents returns the newest events, newest first.
func (db *DB) RecentEvents(limit int) ([]domain.Event, error) {
	rows, err := db.db.Query(`
		SELECT id, kind, identity, rater, old_score, new_score, at
		FROM reputation_events ORDER BY at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var ev domain.Event
		var kind, atStr string
		if err := rows.Scan(&ev.ID, &kind, &ev.Identity, &ev.Rater, &ev.OldScore, &ev.NewScore, &atStr); err != nil {
			return nil, err
		}
		ev.Kind = domain.EventKind(kind)
		if ev.At, err = time.Parse(timeLayout, atStr); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
