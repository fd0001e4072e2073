// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── Score Constants ────────────────────────────────────────────────────────

const (
	// MaxScore is the upper bound of the reputation scale.
	MaxScore int64 = 1000

	// InitialScore is the neutral score assigned at registration.
	InitialScore int64 = 500

	// MinWeightMultiplier is the identity multiplier (100 = ×1.00).
	// UpdateWeightingParameters rejects anything below it.
	MinWeightMultiplier int64 = 100
)

// ─── Reputation Record ──────────────────────────────────────────────────────

// ReputationRecord is the single mutable state a registered identity owns.
//
// Invariants the ledger maintains:
//   - 0 ≤ Score ≤ MaxScore at all times.
//   - Score == min(MaxScore, TotalScore/TotalRatings) immediately after
//     an aggregation, before any later decay.
//   - TotalRatings never decreases.
type ReputationRecord struct {
	Identity     string    `json:"identity"`
	Score        int64     `json:"score"`
	TotalRatings int64     `json:"total_ratings"` // ratings ever aggregated
	TotalScore   int64     `json:"total_score"`   // running sum of weighted contributions
	LastUpdate   time.Time `json:"last_update"`   // last aggregation
	LastDecay    time.Time `json:"last_decay"`    // last applied decay
	Registered   bool      `json:"registered"`    // true from registration onward
}

// ─── Parameters ─────────────────────────────────────────────────────────────

// Params is the single administrator-tunable parameter block.
type Params struct {
	DecayEnabled       bool          `json:"decay_enabled"`
	DecayPeriod        time.Duration `json:"decay_period"`
	DecayRatePerMille  int64         `json:"decay_rate_per_mille"` // units per 1000 of score per period
	MinRaterReputation int64         `json:"min_rater_reputation"`
	MaxWeightMult      int64         `json:"max_weight_multiplier"` // 100 = ×1.00, 200 = ×2.00
}

// DefaultParams returns the deployment defaults: 0.1% decay per 30 days,
// weighting kicks in at reputation 300 and tops out at ×2.00.
func DefaultParams() Params {
	return Params{
		DecayEnabled:       true,
		DecayPeriod:        30 * 24 * time.Hour,
		DecayRatePerMille:  1,
		MinRaterReputation: 300,
		MaxWeightMult:      200,
	}
}

// ValidWeighting reports whether the weighting parameters are in range.
func (p Params) ValidWeighting() bool {
	return p.MinRaterReputation <= MaxScore && p.MaxWeightMult >= MinWeightMultiplier
}
