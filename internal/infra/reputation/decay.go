package reputation

import (
	"time"

	"github.com/repute-network/repute/internal/domain"
)

// ─── Decay ──────────────────────────────────────────────────────────────────
// Decay is computed on demand rather than on a clock: every period that
// elapsed since the record was last decayed is paid off in one compounding
// pass the next time the record is touched, by a read or by a write. There
// is exactly one formula: queries use computeDecayed read-only, and only
// SubmitRating and ForceApplyDecay persist its result.

// computeDecayed returns the score after all elapsed, un-applied decay
// periods. If decay is disabled or less than one full period has elapsed,
// the stored score is returned unchanged. Never mutates the record.
func computeDecayed(rec domain.ReputationRecord, now time.Time, p domain.Params) int64 {
	if !p.DecayEnabled {
		return rec.Score
	}
	elapsed := now.Sub(rec.LastDecay)
	if elapsed < p.DecayPeriod {
		return rec.Score
	}

	periods := int64(elapsed / p.DecayPeriod)
	current := rec.Score
	for i := int64(0); i < periods; i++ {
		amount := current * p.DecayRatePerMille / 1000
		if amount < 1 {
			amount = 1
		}
		if current <= amount {
			current = 0
			break
		}
		current -= amount
	}
	return current
}
