package reputation

import "github.com/repute-network/repute/internal/domain"

// ─── Rating Weighting ───────────────────────────────────────────────────────

// computeWeight scales a raw rating by the rater's own decayed reputation.
//
// A rater below MinRaterReputation contributes the raw rating unchanged —
// low-reputation raters cannot amplify their influence. Above the
// threshold the multiplier grows linearly with the rater's reputation as
// a percentage of the maximum:
//
//	ratio      = raterDecayed * 100 / 1000
//	multiplier = 100 + ratio*(maxMult-100)/100
//	effective  = raw * multiplier / 100
//
// The result is intentionally NOT clamped to the [0, MaxScore] rating
// range: a maximally reputed rater giving a maximal rating pushes a single
// contribution above 1000. It feeds the running average; only the derived
// score is clamped.
func computeWeight(raw, raterDecayed int64, p domain.Params) int64 {
	if raterDecayed < p.MinRaterReputation {
		return raw
	}
	ratio := raterDecayed * 100 / domain.MaxScore
	multiplier := 100 + ratio*(p.MaxWeightMult-100)/100
	return raw * multiplier / 100
}
