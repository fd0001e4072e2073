package reputation

import (
	"testing"
	"time"

	"github.com/repute-network/repute/internal/domain"
)

var decayEpoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func decayRecord(score int64) domain.ReputationRecord {
	return domain.ReputationRecord{
		Identity:   "node",
		Score:      score,
		LastDecay:  decayEpoch,
		LastUpdate: decayEpoch,
		Registered: true,
	}
}

// ─── Compounding ────────────────────────────────────────────────────────────

func TestComputeDecayed_TwoPeriods(t *testing.T) {
	p := domain.DefaultParams() // 1‰ per 30 days

	// 500 over 60 days: period 1 → max(1, 500/1000)=1 → 499,
	// period 2 → max(1, 499/1000)=1 → 498.
	got := computeDecayed(decayRecord(500), decayEpoch.Add(60*24*time.Hour), p)
	if got != 498 {
		t.Errorf("computeDecayed(500, 60d) = %d, want 498", got)
	}
}

func TestComputeDecayed_MinimumOneUnit(t *testing.T) {
	p := domain.DefaultParams()

	// 500 * 1/1000 floors to 0, so the per-period amount is forced to 1.
	got := computeDecayed(decayRecord(500), decayEpoch.Add(30*24*time.Hour), p)
	if got != 499 {
		t.Errorf("computeDecayed(500, 1 period) = %d, want 499", got)
	}
}

func TestComputeDecayed_LargeRate(t *testing.T) {
	p := domain.DefaultParams()
	p.DecayRatePerMille = 100 // 10% per period

	// 1000 → 900 → 810 over two periods.
	got := computeDecayed(decayRecord(1000), decayEpoch.Add(2*p.DecayPeriod), p)
	if got != 810 {
		t.Errorf("computeDecayed(1000, 2 periods at 10%%) = %d, want 810", got)
	}
}

// ─── Boundary Conditions ────────────────────────────────────────────────────

func TestComputeDecayed_Disabled(t *testing.T) {
	p := domain.DefaultParams()
	p.DecayEnabled = false

	got := computeDecayed(decayRecord(500), decayEpoch.Add(365*24*time.Hour), p)
	if got != 500 {
		t.Errorf("disabled decay changed score: got %d, want 500", got)
	}
}

func TestComputeDecayed_UnderOnePeriod(t *testing.T) {
	p := domain.DefaultParams()

	got := computeDecayed(decayRecord(500), decayEpoch.Add(29*24*time.Hour), p)
	if got != 500 {
		t.Errorf("partial period decayed score: got %d, want 500", got)
	}
}

func TestComputeDecayed_NoElapsedTime(t *testing.T) {
	p := domain.DefaultParams()

	got := computeDecayed(decayRecord(500), decayEpoch, p)
	if got != 500 {
		t.Errorf("zero elapsed time changed score: got %d, want 500", got)
	}
}

func TestComputeDecayed_StopsAtZero(t *testing.T) {
	p := domain.DefaultParams()

	// A score of 1 reaches zero after one period and stays there no
	// matter how many more periods elapse.
	got := computeDecayed(decayRecord(1), decayEpoch.Add(1000*p.DecayPeriod), p)
	if got != 0 {
		t.Errorf("score = %d, want 0", got)
	}

	got = computeDecayed(decayRecord(0), decayEpoch.Add(10*p.DecayPeriod), p)
	if got != 0 {
		t.Errorf("zero score decayed to %d", got)
	}
}

// ─── Monotonicity ───────────────────────────────────────────────────────────

func TestComputeDecayed_NonIncreasingInTime(t *testing.T) {
	p := domain.DefaultParams()
	rec := decayRecord(987)

	prev := rec.Score
	for periods := 1; periods <= 24; periods++ {
		now := decayEpoch.Add(time.Duration(periods) * p.DecayPeriod)
		got := computeDecayed(rec, now, p)
		if got > prev {
			t.Fatalf("decay increased at %d periods: %d > %d", periods, got, prev)
		}
		if got < 0 {
			t.Fatalf("decay went negative at %d periods: %d", periods, got)
		}
		prev = got
	}
}
