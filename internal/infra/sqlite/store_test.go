package sqlite

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/repute-network/repute/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sqliteRecord(identity string) domain.ReputationRecord {
	now := time.Date(2026, 2, 10, 9, 30, 0, 123456789, time.UTC)
	return domain.ReputationRecord{
		Identity:   identity,
		Score:      domain.InitialScore,
		LastUpdate: now,
		LastDecay:  now,
		Registered: true,
	}
}

// ─── Record Round Trips ─────────────────────────────────────────────────────

func TestRegisterGetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	want := sqliteRecord("alice")

	if err := db.Register(want); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	got, err := db.Get("alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Score != want.Score || got.TotalRatings != 0 || got.TotalScore != 0 {
		t.Errorf("record = %+v, want %+v", got, want)
	}
	// Nanosecond precision must survive the TEXT round trip: decay
	// arithmetic compares these timestamps exactly.
	if !got.LastDecay.Equal(want.LastDecay) {
		t.Errorf("lastDecay = %v, want %v", got.LastDecay, want.LastDecay)
	}
	if !got.Registered {
		t.Error("record not marked registered")
	}
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	db := newTestDB(t)
	db.Register(sqliteRecord("alice"))

	err := db.Register(sqliteRecord("alice"))
	if !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("error = %v, want ErrAlreadyRegistered", err)
	}

	// The failed registration must not grow the ledger.
	count, _ := db.CountRegistered()
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestGet_NotRegistered(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Get("ghost"); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("error = %v, want ErrNotRegistered", err)
	}
}

func TestPut_UpdatesExisting(t *testing.T) {
	db := newTestDB(t)
	rec := sqliteRecord("alice")
	db.Register(rec)

	rec.Score = 731
	rec.TotalRatings = 4
	rec.TotalScore = 2924
	rec.LastUpdate = rec.LastUpdate.Add(48 * time.Hour)
	if err := db.Put(rec); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, _ := db.Get("alice")
	if got.Score != 731 || got.TotalRatings != 4 || got.TotalScore != 2924 {
		t.Errorf("record = %+v after Put", got)
	}
	if !got.LastUpdate.Equal(rec.LastUpdate) {
		t.Errorf("lastUpdate = %v, want %v", got.LastUpdate, rec.LastUpdate)
	}
}

func TestPut_NotRegistered(t *testing.T) {
	db := newTestDB(t)
	if err := db.Put(sqliteRecord("ghost")); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("error = %v, want ErrNotRegistered", err)
	}
}

func TestContains(t *testing.T) {
	db := newTestDB(t)
	db.Register(sqliteRecord("alice"))

	if ok, _ := db.Contains("alice"); !ok {
		t.Error("Contains(alice) = false, want true")
	}
	if ok, _ := db.Contains("bob"); ok {
		t.Error("Contains(bob) = true, want false")
	}
}

// ─── Registration Ledger ────────────────────────────────────────────────────

func TestListRegistered_Order(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 5; i++ {
		db.Register(sqliteRecord(fmt.Sprintf("id-%d", i)))
	}

	all, err := db.ListRegistered(0, 100)
	if err != nil {
		t.Fatalf("ListRegistered error: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	for i, id := range all {
		if want := fmt.Sprintf("id-%d", i); id != want {
			t.Errorf("position %d = %q, want %q", i, id, want)
		}
	}

	page, _ := db.ListRegistered(3, 10)
	if len(page) != 2 || page[0] != "id-3" || page[1] != "id-4" {
		t.Errorf("page(3,10) = %v, want [id-3 id-4]", page)
	}

	if page, _ := db.ListRegistered(99, 10); len(page) != 0 {
		t.Errorf("page past end = %v, want empty", page)
	}
}

// ─── Authorization Set ──────────────────────────────────────────────────────

func TestAuthorizationSet(t *testing.T) {
	db := newTestDB(t)

	if ok, _ := db.IsAuthorized("gateway"); ok {
		t.Error("fresh database should authorize nobody")
	}

	db.GrantAuthorization("gateway")
	db.GrantAuthorization("gateway") // idempotent
	if ok, _ := db.IsAuthorized("gateway"); !ok {
		t.Error("gateway should be authorized after grant")
	}

	db.RevokeAuthorization("gateway")
	if ok, _ := db.IsAuthorized("gateway"); ok {
		t.Error("gateway should not be authorized after revoke")
	}
}

// ─── Parameter Block ────────────────────────────────────────────────────────

func TestParamsRoundTrip(t *testing.T) {
	db := newTestDB(t)

	if _, ok, err := db.LoadParams(); err != nil || ok {
		t.Fatalf("fresh LoadParams = ok %v, err %v, want no params", ok, err)
	}

	p := domain.DefaultParams()
	p.DecayEnabled = false
	p.MinRaterReputation = 450
	if err := db.SaveParams(p); err != nil {
		t.Fatalf("SaveParams error: %v", err)
	}

	got, ok, err := db.LoadParams()
	if err != nil || !ok {
		t.Fatalf("LoadParams = ok %v, err %v", ok, err)
	}
	if got.DecayEnabled || got.MinRaterReputation != 450 {
		t.Errorf("params = %+v, want saved block", got)
	}
	if got.DecayPeriod != p.DecayPeriod {
		t.Errorf("decayPeriod = %v, want %v", got.DecayPeriod, p.DecayPeriod)
	}

	// Upsert replaces the single row.
	p.MinRaterReputation = 600
	db.SaveParams(p)
	got, _, _ = db.LoadParams()
	if got.MinRaterReputation != 600 {
		t.Errorf("minRaterReputation = %d, want 600 after upsert", got.MinRaterReputation)
	}
}

// ─── Event Audit ────────────────────────────────────────────────────────────

func TestEventAudit(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		ev := domain.Event{
			ID:       fmt.Sprintf("ev-%d", i),
			Kind:     domain.EventScoreUpdated,
			Identity: "alice",
			Rater:    "bob",
			OldScore: 500,
			NewScore: int64(500 + i),
			At:       base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.AppendEvent(ev); err != nil {
			t.Fatalf("AppendEvent error: %v", err)
		}
	}

	events, err := db.RecentEvents(2)
	if err != nil {
		t.Fatalf("RecentEvents error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	// Newest first.
	if events[0].ID != "ev-2" || events[1].ID != "ev-1" {
		t.Errorf("order = %s, %s, want ev-2, ev-1", events[0].ID, events[1].ID)
	}
	if events[0].Kind != domain.EventScoreUpdated || events[0].Rater != "bob" {
		t.Errorf("event = %+v", events[0])
	}
}
