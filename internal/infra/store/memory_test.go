package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/repute-network/repute/internal/domain"
)

func testRecord(identity string) domain.ReputationRecord {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.ReputationRecord{
		Identity:   identity,
		Score:      domain.InitialScore,
		LastUpdate: now,
		LastDecay:  now,
		Registered: true,
	}
}

// ─── Record Tests ───────────────────────────────────────────────────────────

func TestMemory_RegisterGet(t *testing.T) {
	m := NewMemory()

	if err := m.Register(testRecord("alice")); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	rec, err := m.Get("alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Score != domain.InitialScore {
		t.Errorf("score = %d, want %d", rec.Score, domain.InitialScore)
	}

	if err := m.Register(testRecord("alice")); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Fatalf("second Register error = %v, want ErrAlreadyRegistered", err)
	}
}

func TestMemory_GetNotRegistered(t *testing.T) {
	m := NewMemory()
	if _, err := m.Get("ghost"); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("error = %v, want ErrNotRegistered", err)
	}
}

func TestMemory_PutRequiresRegistration(t *testing.T) {
	m := NewMemory()

	if err := m.Put(testRecord("ghost")); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("Put error = %v, want ErrNotRegistered", err)
	}

	m.Register(testRecord("alice"))
	rec, _ := m.Get("alice")
	rec.Score = 700
	if err := m.Put(rec); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	rec, _ = m.Get("alice")
	if rec.Score != 700 {
		t.Errorf("score = %d, want 700", rec.Score)
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.Register(testRecord("alice"))

	rec, _ := m.Get("alice")
	rec.Score = 0 // mutating the copy must not leak into the store

	stored, _ := m.Get("alice")
	if stored.Score != domain.InitialScore {
		t.Errorf("stored score = %d, want %d", stored.Score, domain.InitialScore)
	}
}

// ─── Registration Ledger Tests ──────────────────────────────────────────────

func TestMemory_ListInsertionOrder(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 5; i++ {
		m.Register(testRecord(fmt.Sprintf("id-%d", i)))
	}

	count, _ := m.CountRegistered()
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}

	all, _ := m.ListRegistered(0, 100)
	for i, id := range all {
		if want := fmt.Sprintf("id-%d", i); id != want {
			t.Errorf("position %d = %q, want %q", i, id, want)
		}
	}

	page, _ := m.ListRegistered(3, 10)
	if len(page) != 2 || page[0] != "id-3" {
		t.Errorf("page(3,10) = %v, want [id-3 id-4]", page)
	}

	if page, _ := m.ListRegistered(5, 1); len(page) != 0 {
		t.Errorf("page past end = %v, want empty", page)
	}
	if page, _ := m.ListRegistered(-1, 1); len(page) != 0 {
		t.Errorf("negative offset = %v, want empty", page)
	}
}

// ─── Authorization Tests ────────────────────────────────────────────────────

func TestMemory_Authorization(t *testing.T) {
	m := NewMemory()

	if ok, _ := m.IsAuthorized("gateway"); ok {
		t.Error("fresh store should authorize nobody")
	}

	m.GrantAuthorization("gateway")
	if ok, _ := m.IsAuthorized("gateway"); !ok {
		t.Error("gateway should be authorized after grant")
	}

	m.RevokeAuthorization("gateway")
	if ok, _ := m.IsAuthorized("gateway"); ok {
		t.Error("gateway should not be authorized after revoke")
	}

	// Revoking an absent identity is a no-op, not an error.
	if err := m.RevokeAuthorization("nobody"); err != nil {
		t.Errorf("RevokeAuthorization error: %v", err)
	}
}

// ─── Parameter Tests ────────────────────────────────────────────────────────

func TestMemory_Params(t *testing.T) {
	m := NewMemory()

	if _, ok, _ := m.LoadParams(); ok {
		t.Error("fresh store should have no params")
	}

	p := domain.DefaultParams()
	p.DecayEnabled = false
	m.SaveParams(p)

	loaded, ok, err := m.LoadParams()
	if err != nil || !ok {
		t.Fatalf("LoadParams = ok %v, err %v", ok, err)
	}
	if loaded.DecayEnabled {
		t.Error("DecayEnabled = true, want persisted false")
	}
}
