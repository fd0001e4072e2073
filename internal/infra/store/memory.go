// Package store provides the in-memory domain.Store implementation.
// It backs tests and ephemeral deployments; the sqlite package provides
// the durable equivalent with the same contract.
package store

import (
	"sync"

	"github.com/repute-network/repute/internal/domain"
)

// Memory holds all records, the registration ledger, the authorization
// set, and the parameter block in process memory. Thread-safe via RWMutex.
type Memory struct {
	mu         sync.RWMutex
	records    map[string]domain.ReputationRecord
	order      []string // registration ledger, append-only
	authorized map[string]struct{}
	params     domain.Params
	paramsSet  bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records:    make(map[string]domain.ReputationRecord),
		authorized: make(map[string]struct{}),
	}
}

// ─── Records ────────────────────────────────────────────────────────────────

// Register creates the record and appends the identity to the ledger.
func (m *Memory) Register(rec domain.ReputationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.Identity]; ok {
		return domain.ErrAlreadyRegistered
	}
	m.records[rec.Identity] = rec
	m.order = append(m.order, rec.Identity)
	return nil
}

// Get returns a copy of the identity's record.
func (m *Memory) Get(identity string) (domain.ReputationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[identity]
	if !ok {
		return domain.ReputationRecord{}, domain.ErrNotRegistered
	}
	return rec, nil
}

// Put replaces an existing record. Never creates one.
func (m *Memory) Put(rec domain.ReputationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.Identity]; !ok {
		return domain.ErrNotRegistered
	}
	m.records[rec.Identity] = rec
	return nil
}

// Contains reports whether the identity has a record.
func (m *Memory) Contains(identity string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[identity]
	return ok, nil
}

// ─── Registration Ledger ────────────────────────────────────────────────────

// ListRegistered returns the slice [offset, offset+limit) of the ledger
// in insertion order.
func (m *Memory) ListRegistered(offset, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset < 0 || limit < 0 || offset >= len(m.order) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.order) {
		end = len(m.order)
	}
	page := make([]string, end-offset)
	copy(page, m.order[offset:end])
	return page, nil
}

// CountRegistered returns the ledger length.
func (m *Memory) CountRegistered() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order), nil
}

// ─── Authorization Set ──────────────────────────────────────────────────────

// GrantAuthorization adds an identity to the set. Idempotent.
func (m *Memory) GrantAuthorization(identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authorized[identity] = struct{}{}
	return nil
}

// RevokeAuthorization removes an identity from the set. Idempotent.
func (m *Memory) RevokeAuthorization(identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.authorized, identity)
	return nil
}

// IsAuthorized reports set membership.
func (m *Memory) IsAuthorized(identity string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.authorized[identity]
	return ok, nil
}

// ─── Parameter Block ────────────────────────────────────────────────────────

// SaveParams stores the parameter block.
func (m *Memory) SaveParams(p domain.Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params = p
	m.paramsSet = true
	return nil
}

// LoadParams returns the stored block, or ok=false if none was saved.
func (m *Memory) LoadParams() (domain.Params, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.params, m.paramsSet, nil
}
