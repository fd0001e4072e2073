package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; the ledger depends on them.

// Store is the exclusive owner of all reputation records, the append-only
// registration ledger, the authorization set, and the parameter block.
//
// Register fails with ErrAlreadyRegistered for a known identity; Get and
// Put fail with ErrNotRegistered for an unknown one. No operation may
// create a record implicitly, and nothing is ever deleted.
type Store interface {
	// Records
	Register(rec ReputationRecord) error
	Get(identity string) (ReputationRecord, error)
	Put(rec ReputationRecord) error
	Contains(identity string) (bool, error)

	// Registration ledger (insertion order, never reordered or compacted)
	ListRegistered(offset, limit int) ([]string, error)
	CountRegistered() (int, error)

	// Authorization set
	GrantAuthorization(identity string) error
	RevokeAuthorization(identity string) error
	IsAuthorized(identity string) (bool, error)

	// Parameter block. LoadParams reports ok=false when nothing has been
	// persisted yet; callers fall back to DefaultParams.
	SaveParams(p Params) error
	LoadParams() (Params, bool, error)
}
