package sqlite

import (
	"go.uber.org/zap"

	"github.com/repute-network/repute/internal/domain"
)

// AuditSink persists ledger events to the audit trail. Insert failures are
// logged and swallowed: the transition that produced the event has already
// committed, and the audit log is derived state.
type AuditSink struct {
	DB  *DB
	Log *zap.Logger
}

// Publish implements domain.EventSink.
func (s AuditSink) Publish(ev domain.Event) {
	if err := s.DB.AppendEvent(ev); err != nil && s.Log != nil {
		s.Log.Warn("audit append failed",
			zap.String("kind", string(ev.Kind)),
			zap.String("identity", ev.Identity),
			zap.Error(err))
	}
}
