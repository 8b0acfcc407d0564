// Package audit records business events (quiz submitted, notes generated)
// into their own append-only trail, independent of rate-limit accounting.
package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BharatBattles/edurank-glow/internal/db"
	"github.com/BharatBattles/edurank-glow/internal/db/models"
	"github.com/BharatBattles/edurank-glow/internal/logging"
)

// Event is one business event to record.
type Event struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	Metadata     map[string]interface{}
	IPAddress    string
	UserAgent    string
}

// Recorder persists audit events best-effort.
type Recorder struct {
	store  *db.Store
	logger *zap.Logger
}

// NewRecorder builds a Recorder over the store.
func NewRecorder(store *db.Store, logger *zap.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record persists ev and returns the event ID. Insertion failures are
// logged and swallowed: an audit-logging failure must never abort or alter
// the caller's primary operation.
func (r *Recorder) Record(ctx context.Context, ev Event) string {
	entry := models.AuditLog{
		ID:           uuid.New().String(),
		UserID:       ev.UserID,
		Action:       ev.Action,
		ResourceType: ev.ResourceType,
		ResourceID:   ev.ResourceID,
		Metadata:     db.EncodeMetadata(ev.Metadata),
		IPAddress:    ev.IPAddress,
		UserAgent:    ev.UserAgent,
	}
	if _, err := r.store.CreateAuditLog(ctx, entry); err != nil {
		r.logger.Warn("audit event not persisted",
			zap.Error(err),
			zap.String("userId", ev.UserID),
			zap.String("action", ev.Action),
			logging.RequestIDField(ctx))
	}
	return entry.ID
}
