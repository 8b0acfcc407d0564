// Package db owns the persisted request-log and audit-log tables.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BharatBattles/edurank-glow/internal/db/models"
	"github.com/BharatBattles/edurank-glow/internal/util"
)

// MaxMetadataLen bounds the serialized metadata stored per row (4KB).
const MaxMetadataLen = 4 * 1024

// Store provides append and window-read access to the two core tables.
// Both tables are append-only: Store exposes no update or delete path.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a GORM handle.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// CreateRequestLog appends one request-log row for (userID, operation) and
// returns its generated ID. CreatedAt is set here and never mutated.
func (s *Store) CreateRequestLog(ctx context.Context, userID, operation string, success bool, metadata map[string]interface{}) (string, error) {
	entry := models.RequestLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Operation: operation,
		Success:   success,
		Metadata:  EncodeMetadata(metadata),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return "", fmt.Errorf("create request log: %w", err)
	}
	return entry.ID, nil
}

// CountSince answers the window query: how many request-log rows exist for
// exactly (userID, operation) with created_at after since, and the earliest
// such created_at (nil when the window is empty). Read-only; storage errors
// propagate to the caller, which owns the fail-open decision.
func (s *Store) CountSince(ctx context.Context, userID, operation string, since time.Time) (int64, *time.Time, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.RequestLog{}).
		Where("user_id = ? AND operation = ? AND created_at > ?", userID, operation, since).
		Count(&count).Error
	if err != nil {
		return 0, nil, fmt.Errorf("count requests in window: %w", err)
	}
	if count == 0 {
		return 0, nil, nil
	}

	var entry models.RequestLog
	err = s.db.WithContext(ctx).
		Select("created_at").
		Where("user_id = ? AND operation = ? AND created_at > ?", userID, operation, since).
		Order("created_at asc").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return count, nil, nil
		}
		return 0, nil, fmt.Errorf("oldest request in window: %w", err)
	}

	oldest := entry.CreatedAt
	return count, &oldest, nil
}

// CreateAuditLog appends one audit-log row and returns its generated ID.
func (s *Store) CreateAuditLog(ctx context.Context, entry models.AuditLog) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return "", fmt.Errorf("create audit log: %w", err)
	}
	return entry.ID, nil
}

// ListAuditEvents returns a user's most recent audit events, newest first.
func (s *Store) ListAuditEvents(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var events []models.AuditLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}

// EncodeMetadata serializes an open key-value payload as JSON text,
// truncated to MaxMetadataLen.
func EncodeMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return util.TruncateLog(string(b), MaxMetadataLen)
}
