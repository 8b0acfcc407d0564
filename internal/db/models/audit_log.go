package models

import "time"

// AuditLog is one recorded business event (quiz submitted, notes generated).
// Kept in its own table: the audit trail and rate-limit accounting are
// independent concerns.
type AuditLog struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index" json:"user_id"`
	Action       string    `gorm:"not null" json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Metadata     string    `gorm:"type:text" json:"metadata,omitempty"` // JSON object
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}
