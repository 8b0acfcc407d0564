package models

import "time"

// RequestLog is one evaluated call against a rate-limited operation.
// Rows are append-only: nothing in the application updates or deletes them,
// they only age out of the counting windows.
type RequestLog struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index:idx_request_logs_user_op;not null" json:"user_id"`
	Operation string    `gorm:"index:idx_request_logs_user_op;not null" json:"operation"`
	Success   bool      `json:"success"`
	Metadata  string    `gorm:"type:text" json:"metadata,omitempty"` // JSON object
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
