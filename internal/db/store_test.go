package db

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BharatBattles/edurank-glow/internal/db/models"
)

// testDSN returns a per-test in-memory database. The shared cache keeps all
// pooled connections of one gorm handle on the same database.
func testDSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(testDSN()), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.RequestLog{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewStore(gdb)
}

// seedRequest inserts a row with an explicit created_at.
func seedRequest(t *testing.T, s *Store, userID, operation string, createdAt time.Time) {
	t.Helper()
	entry := models.RequestLog{
		ID:        userID + "-" + operation + "-" + createdAt.Format(time.RFC3339Nano),
		UserID:    userID,
		Operation: operation,
		Success:   true,
		CreatedAt: createdAt,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}
}

func TestCountSince_EmptyWindow(t *testing.T) {
	s := newTestStore(t)

	count, oldest, err := s.CountSince(context.Background(), "user-a", "generate-notes", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince() error: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if oldest != nil {
		t.Errorf("oldest = %v, want nil", oldest)
	}
}

func TestCountSince_CountsAndOldest(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	seedRequest(t, s, "user-a", "generate-notes", now.Add(-50*time.Minute))
	seedRequest(t, s, "user-a", "generate-notes", now.Add(-30*time.Minute))
	seedRequest(t, s, "user-a", "generate-notes", now.Add(-10*time.Minute))
	// Outside the hourly window.
	seedRequest(t, s, "user-a", "generate-notes", now.Add(-2*time.Hour))

	count, oldest, err := s.CountSince(context.Background(), "user-a", "generate-notes", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince() error: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	if oldest == nil {
		t.Fatal("oldest = nil, want the 50-minute-old entry")
	}
	if got := oldest.Sub(now.Add(-50 * time.Minute)); got > time.Second || got < -time.Second {
		t.Errorf("oldest = %v, want ~%v", oldest, now.Add(-50*time.Minute))
	}
}

func TestCountSince_IsolatesUserAndOperation(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	seedRequest(t, s, "user-a", "generate-notes", now.Add(-10*time.Minute))
	seedRequest(t, s, "user-a", "find-video", now.Add(-10*time.Minute))
	seedRequest(t, s, "user-b", "generate-notes", now.Add(-10*time.Minute))

	count, _, err := s.CountSince(context.Background(), "user-a", "generate-notes", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince() error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (other users and operations must not leak in)", count)
	}
}

func TestCreateRequestLog_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateRequestLog(context.Background(), "user-a", "generate-quiz", true, map[string]interface{}{"quizId": "q-1"})
	if err != nil {
		t.Fatalf("CreateRequestLog() error: %v", err)
	}
	if id == "" {
		t.Fatal("CreateRequestLog() returned empty id")
	}

	var entry models.RequestLog
	if err := s.db.First(&entry, "id = ?", id).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if entry.UserID != "user-a" || entry.Operation != "generate-quiz" || !entry.Success {
		t.Errorf("entry = %+v, fields not persisted", entry)
	}
	if entry.Metadata != `{"quizId":"q-1"}` {
		t.Errorf("metadata = %q", entry.Metadata)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestCreateAuditLog_AndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateAuditLog(ctx, models.AuditLog{
		UserID:       "user-a",
		Action:       "quiz_submitted",
		ResourceType: "quiz",
		ResourceID:   "q-1",
		IPAddress:    "203.0.113.9",
		UserAgent:    "test-agent",
	})
	if err != nil {
		t.Fatalf("CreateAuditLog() error: %v", err)
	}
	if id == "" {
		t.Fatal("CreateAuditLog() returned empty id")
	}
	if _, err := s.CreateAuditLog(ctx, models.AuditLog{UserID: "user-b", Action: "notes_generated"}); err != nil {
		t.Fatalf("CreateAuditLog() error: %v", err)
	}

	events, err := s.ListAuditEvents(ctx, "user-a", 10)
	if err != nil {
		t.Fatalf("ListAuditEvents() error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Action != "quiz_submitted" || events[0].ResourceID != "q-1" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestEncodeMetadata_Truncates(t *testing.T) {
	big := make([]byte, MaxMetadataLen*2)
	for i := range big {
		big[i] = 'a'
	}
	encoded := EncodeMetadata(map[string]interface{}{"blob": string(big)})
	if len(encoded) > MaxMetadataLen+64 {
		t.Errorf("encoded length = %d, want bounded near %d", len(encoded), MaxMetadataLen)
	}
}

func TestEncodeMetadata_Empty(t *testing.T) {
	if got := EncodeMetadata(nil); got != "" {
		t.Errorf("EncodeMetadata(nil) = %q, want empty", got)
	}
}
