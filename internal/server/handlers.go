package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BharatBattles/edurank-glow/internal/audit"
	"github.com/BharatBattles/edurank-glow/internal/auth"
	"github.com/BharatBattles/edurank-glow/internal/logging"
	"github.com/BharatBattles/edurank-glow/internal/ratelimit"
)

type checkRequest struct {
	Operation string `json:"operation"`
}

type logRequestBody struct {
	Operation string                 `json:"operation"`
	Success   bool                   `json:"success"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type auditRequestBody struct {
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   string                 `json:"resourceId,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// handleCheck evaluates the caller's quota for one operation. Denied
// attempts are logged here (the caller never completes them); allowed
// attempts are logged by the caller via POST /requests once the gated
// action finishes, so each gated call produces exactly one entry.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFrom(r)

	var body checkRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Operation == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "operation is required"})
		return
	}

	cfg, ok := ratelimit.ConfigFor(body.Operation)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown operation: " + body.Operation})
		return
	}

	result := s.limiter.Check(r.Context(), cfg, userID)
	if !result.Allowed {
		s.logRequest(r.Context(), userID, cfg.Operation, false, map[string]interface{}{"denied": true})
		writeJSON(w, http.StatusTooManyRequests, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleStatus reports current usage. Callers may only ask about
// themselves; a userId query param naming someone else gets a 403 before
// any data access.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFrom(r)

	operation := r.URL.Query().Get("operation")
	if operation == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "operation is required"})
		return
	}
	if _, ok := ratelimit.ConfigFor(operation); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown operation: " + operation})
		return
	}

	subjectID := r.URL.Query().Get("userId")
	if subjectID == "" {
		subjectID = callerID
	}

	usage, err := s.limiter.Status(r.Context(), callerID, subjectID, operation)
	if err != nil {
		if errors.Is(err, ratelimit.ErrPermissionDenied) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "you may only view your own usage"})
			return
		}
		s.logger.Error("status query failed", zap.Error(err),
			zap.String("userId", subjectID), logging.RequestIDField(r.Context()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load usage"})
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

// handleLogRequest is the completion call for a gated action. Best-effort:
// the response is 202 whether or not the row was persisted.
func (s *Server) handleLogRequest(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFrom(r)

	var body logRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Operation == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "operation is required"})
		return
	}
	if _, ok := ratelimit.ConfigFor(body.Operation); !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown operation: " + body.Operation})
		return
	}

	s.logRequest(r.Context(), userID, body.Operation, body.Success, body.Metadata)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleRecordAudit records a business event for the caller.
func (s *Server) handleRecordAudit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFrom(r)

	var body auditRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action is required"})
		return
	}

	id := s.recorder.Record(r.Context(), audit.Event{
		UserID:       userID,
		Action:       body.Action,
		ResourceType: body.ResourceType,
		ResourceID:   body.ResourceID,
		Metadata:     body.Metadata,
		IPAddress:    r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	})
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

// handleListAudit returns the caller's recent audit events.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFrom(r)

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	events, err := s.store.ListAuditEvents(r.Context(), userID, limit)
	if err != nil {
		s.logger.Error("audit list failed", zap.Error(err),
			zap.String("userId", userID), logging.RequestIDField(r.Context()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load audit events"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events, "count": len(events)})
}

// logRequest appends one request-log row, swallowing failures: logging is
// a side effect of the gated operation, never a gate on it.
func (s *Server) logRequest(ctx context.Context, userID, operation string, success bool, metadata map[string]interface{}) {
	if _, err := s.store.CreateRequestLog(ctx, userID, operation, success, metadata); err != nil {
		s.logger.Warn("request log write failed",
			zap.Error(err),
			zap.String("userId", userID),
			zap.String("operation", operation),
			logging.RequestIDField(ctx))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone at this point; nothing to do but note it.
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}
