package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BharatBattles/edurank-glow/internal/logging"
)

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	srv := &Server{logger: zap.New(core)}

	var seen string
	handler := chimiddleware.RequestID(srv.requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.NotEmpty(t, seen, "handlers must see the request ID in context")

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, seen, entries[0].ContextMap()["requestId"],
		"the access log line and the handler context must carry the same request ID")
}

func TestRequestLogger_GeneratesIDWhenMissing(t *testing.T) {
	srv := &Server{logger: zap.NewNop()}

	var seen string
	handler := srv.requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen, "a request ID must be generated when none was assigned upstream")
}
