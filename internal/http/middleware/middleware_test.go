package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubRefresher struct {
	reset bool
	err   error
	calls int
}

func (s *stubRefresher) EnsureFresh() (bool, error) {
	s.calls++
	return s.reset, s.err
}

func teapot(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte("short and stout"))
}

func TestRequestLogger_KeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	req := httptest.NewRequest(http.MethodGet, "/alumnos", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()

	RequestLogger(logger)(http.HandlerFunc(teapot)).ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(HeaderRequestID))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"bytes":15`)
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()

	RequestLogger(logger)(http.HandlerFunc(teapot)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestFresh(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ref := &stubRefresher{reset: true}
	rec := httptest.NewRecorder()
	Fresh(ref, logger)(http.HandlerFunc(teapot)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1, ref.calls)

	ref = &stubRefresher{err: errors.New("backend gone")}
	rec = httptest.NewRecorder()
	Fresh(ref, logger)(http.HandlerFunc(teapot)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "backend gone")
}
