package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"io"
	"log/slog"

	"github.com/stretchr/testify/assert"

	"github.com/fetchctl/fetchctl/internal/domain"
)

type mockStateReader struct {
	snapshot map[string]domain.DownloadState
	err      error
}

func (m *mockStateReader) Snapshot(ctx context.Context) (map[string]domain.DownloadState, error) {
	return m.snapshot, m.err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatusHandler_GetStatus(t *testing.T) {
	store := &mockStateReader{
		snapshot: map[string]domain.DownloadState{
			"http://a": domain.StateCompleted,
			"http://b": domain.StateDownloading,
		},
	}
	router := NewRouter(store, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Downloads map[string]domain.DownloadState `json:"downloads"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Equal(t, domain.StateCompleted, data.Downloads["http://a"])
	assert.Equal(t, domain.StateDownloading, data.Downloads["http://b"])
}

func TestStatusHandler_GetStatus_StoreError(t *testing.T) {
	store := &mockStateReader{err: errors.New("boom")}
	router := NewRouter(store, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRouter_Health(t *testing.T) {
	router := NewRouter(&mockStateReader{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Metrics(t *testing.T) {
	router := NewRouter(&mockStateReader{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
