package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mauv0809/courtbooker/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	spool, err := NewSpool(t.TempDir())
	require.NoError(t, err)

	// The queue is never started, so jobs stay in the channel for assertions.
	queue := NewQueue(func(context.Context, Job) {})
	base := config.Config{
		LoginURL:  "https://club.example/login.html",
		MemberURL: "https://club.example/",
		Courts: config.CourtsConfig{
			Names: map[string]string{"1455": "Court A", "1456": "Court B"},
		},
	}
	srv := NewServer(config.ServerConfig{Port: "3000"}, base, queue, spool, http.NotFoundHandler())
	srv.now = func() time.Time {
		return time.Date(2026, time.September, 1, 12, 0, 0, 0, time.Local)
	}
	return srv
}

func postStart(t *testing.T, srv *Server, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/start", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) startResponse {
	t.Helper()
	var resp startResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK!", rec.Body.String())
}

func TestStartRejectsMissingCredentials(t *testing.T) {
	srv := newTestServer(t)
	rec := postStart(t, srv, map[string]any{
		"dateMethod":      "specific",
		"reservationDate": "2026-09-20",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResponse(t, rec).Message, "credentials")
}

func TestStartRejectsInvalidDateMethod(t *testing.T) {
	srv := newTestServer(t)
	rec := postStart(t, srv, map[string]any{
		"username": "user",
		"password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartSpecificDateSpoolsConfigAndSchedules(t *testing.T) {
	srv := newTestServer(t)
	rec := postStart(t, srv, map[string]any{
		"username":        "user",
		"password":        "pw",
		"dateMethod":      "specific",
		"reservationDate": "2026-09-20",
		"preferredHour1":  "14:00",
		"preferredHour2":  "15:00",
		"preferredCourt":  "1456",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Len(t, resp.ScheduledDates, 1)
	assert.Equal(t, "2026-09-20", resp.ScheduledDates[0].Date)
	assert.Equal(t, []string{"14:00", "15:00"}, resp.ScheduledDates[0].Hours)

	// Booking opens seven days out at 00:01.
	execution, err := time.Parse(time.RFC3339, resp.ScheduledDates[0].ExecutionDate)
	require.NoError(t, err)
	assert.Equal(t, 13, execution.Day())
	assert.Equal(t, 0, execution.Hour())
	assert.Equal(t, 1, execution.Minute())

	files, err := filepath.Glob(filepath.Join(srv.Spool.dir, "config_20260920_*.yaml"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "user", cfg.Username)
	assert.Equal(t, "2026-09-20", cfg.ReservationDate)
	require.NotNil(t, cfg.BookingAdvance)
	assert.Zero(t, *cfg.BookingAdvance)
	assert.True(t, cfg.UseCourtPreferences)
	assert.Equal(t, []string{"1456"}, cfg.Courts.Preferences)
	assert.Equal(t, "https://club.example/", cfg.MemberURL)
}

func TestStartPastOpeningRunsSoon(t *testing.T) {
	srv := newTestServer(t)
	// Opening time (target - 7 days) is already behind the fixed clock.
	rec := postStart(t, srv, map[string]any{
		"username":        "user",
		"password":        "pw",
		"dateMethod":      "specific",
		"reservationDate": "2026-09-03",
		"preferredHour1":  "14:00",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.Len(t, resp.ScheduledDates, 1)
	execution, err := time.Parse(time.RFC3339, resp.ScheduledDates[0].ExecutionDate)
	require.NoError(t, err)
	assert.Equal(t, srv.now().Add(5*time.Second), execution)
}

func TestStartTestModeEnqueuesImmediately(t *testing.T) {
	srv := newTestServer(t)
	rec := postStart(t, srv, map[string]any{
		"username":        "user",
		"password":        "pw",
		"dateMethod":      "specific",
		"reservationDate": "2026-12-24",
		"preferredHour1":  "14:00",
		"testMode":        true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case job := <-srv.Queue.jobs:
		assert.Contains(t, job.ConfigPath, "config_20261224_")
	default:
		t.Fatal("expected an immediately enqueued job")
	}
}

func TestStartMultipleDates(t *testing.T) {
	srv := newTestServer(t)
	rec := postStart(t, srv, map[string]any{
		"username":   "user",
		"password":   "pw",
		"dateMethod": "multiple",
		"multipleDates": []map[string]any{
			{"date": "2026-10-05", "hours": []string{"15:00"}},
			{"date": "02/10/2026", "hours": []string{"14:00", "16:00"}},
			{"date": "2026-10-07", "hours": []string{}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	// The empty-hours entry is skipped and the rest come back date-sorted.
	require.Len(t, resp.ScheduledDates, 2)
	assert.Equal(t, "2026-10-02", resp.ScheduledDates[0].Date)
	assert.Equal(t, "2026-10-05", resp.ScheduledDates[1].Date)
}

func TestStartDryRunForcesTestMode(t *testing.T) {
	srv := newTestServer(t)
	body, err := json.Marshal(map[string]any{
		"username":        "user",
		"password":        "pw",
		"dateMethod":      "specific",
		"reservationDate": "2026-12-24",
		"preferredHour1":  "14:00",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/start?dry_run=true", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-srv.Queue.jobs:
	default:
		t.Fatal("dry_run should enqueue immediately like test mode")
	}
}

func TestStartRejectsGet(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/start", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
