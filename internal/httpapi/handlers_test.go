package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"isitdown/internal/domain"
	"isitdown/internal/repo/memory"
)

type fakeProber struct {
	result domain.ProbeResult
	calls  int
}

func (f *fakeProber) Probe(ctx context.Context, target string) domain.ProbeResult {
	f.calls++
	return f.result
}

type fakeScheduler struct {
	applied []time.Duration
}

func (f *fakeScheduler) SetInterval(d time.Duration) time.Duration {
	f.applied = append(f.applied, d)
	return d
}

func newTestServer(t *testing.T) (*Server, *memory.Store, *fakeProber, *fakeScheduler) {
	t.Helper()
	store := memory.New()
	prober := &fakeProber{result: domain.ProbeResult{StatusCode: 200, ResponseTime: 0.01}}
	sched := &fakeScheduler{}
	return NewServer(zap.NewNop(), store, prober, sched), store, prober, sched
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestAddAssetRunsImmediateCheck(t *testing.T) {
	srv, store, prober, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/assets",
		`{"name":"My Website","url":"tabbythecat.com","show_in_menubar":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got domain.Asset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotEmpty(t, got.ID)
	require.Equal(t, "http://tabbythecat.com", got.URL)
	require.Equal(t, "Ungrouped", got.GroupName)
	require.Equal(t, domain.StatusUp, got.Status)
	require.Equal(t, 1, prober.calls)

	stored, err := store.Get(context.Background(), got.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusUp, stored.Status)

	logs, err := store.LogsSince(context.Background(), got.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestAddAssetValidation(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/assets", `{"url":"http://a.example"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	long := strings.Repeat("x", domain.MaxNameLen+1)
	rec = do(t, srv, http.MethodPost, "/api/assets",
		`{"name":"`+long+`","url":"http://a.example"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	exact := strings.Repeat("x", domain.MaxNameLen)
	rec = do(t, srv, http.MethodPost, "/api/assets",
		`{"name":"`+exact+`","url":"http://a.example"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/assets", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAssets(t *testing.T) {
	srv, store, _, _ := newTestServer(t)
	for _, name := range []string{"a", "b"} {
		asset := domain.Asset{Name: name, URL: "http://" + name + ".example"}
		require.NoError(t, store.Add(context.Background(), &asset))
	}

	rec := do(t, srv, http.MethodGet, "/api/assets", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.Asset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Name)
}

func TestDeleteAsset(t *testing.T) {
	srv, store, _, _ := newTestServer(t)
	asset := domain.Asset{Name: "gone", URL: "http://gone.example"}
	require.NoError(t, store.Add(context.Background(), &asset))

	rec := do(t, srv, http.MethodDelete, "/api/assets/"+string(asset.ID), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/assets/"+string(asset.ID), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetLogs(t *testing.T) {
	srv, store, _, _ := newTestServer(t)
	asset := domain.Asset{Name: "site", URL: "http://a.example"}
	require.NoError(t, store.Add(context.Background(), &asset))

	now := time.Now().UTC()
	require.NoError(t, store.SaveCycle(context.Background(), nil, []domain.StatusLog{
		{AssetID: asset.ID, Timestamp: now.Add(-48 * time.Hour), IsUp: true},
		{AssetID: asset.ID, Timestamp: now, IsUp: false},
	}))

	// default window is the retention period
	rec := do(t, srv, http.MethodGet, "/api/assets/"+string(asset.ID)+"/logs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []domain.StatusLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)

	// explicit since widens it
	since := now.Add(-72 * time.Hour).Format(time.RFC3339)
	rec = do(t, srv, http.MethodGet, "/api/assets/"+string(asset.ID)+"/logs?since="+since, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 2)

	rec = do(t, srv, http.MethodGet, "/api/assets/"+string(asset.ID)+"/logs?since=yesterday", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/assets/unknown/logs", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetLogsEmptyIsArray(t *testing.T) {
	srv, store, _, _ := newTestServer(t)
	asset := domain.Asset{Name: "quiet", URL: "http://q.example"}
	require.NoError(t, store.Add(context.Background(), &asset))

	rec := do(t, srv, http.MethodGet, "/api/assets/"+string(asset.ID)+"/logs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestSummary(t *testing.T) {
	srv, store, _, _ := newTestServer(t)
	for _, st := range []domain.Status{domain.StatusUp, domain.StatusDown, domain.StatusDown} {
		asset := domain.Asset{Name: "x", URL: "http://x.example", Status: st}
		require.NoError(t, store.Add(context.Background(), &asset))
	}

	rec := do(t, srv, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Total        int  `json:"total"`
		Down         int  `json:"down"`
		Consolidated bool `json:"consolidated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, 3, got.Total)
	require.Equal(t, 2, got.Down)
	require.False(t, got.Consolidated)
}

func TestGetSettingsDefaults(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got settingsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, domain.DefaultCheckInterval.Seconds(), got.CheckIntervalS)
	require.False(t, got.NotificationsEnabled)
}

func TestPutSettingsClampsAndReschedules(t *testing.T) {
	srv, store, _, sched := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/settings",
		`{"check_interval_s":5,"notifications_enabled":true,"consolidated_display":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got settingsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, domain.MinCheckInterval.Seconds(), got.CheckIntervalS)
	require.True(t, got.NotificationsEnabled)

	require.Equal(t, []time.Duration{domain.MinCheckInterval}, sched.applied)

	stored, found, err := store.LoadSettings(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.MinCheckInterval, stored.CheckInterval)
	require.True(t, stored.NotificationsEnabled)
	require.True(t, stored.ConsolidatedDisplay)
}

func TestPutSettingsRejectsBadInterval(t *testing.T) {
	srv, _, _, sched := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/settings", `{"check_interval_s":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, "/api/settings", `{"check_interval_s":-1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Empty(t, sched.applied)
}

func TestHealthz(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}
