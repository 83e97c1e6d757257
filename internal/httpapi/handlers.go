package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"isitdown/internal/domain"
	"isitdown/internal/repo"
	"isitdown/internal/status"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.Store.List(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, assets)
}

type addPayload struct {
	Name          string `json:"name" validate:"required"`
	URL           string `json:"url" validate:"required"`
	GroupName     string `json:"group_name"`
	ShowInMenubar bool   `json:"show_in_menubar"`
}

// nameMaxRule derives the name-length bound from the domain constant
// so the two cannot drift.
var nameMaxRule = fmt.Sprintf("max=%d", domain.MaxNameLen)

func (s *Server) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	var p addPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(p); err != nil {
		http.Error(w, "bad payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.validate.Var(p.Name, nameMaxRule); err != nil {
		http.Error(w, "name too long", http.StatusBadRequest)
		return
	}

	a := &domain.Asset{
		Name:          p.Name,
		URL:           domain.NormalizeURL(p.URL),
		GroupName:     domain.NormalizeGroup(p.GroupName),
		Status:        domain.StatusChecking,
		ShowInMenubar: p.ShowInMenubar,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Store.Add(r.Context(), a); err != nil {
		http.Error(w, "could not add", http.StatusInternalServerError)
		return
	}

	// Single synchronous check for immediate feedback; same commit
	// path as a scheduler cycle.
	res := s.Prober.Probe(r.Context(), a.URL)
	updated, lg, _ := status.Apply(*a, res, time.Now().UTC())
	if err := s.Store.SaveCycle(r.Context(), []domain.Asset{updated}, []domain.StatusLog{lg}); err != nil {
		s.Logger.Warn("first_check_commit_error",
			zap.String("asset_id", string(a.ID)),
			zap.Error(err),
		)
	}

	s.Logger.Info("asset_added",
		zap.String("asset_id", string(updated.ID)),
		zap.String("url", updated.URL),
		zap.String("status", string(updated.Status)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(updated)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := domain.AssetID(chi.URLParam(r, "id"))
	err := s.Store.Delete(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "delete error", http.StatusInternalServerError)
		return
	}
	s.Logger.Info("asset_deleted", zap.String("asset_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssetLogs(w http.ResponseWriter, r *http.Request) {
	id := domain.AssetID(chi.URLParam(r, "id"))
	if _, err := s.Store.Get(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "lookup error", http.StatusInternalServerError)
		return
	}

	since := time.Now().UTC().Add(-domain.LogRetention)
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "bad since", http.StatusBadRequest)
			return
		}
		since = t
	}

	logs, err := s.Store.LogsSince(r.Context(), id, since)
	if err != nil {
		http.Error(w, "logs error", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []domain.StatusLog{}
	}
	writeJSON(w, logs)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	assets, err := s.Store.List(r.Context())
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	settings, _, err := s.Store.LoadSettings(r.Context())
	if err != nil {
		http.Error(w, "settings error", http.StatusInternalServerError)
		return
	}
	sum := domain.Summarize(assets)
	writeJSON(w, map[string]any{
		"total":        sum.Total,
		"down":         sum.Down,
		"consolidated": settings.ConsolidatedDisplay,
	})
}

// settingsPayload mirrors the persisted preferences; the interval is
// exchanged as float seconds.
type settingsPayload struct {
	CheckIntervalS       float64 `json:"check_interval_s"`
	NotificationsEnabled bool    `json:"notifications_enabled"`
	ConsolidatedDisplay  bool    `json:"consolidated_display"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, _, err := s.Store.LoadSettings(r.Context())
	if err != nil {
		http.Error(w, "settings error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, settingsPayload{
		CheckIntervalS:       settings.CheckInterval.Seconds(),
		NotificationsEnabled: settings.NotificationsEnabled,
		ConsolidatedDisplay:  settings.ConsolidatedDisplay,
	})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var p settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if p.CheckIntervalS <= 0 {
		http.Error(w, "bad interval", http.StatusBadRequest)
		return
	}

	settings := domain.Settings{
		CheckInterval:        domain.ClampInterval(time.Duration(p.CheckIntervalS * float64(time.Second))),
		NotificationsEnabled: p.NotificationsEnabled,
		ConsolidatedDisplay:  p.ConsolidatedDisplay,
	}
	if err := s.Store.SaveSettings(r.Context(), settings); err != nil {
		http.Error(w, "settings error", http.StatusInternalServerError)
		return
	}
	if s.Scheduler != nil {
		settings.CheckInterval = s.Scheduler.SetInterval(settings.CheckInterval)
	}

	s.Logger.Info("settings_saved",
		zap.Duration("check_interval", settings.CheckInterval),
		zap.Bool("notifications", settings.NotificationsEnabled),
		zap.Bool("consolidated", settings.ConsolidatedDisplay),
	)
	writeJSON(w, settingsPayload{
		CheckIntervalS:       settings.CheckInterval.Seconds(),
		NotificationsEnabled: settings.NotificationsEnabled,
		ConsolidatedDisplay:  settings.ConsolidatedDisplay,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
