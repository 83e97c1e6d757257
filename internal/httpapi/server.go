package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"isitdown/internal/probe"
	"isitdown/internal/repo"
)

// IntervalScheduler is what the settings endpoint needs from the
// scheduler: apply a new interval and report the clamped value.
type IntervalScheduler interface {
	SetInterval(d time.Duration) time.Duration
}

type Server struct {
	Logger    *zap.Logger
	Store     repo.Store
	Prober    probe.Prober
	Scheduler IntervalScheduler

	validate *validator.Validate
}

func NewServer(l *zap.Logger, store repo.Store, prober probe.Prober, sched IntervalScheduler) *Server {
	return &Server{
		Logger:    l,
		Store:     store,
		Prober:    prober,
		Scheduler: sched,
		validate:  validator.New(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/assets", s.handleListAssets)
	r.Post("/api/assets", s.handleAddAsset)
	r.Delete("/api/assets/{id}", s.handleDeleteAsset)
	r.Get("/api/assets/{id}/logs", s.handleAssetLogs)
	r.Get("/api/summary", s.handleSummary)
	r.Get("/api/settings", s.handleGetSettings)
	r.Put("/api/settings", s.handlePutSettings)

	return r
}
