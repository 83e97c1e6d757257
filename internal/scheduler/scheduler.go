package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"isitdown/internal/domain"
	"isitdown/internal/notify"
	"isitdown/internal/probe"
	"isitdown/internal/repo"
	"isitdown/internal/status"
)

// Scheduler drives the check cycles: one repeating timer, bounded
// concurrent probes, a join barrier, then a single transactional
// commit followed by retention cleanup. Cycles never overlap; a tick
// that lands while a cycle is running is skipped, not queued.
type Scheduler struct {
	Logger      *zap.Logger
	Store       repo.Store
	Prober      probe.Prober
	Gate        probe.ConnectivityGate
	Notifier    notify.Notifier
	Metrics     domain.MetricsCollector
	Concurrency int

	mu       sync.Mutex
	interval time.Duration
	reset    chan struct{}
	running  atomic.Bool
}

func New(
	logger *zap.Logger,
	store repo.Store,
	prober probe.Prober,
	gate probe.ConnectivityGate,
	notifier notify.Notifier,
	metrics domain.MetricsCollector,
	interval time.Duration,
	concurrency int,
) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &Scheduler{
		Logger:      logger,
		Store:       store,
		Prober:      prober,
		Gate:        gate,
		Notifier:    notifier,
		Metrics:     metrics,
		Concurrency: concurrency,
		interval:    domain.ClampInterval(interval),
		reset:       make(chan struct{}, 1),
	}
}

// Interval returns the current check interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval clamps d to the hard floor, applies it, and reschedules
// the pending timer immediately. An in-flight cycle is unaffected; its
// already-started probes complete and commit. Returns the applied
// value.
func (s *Scheduler) SetInterval(d time.Duration) time.Duration {
	d = domain.ClampInterval(d)
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()

	// Wake the loop; it reads the stored interval itself, so the
	// signal carries no value and concurrent setters cannot leave a
	// stale duration behind.
	select {
	case s.reset <- struct{}{}:
	default:
	}
	return d
}

// Run starts the loop: an immediate pass, then one cycle per tick.
// Stops when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	t := time.NewTicker(s.Interval())
	defer t.Stop()

	s.TryRunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("scheduler_stopped")
			return
		case <-s.reset:
			d := s.Interval()
			t.Reset(d)
			s.Logger.Info("interval_rescheduled", zap.Duration("interval", d))
		case <-t.C:
			s.TryRunCycle(ctx)
		}
	}
}

// TryRunCycle runs one cycle unless another is already in flight.
// Reports whether the cycle ran.
func (s *Scheduler) TryRunCycle(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.Metrics.RecordSkippedCycle()
		s.Logger.Debug("cycle_skipped_overlap")
		return false
	}
	defer s.running.Store(false)

	if err := s.runCycle(ctx); err != nil {
		s.Logger.Warn("cycle_error", zap.Error(err))
	}
	return true
}

type cycleOutcome struct {
	prev         domain.Status
	asset        domain.Asset
	log          domain.StatusLog
	transitioned bool
}

func (s *Scheduler) runCycle(ctx context.Context) error {
	started := time.Now()

	settings, _, err := s.Store.LoadSettings(ctx)
	if err != nil {
		s.Logger.Warn("settings_load_error", zap.Error(err))
		settings = domain.DefaultSettings()
	}

	assets, err := s.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}
	if len(assets) == 0 {
		return nil
	}

	// One gate consult per cycle; connectivity is never cached across
	// cycles.
	offline := s.Gate != nil && !s.Gate.IsConnected()

	sem := make(chan struct{}, s.Concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	outcomes := make([]cycleOutcome, 0, len(assets))

	for _, a := range assets {
		if strings.TrimSpace(a.URL) == "" {
			continue
		}
		a := a
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			var res domain.ProbeResult
			if offline {
				res = domain.ProbeResult{
					NoInternet: true,
					IsDown:     true,
					StatusCode: domain.CodeNoInternet,
					ErrorDesc:  "No internet connection",
				}
			} else {
				res = s.Prober.Probe(ctx, a.URL)
			}

			updated, lg, transitioned := status.Apply(a, res, time.Now().UTC())
			s.Metrics.RecordProbe(a.Name, res.Up(), res.ResponseTime)

			mu.Lock()
			outcomes = append(outcomes, cycleOutcome{
				prev:         a.Status,
				asset:        updated,
				log:          lg,
				transitioned: transitioned,
			})
			mu.Unlock()
		}()
	}
	wg.Wait()

	updatedAssets := make([]domain.Asset, 0, len(outcomes))
	newLogs := make([]domain.StatusLog, 0, len(outcomes))
	for _, o := range outcomes {
		updatedAssets = append(updatedAssets, o.asset)
		newLogs = append(newLogs, o.log)
	}

	if err := s.Store.SaveCycle(ctx, updatedAssets, newLogs); err != nil {
		// This cycle's results are discarded; the next tick retries
		// from a fresh read. No alerts fire for unpersisted state.
		s.Metrics.RecordCommitError()
		return fmt.Errorf("cycle commit: %w", err)
	}

	var cycleErr error
	purged, err := s.Store.DeleteLogsOlderThan(ctx, started.UTC().Add(-domain.LogRetention))
	if err != nil {
		cycleErr = multierr.Append(cycleErr, fmt.Errorf("retention cleanup: %w", err))
	} else {
		s.Metrics.RecordPurgedLogs(purged)
	}

	for _, o := range outcomes {
		if notify.ShouldNotify(o.prev, o.asset.Status, settings.NotificationsEnabled) {
			go s.deliver(o.asset)
		}
	}

	s.Metrics.RecordCycle(time.Since(started), len(outcomes))
	s.Logger.Debug("cycle_done",
		zap.Int("assets", len(outcomes)),
		zap.Int64("purged_logs", purged),
		zap.Duration("elapsed", time.Since(started)),
	)
	return cycleErr
}

// deliver sends one down alert. Fire-and-forget: runs off the cycle
// goroutine, failures are logged and never retried.
func (s *Scheduler) deliver(a domain.Asset) {
	if s.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	title := fmt.Sprintf("%s is down", a.Name)
	text := fmt.Sprintf("URL: %s\nHTTP: %d\nReason: %s\nChecked: %s",
		a.URL, a.Code, a.ErrorDesc, a.LastUpdate.Format(time.RFC3339))

	s.Metrics.RecordNotification(a.Name)
	if err := s.Notifier.Send(ctx, title, text); err != nil {
		s.Logger.Warn("notify_error",
			zap.String("asset", a.Name),
			zap.Error(err),
		)
	}
}
