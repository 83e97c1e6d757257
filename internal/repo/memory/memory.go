package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"isitdown/internal/domain"
	"isitdown/internal/repo"
)

// Store is the in-memory repository. All methods copy on the way in
// and out, so readers always see complete assets.
type Store struct {
	mu       sync.RWMutex
	assets   map[domain.AssetID]domain.Asset
	order    []domain.AssetID
	logs     map[domain.AssetID][]domain.StatusLog
	settings *domain.Settings
}

var _ repo.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		assets: make(map[domain.AssetID]domain.Asset),
		logs:   make(map[domain.AssetID][]domain.StatusLog),
	}
}

func (m *Store) Add(ctx context.Context, a *domain.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = domain.AssetID(uuid.NewString())
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = domain.StatusChecking
	}
	if _, ok := m.assets[a.ID]; !ok {
		m.order = append(m.order, a.ID)
	}
	m.assets[a.ID] = *a
	return nil
}

func (m *Store) List(ctx context.Context) ([]domain.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Asset, 0, len(m.assets))
	for _, id := range m.order {
		out = append(out, m.assets[id])
	}
	return out, nil
}

func (m *Store) Get(ctx context.Context, id domain.AssetID) (*domain.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (m *Store) Delete(ctx context.Context, id domain.AssetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assets[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.assets, id)
	delete(m.logs, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Store) SaveCycle(ctx context.Context, assets []domain.Asset, logs []domain.StatusLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range assets {
		if _, ok := m.assets[a.ID]; !ok {
			continue // deleted mid-cycle
		}
		m.assets[a.ID] = a
	}
	for _, l := range logs {
		if _, ok := m.assets[l.AssetID]; !ok {
			continue
		}
		m.logs[l.AssetID] = append(m.logs[l.AssetID], l)
	}
	return nil
}

func (m *Store) LogsSince(ctx context.Context, id domain.AssetID, since time.Time) ([]domain.StatusLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.StatusLog
	for _, l := range m.logs[id] {
		if !l.Timestamp.Before(since) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Store) DeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for id, ls := range m.logs {
		kept := ls[:0]
		for _, l := range ls {
			if l.Timestamp.Before(cutoff) {
				purged++
				continue
			}
			kept = append(kept, l)
		}
		m.logs[id] = kept
	}
	return purged, nil
}

func (m *Store) LoadSettings(ctx context.Context) (domain.Settings, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return domain.DefaultSettings(), false, nil
	}
	return *m.settings, true, nil
}

func (m *Store) SaveSettings(ctx context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := s
	m.settings = &cp
	return nil
}
