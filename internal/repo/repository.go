package repo

import (
	"context"
	"errors"
	"time"

	"isitdown/internal/domain"
)

// ErrNotFound is returned when a requested asset does not exist.
var ErrNotFound = errors.New("not found")

// Ports (interfaces) — swap in any DB adapter later.

// AssetStore manages monitored assets. List and Get return snapshots:
// a reader never observes a half-updated asset.
type AssetStore interface {
	Add(ctx context.Context, a *domain.Asset) error
	List(ctx context.Context) ([]domain.Asset, error)
	Get(ctx context.Context, id domain.AssetID) (*domain.Asset, error)
	// Delete removes an asset and cascades its status logs.
	Delete(ctx context.Context, id domain.AssetID) error
}

// LogStore commits check-cycle output and serves history reads.
type LogStore interface {
	// SaveCycle persists the updated assets plus their new status logs
	// as a single logical unit. Assets deleted since the cycle started
	// are skipped silently.
	SaveCycle(ctx context.Context, assets []domain.Asset, logs []domain.StatusLog) error
	LogsSince(ctx context.Context, id domain.AssetID, since time.Time) ([]domain.StatusLog, error)
	// DeleteLogsOlderThan purges logs across all assets and reports how
	// many rows went away. Idempotent.
	DeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SettingsStore persists user preferences as key-value pairs.
// LoadSettings returns the documented defaults plus found=false when
// nothing was ever saved, so callers can apply their own startup
// overrides until the user writes settings.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (domain.Settings, bool, error)
	SaveSettings(ctx context.Context, s domain.Settings) error
}

// Store is the full repository contract the daemon wires up.
type Store interface {
	AssetStore
	LogStore
	SettingsStore
}
