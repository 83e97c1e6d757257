// Package postgres backs the repository with a pgx pool, for installs
// that already run a database server.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"isitdown/internal/domain"
	"isitdown/internal/repo"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ repo.Store = (*Store)(nil)

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS assets (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	url             TEXT NOT NULL,
	group_name      TEXT NOT NULL,
	status          TEXT NOT NULL,
	code            INTEGER NOT NULL DEFAULT 0,
	response_time   DOUBLE PRECISION NOT NULL DEFAULT 0,
	error_desc      TEXT NOT NULL DEFAULT '',
	show_in_menubar BOOLEAN NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL,
	last_update     TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS status_logs (
	id            BIGSERIAL PRIMARY KEY,
	asset_id      TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
	ts            TIMESTAMPTZ NOT NULL,
	response_time DOUBLE PRECISION NOT NULL,
	is_up         BOOLEAN NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_status_logs_asset_ts ON status_logs (asset_id, ts DESC);
CREATE INDEX IF NOT EXISTS idx_status_logs_ts ON status_logs (ts);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// ---- AssetStore ----

func (s *Store) Add(ctx context.Context, a *domain.Asset) error {
	if a.ID == "" {
		a.ID = domain.AssetID(uuid.NewString())
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = domain.StatusChecking
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assets (id, name, url, group_name, status, code, response_time, error_desc, show_in_menubar, created_at, last_update)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		string(a.ID), a.Name, a.URL, a.GroupName, string(a.Status), a.Code, a.ResponseTime,
		a.ErrorDesc, a.ShowInMenubar, a.CreatedAt, nullableTime(a.LastUpdate))
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

const assetCols = `id, name, url, group_name, status, code, response_time, error_desc, show_in_menubar, created_at, last_update`

func (s *Store) List(ctx context.Context) ([]domain.Asset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+assetCols+` FROM assets ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var out []domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id domain.AssetID) (*domain.Asset, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+assetCols+` FROM assets WHERE id = $1`, string(id))
	a, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Delete(ctx context.Context, id domain.AssetID) error {
	res, err := s.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ---- LogStore ----

func (s *Store) SaveCycle(ctx context.Context, assets []domain.Asset, logs []domain.StatusLog) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cycle commit: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range assets {
		_, err := tx.Exec(ctx,
			`UPDATE assets SET status = $1, code = $2, response_time = $3, error_desc = $4, last_update = $5
			  WHERE id = $6`,
			string(a.Status), a.Code, a.ResponseTime, a.ErrorDesc, a.LastUpdate, string(a.ID))
		if err != nil {
			return fmt.Errorf("update asset %s: %w", a.ID, err)
		}
	}
	for _, l := range logs {
		_, err := tx.Exec(ctx,
			`INSERT INTO status_logs (asset_id, ts, response_time, is_up)
			 SELECT $1, $2, $3, $4 WHERE EXISTS (SELECT 1 FROM assets WHERE id = $1)`,
			string(l.AssetID), l.Timestamp, l.ResponseTime, l.IsUp)
		if err != nil {
			return fmt.Errorf("insert log for %s: %w", l.AssetID, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) LogsSince(ctx context.Context, id domain.AssetID, since time.Time) ([]domain.StatusLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT asset_id, ts, response_time, is_up
		   FROM status_logs
		  WHERE asset_id = $1 AND ts >= $2
		  ORDER BY ts`,
		string(id), since)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusLog
	for rows.Next() {
		var (
			l   domain.StatusLog
			aid string
		)
		if err := rows.Scan(&aid, &l.Timestamp, &l.ResponseTime, &l.IsUp); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		l.AssetID = domain.AssetID(aid)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) DeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.pool.Exec(ctx, `DELETE FROM status_logs WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge logs: %w", err)
	}
	return res.RowsAffected(), nil
}

// ---- SettingsStore ----

func (s *Store) LoadSettings(ctx context.Context) (domain.Settings, bool, error) {
	out := domain.DefaultSettings()
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return out, false, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	var found bool
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return out, found, fmt.Errorf("scan setting: %w", err)
		}
		found = true
		switch k {
		case "checkInterval":
			if sec, err := strconv.ParseFloat(v, 64); err == nil && sec > 0 {
				out.CheckInterval = domain.ClampInterval(time.Duration(sec * float64(time.Second)))
			}
		case "notificationsEnabled":
			out.NotificationsEnabled = v == "true"
		case "consolidatedDisplayMode":
			out.ConsolidatedDisplay = v == "true"
		}
	}
	return out, found, rows.Err()
}

func (s *Store) SaveSettings(ctx context.Context, cfg domain.Settings) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin settings save: %w", err)
	}
	defer tx.Rollback(ctx)

	kv := map[string]string{
		"checkInterval":           strconv.FormatFloat(cfg.CheckInterval.Seconds(), 'f', -1, 64),
		"notificationsEnabled":    strconv.FormatBool(cfg.NotificationsEnabled),
		"consolidatedDisplayMode": strconv.FormatBool(cfg.ConsolidatedDisplay),
	}
	for k, v := range kv {
		_, err := tx.Exec(ctx,
			`INSERT INTO settings (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, k, v)
		if err != nil {
			return fmt.Errorf("save setting %s: %w", k, err)
		}
	}
	return tx.Commit(ctx)
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(r rowScanner) (domain.Asset, error) {
	var (
		a       domain.Asset
		id      string
		status  string
		updated *time.Time
	)
	err := r.Scan(&id, &a.Name, &a.URL, &a.GroupName, &status, &a.Code,
		&a.ResponseTime, &a.ErrorDesc, &a.ShowInMenubar, &a.CreatedAt, &updated)
	if err != nil {
		return a, err
	}
	a.ID = domain.AssetID(id)
	a.Status = domain.Status(status)
	if updated != nil {
		a.LastUpdate = *updated
	}
	return a, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
