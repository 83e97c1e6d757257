// Package sqlite is the default embedded repository, backed by the
// cgo-free modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"isitdown/internal/domain"
	"isitdown/internal/repo"
)

type Store struct {
	db *sql.DB
}

var _ repo.Store = (*Store)(nil)

// New opens (or creates) the database file and runs migrations.
func New(ctx context.Context, dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite",
		fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS assets (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	url             TEXT NOT NULL,
	group_name      TEXT NOT NULL,
	status          TEXT NOT NULL,
	code            INTEGER NOT NULL DEFAULT 0,
	response_time   REAL NOT NULL DEFAULT 0,
	error_desc      TEXT NOT NULL DEFAULT '',
	show_in_menubar INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL,
	last_update     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS status_logs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_id      TEXT NOT NULL,
	timestamp     INTEGER NOT NULL,
	response_time REAL NOT NULL,
	is_up         INTEGER NOT NULL,
	FOREIGN KEY(asset_id) REFERENCES assets(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_status_logs_asset_ts ON status_logs (asset_id, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_status_logs_ts ON status_logs (timestamp);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
	_, err := s.db.ExecContext(ctx, schema)
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
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (id, name, url, group_name, status, code, response_time, error_desc, show_in_menubar, created_at, last_update)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(a.ID), a.Name, a.URL, a.GroupName, string(a.Status), a.Code, a.ResponseTime,
		a.ErrorDesc, boolToInt(a.ShowInMenubar), fmtTime(a.CreatedAt), fmtTime(a.LastUpdate))
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

const assetCols = `id, name, url, group_name, status, code, response_time, error_desc, show_in_menubar, created_at, last_update`

func (s *Store) List(ctx context.Context) ([]domain.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
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
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assetCols+` FROM assets WHERE id = ?`, string(id))
	a, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Delete(ctx context.Context, id domain.AssetID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	// Cascade explicitly; the FK clause is a safety net.
	if _, err := tx.ExecContext(ctx, `DELETE FROM status_logs WHERE asset_id = ?`, string(id)); err != nil {
		return fmt.Errorf("delete logs: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return tx.Commit()
}

// ---- LogStore ----

func (s *Store) SaveCycle(ctx context.Context, assets []domain.Asset, logs []domain.StatusLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cycle commit: %w", err)
	}
	defer tx.Rollback()

	for _, a := range assets {
		_, err := tx.ExecContext(ctx,
			`UPDATE assets SET status = ?, code = ?, response_time = ?, error_desc = ?, last_update = ?
			  WHERE id = ?`,
			string(a.Status), a.Code, a.ResponseTime, a.ErrorDesc, fmtTime(a.LastUpdate), string(a.ID))
		if err != nil {
			return fmt.Errorf("update asset %s: %w", a.ID, err)
		}
	}
	for _, l := range logs {
		// Skip logs for assets deleted mid-cycle; the FK would reject them.
		_, err := tx.ExecContext(ctx,
			`INSERT INTO status_logs (asset_id, timestamp, response_time, is_up)
			 SELECT ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM assets WHERE id = ?)`,
			string(l.AssetID), l.Timestamp.UnixNano(), l.ResponseTime, boolToInt(l.IsUp), string(l.AssetID))
		if err != nil {
			return fmt.Errorf("insert log for %s: %w", l.AssetID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) LogsSince(ctx context.Context, id domain.AssetID, since time.Time) ([]domain.StatusLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT asset_id, timestamp, response_time, is_up
		   FROM status_logs
		  WHERE asset_id = ? AND timestamp >= ?
		  ORDER BY timestamp`,
		string(id), since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusLog
	for rows.Next() {
		var (
			l   domain.StatusLog
			aid string
			ts  int64
			up  int
		)
		if err := rows.Scan(&aid, &ts, &l.ResponseTime, &up); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		l.AssetID = domain.AssetID(aid)
		l.Timestamp = time.Unix(0, ts).UTC()
		l.IsUp = up != 0
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) DeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM status_logs WHERE timestamp < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("purge logs: %w", err)
	}
	return res.RowsAffected()
}

// ---- SettingsStore ----

const (
	keyCheckInterval = "checkInterval"
	keyNotifications = "notificationsEnabled"
	keyConsolidated  = "consolidatedDisplayMode"
)

func (s *Store) LoadSettings(ctx context.Context) (domain.Settings, bool, error) {
	out := domain.DefaultSettings()
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
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
		case keyCheckInterval:
			if sec, err := strconv.ParseFloat(v, 64); err == nil && sec > 0 {
				out.CheckInterval = domain.ClampInterval(time.Duration(sec * float64(time.Second)))
			}
		case keyNotifications:
			out.NotificationsEnabled = v == "true"
		case keyConsolidated:
			out.ConsolidatedDisplay = v == "true"
		}
	}
	return out, found, rows.Err()
}

func (s *Store) SaveSettings(ctx context.Context, cfg domain.Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings save: %w", err)
	}
	defer tx.Rollback()

	kv := map[string]string{
		keyCheckInterval: strconv.FormatFloat(cfg.CheckInterval.Seconds(), 'f', -1, 64),
		keyNotifications: strconv.FormatBool(cfg.NotificationsEnabled),
		keyConsolidated:  strconv.FormatBool(cfg.ConsolidatedDisplay),
	}
	for k, v := range kv {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v)
		if err != nil {
			return fmt.Errorf("save setting %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(r rowScanner) (domain.Asset, error) {
	var (
		a          domain.Asset
		id, status string
		created    string
		updated    string
		menubar    int
	)
	err := r.Scan(&id, &a.Name, &a.URL, &a.GroupName, &status, &a.Code,
		&a.ResponseTime, &a.ErrorDesc, &menubar, &created, &updated)
	if err != nil {
		return a, err
	}
	a.ID = domain.AssetID(id)
	a.Status = domain.Status(status)
	a.ShowInMenubar = menubar != 0
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if updated != "" {
		a.LastUpdate, _ = time.Parse(time.RFC3339Nano, updated)
	}
	return a, nil
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
