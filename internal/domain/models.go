package domain

import (
	"strings"
	"time"
)

type AssetID string

// Status is the current state of a monitored asset. Assets start in
// StatusChecking and move to Up or Down after their first probe.
type Status string

const (
	StatusChecking Status = "Checking"
	StatusUp       Status = "Up"
	StatusDown     Status = "Down"
)

// Sentinel status codes for probe outcomes that never produced an HTTP
// response. Kept outside the 1xx-5xx range so they cannot collide.
const (
	CodeNoInternet = 997
	CodeInvalidURL = 998
	CodeTransport  = 999
)

// LogRetention is the horizon past which status logs are purged.
const LogRetention = 24 * time.Hour

// MaxNameLen bounds the display label length.
const MaxNameLen = 40

// Asset is a monitored target plus its last observed state.
type Asset struct {
	ID            AssetID   `json:"id"`
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	GroupName     string    `json:"group_name"`
	Status        Status    `json:"status"`
	Code          int       `json:"code"`
	ResponseTime  float64   `json:"response_time"` // seconds, 0 = unknown
	ErrorDesc     string    `json:"error_description,omitempty"`
	ShowInMenubar bool      `json:"show_in_menubar"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdate    time.Time `json:"last_update"`
}

// StatusLog is one historical sample. Logs are owned by their asset and
// cascade-deleted with it.
type StatusLog struct {
	AssetID      AssetID   `json:"-"`
	Timestamp    time.Time `json:"timestamp"`
	ResponseTime float64   `json:"response_time"`
	IsUp         bool      `json:"is_up"`
}

// ProbeResult is the ephemeral outcome of a single probe. Exactly one
// of NoInternet/URLError/success applies; IsDown is the canonical
// up/down signal and is always true when NoInternet or URLError is.
type ProbeResult struct {
	NoInternet   bool
	URLError     bool
	IsDown       bool
	StatusCode   int
	ResponseTime float64 // seconds
	ErrorDesc    string
}

// Up reports whether the probe found the asset reachable and healthy.
func (r ProbeResult) Up() bool {
	return !(r.IsDown || r.URLError || r.NoInternet)
}

// NormalizeURL coerces user input into an absolute URL: surrounding
// whitespace is dropped and a bare host gets an http:// prefix.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return raw
}

// NormalizeGroup maps empty or whitespace-only group labels to the
// shared "Ungrouped" bucket.
func NormalizeGroup(g string) string {
	g = strings.TrimSpace(g)
	if g == "" {
		return "Ungrouped"
	}
	return g
}
