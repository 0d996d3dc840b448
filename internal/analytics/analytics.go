package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Envelope is what we store with every event.
type Envelope struct {
	RequestID    string
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.TrimSpace(r.Header.Get("X-Platform"))
	if platform == "" {
		platform = "unknown"
	} else {
		platform = strings.ToLower(platform)
		if platform != "ios" && platform != "android" && platform != "web" {
			platform = "unknown"
		}
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

// Client-provided idempotency key (optional)
// If present and duplicates, insert is ignored.
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Execer is the subset of *sql.DB used for inserts.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Recorder stores request-outcome events.
type Recorder interface {
	Record(ctx context.Context, env Envelope, eventName string, props map[string]any, sourceEventKey string) error
}

// SQLRecorder writes events to the analytics_events table.
type SQLRecorder struct {
	DB  Execer
	Now func() time.Time
}

func NewSQLRecorder(db Execer) *SQLRecorder {
	return &SQLRecorder{DB: db, Now: time.Now}
}

func (s *SQLRecorder) Record(ctx context.Context, env Envelope, eventName string, props map[string]any, sourceEventKey string) error {
	return Log(ctx, s.DB, s.Now().UTC(), env, eventName, props, sourceEventKey)
}

// NopRecorder drops every event. Used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Envelope, string, map[string]any, string) error { return nil }

// Schema creates the events table.
const Schema = `
CREATE TABLE IF NOT EXISTS analytics_events (
	id               BIGSERIAL PRIMARY KEY,
	event_name       TEXT        NOT NULL,
	event_time       TIMESTAMPTZ NOT NULL,
	request_id       TEXT,
	session_id       TEXT,
	platform         TEXT        NOT NULL,
	app_version      TEXT        NOT NULL,
	device_locale    TEXT,
	source_event_key TEXT UNIQUE,
	properties       JSONB       NOT NULL DEFAULT '{}'::jsonb
)`

// EnsureSchema creates the events table if it does not exist.
func EnsureSchema(ctx context.Context, db Execer) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

// Log inserts one analytics event.
// Never logs sensitive raw text; caller passes sanitized props.
func Log(ctx context.Context, db Execer, at time.Time, env Envelope, eventName string, props map[string]any, sourceEventKey string) error {
	if eventName == "" {
		return nil
	}

	if props == nil {
		props = map[string]any{}
	}
	b, err := json.Marshal(props)
	if err != nil {
		return err
	}

	// If source_event_key duplicates -> do nothing
	if sourceEventKey != "" {
		_, err = db.ExecContext(ctx, `
			INSERT INTO analytics_events (
				event_name, event_time,
				request_id, session_id,
				platform, app_version, device_locale,
				source_event_key,
				properties
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
			ON CONFLICT (source_event_key) DO NOTHING
		`, eventName, at,
			nullIfEmpty(env.RequestID), nullIfEmpty(env.SessionID),
			env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
			sourceEventKey,
			string(b),
		)
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			request_id, session_id,
			platform, app_version, device_locale,
			properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
	`, eventName, at,
		nullIfEmpty(env.RequestID), nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
		string(b),
	)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
