package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	query string
	args  []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	return nil, f.err
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	r.Header.Set("X-Platform", "IOS")
	r.Header.Set("X-App-Version", " 1.2.3 ")
	r.Header.Set("X-Session-Id", "s-1")
	r.Header.Set("X-Device-Locale", "en-US")

	env := FromRequest(r)
	assert.Equal(t, Envelope{SessionID: "s-1", Platform: "ios", AppVersion: "1.2.3", DeviceLocale: "en-US"}, env)

	r.Header.Set("X-Platform", "fridge")
	r.Header.Set("Accept-Language", "de")
	env = FromRequest(r)
	assert.Equal(t, "unknown", env.Platform)
	assert.Equal(t, "de", env.DeviceLocale)
}

func TestSourceEventKeyFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.Equal(t, "", SourceEventKeyFromRequest(r))

	r.Header.Set("X-Source-Event-Key", "fallback")
	assert.Equal(t, "fallback", SourceEventKeyFromRequest(r))

	r.Header.Set("Idempotency-Key", "primary")
	assert.Equal(t, "primary", SourceEventKeyFromRequest(r))
}

func TestLog_Insert(t *testing.T) {
	db := &fakeExecer{}
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	env := Envelope{RequestID: "req-1", Platform: "web"}

	err := Log(context.Background(), db, at, env, "task_analyzed", map[string]any{"outcome": "ok", "text_len": 18}, "")
	require.NoError(t, err)
	require.Len(t, db.calls, 1)

	c := db.calls[0]
	assert.NotContains(t, c.query, "ON CONFLICT")
	assert.Equal(t, "task_analyzed", c.args[0])
	assert.Equal(t, at, c.args[1])
	assert.Equal(t, sql.NullString{String: "req-1", Valid: true}, c.args[2])
	assert.Equal(t, sql.NullString{}, c.args[3])

	var props map[string]any
	require.NoError(t, json.Unmarshal([]byte(c.args[len(c.args)-1].(string)), &props))
	assert.Equal(t, "ok", props["outcome"])
}

func TestLog_IdempotentInsert(t *testing.T) {
	db := &fakeExecer{}

	err := Log(context.Background(), db, time.Now(), Envelope{}, "task_suggested", nil, "key-1")
	require.NoError(t, err)
	require.Len(t, db.calls, 1)
	assert.True(t, strings.Contains(db.calls[0].query, "ON CONFLICT (source_event_key) DO NOTHING"))
	assert.Equal(t, "key-1", db.calls[0].args[7])
	assert.Equal(t, "{}", db.calls[0].args[8])
}

func TestLog_SkipsUnnamedEvent(t *testing.T) {
	db := &fakeExecer{}
	require.NoError(t, Log(context.Background(), db, time.Now(), Envelope{}, "", nil, ""))
	assert.Empty(t, db.calls)
}

func TestSQLRecorder_PropagatesError(t *testing.T) {
	db := &fakeExecer{err: errors.New("connection reset")}
	rec := NewSQLRecorder(db)

	err := rec.Record(context.Background(), Envelope{}, "task_analyzed", nil, "")
	assert.Error(t, err)
}

func TestEnsureSchema(t *testing.T) {
	db := &fakeExecer{}
	require.NoError(t, EnsureSchema(context.Background(), db))
	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].query, "CREATE TABLE IF NOT EXISTS analytics_events")
}
