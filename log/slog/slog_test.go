//go:build go1.21

package slog

import (
	"bytes"
	"encoding/json"
	"errors"
	stdslog "log/slog"
	"testing"

	"github.com/unkn0wn-root/railcache"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug})))

	l.Debug("client error translated", railcache.Fields{"op": "add", "key": "k", "err": errors.New("boom")})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["level"] != "DEBUG" || rec["msg"] != "client error translated" {
		t.Fatalf("record=%v", rec)
	}
	if rec["op"] != "add" || rec["key"] != "k" || rec["err"] != "boom" {
		t.Fatalf("record=%v", rec)
	}
}

func TestSlogLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(stdslog.New(stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelWarn})))
	l.Debug("hidden", railcache.Fields{"k": 1})
	l.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("unexpected output %q", buf.String())
	}
	l.Warn("shown", nil)
	if buf.Len() == 0 {
		t.Fatalf("warn was filtered")
	}
}
