package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufferLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil))), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newBufferLogger(t)
	ctx := context.Background()

	log.Info(ctx, "hello", "k", "v")
	log.Warn(ctx, "careful")
	log.Error(ctx, "boom")

	var rec map[string]any
	dec := json.NewDecoder(buf)
	for _, want := range []string{"INFO", "WARN", "ERROR"} {
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("decode log record: %v", err)
		}
		if rec["level"] != want {
			t.Fatalf("level: got %v want %v", rec["level"], want)
		}
	}
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newBufferLogger(t)

	child := log.With("component", "bot")
	child.Info(context.Background(), "msg")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["component"] != "bot" {
		t.Fatalf("expected component attr, got %v", rec)
	}
}
