package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize text logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	err = Init(WithFormat(FormatJSON))
	if err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger = Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

// Basic logging test (slog-backed; no Sugar)
func TestLoggerBasic(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil")
	}

	ctx := context.Background()
	logger.Info(ctx, "test message", String("k", "v"))
}

func TestLoggerNamed(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	ctx := context.Background()
	namedLogger.Info(ctx, "test message")
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("grading").Info(context.Background(), "answer graded",
		String("session_id", "s-1"),
		Bool("fallback", true),
		Duration("took", 1500*time.Millisecond),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	group, ok := rec["grading"].(map[string]any)
	if !ok {
		t.Fatalf("missing named group in %v", rec)
	}
	if group["session_id"] != "s-1" || group["fallback"] != true {
		t.Errorf("unexpected fields: %v", group)
	}
	if _, ok := group["took"]; !ok {
		t.Errorf("duration field missing: %v", group)
	}
}

func TestLoggerUnknownFormat(t *testing.T) {
	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if err := Init(); err != nil {
		t.Fatalf("failed to restore logger: %v", err)
	}
}

func TestSetLevelString(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("WARN"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	defer SetLevel(0)

	ctx := context.Background()
	Get().Info(ctx, "hidden")
	Get().Warn(ctx, "shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("level filter not applied: %q", buf.String())
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoggerSourceIsCallSite(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	Get().Warn(context.Background(), "where")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	src, _ := rec["source"].(string)
	if !strings.HasPrefix(src, "logger_test.go:") {
		t.Errorf("source should name this file, got %q", src)
	}
}

func TestLoggerBelowLevelWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = Init() }()

	Get().Debug(context.Background(), "quiet")
	if buf.Len() != 0 {
		t.Errorf("debug record written at info level: %q", buf.String())
	}
}
