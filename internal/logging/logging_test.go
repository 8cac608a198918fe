package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Options{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "task_id", "t1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "shown" || rec["task_id"] != "t1" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewLoggerRejectsUnknownFormat(t *testing.T) {
	if _, err := NewLogger(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSetupWithoutTelemetry(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	tel, err := Setup(context.Background(), Options{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, err := NewMetrics(tel.Meter); err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	slog.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("default logger not installed, output %q", buf.String())
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestSetupWithTelemetryExports(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	tel, err := Setup(context.Background(), Options{
		Telemetry:       true,
		TelemetryWriter: &buf,
		ExportInterval:  time.Hour,
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	m, err := NewMetrics(tel.Meter)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.Moves.Add(context.Background(), 2)
	tel.Logger.Info("task moved", "task_id", "t1")

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "task moved") {
		t.Errorf("log record not exported: %q", out)
	}
	if !strings.Contains(out, "taskboard.moves") {
		t.Errorf("metric not exported: %q", out)
	}
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics()
	m.Moves.Add(context.Background(), 1)
	m.Rejections.Add(context.Background(), 1)
	m.MinutesCredited.Add(context.Background(), 1)
}
