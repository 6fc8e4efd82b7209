package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJSONLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentScheduler, Output: &buf})

	logger.InfoContext(context.Background(), "Sweep complete", "rolled_over", 2)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if line[FieldComponent] != ComponentScheduler {
		t.Errorf("component = %v, want %s", line[FieldComponent], ComponentScheduler)
	}
	if line["rolled_over"] != float64(2) {
		t.Errorf("rolled_over = %v", line["rolled_over"])
	}
}

func TestAccessLogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf})

	handler := Middleware(logger)(AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/budgets/missing", nil)
	req.Header.Set("X-User-ID", "u1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("404 should log at WARN: %s", out)
	}
	for _, want := range []string{`"status_code":404`, `"component":"http"`, `"user_id":"u1"`, `"path":"/budgets/missing"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s: %s", want, out)
		}
	}
}

func TestCronLoggerError(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	NewCronLogger(l).Error(errors.New("boom"), "job panicked", "entry", 1)

	if !strings.Contains(buf.String(), `"error":"boom"`) || !strings.Contains(buf.String(), `"component":"cron"`) {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
