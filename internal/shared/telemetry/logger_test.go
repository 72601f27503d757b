package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInfoWritesJSONFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "info", Service: "meeting-api", Output: &buf})
	t.Cleanup(func() { Configure(Options{}) })

	Info("analysis complete", map[string]any{"engine": "heuristic", "err": errors.New("boom")})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["message"] != "analysis complete" {
		t.Fatalf("message = %v", entry["message"])
	}
	if entry["level"] != "info" || entry["service"] != "meeting-api" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["engine"] != "heuristic" || entry["err"] != "boom" {
		t.Fatalf("fields not written: %v", entry)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Level: "warn", Output: &buf})
	t.Cleanup(func() { Configure(Options{}) })

	Debug("hidden", nil)
	Info("hidden", nil)
	Warn("shown", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "shown") {
		t.Fatalf("expected only the warn line, got %q", buf.String())
	}
}
