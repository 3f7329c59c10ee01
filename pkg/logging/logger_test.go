package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, InfoLevel, FormatJSON)

	logger.Info("algorithm finished", Algorithm("pagerank"), Count(42))

	var entry struct {
		Level   string         `json:"level"`
		Message string         `json:"msg"`
		Fields  map[string]any `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log entry: %v", err)
	}

	if entry.Level != "INFO" {
		t.Errorf("Expected level INFO, got %s", entry.Level)
	}
	if entry.Message != "algorithm finished" {
		t.Errorf("Unexpected message: %s", entry.Message)
	}
	if entry.Fields["algorithm"] != "pagerank" {
		t.Errorf("Expected algorithm field, got %v", entry.Fields["algorithm"])
	}
	if entry.Fields["count"] != float64(42) {
		t.Errorf("Expected count 42, got %v", entry.Fields["count"])
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, WarnLevel, FormatJSON)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "kept") {
		t.Errorf("Wrong line survived filtering: %s", lines[0])
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, InfoLevel, FormatText)

	logger.Info("run complete", RunID("abc"), Int("nodes", 7))

	line := buf.String()
	if !strings.Contains(line, "run complete") {
		t.Errorf("Missing message in %q", line)
	}
	if !strings.Contains(line, "run_id=abc") {
		t.Errorf("Missing run_id field in %q", line)
	}
	if !strings.Contains(line, "nodes=7") {
		t.Errorf("Missing nodes field in %q", line)
	}
}

func TestWith_PresetsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, InfoLevel, FormatJSON).With(Component("writer"))

	logger.Info("batch submitted")

	if !strings.Contains(buf.String(), `"component":"writer"`) {
		t.Errorf("Preset field missing: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"Warning": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
