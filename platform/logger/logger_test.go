package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.CacheError("set", "Enova-EmsCsv-2023-IsCached", errors.New("connection reset"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "cache_error" {
		t.Fatalf("expected msg cache_error, got %v", entry["msg"])
	}
	if entry["key"] != "Enova-EmsCsv-2023-IsCached" {
		t.Fatalf("unexpected key attribute: %v", entry["key"])
	}
}

func TestDevelopmentLoggerEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)

	log.Debug("debug line")

	if !strings.Contains(buf.String(), "debug line") {
		t.Fatalf("expected debug line in development, got %q", buf.String())
	}
}

func TestWithContextAddsRequestAndTask(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, TaskIDKey, "task-9")
	log.WithContext(ctx).Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) || !strings.Contains(out, `"task_id":"task-9"`) {
		t.Fatalf("expected request and task ids in %q", out)
	}
}

func TestErrorTypeLooksThroughWrapping(t *testing.T) {
	_, cause := strconv.Atoi("x")
	wrapped := fmt.Errorf("row 2: %w", cause)

	if got := ErrorType(wrapped); got != "*strconv.NumError" {
		t.Fatalf("expected *strconv.NumError, got %s", got)
	}
	if got := ErrorType(nil); got != "<nil>" {
		t.Fatalf("expected <nil>, got %s", got)
	}
}

func TestParseFailureNamesExceptionType(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	_, cause := strconv.ParseFloat("12,5", 64)
	log.ParseFailure("unable to read csv from response", fmt.Errorf("row 3: %w", cause), "year", 2024)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["exceptionType"] != "*strconv.NumError" {
		t.Fatalf("unexpected exceptionType %v", entry["exceptionType"])
	}
	if !strings.Contains(entry["exceptionMessage"].(string), "row 3") {
		t.Fatalf("unexpected exceptionMessage %v", entry["exceptionMessage"])
	}
	if entry["year"] != float64(2024) {
		t.Fatalf("expected extra attribute year, got %v", entry["year"])
	}
}

func TestWithContextWithoutValuesReturnsSameLogger(t *testing.T) {
	log := NewWithWriter("production", &bytes.Buffer{})
	if log.WithContext(context.Background()) != log {
		t.Fatalf("expected the same logger when context carries no ids")
	}
}
