package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriterFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").With(String("comp", "session"))
	log.Info("task created", String("id", "t1"), Int("n", 2), Err(errors.New("boom")), Err(nil))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	for k, want := range map[string]any{"comp": "session", "id": "t1", "n": float64(2), "err": "boom", "message": "task created", "level": "info"} {
		if got[k] != want {
			t.Fatalf("%s = %v, want %v", k, got[k], want)
		}
	}
	if c, _ := got["caller"].(string); !strings.HasPrefix(c, "logging_test.go:") {
		t.Fatalf("caller = %v", got["caller"])
	}
}

func TestLevelFilter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %q", buf.String())
	}
	if log.Enabled(LevelDebug) || !log.Enabled(LevelError) {
		t.Fatal("Enabled disagrees with level")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Level{"": LevelInfo, "DEBUG": LevelDebug, " warning ": LevelWarn, "error": LevelError, "loud": LevelInfo} {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDurationField(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewWriter(&buf, "info").Info("step", Duration("took", 1500*time.Millisecond))
	if !strings.Contains(buf.String(), `"took":"1.5s"`) {
		t.Fatalf("got %q", buf.String())
	}
}

func TestZeroAndNop(t *testing.T) {
	t.Parallel()
	var zero Logger
	if !zero.IsZero() {
		t.Fatal("zero logger not zero")
	}
	zero.Info("dropped")
	if Nop().IsZero() {
		t.Fatal("Nop reported as zero")
	}
}

func TestServiceApplyFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "board.log")
	svc, log := New(Config{Level: "info"})
	defer svc.Close()

	log.Info("before")
	svc.Apply(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}})
	log.Info("after")
	if err := svc.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "before") || !strings.Contains(string(data), "after") {
		t.Fatalf("log file = %q", data)
	}
}
