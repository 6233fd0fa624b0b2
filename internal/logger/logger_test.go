package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fileEntries decodes the JSON lines of a log file.
func fileEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var e map[string]any
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("line %q is not JSON: %v", line, err)
		}
		out = append(out, e)
	}
	return out
}

func TestFileRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assetprep.log")

	l, err := New("info", nil, FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	detail := strings.Repeat("d", 300)
	export := l.Named("export")
	for i := 0; i < 5000; i++ {
		export.Info("object exported", zap.Int("n", i), zap.String("detail", detail))
	}
	_ = l.Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	backups := 0
	for _, e := range entries {
		if e.Name() != "assetprep.log" && strings.HasPrefix(e.Name(), "assetprep-") {
			backups++
		}
	}
	if backups == 0 {
		t.Errorf("expected a rotated backup next to %s, found %d files", path, len(entries))
	}

	last := fileEntries(t, path)
	if len(last) == 0 {
		t.Fatal("current log file is empty")
	}
	e := last[len(last)-1]
	if e["logger"] != "export" || e["msg"] != "object exported" {
		t.Errorf("unexpected last entry %v", e)
	}
	if e["n"] != float64(4999) {
		t.Errorf("expected the newest entry last, got n=%v", e["n"])
	}
}

func TestFileLevels(t *testing.T) {
	prev := Log
	defer func() {
		Log = prev
		Sugar = prev.Sugar()
	}()

	tests := []struct {
		level string
		want  []string
	}{
		{"error", []string{"ERROR"}},
		{"warn", []string{"WARN", "ERROR"}},
		{"", []string{"INFO", "WARN", "ERROR"}},
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
	}

	for _, tt := range tests {
		name := tt.level
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "levels.log")
			if err := Init(tt.level, FileConfig{Path: path, MaxSizeMB: 10}, false); err != nil {
				t.Fatalf("Init: %v", err)
			}

			Debug("analysis started")
			Info("remedies applied", zap.Int("count", 3))
			Warn("some remedies failed")
			Error("command failed", zap.String("command", "export"))
			Sync()

			var got []string
			for _, e := range fileEntries(t, path) {
				got = append(got, e["level"].(string))
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("levels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSugarFollowsInit(t *testing.T) {
	prev := Log
	defer func() {
		Log = prev
		Sugar = prev.Sugar()
	}()

	path := filepath.Join(t.TempDir(), "sugar.log")
	if err := Init("info", FileConfig{Path: path, MaxSizeMB: 10}, false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Sugar.Infof("%s changed, re-analyzing", "level.yaml")
	Sync()

	entries := fileEntries(t, path)
	if len(entries) != 1 || entries[0]["msg"] != "level.yaml changed, re-analyzing" {
		t.Errorf("unexpected entries %v", entries)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := Init("verbose", FileConfig{}, false); err == nil {
		t.Error("expected Init to reject unknown level")
	}
}

func TestNewWithoutOutputs(t *testing.T) {
	l, err := New("info", nil, FileConfig{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without outputs should discard everything")
	}
}

func TestNamed(t *testing.T) {
	prev := Log
	defer func() {
		Log = prev
		Sugar = prev.Sugar()
	}()

	core, logs := observer.New(zapcore.DebugLevel)
	Log = zap.New(core)

	Named("workflow").Info("stage changed", zap.String("to", "Preparation"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "workflow" {
		t.Errorf("expected logger name workflow, got %q", entries[0].LoggerName)
	}
	if entries[0].ContextMap()["to"] != "Preparation" {
		t.Errorf("expected field to=Preparation, got %v", entries[0].ContextMap())
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/test.log")

	if cfg.Path != "/tmp/test.log" {
		t.Errorf("expected path /tmp/test.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 {
		t.Errorf("expected MaxSizeMB 50, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 7 {
		t.Errorf("expected MaxAgeDays 7, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
