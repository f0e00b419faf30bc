package observability

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_DefaultFileFallbackForInteractiveAuto(t *testing.T) {
	stateRoot := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateRoot)

	cfg := &Config{
		Level:          "info",
		Format:         "json",
		StderrMode:     "auto",
		InteractiveTTY: true,
		SessionID:      "session-test",
		CommandPath:    "kzk dashboard",
		Version:        "test",
		Commit:         "abc123",
	}

	logger, cleanup, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("hello from test")

	if cleanup != nil {
		if closeErr := cleanup(); closeErr != nil {
			t.Fatalf("cleanup() error = %v", closeErr)
		}
	}

	logPath := filepath.Join(stateRoot, "kzk", "logs", "kzk.log")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", logPath, err)
	}

	if !strings.Contains(string(data), `"command.path":"kzk dashboard"`) {
		t.Fatalf("log file missing command attribute: %s", data)
	}
}

func TestNewLogger_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "bad level", cfg: Config{Level: "loud", StderrMode: "on"}},
		{name: "bad format", cfg: Config{Format: "xml", StderrMode: "on"}},
		{name: "bad stderr mode", cfg: Config{StderrMode: "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := NewLogger(&tt.cfg); err == nil {
				t.Fatal("NewLogger() error = nil, want error")
			}
		})
	}
}

func TestRedactAttr_MasksSecrets(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{ReplaceAttr: redactAttr}))
	logger.Info("request", slog.String("api_token", "hunter2"), slog.String("region", "activity"))

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Fatalf("secret leaked into log: %s", out)
	}

	if !strings.Contains(out, "region=activity") {
		t.Fatalf("non-sensitive attr missing: %s", out)
	}
}

func TestNewRotatingLog_RollsOverIntoBoundedBackups(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "kzk.log")

	sink, err := newRotatingLog(logPath)
	if err != nil {
		t.Fatalf("newRotatingLog() error = %v", err)
	}
	defer sink.Close()

	if sink.MaxSize != maxLogMegabytes || sink.MaxBackups != maxBackups {
		t.Errorf("sink limits = %dMB/%d backups, want %dMB/%d", sink.MaxSize, sink.MaxBackups, maxLogMegabytes, maxBackups)
	}

	if _, err := sink.Write([]byte("first\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := sink.Rotate(); err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}

	if _, err := sink.Write([]byte("second\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	current, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read current log: %v", err)
	}

	if string(current) != "second\n" {
		t.Errorf("current log = %q, want only the post-rotation write", current)
	}

	backups, err := filepath.Glob(filepath.Join(filepath.Dir(logPath), "kzk-*.log"))
	if err != nil {
		t.Fatal(err)
	}

	if len(backups) != 1 {
		t.Fatalf("backups = %v, want exactly one", backups)
	}

	old, err := os.ReadFile(backups[0])
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}

	if string(old) != "first\n" {
		t.Errorf("backup = %q, want the pre-rotation write", old)
	}
}
