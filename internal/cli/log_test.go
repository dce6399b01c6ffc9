package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestTeeLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printshop.log")
	logger, closer := teeLogger(path, log.InfoLevel)
	logger.Info("hello file", "n", 1)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(b), "hello file") {
		t.Errorf("log file = %q, want it to contain the message", b)
	}
}

func TestTeeLoggerNoFile(t *testing.T) {
	_, closer := teeLogger("", log.InfoLevel)
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("finished", "files", 2)
	out := buf.String()
	if !strings.Contains(out, "finished") || !strings.Contains(out, "took=") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("expected log.Default() without an attached logger")
	}
	l := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("expected the attached logger")
	}
}
