package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// rotatingFile opens a size-rotated log file.
func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// teeLogger logs to stderr and, if path is set, to a rotated file. The
// returned closer releases the file.
func teeLogger(path string, level log.Level) (*log.Logger, io.Closer) {
	if path == "" {
		return newLogger(os.Stderr, level), nopCloser{}
	}
	f := rotatingFile(path)
	return newLogger(io.MultiWriter(os.Stderr, f), level), f
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the attached logger or log.Default.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
