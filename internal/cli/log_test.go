package cli

import (
	"bytes"
	"context"
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
		{"InfoAtInfo", log.InfoLevel, func(l *log.Logger) { l.Info("test") }, true},
		{"DebugAtInfo", log.InfoLevel, func(l *log.Logger) { l.Debug("test") }, false},
		{"DebugAtDebug", log.DebugLevel, func(l *log.Logger) { l.Debug("test") }, true},
		{"WarnAtError", log.ErrorLevel, func(l *log.Logger) { l.Warn("test") }, false},
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

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered main")

	out := buf.String()
	if !strings.Contains(out, "Rendered main (") || !strings.Contains(out, "s)") {
		t.Errorf("progress.done() output = %q, want message with duration", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without logger should return log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	got := loggerFromContext(withLogger(context.Background(), custom))
	if got != custom {
		t.Fatal("loggerFromContext() did not return the attached logger")
	}
	got.Info("test")
	if buf.Len() == 0 {
		t.Error("attached logger did not write to its buffer")
	}
}
