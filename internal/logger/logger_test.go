package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"DEBUG":   DEBUG,
		"debug":   DEBUG,
		" warn ":  WARN,
		"WARNING": WARN,
		"ERROR":   ERROR,
		"INFO":    INFO,
		"":        INFO,
		"verbose": INFO,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelFilterAndFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: WARN, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	l.Info("hidden")
	l.WithFields(F("component", "board")).Warn("persist failed", F("task", "t1"), Err(errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("INFO entry written at WARN level:\n%s", out)
	}
	for _, want := range []string{"WARN", "logger_test.go:", "persist failed", "component=board", "task=t1", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestWithFieldsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: DEBUG, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	base := l.WithFields(F("a", 1))
	_ = base.WithFields(F("b", 2))
	base.Info("x")
	if strings.Contains(buf.String(), "b=2") {
		t.Fatalf("child field leaked into parent: %q", buf.String())
	}
}

func TestFileRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ironmeet.log")
	l, err := New(Config{Level: DEBUG, FilePath: path, MaxSize: 64, MaxBackups: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	for i := 0; i < 10; i++ {
		l.Info("a fairly long line that fills the file quickly")
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected a rotated backup: %v", err)
	}
	if _, err := os.Stat(path + ".3"); err == nil {
		t.Fatal("more backups kept than configured")
	}
}

func TestGlobalNoopBeforeInit(t *testing.T) {
	// Must not panic
	Info("nothing configured")
	if GetConfig().Level != INFO {
		t.Fatal("default config should be INFO")
	}
}
