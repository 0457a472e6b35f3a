package lspeasy

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("LSPEASY_LOG_LEVEL", "")
	t.Setenv("LSPEASY_LOG_FORMAT", "")
	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.LogLevel != "info" || env.LogFormat != "auto" {
		t.Errorf("env = %+v", env)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("LSPEASY_LOG_LEVEL", "debug")
	t.Setenv("LSPEASY_LOG_FORMAT", "json")
	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	level, err := env.Level()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("Level() = %v, %v", level, err)
	}
}

func TestEnvLogger(t *testing.T) {
	tests := []struct {
		format   string
		terminal bool
		json     bool
	}{
		{"text", false, false},
		{"json", true, true},
		{"auto", true, false},
		{"auto", false, true},
		{"JSON", true, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger, err := Env{LogLevel: "warn", LogFormat: tt.format}.logger(&buf, tt.terminal)
		if err != nil {
			t.Fatalf("%s: %v", tt.format, err)
		}
		logger.Info("hidden")
		logger.Warn("shown")
		out := buf.String()
		if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
			t.Errorf("%s: level not applied: %q", tt.format, out)
		}
		if got := strings.HasPrefix(out, "{"); got != tt.json {
			t.Errorf("%s terminal=%v: json output = %v, want %v", tt.format, tt.terminal, got, tt.json)
		}
	}
}

func TestEnvLoggerErrors(t *testing.T) {
	if _, err := (Env{LogLevel: "loud", LogFormat: "text"}).logger(&bytes.Buffer{}, false); err == nil {
		t.Error("accepted an unknown level")
	}
	if _, err := (Env{LogLevel: "info", LogFormat: "xml"}).logger(&bytes.Buffer{}, false); err == nil {
		t.Error("accepted an unknown format")
	}
}
