package lspeasy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/mattn/go-isatty"
)

// Env holds the process settings read from the environment.
type Env struct {
	// LogLevel is debug, info, warn or error. ENV: LSPEASY_LOG_LEVEL
	LogLevel string `env:"LSPEASY_LOG_LEVEL,default=info"`
	// LogFormat is text, json or auto. auto picks text on a terminal and
	// JSON otherwise. ENV: LSPEASY_LOG_FORMAT
	LogFormat string `env:"LSPEASY_LOG_FORMAT,default=auto"`
}

// LoadEnv reads Env from the environment. Unset variables take their
// defaults.
func LoadEnv() (Env, error) {
	var env Env
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Env{}, fmt.Errorf("reading environment: %w", err)
	}
	if env.LogLevel == "" {
		env.LogLevel = "info"
	}
	if env.LogFormat == "" {
		env.LogFormat = "auto"
	}
	return env, nil
}

// Level parses LogLevel.
func (e Env) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LSPEASY_LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Logger builds a logger writing to stderr as configured. Use it with
// WithLogger.
func (e Env) Logger() (*slog.Logger, error) {
	return e.logger(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
}

func (e Env) logger(w io.Writer, terminal bool) (*slog.Logger, error) {
	level, err := e.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(e.LogFormat) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "auto", "":
		if terminal {
			return slog.New(slog.NewTextHandler(w, opts)), nil
		}
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("LSPEASY_LOG_FORMAT: unknown format %q", e.LogFormat)
}
