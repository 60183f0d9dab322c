// Package logging configures the zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "DOTDAILY_LOG_LEVEL"

// Options select the log destination and level.
type Options struct {
	Level string
	// File receives JSON lines when set. Commands that own the terminal log
	// here so output does not corrupt the screen.
	File string
	// Console is used when File is empty.
	Console io.Writer
}

// Setup installs the global logger and returns it with a closer for the log
// file, if any.
func Setup(opts Options) (zerolog.Logger, func() error, error) {
	level := zerolog.InfoLevel
	raw := opts.Level
	if v := os.Getenv(EnvLevel); v != "" {
		raw = v
	}
	if raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	closer := func() error { return nil }
	var w io.Writer
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Nop(), nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		w = f
		closer = f.Close
	} else {
		out := opts.Console
		if out == nil {
			out = os.Stderr
		}
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	logger := zerolog.New(w).With().Timestamp().Str("app", "dotdaily").Logger()
	log.Logger = logger
	return logger, closer, nil
}
