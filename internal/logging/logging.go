// Package logging builds the process logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wishlist-cli/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level       string
	Development bool
	// File, when set, receives all output; otherwise logs go to stderr.
	File string
	// Quiet discards logs unless File is set (used by the gallery, which owns the terminal).
	Quiet bool
}

// FromConfig maps workspace config onto Options; verbose forces debug.
func FromConfig(cfg config.LoggingConfig, verbose bool) Options {
	o := Options{Level: cfg.Level, Development: cfg.Development, File: cfg.File}
	if verbose {
		o.Level = "debug"
	}
	return o
}

func New(o Options) (*zap.Logger, error) {
	if o.Quiet && strings.TrimSpace(o.File) == "" {
		return zap.NewNop(), nil
	}

	var zc zap.Config
	if o.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	lvl := zapcore.InfoLevel
	if s := strings.TrimSpace(o.Level); s != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", o.Level, err)
		}
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)

	if f := strings.TrimSpace(o.File); f != "" {
		if err := os.MkdirAll(filepath.Dir(f), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = []string{f}
		zc.ErrorOutputPaths = []string{f}
	} else {
		zc.OutputPaths = []string{"stderr"}
		zc.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
