package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// tracedbConfig is the optional project-level configuration loaded from
// tracedb.toml: a [package] table plus one table per domain concern.
type tracedbConfig struct {
	Package packageConfig `toml:"package"`
	Ingest  ingestConfig  `toml:"ingest"`
	Metrics metricsConfig `toml:"metrics"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type ingestConfig struct {
	RebuildWindow int `toml:"rebuild_window"`
}

type metricsConfig struct {
	Addr string `toml:"addr"`
}

func defaultConfig() tracedbConfig {
	return tracedbConfig{
		Ingest:  ingestConfig{RebuildWindow: 0},
		Metrics: metricsConfig{Addr: ":9090"},
	}
}

// findTracedbToml walks up from startDir looking for tracedb.toml.
func findTracedbToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "tracedb.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig returns the config found by walking up from the current
// directory, falling back to defaults when no tracedb.toml exists.
func loadConfig() (tracedbConfig, error) {
	cfg := defaultConfig()
	path, ok, err := findTracedbToml(".")
	if err != nil || !ok {
		return cfg, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return tracedbConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg, nil
}
