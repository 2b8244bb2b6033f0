package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultWait            = 5 * time.Second
	defaultPollInterval    = 100 * time.Millisecond
	defaultTerminateSignal = "term"
	defaultKillSignal      = "kill"
	defaultColorMode       = "auto"

	envConfigPath      = "REAP_CONFIG"
	envWait            = "REAP_WAIT"
	envTerminateSignal = "REAP_TERMINATE_SIGNAL"
	envKillSignal      = "REAP_KILL_SIGNAL"
	envPollInterval    = "REAP_POLL_INTERVAL"
)

// Config aggregates run defaults that flags may override. Signal
// fields stay as raw strings here; they are parsed against the signal
// catalog when the run is assembled.
type Config struct {
	Wait            time.Duration
	PollInterval    time.Duration
	TerminateSignal string
	KillSignal      string
	ColorMode       string
}

// DefaultPath returns the conventional config location, honoring the
// REAP_CONFIG override.
func DefaultPath() string {
	if explicit := os.Getenv(envConfigPath); explicit != "" {
		return explicit
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "reap", "config.json")
}

// Load builds a Config from an optional JSON file path plus environment
// overrides. An empty path loads defaults and environment only.
func Load(path string) (Config, error) {
	cfg := Config{
		Wait:            defaultWait,
		PollInterval:    defaultPollInterval,
		TerminateSignal: defaultTerminateSignal,
		KillSignal:      defaultKillSignal,
		ColorMode:       defaultColorMode,
	}

	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		if fileCfg.Wait != nil {
			cfg.Wait = *fileCfg.Wait
		}
		if fileCfg.PollInterval != 0 {
			cfg.PollInterval = fileCfg.PollInterval
		}
		if fileCfg.TerminateSignal != "" {
			cfg.TerminateSignal = fileCfg.TerminateSignal
		}
		if fileCfg.KillSignal != "" {
			cfg.KillSignal = fileCfg.KillSignal
		}
		if fileCfg.ColorMode != "" {
			cfg.ColorMode = fileCfg.ColorMode
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envWait); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur >= 0 {
			cfg.Wait = dur
		} else if err != nil {
			log.Printf("invalid %s value %q: %v", envWait, v, err)
		}
	}

	if v := os.Getenv(envPollInterval); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			cfg.PollInterval = dur
		} else if err != nil {
			log.Printf("invalid %s value %q: %v", envPollInterval, v, err)
		}
	}

	if v := os.Getenv(envTerminateSignal); v != "" {
		cfg.TerminateSignal = v
	}
	if v := os.Getenv(envKillSignal); v != "" {
		cfg.KillSignal = v
	}
}

type fileConfig struct {
	Wait            string `json:"wait"`
	PollInterval    string `json:"poll_interval"`
	TerminateSignal string `json:"terminate_signal"`
	KillSignal      string `json:"kill_signal"`
	ColorMode       string `json:"color"`
}

type parsedFileConfig struct {
	Wait            *time.Duration
	PollInterval    time.Duration
	TerminateSignal string
	KillSignal      string
	ColorMode       string
}

func loadFromFile(path string) (parsedFileConfig, error) {
	var cfg parsedFileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return cfg, err
	}

	if raw.Wait != "" {
		dur, err := time.ParseDuration(raw.Wait)
		if err != nil {
			return cfg, fmt.Errorf("parse wait: %w", err)
		}
		if dur < 0 {
			return cfg, errors.New("wait must not be negative")
		}
		cfg.Wait = &dur
	}
	if raw.PollInterval != "" {
		dur, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return cfg, fmt.Errorf("parse poll_interval: %w", err)
		}
		if dur <= 0 {
			return cfg, errors.New("poll_interval must be > 0")
		}
		cfg.PollInterval = dur
	}

	cfg.TerminateSignal = raw.TerminateSignal
	cfg.KillSignal = raw.KillSignal
	cfg.ColorMode = raw.ColorMode
	return cfg, nil
}
