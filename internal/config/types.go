package config

import "time"

type Config struct {
	Board    BoardConfig    `json:"board"`
	Rollover RolloverConfig `json:"rollover"`
	Photo    PhotoConfig    `json:"photo"`
	Render   RenderConfig   `json:"render"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  *StorageConfig `json:"storage,omitempty"`
}

// BoardConfig controls the visible date window.
//
// Defaults (when fields are omitted/zero):
//   - window_days: 30
//   - min_window_days: 7
//   - max_window_days: 365
//   - timezone: local
type BoardConfig struct {
	WindowDays    int    `json:"window_days,omitempty"`
	MinWindowDays int    `json:"min_window_days,omitempty"`
	MaxWindowDays int    `json:"max_window_days,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
	// Demo seeds two sample jobs at startup.
	Demo bool `json:"demo,omitempty"`
}

// RolloverConfig moves "today" forward when the calendar date changes.
//
// Enabled is a pointer so an omitted key means on.
// Schedule accepts a cron expression ("0 0 * * *"), a Go duration ("1h")
// or a daily time ("00:00"), optionally prefixed by cron:, interval: or every:.
type RolloverConfig struct {
	Enabled  *bool  `json:"enabled,omitempty"`
	Schedule string `json:"schedule,omitempty"`
}

type PhotoConfig struct {
	MaxBytes int64 `json:"max_bytes,omitempty"` // default 5 MiB
}

// RenderConfig controls the console table.
//
// Width 0 measures the terminal. Color is a pointer so an omitted key means on.
type RenderConfig struct {
	Color            *bool   `json:"color,omitempty"`
	Width            int     `json:"width,omitempty"`
	ResizeRatePerSec float64 `json:"resize_rate_per_sec,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the audit journal.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./repairboard.journal.jsonl" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

const (
	DefaultWindowDays       = 30
	DefaultMinWindowDays    = 7
	DefaultMaxWindowDays    = 365
	DefaultRolloverSchedule = "0 0 * * *"
	DefaultPhotoMaxBytes    = 5 << 20
	DefaultResizeRatePerSec = 4
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Logging: LoggingConfig{Level: "info", Console: true}}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero fields in place.
func (c *Config) ApplyDefaults() {
	b := &c.Board
	if b.MinWindowDays <= 0 {
		b.MinWindowDays = DefaultMinWindowDays
	}
	if b.MaxWindowDays <= 0 {
		b.MaxWindowDays = DefaultMaxWindowDays
	}
	if b.WindowDays <= 0 {
		b.WindowDays = DefaultWindowDays
	}
	if c.Rollover.Schedule == "" {
		c.Rollover.Schedule = DefaultRolloverSchedule
	}
	if c.Photo.MaxBytes <= 0 {
		c.Photo.MaxBytes = DefaultPhotoMaxBytes
	}
	if c.Render.ResizeRatePerSec <= 0 {
		c.Render.ResizeRatePerSec = DefaultResizeRatePerSec
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) RolloverEnabled() bool { return c.Rollover.Enabled == nil || *c.Rollover.Enabled }

func (c *Config) ColorEnabled() bool { return c.Render.Color == nil || *c.Render.Color }

// Location resolves board.timezone; empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Board.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Board.Timezone)
}

// ClampWindow bounds n to [min_window_days, max_window_days].
func (c *Config) ClampWindow(n int) int {
	return max(c.Board.MinWindowDays, min(n, c.Board.MaxWindowDays))
}
