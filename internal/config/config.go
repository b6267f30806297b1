package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TEXTDESK_"

// Config holds all textdesk settings.
type Config struct {
	Log       LogConfig       `toml:"log"`
	History   HistoryConfig   `toml:"history"`
	Highlight HighlightConfig `toml:"highlight"`
	Store     StoreConfig     `toml:"store"`
	Autosave  AutosaveConfig  `toml:"autosave"`
	Dictation DictationConfig `toml:"dictation"`
	Plugins   PluginsConfig   `toml:"plugins"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// HistoryConfig configures undo/redo.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// HighlightConfig configures search highlighting.
type HighlightConfig struct {
	// DefaultColor is used for terms without an explicit color.
	DefaultColor string `toml:"default_color"`
}

// StoreConfig selects where the session text is persisted.
type StoreConfig struct {
	Backend   string `toml:"backend"`
	Path      string `toml:"path"`
	RedisAddr string `toml:"redis_addr"`
	Key       string `toml:"key"`
}

// AutosaveConfig configures background saving.
type AutosaveConfig struct {
	Debounce Duration `toml:"debounce"`
}

// DictationConfig configures the websocket dictation endpoint.
// An empty Listen address disables the server.
type DictationConfig struct {
	Listen string `toml:"listen"`
	Path   string `toml:"path"`
}

// PluginsConfig locates Lua transformation scripts.
type PluginsConfig struct {
	Dir string `toml:"dir"`
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "info"},
		History:   HistoryConfig{MaxEntries: 100},
		Highlight: HighlightConfig{DefaultColor: "yellow"},
		Store: StoreConfig{
			Backend:   BackendFile,
			Path:      "textdesk-autosave.json",
			RedisAddr: "localhost:6379",
			Key:       "advanced_text_autosave",
		},
		Autosave:  AutosaveConfig{Debounce: Duration(500 * time.Millisecond)},
		Dictation: DictationConfig{Listen: "127.0.0.1:8765", Path: "/dictation"},
	}
}

// Load reads path on top of the defaults. A missing file yields the
// defaults; environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// File doesn't exist, not an error
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := cfg.decode(path, data); err != nil {
				return nil, err
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data on top of the defaults without consulting the
// environment.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(source, data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(source string, data []byte) error {
	if err := toml.Unmarshal(data, c); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

// ApplyEnv overrides settings from TEXTDESK_* variables looked up with
// lookup (normally os.LookupEnv).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"LOG_LEVEL":        &c.Log.Level,
		"HIGHLIGHT_COLOR":  &c.Highlight.DefaultColor,
		"STORE_BACKEND":    &c.Store.Backend,
		"STORE_PATH":       &c.Store.Path,
		"STORE_REDIS_ADDR": &c.Store.RedisAddr,
		"STORE_KEY":        &c.Store.Key,
		"DICTATION_LISTEN": &c.Dictation.Listen,
		"PLUGINS_DIR":      &c.Plugins.Dir,
	}
	for name, dst := range str {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "HISTORY_MAX_ENTRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Path: "history.max_entries", Message: "not an integer", Value: v}
		}
		c.History.MaxEntries = n
	}
	if v, ok := lookup(EnvPrefix + "AUTOSAVE_DEBOUNCE"); ok {
		if err := c.Autosave.Debounce.UnmarshalText([]byte(v)); err != nil {
			return &ValidationError{Path: "autosave.debounce", Message: err.Error(), Value: v}
		}
	}
	return nil
}

// Validate checks settings that cannot be corrected silently.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log.level", Message: "must be debug, info, warn or error", Value: c.Log.Level}
	}
	if c.History.MaxEntries < 1 {
		return &ValidationError{Path: "history.max_entries", Message: "must be at least 1", Value: c.History.MaxEntries}
	}
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Path == "" {
			return &ValidationError{Path: "store.path", Message: "required for the file backend", Value: c.Store.Path}
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return &ValidationError{Path: "store.redis_addr", Message: "required for the redis backend", Value: c.Store.RedisAddr}
		}
	case BackendNone:
	default:
		return &ValidationError{Path: "store.backend", Message: "must be file, redis or none", Value: c.Store.Backend}
	}
	if c.Autosave.Debounce < 0 {
		return &ValidationError{Path: "autosave.debounce", Message: "must not be negative", Value: c.Autosave.Debounce.Std()}
	}
	if c.Dictation.Path == "" || !strings.HasPrefix(c.Dictation.Path, "/") {
		return &ValidationError{Path: "dictation.path", Message: "must start with /", Value: c.Dictation.Path}
	}
	return nil
}
