// Package config loads runtime tunables for the permissions library using
// koanf, layering three sources with increasing precedence: built-in
// defaults, an optional YAML or JSON file, and PERMISSIONS_-prefixed
// environment variables.
//
// Nothing in the library requires a Config; flow.New applies its own
// defaults. The package exists so hosting applications can keep request
// timeouts, journal tuning, and the catalog location out of code:
//
//	cfg, err := config.Load("permissions.yaml")
//	...
//	coordinator, err := flow.New(flow.Config{
//		Provider:       native.NewProvider(),
//		Surface:        surface,
//		RequestTimeout: cfg.RequestTimeout(),
//	})
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/go-drift/permissions/pkg/flow"
	"github.com/go-drift/permissions/pkg/journal"
)

// EnvPrefix selects the environment variables considered during Load.
// PERMISSIONS_FLOW_TIMEOUT=45 sets flow.timeout, PERMISSIONS_LOG_VERBOSE=true
// sets log.verbose, and so on.
const EnvPrefix = "PERMISSIONS_"

// Config holds the runtime tunables consumed when assembling a coordinator.
type Config struct {
	Flow    FlowConfig    `koanf:"flow"`
	Journal JournalConfig `koanf:"journal"`
	Catalog CatalogConfig `koanf:"catalog"`
	Log     LogConfig     `koanf:"log"`
}

// FlowConfig tunes the coordinator.
type FlowConfig struct {
	// TimeoutSeconds bounds each provider request, in seconds.
	TimeoutSeconds int `koanf:"timeout"`
}

// JournalConfig tunes the decision journal.
type JournalConfig struct {
	// Enabled reports whether the host wants a journal at all.
	Enabled bool `koanf:"enabled"`
	// Buffer is the journal's event queue capacity.
	Buffer int `koanf:"buffer"`
	// Drop discards events instead of blocking when the buffer is full.
	Drop bool `koanf:"drop"`
}

// CatalogConfig locates the permission descriptor catalog.
type CatalogConfig struct {
	// Path of the permissions.yaml catalog; empty means no catalog. Existence
	// is not checked here, only when the catalog is loaded.
	Path string `koanf:"path"`
}

// LogConfig tunes the default error handler.
type LogConfig struct {
	// Verbose enables stack traces and full error detail on stderr.
	Verbose bool `koanf:"verbose"`
}

// Load builds a Config from defaults, the given file, and the environment,
// in that order of precedence. An empty path skips the file layer; a
// non-empty path must exist and parse, since it was explicitly requested.
// The file format is chosen by extension: .yaml/.yml or .json.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	setDefaults(k)

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// RequestTimeout returns flow.timeout as a duration, for flow.Config.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Flow.TimeoutSeconds) * time.Second
}

// JournalOptions returns the journal tuning in the journal package's terms,
// for journal.New. Check Journal.Enabled first; the translation itself does
// not care.
func (c *Config) JournalOptions() journal.Config {
	return journal.Config{
		BufferSize: c.Journal.Buffer,
		DropIfFull: c.Journal.Drop,
	}
}

// setDefaults seeds the koanf instance with built-in defaults.
func setDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"flow.timeout":    int(flow.DefaultRequestTimeout / time.Second),
		"journal.enabled": false,
		"journal.buffer":  64,
		"journal.drop":    true,
		"catalog.path":    "",
		"log.verbose":     false,
	}

	for key, value := range defaults {
		_ = k.Set(key, value) // Ignore error for setting defaults
	}
}

// envTransform maps PERMISSIONS_FLOW_TIMEOUT to flow.timeout.
func envTransform(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	key = strings.ReplaceAll(strings.ToLower(key), "_", ".")
	return key, value
}

// parserFor picks a koanf parser from the file extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml, or .json)", filepath.Ext(path))
	}
}

// validate rejects values the rest of the library cannot work with.
func validate(cfg *Config) error {
	if cfg.Flow.TimeoutSeconds <= 0 {
		return fmt.Errorf("flow.timeout must be positive (got %d)", cfg.Flow.TimeoutSeconds)
	}
	if cfg.Journal.Buffer <= 0 {
		return fmt.Errorf("journal.buffer must be positive (got %d)", cfg.Journal.Buffer)
	}
	return nil
}
