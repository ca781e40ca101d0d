// Package config loads process-level settings for binaries built on the
// cache: cache shape, logging and the metrics endpoint. Settings come from a
// YAML or JSON file parsed with koanf; unset fields keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/IvanBrykalov/shardmap/cache"
	"github.com/IvanBrykalov/shardmap/policy"
)

// Format is a settings file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	ErrUnsupportedFormat = errors.New("config: unsupported format")
	ErrLoad              = errors.New("config: failed to load")
	ErrParse             = errors.New("config: failed to parse")
	ErrInvalid           = errors.New("config: invalid settings")
)

// Settings is the full settings tree.
type Settings struct {
	Cache   CacheSettings   `koanf:"cache"`
	Log     LogSettings     `koanf:"log"`
	Metrics MetricsSettings `koanf:"metrics"`
}

// CacheSettings mirror cache.Options.
type CacheSettings struct {
	Shards        int    `koanf:"shards"`
	ShardCapacity int    `koanf:"shard_capacity"`
	Policy        string `koanf:"policy"`
}

// LogSettings configure internal/logging.
type LogSettings struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

// MetricsSettings configure the Prometheus endpoint. Empty Addr disables it.
type MetricsSettings struct {
	Addr      string `koanf:"addr"`
	Namespace string `koanf:"namespace"`
}

// Default returns settings usable without any file.
func Default() Settings {
	return Settings{
		Cache: CacheSettings{
			Shards:        cache.AutoShards(),
			ShardCapacity: 4096,
			Policy:        string(policy.LRU),
		},
		Log: LogSettings{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		Metrics: MetricsSettings{
			Addr:      ":8080",
			Namespace: "shardmap",
		},
	}
}

// Load reads a settings file; the format follows the extension
// (.yaml/.yml or .json). An empty path returns Default().
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}
	format, err := detectFormat(path)
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Parse(data, format)
}

// Parse decodes data over Default() and validates the result.
func Parse(data []byte, format Format) (Settings, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return Settings{}, fmt.Errorf("%w: %w", ErrParse, err)
		}
	}

	s := Default()
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the cache section; the cache itself re-validates in New.
func (s Settings) Validate() error {
	if s.Cache.Shards <= 0 {
		return fmt.Errorf("%w: cache.shards must be >= 1, got %d", ErrInvalid, s.Cache.Shards)
	}
	if s.Cache.ShardCapacity <= 0 {
		return fmt.Errorf("%w: cache.shard_capacity must be >= 1, got %d", ErrInvalid, s.Cache.ShardCapacity)
	}
	if _, err := policy.ParseKind(s.Cache.Policy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// CacheOptions converts the cache section into cache.Options. Callers fill
// in Metrics, Logger and the other runtime hooks.
func CacheOptions[K comparable, V any](s CacheSettings) (cache.Options[K, V], error) {
	kind, err := policy.ParseKind(s.Policy)
	if err != nil {
		return cache.Options[K, V]{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return cache.Options[K, V]{
		Shards:        s.Shards,
		ShardCapacity: s.ShardCapacity,
		Policy:        kind,
	}, nil
}

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}
