// Package config loads the topograph configuration file.
//
// The file is TOML and every key is optional:
//
//	[layout]
//	node_width = 285
//	node_height = 260
//	strict_single_root = false
//
//	[source]
//	kind = "redis"              # file | redis | cache-dir
//	path = "topology.json"      # file: snapshot document; cache-dir: directory
//	redis_addr = "localhost:6379"
//	redis_password = ""
//	redis_db = 0
//	key_prefix = ""
//	refresh_interval = "30s"
//
//	[server]
//	addr = ":8080"
//
// Without --config the file is looked up at
// $XDG_CONFIG_HOME/topograph/config.toml (or ~/.config/topograph/config.toml)
// and silently skipped when absent.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/topograph/pkg/errors"
	"github.com/matzehuels/topograph/pkg/topology/layout"
)

// AppName names the configuration and cache directories.
const AppName = "topograph"

// Source kinds.
const (
	SourceFile     = "file"
	SourceRedis    = "redis"
	SourceCacheDir = "cache-dir"
)

// Config is the decoded configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Source SourceConfig `toml:"source"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig configures the layout builder.
type LayoutConfig struct {
	NodeWidth        float64 `toml:"node_width"`
	NodeHeight       float64 `toml:"node_height"`
	StrictSingleRoot bool    `toml:"strict_single_root"`
}

// Options converts the section to layout options.
func (c LayoutConfig) Options() []layout.Option {
	opts := []layout.Option{layout.WithNodeSize(c.NodeWidth, c.NodeHeight)}
	if c.StrictSingleRoot {
		opts = append(opts, layout.WithStrictSingleRoot())
	}
	return opts
}

// SourceConfig selects where snapshots come from.
type SourceConfig struct {
	Kind            string   `toml:"kind"`
	Path            string   `toml:"path"`
	RedisAddr       string   `toml:"redis_addr"`
	RedisPassword   string   `toml:"redis_password"`
	RedisDB         int      `toml:"redis_db"`
	KeyPrefix       string   `toml:"key_prefix"`
	RefreshInterval Duration `toml:"refresh_interval"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration decoded from strings such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			NodeWidth:  layout.DefaultNodeWidth,
			NodeHeight: layout.DefaultNodeHeight,
		},
		Source: SourceConfig{
			Kind:            SourceFile,
			Path:            "topology.json",
			RedisAddr:       "localhost:6379",
			RefreshInterval: Duration{30 * time.Second},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads path, or the default location when path is empty. A missing
// default file yields Default(); a missing explicit file is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// Parse decodes configuration from TOML text.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// applyDefaults fills zero values left by explicit empty settings.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Layout.NodeWidth <= 0 {
		c.Layout.NodeWidth = d.Layout.NodeWidth
	}
	if c.Layout.NodeHeight <= 0 {
		c.Layout.NodeHeight = d.Layout.NodeHeight
	}
	if c.Source.Kind == "" {
		c.Source.Kind = d.Source.Kind
	}
	if c.Source.RefreshInterval.Duration <= 0 {
		c.Source.RefreshInterval = d.Source.RefreshInterval
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
}

// Validate checks values that decoding cannot.
func (c Config) Validate() error {
	switch c.Source.Kind {
	case SourceFile, SourceCacheDir:
		if c.Source.Path == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.path is required for kind %q", c.Source.Kind)
		}
	case SourceRedis:
		if c.Source.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.redis_addr is required for kind %q", c.Source.Kind)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown source.kind %q (want file, redis or cache-dir)", c.Source.Kind)
	}
	if c.Source.KeyPrefix != "" {
		if err := errors.ValidateCacheKey(c.Source.KeyPrefix); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "source.key_prefix")
		}
	}
	if err := errors.ValidateListenAddr(c.Server.Addr); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server.addr")
	}
	return nil
}

// DefaultPath returns the XDG location of the configuration file.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the XDG cache directory (~/.cache/topograph).
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
