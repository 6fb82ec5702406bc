package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables understood by [ApplyEnv].
const (
	EnvFeedURL  = "LISTENBRAINZ_URL"
	EnvFilename = "LISTENBRAINZ_M3U_FILENAME"
	EnvBasePath = "LISTENBRAINZ_BASE_PATH"
	EnvLogLevel = "LOG_LEVEL"
	EnvARL      = "DEEMIX_ARL"
)

// Config represents the application configuration loaded from a TOML file.
//
// A Config is built once at startup and passed explicitly to every component.
type Config struct {
	Sync       SyncConfig       `toml:"sync"`
	Downloader DownloaderConfig `toml:"downloader"`
	Search     SearchConfig     `toml:"search"`
	Retry      RetryConfig      `toml:"retry"`
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Playlists  []PlaylistEntry  `toml:"playlists"`
}

// SyncConfig contains global sync loop settings.
type SyncConfig struct {
	BasePath string `toml:"base_path"`
	Interval string `toml:"interval"`
	LogLevel string `toml:"log_level"`
}

// DownloaderConfig contains deemix invocation settings.
type DownloaderConfig struct {
	Command  string `toml:"command"`
	ARL      string `toml:"arl"`
	ARLPath  string `toml:"arl_path"`
	Bitrate  string `toml:"bitrate"`
	Portable bool   `toml:"portable"`
}

// SearchConfig contains Deezer search API settings.
type SearchConfig struct {
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
	Timeout   string  `toml:"timeout"`
}

// RetryConfig controls the fixed-delay retry policy for network calls.
type RetryConfig struct {
	MaxAttempts int    `toml:"max_attempts"`
	Delay       string `toml:"delay"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains status HTTP server settings.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// PlaylistEntry pairs a recommendation feed with the playlist file it feeds.
type PlaylistEntry struct {
	URL      string `toml:"url"`
	Filename string `toml:"filename"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults of the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	config.Playlists = nil
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays the legacy environment variables on top of c.
//
// LISTENBRAINZ_URL and LISTENBRAINZ_M3U_FILENAME target the first playlist, creating it when the file declares none.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(EnvBasePath); v != "" {
		c.Sync.BasePath = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Sync.LogLevel = v
	}
	if v := getenv(EnvARL); v != "" {
		c.Downloader.ARL = v
	}

	url, name := getenv(EnvFeedURL), getenv(EnvFilename)
	if url == "" && name == "" {
		return
	}
	if len(c.Playlists) == 0 {
		c.Playlists = append(c.Playlists, PlaylistEntry{Filename: DefaultPlaylistFilename})
	}
	if url != "" {
		c.Playlists[0].URL = url
	}
	if name != "" {
		c.Playlists[0].Filename = name
	}
}

// DefaultPlaylistFilename is used when a playlist entry names no file.
const DefaultPlaylistFilename = "@Created for You.m3u8"

// Validate checks the process-level settings.
//
// A missing ARL returns [ErrMissingCredentials]; everything else returns [ErrInvalidConfig].
// Per-playlist URLs are not checked here: an empty URL only fails its own playlist.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Downloader.ARL) == "" {
		return fmt.Errorf("%w: deemix ARL is not set (set %s)", ErrMissingCredentials, EnvARL)
	}
	if c.Sync.BasePath == "" {
		return fmt.Errorf("%w: sync.base_path is empty", ErrInvalidConfig)
	}
	if _, err := c.IntervalDuration(); err != nil {
		return err
	}
	if _, err := c.RetryDelay(); err != nil {
		return err
	}
	if _, err := c.SearchTimeout(); err != nil {
		return err
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Downloader.Command == "" {
		return fmt.Errorf("%w: downloader.command is empty", ErrInvalidConfig)
	}
	if len(c.Playlists) == 0 {
		return fmt.Errorf("%w: no playlists configured", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.Sync.LogLevel); err != nil {
		return err
	}
	return nil
}

// IntervalDuration parses sync.interval.
func (c *Config) IntervalDuration() (time.Duration, error) {
	return parsePositiveDuration("sync.interval", c.Sync.Interval)
}

// RetryDelay parses retry.delay. Zero is allowed.
func (c *Config) RetryDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.Retry.Delay)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: retry.delay %q", ErrInvalidConfig, c.Retry.Delay)
	}
	return d, nil
}

// SearchTimeout parses search.timeout.
func (c *Config) SearchTimeout() (time.Duration, error) {
	return parsePositiveDuration("search.timeout", c.Search.Timeout)
}

// RetryPolicy builds the network retry policy from the config.
func (c *Config) RetryPolicy() RetryPolicy {
	delay, _ := c.RetryDelay()
	return RetryPolicy{MaxAttempts: c.Retry.MaxAttempts, Delay: delay}
}

func parsePositiveDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidConfig, key, v)
	}
	return d, nil
}
