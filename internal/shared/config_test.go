package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Sync.BasePath != "/app/music/" {
			t.Errorf("expected base path /app/music/, got %s", config.Sync.BasePath)
		}
		if config.Downloader.Command != "deemix" {
			t.Errorf("expected downloader command deemix, got %s", config.Downloader.Command)
		}
		if config.Search.BaseURL != "https://api.deezer.com" {
			t.Errorf("expected deezer base URL, got %s", config.Search.BaseURL)
		}
		if config.Retry.MaxAttempts != 3 {
			t.Errorf("expected 3 retry attempts, got %d", config.Retry.MaxAttempts)
		}
		if len(config.Playlists) != 1 || config.Playlists[0].Filename != DefaultPlaylistFilename {
			t.Errorf("expected one default playlist, got %+v", config.Playlists)
		}

		if d, err := config.IntervalDuration(); err != nil || d != 24*time.Hour {
			t.Errorf("expected 24h interval, got %v (%v)", d, err)
		}
		if p := config.RetryPolicy(); p.MaxAttempts != 3 || p.Delay != 5*time.Second {
			t.Errorf("unexpected retry policy %+v", p)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[sync]
base_path = "/music"
interval = "6h"

[downloader]
arl = "secret"

[[playlists]]
url = "https://listenbrainz.org/syndication-feed/user/a/recommendations?recommendation_type=weekly-jams"
filename = "Weekly Jams.m3u8"

[[playlists]]
url = "https://listenbrainz.org/syndication-feed/user/a/recommendations?recommendation_type=weekly-exploration"
filename = "Weekly Exploration.m3u8"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Sync.BasePath != "/music" {
			t.Errorf("expected base path /music, got %s", config.Sync.BasePath)
		}
		if config.Downloader.Command != "deemix" {
			t.Errorf("expected default downloader command to survive, got %q", config.Downloader.Command)
		}
		if len(config.Playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(config.Playlists))
		}
		if config.Playlists[1].Filename != "Weekly Exploration.m3u8" {
			t.Errorf("unexpected second playlist %+v", config.Playlists[1])
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig malformed file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[sync\nbase_path ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestConfigApplyEnv(t *testing.T) {
	env := func(values map[string]string) func(string) string {
		return func(k string) string { return values[k] }
	}

	t.Run("overrides globals and first playlist", func(t *testing.T) {
		config := DefaultConfig()
		config.ApplyEnv(env(map[string]string{
			EnvBasePath: "/data/music",
			EnvLogLevel: "debug",
			EnvARL:      "arl-token",
			EnvFeedURL:  "https://example.com/feed",
			EnvFilename: "Jams.m3u8",
		}))

		if config.Sync.BasePath != "/data/music" {
			t.Errorf("expected base path override, got %s", config.Sync.BasePath)
		}
		if config.Sync.LogLevel != "debug" {
			t.Errorf("expected log level override, got %s", config.Sync.LogLevel)
		}
		if config.Downloader.ARL != "arl-token" {
			t.Errorf("expected ARL override, got %s", config.Downloader.ARL)
		}
		if config.Playlists[0].URL != "https://example.com/feed" || config.Playlists[0].Filename != "Jams.m3u8" {
			t.Errorf("unexpected first playlist %+v", config.Playlists[0])
		}
	})

	t.Run("creates a playlist when none is configured", func(t *testing.T) {
		config := DefaultConfig()
		config.Playlists = nil
		config.ApplyEnv(env(map[string]string{EnvFeedURL: "https://example.com/feed"}))

		if len(config.Playlists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(config.Playlists))
		}
		if config.Playlists[0].Filename != DefaultPlaylistFilename {
			t.Errorf("expected default filename, got %s", config.Playlists[0].Filename)
		}
	})

	t.Run("empty environment changes nothing", func(t *testing.T) {
		config := DefaultConfig()
		config.ApplyEnv(env(nil))

		if config.Downloader.ARL != "" {
			t.Errorf("expected empty ARL, got %s", config.Downloader.ARL)
		}
		if config.Playlists[0].URL != "" {
			t.Errorf("expected empty URL, got %s", config.Playlists[0].URL)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.Downloader.ARL = "arl"
		return c
	}

	tc := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing ARL", mutate: func(c *Config) { c.Downloader.ARL = " " }, wantErr: ErrMissingCredentials},
		{name: "bad interval", mutate: func(c *Config) { c.Sync.Interval = "soon" }, wantErr: ErrInvalidConfig},
		{name: "zero interval", mutate: func(c *Config) { c.Sync.Interval = "0s" }, wantErr: ErrInvalidConfig},
		{name: "negative delay", mutate: func(c *Config) { c.Retry.Delay = "-1s" }, wantErr: ErrInvalidConfig},
		{name: "zero attempts", mutate: func(c *Config) { c.Retry.MaxAttempts = 0 }, wantErr: ErrInvalidConfig},
		{name: "no playlists", mutate: func(c *Config) { c.Playlists = nil }, wantErr: ErrInvalidConfig},
		{name: "empty base path", mutate: func(c *Config) { c.Sync.BasePath = "" }, wantErr: ErrInvalidConfig},
		{name: "bad log level", mutate: func(c *Config) { c.Sync.LogLevel = "loud" }, wantErr: ErrInvalidConfig},
		{name: "empty playlist URL is not fatal", mutate: func(c *Config) { c.Playlists[0].URL = "" }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
