package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Output      OutputConfig      `toml:"output"`
	MusicBrainz MusicBrainzConfig `toml:"musicbrainz"`
	Matching    MatchingConfig    `toml:"matching"`
	Filter      FilterConfig      `toml:"filter"`
	Albums      AlbumsConfig      `toml:"albums"`
	Cache       CacheConfig       `toml:"cache"`
}

// OutputConfig contains the target paths for each pipeline stage.
type OutputConfig struct {
	Path       string `toml:"path"`
	SortedPath string `toml:"sorted_path"`
	AlbumsPath string `toml:"albums_path"`
}

// MusicBrainzConfig contains the metadata service endpoint and client limits.
type MusicBrainzConfig struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MinIntervalMS  int    `toml:"min_interval_ms"`
	MaxRetries     int    `toml:"max_retries"`
}

// Timeout returns the per-call timeout as a [time.Duration].
func (m MusicBrainzConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// MinInterval returns the minimum inter-call interval as a [time.Duration].
func (m MusicBrainzConfig) MinInterval() time.Duration {
	return time.Duration(m.MinIntervalMS) * time.Millisecond
}

// MatchingConfig contains match acceptance settings.
type MatchingConfig struct {
	AcceptThreshold float64 `toml:"accept_threshold"`
	BareQuery       bool    `toml:"bare_query"`
}

// FilterConfig contains language filter settings.
type FilterConfig struct {
	Enabled        bool    `toml:"enabled"`
	LatinThreshold float64 `toml:"latin_threshold"`
}

// AlbumsConfig contains settings for the studio album pass.
type AlbumsConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// CacheConfig contains lookup cache database settings.
type CacheConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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
