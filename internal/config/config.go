package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/abelbrown/companion/internal/news"
)

// Config is the persistent application configuration
type Config struct {
	// Backend connection
	Backend BackendConfig `json:"backend"`

	// News preferences. Categories overrides the profile's selection when
	// set; RSS extras are merged into the feed alongside the categories.
	News NewsConfig `json:"news"`

	// Refresh cadence for the background coordinator
	RefreshMinutes int `json:"refresh_minutes"`

	// UI preferences
	UI UIConfig `json:"ui"`
}

// BackendConfig holds the backend endpoint and credential
type BackendConfig struct {
	URL   string `json:"url"`
	Token string `json:"token,omitempty"`
}

// NewsConfig holds news feed preferences
type NewsConfig struct {
	Categories string      `json:"categories,omitempty"`
	RSSExtras  []news.Feed `json:"rss_extras,omitempty"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme     string `json:"theme"`
	ItemLimit int    `json:"item_limit"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL: "http://localhost:5000/api/v1",
		},
		RefreshMinutes: 5,
		UI: UIConfig{
			Theme:     "dark",
			ItemLimit: 100,
		},
	}
}

// DataDir returns the application data directory (~/.companion)
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".companion")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from the given path, or returns defaults.
// Environment variables fill in anything the file leaves empty.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		cfg.AutoPopulateFromEnv()
		if os.IsNotExist(err) {
			return cfg, nil
		}
		// Unreadable file: report it, but still hand back a usable config.
		return cfg, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		cfg = DefaultConfig()
	}
	cfg.AutoPopulateFromEnv()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Restrictive permissions for the token
}

// AutoPopulateFromEnv fills in connection settings from the environment
func (c *Config) AutoPopulateFromEnv() {
	if url := os.Getenv("COMPANION_BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	if token := os.Getenv("COMPANION_TOKEN"); token != "" {
		c.Backend.Token = token
	}
}
