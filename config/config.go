package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// SurfaceConfig defines the control surface to wait for at startup
type SurfaceConfig struct {
	PortName string `json:"portName,omitempty"` // substring match, empty = any DDJ
}

// AudioConfig points at the track assets and master output settings
type AudioConfig struct {
	AssetDir     string  `json:"assetDir"`
	TrackList    string  `json:"trackList"`
	MasterVolume float64 `json:"masterVolume,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	StartTempo int  `json:"startTempo,omitempty"`
	Debug      bool `json:"debug,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Surface SurfaceConfig `json:"surface,omitempty"`
	Audio   AudioConfig   `json:"audio"`
	UI      UIConfig      `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			AssetDir:     "assets",
			TrackList:    "assets/tracks.json",
			MasterVolume: 1.0,
		},
		UI: UIConfig{
			StartTempo: 94,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "quaddeck"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Audio.MasterVolume == 0 {
		cfg.Audio.MasterVolume = 1.0
	}
	if cfg.UI.StartTempo == 0 {
		cfg.UI.StartTempo = 94
	}

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
