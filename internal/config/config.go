package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "hdhradio"
	configFile = "config.yaml"
)

// Config is the bridge configuration file.
type Config struct {
	// LogLevel controls zap verbosity; empty means silent
	LogLevel string `yaml:"log_level,omitempty"`

	// ListenAddr is the control API bind address
	ListenAddr string `yaml:"listen_addr"`

	Host      Host      `yaml:"host"`
	Discovery Discovery `yaml:"discovery"`
	Decoder   Decoder   `yaml:"decoder"`
}

// Host locates the audio host the bridge feeds.
type Host struct {
	// BaseURL is the host control API (source registration, routes)
	BaseURL string `yaml:"base_url"`

	// IngestURL is the WebSocket endpoint PCM chunks are written to
	IngestURL string `yaml:"ingest_url"`
}

// Discovery carries the device discovery tunables, in seconds.
type Discovery struct {
	MDNSTimeoutSeconds int `yaml:"mdns_timeout_seconds"`
	IntervalSeconds    int `yaml:"interval_seconds"`
	RefreshSeconds     int `yaml:"refresh_seconds"`
}

// Decoder configures the external decode process.
type Decoder struct {
	// FFmpegPath is the decoder binary; empty resolves "ffmpeg" from PATH
	FFmpegPath string `yaml:"ffmpeg_path,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		ListenAddr: "127.0.0.1:8090",
		Host: Host{
			BaseURL:   "http://127.0.0.1:8085",
			IngestURL: "ws://127.0.0.1:8085/api/ingest",
		},
		Discovery: Discovery{
			MDNSTimeoutSeconds: 10,
			IntervalSeconds:    300,
			RefreshSeconds:     3600,
		},
	}
}

// DefaultPath returns the OS-appropriate configuration file path:
//   - Linux: $XDG_CONFIG_HOME/hdhradio/config.yaml or $HOME/.config/hdhradio/config.yaml
//   - macOS: $HOME/.config/hdhradio/config.yaml
//   - Windows: %LOCALAPPDATA%\hdhradio\config.yaml
func DefaultPath() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	default:
		// Linux, macOS, and other Unix-like systems: XDG convention
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return filepath.Join(baseDir, configFile), nil
}

// Load reads the configuration from the given path, or from DefaultPath
// when path is empty. A missing file is not an error: defaults apply.
// Absent fields in an existing file also fall back to defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.fillZeroFields()
	return cfg, nil
}

// fillZeroFields restores defaults for fields a partial file left zero.
func (c *Config) fillZeroFields() {
	def := Default()
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.Host.BaseURL == "" {
		c.Host.BaseURL = def.Host.BaseURL
	}
	if c.Host.IngestURL == "" {
		c.Host.IngestURL = def.Host.IngestURL
	}
	if c.Discovery.MDNSTimeoutSeconds == 0 {
		c.Discovery.MDNSTimeoutSeconds = def.Discovery.MDNSTimeoutSeconds
	}
	if c.Discovery.IntervalSeconds == 0 {
		c.Discovery.IntervalSeconds = def.Discovery.IntervalSeconds
	}
	if c.Discovery.RefreshSeconds == 0 {
		c.Discovery.RefreshSeconds = def.Discovery.RefreshSeconds
	}
}
