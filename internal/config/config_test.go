package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def := Default()
	if cfg.ListenAddr != def.ListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, def.ListenAddr)
	}
	if cfg.Host.BaseURL != def.Host.BaseURL {
		t.Errorf("Host.BaseURL = %q, want %q", cfg.Host.BaseURL, def.Host.BaseURL)
	}
	if cfg.Discovery.IntervalSeconds != 300 {
		t.Errorf("IntervalSeconds = %d, want 300", cfg.Discovery.IntervalSeconds)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
host:
  base_url: http://10.0.0.9:9000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Host.BaseURL != "http://10.0.0.9:9000" {
		t.Errorf("Host.BaseURL = %q", cfg.Host.BaseURL)
	}

	// Fields the file omitted fall back to defaults
	def := Default()
	if cfg.Host.IngestURL != def.Host.IngestURL {
		t.Errorf("Host.IngestURL = %q, want default %q", cfg.Host.IngestURL, def.Host.IngestURL)
	}
	if cfg.ListenAddr != def.ListenAddr {
		t.Errorf("ListenAddr = %q, want default %q", cfg.ListenAddr, def.ListenAddr)
	}
	if cfg.Discovery.RefreshSeconds != 3600 {
		t.Errorf("RefreshSeconds = %d, want 3600", cfg.Discovery.RefreshSeconds)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [not, a, string"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load of malformed file succeeded")
	}
}

func TestConfigRoundtrip(t *testing.T) {
	original := Default()
	original.LogLevel = "info"
	original.Decoder.FFmpegPath = "/usr/local/bin/ffmpeg"

	data, err := yaml.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("roundtrip mismatch:\ngot  %+v\nwant %+v", loaded, original)
	}
}

func TestDefaultPathRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath failed: %v", err)
	}
	want := filepath.Join("/tmp/xdg-test", "hdhradio", "config.yaml")
	if path != want {
		t.Errorf("DefaultPath = %q, want %q", path, want)
	}
}
