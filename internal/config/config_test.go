package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHESSD_CONFIG", "")
	t.Setenv("CHESSD_LISTEN_ADDR", "")
	t.Setenv("CHESSD_ENGINE_PATH", "")
	t.Setenv("CHESSD_DEFAULT_DEPTH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8000" {
		t.Fatalf("listen addr = %s", cfg.ListenAddr)
	}
	if cfg.DefaultSearchDepth != 8 {
		t.Fatalf("default depth = %d", cfg.DefaultSearchDepth)
	}
	if cfg.EngineBinaryPath == "" {
		t.Fatal("engine binary path must resolve to a default")
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chessd.yaml")
	body := "listen_addr: \":9100\"\nengine_binary: /opt/engine/chess_engine\ndefault_search_depth: 12\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHESSD_CONFIG", path)
	t.Setenv("CHESSD_LISTEN_ADDR", ":9200")
	t.Setenv("CHESSD_ENGINE_PATH", "")
	t.Setenv("CHESSD_DEFAULT_DEPTH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9200" {
		t.Fatalf("env must override yaml, got %s", cfg.ListenAddr)
	}
	if cfg.EngineBinaryPath != "/opt/engine/chess_engine" {
		t.Fatalf("engine binary = %s", cfg.EngineBinaryPath)
	}
	if cfg.DefaultSearchDepth != 12 {
		t.Fatalf("depth = %d", cfg.DefaultSearchDepth)
	}
}

func TestLoadBadDepthIgnored(t *testing.T) {
	t.Setenv("CHESSD_CONFIG", "")
	t.Setenv("CHESSD_DEFAULT_DEPTH", "banana")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultSearchDepth != 8 {
		t.Fatalf("bad depth must keep default, got %d", cfg.DefaultSearchDepth)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CHESSD_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unreadable config file")
	}
}
