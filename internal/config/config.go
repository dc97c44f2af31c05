package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	// EngineBinaryPath is the search-engine executable. When unset it is
	// resolved relative to the install location of this binary.
	EngineBinaryPath string `yaml:"engine_binary"`
	// EngineRuntimeLibDir is prepended to the engine subprocess's library
	// search path when the directory exists.
	EngineRuntimeLibDir string `yaml:"engine_runtime_lib_dir"`

	DefaultSearchDepth int `yaml:"default_search_depth"`
}

// Load reads the optional YAML file named by CHESSD_CONFIG, then applies
// environment overrides on top of the defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:         ":8000",
		DefaultSearchDepth: 8,
	}

	if path := strings.TrimSpace(os.Getenv("CHESSD_CONFIG")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHESSD_LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSD_ENGINE_PATH")); v != "" {
		cfg.EngineBinaryPath = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSD_ENGINE_LIB_DIR")); v != "" {
		cfg.EngineRuntimeLibDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSD_DEFAULT_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultSearchDepth = n
		}
	}

	if strings.TrimSpace(cfg.EngineBinaryPath) == "" {
		cfg.EngineBinaryPath = defaultEngineBinary()
	}
	return cfg, nil
}

func defaultEngineBinary() string {
	name := "chess_engine"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("engine", name)
	}
	return filepath.Join(filepath.Dir(exe), "engine", name)
}
