package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ConfigPath returns the configuration file path: $NOFLOOD_CONFIG or
// ~/.noflood/config.yaml.
func ConfigPath() string {
	if explicit := strings.TrimSpace(os.Getenv("NOFLOOD_CONFIG")); explicit != "" {
		return expandHome(explicit)
	}
	return filepath.Join(DataDir(), "config.yaml")
}

// DataDir returns the noflood data directory: ~/.noflood.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".noflood"
	}
	return filepath.Join(home, ".noflood")
}

// CronStatePath is where the scheduler records job runs.
func CronStatePath() string {
	return filepath.Join(DataDir(), "cron", "jobs.json")
}

// Load reads and parses the config file at path, then applies environment
// overrides. If path is empty, ConfigPath() is used.
// On parse failure it prints a warning and continues from DefaultConfig().
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Printf("Warning: failed to parse config %s: %v\n", path, err)
			fmt.Println("Using default configuration.")
			cfg = DefaultConfig()
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays NOFLOOD_* environment variables section by section.
// Variables that are not set leave the file values untouched.
func applyEnv(cfg *Config) error {
	sections := []struct {
		prefix string
		spec   any
	}{
		{"NOFLOOD_PROJECT", &cfg.Project},
		{"NOFLOOD", &cfg.Noflood},
		{"NOFLOOD_TELEGRAM", &cfg.Channels.Telegram},
		{"NOFLOOD_SLACK", &cfg.Channels.Slack},
		{"NOFLOOD_EXCHANGE", &cfg.Exchange},
		{"NOFLOOD_STORE", &cfg.Store},
		{"NOFLOOD_CRON", &cfg.Cron},
		{"NOFLOOD_WORKER", &cfg.Worker},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.spec); err != nil {
			return fmt.Errorf("env %s: %w", s.prefix, err)
		}
	}
	return nil
}

// Save writes cfg to path as YAML.
// If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
