// Package config defines the configuration schema for noflood.
//
// The file lives at ~/.noflood/config.yaml; every section can be overridden
// from the environment (NOFLOOD_<SECTION>_<FIELD>).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/config/channel"
)

// ProjectConfig identifies this bot towards other services on the exchange.
type ProjectConfig struct {
	Name    string `yaml:"name"`
	Link    string `yaml:"link"`
	Sender  string `yaml:"sender"` // exchange name of this service
	Version string `yaml:"version"`
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Name:    "SCP-079-NOFLOOD",
		Link:    "https://scp-079.org/noflood/",
		Sender:  "NOFLOOD",
		Version: "0.1.0",
	}
}

// ReportTTLs are the auto-delete delays for messages posted into groups.
type ReportTTLs struct {
	Show    time.Duration `yaml:"show"`
	Success time.Duration `yaml:"success"`
	Failure time.Duration `yaml:"failure"`
	Reply   time.Duration `yaml:"reply"`
}

// NofloodConfig parameterises the configuration command handlers.
type NofloodConfig struct {
	Prefixes []string `yaml:"prefixes"`
	// LockTTL is how long a group's configuration stays busy after a lock.
	LockTTL time.Duration `yaml:"lockTTL" envconfig:"LOCK_TTL"`
	// Authority is the exchange name of the external configuration service.
	Authority string `yaml:"authority"`
	// BackupReceiver gets periodic snapshots of the config table.
	BackupReceiver string `yaml:"backupReceiver" split_words:"true"`
	// DirectEditLocks makes an accepted direct edit take the lock as well.
	DirectEditLocks bool `yaml:"directEditLocks" split_words:"true"`
	// ReportLockedSession reports assisted requests refused by the lock.
	ReportLockedSession bool `yaml:"reportLockedSession" split_words:"true"`
	// TestGroups only answer /version and never take config commands.
	TestGroups []int64 `yaml:"testGroups" split_words:"true"`
	// Debug is the routing key of the operator channel, e.g. "telegram:-100123".
	Debug        string        `yaml:"debug"`
	CleanupDelay time.Duration `yaml:"cleanupDelay" split_words:"true"`
	ReportTTL    ReportTTLs    `yaml:"reportTTL" ignored:"true"`
}

func defaultNofloodConfig() NofloodConfig {
	return NofloodConfig{
		Prefixes:            []string{"/", "!"},
		LockTTL:             310 * time.Second,
		Authority:           "CONFIG",
		BackupReceiver:      "BACKUP",
		DirectEditLocks:     true,
		ReportLockedSession: false,
		TestGroups:          []int64{},
		CleanupDelay:        3 * time.Second,
		ReportTTL: ReportTTLs{
			Show:    30 * time.Second,
			Success: 10 * time.Second,
			Failure: 5 * time.Second,
			Reply:   180 * time.Second,
		},
	}
}

// IsTestGroup reports whether gid is one of the configured test groups.
func (n NofloodConfig) IsTestGroup(gid int64) bool {
	for _, id := range n.TestGroups {
		if id == gid {
			return true
		}
	}
	return false
}

// ExchangeConfig configures the Kafka data-sharing channel.
type ExchangeConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers"`
	Topic         string   `yaml:"topic"`
	ConsumerGroup string   `yaml:"consumerGroup" split_words:"true"`
}

func defaultExchangeConfig() ExchangeConfig {
	return ExchangeConfig{
		Brokers:       []string{"localhost:9092"},
		Topic:         "scp079.exchange",
		ConsumerGroup: "noflood",
	}
}

// StoreConfig locates the sqlite database holding the group config table.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// StorePath returns the expanded absolute store path.
func (s StoreConfig) StorePath() string {
	if s.Path == "" {
		return filepath.Join(DataDir(), "noflood.db")
	}
	return expandHome(s.Path)
}

// CronConfig holds periodic job schedules; an empty expression disables the job.
type CronConfig struct {
	Backup string `yaml:"backup"`
}

func defaultCronConfig() CronConfig {
	return CronConfig{Backup: "0 4 * * *"}
}

// WorkerConfig bounds background side effects.
type WorkerConfig struct {
	MaxConcurrent int64 `yaml:"maxConcurrent" split_words:"true"`
}

// Config is the root configuration object.
type Config struct {
	Project  ProjectConfig          `yaml:"project"`
	Noflood  NofloodConfig          `yaml:"noflood"`
	Channels channel.ChannelsConfig `yaml:"channels"`
	Exchange ExchangeConfig         `yaml:"exchange"`
	Store    StoreConfig            `yaml:"store"`
	Cron     CronConfig             `yaml:"cron"`
	Worker   WorkerConfig           `yaml:"worker"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Project:  defaultProjectConfig(),
		Noflood:  defaultNofloodConfig(),
		Channels: channel.DefaultChannelsConfig(),
		Exchange: defaultExchangeConfig(),
		Cron:     defaultCronConfig(),
		Worker:   WorkerConfig{MaxConcurrent: 16},
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
