package pokedex

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const configFilename = "config.yml"

// Config holds all settings of the program. Defaults come from the embedded
// config.yml, single values can be overridden through POKEDEX_* environment
// variables.
type Config struct {
	APIBase        string    `yaml:"api_base"`
	Language       string    `yaml:"language"`
	TimeoutSeconds int       `yaml:"timeout_seconds"`
	RatePerSecond  float64   `yaml:"rate_per_second"`
	CacheTTLHours  int       `yaml:"cache_ttl_hours"`
	HistoryLimit   int       `yaml:"history_limit"`
	ListenAddr     string    `yaml:"listen_addr"`
	LogLevel       string    `yaml:"log_level"`
	DataDir        string    `yaml:"data_dir"`
	Variables      StringMap `yaml:"variables"`

	// NoCache disables the on-disk response cache entirely, Unbuffered makes
	// every log entry reach the disk immediately. Both only affect
	// operational behavior (disk writes, log flushing), not lookups.
	NoCache    bool `yaml:"-"`
	Unbuffered bool `yaml:"-"`
}

// NewConfig reads the embedded config file and applies environment
// overrides.
func NewConfig() (*Config, error) {
	configFile := MustGetResource(configFilename)
	config := &Config{}
	err := yaml.Unmarshal([]byte(configFile), config)
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file %s: %w", configFilename, err)
	}
	if config.Variables == nil {
		config.Variables = StringMap{}
	}
	config.applyEnv()
	return config, nil
}

// applyEnv overlays environment variables over the embedded defaults.
func (c *Config) applyEnv() {
	if api := os.Getenv("POKEDEX_API"); api != "" {
		c.APIBase = api
	}
	if lang := os.Getenv("POKEDEX_LANG"); lang != "" {
		c.Language = lang
	}
	if level := os.Getenv("POKEDEX_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if dir := os.Getenv("POKEDEX_HOME"); dir != "" {
		c.DataDir = dir
	}
	c.NoCache = envBool("POKEDEX_NOCACHE")
	c.Unbuffered = envBool("POKEDEX_UNBUFFERED")
}

// envBool reads an environment variable as a boolean flag. Unset or
// unparseable values count as false.
func envBool(name string) bool {
	val, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && val
}

// Timeout returns the per-request timeout for API calls.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached API responses stay valid.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// ResolveDataDir returns the directory for the cache, lookup history and log
// file, creating it if necessary. An explicitly configured directory wins
// over the per-user default.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("no usable data dir: %w", err)
			}
			base = home
		}
		dir = filepath.Join(base, "pokedex")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("unable to create data dir '%s': %w", dir, err)
	}
	if !osFileWriteAccess(dir) {
		return "", fmt.Errorf("data dir is not writeable: '%s'", dir)
	}
	return dir, nil
}
