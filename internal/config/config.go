// Package config loads the client configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full client configuration.
type Config struct {
	Remote       RemoteConfig       `yaml:"remote"`
	Storage      StorageConfig      `yaml:"storage"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	API          APIConfig          `yaml:"api"`
}

// RemoteConfig points at the hosted data service.
type RemoteConfig struct {
	// URL is the REST root, e.g. "https://project.example.co/rest/v1".
	URL string `yaml:"url"`

	// APIKey authenticates requests. May also come from the
	// FARMAQ_API_KEY environment variable, which wins over the file so
	// keys can stay out of checked-in configs.
	APIKey string `yaml:"api_key"`

	// Timeout bounds each remote call.
	Timeout Duration `yaml:"timeout"`
}

// StorageConfig locates the durable local store.
type StorageConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// QueueKey is the storage key the pending sequence lives under.
	QueueKey string `yaml:"queue_key"`
}

// ConnectivityConfig tunes the reachability probe.
type ConnectivityConfig struct {
	// ProbeURL is fetched to decide reachability. Empty means probe the
	// remote URL itself.
	ProbeURL string `yaml:"probe_url"`

	// Interval between probes.
	Interval Duration `yaml:"interval"`
}

// APIConfig configures the local status server.
type APIConfig struct {
	// Listen is the address for `farmaq serve`, e.g. "127.0.0.1:7070".
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when a field is absent.
func Default() Config {
	return Config{
		Remote: RemoteConfig{
			Timeout: Duration(10 * time.Second),
		},
		Storage: StorageConfig{
			Path:     "farmaq.db",
			QueueKey: "outbox.pending",
		},
		Connectivity: ConnectivityConfig{
			Interval: Duration(15 * time.Second),
		},
		API: APIConfig{
			Listen: "127.0.0.1:7070",
		},
	}
}

// Load reads, parses, and validates the configuration file at path.
// Unknown fields are rejected so typos fail loudly instead of silently
// falling back to defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes configuration bytes over the defaults.
func Parse(raw []byte) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if key := os.Getenv("FARMAQ_API_KEY"); key != "" {
		cfg.Remote.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields no default can supply.
func (c Config) Validate() error {
	if c.Remote.URL == "" {
		return fmt.Errorf("config: remote.url is required")
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("config: storage.path is required")
	}
	if c.Storage.QueueKey == "" {
		return fmt.Errorf("config: storage.queue_key is required")
	}
	if c.Connectivity.Interval <= 0 {
		return fmt.Errorf("config: connectivity.interval must be positive")
	}
	return nil
}

// ProbeURL returns the configured probe target, falling back to the
// remote URL.
func (c Config) ProbeURL() string {
	if c.Connectivity.ProbeURL != "" {
		return c.Connectivity.ProbeURL
	}
	return c.Remote.URL
}
