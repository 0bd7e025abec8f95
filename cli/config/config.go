package config

import (
	"fmt"
	"time"
)

// Config represents a fifolink.yaml configuration file.
// All values are optional and act as defaults for CLI flags.
// CLI flags always override config values.
type Config struct {
	// PipeDir is the directory holding the channel pipe nodes.
	PipeDir string `yaml:"pipe_dir"`
	// Capacity is the negotiated buffer capacity. Client and server must
	// be started with the same value; there is no in-band negotiation.
	Capacity int `yaml:"capacity"`
	// AttachTimeout bounds the wait for the server's pipe nodes.
	AttachTimeout Duration `yaml:"attach_timeout"`
	// OutputDir is where retrieved series and files are written.
	OutputDir string `yaml:"output_dir"`

	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Report  ReportConfig  `yaml:"report"`
	Archive ArchiveConfig `yaml:"archive"`
}

// ServerConfig holds server bootstrap defaults from the config file.
type ServerConfig struct {
	// Binary is the fifolinkd binary to spawn when Spawn is set.
	Binary string `yaml:"binary"`
	// DataDir is the server's store root.
	DataDir string `yaml:"data_dir"`
	// Spawn starts the server as a child process before the session.
	Spawn bool `yaml:"spawn"`
}

// CacheConfig holds sample-cache defaults from the config file.
type CacheConfig struct {
	// URL is the Redis connection URL. Empty disables the cache.
	// Format: redis://[:password@]host:port[/db]
	URL string `yaml:"url"`
	// TTL is the cache entry lifetime (default 1h).
	TTL Duration `yaml:"ttl"`
}

// ReportConfig holds session-report defaults from the config file.
type ReportConfig struct {
	// Path is where the msgpack session report is written.
	// Empty disables the report.
	Path string `yaml:"path"`
}

// ArchiveConfig holds S3 archive defaults from the config file.
type ArchiveConfig struct {
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
