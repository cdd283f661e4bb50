// Package config loads a coordinator's YAML configuration file. Ports
// metadata-server/src/server_config.rs's ServerConfig::load_config,
// trading serde_yaml for gopkg.in/yaml.v3 and Rust's dirs crate for
// os.UserHomeDir.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccfs/ccfs/pkg/ccfserr"
)

// Config is one coordinator's on-disk configuration, field-for-field
// with the original ServerConfig.
type Config struct {
	ID                  uint64 `yaml:"id"`
	ServerID            string `yaml:"server_id"`
	Host                string `yaml:"host"`
	Port                uint32 `yaml:"port"`
	SnapshotInterval    uint64 `yaml:"snapshot_interval"`
	SnapshotDirPath     string `yaml:"snapshot_dir_path"`
	SnapshotFileName    string `yaml:"snapshot_file_name"`
	ReplicationInterval uint64 `yaml:"replication_interval"`
}

// Address is host:port, the gateway's bind address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SnapshotPath is the full path pkg/snapshotjob reads and writes.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.SnapshotDirPath, c.SnapshotFileName)
}

// Load reads and validates the YAML config file at path. Validation
// failures are the same ones that abort startup in the original:
// an empty host or snapshot file name, or a non-positive interval.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ccfserr.Wrap(ccfserr.KindIO, err, "read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ccfserr.Wrap(ccfserr.KindValidation, err, "parse config file")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	expanded, err := expandHome(cfg.SnapshotDirPath)
	if err != nil {
		return nil, err
	}
	cfg.SnapshotDirPath = expanded

	if err := os.MkdirAll(cfg.SnapshotDirPath, 0o755); err != nil {
		return nil, ccfserr.Wrap(ccfserr.KindIO, err, "create snapshot dir")
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Host == "":
		return ccfserr.New(ccfserr.KindValidation, "host cannot be empty")
	case c.SnapshotFileName == "":
		return ccfserr.New(ccfserr.KindValidation, "snapshot_file_name cannot be empty")
	case c.SnapshotInterval == 0:
		return ccfserr.New(ccfserr.KindValidation, "snapshot_interval must be greater than 0")
	case c.ReplicationInterval == 0:
		return ccfserr.New(ccfserr.KindValidation, "replication_interval must be greater than 0")
	}
	return nil
}

// expandHome replaces a leading "~/" with the current user's home
// directory, matching the original's dirs::home_dir() substitution.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ccfserr.Wrap(ccfserr.KindIO, err, "determine home dir")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
