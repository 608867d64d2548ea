// Package config handles strix configuration loading using viper.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
)

// Config is the top-level strix configuration.
type Config struct {
	Log     log.Config    `mapstructure:"log" yaml:"log"`
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`
	Sanity  SanityConfig  `mapstructure:"sanity" yaml:"sanity"`
}

// CaptureConfig configures packet acquisition.
type CaptureConfig struct {
	// Interface for live capture (AF_PACKET).
	Interface string `mapstructure:"interface" yaml:"interface"`
	// SnapLen is the capture snapshot length in bytes.
	SnapLen int `mapstructure:"snap_len" yaml:"snap_len"`
	// BufferSizeMB sizes the AF_PACKET ring buffer.
	BufferSizeMB int `mapstructure:"buffer_size_mb" yaml:"buffer_size_mb"`
	// TimeoutMs is the poll timeout for live capture.
	TimeoutMs int `mapstructure:"timeout_ms" yaml:"timeout_ms"`
	// Filter is a tcpdump-style BPF filter expression. Empty means
	// "udp port 5060 or tcp port 5060".
	Filter string `mapstructure:"filter" yaml:"filter"`
}

// SanityConfig configures the sanity checker.
type SanityConfig struct {
	// ProxyRequireExtensions lists the Proxy-Require option tags this
	// deployment supports. Tokens outside this set are violations.
	ProxyRequireExtensions []string `mapstructure:"proxy_require_extensions" yaml:"proxy_require_extensions"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: *log.DefaultConfig(),
		Capture: CaptureConfig{
			SnapLen:      65535,
			BufferSizeMB: 8,
			TimeoutMs:    100,
		},
	}
}

// Load reads a YAML config file and overlays it on the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: config file does not exist: %s", core.ErrConfigInvalid, path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefault writes the default configuration as YAML, for
// bootstrapping a deployment.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
