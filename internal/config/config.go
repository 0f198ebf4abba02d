// Package config loads the daemon's configuration file (§6): viper +
// mapstructure, JSON or YAML, with an env-var overlay — grounded on the
// teacher's Load/viper pattern. Unlike the teacher's packet-capture config,
// this shape has no per-role template or field-inheritance step: the
// plug-in ABI here resolves types through an explicit factory registry
// (internal/plugin), so there is no struct-shaped "propagate common fields"
// concept to carry over.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/ingestd/internal/log"
	"firestige.xyz/ingestd/internal/registry"
)

const envPrefix = "INGESTD"

// InstanceConfig is the shape of one entry under Sources/Writers (§6):
// {type: logicalName, ...instance-specific keys}. Options carries every key
// besides "type", handed to the plug-in's own config-binding step verbatim.
type InstanceConfig struct {
	Type    string                 `mapstructure:"type"`
	Options map[string]interface{} `mapstructure:",remain"`
}

// TypeDescriptors maps a logical name (as used by Sources[*].Type etc) to an
// implementation identifier resolved against internal/plugin.Registry.
type TypeDescriptors struct {
	DataSources  map[string]string `mapstructure:"DataSources"`
	DataWriters  map[string]string `mapstructure:"DataWriters"`
	Transformers map[string]string `mapstructure:"Transformers"`
}

// RegistryConfig configures the default HTTPRegistry MetaRegistry (§6
// "get-route-config").
type RegistryConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ControlConfig configures the local control-plane Unix domain socket.
type ControlConfig struct {
	Socket  string `mapstructure:"socket"`
	PIDFile string `mapstructure:"pidFile"`
}

// Config is the top-level configuration file shape (§6).
type Config struct {
	DeployName    string                    `mapstructure:"DeployName"`
	TargetThreads int                       `mapstructure:"TargetThreads"`
	Types         TypeDescriptors           `mapstructure:"Types"`
	Sources       map[string]InstanceConfig `mapstructure:"Sources"`
	Writers       map[string]InstanceConfig `mapstructure:"Writers"`
	Registry      RegistryConfig            `mapstructure:"Registry"`
	Logger        *log.LoggerConfig         `mapstructure:"Logger"`
	Metrics       MetricsConfig             `mapstructure:"Metrics"`
	Control       ControlConfig             `mapstructure:"Control"`
}

// Load reads and decodes the configuration file at path (JSON or YAML,
// inferred from its extension), overlaying any INGESTD_-prefixed environment
// variables, and rejects Sources/Writers entries missing "type" (§6: keys
// missing a type are rejected with a load error).
func Load(path string) (*Config, error) {
	v := viper.New()

	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	v.SetConfigName(nameWithoutExt)
	v.SetConfigType(strings.TrimPrefix(ext, "."))
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.TargetThreads <= 0 {
		cfg.TargetThreads = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = log.DefaultConfig()
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Control.Socket == "" {
		cfg.Control.Socket = "/tmp/ingestd.sock"
	}
	if cfg.Control.PIDFile == "" {
		cfg.Control.PIDFile = "/tmp/ingestd.pid"
	}
}

func validate(cfg *Config) error {
	for name, inst := range cfg.Sources {
		if inst.Type == "" {
			return fmt.Errorf("config: source %q missing required field \"type\"", name)
		}
	}
	for name, inst := range cfg.Writers {
		if inst.Type == "" {
			return fmt.Errorf("config: writer %q missing required field \"type\"", name)
		}
	}
	return nil
}

// BuildRegistry constructs the default HTTPRegistry MetaRegistry described
// by §6, bound to this configuration's DeployName.
func (c *Config) BuildRegistry() registry.MetaRegistry {
	return registry.NewHTTPRegistry(c.Registry.Endpoint, c.DeployName)
}
