package config

import (
	"fmt"
	"os"

	"github.com/prometheus/common/model"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenPort  = 8080
	DefaultMaxUploadMB = 64
)

type Config struct {
	Node struct {
		ListenAddress string `yaml:"listenAddress"`
		ListenPort    int    `yaml:"listenPort"`
		MaxUploadMB   int64  `yaml:"maxUploadMB"`
	} `yaml:"node"`
	Logger struct {
		Verbosity string `yaml:"verbosity"`
		Encoding  string `yaml:"encoding"`
	} `yaml:"logger"`
	Device struct {
		Policy string `yaml:"policy"`
	} `yaml:"device"`
	GPU struct {
		// MetricsPollInterval of zero disables the NVML metrics poller.
		MetricsPollInterval model.Duration `yaml:"metricsPollInterval"`
	} `yaml:"gpu"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Node.ListenPort == 0 {
		c.Node.ListenPort = DefaultListenPort
	}
	if c.Node.MaxUploadMB == 0 {
		c.Node.MaxUploadMB = DefaultMaxUploadMB
	}
	if c.Logger.Verbosity == "" {
		c.Logger.Verbosity = "info"
	}
	if c.Device.Policy == "" {
		c.Device.Policy = "auto"
	}
}

func (c *Config) validate() error {
	if c.Node.ListenPort < 1 || c.Node.ListenPort > 65535 {
		return fmt.Errorf("node.listenPort out of range: %d", c.Node.ListenPort)
	}
	if c.Node.MaxUploadMB < 0 {
		return fmt.Errorf("node.maxUploadMB must not be negative: %d", c.Node.MaxUploadMB)
	}
	switch c.Device.Policy {
	case "auto", "cuda", "cpu":
	default:
		return fmt.Errorf("device.policy must be auto, cuda or cpu, got %q", c.Device.Policy)
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Node.ListenAddress, c.Node.ListenPort)
}

// MaxUploadBytes returns the request body cap for /add in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Node.MaxUploadMB * 1024 * 1024
}
