package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML configuration file schema.
type FileConfig struct {
	// Dashboard is the aggregator base URL, e.g. "ws://aggregator:12000".
	Dashboard string `yaml:"dashboard"`

	// Retry configures the subscription retry policy.
	Retry RetryConfig `yaml:"retry"`

	// Capture is the path of the CBOR event capture file. Empty disables
	// capture.
	Capture string `yaml:"capture"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Stations lists known station backends for quick access.
	Stations []StationConfig `yaml:"stations"`
}

// RetryConfig mirrors subscription.RetryPolicy in the config file.
type RetryConfig struct {
	Delay   Duration `yaml:"delay"`
	Backoff float64  `yaml:"backoff"`
	Max     Duration `yaml:"max"`
}

// Duration is a time.Duration that parses Go duration strings ("250ms",
// "30s") from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// StationConfig names one station backend in the config file.
type StationConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoadFileConfig reads and parses the YAML configuration file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
