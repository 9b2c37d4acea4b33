// Package driver loads programs and configuration and orchestrates the
// analyses over a translation unit.
package driver

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Recognized configuration keys.
const (
	KeySuppressWarnings = "suppress-warnings"
	KeyDebugReport      = "debug-report"
)

// Config is the process configuration consulted by the driver. The analysis
// passes never mutate it.
type Config struct {
	values map[string]string
}

func NewConfig() *Config {
	return &Config{values: make(map[string]string)}
}

// LoadConfig reads a flat YAML mapping of configuration keys to values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return &Config{values: values}, nil
}

func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

func (c *Config) Get(key string) string {
	return c.values[key]
}

func (c *Config) Set(key, value string) {
	c.values[key] = value
}

func (c *Config) Unset(key string) {
	delete(c.values, key)
}
