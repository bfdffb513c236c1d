// Package config loads the pricer configuration: built-in defaults, then an
// optional YAML file, then OPTION_PRICER_* environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/contactkeval/option-pricer/internal/decmath"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// ServerConfig configures the REST server.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"OPTION_PRICER_ADDR"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" env:"OPTION_PRICER_LOG_LEVEL"` // error, info, debug or trace
}

// ReportConfig configures batch report output.
type ReportConfig struct {
	Dir string `yaml:"dir" env:"OPTION_PRICER_REPORT_DIR"`
}

// DefaultsConfig holds the pricing inputs used when the caller supplies
// none. Values are decimal strings so that they are never routed through
// float64.
type DefaultsConfig struct {
	Stock    string `yaml:"stock" env:"OPTION_PRICER_STOCK"`
	Strike   string `yaml:"strike" env:"OPTION_PRICER_STRIKE"`
	Rate     string `yaml:"rate" env:"OPTION_PRICER_RATE"`
	Sigma    string `yaml:"sigma" env:"OPTION_PRICER_SIGMA"`
	Maturity string `yaml:"maturity" env:"OPTION_PRICER_MATURITY"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Report   ReportConfig   `yaml:"report"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// Defaults returns the built-in configuration. Its pricing defaults are the
// reference scenario.
func Defaults() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
		Report:  ReportConfig{Dir: "./out"},
		Defaults: DefaultsConfig{
			Stock:    "100",
			Strike:   "105",
			Rate:     "0.05",
			Sigma:    "0.20",
			Maturity: "1",
		},
	}
}

// Load builds the configuration. path may be empty, in which case only the
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be checked by their types alone.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := c.Parameters(); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the parsed logging level, Info if it is invalid.
func (c *Config) LogLevel() logger.Level {
	l, _ := logger.ParseLevel(c.Logging.Level)
	return l
}

// Parameters parses the default pricing inputs.
func (c *Config) Parameters() (pricing.OptionParameters, error) {
	var p pricing.OptionParameters
	var err error
	if p.Stock, err = parseField("defaults.stock", c.Defaults.Stock); err != nil {
		return p, err
	}
	if p.Strike, err = parseField("defaults.strike", c.Defaults.Strike); err != nil {
		return p, err
	}
	if p.Rate, err = parseField("defaults.rate", c.Defaults.Rate); err != nil {
		return p, err
	}
	if p.Sigma, err = parseField("defaults.sigma", c.Defaults.Sigma); err != nil {
		return p, err
	}
	if p.Maturity, err = parseField("defaults.maturity", c.Defaults.Maturity); err != nil {
		return p, err
	}
	return p, nil
}

func parseField(name, value string) (decimal.Decimal, error) {
	d, err := decmath.Parse(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: invalid decimal %q: %w", name, value, err)
	}
	return d, nil
}
