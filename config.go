package main

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// OutputConfig controls where reports are written
type OutputConfig struct {
	Dir         string `yaml:"dir" json:"dir"`
	OpenBrowser *bool  `yaml:"open_browser" json:"open_browser"` // Open HTML reports after generation (default: true)
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr           string   `yaml:"addr" json:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// Config holds the complete run configuration
type Config struct {
	Range    IncomeRange  `yaml:"range" json:"range"`
	Output   OutputConfig `yaml:"output" json:"output"`
	Server   ServerConfig `yaml:"server" json:"server"`
	LogLevel string       `yaml:"log_level" json:"log_level"`
}

// GetRange returns the configured income range, falling back to the default
// for any field left unset
func (c *Config) GetRange() IncomeRange {
	r := DefaultIncomeRange()
	if c == nil {
		return r
	}
	if c.Range.Start > 0 {
		r.Start = c.Range.Start
	}
	if c.Range.End > 0 {
		r.End = c.Range.End
	}
	if c.Range.Step > 0 {
		r.Step = c.Range.Step
	}
	return r
}

// GetOutputDir returns the report directory (default: reports)
func (c *Config) GetOutputDir() string {
	if c == nil || c.Output.Dir == "" {
		return "reports"
	}
	return c.Output.Dir
}

// ShouldOpenBrowser returns whether to open HTML reports after generation (default: true)
func (c *Config) ShouldOpenBrowser() bool {
	if c == nil || c.Output.OpenBrowser == nil {
		return true
	}
	return *c.Output.OpenBrowser
}

// GetServerAddr returns the web server address (default: localhost:0)
func (c *Config) GetServerAddr() string {
	if c == nil || c.Server.Addr == "" {
		return "localhost:0"
	}
	return c.Server.Addr
}

// GetAllowedOrigins returns the CORS origins for the API
func (c *Config) GetAllowedOrigins() []string {
	if c == nil || len(c.Server.AllowedOrigins) == 0 {
		return []string{"http://localhost:5173", "http://localhost:8080"}
	}
	return c.Server.AllowedOrigins
}

// GetLogLevel returns the log level (default: info)
func (c *Config) GetLogLevel() string {
	if c == nil || c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// Validate checks the parts of the config the calculators depend on
func (c *Config) Validate() error {
	if err := c.GetRange().Validate(); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	if _, ok := logLevels[c.GetLogLevel()]; !ok {
		return fmt.Errorf("log_level: unknown level %q", c.GetLogLevel())
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	return &config, nil
}

// LoadConfigOrDefault loads filename, or the embedded defaults when it does not exist
func LoadConfigOrDefault(filename string) (*Config, error) {
	config, err := LoadConfig(filename)
	if os.IsNotExist(err) {
		log.Debugf("config %s not found, using defaults", filename)
		return LoadDefaultConfig()
	}
	return config, err
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# Tax Rate Explorer Configuration
# Written by -save-config - feel free to edit manually
#
# Tax brackets are fixed (2024/25) and cannot be changed here.
#
# RUN COMMANDS
#   ./goTaxRates                 Interactive mode selector
#   ./goTaxRates -console        Print the rates table
#   ./goTaxRates -html           HTML report with table and chart
#   ./goTaxRates -pdf            PDF report with table and chart
#   ./goTaxRates -income 60000   Breakdown for a single income
#   ./goTaxRates -web            Start the web UI
#   ./goTaxRates -save-config    Save flag overrides back to this file
#   ./goTaxRates -help           Show all options

`)
	content := append(header, data...)
	return os.WriteFile(filename, content, 0644)
}

// LoadDefaultConfig loads the default configuration from embedded default-config.yaml
func LoadDefaultConfig() (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &config); err != nil {
		return nil, err
	}
	return &config, nil
}
