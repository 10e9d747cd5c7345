package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"r9cc/pkg/compiler"
	"r9cc/pkg/cpu"
)

// EnvVar names the environment variable holding a config file path.
const EnvVar = "R9CC_CONFIG"

// Config holds the complete tool configuration
type Config struct {
	Output OutputConfig `toml:"output" yaml:"output"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Run    RunConfig    `toml:"run" yaml:"run"`
}

// OutputConfig controls the emitted assembly
type OutputConfig struct {
	EntrySymbol string `toml:"entry_symbol" yaml:"entry_symbol"`
	Comments    bool   `toml:"comments" yaml:"comments"`
	File        string `toml:"file" yaml:"file"` // empty means stdout
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// RunConfig sizes the emulator used by r9run
type RunConfig struct {
	StackSize int `toml:"stack_size" yaml:"stack_size"`
	MaxSteps  int `toml:"max_steps" yaml:"max_steps"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the given format ("toml" or "yaml").
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case "toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %s", undecoded[0])
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by R9CC_CONFIG, or the first default
// location that exists. With no file anywhere it returns Default().
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		defaultPaths := []string{
			"./r9cc.toml",
			"./r9cc.yaml",
			"./r9cc.yml",
			filepath.Join(os.Getenv("HOME"), ".config/r9cc/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Output.EntrySymbol == "" {
		c.Output.EntrySymbol = compiler.DefaultEntrySymbol
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Run.StackSize == 0 {
		c.Run.StackSize = cpu.DefaultStackSize
	}
	if c.Run.MaxSteps == 0 {
		c.Run.MaxSteps = cpu.DefaultMaxSteps
	}
}

func (c *Config) expandEnvVars() {
	c.Output.File = os.ExpandEnv(c.Output.File)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Output.EntrySymbol, " \t:#,") {
		return fmt.Errorf("invalid entry_symbol %q", c.Output.EntrySymbol)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Run.StackSize < 0 || c.Run.MaxSteps < 0 {
		return fmt.Errorf("run.stack_size and run.max_steps must not be negative")
	}
	return nil
}

// CompileOptions converts the output section into compiler options.
func (c *Config) CompileOptions() compiler.Options {
	return compiler.Options{
		EntrySymbol: c.Output.EntrySymbol,
		Comments:    c.Output.Comments,
	}
}

// CPUConfig converts the run section into emulator settings.
func (c *Config) CPUConfig() cpu.Config {
	return cpu.Config{
		StackSize: c.Run.StackSize,
		MaxSteps:  c.Run.MaxSteps,
	}
}
