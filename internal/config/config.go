package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/juparave/workbench/internal/runconfig"
	"github.com/juparave/workbench/internal/util"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Annotate AnnotateConfig `yaml:"annotate"`
	Run      RunConfig      `yaml:"run"`
	Explain  ExplainConfig  `yaml:"explain"`
	Verbose  bool           `yaml:"-"` // Set via CLI only
}

// AnnotateConfig holds blame presentation settings
type AnnotateConfig struct {
	PreferCommitDate bool   `yaml:"prefer_commit_date"`
	DateFormat       string `yaml:"date_format"`    // Go time layout
	RelativeDates    bool   `yaml:"relative_dates"` // "3 days ago" in the gutter
	MaxHistory       int    `yaml:"max_history"`    // 0 loads the full file history
}

// RunConfig holds the run configurations available to `workbench run`
type RunConfig struct {
	Configurations     []runconfig.Configuration `yaml:"configurations"`
	ConfigurationsFile string                    `yaml:"configurations_file"`
}

// ExplainConfig holds LLM settings for line explanations
type ExplainConfig struct {
	Provider string `yaml:"provider"` // openai, googleai
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"` // Custom API endpoint for OpenAI-compatible providers
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Annotate: AnnotateConfig{
			DateFormat: "2006-01-02",
			MaxHistory: 500,
		},
		Run: RunConfig{
			ConfigurationsFile: ".workbench/runconfigs.yaml",
		},
		Explain: ExplainConfig{
			Provider: "googleai",
			Model:    "gemini-2.0-flash",
		},
	}
}

// DefaultPath is where Load looks when no path is given
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "workbench", "config.yaml"), nil
}

// Load reads configuration from file and merges with defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, nil // Use defaults if can't find home
		}
	}
	path = util.ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Run.ConfigurationsFile = util.ExpandPath(cfg.Run.ConfigurationsFile)

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Annotate.MaxHistory < 0 {
		return fmt.Errorf("annotate.max_history must not be negative")
	}

	for i := range c.Run.Configurations {
		if err := c.Run.Configurations[i].Validate(); err != nil {
			return err
		}
	}

	switch c.Explain.Provider {
	case "", "openai", "googleai":
	default:
		return fmt.Errorf("unsupported explain provider: %s", c.Explain.Provider)
	}

	if c.Explain.APIKey == "" {
		// Check environment variable
		if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
			c.Explain.APIKey = key
		} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			c.Explain.APIKey = key
		}
	}

	return nil
}

// Registry collects the inline run configurations followed by those of the
// configurations file. Relative file paths resolve against dir. A missing
// file is not an error.
func (c *Config) Registry(dir string) (*runconfig.Registry, error) {
	registry := runconfig.NewRegistry(c.Run.Configurations...)

	path := c.Run.ConfigurationsFile
	if path == "" {
		return registry, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	if !util.FileExists(path) {
		return registry, nil
	}

	configs, err := runconfig.LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, rc := range configs {
		if err := rc.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		registry.Add(rc)
	}
	return registry, nil
}
