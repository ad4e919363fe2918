package runconfig

import (
	"fmt"
	"os"
	"sort"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// Configuration is a named, persisted description of how to launch a program
type Configuration struct {
	Name         string            `yaml:"name"`
	Command      string            `yaml:"command"` // Shell-quoted command line
	Args         []string          `yaml:"args"`
	WorkDir      string            `yaml:"work_dir"`
	Env          map[string]string `yaml:"env"`
	DebugCommand string            `yaml:"debug_command"` // Replaces Command under the debug executor
	DebugEnv     map[string]string `yaml:"debug_env"`
}

// CommandLine returns the argv to launch, honoring the debug overrides
func (c *Configuration) CommandLine(debug bool) ([]string, error) {
	line := c.Command
	if debug && c.DebugCommand != "" {
		line = c.DebugCommand
	}

	argv, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parsing command of %q: %w", c.Name, err)
	}
	argv = append(argv, c.Args...)
	if len(argv) == 0 {
		return nil, fmt.Errorf("run configuration %q has no command", c.Name)
	}
	return argv, nil
}

// Environ returns the extra KEY=VALUE pairs for the process, sorted by key
func (c *Configuration) Environ(debug bool) []string {
	merged := make(map[string]string, len(c.Env)+len(c.DebugEnv))
	for k, v := range c.Env {
		merged[k] = v
	}
	if debug {
		for k, v := range c.DebugEnv {
			merged[k] = v
		}
	}

	env := make([]string, 0, len(merged))
	for k, v := range merged {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// Validate checks that the configuration can be launched
func (c *Configuration) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("run configuration name is required")
	}
	if c.Command == "" {
		return fmt.Errorf("run configuration %q: command is required", c.Name)
	}
	return nil
}

// File is the on-disk layout of a run configurations file
type File struct {
	Configurations []Configuration `yaml:"configurations"`
}

// LoadFile reads run configurations from a YAML file
func LoadFile(path string) ([]Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run configurations: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing run configurations: %w", err)
	}
	return f.Configurations, nil
}
