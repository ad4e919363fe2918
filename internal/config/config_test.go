package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/juparave/workbench/internal/runconfig"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
annotate:
  prefer_commit_date: true
  relative_dates: true
run:
  configurations:
    - name: unit tests
      command: go test ./...
explain:
  provider: openai
  model: glm-4.7
  base_url: https://api.z.ai/api/paas/v4
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.Annotate.PreferCommitDate)
	require.True(t, cfg.Annotate.RelativeDates)
	require.Equal(t, "2006-01-02", cfg.Annotate.DateFormat)
	require.Equal(t, 500, cfg.Annotate.MaxHistory)
	require.Len(t, cfg.Run.Configurations, 1)
	require.Equal(t, "go test ./...", cfg.Run.Configurations[0].Command)
	require.Equal(t, ".workbench/runconfigs.yaml", cfg.Run.ConfigurationsFile)
	require.Equal(t, "openai", cfg.Explain.Provider)
	require.Equal(t, "https://api.z.ai/api/paas/v4", cfg.Explain.BaseURL)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "annotate: [")

	_, err := Load(path)
	require.ErrorContains(t, err, "parsing config")
}

func TestValidate(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "sk-test", cfg.Explain.APIKey)

	cfg = DefaultConfig()
	cfg.Explain.Provider = "ollama"
	require.ErrorContains(t, cfg.Validate(), "unsupported explain provider")

	cfg = DefaultConfig()
	cfg.Annotate.MaxHistory = -1
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Run.Configurations = append(cfg.Run.Configurations, runconfigWithoutCommand())
	require.ErrorContains(t, cfg.Validate(), "command is required")
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".workbench", "runconfigs.yaml"), `
configurations:
  - name: build
    command: go build ./...
  - name: serve
    command: go run ./cmd/server
`)

	cfg := DefaultConfig()
	cfg.Run.Configurations = append(cfg.Run.Configurations, runconfigNamed("build", "make"))

	registry, err := cfg.Registry(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"build", "serve"}, registry.Names())

	build, ok := registry.Find("build")
	require.True(t, ok)
	require.Equal(t, "make", build.Command, "inline definitions win")

	registry, err = cfg.Registry(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, []string{"build"}, registry.Names())
}

func runconfigNamed(name, command string) runconfig.Configuration {
	return runconfig.Configuration{Name: name, Command: command}
}

func runconfigWithoutCommand() runconfig.Configuration {
	return runconfig.Configuration{Name: "broken"}
}
