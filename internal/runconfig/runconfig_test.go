package runconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandLine(t *testing.T) {
	c := Configuration{
		Name:         "server",
		Command:      `go run ./cmd/server --addr ":8080" --name 'my app'`,
		Args:         []string{"--verbose"},
		DebugCommand: "dlv debug ./cmd/server --",
	}

	argv, err := c.CommandLine(false)
	require.NoError(t, err)
	require.Equal(t, []string{"go", "run", "./cmd/server", "--addr", ":8080", "--name", "my app", "--verbose"}, argv)

	argv, err = c.CommandLine(true)
	require.NoError(t, err)
	require.Equal(t, []string{"dlv", "debug", "./cmd/server", "--", "--verbose"}, argv)

	_, err = (&Configuration{Name: "broken", Command: `echo "unterminated`}).CommandLine(false)
	require.Error(t, err)

	_, err = (&Configuration{Name: "empty"}).CommandLine(false)
	require.Error(t, err)
}

func TestEnviron(t *testing.T) {
	c := Configuration{
		Env:      map[string]string{"B": "2", "A": "1"},
		DebugEnv: map[string]string{"A": "debug", "DEBUG": "1"},
	}
	require.Equal(t, []string{"A=1", "B=2"}, c.Environ(false))
	require.Equal(t, []string{"A=debug", "B=2", "DEBUG=1"}, c.Environ(true))
}

func TestValidate(t *testing.T) {
	require.Error(t, (&Configuration{}).Validate())
	require.Error(t, (&Configuration{Name: "x"}).Validate())
	require.NoError(t, (&Configuration{Name: "x", Command: "true"}).Validate())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(
		Configuration{Name: "unit tests", Command: "go test ./..."},
		Configuration{Name: "server", Command: "go run ./cmd/server"},
		Configuration{Name: "unit tests", Command: "shadowed"},
	)
	require.Equal(t, 2, r.Len())
	require.Equal(t, []string{"unit tests", "server"}, r.Names())

	c, ok := r.Find("unit tests")
	require.True(t, ok)
	require.Equal(t, "go test ./...", c.Command)

	_, ok = r.Find("missing")
	require.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
configurations:
  - name: My Run Configuration
    command: ./build.sh release
    work_dir: /tmp
    env:
      GOFLAGS: -mod=mod
  - name: lint
    command: golangci-lint run
`), 0644))

	configs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	require.Equal(t, "My Run Configuration", configs[0].Name)
	require.Equal(t, "/tmp", configs[0].WorkDir)
	require.Equal(t, map[string]string{"GOFLAGS": "-mod=mod"}, configs[0].Env)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
