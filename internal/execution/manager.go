package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"

	"github.com/google/uuid"
	"github.com/juparave/workbench/internal/runconfig"
)

// Executor selects how a configuration is launched
type Executor string

const (
	ExecutorRun   Executor = "Run"
	ExecutorDebug Executor = "Debug"
)

// Environment represents one launch of a run configuration
type Environment struct {
	ID            string
	Configuration *runconfig.Configuration
	Executor      Executor
}

func (e *Environment) String() string {
	return fmt.Sprintf("%s [%s, %s]", e.Configuration.Name, e.Executor, e.ID)
}

// Manager launches run configurations and publishes their lifecycle on a Bus
type Manager struct {
	bus    *Bus
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

// NewManager creates a Manager. Process output goes to stdout and stderr.
func NewManager(bus *Bus, logger *log.Logger, stdout, stderr io.Writer) *Manager {
	return &Manager{bus: bus, logger: logger, stdout: stdout, stderr: stderr}
}

// Bus returns the lifecycle bus notifications are published on
func (m *Manager) Bus() *Bus {
	return m.bus
}

// NewEnvironment creates a launch handle with a unique ID. Nothing is
// started until Execute.
func (m *Manager) NewEnvironment(cfg *runconfig.Configuration, executor Executor) *Environment {
	return &Environment{
		ID:            uuid.NewString(),
		Configuration: cfg,
		Executor:      executor,
	}
}

// Execute starts env's process. It returns once the process is started;
// termination is published asynchronously. Cancelling ctx kills the process.
func (m *Manager) Execute(ctx context.Context, env *Environment) error {
	debug := env.Executor == ExecutorDebug

	argv, err := env.Configuration.CommandLine(debug)
	if err != nil {
		m.bus.ProcessNotStarted(env, err)
		return err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = env.Configuration.WorkDir
	cmd.Env = append(os.Environ(), env.Configuration.Environ(debug)...)
	cmd.Stdout = m.stdout
	cmd.Stderr = m.stderr

	m.bus.ProcessStarting(env)

	if err := cmd.Start(); err != nil {
		err = fmt.Errorf("starting %s: %w", env.Configuration.Name, err)
		m.bus.ProcessNotStarted(env, err)
		return err
	}
	m.logger.Printf("Started %s (pid %d): %v", env, cmd.Process.Pid, argv)
	m.bus.ProcessStarted(env, cmd.Process.Pid)

	go func() {
		code := exitCode(cmd.Wait())
		m.logger.Printf("Process %s exited with code %d", env, code)
		m.bus.ProcessTerminated(env, code)
	}()

	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
