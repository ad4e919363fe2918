package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juparave/workbench/internal/execution"
)

// RunConfigurationPrefix is the script name of the run configuration command
const RunConfigurationPrefix = CommandPrefix + "runConfiguration"

// State of one run configuration launch
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// RunConfigurationCommand launches a named run configuration and waits until
// its process has started or terminated, depending on the mode.
//
// Syntax: %runConfiguration -mode=TILL_TERMINATED|-configurationName=My Run Configuration|-failureExpected|-debug
type RunConfigurationCommand struct {
	opts RunConfigurationOptions
	line int
}

// NewRunConfigurationCommand is the Factory of %runConfiguration
func NewRunConfigurationCommand(args string, line int) (Command, error) {
	opts, err := ParseRunConfigurationOptions(args)
	if err != nil {
		return nil, err
	}
	return NewRunConfigurationCommandWithOptions(opts, line), nil
}

// NewRunConfigurationCommandWithOptions creates the command from parsed options
func NewRunConfigurationCommandWithOptions(opts RunConfigurationOptions, line int) *RunConfigurationCommand {
	return &RunConfigurationCommand{opts: opts, line: line}
}

// Line returns the script line of the command
func (c *RunConfigurationCommand) Line() int {
	return c.line
}

// Options returns the parsed options
func (c *RunConfigurationCommand) Options() RunConfigurationOptions {
	return c.opts
}

// Execute launches the configuration and blocks until the outcome is known
// or ctx is done
func (c *RunConfigurationCommand) Execute(ctx context.Context, pctx *Context) error {
	if c.opts.Mode != ModeTillStarted && c.opts.Mode != ModeTillTerminated {
		return fmt.Errorf("%w: specified mode %q is neither %s nor %s",
			ErrUnknownMode, c.opts.Mode, ModeTillStarted, ModeTillTerminated)
	}

	cfg, ok := pctx.Registry.Find(c.opts.ConfigurationName)
	if !ok {
		names := pctx.Registry.Names()
		printAllConfigurationNames(pctx, names)
		return &ConfigurationNotFoundError{Name: c.opts.ConfigurationName, Available: names}
	}

	executor := execution.ExecutorRun
	if c.opts.Debug {
		executor = execution.ExecutorDebug
	}
	env := pctx.Launcher.NewEnvironment(cfg, executor)

	w := newLaunchWatcher(c, pctx, env)
	conn := pctx.Bus.Subscribe(w)
	defer conn.Disconnect()

	if err := pctx.Launcher.Execute(ctx, env); err != nil {
		w.callback.Reject(fmt.Errorf("%w: %v", ErrProcessNotStarted, err))
	}

	err := w.callback.Wait(ctx)
	if err != nil && !IsCancellation(err) {
		pctx.Logger.Printf("Run configuration %q failed: %v", cfg.Name, err)
	}
	return err
}

func printAllConfigurationNames(pctx *Context, names []string) {
	pctx.Logger.Printf("*****************************")
	pctx.Logger.Printf("Available configurations are:")
	for _, name := range names {
		pctx.Logger.Printf("%s", name)
	}
	pctx.Logger.Printf("*****************************")
}

// launchWatcher follows the lifecycle of the one environment the command
// started and ignores every other launch
type launchWatcher struct {
	cmd      *RunConfigurationCommand
	pctx     *Context
	env      *execution.Environment
	callback *Callback

	mu      sync.Mutex
	state   State
	started time.Time
}

func newLaunchWatcher(cmd *RunConfigurationCommand, pctx *Context, env *execution.Environment) *launchWatcher {
	return &launchWatcher{cmd: cmd, pctx: pctx, env: env, callback: NewCallback()}
}

func (w *launchWatcher) ours(env *execution.Environment) bool {
	return env != nil && env.ID == w.env.ID
}

func (w *launchWatcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *launchWatcher) elapsed() time.Duration {
	if w.started.IsZero() {
		return 0
	}
	return time.Since(w.started)
}

func (w *launchWatcher) ProcessStarting(env *execution.Environment) {
	if !w.ours(env) {
		return
	}
	w.mu.Lock()
	w.state = StateStarting
	w.started = time.Now()
	w.mu.Unlock()

	w.pctx.Message("processStarting: "+env.String(), w.cmd.line)
}

func (w *launchWatcher) ProcessStarted(env *execution.Environment, pid int) {
	if !w.ours(env) {
		return
	}
	w.mu.Lock()
	w.state = StateRunning
	elapsed := w.elapsed()
	if w.cmd.opts.Mode == ModeTillStarted {
		w.state = StateCompleted
	}
	w.mu.Unlock()

	if w.cmd.opts.Mode == ModeTillStarted {
		w.pctx.Message(fmt.Sprintf("processStarted in: %s: %d", env, elapsed.Milliseconds()), w.cmd.line)
		w.callback.SetDone()
	}
}

func (w *launchWatcher) ProcessNotStarted(env *execution.Environment, err error) {
	if !w.ours(env) {
		return
	}
	w.mu.Lock()
	w.state = StateCompleted
	w.mu.Unlock()

	w.callback.Reject(fmt.Errorf("%w: %v", ErrProcessNotStarted, err))
}

func (w *launchWatcher) ProcessTerminated(env *execution.Environment, exitCode int) {
	if !w.ours(env) || w.cmd.opts.Mode != ModeTillTerminated {
		return
	}
	w.mu.Lock()
	w.state = StateCompleted
	elapsed := w.elapsed()
	w.mu.Unlock()

	w.pctx.Message(fmt.Sprintf("processTerminated in: %s: %d", env, elapsed.Milliseconds()), w.cmd.line)

	failureExpected := w.cmd.opts.FailureExpected
	if (exitCode == 0 && !failureExpected) || (exitCode != 0 && failureExpected) {
		w.callback.SetDone()
		return
	}
	w.callback.Reject(&ExitCodeError{ExitCode: exitCode, FailureExpected: failureExpected})
}
