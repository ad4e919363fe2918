package playback

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/juparave/workbench/internal/execution"
	"github.com/juparave/workbench/internal/runconfig"
)

// CommandPrefix marks a command line in a playback script
const CommandPrefix = "%"

// ConfigurationRegistry resolves run configurations by name
type ConfigurationRegistry interface {
	Find(name string) (*runconfig.Configuration, bool)
	Names() []string
}

// Launcher starts run configurations
type Launcher interface {
	NewEnvironment(cfg *runconfig.Configuration, executor execution.Executor) *execution.Environment
	Execute(ctx context.Context, env *execution.Environment) error
}

// Subscriber gives access to lifecycle notifications
type Subscriber interface {
	Subscribe(l execution.Listener) *execution.Connection
}

// Context carries the collaborators commands run against
type Context struct {
	Logger   *log.Logger
	Registry ConfigurationRegistry
	Launcher Launcher
	Bus      Subscriber
}

// Message reports progress of the command at script line
func (c *Context) Message(text string, line int) {
	c.Logger.Printf("[line %d] %s", line, text)
}

// Command is one executable script line
type Command interface {
	Execute(ctx context.Context, pctx *Context) error
	Line() int
}

// Factory builds a command from its argument text and script line
type Factory func(args string, line int) (Command, error)

// Player runs playback scripts
type Player struct {
	pctx     *Context
	commands map[string]Factory
}

// NewPlayer creates a Player with the built-in commands registered
func NewPlayer(pctx *Context) *Player {
	p := &Player{pctx: pctx, commands: make(map[string]Factory)}
	p.Register(RunConfigurationPrefix, NewRunConfigurationCommand)
	return p
}

// Register binds a command name, including its prefix, to a factory
func (p *Player) Register(name string, factory Factory) {
	p.commands[name] = factory
}

// Parse reads a script. Blank lines and lines starting with '#' are skipped.
func (p *Player) Parse(r io.Reader) ([]Command, error) {
	var commands []Command

	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		text := strings.TrimSpace(s.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if !strings.HasPrefix(text, CommandPrefix) {
			return nil, fmt.Errorf("line %d: expected a command starting with %q", line, CommandPrefix)
		}

		name, args, _ := strings.Cut(text, " ")
		factory, ok := p.commands[name]
		if !ok {
			return nil, fmt.Errorf("line %d: %w: %s", line, ErrUnknownCommand, name)
		}
		cmd, err := factory(strings.TrimSpace(args), line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, name, err)
		}
		commands = append(commands, cmd)
	}

	return commands, s.Err()
}

// Play parses and runs a script, stopping at the first failing command
func (p *Player) Play(ctx context.Context, r io.Reader) error {
	commands, err := p.Parse(r)
	if err != nil {
		return err
	}

	for _, cmd := range commands {
		if err := cmd.Execute(ctx, p.pctx); err != nil {
			return fmt.Errorf("line %d: %w", cmd.Line(), err)
		}
	}
	return nil
}
