package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCommand        = errors.New("unknown command")
	ErrUnknownMode           = errors.New("unknown mode")
	ErrConfigurationNotFound = errors.New("run configuration not found")
	ErrProcessNotStarted     = errors.New("process not started")
	ErrProcessFailed         = errors.New("run configuration finished with unexpected exit code")
)

// ConfigurationNotFoundError names the missing configuration and lists the
// ones that do exist
type ConfigurationNotFoundError struct {
	Name      string
	Available []string
}

func (e *ConfigurationNotFoundError) Error() string {
	return fmt.Sprintf("specified configuration is not found: %s (available: %s)",
		e.Name, strings.Join(e.Available, ", "))
}

func (e *ConfigurationNotFoundError) Is(target error) bool {
	return target == ErrConfigurationNotFound
}

// ExitCodeError reports a termination that did not match the expectation
type ExitCodeError struct {
	ExitCode        int
	FailureExpected bool
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("run configuration is finished with exit code: %d", e.ExitCode)
}

func (e *ExitCodeError) Is(target error) bool {
	return target == ErrProcessFailed
}

// IsCancellation reports whether err is a cancelled or timed out wait rather
// than a failure
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
