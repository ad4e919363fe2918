package playback

import (
	"fmt"
	"strconv"
	"strings"
)

// Wait modes of the run configuration command
const (
	ModeTillStarted    = "TILL_STARTED"
	ModeTillTerminated = "TILL_TERMINATED"
)

// RunConfigurationOptions are the arguments of %runConfiguration
type RunConfigurationOptions struct {
	Mode              string
	ConfigurationName string
	FailureExpected   bool
	Debug             bool
}

// String renders the options in the pipe-delimited command form
func (o RunConfigurationOptions) String() string {
	parts := []string{"-mode=" + o.Mode, "-configurationName=" + o.ConfigurationName}
	if o.FailureExpected {
		parts = append(parts, "-failureExpected")
	}
	if o.Debug {
		parts = append(parts, "-debug")
	}
	return strings.Join(parts, "|")
}

// ParseArguments splits a pipe-delimited argument string into key/value
// pairs. A leading '-' on keys is dropped; a key without '=' maps to "".
func ParseArguments(text string) (map[string]string, error) {
	args := make(map[string]string)
	for _, item := range strings.Split(text, "|") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, value, _ := strings.Cut(item, "=")
		key = strings.TrimLeft(strings.TrimSpace(key), "-")
		if key == "" {
			return nil, fmt.Errorf("argument %q has no name", item)
		}
		args[key] = strings.TrimSpace(value)
	}
	return args, nil
}

// ParseRunConfigurationOptions parses
// "-mode=TILL_TERMINATED|-configurationName=My Run Configuration|-failureExpected|-debug"
func ParseRunConfigurationOptions(text string) (RunConfigurationOptions, error) {
	var opts RunConfigurationOptions

	args, err := ParseArguments(text)
	if err != nil {
		return opts, err
	}

	for key, value := range args {
		switch key {
		case "mode":
			opts.Mode = value
		case "configurationName":
			opts.ConfigurationName = value
		case "failureExpected":
			if opts.FailureExpected, err = parseFlag(key, value); err != nil {
				return opts, err
			}
		case "debug":
			if opts.Debug, err = parseFlag(key, value); err != nil {
				return opts, err
			}
		default:
			return opts, fmt.Errorf("unknown argument %q", key)
		}
	}
	return opts, nil
}

func parseFlag(key, value string) (bool, error) {
	if value == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("argument %q: %w", key, err)
	}
	return b, nil
}
