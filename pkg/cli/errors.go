// Package cli provides shared plumbing for the halcyon command: output
// formatting and command error types.
package cli

import "fmt"

// ConfigError reports a missing or invalid configuration value. Setting is
// the config file path of the value (e.g. "source.rules_path"); Flag, when
// not empty, names the command-line flag that sets it, so the message can
// point the user at the quicker fix.
type ConfigError struct {
	Setting string
	Flag    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Flag != "" {
		return fmt.Sprintf("%s: %s (config %s)", e.Flag, e.Message, e.Setting)
	}
	return fmt.Sprintf("config %s: %s", e.Setting, e.Message)
}

// NewConfigError creates a ConfigError for a setting with no flag.
func NewConfigError(setting, message string) *ConfigError {
	return &ConfigError{
		Setting: setting,
		Message: message,
	}
}

// NewFlagError creates a ConfigError for a setting controlled by a flag.
func NewFlagError(setting, flag, message string) *ConfigError {
	return &ConfigError{
		Setting: setting,
		Flag:    flag,
		Message: message,
	}
}

// CommandError wraps a failure from one halcyon subcommand, keeping the
// subcommand name for the top-level error line.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("halcyon %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}
