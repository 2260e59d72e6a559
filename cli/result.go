package cli

// CommandError signals a command failure with a specific exit code.
// Commands return this after printing their errors to stderr, so main
// only has to exit.
type CommandError struct {
	exitCode int
}

func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

func (e *CommandError) Error() string {
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// fail renders err on stderr and returns the CommandError to exit with.
func fail(s *session, err error) error {
	_, _ = s.stderr.Write([]byte(NewErrorRenderer(s.registry).Render(err) + "\n"))
	return NewCommandError(exitCodeOf(err))
}
