package conda

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotFound indicates the conda binary is not on PATH.
var ErrNotFound = errors.New("conda executable not found in PATH")

// Common error messages from conda
const (
	errMsgEnvNotFound      = "EnvironmentLocationNotFound"
	errMsgPackagesNotFound = "PackagesNotFoundError"
	errMsgEnvExists        = "prefix already exists"
)

// Error represents a conda command error.
type Error struct {
	ExitCode int
	Stderr   string
	Args     []string
	err      error
}

func (e *Error) Error() string {
	if e.Stderr == "" {
		return fmt.Errorf("conda command failed: %w", e.err).Error()
	}

	return fmt.Sprintf("conda command failed: %s", strings.TrimSpace(e.Stderr))
}

func (e *Error) Unwrap() error {
	return e.err
}

// NewError creates an Error from command args, captured stderr and the
// underlying exec error.
func NewError(args []string, stderr string, err error) *Error {
	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &Error{
		ExitCode: exitCode,
		Stderr:   stderr,
		Args:     args,
		err:      err,
	}
}

// IsNotFound checks if the error indicates conda is missing from PATH.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsEnvNotFound checks if the error indicates a missing environment.
func IsEnvNotFound(err error) bool {
	return containsError(err, errMsgEnvNotFound)
}

// IsPackagesNotFound checks if the error indicates unresolvable packages.
func IsPackagesNotFound(err error) bool {
	return containsError(err, errMsgPackagesNotFound)
}

// IsEnvExists checks if the error indicates the environment already exists.
func IsEnvExists(err error) bool {
	return containsError(err, errMsgEnvExists)
}

// containsError checks if the error contains a specific message
func containsError(err error, msg string) bool {
	if err == nil {
		return false
	}

	var condaErr *Error
	if errors.As(err, &condaErr) {
		return strings.Contains(strings.ToLower(condaErr.Stderr), strings.ToLower(msg))
	}

	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(msg))
}

// GetExitCode returns the exit code from a conda error, or -1 if not
// available.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var condaErr *Error
	if errors.As(err, &condaErr) {
		return condaErr.ExitCode
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
