// Package conda wraps the conda executable for environment management.
package conda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/blang/semver/v4"
)

// Client wraps conda invocations. All operations shell out to the conda
// binary; nothing here reimplements environment or package resolution.
type Client struct {
	CondaPath string // Path to the conda executable
	Stderr    io.Writer
	Stdin     io.Reader
	Stdout    io.Writer
}

// NewClient resolves conda from PATH. Returns ErrNotFound (wrapped) when
// the binary is absent; callers decide how to report it.
func NewClient() (*Client, error) {
	path, err := exec.LookPath("conda")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return NewClientWithPath(path), nil
}

// NewClientWithPath creates a client for a known conda binary, bypassing
// PATH resolution. Used when the config pins a conda location.
func NewClientWithPath(path string) *Client {
	return &Client{
		CondaPath: path,
		Stderr:    os.Stderr,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
	}
}

// Command creates a conda command.
// Note: Do not set Stdout/Stderr if you plan to use CombinedOutput()
func (c *Client) Command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, c.CondaPath, args...)
}

// CommandInteractive creates a conda command with stdio attached, so
// conda's own progress output reaches the terminal.
func (c *Client) CommandInteractive(ctx context.Context, args ...string) *exec.Cmd {
	cmd := c.Command(ctx, args...)
	cmd.Stderr = c.Stderr
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout

	return cmd
}

// output runs a command capturing stdout, converting failures into *Error
// with the captured stderr.
func (c *Client) output(cmd *exec.Cmd) ([]byte, error) {
	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, NewError(cmd.Args, stderr.String(), err)
	}

	return out, nil
}

// runInteractive runs an interactive command, converting failures into
// *Error. Stderr already went to the terminal, so the error carries only
// the exit code.
func (c *Client) runInteractive(cmd *exec.Cmd) error {
	if err := cmd.Run(); err != nil {
		return NewError(cmd.Args, "", err)
	}

	return nil
}

// Version reports the conda version, parsed and raw.
func (c *Client) Version(ctx context.Context) (semver.Version, string, error) {
	out, err := c.output(c.Command(ctx, "--version"))
	if err != nil {
		return semver.Version{}, "", err
	}

	raw := strings.TrimSpace(string(out))

	v, err := ParseVersion(raw)
	if err != nil {
		return semver.Version{}, raw, err
	}

	return v, raw, nil
}

// ParseVersion extracts a semver from "conda 24.1.2" style output.
func ParseVersion(raw string) (semver.Version, error) {
	fields := strings.Fields(raw)

	verStr := raw
	if len(fields) > 1 {
		verStr = fields[len(fields)-1]
	}

	v, err := semver.ParseTolerant(verStr)
	if err != nil {
		return semver.Version{}, fmt.Errorf("unrecognized conda version output %q: %w", raw, err)
	}

	return v, nil
}

// Env is one entry from conda env list.
type Env struct {
	Name string
	Path string
	Base bool
}

type envListOutput struct {
	Envs []string `json:"envs"`
}

// EnvList returns all conda environments.
func (c *Client) EnvList(ctx context.Context) ([]Env, error) {
	out, err := c.output(c.Command(ctx, "env", "list", "--json"))
	if err != nil {
		return nil, err
	}

	return parseEnvList(out)
}

func parseEnvList(data []byte) ([]Env, error) {
	var parsed envListOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse conda env list output: %w", err)
	}

	envs := make([]Env, 0, len(parsed.Envs))

	for _, path := range parsed.Envs {
		env := Env{Path: path}

		// Environments live under <root>/envs/<name>; anything else is
		// the base installation.
		parent := filepath.Base(filepath.Dir(path))
		if parent == "envs" {
			env.Name = filepath.Base(path)
		} else {
			env.Name = "base"
			env.Base = true
		}

		envs = append(envs, env)
	}

	return envs, nil
}

// EnvExists reports whether a named environment exists.
func (c *Client) EnvExists(ctx context.Context, name string) (bool, error) {
	envs, err := c.EnvList(ctx)
	if err != nil {
		return false, err
	}

	for _, env := range envs {
		if env.Name == name {
			return true, nil
		}
	}

	return false, nil
}

// CreateEnv creates a named environment. pythonSpec (e.g. "python=3.10")
// may be empty to create without an interpreter.
func (c *Client) CreateEnv(ctx context.Context, name, pythonSpec string) error {
	args := []string{"create", "-y", "-n", name}
	if pythonSpec != "" {
		args = append(args, pythonSpec)
	}

	return c.runInteractive(c.CommandInteractive(ctx, args...))
}

// InstallPackages installs packages into a named environment. Failures
// are conda's to report; the exit status is propagated unchanged.
func (c *Client) InstallPackages(ctx context.Context, name, channel string, packages ...string) error {
	args := []string{"install", "-y", "-n", name}
	if channel != "" {
		args = append(args, "-c", channel)
	}

	args = append(args, packages...)

	return c.runInteractive(c.CommandInteractive(ctx, args...))
}

// Package is one entry from conda list.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Channel string `json:"channel"`
}

// ListPackages returns the packages installed in a named environment.
func (c *Client) ListPackages(ctx context.Context, name string) ([]Package, error) {
	out, err := c.output(c.Command(ctx, "list", "-n", name, "--json"))
	if err != nil {
		return nil, err
	}

	return parsePackages(out)
}

func parsePackages(data []byte) ([]Package, error) {
	var pkgs []Package
	if err := json.Unmarshal(data, &pkgs); err != nil {
		return nil, fmt.Errorf("failed to parse conda list output: %w", err)
	}

	return pkgs, nil
}

// RemoveEnv deletes a named environment and everything in it.
func (c *Client) RemoveEnv(ctx context.Context, name string) error {
	return c.runInteractive(c.CommandInteractive(ctx, "env", "remove", "-y", "-n", name))
}

// ExportEnv returns the environment.yml content for a named environment.
func (c *Client) ExportEnv(ctx context.Context, name string) ([]byte, error) {
	return c.output(c.Command(ctx, "env", "export", "-n", name))
}

// RunIn runs a command inside a named environment via conda run, with
// stdio attached and output streamed. This is the non-interactive
// equivalent of activating the environment first.
func (c *Client) RunIn(ctx context.Context, name string, args ...string) error {
	runArgs := append([]string{"run", "-n", name, "--live-stream"}, args...)

	return c.runInteractive(c.CommandInteractive(ctx, runArgs...))
}

// RunInCommand builds the conda run command without executing it, for
// callers that need to manage the process themselves (PID tracking).
func (c *Client) RunInCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	runArgs := append([]string{"run", "-n", name, "--live-stream"}, args...)

	return c.CommandInteractive(ctx, runArgs...)
}

// RunInOutput runs a command inside a named environment capturing stdout.
func (c *Client) RunInOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	runArgs := append([]string{"run", "-n", name, "--live-stream"}, args...)

	return c.output(c.Command(ctx, runArgs...))
}
