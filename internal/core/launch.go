package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/litkg/kgctl/internal/model"
	"github.com/litkg/kgctl/internal/store"
)

// LaunchOptions configures launching the Python application inside the
// managed environment.
type LaunchOptions struct {
	Entry  string   // script path, joined with Dir when relative
	Dir    string   // working directory for the process
	Python string   // interpreter name inside the environment
	Args   []string // extra arguments passed through to the script
	Logger *slog.Logger
}

// LaunchResult reports a completed application run.
type LaunchResult struct {
	PID      int
	ExitCode int
	Duration time.Duration
}

// LaunchApp runs the application entry script inside the managed
// environment and waits for it to finish. A non-zero exit from the script
// is not an error here; the code is reported in the result so the caller
// can propagate it as the process exit status.
func LaunchApp(ctx context.Context, mgr EnvManager, st store.Store, opts LaunchOptions) (*LaunchResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Entry == "" {
		opts.Entry = "kg_app.py"
	}

	if opts.Python == "" {
		opts.Python = "python"
	}

	exists, err := mgr.EnvExists(ctx, EnvName)
	if err != nil {
		return nil, fmt.Errorf("could not list environments: %w", err)
	}

	if !exists {
		return nil, fmt.Errorf("environment %q does not exist, run `kgctl setup` first", EnvName)
	}

	args := append([]string{opts.Python, opts.Entry}, opts.Args...)
	cmd := mgr.RunInCommand(ctx, EnvName, args...)

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	start := time.Now()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start %s: %w", opts.Entry, err)
	}

	res := &LaunchResult{PID: cmd.Process.Pid}

	logger.Info("application started", "pid", res.PID, "entry", opts.Entry)

	if st != nil {
		state := &model.AppState{PID: res.PID, Entry: opts.Entry, StartedAt: start}
		if err := st.SaveAppState(state); err != nil {
			logger.Warn("could not record app state", "error", err)
		}
	}

	err = cmd.Wait()
	res.Duration = time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()

			logger.Info("application exited", "code", res.ExitCode, "duration", res.Duration)

			return res, nil
		}

		return res, fmt.Errorf("waiting for %s: %w", opts.Entry, err)
	}

	logger.Info("application exited", "code", 0, "duration", res.Duration)

	return res, nil
}

// ResolveEntry joins the application directory with a relative entry
// script path. Absolute entries are returned unchanged.
func ResolveEntry(dir, entry string) string {
	if entry == "" || filepath.IsAbs(entry) || dir == "" {
		return entry
	}

	return filepath.Join(dir, entry)
}
