package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/litkg/kgctl/internal/model"
	"github.com/litkg/kgctl/internal/store"
)

// SetupOptions configures environment provisioning.
type SetupOptions struct {
	PythonSpec  string // interpreter spec passed to conda create
	Channel     string // conda channel for package installs
	SkipInstall bool   // create the environment but skip package installs
	DryRun      bool   // print the planned commands without running them
	Out         io.Writer
	Logger      *slog.Logger
}

// SetupResult reports what SetupEnv did.
type SetupResult struct {
	CondaVersion string
	Created      bool
	Installed    bool
	Duration     time.Duration
}

// SetupEnv provisions the managed conda environment: it creates the
// environment if it does not exist and installs the required packages.
// Both steps are idempotent, so re-running setup repairs a partial
// installation instead of failing.
func SetupEnv(ctx context.Context, mgr EnvManager, st store.Store, opts SetupOptions) (*SetupResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if opts.PythonSpec == "" {
		opts.PythonSpec = DefaultPythonSpec
	}

	if opts.Channel == "" {
		opts.Channel = DefaultChannel
	}

	start := time.Now()

	version, raw, err := mgr.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("conda version check failed: %w", err)
	}

	logger.Debug("detected conda", "version", raw)

	if version.LT(MinCondaVersion) {
		logger.Warn("conda is older than the minimum supported release",
			"version", raw, "minimum", MinCondaVersion.String())
	}

	if opts.DryRun {
		printSetupPlan(out, opts)

		return &SetupResult{CondaVersion: raw, Duration: time.Since(start)}, nil
	}

	run := StartRun(st, model.RunKindSetup, "")
	res := &SetupResult{CondaVersion: raw}

	exists, err := mgr.EnvExists(ctx, EnvName)
	if err != nil {
		err = fmt.Errorf("could not list environments: %w", err)
		FinishRun(st, run, nil, err)

		return nil, err
	}

	if exists {
		logger.Info("environment already exists", "name", EnvName)
	} else {
		logger.Info("creating environment", "name", EnvName, "python", opts.PythonSpec)

		if err := mgr.CreateEnv(ctx, EnvName, opts.PythonSpec); err != nil {
			err = fmt.Errorf("could not create environment %s: %w", EnvName, err)
			FinishRun(st, run, nil, err)

			return nil, err
		}

		res.Created = true
	}

	if !opts.SkipInstall {
		logger.Info("installing packages",
			"count", len(RequiredPackages), "channel", opts.Channel)

		if err := mgr.InstallPackages(ctx, EnvName, opts.Channel, RequiredPackages...); err != nil {
			err = fmt.Errorf("could not install packages: %w", err)
			FinishRun(st, run, nil, err)

			return nil, err
		}

		res.Installed = true
	}

	saveEnvRecord(st, raw, opts, logger)

	res.Duration = time.Since(start)

	FinishRun(st, run, map[string]int{"packages": len(RequiredPackages)}, nil)

	return res, nil
}

// printSetupPlan writes the conda commands setup would run, one per line.
func printSetupPlan(out io.Writer, opts SetupOptions) {
	_, _ = fmt.Fprintf(out, "conda create -y -n %s %s\n", EnvName, opts.PythonSpec)

	if opts.SkipInstall {
		return
	}

	_, _ = fmt.Fprintf(out, "conda install -y -n %s -c %s %s\n",
		EnvName, opts.Channel, strings.Join(RequiredPackages, " "))
}

func saveEnvRecord(st store.Store, condaVersion string, opts SetupOptions, logger *slog.Logger) {
	if st == nil {
		return
	}

	now := time.Now()

	rec, err := st.GetEnvRecord(EnvName)
	if err != nil || rec == nil {
		rec = &model.EnvRecord{Name: EnvName, CreatedAt: now}
	}

	rec.CondaVersion = condaVersion
	rec.PythonSpec = opts.PythonSpec
	rec.Packages = RequiredPackages
	rec.Channel = opts.Channel
	rec.VerifiedAt = now

	if err := st.SaveEnvRecord(rec); err != nil {
		logger.Warn("could not record environment state", "error", err)
	}
}
