package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/litkg/kgctl/internal/config"
	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/store"
)

// CheckStatus classifies a diagnostic result.
type CheckStatus string

const (
	CheckOK   CheckStatus = "ok"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// Check is a single diagnostic result.
type Check struct {
	Name   string
	Status CheckStatus
	Detail string
}

// DiagnoseOptions carries everything the doctor inspects.
type DiagnoseOptions struct {
	Conda      EnvManager // nil when conda was not found on PATH
	CondaErr   error      // why Conda is nil
	Store      store.Store
	Settings   *config.Settings
	ConfigPath string
}

// Diagnose runs the installation checks in order and returns their
// results. It never fails; problems are reported as failed checks.
func Diagnose(ctx context.Context, opts DiagnoseOptions) []Check {
	var checks []Check

	checks = append(checks, condaChecks(ctx, opts.Conda, opts.CondaErr)...)
	checks = append(checks, configChecks(opts.Settings, opts.ConfigPath)...)
	checks = append(checks, storeCheck(opts.Store))

	return checks
}

// condaChecks covers the conda executable, its version, the managed
// environment, and the packages inside it. When conda itself is missing,
// the dependent checks are omitted.
func condaChecks(ctx context.Context, mgr EnvManager, condaErr error) []Check {
	if mgr == nil {
		detail := "not found on PATH"
		if condaErr != nil {
			detail = condaErr.Error()
		}

		return []Check{{Name: "conda executable", Status: CheckFail, Detail: detail}}
	}

	var checks []Check

	version, raw, err := mgr.Version(ctx)
	if err != nil {
		checks = append(checks, Check{
			Name:   "conda executable",
			Status: CheckFail,
			Detail: fmt.Sprintf("found, but `conda --version` failed: %v", err),
		})

		return checks
	}

	checks = append(checks, Check{Name: "conda executable", Status: CheckOK, Detail: raw})

	versionCheck := Check{Name: "conda version", Status: CheckOK, Detail: version.String()}
	if version.LT(MinCondaVersion) {
		versionCheck.Status = CheckWarn
		versionCheck.Detail = fmt.Sprintf("%s is older than the supported minimum %s", version, MinCondaVersion)
	}

	checks = append(checks, versionCheck)

	exists, err := mgr.EnvExists(ctx, EnvName)
	switch {
	case err != nil:
		checks = append(checks, Check{
			Name:   "environment " + EnvName,
			Status: CheckFail,
			Detail: fmt.Sprintf("could not list environments: %v", err),
		})

		return checks
	case !exists:
		checks = append(checks, Check{
			Name:   "environment " + EnvName,
			Status: CheckFail,
			Detail: "missing, run `kgctl setup`",
		})

		return checks
	}

	checks = append(checks, Check{Name: "environment " + EnvName, Status: CheckOK, Detail: "present"})
	checks = append(checks, packagesCheck(ctx, mgr))

	return checks
}

func packagesCheck(ctx context.Context, mgr EnvManager) Check {
	check := Check{Name: "python packages"}

	pkgs, err := mgr.ListPackages(ctx, EnvName)
	if err != nil {
		check.Status = CheckFail
		check.Detail = fmt.Sprintf("could not list packages: %v", err)

		return check
	}

	installed := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		installed[p.Name] = true
	}

	var missing []string

	for _, name := range RequiredPackages {
		if !installed[name] {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		check.Status = CheckFail
		check.Detail = "missing: " + strings.Join(missing, ", ")

		return check
	}

	check.Status = CheckOK
	check.Detail = fmt.Sprintf("%d required packages present", len(RequiredPackages))

	return check
}

func configChecks(settings *config.Settings, configPath string) []Check {
	var checks []Check

	fileCheck := Check{Name: "config file", Status: CheckOK, Detail: configPath}
	if !encoding.FileExists(configPath) {
		fileCheck.Status = CheckWarn
		fileCheck.Detail = "not found, defaults in use"
	}

	checks = append(checks, fileCheck)

	if settings == nil {
		return checks
	}

	entry := ResolveEntry(settings.App.AppDir, settings.App.Entry)

	entryCheck := Check{Name: "entry script", Status: CheckOK, Detail: entry}
	if !encoding.FileExists(entry) {
		entryCheck.Status = CheckWarn
		entryCheck.Detail = fmt.Sprintf("%s not found", entry)
	}

	checks = append(checks, entryCheck)

	return checks
}

func storeCheck(st store.Store) Check {
	check := Check{Name: "state store"}

	if st == nil {
		check.Status = CheckWarn
		check.Detail = "not opened"

		return check
	}

	if err := st.Ping(); err != nil {
		check.Status = CheckFail
		check.Detail = err.Error()

		return check
	}

	check.Status = CheckOK
	check.Detail = "reachable"

	return check
}
