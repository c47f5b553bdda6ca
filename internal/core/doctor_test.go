package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blang/semver/v4"
	"github.com/stretchr/testify/require"

	"github.com/litkg/kgctl/internal/conda"
	"github.com/litkg/kgctl/internal/config"
)

func checkByName(t *testing.T, checks []Check, name string) Check {
	t.Helper()

	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}

	t.Fatalf("check %q not found in %v", name, checks)

	return Check{}
}

func TestDiagnoseHealthy(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "app_config.ini")
	require.NoError(t, os.WriteFile(configPath, []byte("[API]\n"), 0o600))

	entryPath := filepath.Join(dir, "kg_app.py")
	require.NoError(t, os.WriteFile(entryPath, []byte("print('ok')\n"), 0o644))

	mgr := NewMockEnvManager()
	mgr.Envs = []string{"base", EnvName}

	for _, name := range RequiredPackages {
		mgr.Packages = append(mgr.Packages, conda.Package{Name: name, Version: "1.0"})
	}

	settings := config.Default()
	settings.App.AppDir = dir
	settings.App.Entry = "kg_app.py"

	checks := Diagnose(context.Background(), DiagnoseOptions{
		Conda:      mgr,
		Store:      NewMockStore(),
		Settings:   &settings,
		ConfigPath: configPath,
	})

	for _, c := range checks {
		require.Equal(t, CheckOK, c.Status, "check %s: %s", c.Name, c.Detail)
	}

	require.Equal(t, "conda 24.1.2", checkByName(t, checks, "conda executable").Detail)
	require.Equal(t, "present", checkByName(t, checks, "environment kg").Detail)
}

func TestDiagnoseCondaMissing(t *testing.T) {
	checks := Diagnose(context.Background(), DiagnoseOptions{
		CondaErr:   conda.ErrNotFound,
		ConfigPath: filepath.Join(t.TempDir(), "missing.ini"),
	})

	execCheck := checkByName(t, checks, "conda executable")
	require.Equal(t, CheckFail, execCheck.Status)
	require.Contains(t, execCheck.Detail, "not found")

	// Environment and package checks are skipped without conda.
	for _, c := range checks {
		require.NotEqual(t, "environment kg", c.Name)
		require.NotEqual(t, "python packages", c.Name)
	}
}

func TestDiagnoseMissingEnvironment(t *testing.T) {
	mgr := NewMockEnvManager()
	mgr.Envs = []string{"base"}

	checks := Diagnose(context.Background(), DiagnoseOptions{Conda: mgr})

	envCheck := checkByName(t, checks, "environment kg")
	require.Equal(t, CheckFail, envCheck.Status)
	require.Contains(t, envCheck.Detail, "kgctl setup")
}

func TestDiagnoseMissingPackages(t *testing.T) {
	mgr := NewMockEnvManager()
	mgr.Envs = []string{EnvName}
	mgr.Packages = []conda.Package{
		{Name: "biopython", Version: "1.83"},
		{Name: "pandas", Version: "2.2.1"},
	}

	checks := Diagnose(context.Background(), DiagnoseOptions{Conda: mgr})

	pkgCheck := checkByName(t, checks, "python packages")
	require.Equal(t, CheckFail, pkgCheck.Status)
	require.Contains(t, pkgCheck.Detail, "networkx")
	require.Contains(t, pkgCheck.Detail, "urllib3")
	require.NotContains(t, pkgCheck.Detail, "biopython")
}

func TestDiagnoseOldConda(t *testing.T) {
	mgr := NewMockEnvManager()
	mgr.VersionValue = semver.MustParse("4.5.0")
	mgr.VersionRaw = "conda 4.5.0"
	mgr.Envs = []string{EnvName}

	checks := Diagnose(context.Background(), DiagnoseOptions{Conda: mgr})

	versionCheck := checkByName(t, checks, "conda version")
	require.Equal(t, CheckWarn, versionCheck.Status)
	require.Contains(t, versionCheck.Detail, "4.6.0")
}

func TestDiagnoseStoreFailure(t *testing.T) {
	st := NewMockStore()
	st.PingErr = os.ErrClosed

	checks := Diagnose(context.Background(), DiagnoseOptions{
		CondaErr: conda.ErrNotFound,
		Store:    st,
	})

	storeCheck := checkByName(t, checks, "state store")
	require.Equal(t, CheckFail, storeCheck.Status)
}
