package core

import (
	"context"
	"os/exec"

	"github.com/blang/semver/v4"

	"github.com/litkg/kgctl/internal/conda"
)

// EnvName is the conda environment the toolkit provisions and runs in.
const EnvName = "kg"

const (
	// DefaultPythonSpec pins the interpreter installed into a fresh
	// environment.
	DefaultPythonSpec = "python=3.10"

	// DefaultChannel is the conda channel packages are installed from.
	DefaultChannel = "conda-forge"
)

// RequiredPackages lists the Python packages the application depends on.
// They are installed in this order.
var RequiredPackages = []string{
	"biopython",
	"pandas",
	"networkx",
	"matplotlib",
	"pyvis",
	"requests",
	"tqdm",
	"rich",
	"configparser",
	"urllib3",
}

// MinCondaVersion is the oldest conda release the toolkit is known to
// work with. Older releases lack `conda run`.
var MinCondaVersion = semver.MustParse("4.6.0")

// EnvManager is the surface of the conda client used by the core
// operations. *conda.Client satisfies it.
type EnvManager interface {
	Version(ctx context.Context) (semver.Version, string, error)
	EnvExists(ctx context.Context, name string) (bool, error)
	CreateEnv(ctx context.Context, name, pythonSpec string) error
	InstallPackages(ctx context.Context, name, channel string, packages ...string) error
	ListPackages(ctx context.Context, name string) ([]conda.Package, error)
	RunInCommand(ctx context.Context, name string, args ...string) *exec.Cmd
}
