package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the kg conda environment and install its packages",
	Long: `Checks that conda is available, creates the "kg" environment if it does
not exist, and installs the Python packages the knowledge-graph
application depends on. Re-running setup is safe; existing environments
are kept and only the package install is repeated.

Package installation failures are conda's to report; kgctl propagates
the exit status without retrying.

Examples:
  kgctl setup
  kgctl setup --dry-run
  kgctl setup --python python=3.11 --channel conda-forge`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
	setupCmd.Flags().Bool("dry-run", false, "Print the conda commands without running them")
	setupCmd.Flags().Bool("skip-install", false, "Create the environment but skip package installation")
	setupCmd.Flags().String("python", core.DefaultPythonSpec, "Interpreter spec passed to conda create")
	setupCmd.Flags().String("channel", core.DefaultChannel, "Conda channel used for package installation")
}

func runSetup(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, err := condaClient(settings)
	if err != nil {
		return err
	}

	st := openStore()
	defer closeStore(st)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	skipInstall, _ := cmd.Flags().GetBool("skip-install")
	pythonSpec, _ := cmd.Flags().GetString("python")
	channel, _ := cmd.Flags().GetString("channel")

	res, err := core.SetupEnv(cmd.Context(), client, st, core.SetupOptions{
		PythonSpec:  pythonSpec,
		Channel:     channel,
		SkipInstall: skipInstall,
		DryRun:      dryRun,
	})
	if err != nil {
		return err
	}

	if dryRun {
		return nil
	}

	if res.Created {
		_, _ = fmt.Fprintf(os.Stdout, "%s environment %s created\n", okStyle.Render("✓"), core.EnvName)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "%s environment %s already present\n", okStyle.Render("✓"), core.EnvName)
	}

	if res.Installed {
		_, _ = fmt.Fprintf(os.Stdout, "%s installed %d packages: %s\n",
			okStyle.Render("✓"), len(core.RequiredPackages), strings.Join(core.RequiredPackages, ", "))
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s\n", dimStyle.Render(fmt.Sprintf("conda %s, took %s", res.CondaVersion, res.Duration.Round(time.Second))))

	return nil
}
