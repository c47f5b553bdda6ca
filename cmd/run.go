package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
	"github.com/litkg/kgctl/internal/encoding"
)

var runCmd = &cobra.Command{
	Use:   "run [-- app args...]",
	Short: "Launch the knowledge-graph application inside the kg environment",
	Long: `Checks that conda is available and runs the application entry script
inside the "kg" environment, the non-interactive equivalent of
activating the environment and starting python. The application's exit
code becomes kgctl's exit code.

Arguments after -- are passed through to the application.

Examples:
  kgctl run
  kgctl run --entry pubmed_main.py
  kgctl run -- --headless`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("app-dir", "", "Directory containing the application (default from config)")
	runCmd.Flags().String("entry", "", "Entry script to launch (default from config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	appDir := flagOr(cmd.Flags(), "app-dir", settings.App.AppDir)
	entry := flagOr(cmd.Flags(), "entry", settings.App.Entry)

	resolved := core.ResolveEntry(appDir, entry)
	if !encoding.FileExists(resolved) {
		return fmt.Errorf("entry script %s not found; point --entry or [App] entry at the application", resolved)
	}

	client, err := condaClient(settings)
	if err != nil {
		return err
	}

	st := openStore()
	defer closeStore(st)

	var passthrough []string
	if at := cmd.Flags().ArgsLenAtDash(); at >= 0 {
		passthrough = args[at:]
	}

	res, err := core.LaunchApp(cmd.Context(), client, st, core.LaunchOptions{
		Entry:  entry,
		Dir:    appDir,
		Python: settings.App.Python,
		Args:   passthrough,
	})
	if err != nil {
		return err
	}

	if res.ExitCode != 0 {
		return &exitError{code: res.ExitCode}
	}

	return nil
}
