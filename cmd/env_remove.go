package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
)

var envRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete the kg environment",
	Long: `Deletes the kg conda environment and everything installed in it. Asks
for confirmation unless --yes is given.

Examples:
  kgctl env remove
  kgctl env remove --yes`,
	RunE: runEnvRemove,
}

func init() {
	envCmd.AddCommand(envRemoveCmd)
	envRemoveCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

func runEnvRemove(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, err := condaClient(settings)
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && !promptConfirm(fmt.Sprintf("Delete environment %q and all its packages? [y/N]: ", core.EnvName)) {
		_, _ = fmt.Fprintln(os.Stdout, "aborted")

		return nil
	}

	if err := client.RemoveEnv(cmd.Context(), core.EnvName); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s environment %s removed\n", okStyle.Render("✓"), core.EnvName)

	return nil
}
