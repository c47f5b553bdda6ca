package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/config"
	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/params"
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default app_config.ini",
	Long: `Creates app_config.ini in the data directory with default values: a
five-year PubMed search window, JSON output, and four parallel workers.
Refuses to overwrite an existing file unless --force is given.

Examples:
  kgctl config init
  kgctl config init --force`,
	RunE: runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := params.ConfigPath()

	force, _ := cmd.Flags().GetBool("force")
	if encoding.FileExists(path) && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	settings := config.Default()
	if err := config.Save(path, &settings); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s wrote %s\n", okStyle.Render("✓"), path)

	return nil
}
