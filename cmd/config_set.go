package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/config"
	"github.com/litkg/kgctl/internal/params"
)

var configSetCmd = &cobra.Command{
	Use:   "set <section.key> <value>",
	Short: "Set a configuration value",
	Long: `Updates one value in app_config.ini, addressed as section.key with the
key names as they appear in the file.

Examples:
  kgctl config set search.search_terms "Silicosis,Pneumoconiosis"
  kgctl config set search.max_results 500
  kgctl config set process.parallel false`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func runConfigSet(_ *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if err := settings.Set(args[0], args[1]); err != nil {
		return err
	}

	if err := config.Save(params.ConfigPath(), settings); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s %s updated\n", okStyle.Render("✓"), args[0])

	return nil
}
