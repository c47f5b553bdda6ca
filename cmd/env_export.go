package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
)

var envExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the kg environment as environment.yml",
	Long: `Prints conda's environment.yml for the kg environment, or writes it to
a file with -o.

Examples:
  kgctl env export
  kgctl env export -o environment.yml`,
	RunE: runEnvExport,
}

func init() {
	envCmd.AddCommand(envExportCmd)
	envExportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
}

func runEnvExport(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, err := condaClient(settings)
	if err != nil {
		return err
	}

	data, err := client.ExportEnv(cmd.Context(), core.EnvName)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, _ = os.Stdout.Write(data)

		return nil
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s wrote %s\n", okStyle.Render("✓"), output)

	return nil
}
