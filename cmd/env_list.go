package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
)

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conda environments",
	Long: `Lists every conda environment on this machine, marking the managed
"kg" environment.

Examples:
  kgctl env list`,
	RunE: runEnvList,
}

func init() {
	envCmd.AddCommand(envListCmd)
}

func runEnvList(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, err := condaClient(settings)
	if err != nil {
		return err
	}

	envs, err := client.EnvList(cmd.Context())
	if err != nil {
		return err
	}

	table := newTable(os.Stdout, []string{"", "Name", "Path"})

	for _, env := range envs {
		marker := ""
		if env.Name == core.EnvName {
			marker = okStyle.Render("*")
		}

		table.Append([]string{marker, env.Name, env.Path})
	}

	table.Render()

	return nil
}
