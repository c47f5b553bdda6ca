package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
)

var envPackagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List the packages installed in the kg environment",
	Long: `Lists every package conda reports for the kg environment, marking the
ones the knowledge-graph application requires. Required packages that
are missing are listed below the table.

Examples:
  kgctl env packages
  kgctl env packages --required`,
	RunE: runEnvPackages,
}

func init() {
	envCmd.AddCommand(envPackagesCmd)
	envPackagesCmd.Flags().Bool("required", false, "Show only the required packages")
}

func runEnvPackages(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, err := condaClient(settings)
	if err != nil {
		return err
	}

	pkgs, err := client.ListPackages(cmd.Context(), core.EnvName)
	if err != nil {
		return err
	}

	required := make(map[string]bool, len(core.RequiredPackages))
	for _, name := range core.RequiredPackages {
		required[name] = false
	}

	onlyRequired, _ := cmd.Flags().GetBool("required")

	table := newTable(os.Stdout, []string{"", "Package", "Version", "Channel"})

	for _, p := range pkgs {
		_, isRequired := required[p.Name]
		if isRequired {
			required[p.Name] = true
		}

		if onlyRequired && !isRequired {
			continue
		}

		marker := ""
		if isRequired {
			marker = okStyle.Render("*")
		}

		table.Append([]string{marker, p.Name, p.Version, p.Channel})
	}

	table.Render()

	var missing []string

	for _, name := range core.RequiredPackages {
		if !required[name] {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		_, _ = fmt.Fprintf(os.Stdout, "\n%s missing required packages: %s (run `kgctl setup`)\n",
			failStyle.Render("✗"), strings.Join(missing, ", "))
	}

	return nil
}
