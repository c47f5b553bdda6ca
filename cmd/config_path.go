package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/params"
)

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(_ *cobra.Command, _ []string) error {
		_, _ = fmt.Fprintln(os.Stdout, params.ConfigPath())

		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
}
