package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/litkg/kgctl/internal/config"
	"github.com/litkg/kgctl/internal/params"
)

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <ncbi|moonshot>",
	Short: "Set an API key without echoing it",
	Long: `Prompts for an API key with terminal echo disabled and stores it in
app_config.ini. "ncbi" sets the NCBI E-utilities key used by the
crawler, "moonshot" the LLM key used by the external extractor.

Examples:
  kgctl config set-key ncbi
  kgctl config set-key moonshot`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configSetKeyCmd)
}

func runConfigSetKey(_ *cobra.Command, args []string) error {
	which := strings.ToLower(args[0])
	if which != "ncbi" && which != "moonshot" {
		return fmt.Errorf("unknown key %q, expected ncbi or moonshot", args[0])
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Enter %s API key: ", which)

	key, err := term.ReadPassword(int(os.Stdin.Fd()))

	_, _ = fmt.Fprintln(os.Stdout)

	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	value := strings.TrimSpace(string(key))
	if value == "" {
		return fmt.Errorf("empty key, nothing saved")
	}

	switch which {
	case "ncbi":
		settings.API.NCBIAPIKey = value
	case "moonshot":
		settings.API.MoonshotAPIKey = value
	}

	if err := config.Save(params.ConfigPath(), settings); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s %s API key saved\n", okStyle.Render("✓"), which)

	return nil
}
