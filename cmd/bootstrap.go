package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/bootstrap"
	"github.com/litkg/kgctl/internal/conda"
	"github.com/litkg/kgctl/internal/params"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Download the Miniconda installer for this platform",
	Long: `Downloads the Miniconda installer matching the current operating system
and architecture, prints its location and SHA-256 checksum, and shows
the command to install it. The installer is never executed.

Interrupted downloads resume where they left off.

Examples:
  kgctl bootstrap
  kgctl bootstrap --dir /tmp --force`,
	RunE: runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.Flags().String("dir", "", "Download directory (default: data dir downloads/)")
	bootstrapCmd.Flags().Bool("force", false, "Re-download even if the installer is already present")
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	if _, err := conda.NewClient(); err == nil {
		_, _ = fmt.Fprintf(os.Stdout, "%s conda is already on PATH; nothing to bootstrap\n", okStyle.Render("✓"))

		return nil
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = params.DownloadDir()
	}

	force, _ := cmd.Flags().GetBool("force")

	res, err := bootstrap.Download(cmd.Context(), bootstrap.Options{
		Dir:      dir,
		Force:    force,
		Progress: os.Stdout,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s downloaded %s\n", okStyle.Render("✓"), res.Path)
	_, _ = fmt.Fprintf(os.Stdout, "  sha256: %s\n", res.SHA256)
	_, _ = fmt.Fprintf(os.Stdout, "\nInstall it with:\n  %s\n", bootstrap.Instruction(res.Path))
	_, _ = fmt.Fprintf(os.Stdout, "Then run `kgctl setup` to provision the environment.\n")

	return nil
}
