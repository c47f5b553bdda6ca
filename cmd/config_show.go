package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/common"
	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/params"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration",
	Long: `Shows the effective configuration as a table with API keys redacted.
--raw prints the ini file verbatim, credentials included.

Examples:
  kgctl config show
  kgctl config show --raw`,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().Bool("raw", false, "Print the raw ini file without redaction")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetBool("raw")
	if raw {
		data, err := encoding.ReadFile(params.ConfigPath())
		if err != nil {
			return fmt.Errorf("no configuration file at %s, run `kgctl config init`", params.ConfigPath())
		}

		_, _ = os.Stdout.Write(data)

		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	table := newTable(os.Stdout, []string{"Key", "Value"})

	rows := [][]string{
		{"api.ncbi_email", settings.API.NCBIEmail},
		{"api.ncbi_api_key", common.RedactKey(settings.API.NCBIAPIKey)},
		{"api.moonshot_api_key", common.RedactKey(settings.API.MoonshotAPIKey)},
		{"search.search_terms", settings.Search.SearchTerms},
		{"search.start_date", settings.Search.StartDate},
		{"search.end_date", settings.Search.EndDate},
		{"search.max_results", strconv.Itoa(settings.Search.MaxResults)},
		{"search.database", settings.Search.Database},
		{"search.search_mode", settings.Search.SearchMode},
		{"process.output_dir", settings.Process.OutputDir},
		{"process.output_format", settings.Process.OutputFormat},
		{"process.parallel", strconv.FormatBool(settings.Process.Parallel)},
		{"process.max_workers", strconv.Itoa(settings.Process.MaxWorkers)},
		{"app.app_dir", settings.App.AppDir},
		{"app.entry", settings.App.Entry},
		{"app.process_entry", settings.App.ProcessEntry},
		{"app.python", settings.App.Python},
	}

	for _, row := range rows {
		table.Append(row)
	}

	table.Render()

	_, _ = fmt.Fprintf(os.Stdout, "\n%s\n", dimStyle.Render("file: "+params.ConfigPath()))

	return nil
}
