package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/litkg/kgctl/internal/catalog"
	"github.com/litkg/kgctl/internal/conda"
	"github.com/litkg/kgctl/internal/config"
	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/params"
	"github.com/litkg/kgctl/internal/store"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// loadSettings reads app_config.ini from the data directory; a missing
// file yields the defaults.
func loadSettings() (*config.Settings, error) {
	return config.Load(params.ConfigPath())
}

// condaClient resolves the conda binary, preferring a path pinned in the
// configuration over PATH lookup. The returned error carries the hint
// users need when conda is absent.
func condaClient(settings *config.Settings) (*conda.Client, error) {
	if settings != nil && settings.App.CondaPath != "" {
		if !encoding.FileExists(settings.App.CondaPath) {
			return nil, fmt.Errorf("configured conda binary %s does not exist", settings.App.CondaPath)
		}

		return conda.NewClientWithPath(settings.App.CondaPath), nil
	}

	client, err := conda.NewClient()
	if err != nil {
		return nil, fmt.Errorf("conda is required but was not found on PATH; install Miniconda (see `kgctl bootstrap`) and retry: %w", err)
	}

	return client, nil
}

// openStore opens the bbolt state store. Failures are downgraded to a
// warning: state tracking is never worth blocking an operation over.
func openStore() store.Store {
	st, err := store.New(params.StatePath())
	if err != nil {
		slog.Warn("state store unavailable", "error", err)

		return nil
	}

	return st
}

func closeStore(st store.Store) {
	if st == nil {
		return
	}

	if err := st.Close(); err != nil {
		slog.Warn("failed to close state store", "error", err)
	}
}

// openCatalog opens the sqlite article catalog in the data directory.
func openCatalog() (*catalog.Catalog, error) {
	return catalog.New(params.CatalogPath())
}

// newTable returns a tablewriter configured the way every kgctl listing
// renders.
func newTable(out io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(headers)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator("-")
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	return table
}

// flagOr returns the string flag's value, falling back to the
// configured value when the flag was left empty.
func flagOr(flags *pflag.FlagSet, name, fallback string) string {
	v, _ := flags.GetString(name)
	if v == "" {
		return fallback
	}

	return v
}

// printYAML renders v as YAML on stdout, for --output yaml views.
func printYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to render yaml: %w", err)
	}

	_, _ = os.Stdout.Write(data)

	return nil
}

// promptConfirm asks the user for confirmation and returns true if they
// confirm. prompt should include the question (e.g. "Remove? [y/N]: ").
func promptConfirm(prompt string) bool {
	_, _ = fmt.Fprint(os.Stdout, prompt)

	var response string

	_, _ = fmt.Scanln(&response)

	return response == "y" || response == "Y"
}

// truncateString truncates a string to the specified length with an
// ellipsis, for table cells.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
