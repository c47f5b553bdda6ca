package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
	"github.com/litkg/kgctl/internal/params"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the kgctl installation",
	Long: `Runs the installation checks in order: the conda executable and its
version, the kg environment and its packages, the configuration file,
the application entry script, and the state store.

Exits with status 1 when any required check fails.

Examples:
  kgctl doctor
  kgctl doctor --output yaml`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringP("output", "o", "table", "Output format (table, yaml)")
}

// doctorReport is the YAML shape of a doctor run.
type doctorReport struct {
	Checks []doctorCheck `yaml:"checks"`
	Failed int           `yaml:"failed"`
}

type doctorCheck struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status"`
	Detail string `yaml:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, condaErr := condaClient(settings)

	st := openStore()
	defer closeStore(st)

	opts := core.DiagnoseOptions{
		Store:      st,
		Settings:   settings,
		ConfigPath: params.ConfigPath(),
	}

	if condaErr == nil {
		opts.Conda = client
	} else {
		opts.CondaErr = condaErr
	}

	checks := core.Diagnose(cmd.Context(), opts)

	failed := 0

	for _, c := range checks {
		if c.Status == core.CheckFail {
			failed++
		}
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "yaml" {
		report := doctorReport{Failed: failed}
		for _, c := range checks {
			report.Checks = append(report.Checks, doctorCheck{
				Name:   c.Name,
				Status: string(c.Status),
				Detail: c.Detail,
			})
		}

		if err := printYAML(report); err != nil {
			return err
		}
	} else {
		renderDoctorTable(checks)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}

	return nil
}

func renderDoctorTable(checks []core.Check) {
	table := newTable(os.Stdout, []string{"Check", "Status", "Details"})

	for _, c := range checks {
		table.Append([]string{c.Name, renderCheckStatus(c.Status), c.Detail})
	}

	table.Render()
}

func renderCheckStatus(status core.CheckStatus) string {
	switch status {
	case core.CheckOK:
		return okStyle.Render("ok")
	case core.CheckWarn:
		return warnStyle.Render("warn")
	default:
		return failStyle.Render("fail")
	}
}
