package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/core"
	"github.com/litkg/kgctl/internal/model"
	"github.com/litkg/kgctl/internal/process"
)

const statusRunLimit = 10

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show environment state, run history, and app liveness",
	Long: `Shows what kgctl knows about the installation: the provisioned
environment record, the most recent pipeline runs, the article catalog
size, and whether the last launched application process is still alive.

Examples:
  kgctl status
  kgctl status --output yaml`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringP("output", "o", "table", "Output format (table, yaml)")
}

// statusReport is the YAML shape of a status run.
type statusReport struct {
	Environment *model.EnvRecord `yaml:"environment,omitempty"`
	Articles    int              `yaml:"articles"`
	App         *appStatus       `yaml:"app,omitempty"`
	Runs        []runStatusRow   `yaml:"runs,omitempty"`
}

type appStatus struct {
	PID       int       `yaml:"pid"`
	Entry     string    `yaml:"entry"`
	StartedAt time.Time `yaml:"started_at"`
	Running   bool      `yaml:"running"`
}

type runStatusRow struct {
	Kind     string    `yaml:"kind"`
	Status   string    `yaml:"status"`
	Term     string    `yaml:"term,omitempty"`
	Started  time.Time `yaml:"started"`
	Duration string    `yaml:"duration,omitempty"`
	Error    string    `yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	st := openStore()
	defer closeStore(st)

	report := statusReport{}

	if st != nil {
		if rec, err := st.GetEnvRecord(core.EnvName); err == nil {
			report.Environment = rec
		}

		if runs, err := st.ListRuns("", statusRunLimit); err == nil {
			for _, r := range runs {
				report.Runs = append(report.Runs, runStatusRow{
					Kind:     string(r.Kind),
					Status:   string(r.Status),
					Term:     r.Term,
					Started:  r.StartedAt,
					Duration: r.Duration().Round(time.Second).String(),
					Error:    truncateString(r.Error, 60),
				})
			}
		}

		if state, err := st.GetAppState(); err == nil && state != nil {
			report.App = &appStatus{
				PID:       state.PID,
				Entry:     state.Entry,
				StartedAt: state.StartedAt,
				Running:   process.Alive(state.PID),
			}
		}
	}

	if cat, err := openCatalog(); err == nil {
		if n, err := cat.Count(); err == nil {
			report.Articles = n
		}

		_ = cat.Close()
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "yaml" {
		return printYAML(report)
	}

	renderStatus(report)

	return nil
}

func renderStatus(report statusReport) {
	if report.Environment == nil {
		_, _ = fmt.Fprintf(os.Stdout, "%s environment %s has not been provisioned, run `kgctl setup`\n",
			warnStyle.Render("!"), core.EnvName)
	} else {
		rec := report.Environment
		_, _ = fmt.Fprintf(os.Stdout, "%s environment %s (conda %s, %s)\n",
			okStyle.Render("✓"), rec.Name, rec.CondaVersion, rec.PythonSpec)
		_, _ = fmt.Fprintf(os.Stdout, "  packages: %s\n", strings.Join(rec.Packages, ", "))
		_, _ = fmt.Fprintf(os.Stdout, "  verified: %s\n", rec.VerifiedAt.Format(time.RFC1123))
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s %d articles in the catalog\n", okStyle.Render("✓"), report.Articles)

	if report.App != nil {
		state := dimStyle.Render("stopped")
		if report.App.Running {
			state = okStyle.Render("running")
		}

		_, _ = fmt.Fprintf(os.Stdout, "%s last launch: %s (pid %d) %s\n",
			okStyle.Render("✓"), report.App.Entry, report.App.PID, state)
	}

	if len(report.Runs) == 0 {
		return
	}

	_, _ = fmt.Fprintln(os.Stdout)

	table := newTable(os.Stdout, []string{"Kind", "Status", "Term", "Started", "Duration", "Error"})

	for _, r := range report.Runs {
		status := r.Status
		switch r.Status {
		case string(model.RunStatusCompleted):
			status = okStyle.Render(r.Status)
		case string(model.RunStatusFailed):
			status = failStyle.Render(r.Status)
		}

		table.Append([]string{
			r.Kind, status, r.Term,
			r.Started.Format("2006-01-02 15:04"),
			r.Duration, r.Error,
		})
	}

	table.Render()
}
