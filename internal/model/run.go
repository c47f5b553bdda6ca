package model

import "time"

// RunKind identifies which pipeline produced a run record.
type RunKind string

const (
	RunKindSetup   RunKind = "setup"
	RunKindCrawl   RunKind = "crawl"
	RunKindProcess RunKind = "process"
	RunKindBuild   RunKind = "build"
	RunKindMerge   RunKind = "merge"
)

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one invocation of a pipeline command.
type Run struct {
	// UID is the unique identifier for the run
	UID string `json:"uid"`

	// Kind identifies the pipeline (setup, crawl, process, build, merge)
	Kind RunKind `json:"kind"`

	// Status is the current or final state of the run
	Status RunStatus `json:"status"`

	// Term is the search term for crawl runs, empty otherwise
	Term string `json:"term,omitempty"`

	// OutputDir is where the run wrote its artifacts
	OutputDir string `json:"output_dir,omitempty"`

	// Counts holds per-run totals (articles, entities, relations, files)
	Counts map[string]int `json:"counts,omitempty"`

	// Error carries the failure reason for failed runs
	Error string `json:"error,omitempty"`

	// Timestamps for run lifecycle
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Duration returns the elapsed wall time of the run.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}

	return r.FinishedAt.Sub(r.StartedAt)
}

// EnvRecord captures the state of a provisioned conda environment.
type EnvRecord struct {
	// Name is the conda environment name
	Name string `json:"name"`

	// CondaVersion is the conda version that provisioned the environment
	CondaVersion string `json:"conda_version"`

	// PythonSpec is the interpreter spec requested at creation
	PythonSpec string `json:"python_spec"`

	// Packages is the package list requested at install time
	Packages []string `json:"packages"`

	// Channel is the conda channel used for installation
	Channel string `json:"channel,omitempty"`

	// Timestamps for when the environment was first created and last verified
	CreatedAt  time.Time `json:"created_at"`
	VerifiedAt time.Time `json:"verified_at,omitempty"`
}

// AppState tracks the most recent launch of the external application.
type AppState struct {
	// PID is the process id of the launched interpreter
	PID int `json:"pid"`

	// Entry is the script path that was launched
	Entry string `json:"entry"`

	// StartedAt is when the application was launched
	StartedAt time.Time `json:"started_at"`
}
