package store

import (
	"github.com/litkg/kgctl/internal/model"
)

// Store defines the state persistence operations used by the app.
type Store interface {
	Ping() error
	Close() error

	// Run history
	SaveRun(run *model.Run) error
	GetRun(uid string) (*model.Run, error)
	ListRuns(kind model.RunKind, limit int) ([]model.Run, error)

	// Environment records
	SaveEnvRecord(rec *model.EnvRecord) error
	GetEnvRecord(name string) (*model.EnvRecord, error)

	// Application launch state
	SaveAppState(state *model.AppState) error
	GetAppState() (*model.AppState, error)
}
