package core

import (
	"log/slog"
	"time"

	"github.com/litkg/kgctl/internal/model"
	"github.com/litkg/kgctl/internal/store"
)

// StartRun records the beginning of an operation in the state store and
// returns the record so the caller can finish it later. A nil store is
// tolerated so operations work without persistence.
func StartRun(st store.Store, kind model.RunKind, term string) *model.Run {
	run := &model.Run{
		Kind:      kind,
		Status:    model.RunStatusRunning,
		Term:      term,
		StartedAt: time.Now(),
	}

	if st == nil {
		return run
	}

	if err := st.SaveRun(run); err != nil {
		slog.Warn("could not record run start", "kind", kind, "error", err)
	}

	return run
}

// FinishRun closes out a run record with its counts and final status.
func FinishRun(st store.Store, run *model.Run, counts map[string]int, runErr error) {
	if run == nil {
		return
	}

	run.FinishedAt = time.Now()
	run.Counts = counts

	if runErr != nil {
		run.Status = model.RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = model.RunStatusCompleted
	}

	if st == nil {
		return
	}

	if err := st.SaveRun(run); err != nil {
		slog.Warn("could not record run result", "kind", run.Kind, "error", err)
	}
}
