package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/litkg/kgctl/internal/model"
)

func setupTestDB(t *testing.T) (*Bolt, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "kgctl-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.storage")

	db, err := New(dbPath)
	if err != nil {
		_ = os.RemoveAll(tmpDir)

		t.Fatalf("failed to create test database: %v", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}

		_ = os.RemoveAll(tmpDir)
	}

	return db, cleanup
}

func TestBolt_Ping(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.Ping(); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}
}

func TestBolt_SaveRunAssignsUID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	run := &model.Run{Kind: model.RunKindCrawl, Status: model.RunStatusRunning, StartedAt: time.Now()}

	if err := db.SaveRun(run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	if run.UID == "" {
		t.Fatal("SaveRun() did not assign a UID")
	}

	got, err := db.GetRun(run.UID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if got == nil || got.Kind != model.RunKindCrawl {
		t.Errorf("GetRun() = %+v, want crawl run", got)
	}
}

func TestBolt_SaveRunNil(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.SaveRun(nil); err == nil {
		t.Error("SaveRun(nil) error = nil, want error")
	}
}

func TestBolt_GetRunMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := db.GetRun("no-such-uid")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if got != nil {
		t.Errorf("GetRun() = %+v, want nil for missing run", got)
	}
}

func TestBolt_ListRunsOrderAndFilter(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	runs := []*model.Run{
		{Kind: model.RunKindCrawl, Status: model.RunStatusCompleted, StartedAt: base},
		{Kind: model.RunKindProcess, Status: model.RunStatusCompleted, StartedAt: base.Add(time.Hour)},
		{Kind: model.RunKindCrawl, Status: model.RunStatusFailed, StartedAt: base.Add(2 * time.Hour)},
	}

	for _, r := range runs {
		if err := db.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
	}

	all, err := db.ListRuns("", 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}

	if len(all) != 3 {
		t.Fatalf("ListRuns() returned %d runs, want 3", len(all))
	}

	if !all[0].StartedAt.After(all[1].StartedAt) || !all[1].StartedAt.After(all[2].StartedAt) {
		t.Error("ListRuns() not sorted newest first")
	}

	crawls, err := db.ListRuns(model.RunKindCrawl, 0)
	if err != nil {
		t.Fatalf("ListRuns(crawl) error = %v", err)
	}

	if len(crawls) != 2 {
		t.Errorf("ListRuns(crawl) returned %d runs, want 2", len(crawls))
	}

	limited, err := db.ListRuns("", 1)
	if err != nil {
		t.Fatalf("ListRuns(limit) error = %v", err)
	}

	if len(limited) != 1 {
		t.Errorf("ListRuns(limit 1) returned %d runs, want 1", len(limited))
	}
}

func TestBolt_EnvRecordRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	missing, err := db.GetEnvRecord("kg")
	if err != nil {
		t.Fatalf("GetEnvRecord() error = %v", err)
	}

	if missing != nil {
		t.Errorf("GetEnvRecord() = %+v before save, want nil", missing)
	}

	rec := &model.EnvRecord{
		Name:         "kg",
		CondaVersion: "24.1.2",
		PythonSpec:   "python=3.10",
		Packages:     []string{"biopython", "pandas"},
		CreatedAt:    time.Now(),
	}

	if err := db.SaveEnvRecord(rec); err != nil {
		t.Fatalf("SaveEnvRecord() error = %v", err)
	}

	got, err := db.GetEnvRecord("kg")
	if err != nil {
		t.Fatalf("GetEnvRecord() error = %v", err)
	}

	if got == nil || got.CondaVersion != "24.1.2" || len(got.Packages) != 2 {
		t.Errorf("GetEnvRecord() = %+v", got)
	}
}

func TestBolt_EnvRecordRequiresName(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.SaveEnvRecord(&model.EnvRecord{}); err == nil {
		t.Error("SaveEnvRecord() error = nil for unnamed record")
	}
}

func TestBolt_AppStateRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	state, err := db.GetAppState()
	if err != nil {
		t.Fatalf("GetAppState() error = %v", err)
	}

	if state != nil {
		t.Errorf("GetAppState() = %+v before save, want nil", state)
	}

	if err := db.SaveAppState(&model.AppState{PID: 4242, Entry: "kg_app.py", StartedAt: time.Now()}); err != nil {
		t.Fatalf("SaveAppState() error = %v", err)
	}

	state, err = db.GetAppState()
	if err != nil {
		t.Fatalf("GetAppState() error = %v", err)
	}

	if state == nil || state.PID != 4242 {
		t.Errorf("GetAppState() = %+v, want PID 4242", state)
	}
}
