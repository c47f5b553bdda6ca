package core

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/blang/semver/v4"

	"github.com/litkg/kgctl/internal/conda"
	"github.com/litkg/kgctl/internal/model"
)

// MockEnvManager is a mock implementation of EnvManager for testing.
type MockEnvManager struct {
	// Conda state
	VersionValue semver.Version
	VersionRaw   string
	Envs         []string
	Packages     []conda.Package

	// Error injection
	VersionErr   error
	EnvExistsErr error
	CreateErr    error
	InstallErr   error
	ListErr      error

	// Call tracking
	CreateCalled      bool
	CreatedName       string
	CreatedSpec       string
	InstallCalled     bool
	InstalledName     string
	InstalledChannel  string
	InstalledPackages []string
	RunName           string
	RunArgs           []string
	RunExit           int
}

// NewMockEnvManager returns a mock reporting a healthy conda 24.1.2.
func NewMockEnvManager() *MockEnvManager {
	return &MockEnvManager{
		VersionValue: semver.MustParse("24.1.2"),
		VersionRaw:   "conda 24.1.2",
	}
}

// Version implements EnvManager.
func (m *MockEnvManager) Version(_ context.Context) (semver.Version, string, error) {
	if m.VersionErr != nil {
		return semver.Version{}, "", m.VersionErr
	}

	return m.VersionValue, m.VersionRaw, nil
}

// EnvExists implements EnvManager.
func (m *MockEnvManager) EnvExists(_ context.Context, name string) (bool, error) {
	if m.EnvExistsErr != nil {
		return false, m.EnvExistsErr
	}

	for _, env := range m.Envs {
		if env == name {
			return true, nil
		}
	}

	return false, nil
}

// CreateEnv implements EnvManager.
func (m *MockEnvManager) CreateEnv(_ context.Context, name, pythonSpec string) error {
	m.CreateCalled = true

	m.CreatedName = name
	m.CreatedSpec = pythonSpec

	if m.CreateErr != nil {
		return m.CreateErr
	}

	m.Envs = append(m.Envs, name)

	return nil
}

// InstallPackages implements EnvManager.
func (m *MockEnvManager) InstallPackages(_ context.Context, name, channel string, packages ...string) error {
	m.InstallCalled = true

	m.InstalledName = name
	m.InstalledChannel = channel
	m.InstalledPackages = packages

	return m.InstallErr
}

// ListPackages implements EnvManager.
func (m *MockEnvManager) ListPackages(_ context.Context, _ string) ([]conda.Package, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	return m.Packages, nil
}

// RunInCommand implements EnvManager. The returned command is a real
// process that exits with RunExit, so launch tests exercise the full
// start/wait path.
func (m *MockEnvManager) RunInCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	m.RunName = name
	m.RunArgs = args

	return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("exit %d", m.RunExit))
}

// MockStore is an in-memory store.Store for testing.
type MockStore struct {
	Runs    []model.Run
	EnvRecs map[string]model.EnvRecord
	App     *model.AppState

	PingErr    error
	SaveRunErr error
}

func NewMockStore() *MockStore {
	return &MockStore{EnvRecs: map[string]model.EnvRecord{}}
}

func (s *MockStore) Ping() error { return s.PingErr }

func (s *MockStore) Close() error { return nil }

func (s *MockStore) SaveRun(run *model.Run) error {
	if s.SaveRunErr != nil {
		return s.SaveRunErr
	}

	if run.UID == "" {
		run.UID = fmt.Sprintf("run-%d", len(s.Runs)+1)
	}

	for i := range s.Runs {
		if s.Runs[i].UID == run.UID {
			s.Runs[i] = *run
			return nil
		}
	}

	s.Runs = append(s.Runs, *run)

	return nil
}

func (s *MockStore) GetRun(uid string) (*model.Run, error) {
	for i := range s.Runs {
		if s.Runs[i].UID == uid {
			run := s.Runs[i]
			return &run, nil
		}
	}

	return nil, nil
}

func (s *MockStore) ListRuns(kind model.RunKind, limit int) ([]model.Run, error) {
	var runs []model.Run

	for _, run := range s.Runs {
		if kind != "" && run.Kind != kind {
			continue
		}

		runs = append(runs, run)
	}

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

func (s *MockStore) SaveEnvRecord(rec *model.EnvRecord) error {
	s.EnvRecs[rec.Name] = *rec
	return nil
}

func (s *MockStore) GetEnvRecord(name string) (*model.EnvRecord, error) {
	rec, ok := s.EnvRecs[name]
	if !ok {
		return nil, nil
	}

	return &rec, nil
}

func (s *MockStore) SaveAppState(state *model.AppState) error {
	s.App = state
	return nil
}

func (s *MockStore) GetAppState() (*model.AppState, error) {
	return s.App, nil
}
