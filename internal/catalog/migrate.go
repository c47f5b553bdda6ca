package catalog

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration represents a database migration.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
	DownSQL     string
}

// MigrationRecord represents a record in the schema_migrations table.
type MigrationRecord struct {
	Version     int
	AppliedAt   time.Time
	Description string
}

// Migrator handles database migrations.
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new migration handler.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

var migrationNameRe = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// LoadMigrations loads all migrations from the embedded filesystem.
// Files follow the 001_description.up.sql / 001_description.down.sql
// naming convention.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	migrations := make(map[int]*Migration)

	err := fs.WalkDir(migrationsFS, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		filename := filepath.Base(path)

		matches := migrationNameRe.FindStringSubmatch(filename)
		if len(matches) != 4 {
			return nil
		}

		version, _ := strconv.Atoi(matches[1])
		description := strings.ReplaceAll(matches[2], "_", " ")
		direction := matches[3]

		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", path, err)
		}

		if _, exists := migrations[version]; !exists {
			migrations[version] = &Migration{
				Version:     version,
				Description: description,
			}
		}

		if direction == "up" {
			migrations[version].UpSQL = string(content)
		} else {
			migrations[version].DownSQL = string(content)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking migrations: %w", err)
	}

	var result []Migration
	for _, mig := range migrations {
		result = append(result, *mig)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result, nil
}

// CurrentVersion returns the current schema version.
func (m *Migrator) CurrentVersion() (int, error) {
	var tableName string

	err := m.db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_migrations'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("checking schema_migrations table: %w", err)
	}

	var version int

	err = m.db.QueryRow(`
		SELECT COALESCE(MAX(version), 0) FROM schema_migrations
	`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("getting current version: %w", err)
	}

	return version, nil
}

// MigrateUp applies all pending migrations and records each applied
// version in schema_migrations.
func (m *Migrator) MigrateUp() error {
	if err := m.ensureMigrationsTable(); err != nil {
		return err
	}

	migrations, err := m.LoadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	currentVersion, err := m.CurrentVersion()
	if err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	for _, mig := range migrations {
		if mig.Version <= currentVersion {
			continue
		}

		if mig.UpSQL == "" {
			return fmt.Errorf("migration %d has no up SQL", mig.Version)
		}

		if err := m.runMigration(mig); err != nil {
			return fmt.Errorf("applying migration %d (%s): %w", mig.Version, mig.Description, err)
		}
	}

	return nil
}

// PendingMigrations returns migrations that have not been applied.
func (m *Migrator) PendingMigrations() ([]Migration, error) {
	migrations, err := m.LoadMigrations()
	if err != nil {
		return nil, err
	}

	currentVersion, err := m.CurrentVersion()
	if err != nil {
		return nil, err
	}

	var pending []Migration

	for _, mig := range migrations {
		if mig.Version > currentVersion {
			pending = append(pending, mig)
		}
	}

	return pending, nil
}

func (m *Migrator) ensureMigrationsTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	return nil
}

// runMigration executes one migration and its version record in a single
// transaction.
func (m *Migrator) runMigration(mig Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(mig.UpSQL); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}

	if _, err = tx.Exec(
		`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
		mig.Version, mig.Description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
