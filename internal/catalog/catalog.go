// Package catalog stores fetched PubMed articles in an embedded sqlite
// database, giving crawls deduplication and resume across runs.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/litkg/kgctl/internal/model"
)

// Catalog is the sqlite-backed article store.
type Catalog struct {
	db *sql.DB
}

// New opens (or creates) the catalog at dbPath and applies pending
// migrations.
func New(dbPath string) (*Catalog, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't handle multiple writers well
	db.SetMaxOpenConns(1)

	if err := NewMigrator(db).MigrateUp(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Ping verifies the database connection.
func (c *Catalog) Ping() error {
	return c.db.Ping()
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

const articleColumns = `pmid, title, abstract, authors, journal, publication_date,
	publication_type, mesh_terms, chemicals, language, doi, search_term, fetched_at`

// Upsert inserts articles, ignoring PMIDs already present. Returns the
// number of newly inserted rows.
func (c *Catalog) Upsert(articles []model.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (` + articleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pmid) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}

	defer func() { _ = stmt.Close() }()

	inserted := 0

	for _, a := range articles {
		if a.PMID == "" {
			continue
		}

		fetchedAt := a.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now()
		}

		res, err := stmt.Exec(
			a.PMID, a.Title, a.Abstract, a.Authors, a.Journal, a.PublicationDate,
			a.PublicationType, a.MeshTerms, a.Chemicals, a.Language, a.DOI,
			a.SearchTerm, fetchedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return inserted, fmt.Errorf("inserting article %s: %w", a.PMID, err)
		}

		n, err := res.RowsAffected()
		if err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("committing transaction: %w", err)
	}

	return inserted, nil
}

// Has reports whether a PMID is already cataloged.
func (c *Catalog) Has(pmid string) (bool, error) {
	var one int

	err := c.db.QueryRow(`SELECT 1 FROM articles WHERE pmid = ?`, pmid).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("querying article %s: %w", pmid, err)
	}

	return true, nil
}

// FilterNew returns the subset of pmids not yet cataloged, preserving
// order. Used by resumed crawls to skip already fetched records.
func (c *Catalog) FilterNew(pmids []string) ([]string, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(pmids)), ",")

	args := make([]any, len(pmids))
	for i, id := range pmids {
		args[i] = id
	}

	rows, err := c.db.Query(`SELECT pmid FROM articles WHERE pmid IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying existing pmids: %w", err)
	}

	defer func() { _ = rows.Close() }()

	existing := make(map[string]bool, len(pmids))

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning pmid: %w", err)
		}

		existing[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var fresh []string

	for _, id := range pmids {
		if !existing[id] {
			fresh = append(fresh, id)
		}
	}

	return fresh, nil
}

// ListOptions filters List results.
type ListOptions struct {
	// Term restricts results to one search term when non-empty
	Term string

	// Limit caps the number of rows when positive
	Limit int
}

// List returns cataloged articles, most recently fetched first.
func (c *Catalog) List(opts ListOptions) ([]model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`

	var args []any

	if opts.Term != "" {
		query += ` WHERE search_term = ?`

		args = append(args, opts.Term)
	}

	query += ` ORDER BY fetched_at DESC, pmid DESC`

	if opts.Limit > 0 {
		query += ` LIMIT ?`

		args = append(args, opts.Limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var out []model.Article

	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	return out, rows.Err()
}

func scanArticle(rows *sql.Rows) (model.Article, error) {
	var (
		a         model.Article
		fetchedAt string
	)

	err := rows.Scan(
		&a.PMID, &a.Title, &a.Abstract, &a.Authors, &a.Journal, &a.PublicationDate,
		&a.PublicationType, &a.MeshTerms, &a.Chemicals, &a.Language, &a.DOI,
		&a.SearchTerm, &fetchedAt,
	)
	if err != nil {
		return model.Article{}, fmt.Errorf("scanning article: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		a.FetchedAt = t
	}

	return a, nil
}

// Count returns the number of cataloged articles.
func (c *Catalog) Count() (int, error) {
	var n int

	if err := c.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}

	return n, nil
}

// TermCount is the number of articles fetched for one search term.
type TermCount struct {
	Term  string
	Count int
}

// CountByTerm returns article counts grouped by search term, largest
// first.
func (c *Catalog) CountByTerm() ([]TermCount, error) {
	rows, err := c.db.Query(`
		SELECT search_term, COUNT(*) AS n
		FROM articles
		GROUP BY search_term
		ORDER BY n DESC, search_term ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("counting by term: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var out []TermCount

	for rows.Next() {
		var tc TermCount
		if err := rows.Scan(&tc.Term, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning term count: %w", err)
		}

		out = append(out, tc)
	}

	return out, rows.Err()
}

// YearCount is the number of articles published in one year.
type YearCount struct {
	Year  string
	Count int
}

// CountByYear returns article counts grouped by publication year,
// newest first. Articles without a parseable year are skipped.
func (c *Catalog) CountByYear() ([]YearCount, error) {
	rows, err := c.db.Query(`
		SELECT substr(publication_date, 1, 4) AS year, COUNT(*) AS n
		FROM articles
		WHERE substr(publication_date, 1, 4) GLOB '[0-9][0-9][0-9][0-9]'
		GROUP BY year
		ORDER BY year DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("counting by year: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var out []YearCount

	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, fmt.Errorf("scanning year count: %w", err)
		}

		out = append(out, yc)
	}

	return out, rows.Err()
}
