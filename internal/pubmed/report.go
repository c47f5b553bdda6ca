package pubmed

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/model"
)

// BatchFiles names the artifacts written for one fetched batch.
type BatchFiles struct {
	CSV   string
	JSON  string
	Stats string
}

// articleHeader is the CSV column order for crawler exports, matching
// the field order of model.Article.
var articleHeader = []string{
	"pmid", "title", "abstract", "authors", "journal",
	"publication_date", "publication_type", "mesh_terms",
	"chemicals", "language", "doi", "search_term", "fetched_at",
}

func articleRow(a model.Article) []string {
	fetched := ""
	if !a.FetchedAt.IsZero() {
		fetched = a.FetchedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		a.PMID, a.Title, a.Abstract, a.Authors, a.Journal,
		a.PublicationDate, a.PublicationType, a.MeshTerms,
		a.Chemicals, a.Language, a.DOI, a.SearchTerm, fetched,
	}
}

func articleRows(articles []model.Article) [][]string {
	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, articleRow(a))
	}

	return rows
}

// writeBatchFiles saves one batch as CSV, JSON, and a statistics report,
// named pubmed_results_batch_<n>_<timestamp>.* so downstream processing
// can discover them by glob.
func writeBatchFiles(dir string, batch int, timestamp string, articles []model.Article) (*BatchFiles, error) {
	files := &BatchFiles{
		CSV:   filepath.Join(dir, fmt.Sprintf("pubmed_results_batch_%d_%s.csv", batch, timestamp)),
		JSON:  filepath.Join(dir, fmt.Sprintf("pubmed_results_batch_%d_%s.json", batch, timestamp)),
		Stats: filepath.Join(dir, fmt.Sprintf("pubmed_stats_batch_%d_%s.txt", batch, timestamp)),
	}

	if err := encoding.WriteCSV(files.CSV, articleHeader, articleRows(articles)); err != nil {
		return nil, err
	}

	if err := encoding.SaveJSON(files.JSON, articles); err != nil {
		return nil, err
	}

	if err := writeStatsReport(files.Stats, batch, articles, time.Now()); err != nil {
		return nil, err
	}

	return files, nil
}

// WriteArticlesCSV saves articles in the crawler's CSV layout, so
// catalog exports are interchangeable with crawl results.
func WriteArticlesCSV(path string, articles []model.Article) error {
	return encoding.WriteCSV(path, articleHeader, articleRows(articles))
}

// WriteArticlesJSON saves articles in the crawler's JSON layout.
func WriteArticlesJSON(path string, articles []model.Article) error {
	return encoding.SaveJSON(path, articles)
}

// writeCombinedFiles saves the full result set across all batches.
func writeCombinedFiles(dir, timestamp string, articles []model.Article) (csvPath, jsonPath string, err error) {
	csvPath = filepath.Join(dir, fmt.Sprintf("pubmed_results_all_%s.csv", timestamp))
	jsonPath = filepath.Join(dir, fmt.Sprintf("pubmed_results_all_%s.json", timestamp))

	if err := encoding.WriteCSV(csvPath, articleHeader, articleRows(articles)); err != nil {
		return "", "", err
	}

	if err := encoding.SaveJSON(jsonPath, articles); err != nil {
		return "", "", err
	}

	return csvPath, jsonPath, nil
}

// writeStatsReport summarizes a batch: abstract coverage, language
// distribution, and publication year distribution.
func writeStatsReport(path string, batch int, articles []model.Article, now time.Time) error {
	var b strings.Builder

	fmt.Fprintf(&b, "PubMed retrieval statistics - batch %d\n", batch)
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Records: %d\n\n", len(articles))

	if len(articles) == 0 {
		return encoding.WriteFile(path, []byte(b.String()), 0o644)
	}

	total := float64(len(articles))

	withAbstract := 0
	languages := map[string]int{}
	years := map[string]int{}

	for i := range articles {
		a := &articles[i]

		if a.HasAbstract() {
			withAbstract++
		}

		for _, lang := range strings.Split(a.Language, ";") {
			if lang = strings.TrimSpace(lang); lang != "" {
				languages[lang]++
			}
		}

		if year := a.Year(); year != "" {
			years[year]++
		}
	}

	fmt.Fprintf(&b, "With abstract: %d (%.1f%%)\n", withAbstract, float64(withAbstract)/total*100)

	if len(languages) > 0 {
		b.WriteString("\nLanguage distribution:\n")

		for _, lang := range sortByCount(languages) {
			fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n", lang, languages[lang], float64(languages[lang])/total*100)
		}
	}

	if len(years) > 0 {
		b.WriteString("\nYear distribution:\n")

		keys := make([]string, 0, len(years))
		for year := range years {
			keys = append(keys, year)
		}

		sort.Strings(keys)

		for _, year := range keys {
			fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n", year, years[year], float64(years[year])/total*100)
		}
	}

	return encoding.WriteFile(path, []byte(b.String()), 0o644)
}

// sortByCount orders keys by descending count, then name for stable
// output.
func sortByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}

		return keys[i] < keys[j]
	})

	return keys
}
