package pubmed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/litkg/kgctl/internal/model"
)

func reportArticles() []model.Article {
	return []model.Article{
		{
			PMID:            "38000001",
			Title:           "Silicosis progression markers",
			Abstract:        "Silica exposure drives fibrosis.",
			Language:        "eng",
			PublicationDate: "2023 Jan 15",
			SearchTerm:      "Silicosis",
			FetchedAt:       time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			PMID:            "38000002",
			Title:           "矽肺病流行病学调查",
			Language:        "chi",
			PublicationDate: "2023 Mar",
		},
		{
			PMID:            "38000003",
			Title:           "Occupational dust control",
			Abstract:        "A review of engineering controls.",
			Language:        "eng",
			PublicationDate: "2021",
		},
	}
}

func TestWriteBatchFiles(t *testing.T) {
	dir := t.TempDir()

	files, err := writeBatchFiles(dir, 1, "20240115_100000", reportArticles())
	require.NoError(t, err)

	require.Equal(t, filepath.Join(dir, "pubmed_results_batch_1_20240115_100000.csv"), files.CSV)
	require.Equal(t, filepath.Join(dir, "pubmed_results_batch_1_20240115_100000.json"), files.JSON)
	require.Equal(t, filepath.Join(dir, "pubmed_stats_batch_1_20240115_100000.txt"), files.Stats)

	csvData, err := os.ReadFile(files.CSV)
	require.NoError(t, err)

	lines := string(csvData)
	require.Contains(t, lines, "pmid,title,abstract,authors,journal,publication_date")
	require.Contains(t, lines, "38000001")
	require.Contains(t, lines, "矽肺病流行病学调查")

	var loaded []model.Article

	data, err := os.ReadFile(files.JSON)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.Len(t, loaded, 3)
	require.Equal(t, "38000001", loaded[0].PMID)
}

func TestWriteStatsReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.txt")

	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	require.NoError(t, writeStatsReport(path, 2, reportArticles(), now))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	report := string(data)
	require.Contains(t, report, "PubMed retrieval statistics - batch 2")
	require.Contains(t, report, "Generated: 2024-01-15 10:30:00")
	require.Contains(t, report, "Records: 3")
	require.Contains(t, report, "With abstract: 2 (66.7%)")
	require.Contains(t, report, "eng: 2 (66.7%)")
	require.Contains(t, report, "chi: 1 (33.3%)")

	// Years are listed in ascending order.
	require.Less(t,
		strings.Index(report, "2021: 1"),
		strings.Index(report, "2023: 2"))
	require.GreaterOrEqual(t, strings.Index(report, "2021: 1"), 0)
}

func TestWriteStatsReportEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.txt")

	require.NoError(t, writeStatsReport(path, 1, nil, time.Now()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Records: 0")
}

func TestSortByCount(t *testing.T) {
	got := sortByCount(map[string]int{"eng": 5, "chi": 2, "fre": 2})
	require.Equal(t, []string{"eng", "chi", "fre"}, got)
}
