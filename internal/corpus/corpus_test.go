package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/model"
)

func corpusArticles() []model.Article {
	return []model.Article{
		{
			PMID:     "38000001",
			Title:    "Silicosis progression markers",
			Abstract: "Crystalline silica exposure drives progressive fibrosis.",
		},
		{
			PMID:     "38000002",
			Title:    "矽肺病患者肺功能研究",
			Abstract: "对矽肺患者进行了肺功能随访。",
		},
	}
}

func TestArticleBlock(t *testing.T) {
	block := ArticleBlock(corpusArticles()[0])

	require.Equal(t,
		"PMID: 38000001\n标题: Silicosis progression markers\n摘要: Crystalline silica exposure drives progressive fibrosis.\n",
		block)
}

func TestArticleBlockUnknownPMID(t *testing.T) {
	block := ArticleBlock(model.Article{Title: "t"})
	require.True(t, strings.HasPrefix(block, "PMID: Unknown\n"))
}

func TestBuildText(t *testing.T) {
	text := BuildText(corpusArticles())

	require.Contains(t, text, "PMID: 38000001")
	require.Contains(t, text, "PMID: 38000002")
	require.Contains(t, text, strings.Repeat("-", 80))

	// Separator appears once per article.
	require.Equal(t, 2, strings.Count(text, strings.Repeat("-", 80)))
}

func TestLoadArticlesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, encoding.SaveJSON(path, corpusArticles()))

	articles, err := LoadArticles(path)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	require.Equal(t, "38000001", articles[0].PMID)
}

func TestLoadArticlesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")

	header := []string{"pmid", "title", "abstract", "language"}
	rows := [][]string{
		{"38000001", "Silicosis progression markers", "Silica exposure.", "eng"},
		{"38000002", "矽肺病患者肺功能研究", "随访研究。", "chi"},
	}
	require.NoError(t, encoding.WriteCSV(path, header, rows))

	articles, err := LoadArticles(path)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	require.Equal(t, "矽肺病患者肺功能研究", articles[1].Title)
	require.Equal(t, "chi", articles[1].Language)
}

// The crawler's own CSV exports start with a UTF-8 BOM; the first
// header cell must still be recognized.
func TestLoadArticlesCSVWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.csv")

	header := []string{"pmid", "title", "abstract", "language"}
	rows := [][]string{
		{"38000001", "Silicosis progression markers", "Silica exposure.", "eng"},
	}
	require.NoError(t, encoding.WriteCSVWithBOM(path, header, rows))

	articles, err := LoadArticles(path)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, "38000001", articles[0].PMID)
}

func TestLoadArticlesUnsupportedExtension(t *testing.T) {
	_, err := LoadArticles("articles.xlsx")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported input format")
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()

	input := filepath.Join(dir, "articles.json")
	require.NoError(t, encoding.SaveJSON(input, corpusArticles()))

	outDir := filepath.Join(dir, "corpus")

	res, err := Prepare(PrepareOptions{
		Inputs:    []string{input},
		OutputDir: outDir,
	})
	require.NoError(t, err)

	require.Equal(t, 2, res.Articles)
	require.Equal(t, 1, res.Chunks)
	require.Len(t, res.Files, 1)

	data, err := os.ReadFile(res.Files[0])
	require.NoError(t, err)
	require.Contains(t, string(data), "PMID: 38000001")
	require.Contains(t, string(data), "标题: 矽肺病患者肺功能研究")

	manifest, err := encoding.LoadJSON[Manifest](res.ManifestPath)
	require.NoError(t, err)
	require.NotNil(t, manifest)

	require.Equal(t, 2, manifest.Articles)
	require.Equal(t, []string{input}, manifest.Sources)
	require.Equal(t, 8000, manifest.MaxChunkSize)
	require.Equal(t, 500, manifest.OverlapSize)
	require.Len(t, manifest.Chunks, 1)
	require.Equal(t, "chunk_001.txt", manifest.Chunks[0].File)
}

func TestPrepareSplitsLargeCorpus(t *testing.T) {
	dir := t.TempDir()

	// Enough articles to exceed one chunk.
	var articles []model.Article

	for i := 0; i < 30; i++ {
		articles = append(articles, model.Article{
			PMID:     "38" + strings.Repeat("0", 4) + string(rune('0'+i%10)),
			Title:    "Silicosis study",
			Abstract: strings.Repeat("Crystalline silica exposure drives fibrosis. ", 20),
		})
	}

	input := filepath.Join(dir, "articles.json")
	require.NoError(t, encoding.SaveJSON(input, articles))

	res, err := Prepare(PrepareOptions{
		Inputs:       []string{input},
		OutputDir:    filepath.Join(dir, "corpus"),
		MaxChunkSize: 2000,
		OverlapSize:  100,
	})
	require.NoError(t, err)
	require.Greater(t, res.Chunks, 1)

	for _, f := range res.Files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		require.LessOrEqual(t, info.Size(), int64(2100))
	}
}

func TestPrepareRequiresInputs(t *testing.T) {
	_, err := Prepare(PrepareOptions{})
	require.Error(t, err)
}

func TestPrepareEmptyInput(t *testing.T) {
	dir := t.TempDir()

	input := filepath.Join(dir, "articles.json")
	require.NoError(t, encoding.SaveJSON(input, []model.Article{}))

	_, err := Prepare(PrepareOptions{Inputs: []string{input}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no articles")
}
