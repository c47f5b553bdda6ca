// Package corpus turns crawled article exports into extraction-ready
// text files.
//
// Each article becomes a labeled block (PMID, title, abstract) and the
// blocks are joined with a dashed separator line, preserving the layout
// the downstream extraction scripts expect. The combined text is cleaned
// and chunked, and a manifest records what was produced.
package corpus

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/model"
	"github.com/litkg/kgctl/internal/textproc"
)

// separator divides article blocks in the combined corpus text.
var separator = strings.Repeat("-", 80)

// ManifestName is the metadata file written next to the chunks.
const ManifestName = "manifest.json"

// ChunkInfo describes one written chunk file.
type ChunkInfo struct {
	File string `json:"file"`
	Size int    `json:"size"`
}

// Manifest records what a prepared corpus contains and the settings
// that produced it.
type Manifest struct {
	GeneratedAt  time.Time   `json:"generated_at"`
	Sources      []string    `json:"sources"`
	Articles     int         `json:"articles"`
	MaxChunkSize int         `json:"max_chunk_size"`
	OverlapSize  int         `json:"overlap_size"`
	Chunks       []ChunkInfo `json:"chunks"`
}

// PrepareOptions configures corpus preparation.
type PrepareOptions struct {
	Inputs       []string // article JSON or CSV exports from the crawler
	OutputDir    string
	MaxChunkSize int
	OverlapSize  int
	Logger       *slog.Logger
}

// PrepareResult reports a finished preparation.
type PrepareResult struct {
	Articles     int
	Chunks       int
	Files        []string
	ManifestPath string
	OutputDir    string
}

// Prepare loads the input article files, assembles the corpus text, and
// writes numbered chunk files plus a manifest into the output directory.
func Prepare(opts PrepareOptions) (*PrepareResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if len(opts.Inputs) == 0 {
		return nil, fmt.Errorf("at least one input file is required")
	}

	if opts.OutputDir == "" {
		opts.OutputDir = "corpus"
	}

	chunker := textproc.NewChunker()

	if opts.MaxChunkSize > 0 {
		chunker.MaxChunkSize = opts.MaxChunkSize
	}

	if opts.OverlapSize > 0 {
		chunker.OverlapSize = opts.OverlapSize
	}

	var articles []model.Article

	for _, input := range opts.Inputs {
		loaded, err := LoadArticles(input)
		if err != nil {
			return nil, err
		}

		logger.Info("loaded articles", "file", input, "count", len(loaded))

		articles = append(articles, loaded...)
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("no articles found in %s", strings.Join(opts.Inputs, ", "))
	}

	text := textproc.Clean(BuildText(articles))
	chunks := chunker.Split(text)

	if err := encoding.EnsureDir(opts.OutputDir); err != nil {
		return nil, err
	}

	manifest := &Manifest{
		GeneratedAt:  time.Now(),
		Sources:      opts.Inputs,
		Articles:     len(articles),
		MaxChunkSize: chunker.MaxChunkSize,
		OverlapSize:  chunker.OverlapSize,
	}

	res := &PrepareResult{
		Articles:  len(articles),
		Chunks:    len(chunks),
		OutputDir: opts.OutputDir,
	}

	for i, chunk := range chunks {
		name := fmt.Sprintf("chunk_%03d.txt", i+1)
		path := filepath.Join(opts.OutputDir, name)

		if err := encoding.WriteFile(path, []byte(chunk), 0o644); err != nil {
			return nil, err
		}

		manifest.Chunks = append(manifest.Chunks, ChunkInfo{File: name, Size: len(chunk)})
		res.Files = append(res.Files, path)
	}

	res.ManifestPath = filepath.Join(opts.OutputDir, ManifestName)

	if err := encoding.SaveJSON(res.ManifestPath, manifest); err != nil {
		return nil, err
	}

	logger.Info("corpus prepared",
		"articles", res.Articles, "chunks", res.Chunks, "dir", opts.OutputDir)

	return res, nil
}

// ArticleBlock renders one article as the labeled text block the
// extraction scripts expect. The labels are Chinese because the
// downstream prompts are.
func ArticleBlock(a model.Article) string {
	pmid := a.PMID
	if pmid == "" {
		pmid = "Unknown"
	}

	return fmt.Sprintf("PMID: %s\n标题: %s\n摘要: %s\n", pmid, a.Title, a.Abstract)
}

// BuildText joins article blocks with the dashed separator.
func BuildText(articles []model.Article) string {
	var b strings.Builder

	for _, a := range articles {
		b.WriteString(ArticleBlock(a))
		b.WriteString("\n\n" + separator + "\n\n")
	}

	return b.String()
}

// LoadArticles reads a crawler export, JSON or CSV, selected by file
// extension.
func LoadArticles(path string) ([]model.Article, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSONArticles(path)
	case ".csv":
		return loadCSVArticles(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q, want .json or .csv", filepath.Ext(path))
	}
}

func loadJSONArticles(path string) ([]model.Article, error) {
	articles, err := encoding.LoadJSON[[]model.Article](path)
	if err != nil {
		return nil, err
	}

	if articles == nil {
		return nil, fmt.Errorf("input file %s does not exist", path)
	}

	return *articles, nil
}

func loadCSVArticles(path string) ([]model.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(rows) < 2 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimPrefix(strings.TrimSpace(name), "\uFEFF")] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}

		return row[i]
	}

	articles := make([]model.Article, 0, len(rows)-1)

	for _, row := range rows[1:] {
		articles = append(articles, model.Article{
			PMID:            field(row, "pmid"),
			Title:           field(row, "title"),
			Abstract:        field(row, "abstract"),
			Authors:         field(row, "authors"),
			Journal:         field(row, "journal"),
			PublicationDate: field(row, "publication_date"),
			PublicationType: field(row, "publication_type"),
			MeshTerms:       field(row, "mesh_terms"),
			Chemicals:       field(row, "chemicals"),
			Language:        field(row, "language"),
			DOI:             field(row, "doi"),
			SearchTerm:      field(row, "search_term"),
		})
	}

	return articles, nil
}
