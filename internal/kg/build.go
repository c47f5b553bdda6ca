package kg

import (
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/litkg/kgctl/internal/encoding"
)

// BuildOptions select which artifacts to generate from a document.
type BuildOptions struct {
	// Input is the knowledge-graph JSON file to load.
	Input string

	// OutputDir receives the artifacts. Defaults to the directory the
	// input file lives in.
	OutputDir string

	// Title labels the HTML and SVG visualizations.
	Title string

	CSV     bool
	GraphML bool
	HTML    bool
	SVG     bool
	Stats   bool

	// All enables every artifact.
	All bool

	Logger *slog.Logger
}

// selected reports whether any artifact was requested.
func (o BuildOptions) selected() bool {
	return o.All || o.CSV || o.GraphML || o.HTML || o.SVG || o.Stats
}

// BuildResult reports what a build run produced.
type BuildResult struct {
	Nodes    int
	Edges    int
	Dropped  int
	Files    []string
	Stats    *Stats
	Duration time.Duration
}

// Build loads a knowledge-graph document, constructs its graph, and
// writes the selected artifacts next to the input file or into
// OutputDir.
func Build(opts BuildOptions) (*BuildResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Input == "" {
		return nil, errors.New("an input file is required")
	}

	if !opts.selected() {
		return nil, errors.New("no export format selected")
	}

	start := time.Now()

	doc, err := LoadDocument(opts.Input)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Dir(opts.Input)
	}

	if err := encoding.EnsureDir(opts.OutputDir); err != nil {
		return nil, err
	}

	g, dropped := FromDocument(doc)

	logger.Info("knowledge graph built",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"entity_types", len(doc.Entities))

	if dropped > 0 {
		logger.Warn("relations dropped for missing endpoints", "count", dropped)
	}

	res := &BuildResult{Nodes: g.NodeCount(), Edges: g.EdgeCount(), Dropped: dropped}

	if opts.All || opts.CSV {
		nodesPath, edgesPath, err := ExportCSV(g, opts.OutputDir)
		if err != nil {
			return nil, err
		}

		res.Files = append(res.Files, nodesPath, edgesPath)
	}

	if opts.All || opts.GraphML {
		path := filepath.Join(opts.OutputDir, GraphMLName)
		if err := ExportGraphML(g, path); err != nil {
			return nil, err
		}

		res.Files = append(res.Files, path)
	}

	if opts.All || opts.HTML {
		path := filepath.Join(opts.OutputDir, HTMLName)
		if err := ExportHTML(g, path, opts.Title); err != nil {
			return nil, err
		}

		res.Files = append(res.Files, path)
	}

	if opts.All || opts.SVG {
		path := filepath.Join(opts.OutputDir, SVGName)
		if err := ExportSVG(g, path, opts.Title); err != nil {
			return nil, err
		}

		res.Files = append(res.Files, path)
	}

	if opts.All || opts.Stats {
		res.Stats = ComputeStats(g)

		path := filepath.Join(opts.OutputDir, StatsName)
		if err := encoding.SaveJSON(path, res.Stats); err != nil {
			return nil, err
		}

		res.Files = append(res.Files, path)
	}

	res.Duration = time.Since(start)

	logger.Info("graph artifacts written", "files", len(res.Files), "dir", opts.OutputDir)

	return res, nil
}
