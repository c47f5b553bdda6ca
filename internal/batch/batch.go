// Package batch orchestrates the external Python extractor over many
// input files. The LLM extraction itself always runs inside the conda
// environment; this package only schedules it, collects its outputs,
// and writes the run summary.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/kg"
	"github.com/litkg/kgctl/internal/notify"
)

const (
	// DefaultPattern matches the crawler's per-batch JSON exports.
	DefaultPattern = "pubmed_results_batch_*.json"

	// DefaultWorkers is the parallel pool size.
	DefaultWorkers = 4

	// SummaryName is the summary file written into the run directory.
	SummaryName = "batch_summary.json"
)

// File statuses recorded in the summary.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Executor runs a command inside a named conda environment.
// *conda.Client satisfies it.
type Executor interface {
	RunInCommand(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Options configures a processing run.
type Options struct {
	// Env is the conda environment the extractor runs in.
	Env string

	// Entry is the Python script invoked per input file.
	Entry string

	// Python is the interpreter name inside the environment.
	Python string

	// Format is passed through to the extractor (json, csv, rdf).
	Format string

	// InputDir is scanned with Pattern when Files is empty.
	InputDir string
	Pattern  string

	// Files are explicit inputs, bypassing discovery.
	Files []string

	// OutputDir is the parent of the batch_run_<timestamp> directory.
	OutputDir string

	// Parallel enables the worker pool; Workers sizes it.
	Parallel bool
	Workers  int

	Notifier *notify.Dispatcher
	Logger   *slog.Logger
}

// FileDetail is the per-file entry of the summary.
type FileDetail struct {
	Status        string `json:"status"`
	EntityCount   int    `json:"entity_count"`
	RelationCount int    `json:"relation_count"`
	Error         string `json:"error,omitempty"`
}

// Totals aggregates a processing run.
type Totals struct {
	BatchRunTime    string  `json:"batch_run_time"`
	TotalFiles      int     `json:"total_files"`
	SuccessfulFiles int     `json:"successful_files"`
	FailedFiles     int     `json:"failed_files"`
	TotalEntities   int     `json:"total_entities"`
	TotalRelations  int     `json:"total_relations"`
	ProcessingTime  float64 `json:"processing_time"`
}

// Summary is the batch_summary.json document.
type Summary struct {
	Summary     Totals                `json:"summary"`
	FileDetails map[string]FileDetail `json:"file_details"`
}

// Result reports a finished processing run.
type Result struct {
	RunDir      string
	SummaryPath string
	Summary     *Summary
	Duration    time.Duration
}

// Discover lists the files in dir matching pattern, sorted by name.
func Discover(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}

	sort.Strings(files)

	return files, nil
}

// Process runs the extractor over every input file and writes
// batch_summary.json into a fresh batch_run_<timestamp> directory.
// Individual file failures do not stop the run; they are recorded in
// the summary and reported through the returned error only when every
// file failed.
func Process(ctx context.Context, ex Executor, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	applyDefaults(&opts)

	files := opts.Files
	if len(files) == 0 {
		var err error

		files, err = Discover(opts.InputDir, opts.Pattern)
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no input files match %s in %s", opts.Pattern, opts.InputDir)
	}

	start := time.Now()

	runDir := filepath.Join(opts.OutputDir, "batch_run_"+encoding.FileTimestamp(start))
	if err := encoding.EnsureDir(runDir); err != nil {
		return nil, err
	}

	logger.Info("processing batch", "files", len(files), "dir", runDir,
		"parallel", opts.Parallel, "workers", opts.Workers)

	details := processAll(ctx, ex, opts, files, runDir, logger)

	summary := &Summary{
		Summary: Totals{
			BatchRunTime:   start.Format("2006-01-02 15:04:05"),
			TotalFiles:     len(files),
			ProcessingTime: time.Since(start).Seconds(),
		},
		FileDetails: details,
	}

	for _, d := range details {
		if d.Status == StatusSuccess {
			summary.Summary.SuccessfulFiles++
			summary.Summary.TotalEntities += d.EntityCount
			summary.Summary.TotalRelations += d.RelationCount
		} else {
			summary.Summary.FailedFiles++
		}
	}

	summaryPath := filepath.Join(runDir, SummaryName)
	if err := encoding.SaveJSON(summaryPath, summary); err != nil {
		return nil, err
	}

	res := &Result{
		RunDir:      runDir,
		SummaryPath: summaryPath,
		Summary:     summary,
		Duration:    time.Since(start),
	}

	notifyBatchDone(ctx, opts.Notifier, summary, runDir)

	if summary.Summary.SuccessfulFiles == 0 {
		return res, fmt.Errorf("all %d files failed, see %s", len(files), summaryPath)
	}

	return res, nil
}

func applyDefaults(opts *Options) {
	if opts.Env == "" {
		opts.Env = "kg"
	}

	if opts.Entry == "" {
		opts.Entry = "pubmed_main.py"
	}

	if opts.Python == "" {
		opts.Python = "python"
	}

	if opts.Format == "" {
		opts.Format = "json"
	}

	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}

	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}

	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	if !opts.Parallel {
		opts.Workers = 1
	}
}

// processAll fans the files out over the worker pool and collects the
// per-file outcomes keyed by base file name.
func processAll(ctx context.Context, ex Executor, opts Options, files []string, runDir string, logger *slog.Logger) map[string]FileDetail {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		details = make(map[string]FileDetail, len(files))
	)

	jobs := make(chan string)

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for file := range jobs {
				detail := processFile(ctx, ex, opts, file, runDir, logger)

				mu.Lock()
				details[filepath.Base(file)] = detail
				mu.Unlock()
			}
		}()
	}

	for _, file := range files {
		jobs <- file
	}

	close(jobs)
	wg.Wait()

	return details
}

// processFile runs the extractor for one input file. The extractor's
// output streams into process.log inside the file's output subdirectory,
// and the entity/relation counts are read back from the
// knowledge_graph.json it produces.
func processFile(ctx context.Context, ex Executor, opts Options, file, runDir string, logger *slog.Logger) FileDetail {
	name := filepath.Base(file)
	subDir := filepath.Join(runDir, subdirName(name))

	notifyFile(ctx, opts.Notifier, notify.NewEvent(notify.EventProcess).WithFile(name))

	logger.Info("processing file", "file", name, "dir", subDir)

	if err := runExtractor(ctx, ex, opts, file, subDir); err != nil {
		logger.Error("file failed", "file", name, "error", err)
		notifyFile(ctx, opts.Notifier,
			notify.NewEvent(notify.EventProcess).WithFile(name).WithError(err.Error()))

		return FileDetail{Status: StatusFailed, Error: err.Error()}
	}

	detail := FileDetail{Status: StatusSuccess}

	if doc, err := kg.LoadDocument(filepath.Join(subDir, "knowledge_graph.json")); err == nil {
		detail.EntityCount = doc.EntityCount()
		detail.RelationCount = len(doc.Relations)
	} else {
		logger.Warn("no knowledge graph produced", "file", name, "error", err)
	}

	logger.Info("file processed", "file", name,
		"entities", detail.EntityCount, "relations", detail.RelationCount)

	notifyFile(ctx, opts.Notifier, notify.NewEvent(notify.EventProcess).
		WithFile(name).WithGraph(detail.EntityCount, detail.RelationCount))

	return detail
}

func runExtractor(ctx context.Context, ex Executor, opts Options, file, subDir string) error {
	if err := encoding.EnsureDir(subDir); err != nil {
		return err
	}

	logFile, err := os.Create(filepath.Join(subDir, "process.log"))
	if err != nil {
		return fmt.Errorf("failed to create process log: %w", err)
	}

	defer func() {
		_ = logFile.Close()
	}()

	cmd := ex.RunInCommand(ctx, opts.Env,
		opts.Python, opts.Entry, file, "--format", opts.Format, "--output", subDir)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("extractor failed for %s: %w", filepath.Base(file), err)
	}

	return nil
}

// subdirName strips everything from the first dot, matching the layout
// downstream merge tooling expects (one directory per input file).
func subdirName(base string) string {
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}

	return base
}

func notifyFile(ctx context.Context, d *notify.Dispatcher, event *notify.Event) {
	if d == nil {
		return
	}

	d.Dispatch(ctx, event)
}

func notifyBatchDone(ctx context.Context, d *notify.Dispatcher, summary *Summary, runDir string) {
	if d == nil {
		return
	}

	event := notify.NewEvent(notify.EventBatch).
		WithRun(runDir).
		WithCount(summary.Summary.TotalFiles).
		WithGraph(summary.Summary.TotalEntities, summary.Summary.TotalRelations)

	if summary.Summary.FailedFiles > 0 {
		event = event.WithError(fmt.Sprintf("%d files failed", summary.Summary.FailedFiles))
	}

	d.Dispatch(ctx, event)
}
