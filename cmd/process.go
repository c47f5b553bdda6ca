package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/litkg/kgctl/internal/batch"
	"github.com/litkg/kgctl/internal/core"
	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/logging"
	"github.com/litkg/kgctl/internal/model"
	"github.com/litkg/kgctl/internal/notify"
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Run the extractor over crawl result files",
	Long: `Runs the external Python extractor inside the kg environment over a set
of crawl result files, one output subdirectory per input, and writes a
batch_summary.json with per-file entity and relation counts. The
extraction itself happens entirely in the Python pipeline; kgctl only
schedules it and collects the outputs.

Without file arguments the input directory is scanned with --pattern.
--watch keeps running and processes matching files as they appear.

Examples:
  kgctl process
  kgctl process --input output --parallel --workers 4
  kgctl process output/pubmed_results_batch_1_20240101_120000.json
  kgctl process --watch --input output`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().String("input", "", "Directory scanned for input files (default: config output_dir)")
	processCmd.Flags().String("pattern", batch.DefaultPattern, "Glob matching input files")
	processCmd.Flags().String("output", "", "Parent directory for the batch run (default: config output_dir)")
	processCmd.Flags().String("format", "", "Extractor output format: json, csv, rdf (default: config output_format)")
	processCmd.Flags().String("entry", "", "Extractor entry script (default: config process_entry)")
	processCmd.Flags().Bool("parallel", false, "Process files in parallel (default: config parallel)")
	processCmd.Flags().Int("workers", 0, "Worker pool size (default: config max_workers)")
	processCmd.Flags().Bool("watch", false, "Keep running and process new files as they appear")
}

func runProcess(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, err := condaClient(settings)
	if err != nil {
		return err
	}

	flags := cmd.Flags()

	inputDir := flagOr(flags, "input", settings.Process.OutputDir)
	outputDir := flagOr(flags, "output", settings.Process.OutputDir)
	format := flagOr(flags, "format", settings.Process.OutputFormat)
	entry := flagOr(flags, "entry", core.ResolveEntry(settings.App.AppDir, settings.App.ProcessEntry))

	parallel := settings.Process.Parallel
	if flags.Changed("parallel") {
		parallel, _ = flags.GetBool("parallel")
	}

	workers, _ := flags.GetInt("workers")
	if workers <= 0 {
		workers = settings.Process.MaxWorkers
	}

	pattern, _ := flags.GetString("pattern")

	if err := encoding.EnsureDir(outputDir); err != nil {
		return err
	}

	logPath := filepath.Join(outputDir, "process_"+encoding.FileTimestamp(time.Now())+".log")

	logger, closeLog, err := logging.NewWithFile(logging.Options{Level: logLevel, Format: logFormat}, logPath)
	if err != nil {
		return err
	}

	defer func() {
		_ = closeLog()
	}()

	dispatcher := notify.NewDispatcher(notify.Options{})
	dispatcher.Register(notify.NewConsoleSender(os.Stdout))
	dispatcher.Register(notify.NewSlogSender(logger))

	opts := batch.Options{
		Env:       core.EnvName,
		Entry:     entry,
		Python:    settings.App.Python,
		Format:    format,
		InputDir:  inputDir,
		Pattern:   pattern,
		Files:     args,
		OutputDir: outputDir,
		Parallel:  parallel,
		Workers:   workers,
		Notifier:  dispatcher,
		Logger:    logger,
	}

	watch, _ := flags.GetBool("watch")
	if watch {
		return batch.Watch(cmd.Context(), client, batch.WatchOptions{Options: opts})
	}

	st := openStore()
	defer closeStore(st)

	run := core.StartRun(st, model.RunKindProcess, "")
	run.OutputDir = outputDir

	res, err := batch.Process(cmd.Context(), client, opts)

	var counts map[string]int
	if res != nil {
		counts = map[string]int{
			"files":     res.Summary.Summary.TotalFiles,
			"failed":    res.Summary.Summary.FailedFiles,
			"entities":  res.Summary.Summary.TotalEntities,
			"relations": res.Summary.Summary.TotalRelations,
		}
	}

	core.FinishRun(st, run, counts, err)
	dispatcher.Wait()

	if err != nil {
		return err
	}

	s := res.Summary.Summary
	_, _ = fmt.Fprintf(os.Stdout, "%s processed %d files (%d failed): %d entities, %d relations\n",
		okStyle.Render("✓"), s.TotalFiles, s.FailedFiles, s.TotalEntities, s.TotalRelations)
	_, _ = fmt.Fprintf(os.Stdout, "  %s\n", dimStyle.Render("summary: "+res.SummaryPath))

	return nil
}
