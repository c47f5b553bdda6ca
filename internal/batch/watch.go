package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/run"
)

// DefaultDebounce is how long a new file must stay quiet before it is
// processed. Crawler exports are written in one go, but the extractor
// must never see a half-written JSON file.
const DefaultDebounce = 2 * time.Second

// WatchOptions configures watch mode.
type WatchOptions struct {
	Options

	// Debounce delays processing after the last write event.
	Debounce time.Duration
}

// Watch processes matching files as they appear in the input directory.
// It blocks until the context is canceled or an interrupt signal
// arrives; files already present are processed first.
func Watch(ctx context.Context, ex Executor, opts WatchOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	applyDefaults(&opts.Options)

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	if opts.InputDir == "" {
		opts.InputDir = "."
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(opts.InputDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.InputDir, err)
	}

	logger.Info("watching for input files",
		"dir", opts.InputDir, "pattern", opts.Pattern)

	queue := make(chan string)

	var g run.Group

	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	// Watcher actor: debounce create/write events into the queue.
	stopWatch := make(chan struct{})

	g.Add(func() error {
		return watchLoop(watcher, opts, queue, stopWatch, logger)
	}, func(error) {
		close(stopWatch)
	})

	// Processor actor: one file at a time, in arrival order.
	stopProc := make(chan struct{})

	g.Add(func() error {
		return processLoop(ctx, ex, opts, queue, stopProc, logger)
	}, func(error) {
		close(stopProc)
	})

	// Backlog: files already sitting in the directory.
	existing, err := Discover(opts.InputDir, opts.Pattern)
	if err != nil {
		return err
	}

	go func() {
		for _, file := range existing {
			select {
			case queue <- file:
			case <-stopWatch:
				return
			}
		}
	}()

	err = g.Run()

	var sig run.SignalError
	if errors.As(err, &sig) {
		logger.Info("watch stopped", "signal", sig.Signal)

		return nil
	}

	return err
}

func watchLoop(watcher *fsnotify.Watcher, opts WatchOptions, queue chan<- string, stop <-chan struct{}, logger *slog.Logger) error {
	var mu sync.Mutex

	timers := make(map[string]*time.Timer)

	defer func() {
		mu.Lock()
		defer mu.Unlock()

		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-stop:
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("watch error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			match, err := filepath.Match(opts.Pattern, filepath.Base(event.Name))
			if err != nil || !match {
				continue
			}

			path := event.Name

			mu.Lock()
			if t, ok := timers[path]; ok {
				t.Reset(opts.Debounce)
			} else {
				timers[path] = time.AfterFunc(opts.Debounce, func() {
					mu.Lock()
					delete(timers, path)
					mu.Unlock()

					select {
					case queue <- path:
					case <-stop:
					}
				})
			}
			mu.Unlock()
		}
	}
}

func processLoop(ctx context.Context, ex Executor, opts WatchOptions, queue <-chan string, stop <-chan struct{}, logger *slog.Logger) error {
	for {
		select {
		case <-stop:
			return nil
		case file := <-queue:
			single := opts.Options
			single.Files = []string{file}
			single.Parallel = false

			if _, err := Process(ctx, ex, single); err != nil {
				logger.Error("processing failed", "file", file, "error", err)
			}
		}
	}
}
