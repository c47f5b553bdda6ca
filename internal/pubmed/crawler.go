package pubmed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/litkg/kgctl/internal/encoding"
	"github.com/litkg/kgctl/internal/model"
)

const (
	// DefaultBatchSize is how many PMIDs one efetch call retrieves.
	DefaultBatchSize = 100

	// DefaultMaxResults caps a search when the caller does not say
	// otherwise.
	DefaultMaxResults = 100
)

// Deduper is the catalog surface the crawler needs. A nil Deduper
// disables deduplication.
type Deduper interface {
	FilterNew(pmids []string) ([]string, error)
	Upsert(articles []model.Article) (int, error)
}

// Crawler runs PubMed searches end to end: search, batched fetching,
// per-batch artifacts, catalog updates, and combined exports.
type Crawler struct {
	client  *Client
	catalog Deduper
	logger  *slog.Logger
	sleep   func(time.Duration)
}

// CrawlerOptions configures a Crawler.
type CrawlerOptions struct {
	Catalog Deduper
	Logger  *slog.Logger
}

// NewCrawler creates a crawler on top of an Entrez client.
func NewCrawler(client *Client, opts CrawlerOptions) *Crawler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Crawler{
		client:  client,
		catalog: opts.Catalog,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// CrawlOptions configures one search run.
type CrawlOptions struct {
	Term       string
	StartDate  string // YYYY/MM/DD, both dates required for the filter
	EndDate    string
	MaxResults int
	BatchSize  int
	OutputDir  string
	Resume     bool // drop PMIDs already present in the catalog
}

// CrawlResult reports a finished crawl.
type CrawlResult struct {
	Term     string
	Total    int      // matches reported by PubMed
	Planned  int      // PMIDs selected for fetching
	Skipped  int      // dropped because the catalog already has them
	Fetched  int      // records parsed
	New      int      // rows newly added to the catalog
	Batches  int
	Files    []string // per-batch artifacts
	CSVPath  string   // combined CSV across all batches
	JSONPath string   // combined JSON across all batches
	Duration time.Duration
}

// Crawl searches PubMed and downloads the matching records in batches.
// Each batch lands on disk before the next request starts, so an
// interrupted crawl keeps everything fetched so far.
func (c *Crawler) Crawl(ctx context.Context, opts CrawlOptions) (*CrawlResult, error) {
	if opts.Term == "" {
		return nil, fmt.Errorf("a search term is required")
	}

	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}

	start := time.Now()

	term := SearchTerm(opts.Term, opts.StartDate, opts.EndDate)

	c.logger.Info("searching PubMed", "term", term, "max_results", opts.MaxResults)

	sr, err := c.client.Search(ctx, term, opts.MaxResults)
	if err != nil {
		return nil, err
	}

	c.logger.Info("search finished", "total", sr.Count, "returned", len(sr.IDs))

	res := &CrawlResult{Term: opts.Term, Total: sr.Count}

	ids := sr.IDs

	if opts.Resume && c.catalog != nil {
		fresh, err := c.catalog.FilterNew(ids)
		if err != nil {
			return nil, fmt.Errorf("could not check the catalog: %w", err)
		}

		res.Skipped = len(ids) - len(fresh)
		ids = fresh

		if res.Skipped > 0 {
			c.logger.Info("resuming, skipping known articles", "skipped", res.Skipped)
		}
	}

	res.Planned = len(ids)

	if len(ids) == 0 {
		c.logger.Warn("nothing to fetch", "term", term)

		res.Duration = time.Since(start)

		return res, nil
	}

	if err := encoding.EnsureDir(opts.OutputDir); err != nil {
		return nil, err
	}

	var all []model.Article

	// One timestamp for the whole crawl so batch and combined files sort
	// together.
	stamp := encoding.FileTimestamp(start)

	batches := slices.Collect(slices.Chunk(ids, opts.BatchSize))

	for i, batchIDs := range batches {
		num := i + 1

		c.logger.Info("fetching batch",
			"batch", num, "batches", len(batches), "ids", len(batchIDs))

		articles, err := c.fetchBatch(ctx, batchIDs, opts.Term)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", num, err)
		}

		if len(articles) == 0 {
			c.logger.Warn("batch produced no records", "batch", num)
			continue
		}

		files, err := writeBatchFiles(opts.OutputDir, num, stamp, articles)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", num, err)
		}

		res.Files = append(res.Files, files.CSV, files.JSON, files.Stats)

		if c.catalog != nil {
			n, err := c.catalog.Upsert(articles)
			if err != nil {
				c.logger.Warn("catalog update failed", "batch", num, "error", err)
			} else {
				res.New += n
			}
		}

		all = append(all, articles...)
		res.Fetched += len(articles)

		if i+1 < len(batches) {
			delay := interBatchDelay()

			c.logger.Debug("pausing before next batch", "delay", delay.Round(time.Millisecond))
			c.sleep(delay)
		}
	}

	res.Batches = len(batches)

	if len(all) > 0 {
		res.CSVPath, res.JSONPath, err = writeCombinedFiles(opts.OutputDir, stamp, all)
		if err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(start)

	c.logger.Info("crawl finished",
		"fetched", res.Fetched, "new", res.New,
		"batches", res.Batches, "duration", res.Duration.Round(time.Millisecond))

	return res, nil
}

func (c *Crawler) fetchBatch(ctx context.Context, ids []string, term string) ([]model.Article, error) {
	raw, err := c.client.FetchMedline(ctx, ids)
	if err != nil {
		return nil, err
	}

	records, err := ParseMedline(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("could not parse MEDLINE data: %w", err)
	}

	if len(records) < len(ids) {
		c.logger.Warn("some records were not returned",
			"requested", len(ids), "received", len(records))
	}

	return Articles(records, term, time.Now()), nil
}

// interBatchDelay returns a randomized pause between fetch batches, on
// top of the per-request rate limit, to stay friendly to the API.
func interBatchDelay() time.Duration {
	return 2*time.Second + rand.N(3*time.Second)
}
