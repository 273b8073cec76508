package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wikiharvest/internal/config"
	"wikiharvest/internal/crawler"
	"wikiharvest/internal/fetcher"
	"wikiharvest/internal/observability"
	"wikiharvest/internal/types"
	"wikiharvest/internal/wiki"
)

var (
	crawlDepth  int
	crawlWait   string
	crawlResume bool
)

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <title>",
		Short: "Breadth-first crawl from a page, counting every visited page",
		Long: `Crawl traverses the wiki's internal links breadth-first starting from
the given page, to the configured depth. Each visited page's word counts
are merged into the durable accumulator. Depth 0 processes only the
start page itself.`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawl,
	}

	cmd.Flags().IntVarP(&crawlDepth, "depth", "d", -1, "maximum crawl depth (-1 = use config)")
	cmd.Flags().StringVar(&crawlWait, "wait", "", "politeness delay between fetches, e.g. 500ms")
	cmd.Flags().BoolVar(&crawlResume, "resume", false, "restore the visited set from the last checkpoint")
	cmd.Flags().BoolVar(&stopwords, "stopwords", false, "drop common English stopwords")
	cmd.Flags().BoolVar(&stemming, "stem", false, "reduce words to their stem before counting")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if err := applyCrawlOverrides(cfg); err != nil {
		return err
	}

	start, err := types.NormalizeTitle(args[0])
	if err != nil {
		return fmt.Errorf("invalid page title %q: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer httpFetcher.Close()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("metrics server listening", "addr", cfg.Metrics.Addr)
	}

	var checkpoint *crawler.Checkpoint
	if cfg.Crawler.Resume {
		checkpoint = crawler.NewCheckpoint(cfg.Crawler.CheckpointPath)
	}

	c, err := crawler.New(crawler.Deps{
		Fetcher:    httpFetcher,
		Parser:     wiki.NewParser(logger),
		Counter:    newCounter(),
		Store:      store,
		Delayer:    crawler.NewSleepDelayer(cfg.Crawler.Wait),
		Checkpoint: checkpoint,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting crawl",
		"start", string(start),
		"depth", cfg.Crawler.MaxDepth,
		"wait", cfg.Crawler.Wait,
		"backend", store.Name(),
	)

	report, err := c.Crawl(ctx, start, cfg.Crawler.MaxDepth)
	if err != nil {
		if report == nil {
			return err
		}
		// Partial results were preserved; report them before failing.
		logger.Error("crawl ended early", "error", err)
	}

	fmt.Printf("\nCrawl finished in %s\n", report.Elapsed.Round(time.Millisecond))
	fmt.Printf("   Visited:  %d pages (%d fetched, %d failed)\n",
		report.Visited, report.Fetched, len(report.Failures))
	fmt.Printf("   Words:    %d distinct in accumulator\n", len(report.Counts))
	for _, failure := range report.Failures {
		fmt.Fprintf(os.Stderr, "   failed: %s: %v\n", string(failure.ID), failure.Err)
	}
	return err
}

// applyCrawlOverrides applies crawl flag values to the config.
func applyCrawlOverrides(cfg *config.Config) error {
	if crawlDepth >= 0 {
		cfg.Crawler.MaxDepth = crawlDepth
	}
	if crawlWait != "" {
		d, err := time.ParseDuration(crawlWait)
		if err != nil {
			return fmt.Errorf("invalid --wait value %q: %w", crawlWait, err)
		}
		if d < 0 {
			return fmt.Errorf("--wait must not be negative, got %s", d)
		}
		cfg.Crawler.Wait = d
	}
	if crawlResume {
		cfg.Crawler.Resume = true
	}
	return nil
}
