package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/kljensen/snowball/english"
	"github.com/spf13/cobra"

	"wikiharvest/internal/accumulator"
	"wikiharvest/internal/config"
	"wikiharvest/internal/fetcher"
	"wikiharvest/internal/types"
	"wikiharvest/internal/wiki"
	"wikiharvest/internal/wordcount"
)

var (
	cfgFile   string
	verbose   bool
	stopwords bool
	stemming  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wikiharvest",
		Short: "wikiharvest — wiki word-frequency harvester",
		Long: `wikiharvest fetches pages from a MediaWiki-style wiki and builds a
durable word-frequency record from them.

Commands:
  summary   print the first paragraph of an article
  table     export an article table as CSV
  count     count one page's words into the accumulator
  crawl     breadth-first crawl from a page, counting every visited page
  top       show the most frequent words accumulated so far`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(tableCmd())
	rootCmd.AddCommand(countCmd())
	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(topCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads and validates the configuration and builds the logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, setupLogger(cfg), nil
}

// setupLogger creates a structured logger per the logging config. The
// --verbose flag forces debug level regardless of config.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Logging.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newStore opens the configured accumulator backend.
func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (accumulator.Store, error) {
	switch cfg.Storage.Backend {
	case "mongo":
		return accumulator.NewMongoStore(ctx, cfg.Storage.MongoURI,
			cfg.Storage.MongoDatabase, cfg.Storage.MongoCollection, logger)
	default:
		return accumulator.NewFileStore(cfg.Storage.Path, logger), nil
	}
}

// newCounter builds the word counter with the optional normalization flags.
func newCounter() *wordcount.Counter {
	var opts []wordcount.Option
	if stopwords {
		opts = append(opts, wordcount.WithStopwords(wordcount.DefaultStopwords()))
	}
	if stemming {
		opts = append(opts, wordcount.WithStemming())
	}
	return wordcount.NewCounter(opts...)
}

// fetchPage resolves the title argument and fetches the page.
func fetchPage(ctx context.Context, cfg *config.Config, logger *slog.Logger, rawTitle string) (*types.Page, func(), error) {
	id, err := types.NormalizeTitle(rawTitle)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid page title %q: %w", rawTitle, err)
	}

	httpFetcher, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create fetcher: %w", err)
	}
	cleanup := func() { httpFetcher.Close() }

	page, err := httpFetcher.Fetch(ctx, id)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return page, cleanup, nil
}

// summaryCmd creates the "summary" subcommand.
func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <title>",
		Short: "Print the first paragraph of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			page, cleanup, err := fetchPage(cmd.Context(), cfg, logger, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := wiki.NewParser(logger).Summary(page)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}
}

// tableCmd creates the "table" subcommand.
func tableCmd() *cobra.Command {
	var (
		outputPath  string
		headerInRow bool
	)
	cmd := &cobra.Command{
		Use:   "table <title> <number>",
		Short: "Export the n-th table of an article as CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil || number < 1 {
				return fmt.Errorf("table number must be a positive integer, got %q", args[1])
			}

			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			page, cleanup, err := fetchPage(cmd.Context(), cfg, logger, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			rows, err := wiki.NewParser(logger).Table(page, number)
			if err != nil {
				return err
			}

			out := os.Stdout
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return wiki.WriteTableCSV(out, rows, headerInRow)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write CSV to file instead of stdout")
	cmd.Flags().BoolVar(&headerInRow, "header", true, "treat the first table row as the header")
	return cmd
}

// countCmd creates the "count" subcommand.
func countCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count <title>",
		Short: "Count one page's words into the accumulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := newStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			counts, err := store.Load(ctx)
			if err != nil {
				return err
			}

			page, cleanup, err := fetchPage(ctx, cfg, logger, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			text, err := wiki.NewParser(logger).FullText(page)
			if err != nil {
				return err
			}

			pageCounts := newCounter().Count(text)
			accumulator.Merge(counts, pageCounts)
			if err := store.Save(ctx, counts); err != nil {
				return err
			}

			total := 0
			for _, n := range pageCounts {
				total += n
			}
			fmt.Printf("Counted %d words (%d distinct) on %q; accumulator now holds %d distinct words.\n",
				total, len(pageCounts), string(page.ID), len(counts))
			return nil
		},
	}
	cmd.Flags().BoolVar(&stopwords, "stopwords", false, "drop common English stopwords")
	cmd.Flags().BoolVar(&stemming, "stem", false, "reduce words to their stem before counting")
	return cmd
}

// topCmd creates the "top" subcommand.
func topCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the most frequent accumulated words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := newStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			counts, err := store.Load(ctx)
			if err != nil {
				return err
			}
			if len(counts) == 0 {
				fmt.Println("Accumulator is empty. Run `wikiharvest crawl` or `wikiharvest count` first.")
				return nil
			}

			// Report-time views: the stored record itself stays raw.
			if stopwords {
				for word := range wordcount.DefaultStopwords() {
					delete(counts, word)
				}
			}
			if stemming {
				stemmed := make(map[string]int, len(counts))
				for word, count := range counts {
					if s := english.Stem(word, true); s != "" {
						word = s
					}
					stemmed[word] += count
				}
				counts = stemmed
			}

			for _, entry := range wordcount.TopN(counts, limit) {
				fmt.Printf("%8d  %s\n", entry.Count, entry.Word)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of words to show (0 = all)")
	cmd.Flags().BoolVar(&stopwords, "stopwords", false, "hide common English stopwords from the report")
	cmd.Flags().BoolVar(&stemming, "stem", false, "group counts by word stem in the report")
	return cmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wikiharvest %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Wiki:\n")
			fmt.Printf("  Base URL:           %s\n", cfg.Wiki.BaseURL)
			fmt.Printf("  User Agent:         %s\n", cfg.Wiki.UserAgent)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Timeout:            %s\n", cfg.Fetcher.Timeout)
			fmt.Printf("  Follow Redirects:   %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("  Max Body Size:      %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("  Page Cache Size:    %d\n", cfg.Fetcher.CacheSize)
			fmt.Printf("  Respect robots.txt: %v\n", cfg.Fetcher.RespectRobotsTxt)
			fmt.Printf("\nCrawler:\n")
			fmt.Printf("  Max Depth:          %d\n", cfg.Crawler.MaxDepth)
			fmt.Printf("  Wait:               %s\n", cfg.Crawler.Wait)
			fmt.Printf("  Checkpoint Path:    %s\n", cfg.Crawler.CheckpointPath)
			fmt.Printf("  Resume:             %v\n", cfg.Crawler.Resume)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Backend:            %s\n", cfg.Storage.Backend)
			fmt.Printf("  Path:               %s\n", cfg.Storage.Path)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:            %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Addr:               %s\n", cfg.Metrics.Addr)
			return nil
		},
	}
}
