package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/storyweave"
	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/extract"
	"github.com/poiesic/storyweave/input"
	"github.com/poiesic/storyweave/langdetect"
	"github.com/poiesic/storyweave/metrics"
	"github.com/poiesic/storyweave/storage"
	"github.com/poiesic/storyweave/storage/badger"
	"github.com/poiesic/storyweave/synthesis"
	"github.com/urfave/cli/v2"
)

var errSourceFlags = errors.New("exactly one of --input or --urls is required")

func runCommand(c *cli.Context) error {
	ctx := c.Context

	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	m := metricsFrom(c)

	docs, err := loadDocuments(ctx, c, settings, m)
	if err != nil {
		return err
	}

	engine, err := newEngine(c, settings, m)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Fprintf(os.Stderr, "Documents: %d\n", len(docs))
	fmt.Fprintf(os.Stderr, "Threshold: %.2f\n", engine.Threshold())
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", settings.AI.EmbeddingModel)
	fmt.Fprintf(os.Stderr, "Generator model: %s\n", settings.AI.GeneratorModel)
	fmt.Fprintln(os.Stderr)

	analysis, err := engine.Analyze(ctx, docs)
	if err != nil {
		return fmt.Errorf("grouping failed: %w", err)
	}

	tracker := synthesis.NewProgressTracker(os.Stderr, len(analysis.Groups))
	tracker.Start()
	run, err := engine.Synthesize(ctx, analysis, docs, tracker.Callback())
	tracker.Finish()
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	out, err := openOutput(c.String("output"))
	if err != nil {
		return err
	}
	defer out.Close()
	if err := writeRun(out, run); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintln(os.Stderr)
	printStats(os.Stderr, run.Stats)
	if run.Id != 0 {
		fmt.Fprintf(os.Stderr, "Stored as run %d\n", run.Id)
	}
	return nil
}

func groupsCommand(c *cli.Context) error {
	ctx := c.Context

	settings, err := loadSettings(c)
	if err != nil {
		return err
	}
	m := metricsFrom(c)

	docs, err := loadDocuments(ctx, c, settings, m)
	if err != nil {
		return err
	}

	engine, err := newEngine(c, settings, m)
	if err != nil {
		return err
	}
	defer engine.Close()

	analysis, err := engine.Analyze(ctx, docs)
	if err != nil {
		return fmt.Errorf("grouping failed: %w", err)
	}

	out, err := openOutput(c.String("output"))
	if err != nil {
		return err
	}
	defer out.Close()
	printGroups(out, analysis, c.Bool("explain"))
	return nil
}

func listRunsCommand(c *cli.Context) error {
	if c.Int("limit") < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs().ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	printRunList(os.Stdout, runs)
	return nil
}

func showRunCommand(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Runs().GetRun(c.Context, core.ID(c.Uint64("id")))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("run %d not found", c.Uint64("id"))
	}
	if err != nil {
		return fmt.Errorf("failed to read run: %w", err)
	}

	out, err := openOutput(c.String("output"))
	if err != nil {
		return err
	}
	defer out.Close()
	return writeRun(out, run)
}

func openStore(c *cli.Context) (storage.Store, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	store, err := badger.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// loadSettings reads --config, then applies the flags that were set
// explicitly.
func loadSettings(c *cli.Context) (*storyweave.Settings, error) {
	settings := storyweave.DefaultSettings()
	if path := c.String("config"); path != "" {
		loaded, err := storyweave.LoadSettings(path)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	if c.IsSet("threshold") {
		settings.Threshold = c.Float64("threshold")
	}
	if c.IsSet("max-concurrent") {
		settings.MaxConcurrent = c.Int("max-concurrent")
	}
	if v := c.String("embedding-host"); v != "" {
		settings.AI.EmbeddingHost = v
	}
	if v := c.String("embedding-model"); v != "" {
		settings.AI.EmbeddingModel = v
	}
	if v := c.String("generator-host"); v != "" {
		settings.AI.GeneratorHost = v
	}
	if v := c.String("generator-model"); v != "" {
		settings.AI.GeneratorModel = v
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

func newEngine(c *cli.Context, settings *storyweave.Settings, m *metrics.Metrics) (*storyweave.Engine, error) {
	aiConfig := settings.AIConfig(c.String("api-key"))
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []storyweave.EngineOption{
		storyweave.WithSettings(settings),
		storyweave.WithAIConfig(aiConfig),
		storyweave.WithMetrics(m),
		storyweave.WithLogger(slog.Default()),
	}
	if dbPath := c.String("db"); dbPath != "" {
		opts = append(opts, storyweave.WithDatabase(dbPath))
	}
	if !c.Bool("no-language-hint") {
		opts = append(opts, storyweave.WithLanguageDetector(langdetect.New()))
	}

	engine, err := storyweave.NewEngine(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, nil
}

func loadDocuments(ctx context.Context, c *cli.Context, settings *storyweave.Settings, m *metrics.Metrics) ([]core.Document, error) {
	inputPath, urlsPath := c.String("input"), c.String("urls")
	if (inputPath == "") == (urlsPath == "") {
		return nil, errSourceFlags
	}

	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		docs, err := input.LoadDocuments(f)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", inputPath, err)
		}
		return docs, nil
	}

	f, err := os.Open(urlsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open url list: %w", err)
	}
	defer f.Close()
	urls, err := input.LoadURLs(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", urlsPath, err)
	}
	if c.Bool("articles-only") {
		kept := input.FilterArticleURLs(urls)
		slog.Info("filtered url list", "total", len(urls), "articles", len(kept))
		urls = kept
	}

	extractor, err := extract.New(
		extract.WithTimeout(c.Duration("fetch-timeout")),
		extract.WithConcurrency(settings.MaxConcurrent),
		extract.WithMetrics(m),
		extract.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Fetching %d pages...\n", len(urls))
	return extractor.ExtractAll(ctx, urls), nil
}
