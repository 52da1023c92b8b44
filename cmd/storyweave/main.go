// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/storyweave/extract"
	"github.com/poiesic/storyweave/metrics"
	"github.com/urfave/cli/v2"
)

const metricsKey = "metrics"

func main() {
	if err := loadEnv(".env"); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "storyweave",
		Usage: "Group news articles about the same event and write one article per event",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML settings file",
				EnvVars: []string{"STORYWEAVE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve Prometheus metrics on this address (e.g. :9090)",
				EnvVars: []string{"STORYWEAVE_METRICS_ADDR"},
			},
		},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Group documents and synthesize one article per group",
				Action: runCommand,
				Flags:  append(sourceFlags(), append(pipelineFlags(), aiFlags()...)...),
			},
			{
				Name:   "groups",
				Usage:  "Group documents without synthesizing and print the groups",
				Action: groupsCommand,
				Flags: append(append(sourceFlags(), pipelineFlags()...), append(aiFlags(),
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print pairwise lexical, semantic and hybrid scores inside each group",
					},
				)...),
			},
			{
				Name:   "runs",
				Usage:  "List stored runs",
				Action: listRunsCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to list (0 lists all)",
						Value: 20,
					},
				},
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print one stored run as JSON",
						Action: showRunCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.Uint64Flag{
								Name:     "id",
								Usage:    "Run ID",
								Required: true,
							},
							&cli.StringFlag{
								Name:    "output",
								Aliases: []string{"o"},
								Usage:   "Write JSON to this file instead of stdout",
							},
						},
					},
				},
			},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "JSON file with the documents to process",
		},
		&cli.StringFlag{
			Name:    "urls",
			Aliases: []string{"u"},
			Usage:   "Text file with one article URL per line; pages are fetched and extracted",
		},
		&cli.BoolFlag{
			Name:  "articles-only",
			Usage: "With --urls, skip URLs that do not look like article pages",
		},
		&cli.DurationFlag{
			Name:  "fetch-timeout",
			Usage: "Per-page timeout when extracting URLs",
			Value: extract.DefaultTimeout,
		},
	}
}

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:    "threshold",
			Aliases: []string{"t"},
			Usage:   "Minimum hybrid similarity for two documents to share a group",
		},
		&cli.IntFlag{
			Name:  "max-concurrent",
			Usage: "Maximum number of groups synthesized at once",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write JSON to this file instead of stdout",
		},
		dbFlag(),
		&cli.BoolFlag{
			Name:  "no-language-hint",
			Usage: "Do not ask the generator to write in the language of the sources",
		},
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			EnvVars: []string{"STORYWEAVE_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"STORYWEAVE_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "generator-host",
			Usage:   "Text generation service host URL",
			EnvVars: []string{"STORYWEAVE_GENERATOR_HOST"},
		},
		&cli.StringFlag{
			Name:    "generator-model",
			Usage:   "Text generation model name",
			EnvVars: []string{"STORYWEAVE_GENERATOR_MODEL"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key sent to the AI services",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory (embedding cache and run history)",
		EnvVars: []string{"STORYWEAVE_DB"},
	}
}

// loadEnv loads path into the environment. A missing file is not an error.
// Variables already set win over the file.
func loadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func before(c *cli.Context) error {
	if err := setupLogger(c); err != nil {
		return err
	}
	return setupMetrics(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// setupMetrics creates the collectors and, when --metrics-addr is set,
// serves them until the process exits.
func setupMetrics(c *cli.Context) error {
	m := metrics.New("storyweave")
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[metricsKey] = m

	addr := c.String("metrics-addr")
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "err", err)
		}
	}()
	return nil
}

func metricsFrom(c *cli.Context) *metrics.Metrics {
	if c.App.Metadata == nil {
		return nil
	}
	m, _ := c.App.Metadata[metricsKey].(*metrics.Metrics)
	return m
}
