package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/dedup"
	"github.com/poiesic/storyweave/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger_InvalidLevel(t *testing.T) {
	err := newApp().Run([]string{"storyweave", "--log-level", "verbose", "runs", "--db", t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRunCommandSourceValidation(t *testing.T) {
	t.Run("input or urls is required", func(t *testing.T) {
		err := newApp().Run([]string{"storyweave", "run"})
		assert.ErrorIs(t, err, errSourceFlags)
	})

	t.Run("input and urls are exclusive", func(t *testing.T) {
		err := newApp().Run([]string{"storyweave", "run", "--input", "docs.json", "--urls", "urls.txt"})
		assert.ErrorIs(t, err, errSourceFlags)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		err := newApp().Run([]string{"storyweave", "run", "--input", "docs.json", "--threshold", "1.5"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid settings")
	})

	t.Run("missing input file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.json")
		err := newApp().Run([]string{"storyweave", "groups", "--input", missing})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open input")
	})
}

func TestRunCommandFlags(t *testing.T) {
	app := newApp()
	var run *cli.Command
	for _, cmd := range app.Commands {
		if cmd.Name == "run" {
			run = cmd
		}
	}
	require.NotNil(t, run)

	names := map[string]bool{}
	for _, flag := range run.Flags {
		for _, name := range flag.Names() {
			names[name] = true
		}
	}
	for _, want := range []string{"input", "urls", "threshold", "max-concurrent", "output", "db", "api-key", "embedding-model", "generator-model"} {
		assert.True(t, names[want], "missing flag %s", want)
	}

	for _, flag := range run.Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == "api-key" {
			assert.Equal(t, []string{"OPENAI_API_KEY"}, f.EnvVars)
		}
	}
}

func TestLoadSettings_FromConfigAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threshold: 0.6\nmaxConcurrent: 4\n"), 0o644))

	app := newApp()
	var got struct {
		threshold     float64
		maxConcurrent int
		model         string
	}
	for _, cmd := range app.Commands {
		if cmd.Name == "groups" {
			cmd.Action = func(c *cli.Context) error {
				s, err := loadSettings(c)
				if err != nil {
					return err
				}
				got.threshold = s.Threshold
				got.maxConcurrent = s.MaxConcurrent
				got.model = s.AI.EmbeddingModel
				return nil
			}
		}
	}

	err := app.Run([]string{"storyweave", "--config", path, "groups", "--max-concurrent", "2", "--embedding-model", "nomic-embed-text"})
	require.NoError(t, err)
	assert.Equal(t, 0.6, got.threshold)
	assert.Equal(t, 2, got.maxConcurrent)
	assert.Equal(t, "nomic-embed-text", got.model)
}

func TestRunsCommand(t *testing.T) {
	t.Run("db is required", func(t *testing.T) {
		err := newApp().Run([]string{"storyweave", "runs"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database path is required")
	})

	t.Run("show requires id", func(t *testing.T) {
		err := newApp().Run([]string{"storyweave", "runs", "show", "--db", t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "id")
	})

	t.Run("show unknown run", func(t *testing.T) {
		err := newApp().Run([]string{"storyweave", "runs", "show", "--db", t.TempDir(), "--id", "42"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run 42 not found")
	})
}

func TestShowRunWritesJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := badger.NewStore(dir)
	require.NoError(t, err)
	saved, err := store.Runs().SaveRun(context.Background(), &core.Run{
		Threshold: 0.75,
		Stats:     core.GroupStats{TotalDocuments: 2, TotalGroups: 1, DuplicatedGroups: 1, DuplicateRate: 1},
		Articles: []core.SynthesizedArticle{{
			Title:     "Fire in Alcorcón",
			Content:   "body",
			GroupSize: 2,
			SourceIDs: []string{"a", "b"},
			Status:    core.StatusDone,
		}},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out := filepath.Join(t.TempDir(), "run.json")
	err = newApp().Run([]string{"storyweave", "runs", "show", "--db", dir, "--id", strconv.FormatUint(uint64(saved.Id), 10), "--output", out})
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded runJSON
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, uint64(saved.Id), decoded.ID)
	require.Len(t, decoded.Articles, 1)
	assert.Equal(t, "Fire in Alcorcón", decoded.Articles[0].Title)
	assert.Equal(t, "done", decoded.Articles[0].Status)
	assert.Equal(t, []string{"a", "b"}, decoded.Articles[0].SourceIDs)
	assert.Equal(t, 1, decoded.Stats.DuplicatedGroups)
}

func TestLoadEnv(t *testing.T) {
	assert.NoError(t, loadEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORYWEAVE_TEST_ENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("STORYWEAVE_TEST_ENV") })

	require.NoError(t, loadEnv(path))
	assert.Equal(t, "loaded", os.Getenv("STORYWEAVE_TEST_ENV"))
}

func TestPrintGroups(t *testing.T) {
	analysis := &dedup.Analysis{
		IDs: []string{"a", "b", "c"},
		Groups: []core.Group{
			{Members: []string{"a", "b"}},
			{Members: []string{"c"}},
		},
	}

	var buf bytes.Buffer
	printGroups(&buf, analysis, true)
	out := buf.String()
	assert.Contains(t, out, "Group 1 (2 documents)\n  - a\n  - b\n")
	assert.Contains(t, out, "Group 2 (1 documents)\n  - c\n")
	assert.Contains(t, out, "Groups with duplicates: 1")
	assert.Contains(t, out, "Duplicate rate: 50.0%")
}

func TestToRunJSON(t *testing.T) {
	created := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	out := toRunJSON(&core.Run{
		CreatedAt: created,
		Threshold: 0.75,
		Articles: []core.SynthesizedArticle{
			{Title: "Article generation failed", GroupSize: 2, SourceIDs: []string{"x", "y"}, Status: core.StatusFailed},
		},
	})
	assert.Zero(t, out.ID)
	assert.Equal(t, created, out.CreatedAt)
	require.Len(t, out.Articles, 1)
	assert.Equal(t, "failed", out.Articles[0].Status)
}
