package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/dedup"
)

type articleJSON struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary,omitempty"`
	Content   string   `json:"content"`
	GroupSize int      `json:"group_size"`
	SourceIDs []string `json:"source_ids"`
	Status    string   `json:"status"`
}

type statsJSON struct {
	TotalDocuments   int     `json:"total_documents"`
	TotalGroups      int     `json:"total_groups"`
	DuplicatedGroups int     `json:"duplicated_groups"`
	SingleDocuments  int     `json:"single_documents"`
	DuplicateRate    float64 `json:"duplicate_rate"`
}

type runJSON struct {
	ID        uint64        `json:"id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Threshold float64       `json:"threshold"`
	Stats     statsJSON     `json:"stats"`
	Articles  []articleJSON `json:"articles"`
}

func toRunJSON(run *core.Run) runJSON {
	out := runJSON{
		ID:        uint64(run.Id),
		CreatedAt: run.CreatedAt,
		Threshold: run.Threshold,
		Stats: statsJSON{
			TotalDocuments:   run.Stats.TotalDocuments,
			TotalGroups:      run.Stats.TotalGroups,
			DuplicatedGroups: run.Stats.DuplicatedGroups,
			SingleDocuments:  run.Stats.SingleDocuments,
			DuplicateRate:    run.Stats.DuplicateRate,
		},
		Articles: make([]articleJSON, 0, len(run.Articles)),
	}
	for _, a := range run.Articles {
		out.Articles = append(out.Articles, articleJSON{
			Title:     a.Title,
			Summary:   a.Summary,
			Content:   a.Content,
			GroupSize: a.GroupSize,
			SourceIDs: a.SourceIDs,
			Status:    a.Status.String(),
		})
	}
	return out
}

func writeRun(w io.Writer, run *core.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(toRunJSON(run))
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func printGroups(w io.Writer, analysis *dedup.Analysis, explain bool) {
	for i, g := range analysis.Groups {
		fmt.Fprintf(w, "Group %d (%d documents)\n", i+1, g.Size())
		for _, id := range g.Members {
			fmt.Fprintf(w, "  - %s\n", id)
		}
		if explain && !g.IsSingle() {
			for _, p := range analysis.PairScores(g) {
				fmt.Fprintf(w, "    lexical=%.3f semantic=%.3f hybrid=%.3f  %s <-> %s\n",
					p.Lexical, p.Semantic, p.Hybrid, p.A, p.B)
			}
		}
	}
	fmt.Fprintln(w)
	printStats(w, dedup.Statistics(analysis.Groups))
}

func printStats(w io.Writer, stats core.GroupStats) {
	fmt.Fprintf(w, "Documents: %d\n", stats.TotalDocuments)
	fmt.Fprintf(w, "Groups: %d\n", stats.TotalGroups)
	fmt.Fprintf(w, "Groups with duplicates: %d\n", stats.DuplicatedGroups)
	fmt.Fprintf(w, "Single documents: %d\n", stats.SingleDocuments)
	fmt.Fprintf(w, "Duplicate rate: %.1f%%\n", stats.DuplicateRate*100)
}

func printRunList(w io.Writer, runs []*core.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs stored.")
		return
	}
	fmt.Fprintf(w, "%-6s  %-20s  %-9s  %-9s  %-6s  %s\n", "ID", "CREATED", "THRESHOLD", "DOCUMENTS", "GROUPS", "FAILED")
	for _, r := range runs {
		failed := 0
		for _, a := range r.Articles {
			if a.Status == core.StatusFailed {
				failed++
			}
		}
		fmt.Fprintf(w, "%-6d  %-20s  %-9.2f  %-9d  %-6d  %d\n",
			r.Id, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Threshold,
			r.Stats.TotalDocuments, r.Stats.TotalGroups, failed)
	}
}
