package synthesis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArticle(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantTitle   string
		wantContent string
		wantSummary string
	}{
		{
			name:        "heading and summary",
			input:       "# Fire in the old town\n\n**Summary:** Firefighters put out a blaze.\n\n## Details\n\nNobody was hurt.",
			wantTitle:   "Fire in the old town",
			wantContent: "**Summary:** Firefighters put out a blaze.\n\n## Details\n\nNobody was hurt.",
			wantSummary: "Firefighters put out a blaze.",
		},
		{
			name:        "heading without summary",
			input:       "Intro text\n#  Council approves budget \nBody line",
			wantTitle:   "Council approves budget",
			wantContent: "Body line",
			wantSummary: "Council approves budget",
		},
		{
			name:        "subheadings only",
			input:       "## Section\nSome text",
			wantTitle:   defaultMergeTitle,
			wantContent: "## Section\nSome text",
			wantSummary: defaultMergeTitle,
		},
		{
			name:        "no heading",
			input:       "  plain response  ",
			wantTitle:   defaultMergeTitle,
			wantContent: "plain response",
			wantSummary: defaultMergeTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, content, summary := parseArticle(tt.input)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantContent, content)
			assert.Equal(t, tt.wantSummary, summary)
		})
	}
}

func TestParseArticle_Truncates(t *testing.T) {
	long := strings.Repeat("é", 250)
	title, _, summary := parseArticle("# " + long + "\n**Summary:** " + strings.Repeat("s", 400))

	assert.Equal(t, 200, len([]rune(title)))
	assert.Equal(t, 300, len([]rune(summary)))
}

func TestSingleArticle(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
	}{
		{"title prefix", "Title: Storm floods the valley\nContent: more", "Storm floods the valley"},
		{"markdown heading", "# Storm floods the valley", "Storm floods the valley"},
		{"skips short lines", "short\n\nA much longer first line here", "A much longer first line here"},
		{"empty", "", defaultSingleTitle},
		{"only short lines", "tiny\nlines", defaultSingleTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, content, summary := singleArticle(tt.input)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.input, content)
			assert.Equal(t, title, summary)
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abc", 2))
	assert.Equal(t, "ñá", truncateRunes("ñáé", 2))
	assert.Equal(t, "", truncateRunes("abc", 0))
}
