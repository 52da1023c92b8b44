package synthesis

import "strings"

const (
	maxTitleRunes   = 200
	maxSummaryRunes = 300

	defaultSingleTitle = "Untitled"
	defaultMergeTitle  = "Synthesized article"
	failedTitle        = "Article generation failed"

	summaryMarker = "**Summary:**"
)

// parseArticle splits generated Markdown into title, content and summary.
// The first top-level heading is the title and everything after it is the
// content. A "**Summary:**" line supplies the summary, otherwise the title
// is reused.
func parseArticle(text string) (title, content, summary string) {
	lines := strings.Split(text, "\n")

	title = defaultMergeTitle
	content = strings.TrimSpace(text)
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "##") {
			title = strings.TrimSpace(strings.ReplaceAll(line, "#", ""))
			content = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			break
		}
	}

	for _, line := range lines {
		if idx := strings.Index(line, summaryMarker); idx >= 0 {
			summary = strings.TrimSpace(line[idx+len(summaryMarker):])
			break
		}
	}

	title = truncateRunes(title, maxTitleRunes)
	if summary == "" {
		summary = title
	}
	return title, content, truncateRunes(summary, maxSummaryRunes)
}

// singleArticle derives a title from the first line longer than ten
// characters and keeps the text as content.
func singleArticle(text string) (title, content, summary string) {
	title = defaultSingleTitle
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) > 10 {
			line = strings.ReplaceAll(line, "Title:", "")
			line = strings.ReplaceAll(line, "#", "")
			if t := strings.TrimSpace(line); t != "" {
				title = t
			}
			break
		}
	}
	title = truncateRunes(title, maxTitleRunes)
	return title, text, title
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
