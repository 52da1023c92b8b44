package synthesis

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a professional journalist. You receive several news articles from different outlets that report the same event, and you write ONE unified, complete article from them.

Rules:
1. Combine every relevant fact from all sources.
2. Remove redundancy.
3. Keep all important data: dates, names, places and figures.
4. Write clearly and professionally.
5. Use Markdown for structure (title, subtitles, occasional lists). Do not overuse lists.
6. Do NOT invent anything that is not in the sources.
7. If the sources contradict each other, say so explicitly.`

const sourceSeparator = "\n\n---\n\n"

// buildSystemPrompt returns the system instructions, with a language
// instruction appended when language is known.
func buildSystemPrompt(language string) string {
	if language == "" {
		return systemPrompt
	}
	return systemPrompt + "\n8. Write the article in " + language + ", the language of the sources."
}

// buildPrompt labels each source text and asks for a titled Markdown article.
func buildPrompt(sources []string) string {
	labelled := make([]string, len(sources))
	for i, text := range sources {
		labelled[i] = fmt.Sprintf("**SOURCE %d:**\n%s", i+1, text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d articles from different sources about the same event.\n\n", len(sources))
	b.WriteString(strings.Join(labelled, sourceSeparator))
	b.WriteString(sourceSeparator)
	b.WriteString(`Write ONE unified article that:
1. Has a clear, descriptive title
2. Includes ALL relevant information from every source
3. Is organized into sections where useful
4. Keeps every important detail (dates, names, figures)

Output format (use exactly this layout):

# [ARTICLE TITLE]

**Summary:** [one or two sentence summary]

## [Subtitle 1]

[Section content]

## [Subtitle 2]

[Section content]

## Conclusion

[Closing paragraph]

---

Remember: combine the information without inventing anything. Mention any contradictions between sources.`)
	return b.String()
}
