package input

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// nonArticlePatterns mark listing, profile, legal and sharing pages.
var nonArticlePatterns = []string{
	"/category/", "/categories/", "/categoria/",
	"/author/", "/autor/", "/writer/",
	"/tag/", "/tags/", "/tema/", "/etiqueta/",
	"/search", "/busqueda/", "/archive/", "/archivo/",
	"/faqs/", "/legal", "/privacy", "/privacidad", "/cookies",
	"?page=", "&page=", "?items_per_page=",
	"facebook.com", "twitter.com", "whatsapp.com", "addthis.com",
	"mailto:", "tel:",
}

// LoadURLs reads one URL per line. Blank lines and lines starting with '#'
// are skipped, and repeated URLs are kept once in first-seen order.
func LoadURLs(r io.Reader) ([]string, error) {
	var urls []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		u, err := url.Parse(line)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%w: line %d: %q", ErrInvalidURL, lineNo, line)
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}
	return urls, nil
}

// IsArticleURL reports whether rawURL looks like a single news article
// rather than a homepage, listing or utility page. Article slugs are
// expected to contain hyphens.
func IsArticleURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return false
	}
	segments := strings.Split(path, "/")
	if !strings.Contains(segments[len(segments)-1], "-") {
		return false
	}

	lower := strings.ToLower(rawURL)
	for _, pattern := range nonArticlePatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}

// FilterArticleURLs keeps the urls accepted by IsArticleURL.
func FilterArticleURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if IsArticleURL(u) {
			out = append(out, u)
		}
	}
	return out
}
