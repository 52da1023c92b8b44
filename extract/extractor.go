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

// Package extract fetches news pages and reduces them to the short text
// the similarity stages work on: description, headline, subtitle, the
// first substantial paragraphs and the page keywords.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/metrics"
)

const (
	DefaultTimeout     = 15 * time.Second
	DefaultMaxChars    = 8000
	DefaultConcurrency = 4
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxParagraphs     = 4
	minParagraphRunes = 40
	minSelectedRunes  = 60
	maxParagraphRunes = 400
	maxKeywordRunes   = 200
	minHeadingRunes   = 5
	boilerplateRunes  = 100

	noiseSelector = "script, style, nav, header, footer, aside, noscript, iframe, form, button, input"
)

var (
	containerClass  = regexp.MustCompile(`(?i)article|content|post|entry|body`)
	whitespace      = regexp.MustCompile(`\s+`)
	boilerplateTerm = []string{
		"cookies", "privacy policy", "all rights reserved", "copyright",
		"terms and conditions", "subscribe", "newsletter", "follow us",
		"share on", "advertisement", "sponsored", "read more",
		"política de privacidad", "aviso legal", "todos los derechos",
		"términos y condiciones", "suscríbete", "síguenos en", "compartir en",
		"redes sociales", "más información", "publicidad", "patrocinado",
	}
)

// Extractor downloads pages and turns them into pipeline documents.
type Extractor struct {
	client      *http.Client
	userAgent   string
	maxChars    int
	concurrency int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithHTTPClient replaces the HTTP client. Its timeout is kept as is.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Extractor) error {
		if client != nil {
			e.client = client
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout.
// Default is DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		e.client.Timeout = d
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(e *Extractor) error {
		if ua != "" {
			e.userAgent = ua
		}
		return nil
	}
}

// WithMaxChars caps the length of the extracted text in runes.
// Default is DefaultMaxChars.
func WithMaxChars(n int) Option {
	return func(e *Extractor) error {
		if n <= 0 {
			return fmt.Errorf("max chars must be positive, got %d", n)
		}
		e.maxChars = n
		return nil
	}
}

// WithConcurrency sets how many pages ExtractAll fetches at once.
func WithConcurrency(n int) Option {
	return func(e *Extractor) error {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
		return nil
	}
}

// WithMetrics counts failed extractions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) error {
		e.metrics = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New creates an Extractor.
func New(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxChars:    DefaultMaxChars,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "extract")
	return e, nil
}

// Extract fetches pageURL and returns its condensed text.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	doc, err := e.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	text := e.compose(doc)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNoContent, pageURL)
	}
	e.logger.Debug("extracted page", "url", pageURL, "chars", len([]rune(text)))
	return text, nil
}

// ExtractAll extracts every url and returns one document per url, in input
// order. Pages that cannot be extracted yield a document with empty text.
func (e *Extractor) ExtractAll(ctx context.Context, urls []string) []core.Document {
	docs := make([]core.Document, len(urls))
	for i, u := range urls {
		docs[i] = core.NewDocument(u, "")
	}
	if len(urls) == 0 {
		return docs
	}

	pool, err := ants.NewPool(e.concurrency)
	if err != nil {
		e.logger.Error("failed to create extraction pool", "error", err)
		return docs
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			text, err := e.Extract(ctx, u)
			if err != nil {
				e.metrics.ObserveExtractionFailure()
				e.logger.Warn("extraction failed", "url", u, "error", err)
				return
			}
			docs[i].Text = text
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			e.metrics.ObserveExtractionFailure()
			e.logger.Error("failed to submit extraction", "url", u, "error", err)
		}
	}
	wg.Wait()

	return docs
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnexpectedStatus, pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// compose assembles the labelled parts of the page, one per line.
func (e *Extractor) compose(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()

	var parts []string
	if desc := metaContent(doc, `meta[name="description"]`, `meta[property="og:description"]`); desc != "" {
		parts = append(parts, "Summary: "+desc)
	}
	if h1 := clean(doc.Find("h1").First().Text()); runeLen(h1) > minHeadingRunes {
		parts = append(parts, "Title: "+h1)
	}
	if h2 := clean(doc.Find("h2").First().Text()); runeLen(h2) > minHeadingRunes {
		parts = append(parts, "Subtitle: "+h2)
	}

	var selected []string
	for _, p := range paragraphs(doc) {
		if len(selected) == maxParagraphs {
			break
		}
		if runeLen(p) > minSelectedRunes {
			selected = append(selected, truncate(p, maxParagraphRunes))
		}
	}
	if len(selected) > 0 {
		parts = append(parts, "Content: "+strings.Join(selected, " "))
	}

	if kw := metaContent(doc, `meta[name="keywords"]`); kw != "" {
		parts = append(parts, "Topics: "+truncate(kw, maxKeywordRunes))
	}

	return truncate(strings.Join(parts, "\n"), e.maxChars)
}

// paragraphs returns the quality paragraphs of the main content container.
func paragraphs(doc *goquery.Document) []string {
	container := articleContainer(doc)
	if container == nil {
		return nil
	}

	var out []string
	container.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := clean(s.Text())
		if runeLen(text) <= minParagraphRunes || strings.HasPrefix(text, "http") || isBoilerplate(text) {
			return
		}
		out = append(out, text)
	})
	return out
}

func articleContainer(doc *goquery.Document) *goquery.Selection {
	if s := doc.Find("article").First(); s.Length() > 0 {
		return s
	}
	div := doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		return ok && containerClass.MatchString(class)
	}).First()
	if div.Length() > 0 {
		return div
	}
	for _, sel := range []string{"main", `div[role="main"]`, "body"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if content = clean(content); content != "" {
				return content
			}
		}
	}
	return ""
}

// isBoilerplate flags short texts that look like cookie banners, share
// prompts and similar page furniture.
func isBoilerplate(text string) bool {
	if runeLen(text) >= boilerplateRunes {
		return false
	}
	lower := strings.ToLower(text)
	for _, term := range boilerplateTerm {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func clean(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
