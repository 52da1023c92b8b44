package core

import (
	"encoding/binary"
	"net/url"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a single news item as seen by the pipeline.
// ID is usually the source URL and must be unique within a run.
type Document struct {
	ID           string
	Text         string
	SourceDomain string
}

// NewDocument builds a Document and derives SourceDomain from the id.
func NewDocument(id, text string) Document {
	return Document{ID: id, Text: text, SourceDomain: DomainFromURL(id)}
}

// HasText reports whether the document carries any non-blank text.
func (d Document) HasText() bool {
	return strings.TrimSpace(d.Text) != ""
}

// DomainFromURL returns the lower-cased host of rawURL without a leading
// "www.". It returns "" when rawURL is not an absolute URL.
func DomainFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// Group is an ordered list of document ids judged to describe the same event.
type Group struct {
	Members []string
}

// Size returns the number of members.
func (g Group) Size() int {
	return len(g.Members)
}

// IsSingle reports whether the group has exactly one member.
func (g Group) IsSingle() bool {
	return len(g.Members) == 1
}

// ArticleStatus is the terminal state of a synthesized article.
type ArticleStatus int

const (
	// StatusDone marks an article that was produced successfully.
	StatusDone ArticleStatus = iota + 1
	// StatusFailed marks a placeholder article for a group whose generation failed.
	StatusFailed
)

// String returns the lower-case name of the status.
func (s ArticleStatus) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SynthesizedArticle is the output produced for one group.
type SynthesizedArticle struct {
	Title     string
	Content   string
	Summary   string
	GroupSize int
	SourceIDs []string
	Status    ArticleStatus
}

// GroupStats summarizes a grouping result.
type GroupStats struct {
	TotalDocuments   int
	TotalGroups      int
	DuplicatedGroups int     // groups with more than one member
	SingleDocuments  int     // groups with exactly one member
	DuplicateRate    float64 // DuplicatedGroups / TotalGroups
}

// Run is a completed pipeline execution as stored by the run repository.
type Run struct {
	Id        ID
	CreatedAt time.Time
	Threshold float64
	Articles  []SynthesizedArticle
	Stats     GroupStats
}
