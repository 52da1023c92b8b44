package input

import (
	"bytes"
	"strings"
	"testing"

	"github.com/poiesic/storyweave/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocuments(t *testing.T) {
	payload := `{
  "documents": [
    {"id": "https://www.Example.com/news/flood-hits-town", "text": "Flood hits town"},
    {"id": "b", "text": "", "source_domain": "www.SoyDeMadrid.com"}
  ]
}`
	docs, err := LoadDocuments(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "https://www.Example.com/news/flood-hits-town", docs[0].ID)
	assert.Equal(t, "Flood hits town", docs[0].Text)
	assert.Equal(t, "example.com", docs[0].SourceDomain)

	assert.Equal(t, "b", docs[1].ID)
	assert.False(t, docs[1].HasText())
	assert.Equal(t, "soydemadrid.com", docs[1].SourceDomain)
}

func TestLoadDocuments_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"documents": [`},
		{"missing documents", `{}`},
		{"missing text", `{"documents": [{"id": "a"}]}`},
		{"empty id", `{"documents": [{"id": "", "text": "x"}]}`},
		{"wrong type", `{"documents": [{"id": 1, "text": "x"}]}`},
		{"unknown field", `{"documents": [{"id": "a", "text": "x", "url": "y"}]}`},
		{"trailing content", `{"documents": []} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDocuments(strings.NewReader(tt.payload))
			assert.ErrorIs(t, err, ErrInvalidBatch)
		})
	}
}

func TestLoadDocuments_Empty(t *testing.T) {
	_, err := LoadDocuments(strings.NewReader("  \n "))
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestWriteDocuments_RoundTrip(t *testing.T) {
	docs := []core.Document{
		core.NewDocument("https://a.example/story-one", "first"),
		{ID: "plain-id", Text: "second"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDocuments(&buf, docs))

	got, err := LoadDocuments(&buf)
	require.NoError(t, err)
	assert.Equal(t, docs, got)
}
