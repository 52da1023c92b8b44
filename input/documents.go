// Package input reads document batches and URL lists for the pipeline.
package input

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/poiesic/storyweave/core"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed documents.schema.json
var documentsSchemaJSON string

const schemaResource = "documents.schema.json"

// Batch is the JSON envelope accepted by LoadDocuments.
type Batch struct {
	Documents []BatchDocument `json:"documents"`
}

// BatchDocument is one entry of a Batch.
type BatchDocument struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	SourceDomain string `json:"source_domain,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// LoadDocuments decodes and validates a JSON document batch. Documents
// without a source_domain get one derived from their id.
func LoadDocuments(r io.Reader) ([]core.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}

	value, err := decodeStrictJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode JSON: %w", ErrInvalidBatch, err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}

	var batch Batch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBatch, err)
	}

	docs := make([]core.Document, len(batch.Documents))
	for i, d := range batch.Documents {
		doc := core.NewDocument(d.ID, d.Text)
		if d.SourceDomain != "" {
			doc.SourceDomain = strings.TrimPrefix(strings.ToLower(d.SourceDomain), "www.")
		}
		docs[i] = doc
	}
	return docs, nil
}

// WriteDocuments encodes docs in the format LoadDocuments reads.
func WriteDocuments(w io.Writer, docs []core.Document) error {
	batch := Batch{Documents: make([]BatchDocument, len(docs))}
	for i, d := range docs {
		batch.Documents[i] = BatchDocument{ID: d.ID, Text: d.Text, SourceDomain: d.SourceDomain}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(batch)
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(schemaResource, strings.NewReader(documentsSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile(schemaResource)
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("trailing content after JSON value")
	}
	return value, nil
}
