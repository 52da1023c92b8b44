package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name:    "valid document",
			doc:     &Document{ID: "https://a.example/1", Text: "hello"},
			wantErr: nil,
		},
		{
			name:    "valid document with empty text",
			doc:     &Document{ID: "https://a.example/1"},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "blank id",
			doc:     &Document{ID: "   ", Text: "hello"},
			wantErr: ErrEmptyID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateGroup(t *testing.T) {
	tests := []struct {
		name    string
		group   Group
		wantErr error
	}{
		{name: "single member", group: Group{Members: []string{"a"}}},
		{name: "several members", group: Group{Members: []string{"a", "b", "c"}}},
		{name: "empty", group: Group{}, wantErr: ErrEmptyGroup},
		{name: "duplicate member", group: Group{Members: []string{"a", "a"}}, wantErr: ErrDuplicateMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGroup(tt.group)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateGroup() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateGroup() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateArticle(t *testing.T) {
	ok := &SynthesizedArticle{GroupSize: 2, SourceIDs: []string{"a", "b"}}
	if err := ValidateArticle(ok); err != nil {
		t.Errorf("ValidateArticle() error = %v, want nil", err)
	}

	bad := &SynthesizedArticle{GroupSize: 3, SourceIDs: []string{"a"}}
	if err := ValidateArticle(bad); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("ValidateArticle() error = %v, want %v", err, ErrSizeMismatch)
	}

	if err := ValidateArticle(nil); !errors.Is(err, ErrInvalidArticle) {
		t.Errorf("ValidateArticle(nil) error = %v, want %v", err, ErrInvalidArticle)
	}
}

func TestValidatePartition(t *testing.T) {
	ids := []string{"a", "b", "c"}

	tests := []struct {
		name    string
		groups  []Group
		wantErr error
	}{
		{
			name:   "exact partition",
			groups: []Group{{Members: []string{"a", "c"}}, {Members: []string{"b"}}},
		},
		{
			name:    "missing id",
			groups:  []Group{{Members: []string{"a", "b"}}},
			wantErr: ErrInvalidPartition,
		},
		{
			name:    "overlapping groups",
			groups:  []Group{{Members: []string{"a", "b"}}, {Members: []string{"b", "c"}}},
			wantErr: ErrDuplicateMember,
		},
		{
			name:    "unknown id",
			groups:  []Group{{Members: []string{"a", "b", "c", "d"}}},
			wantErr: ErrInvalidPartition,
		},
		{
			name:    "empty group",
			groups:  []Group{{Members: []string{"a", "b", "c"}}, {}},
			wantErr: ErrEmptyGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePartition(ids, tt.groups)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePartition() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePartition() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
