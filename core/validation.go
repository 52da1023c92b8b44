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


package core

import (
	"fmt"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be blank
//
// NOT validated:
//   - Text (empty documents are legal and become singleton groups)
//   - SourceDomain (empty when the id is not a URL)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyID)
	}
	return nil
}

// ValidateGroup checks that a group is non-empty and has no repeated member.
func ValidateGroup(g Group) error {
	if len(g.Members) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidGroup, ErrEmptyGroup)
	}
	seen := make(map[string]struct{}, len(g.Members))
	for _, id := range g.Members {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %w: %q", ErrInvalidGroup, ErrDuplicateMember, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidateArticle checks that GroupSize matches the number of source ids.
func ValidateArticle(a *SynthesizedArticle) error {
	if a == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}
	if a.GroupSize != len(a.SourceIDs) {
		return fmt.Errorf("%w: %w (%d != %d)", ErrInvalidArticle, ErrSizeMismatch, a.GroupSize, len(a.SourceIDs))
	}
	return nil
}

// ValidatePartition checks that groups are pairwise disjoint and that their
// union equals the set of ids.
func ValidatePartition(ids []string, groups []Group) error {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(ids))
	for _, g := range groups {
		if err := ValidateGroup(g); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPartition, err)
		}
		for _, id := range g.Members {
			if _, ok := seen[id]; ok {
				return fmt.Errorf("%w: %w: %q", ErrInvalidPartition, ErrDuplicateMember, id)
			}
			if _, ok := want[id]; !ok {
				return fmt.Errorf("%w: unknown id %q", ErrInvalidPartition, id)
			}
			seen[id] = struct{}{}
		}
	}

	if len(seen) != len(want) {
		return fmt.Errorf("%w: %d of %d ids grouped", ErrInvalidPartition, len(seen), len(want))
	}
	return nil
}
