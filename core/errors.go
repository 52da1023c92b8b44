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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidGroup indicates a Group failed validation.
	ErrInvalidGroup = errors.New("invalid group")

	// ErrInvalidArticle indicates a SynthesizedArticle failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrInvalidPartition indicates a set of groups is not a partition of the input.
	ErrInvalidPartition = errors.New("invalid partition")

	// ErrEmptyID indicates a document has no identifier.
	ErrEmptyID = errors.New("document id cannot be empty")

	// ErrEmptyGroup indicates a group has no members.
	ErrEmptyGroup = errors.New("group cannot be empty")

	// ErrDuplicateMember indicates an id appears more than once.
	ErrDuplicateMember = errors.New("duplicate member id")

	// ErrSizeMismatch indicates GroupSize disagrees with the number of source ids.
	ErrSizeMismatch = errors.New("group size does not match source ids")
)
