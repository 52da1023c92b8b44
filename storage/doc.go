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


// Package storage provides the storage abstraction layer for storyweave.
//
// Two things are persisted between runs:
//
//   - RunRepository: completed runs (articles plus grouping statistics)
//   - EmbeddingCache: embedding vectors keyed by model and text, so repeated
//     runs over overlapping batches skip the embedding service
//
// # Backends
//
// The badger subpackage implements both interfaces over a single database:
//
//	store, err := badger.NewStore("/path/to/db")
//	runs := store.Runs()
//	cache := store.Embeddings()
//
// # Serialization
//
// Values are encoded with hand-written mus-go serializers defined in
// serialization.go. Timestamps are stored as Unix microseconds.
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
package storage
