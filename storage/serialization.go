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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/storyweave/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vec []float32) []byte {
	buf := make([]byte, vectorSize(vec))
	marshalVector(vec, buf)
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	vec, _, err := unmarshalVector(data)
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %w", ErrSerializationFailed, err)
	}
	return vec, nil
}

// MarshalRun serializes a Run to bytes.
func MarshalRun(run *core.Run) []byte {
	buf := make([]byte, runSize(run))
	marshalRun(run, buf)
	return buf
}

// UnmarshalRun deserializes a Run from bytes.
func UnmarshalRun(data []byte) (*core.Run, error) {
	run, _, err := unmarshalRun(data)
	if err != nil {
		return nil, fmt.Errorf("%w: run: %w", ErrSerializationFailed, err)
	}
	return run, nil
}

// Runs are laid out as id, created-at (unix micro), threshold, stats and
// finally the article list. Lists are prefixed by their length.

func runSize(r *core.Run) int {
	n := varint.Uint64.Size(uint64(r.Id))
	n += varint.Int64.Size(r.CreatedAt.UnixMicro())
	n += raw.Float64.Size(r.Threshold)
	n += statsSize(r.Stats)
	n += varint.Int.Size(len(r.Articles))
	for i := range r.Articles {
		n += articleSize(&r.Articles[i])
	}
	return n
}

func marshalRun(r *core.Run, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(r.Id), bs)
	n += varint.Int64.Marshal(r.CreatedAt.UnixMicro(), bs[n:])
	n += raw.Float64.Marshal(r.Threshold, bs[n:])
	n += marshalStats(r.Stats, bs[n:])
	n += varint.Int.Marshal(len(r.Articles), bs[n:])
	for i := range r.Articles {
		n += marshalArticle(&r.Articles[i], bs[n:])
	}
	return n
}

func unmarshalRun(bs []byte) (*core.Run, int, error) {
	var r core.Run

	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	r.Id = core.ID(id)

	micros, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	r.CreatedAt = time.UnixMicro(micros).UTC()

	r.Threshold, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}

	r.Stats, n1, err = unmarshalStats(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}

	count, n1, err := unmarshalLength(bs[n:])
	n += n1
	if err != nil {
		return nil, n, err
	}
	if count > 0 {
		r.Articles = make([]core.SynthesizedArticle, count)
	}
	for i := 0; i < count; i++ {
		n1, err = unmarshalArticle(&r.Articles[i], bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return &r, n, nil
}

func statsSize(s core.GroupStats) int {
	return varint.Int.Size(s.TotalDocuments) +
		varint.Int.Size(s.TotalGroups) +
		varint.Int.Size(s.DuplicatedGroups) +
		varint.Int.Size(s.SingleDocuments) +
		raw.Float64.Size(s.DuplicateRate)
}

func marshalStats(s core.GroupStats, bs []byte) int {
	n := varint.Int.Marshal(s.TotalDocuments, bs)
	n += varint.Int.Marshal(s.TotalGroups, bs[n:])
	n += varint.Int.Marshal(s.DuplicatedGroups, bs[n:])
	n += varint.Int.Marshal(s.SingleDocuments, bs[n:])
	n += raw.Float64.Marshal(s.DuplicateRate, bs[n:])
	return n
}

func unmarshalStats(bs []byte) (core.GroupStats, int, error) {
	var s core.GroupStats
	n := 0
	for _, dst := range []*int{&s.TotalDocuments, &s.TotalGroups, &s.DuplicatedGroups, &s.SingleDocuments} {
		v, n1, err := varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return s, n, err
		}
		*dst = v
	}
	rate, n1, err := raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}
	s.DuplicateRate = rate
	return s, n, nil
}

func articleSize(a *core.SynthesizedArticle) int {
	n := ord.String.Size(a.Title)
	n += ord.String.Size(a.Content)
	n += ord.String.Size(a.Summary)
	n += varint.Int.Size(a.GroupSize)
	n += varint.Int.Size(len(a.SourceIDs))
	for _, id := range a.SourceIDs {
		n += ord.String.Size(id)
	}
	n += varint.Int.Size(int(a.Status))
	return n
}

func marshalArticle(a *core.SynthesizedArticle, bs []byte) int {
	n := ord.String.Marshal(a.Title, bs)
	n += ord.String.Marshal(a.Content, bs[n:])
	n += ord.String.Marshal(a.Summary, bs[n:])
	n += varint.Int.Marshal(a.GroupSize, bs[n:])
	n += varint.Int.Marshal(len(a.SourceIDs), bs[n:])
	for _, id := range a.SourceIDs {
		n += ord.String.Marshal(id, bs[n:])
	}
	n += varint.Int.Marshal(int(a.Status), bs[n:])
	return n
}

func unmarshalArticle(a *core.SynthesizedArticle, bs []byte) (int, error) {
	n := 0
	for _, dst := range []*string{&a.Title, &a.Content, &a.Summary} {
		v, n1, err := ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
		*dst = v
	}

	size, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	a.GroupSize = size

	count, n1, err := unmarshalLength(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	if count > 0 {
		a.SourceIDs = make([]string, count)
	}
	for i := 0; i < count; i++ {
		a.SourceIDs[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}

	status, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	a.Status = core.ArticleStatus(status)
	return n, nil
}

func vectorSize(vec []float32) int {
	n := varint.Int.Size(len(vec))
	for _, v := range vec {
		n += raw.Float32.Size(v)
	}
	return n
}

func marshalVector(vec []float32, bs []byte) int {
	n := varint.Int.Marshal(len(vec), bs)
	for _, v := range vec {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) ([]float32, int, error) {
	count, n, err := unmarshalLength(bs)
	if err != nil {
		return nil, n, err
	}
	vec := make([]float32, count)
	for i := range vec {
		v, n1, err := raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
		vec[i] = v
	}
	return vec, n, nil
}

// unmarshalLength reads a list length and rejects values that cannot fit
// in the remaining input.
func unmarshalLength(bs []byte) (int, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return 0, n, err
	}
	if count < 0 || count > len(bs)-n {
		return 0, n, fmt.Errorf("%w: list length %d", ErrTruncatedData, count)
	}
	return count, n, nil
}
