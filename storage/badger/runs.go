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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/storyweave/core"
	"github.com/poiesic/storyweave/storage"
)

// RunRepository implements storage.RunRepository for BadgerDB.
type RunRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.RunRepository = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository.
func NewRunRepository(backend *Backend) (*RunRepository, error) {
	idSeq, err := backend.GetSequence(runIDSeq)
	if err != nil {
		return nil, err
	}

	return &RunRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *RunRepository) Close() error {
	return r.idSeq.Release()
}

// SaveRun stores run, assigning an ID and creation time when missing.
func (r *RunRepository) SaveRun(ctx context.Context, run *core.Run) (*core.Run, error) {
	if run.Id == 0 {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return nil, err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return nil, err
			}
		}
		run.Id = core.ID(nextID)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.CreatedAt = run.CreatedAt.UTC().Truncate(time.Microsecond)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeRunKey(run.Id), storage.MarshalRun(run)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun retrieves a run by ID.
func (r *RunRepository) GetRun(ctx context.Context, id core.ID) (*core.Run, error) {
	var run *core.Run
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		run, err = readRun(tx, makeRunKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, storage.ErrNotFound
	}
	return run, nil
}

// ListRuns returns up to limit runs, highest ID first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*core.Run, error) {
	var runs []*core.Run
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runRecordPrefix)
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(runUpperBound()); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var run *core.Run
			err := iter.Item().Value(func(val []byte) error {
				var err error
				run, err = storage.UnmarshalRun(val)
				return err
			})
			if err != nil {
				return err
			}
			runs = append(runs, run)
			if limit > 0 && len(runs) == limit {
				break
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// DeleteRun removes a run by ID.
func (r *RunRepository) DeleteRun(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRunKey(id)
		if _, err := tx.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readRun reads a run within a transaction. Returns nil if not found.
func readRun(tx *badger.Txn, key []byte) (*core.Run, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var run *core.Run
	err = item.Value(func(val []byte) error {
		var err error
		run, err = storage.UnmarshalRun(val)
		return err
	})
	return run, err
}
