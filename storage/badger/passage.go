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

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// PassageRepository implements storage.PassageRepository for BadgerDB.
type PassageRepository struct {
	backend *Backend
	owned   bool
}

var _ storage.PassageRepository = (*PassageRepository)(nil)

// NewPassageRepository creates a PassageRepository on top of an open backend.
// The caller keeps ownership of the backend.
func NewPassageRepository(backend *Backend) *PassageRepository {
	return &PassageRepository{
		backend: backend,
	}
}

// NewRepository opens (or creates) the index stored in dir.
// Closing the returned repository closes the underlying database.
func NewRepository(dir string) (storage.PassageRepository, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, err
	}
	return &PassageRepository{backend: backend, owned: true}, nil
}

// Close closes the backend if the repository opened it.
func (r *PassageRepository) Close() error {
	if !r.owned || r.backend.IsClosed() {
		return nil
	}
	return r.backend.Close()
}

// Reset removes all passages, document index entries and metadata.
func (r *PassageRepository) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	// The trailing colon keeps "psg:" from matching "psgdoc:" keys.
	return r.backend.DropPrefix(
		[]byte(passagePrefix+":"),
		[]byte(passageDocPrefix+":"),
		[]byte(metaKey),
	)
}

// PutPassages stores passages and their document index entries in one transaction.
func (r *PassageRepository) PutPassages(ctx context.Context, passages ...*core.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, p := range passages {
			if err := core.ValidatePassage(p); err != nil {
				return err
			}
			if err := tx.Set(makePassageKey(p.ID), storage.MarshalPassage(p)); err != nil {
				return err
			}
			docKey := makePassageDocKey(p.DocID, p.Ordinal)
			if err := tx.Set(docKey, storage.MarshalID(p.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetPassage retrieves a passage by ID.
func (r *PassageRepository) GetPassage(ctx context.Context, id core.ID) (*core.Passage, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var passage *core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		passage, err = readPassage(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return passage, nil
}

// PassagesForDocument returns a document's passages ordered by ordinal.
func (r *PassageRepository) PassagesForDocument(ctx context.Context, docID core.ID) ([]*core.Passage, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	passages := []*core.Passage{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialPassageDocKey(docID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}
			p, err := readPassage(tx, id)
			if err != nil {
				return err
			}
			passages = append(passages, p)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return passages, nil
}

// Count returns the number of stored passages.
func (r *PassageRepository) Count(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(passagePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// SaveMeta persists the metadata of the latest build.
func (r *PassageRepository) SaveMeta(ctx context.Context, meta *core.IndexMeta) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(metaKey), storage.MarshalIndexMeta(meta)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Meta retrieves the metadata of the latest build.
func (r *PassageRepository) Meta(ctx context.Context) (*core.IndexMeta, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	var meta *core.IndexMeta
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(metaKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			meta, unmarshalErr = storage.UnmarshalIndexMeta(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func readPassage(tx *badger.Txn, id core.ID) (*core.Passage, error) {
	item, err := tx.Get(makePassageKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	var passage *core.Passage
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		passage, unmarshalErr = storage.UnmarshalPassage(val)
		return unmarshalErr
	})
	return passage, err
}
