// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vn_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/taibuivan/vnshelf/internal/core/vn"
)

// memoryStore is an in-memory [vn.Store]. Writes become visible only on Commit.
type memoryStore struct {
	rows map[string]*vn.VisualNovel

	failBegin       error
	failReplaceOnID string

	replaced  []string
	committed bool
	rolled    bool
}

func newMemoryStore(novels ...*vn.VisualNovel) *memoryStore {
	store := &memoryStore{rows: make(map[string]*vn.VisualNovel)}
	for _, novel := range novels {
		store.rows[novel.ID] = clone(novel)
	}
	return store
}

func (store *memoryStore) EnsureSchema(context.Context) error { return nil }

func (store *memoryStore) Begin(context.Context) (vn.UnitOfWork, error) {
	if store.failBegin != nil {
		return nil, store.failBegin
	}
	return &memoryUnit{store: store, pending: make(map[string]*vn.VisualNovel)}, nil
}

func (store *memoryStore) Close() {}

type memoryUnit struct {
	store   *memoryStore
	pending map[string]*vn.VisualNovel
	done    bool
}

func (unit *memoryUnit) Upsert(_ context.Context, novel *vn.VisualNovel) error {
	unit.pending[novel.ID] = clone(novel)
	return nil
}

func (unit *memoryUnit) TaggedNovels(context.Context) ([]vn.TaggedNovel, error) {
	ids := make([]string, 0, len(unit.store.rows))
	for id, row := range unit.store.rows {
		if len(row.Tags) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	novels := make([]vn.TaggedNovel, 0, len(ids))
	for _, id := range ids {
		novels = append(novels, vn.TaggedNovel{ID: id, Tags: clone(unit.store.rows[id]).Tags})
	}
	return novels, nil
}

func (unit *memoryUnit) ReplaceTags(_ context.Context, id string, tags []vn.Tag) error {
	if id == unit.store.failReplaceOnID {
		return errors.New("replace failed")
	}

	row, ok := unit.pending[id]
	if !ok {
		row = clone(unit.store.rows[id])
	}
	row.Tags = tags
	unit.pending[id] = clone(row)
	unit.store.replaced = append(unit.store.replaced, id)
	return nil
}

func (unit *memoryUnit) Commit(context.Context) error {
	for id, row := range unit.pending {
		unit.store.rows[id] = row
	}
	unit.done = true
	unit.store.committed = true
	return nil
}

func (unit *memoryUnit) Rollback(context.Context) error {
	if unit.done {
		return nil
	}
	unit.done = true
	unit.store.rolled = true
	return nil
}

// clone deep-copies through JSON, matching how the blobs round-trip a row.
func clone(novel *vn.VisualNovel) *vn.VisualNovel {
	data, err := json.Marshal(novel)
	if err != nil {
		panic(err)
	}
	var copied vn.VisualNovel
	if err := json.Unmarshal(data, &copied); err != nil {
		panic(err)
	}
	return &copied
}
