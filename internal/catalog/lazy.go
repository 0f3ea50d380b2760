// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"sync"

	"github.com/pdiddy/paperdrop/pkg/types"
)

// LazyStore records runs into the catalog at Path, opening it on the first
// Record. A run that never reaches a paper leaves no file behind.
type LazyStore struct {
	Path string

	mu    sync.Mutex
	store *Store
}

// NewLazy returns a LazyStore for path.
func NewLazy(path string) *LazyStore {
	return &LazyStore{Path: path}
}

// Record opens the catalog if needed and appends r.
func (l *LazyStore) Record(ctx context.Context, r types.RunRecord) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		s, err := Open(l.Path)
		if err != nil {
			return 0, err
		}
		l.store = s
	}
	return l.store.Record(ctx, r)
}

// Close closes the catalog if it was opened.
func (l *LazyStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}
