// Package templatestore implements C6: a concurrent map of parsed template
// trees keyed by template key, loaded lazily on first lookup and cached.
// Concurrent first lookups of the same key may each call the loader; every
// caller then receives the first tree stored.
package templatestore

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sardonyx-sard/dmerge/pkg/template"
)

// Loader produces the template tree for a template key, either by decoding
// a compact pre-serialised binary form (preferred, when present) or by
// parsing the Havok XML source.
type Loader interface {
	Load(ctx context.Context, templateKey string) (*template.Node, error)
}

// Store holds one tree per template key. A tree is loaded on first lookup
// and cached; callers that mutate a tree during an apply pass are expected
// to hold it for the duration of that pass, since concurrent writes to the
// same entry are not supported, only across distinct entries.
type Store struct {
	loader Loader

	mu      sync.Mutex
	entries map[string]*template.Node
	loadErr map[string]error
}

// New returns an empty Store backed by loader.
func New(loader Loader) *Store {
	return &Store{
		loader:  loader,
		entries: map[string]*template.Node{},
		loadErr: map[string]error{},
	}
}

// Get returns the cached tree for key, loading it first if necessary.
func (s *Store) Get(ctx context.Context, key string) (*template.Node, error) {
	s.mu.Lock()
	if n, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return n, nil
	}
	if err, ok := s.loadErr[key]; ok {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	n, err := s.loader.Load(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok {
		return existing, nil
	}
	if err != nil {
		s.loadErr[key] = err
		return nil, err
	}
	s.entries[key] = n
	return n, nil
}

// Preload loads every key in keys concurrently, bounded by maxConcurrency,
// so that independent templates load in parallel; a key already cached is
// not loaded again. Errors from individual keys are collected rather
// than aborting the whole preload.
func (s *Store) Preload(ctx context.Context, keys []string, maxConcurrency int64) []error {
	sem := semaphore.NewWeighted(maxConcurrency)
	eg, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var errs []error

	for _, key := range keys {
		key := key
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			continue
		}
		eg.Go(func() error {
			defer sem.Release(1)
			if _, err := s.Get(ctx, key); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("loading template %s: %w", key, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()
	return errs
}

// Keys returns every template key currently cached, successfully or not.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries)+len(s.loadErr))
	for k := range s.entries {
		keys = append(keys, k)
	}
	for k := range s.loadErr {
		keys = append(keys, k)
	}
	return keys
}
