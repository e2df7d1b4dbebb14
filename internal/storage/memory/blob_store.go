// Package memory stores rendered pages in-memory for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

// Object is a stored page with the options it was written with.
type Object struct {
	Data    []byte
	Options snapshot.PutOptions
	Writes  int
}

// PageStore stores pages in-memory and returns pseudo URIs.
type PageStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

var _ snapshot.PageStore = (*PageStore)(nil)

// NewPageStore creates a new in-memory page store.
func NewPageStore() *PageStore {
	return &PageStore{objects: make(map[string]Object)}
}

// PutObject persists a copy of the content and returns a URI.
func (s *PageStore) PutObject(_ context.Context, name string, data []byte, opts snapshot.PutOptions) (string, error) {
	if name == "" {
		return "", fmt.Errorf("object name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.objects[name]
	if exists && !opts.Upsert {
		return "", fmt.Errorf("write %s: %w", name, snapshot.ErrPageExists)
	}
	meta := make(map[string]string, len(opts.Metadata))
	for k, v := range opts.Metadata {
		meta[k] = v
	}
	opts.Metadata = meta
	s.objects[name] = Object{
		Data:    append([]byte(nil), data...),
		Options: opts,
		Writes:  prev.Writes + 1,
	}
	return fmt.Sprintf("memory://%s", name), nil
}

// Get returns a stored object.
func (s *PageStore) Get(name string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	return obj, ok
}

// Names lists stored object names in sorted order.
func (s *PageStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
