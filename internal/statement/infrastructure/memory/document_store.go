package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"sort"
	"sync"

	statement "municipal-statements/internal/statement/domain"
)

// DocumentStore is an in-memory document store for tests and local runs.
type DocumentStore struct {
	mu     sync.RWMutex
	docs   map[string]map[string]statement.Record
	denied map[string]bool
}

// NewDocumentStore returns an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:   make(map[string]map[string]statement.Record),
		denied: make(map[string]bool),
	}
}

// Put stores doc under collection and key, replacing any previous document.
func (s *DocumentStore) Put(collection, key string, doc statement.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey, ok := s.docs[collection]
	if !ok {
		byKey = make(map[string]statement.Record)
		s.docs[collection] = byKey
	}
	byKey[key] = maps.Clone(doc)
}

// Deny makes every read of collection fail with statement.ErrPermissionDenied.
func (s *DocumentStore) Deny(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[collection] = true
}

// Get returns a shallow copy of the stored document.
func (s *DocumentStore) Get(ctx context.Context, collection, key string) (statement.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.denied[collection] {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, statement.ErrPermissionDenied)
	}
	doc, ok := s.docs[collection][key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, statement.ErrDocumentNotFound)
	}
	return maps.Clone(doc), nil
}

// Len returns the number of stored documents.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, byKey := range s.docs {
		n += len(byKey)
	}
	return n
}

// Each calls fn for every stored document ordered by collection then key.
// Iteration stops at the first error.
func (s *DocumentStore) Each(fn func(collection, key string, doc statement.Record) error) error {
	s.mu.RLock()
	type entry struct {
		collection, key string
		doc             statement.Record
	}
	var entries []entry
	for collection, byKey := range s.docs {
		for key, doc := range byKey {
			entries = append(entries, entry{collection: collection, key: key, doc: maps.Clone(doc)})
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].collection != entries[j].collection {
			return entries[i].collection < entries[j].collection
		}
		return entries[i].key < entries[j].key
	})
	for _, e := range entries {
		if err := fn(e.collection, e.key, e.doc); err != nil {
			return err
		}
	}
	return nil
}

// LoadFixture seeds a store from a JSON object of the form
// {"collection": {"key": {...document...}}}.
func LoadFixture(r io.Reader) (*DocumentStore, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("memory store: read fixture: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fixture map[string]map[string]json.RawMessage
	if err := dec.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("memory store: decode fixture: %w", err)
	}
	store := NewDocumentStore()
	for collection, byKey := range fixture {
		for key, raw := range byKey {
			doc, err := statement.DecodeRecord(raw)
			if err != nil {
				return nil, fmt.Errorf("memory store: %s/%s: %w", collection, key, err)
			}
			store.Put(collection, key, doc)
		}
	}
	return store, nil
}

// LoadFixtureFile seeds a store from the JSON fixture at path.
func LoadFixtureFile(path string) (*DocumentStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("memory store: open fixture: %w", err)
	}
	defer f.Close()
	return LoadFixture(f)
}
