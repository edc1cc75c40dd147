package docstore

import (
	"context"
	"sort"
	"sync"

	platformerrors "forge-server-go/internal/platform/errors"
)

type memoryStore struct {
	mutex       sync.RWMutex
	collections map[string]map[string]Document
}

// NewMemory builds an in-memory document store. Intended for tests and
// single-process deployments without durability requirements.
func NewMemory() Store {
	return &memoryStore{
		collections: make(map[string]map[string]Document),
	}
}

func (s *memoryStore) Get(_ context.Context, collection, key string) (Document, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return Document{}, platformerrors.New(
			platformerrors.KindNotFound, "docstore.get", collection+"/"+key+" not found")
	}
	return doc, nil
}

func (s *memoryStore) FindOne(ctx context.Context, collection string, pred Predicate) (Document, error) {
	docs, err := s.FindMany(ctx, collection, pred)
	if err != nil {
		return Document{}, err
	}
	if len(docs) == 0 {
		return Document{}, platformerrors.New(
			platformerrors.KindNotFound, "docstore.find_one", "no document matched")
	}
	return docs[0], nil
}

func (s *memoryStore) FindMany(_ context.Context, collection string, pred Predicate) ([]Document, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	coll := s.collections[collection]
	keys := make([]string, 0, len(coll))
	for key := range coll {
		keys = append(keys, key)
	}
	// Deterministic order so that first-match search semantics are stable.
	sort.Strings(keys)

	var docs []Document
	for _, key := range keys {
		if doc := coll[key]; pred == nil || pred(doc) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *memoryStore) Insert(_ context.Context, collection, key string, data []byte) (Document, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Document)
		s.collections[collection] = coll
	}
	if _, exists := coll[key]; exists {
		return Document{}, platformerrors.New(
			platformerrors.KindConflict, "docstore.insert", collection+"/"+key+" already exists")
	}
	doc := Document{Key: key, Rev: 1, Data: data}
	coll[key] = doc
	return doc, nil
}

func (s *memoryStore) Replace(_ context.Context, collection, key string, data []byte) (Document, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	coll := s.collections[collection]
	current, ok := coll[key]
	if !ok {
		return Document{}, platformerrors.New(
			platformerrors.KindNotFound, "docstore.replace", collection+"/"+key+" not found")
	}
	doc := Document{Key: key, Rev: current.Rev + 1, Data: data}
	coll[key] = doc
	return doc, nil
}

func (s *memoryStore) ReplaceIf(_ context.Context, collection, key string, data []byte, expectedRev int64) (Document, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	coll := s.collections[collection]
	current, ok := coll[key]
	if !ok {
		return Document{}, platformerrors.New(
			platformerrors.KindNotFound, "docstore.replace_if", collection+"/"+key+" not found")
	}
	if current.Rev != expectedRev {
		return Document{}, platformerrors.New(
			platformerrors.KindConflict, "docstore.replace_if", "revision mismatch")
	}
	doc := Document{Key: key, Rev: current.Rev + 1, Data: data}
	coll[key] = doc
	return doc, nil
}

func (s *memoryStore) Delete(_ context.Context, collection string, pred Predicate) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	coll := s.collections[collection]
	var deleted int64
	for key, doc := range coll {
		if pred == nil || pred(doc) {
			delete(coll, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memoryStore) Close(context.Context) error {
	return nil
}
