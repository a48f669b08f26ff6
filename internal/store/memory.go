package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store used by tests. Transactions take the
// store-wide lock, so concurrent transactions on the same item are
// linearized the same way Firestore's optimistic transactions are.
type MemoryStore struct {
	mu          sync.Mutex
	seq         int
	collections map[string]map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) coll(name string) map[string]map[string]any {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]map[string]any)
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) nextID() string {
	s.seq++
	return fmt.Sprintf("doc-%d", s.seq)
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.coll(collection)[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneMap(data)}, nil
}

func matches(data map[string]any, f Filter) bool {
	v, ok := data[f.Field]
	if !ok {
		return false
	}
	if f.Op == "==" {
		return v == f.Value
	}
	// Ordered comparisons only make sense for strings and numbers here.
	switch a := v.(type) {
	case string:
		b, ok := f.Value.(string)
		return ok && compareOrdered(f.Op, a, b)
	case float64:
		b, ok := f.Value.(float64)
		return ok && compareOrdered(f.Op, a, b)
	}
	return false
}

func compareOrdered[T string | float64](op string, a, b T) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func (s *MemoryStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var docs []Document
	for id, data := range s.coll(collection) {
		ok := true
		for _, f := range filters {
			if !matches(data, f) {
				ok = false
				break
			}
		}
		if ok {
			docs = append(docs, Document{ID: id, Data: cloneMap(data)})
		}
	}
	return docs, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.coll(collection)[id] = cloneMap(data)
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.coll(collection), id)
	return nil
}

// RunTransaction buffers writes until fn returns. Any error from fn
// discards the buffered writes, leaving the store untouched.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memWrite struct {
	collection string
	id         string
	fields     map[string]any
	create     bool
}

type memoryTx struct {
	store  *MemoryStore
	writes []memWrite
}

func (tx *memoryTx) Get(collection, id string) (Document, error) {
	data, ok := tx.store.coll(collection)[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneMap(data)}, nil
}

func (tx *memoryTx) Create(collection string, data map[string]any) (string, error) {
	id := tx.store.nextID()
	tx.writes = append(tx.writes, memWrite{collection: collection, id: id, fields: cloneMap(data), create: true})
	return id, nil
}

func (tx *memoryTx) Update(collection, id string, fields map[string]any) error {
	if _, ok := tx.store.coll(collection)[id]; !ok && !tx.created(collection, id) {
		return ErrNotFound
	}
	tx.writes = append(tx.writes, memWrite{collection: collection, id: id, fields: cloneMap(fields)})
	return nil
}

// created reports whether the transaction has a buffered create for the
// document, which commit applies before any buffered update.
func (tx *memoryTx) created(collection, id string) bool {
	for _, w := range tx.writes {
		if w.create && w.collection == collection && w.id == id {
			return true
		}
	}
	return false
}

func (tx *memoryTx) commit() {
	for _, w := range tx.writes {
		c := tx.store.coll(w.collection)
		if w.create {
			c[w.id] = w.fields
			continue
		}
		doc := c[w.id]
		for k, v := range w.fields {
			doc[k] = v
		}
	}
}
