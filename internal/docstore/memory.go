package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

const maxTxAttempts = 5

// Memory is the in-process fixture implementation of Store. Documents carry a
// version so transactions can detect concurrent writes and retry, mirroring
// the optimistic concurrency of the real store.
type Memory struct {
	mu   sync.RWMutex
	cols map[string]*memCollection
	seq  uint64
}

type memCollection struct {
	docs map[string]*memDoc
	// countVersion changes whenever a document is created or deleted, so a
	// transaction that read the count conflicts with concurrent inserts.
	countVersion uint64
}

type memDoc struct {
	data    json.RawMessage
	version uint64
	seq     uint64
}

func NewMemory() *Memory {
	return &Memory{cols: make(map[string]*memCollection)}
}

func (m *Memory) collection(name string) *memCollection {
	col, ok := m.cols[name]
	if !ok {
		col = &memCollection{docs: make(map[string]*memDoc)}
		m.cols[name] = col
	}
	return col
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	col, ok := m.cols[collection]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc, ok := col.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneRaw(doc.data)}, nil
}

func (m *Memory) List(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	col, ok := m.cols[collection]
	if !ok {
		return nil, nil
	}
	type entry struct {
		id  string
		doc *memDoc
	}
	entries := make([]entry, 0, len(col.docs))
	for id, doc := range col.docs {
		entries = append(entries, entry{id: id, doc: doc})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].doc.seq < entries[j].doc.seq })
	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, Document{ID: e.id, Data: cloneRaw(e.doc.data)})
	}
	return docs, nil
}

func (m *Memory) Count(_ context.Context, collection string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	col, ok := m.cols[collection]
	if !ok {
		return 0, nil
	}
	return int64(len(col.docs)), nil
}

func (m *Memory) Insert(_ context.Context, collection string, v any) (string, error) {
	data, err := marshalDoc(v)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, data)
	return id, nil
}

func (m *Memory) Set(_ context.Context, collection, id string, v any) error {
	data, err := marshalDoc(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, data)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.cols[collection]
	if !ok {
		return nil
	}
	if _, ok := col.docs[id]; ok {
		delete(col.docs, id)
		col.countVersion++
	}
	return nil
}

// put assumes m.mu is held for writing.
func (m *Memory) put(collection, id string, data json.RawMessage) {
	col := m.collection(collection)
	doc, ok := col.docs[id]
	if !ok {
		m.seq++
		col.docs[id] = &memDoc{data: data, version: 1, seq: m.seq}
		col.countVersion++
		return
	}
	doc.data = data
	doc.version++
}

func (m *Memory) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := newMemTx(m)
		if err := fn(ctx, tx); err != nil {
			return err
		}
		switch err := tx.commit(); {
		case err == nil:
			return nil
		case err == errRetry:
			continue
		default:
			return err
		}
	}
	return ErrConflict
}

func (m *Memory) Close() {}

var errRetry = fmt.Errorf("retry: %w", ErrConflict)

type docKey struct {
	collection string
	id         string
}

type memWrite struct {
	key  docKey
	data json.RawMessage
}

type memTx struct {
	store *Memory
	// versions observed by reads; 0 means the document was absent.
	docReads map[docKey]uint64
	cntReads map[string]uint64
	writes   []memWrite
	written  map[docKey]json.RawMessage
	// inserts buffered per collection, so Count sees the tx's own writes.
	inserted map[string]int64
}

func newMemTx(m *Memory) *memTx {
	return &memTx{
		store:    m,
		docReads: make(map[docKey]uint64),
		cntReads: make(map[string]uint64),
		written:  make(map[docKey]json.RawMessage),
		inserted: make(map[string]int64),
	}
}

func (t *memTx) Get(_ context.Context, collection, id string) (Document, error) {
	key := docKey{collection: collection, id: id}
	if data, ok := t.written[key]; ok {
		return Document{ID: id, Data: cloneRaw(data)}, nil
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	var version uint64
	var data json.RawMessage
	if col, ok := t.store.cols[collection]; ok {
		if doc, ok := col.docs[id]; ok {
			version = doc.version
			data = doc.data
		}
	}
	if _, seen := t.docReads[key]; !seen {
		t.docReads[key] = version
	}
	if version == 0 {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneRaw(data)}, nil
}

func (t *memTx) Count(_ context.Context, collection string) (int64, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	var count int64
	var countVersion uint64
	if col, ok := t.store.cols[collection]; ok {
		count = int64(len(col.docs))
		countVersion = col.countVersion
	}
	if _, seen := t.cntReads[collection]; !seen {
		t.cntReads[collection] = countVersion
	}
	return count + t.inserted[collection], nil
}

func (t *memTx) Insert(_ context.Context, collection string, v any) (string, error) {
	data, err := marshalDoc(v)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	key := docKey{collection: collection, id: id}
	t.writes = append(t.writes, memWrite{key: key, data: data})
	t.written[key] = data
	t.inserted[collection]++
	return id, nil
}

func (t *memTx) Set(_ context.Context, collection, id string, v any) error {
	data, err := marshalDoc(v)
	if err != nil {
		return err
	}
	key := docKey{collection: collection, id: id}
	t.writes = append(t.writes, memWrite{key: key, data: data})
	t.written[key] = data
	return nil
}

func (t *memTx) commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for key, version := range t.docReads {
		var current uint64
		if col, ok := t.store.cols[key.collection]; ok {
			if doc, ok := col.docs[key.id]; ok {
				current = doc.version
			}
		}
		if current != version {
			return errRetry
		}
	}
	for collection, countVersion := range t.cntReads {
		var current uint64
		if col, ok := t.store.cols[collection]; ok {
			current = col.countVersion
		}
		if current != countVersion {
			return errRetry
		}
	}
	for _, w := range t.writes {
		t.store.put(w.key.collection, w.key.id, w.data)
	}
	return nil
}

func marshalDoc(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

func cloneRaw(data json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(data))
	copy(out, data)
	return out
}
