package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"blogeditor/internal/model"
	"blogeditor/internal/repository"
)

// DocumentMemory is an in-process document store for local runs and tests.
// It keeps insertion order so FindAll behaves like a natural-order collection scan.
type DocumentMemory struct {
	mu    sync.RWMutex
	order []string
	store map[string]model.Document
}

func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{store: make(map[string]model.Document)}
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

func (m *DocumentMemory) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := clone(*doc)
	d.ID = uuid.NewString()
	m.store[d.ID] = d
	m.order = append(m.order, d.ID)
	out := clone(d)
	return &out, nil
}

func (m *DocumentMemory) FindAll(_ context.Context) ([]model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Document, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, clone(m.store[id]))
	}
	return out, nil
}

func (m *DocumentMemory) FindByID(_ context.Context, id string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d = clone(d)
	return &d, nil
}

func (m *DocumentMemory) UpdateStatus(_ context.Context, id string, status model.Status, at time.Time) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = repository.BumpAfter(d.CreatedAt, at)
	m.store[id] = d
	d = clone(d)
	return &d, nil
}

func (m *DocumentMemory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.store, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// clone copies the Tags backing array so callers never share it with the store.
func clone(d model.Document) model.Document {
	d.Tags = append(model.Tags(nil), d.Tags...)
	return d
}
