package docmodel

import (
	"sync"

	"github.com/example/docsql/internal/sql/expr"
)

// Model holds the objects of one document. It is safe for concurrent use;
// suppliers return snapshots so a reload never changes a running query.
type Model struct {
	mu      sync.RWMutex
	objects []*Object
}

// NewModel creates a model holding objects in the given order.
func NewModel(objects ...*Object) *Model {
	m := &Model{}
	m.Replace(objects)
	return m
}

// All returns every object in insertion order.
func (m *Model) All() []expr.Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]expr.Entity, len(m.objects))
	for i, obj := range m.objects {
		out[i] = obj
	}
	return out
}

// ByName returns the objects whose name attribute equals name exactly.
func (m *Model) ByName(name string) []expr.Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []expr.Entity
	for _, obj := range m.objects {
		if obj.Name() == name {
			out = append(out, obj)
		}
	}
	return out
}

// Objects returns a copy of the object list.
func (m *Model) Objects() []*Object {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Object, len(m.objects))
	copy(out, m.objects)
	return out
}

// Replace swaps the model contents. Nil objects are dropped.
func (m *Model) Replace(objects []*Object) {
	kept := make([]*Object, 0, len(objects))
	for _, obj := range objects {
		if obj != nil {
			kept = append(kept, obj)
		}
	}
	m.mu.Lock()
	m.objects = kept
	m.mu.Unlock()
}

// Add appends an object.
func (m *Model) Add(obj *Object) {
	if obj == nil {
		return
	}
	m.mu.Lock()
	m.objects = append(m.objects, obj)
	m.mu.Unlock()
}

// Len reports the number of objects.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
