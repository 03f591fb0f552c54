package lesson

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memrepo is an in-memory Repository used when no database is configured.
type memrepo struct {
	mu      sync.RWMutex
	lessons map[uuid.UUID]*Lesson
}

func NewMemoryRepository() Repository {
	return &memrepo{lessons: make(map[uuid.UUID]*Lesson)}
}

func (m *memrepo) Create(ctx context.Context, l *Lesson) error {
	if l == nil {
		return fmt.Errorf("nil lesson payload")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.lessons[l.ID]; exists {
		return fmt.Errorf("lesson %s already exists", l.ID)
	}
	m.lessons[l.ID] = l.clone()
	return nil
}

func (m *memrepo) Get(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lessons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l.clone(), nil
}

func (m *memrepo) List(ctx context.Context, limit int) ([]*Lesson, error) {
	if limit <= 0 {
		limit = 50
	}
	m.mu.RLock()
	out := make([]*Lesson, 0, len(m.lessons))
	for _, l := range m.lessons {
		out = append(out, l.clone())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memrepo) Update(ctx context.Context, l *Lesson) error {
	if l == nil {
		return fmt.Errorf("nil lesson payload")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.lessons[l.ID]
	if !ok {
		return ErrNotFound
	}
	next := l.clone()
	next.CreatedAt = prev.CreatedAt
	m.lessons[l.ID] = next
	return nil
}

func (m *memrepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lessons[id]; !ok {
		return ErrNotFound
	}
	delete(m.lessons, id)
	return nil
}
