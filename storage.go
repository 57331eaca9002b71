package todoapi

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrUnavailable = errors.New("storage unavailable")
)

// Storage defines how the API interacts with a storage backend. Implementations return copies that
// the caller is free to modify
type Storage interface {
	// List returns all Todos ordered by ID
	List(context.Context) ([]*Todo, error)
	// Get a single Todo by ID. It returns ErrNotFound if there is no Todo with the ID
	Get(context.Context, int64) (*Todo, error)
	// Create stores a new Todo and returns the persisted state, including the assigned ID
	Create(context.Context, *Todo) (*Todo, error)
	// DeleteAll removes every Todo
	DeleteAll(context.Context) error
}

// MemoryStorage is the default implementation of the Storage interface. It keeps Todos in a map
type MemoryStorage struct {
	mu     sync.RWMutex
	todos  map[int64]*Todo
	nextID int64
}

var _ Storage = &MemoryStorage{}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{todos: map[int64]*Todo{}}
}

func (m *MemoryStorage) List(_ context.Context) ([]*Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]*Todo, 0, len(m.todos))
	for _, todo := range m.todos {
		results = append(results, todo.Copy())
	}

	slices.SortFunc(results, func(a, b *Todo) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return results, nil
}

func (m *MemoryStorage) Get(_ context.Context, id int64) (*Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	todo, ok := m.todos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return todo.Copy(), nil
}

func (m *MemoryStorage) Create(_ context.Context, todo *Todo) (*Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.todos == nil {
		m.todos = map[int64]*Todo{}
	}

	m.nextID++

	stored := todo.Copy()
	stored.ID = m.nextID
	m.todos[stored.ID] = stored

	return stored.Copy(), nil
}

func (m *MemoryStorage) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.todos)
	return nil
}
