package repository

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Tomlord1122/todo-form/internal/domain"
)

// TodoRepository defines the interface for todo data operations
type TodoRepository interface {
	Add(draft domain.Draft) domain.Todo
	Update(todo domain.Todo) bool
	Remove(id string) bool
	FindByID(id string) (domain.Todo, bool)
	List() []domain.Todo
	Len() int
	Subscribe() (<-chan struct{}, func())
	Stats() Stats
}

// Stats summarises repository activity for health reporting.
type Stats struct {
	Records     int    `json:"records"`
	Added       uint64 `json:"added"`
	Updated     uint64 `json:"updated"`
	Removed     uint64 `json:"removed"`
	Missed      uint64 `json:"missed"` // updates or removals of unknown ids
	Subscribers int    `json:"subscribers"`
}

// Option configures a memory repository.
type Option func(*memoryTodoRepository)

// WithIDGenerator replaces the UUID generator, mostly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(r *memoryTodoRepository) {
		r.newID = gen
	}
}

// memoryTodoRepository implements TodoRepository with an ordered slice.
// Records keep their insertion position for their whole lifetime.
type memoryTodoRepository struct {
	mu    sync.RWMutex
	todos []domain.Todo
	ids   map[string]struct{}
	newID func() string
	stats Stats

	hub *hub
}

// NewMemoryTodoRepository creates an empty in-memory todo repository
func NewMemoryTodoRepository(opts ...Option) TodoRepository {
	r := &memoryTodoRepository{
		ids:   make(map[string]struct{}),
		newID: uuid.NewString,
		hub:   newHub(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add stores the draft under a freshly generated id and appends it
func (r *memoryTodoRepository) Add(draft domain.Draft) domain.Todo {
	r.mu.Lock()
	id := r.newID()
	for r.taken(id) {
		id = r.newID()
	}
	todo := draft.WithID(id)
	r.todos = append(r.todos, todo)
	r.ids[id] = struct{}{}
	r.stats.Added++
	r.mu.Unlock()

	r.hub.broadcast()
	return todo.Clone()
}

// Update replaces the whole record with the same id, in place.
// It reports false and changes nothing when the id is unknown.
func (r *memoryTodoRepository) Update(todo domain.Todo) bool {
	r.mu.Lock()
	i := r.indexOf(todo.ID)
	if i < 0 {
		r.stats.Missed++
		r.mu.Unlock()
		return false
	}
	r.todos[i] = todo.Clone()
	r.stats.Updated++
	r.mu.Unlock()

	r.hub.broadcast()
	return true
}

// Remove filters out the record with the given id; unknown ids are a no-op
func (r *memoryTodoRepository) Remove(id string) bool {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.stats.Missed++
		r.mu.Unlock()
		return false
	}
	r.todos = slices.Delete(r.todos, i, i+1)
	delete(r.ids, id)
	r.stats.Removed++
	r.mu.Unlock()

	r.hub.broadcast()
	return true
}

// FindByID retrieves a todo by its ID
func (r *memoryTodoRepository) FindByID(id string) (domain.Todo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Todo{}, false
	}
	return r.todos[i].Clone(), true
}

// List returns a snapshot of all todos in insertion order
func (r *memoryTodoRepository) List() []domain.Todo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Todo, 0, len(r.todos))
	for _, todo := range r.todos {
		out = append(out, todo.Clone())
	}
	return out
}

// Len returns the number of stored todos.
func (r *memoryTodoRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.todos)
}

// Subscribe returns a channel signalled after every successful mutation.
// Signals coalesce; a reader should re-read List when woken.
func (r *memoryTodoRepository) Subscribe() (<-chan struct{}, func()) {
	return r.hub.subscribe()
}

// Stats returns a snapshot of the activity counters.
func (r *memoryTodoRepository) Stats() Stats {
	r.mu.RLock()
	stats := r.stats
	stats.Records = len(r.todos)
	r.mu.RUnlock()

	stats.Subscribers = r.hub.len()
	return stats
}

func (r *memoryTodoRepository) taken(id string) bool {
	_, ok := r.ids[id]
	return ok || id == ""
}

// indexOf must be called with r.mu held.
func (r *memoryTodoRepository) indexOf(id string) int {
	if _, ok := r.ids[id]; !ok {
		return -1
	}
	return slices.IndexFunc(r.todos, func(t domain.Todo) bool { return t.ID == id })
}
