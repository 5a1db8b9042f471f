package memory

import (
	"sync"
	domain "todo-server/internal/domain/model"
	"todo-server/internal/repository"

	"github.com/google/uuid"
)

// maxIDAttempts bounds how often Create regenerates an id that is
// already taken. Only an injected generator can realistically hit it.
const maxIDAttempts = 16

type Option func(*TodoRepository)

// WithIDGenerator replaces the default UUIDv4 generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *TodoRepository) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// TodoRepository keeps todos in process memory. One RWMutex guards both
// the index and the insertion order so every operation is linearizable.
type TodoRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Todo
	order []string
	newID func() string
}

var _ repository.TodoRepository = (*TodoRepository)(nil)

func NewTodoRepository(opts ...Option) *TodoRepository {
	r := &TodoRepository{
		byID:  make(map[string]*domain.Todo),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TodoRepository) Create(draft domain.Draft) domain.Todo {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; ; attempt++ {
		id := r.newID()
		if attempt >= maxIDAttempts {
			// The injected generator keeps colliding; fall back to a
			// fresh random id, which the map lookup below still checks.
			id = uuid.NewString()
		}

		created, err := r.insertLocked(id, draft)
		if err == nil {
			return created
		}
	}
}

// insertLocked stores a new record under id. Caller holds r.mu.
func (r *TodoRepository) insertLocked(id string, draft domain.Draft) (domain.Todo, error) {
	if id == "" {
		return domain.Todo{}, domain.ErrAlreadyExists
	}
	if _, exists := r.byID[id]; exists {
		return domain.Todo{}, domain.ErrAlreadyExists
	}

	todo := &domain.Todo{
		ID:      id,
		Title:   draft.Title,
		Status:  draft.Status,
		Deleted: false,
	}
	r.byID[id] = todo
	r.order = append(r.order, id)

	return *todo, nil
}

func (r *TodoRepository) GetByID(id string) (domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todo, ok := r.visibleLocked(id)
	if !ok {
		return domain.Todo{}, domain.ErrNotFound
	}
	return *todo, nil
}

// List returns visible todos in insertion order. The result is never nil.
func (r *TodoRepository) List() []domain.Todo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]domain.Todo, 0, len(r.order))
	for _, id := range r.order {
		todo := r.byID[id]
		if todo.Deleted {
			continue
		}
		todos = append(todos, *todo)
	}
	return todos
}

// Update replaces title and status together. ID and Deleted are left as is.
func (r *TodoRepository) Update(id string, draft domain.Draft) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.visibleLocked(id)
	if !ok {
		return domain.Todo{}, domain.ErrNotFound
	}

	todo.Title = draft.Title
	todo.Status = draft.Status

	return *todo, nil
}

// SoftDelete hides the todo. Deleting an already deleted todo reports
// ErrNotFound, the same as an unknown id.
func (r *TodoRepository) SoftDelete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.visibleLocked(id)
	if !ok {
		return domain.ErrNotFound
	}

	todo.Deleted = true
	return nil
}

func (r *TodoRepository) Stats() repository.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := repository.Stats{Total: len(r.order)}
	for _, id := range r.order {
		if r.byID[id].Deleted {
			stats.Deleted++
		}
	}
	stats.Visible = stats.Total - stats.Deleted
	return stats
}

func (r *TodoRepository) visibleLocked(id string) (*domain.Todo, bool) {
	todo, ok := r.byID[id]
	if !ok || todo.Deleted {
		return nil, false
	}
	return todo, true
}
