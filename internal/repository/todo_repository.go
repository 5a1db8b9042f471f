package repository

import (
	domain "todo-server/internal/domain/model"
)

// TodoRepository is the authoritative set of todos. Implementations must
// be safe for concurrent use and must never return a deleted todo.
type TodoRepository interface {
	Create(draft domain.Draft) domain.Todo
	GetByID(id string) (domain.Todo, error)
	List() []domain.Todo
	Update(id string, draft domain.Draft) (domain.Todo, error)
	SoftDelete(id string) error
	Stats() Stats
}

// Stats counts records held by a repository.
type Stats struct {
	Total   int
	Visible int
	Deleted int
}
