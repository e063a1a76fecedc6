package service

import (
	"context"
	"strings"
	"time"

	"github.com/Tomlord1122/tick/internal/domain"
	"github.com/Tomlord1122/tick/internal/logger"
	"github.com/Tomlord1122/tick/internal/repository"
)

// toggleAttempts bounds the read-decide-write loop of ToggleTodo.
const toggleAttempts = 3

// --- Service Interface ---

// TodoService defines the operations on the todo resource.
type TodoService interface {
	// ListTodos returns one page of todos filtered and sorted by q.
	ListTodos(ctx context.Context, q domain.ListQuery) ([]domain.Todo, error)

	// GetTodo retrieves a single todo by its ID.
	GetTodo(ctx context.Context, id int64) (domain.Todo, error)

	// CreateTodo stores a new todo. The payload id is ignored and
	// creation_date is kept as supplied.
	CreateTodo(ctx context.Context, payload domain.Todo) (domain.Todo, error)

	// UpdateTodo overwrites every mutable field of todo id with payload.
	UpdateTodo(ctx context.Context, id int64, payload domain.Todo) error

	// DeleteTodo removes a todo by its ID.
	DeleteTodo(ctx context.Context, id int64) error

	// Autocomplete is the legacy search: case-insensitive substring on title
	// or content, at most 10 rows.
	Autocomplete(ctx context.Context, term string) ([]domain.Todo, error)

	// ToggleTodo inverts done and settles finish_date with a conditional
	// write, so concurrent toggles cannot silently overwrite each other.
	ToggleTodo(ctx context.Context, id int64, now time.Time) (domain.Todo, error)
}

// --- Service Implementation ---

// todoService implements TodoService on an injected repository.
type todoService struct {
	repo repository.TodoRepository
}

// NewTodoService creates a TodoService backed by repo.
func NewTodoService(repo repository.TodoRepository) TodoService {
	return &todoService{repo: repo}
}

func (s *todoService) ListTodos(ctx context.Context, q domain.ListQuery) ([]domain.Todo, error) {
	todos, err := s.repo.List(ctx, q.Normalize())
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("list todos")
		return nil, err
	}
	return todos, nil
}

func (s *todoService) GetTodo(ctx context.Context, id int64) (domain.Todo, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *todoService) CreateTodo(ctx context.Context, payload domain.Todo) (domain.Todo, error) {
	payload.ID = 0
	created, err := s.repo.Create(ctx, payload)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("create todo")
		return domain.Todo{}, err
	}
	logger.C(ctx).Debug().Int64("id", created.ID).Msg("todo created")
	return created, nil
}

// UpdateTodo reads the stored record first so the merge can keep its id and
// creation_date. The repository still reports not found if the row vanished
// between the read and the write.
func (s *todoService) UpdateTodo(ctx context.Context, id int64, payload domain.Todo) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	merged := domain.Apply(existing, payload)
	if err := s.repo.Update(ctx, merged); err != nil {
		if !domain.IsKind(err, domain.KindNotFound) {
			logger.C(ctx).Error().Err(err).Int64("id", id).Msg("update todo")
		}
		return err
	}
	return nil
}

func (s *todoService) DeleteTodo(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *todoService) Autocomplete(ctx context.Context, term string) ([]domain.Todo, error) {
	if strings.TrimSpace(term) == "" {
		return []domain.Todo{}, nil
	}
	return s.repo.Autocomplete(ctx, term)
}

func (s *todoService) ToggleTodo(ctx context.Context, id int64, now time.Time) (domain.Todo, error) {
	for attempt := 1; attempt <= toggleAttempts; attempt++ {
		cur, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return domain.Todo{}, err
		}
		next := domain.Toggled(cur, now)
		ok, err := s.repo.SetDone(ctx, id, cur.Done, next.Done, next.FinishDate)
		if err != nil {
			return domain.Todo{}, err
		}
		if ok {
			return next, nil
		}
		logger.C(ctx).Debug().Int64("id", id).Int("attempt", attempt).Msg("toggle lost a race, retrying")
	}
	return domain.Todo{}, domain.Conflictf("Todo with ID %d was modified concurrently", id)
}
