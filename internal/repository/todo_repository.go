package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Tomlord1122/tick/internal/domain"
)

// TodoRepository defines the todo store operations. All statements are
// self-contained and use bound parameters.
type TodoRepository interface {
	List(ctx context.Context, q domain.ListQuery) ([]domain.Todo, error)
	FindByID(ctx context.Context, id int64) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	Update(ctx context.Context, todo domain.Todo) error
	Delete(ctx context.Context, id int64) error
	Autocomplete(ctx context.Context, term string) ([]domain.Todo, error)
	// SetDone writes done and finish_date only if the stored done still
	// equals expect. It reports whether the row was written.
	SetDone(ctx context.Context, id int64, expect, done bool, finish domain.Timestamp) (bool, error)
}

// gormTodoRepository implements TodoRepository with raw statements on gorm
type gormTodoRepository struct {
	db *gorm.DB
}

// NewGormTodoRepository creates a todo repository on the injected handle
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db}
}

// todoRow mirrors the selected columns; gorm maps them by snake_case name.
type todoRow struct {
	ID           int64
	Title        string
	Content      string
	Done         int64
	Priority     int64
	CreationDate int64
	DueDate      int64
	FinishDate   int64
}

func (r todoRow) toDomain() domain.Todo {
	return domain.Todo{
		ID:           r.ID,
		Title:        r.Title,
		Content:      r.Content,
		Done:         r.Done != 0,
		Priority:     r.Priority,
		CreationDate: domain.Unix(r.CreationDate),
		DueDate:      domain.Unix(r.DueDate),
		FinishDate:   domain.Unix(r.FinishDate),
	}
}

func toDomain(rows []todoRow) []domain.Todo {
	todos := make([]domain.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, row.toDomain())
	}
	return todos
}

func (r *gormTodoRepository) List(ctx context.Context, q domain.ListQuery) ([]domain.Todo, error) {
	query, args := BuildListQuery(q)
	var rows []todoRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, domain.StoreErr(err)
	}
	return toDomain(rows), nil
}

func (r *gormTodoRepository) FindByID(ctx context.Context, id int64) (domain.Todo, error) {
	var row todoRow
	result := r.db.WithContext(ctx).
		Raw("SELECT "+todoColumns+" FROM todos WHERE id = ?", id).
		Scan(&row)
	if result.Error != nil {
		return domain.Todo{}, domain.StoreErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.Todo{}, domain.TodoNotFound(id)
	}
	return row.toDomain(), nil
}

// Create inserts todo and returns it with the store-assigned id. Any id on
// the input is ignored.
func (r *gormTodoRepository) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	var id int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO todos (title, content, done, priority, creation_date, due_date, finish_date)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		todo.Title,
		todo.Content,
		flag(todo.Done),
		todo.Priority,
		todo.CreationDate.Seconds(),
		todo.DueDate.Seconds(),
		todo.FinishDate.Seconds(),
	).Row().Scan(&id)
	if err != nil {
		return domain.Todo{}, domain.StoreErr(err)
	}
	todo.ID = id
	return todo, nil
}

// Update rewrites every mutable column of the row todo.ID. creation_date is
// never written.
func (r *gormTodoRepository) Update(ctx context.Context, todo domain.Todo) error {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE todos
		SET title = ?, content = ?, done = ?, priority = ?, due_date = ?, finish_date = ?
		WHERE id = ?`,
		todo.Title,
		todo.Content,
		flag(todo.Done),
		todo.Priority,
		todo.DueDate.Seconds(),
		todo.FinishDate.Seconds(),
		todo.ID,
	)
	if result.Error != nil {
		return domain.StoreErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.TodoNotFound(todo.ID)
	}
	return nil
}

func (r *gormTodoRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Exec("DELETE FROM todos WHERE id = ?", id)
	if result.Error != nil {
		return domain.StoreErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.TodoNotFound(id)
	}
	return nil
}

func (r *gormTodoRepository) Autocomplete(ctx context.Context, term string) ([]domain.Todo, error) {
	query, args := BuildAutocompleteQuery(term)
	var rows []todoRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, domain.StoreErr(err)
	}
	return toDomain(rows), nil
}

func (r *gormTodoRepository) SetDone(ctx context.Context, id int64, expect, done bool, finish domain.Timestamp) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE todos SET done = ?, finish_date = ? WHERE id = ? AND done = ?",
		flag(done), finish.Seconds(), id, flag(expect),
	)
	if result.Error != nil {
		return false, domain.StoreErr(result.Error)
	}
	return result.RowsAffected > 0, nil
}
