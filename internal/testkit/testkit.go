// Package testkit provides store fixtures for tests
package testkit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tomlord1122/tick/internal/config"
	"github.com/Tomlord1122/tick/internal/database"
	"github.com/Tomlord1122/tick/internal/domain"
)

// NewSQLite opens a private in-memory sqlite store with the todos table in
// place. It is closed when the test ends.
func NewSQLite(t *testing.T) database.Service {
	t.Helper()

	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	svc, err := database.New(cfg, config.LogConfig{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if err := database.EnsureSchema(context.Background(), svc.GetDB()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return svc
}

// Fixture is the two-row data set most tests start from.
var Fixture = []domain.Todo{
	{
		Title:        "Test1",
		CreationDate: domain.Unix(1),
	},
	{
		Title:        "Test2",
		Content:      "Hello, World!",
		Done:         true,
		Priority:     1,
		CreationDate: domain.Unix(2),
		DueDate:      domain.Unix(4),
		FinishDate:   domain.Unix(3),
	},
}

// Insert writes todos in order and returns them with their assigned ids.
func Insert(t *testing.T, db *gorm.DB, todos ...domain.Todo) []domain.Todo {
	t.Helper()

	out := make([]domain.Todo, 0, len(todos))
	for _, td := range todos {
		done := 0
		if td.Done {
			done = 1
		}
		var id int64
		err := db.Raw(
			`INSERT INTO todos (title, content, done, priority, creation_date, due_date, finish_date)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			td.Title, td.Content, done, td.Priority,
			td.CreationDate.Seconds(), td.DueDate.Seconds(), td.FinishDate.Seconds(),
		).Row().Scan(&id)
		if err != nil {
			t.Fatalf("insert %q: %v", td.Title, err)
		}
		td.ID = id
		out = append(out, normalize(td))
	}
	return out
}

// normalize maps zero timestamps to the epoch so inserted records compare
// equal to what the store reads back.
func normalize(td domain.Todo) domain.Todo {
	td.CreationDate = domain.Unix(td.CreationDate.Seconds())
	td.DueDate = domain.Unix(td.DueDate.Seconds())
	td.FinishDate = domain.Unix(td.FinishDate.Seconds())
	return td
}

// Seed opens a fresh store and loads Fixture into it.
func Seed(t *testing.T) (database.Service, []domain.Todo) {
	t.Helper()
	svc := NewSQLite(t)
	return svc, Insert(t, svc.GetDB(), Fixture...)
}
