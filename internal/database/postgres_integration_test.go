//go:build integration

package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tomlord1122/tick/internal/config"
	"github.com/Tomlord1122/tick/internal/database"
	"github.com/Tomlord1122/tick/internal/domain"
	"github.com/Tomlord1122/tick/internal/repository"
)

func startPostgres(t *testing.T) database.Service {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tick"),
		postgres.WithUsername("tick"),
		postgres.WithPassword("tick"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	svc, err := database.New(config.DBConfig{
		Driver:          config.DriverPostgres,
		URL:             url,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, config.LogConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	require.NoError(t, database.EnsureSchema(ctx, svc.GetDB()))
	// idempotent
	require.NoError(t, database.EnsureSchema(ctx, svc.GetDB()))
	return svc
}

func TestPostgres_Health(t *testing.T) {
	svc := startPostgres(t)
	assert.Equal(t, "up", svc.Health()["status"])
}

func TestPostgres_SeedExample(t *testing.T) {
	svc := startPostgres(t)
	ctx := context.Background()

	seeded, err := database.SeedExample(ctx, svc.GetDB(), time.Unix(100, 0))
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = database.SeedExample(ctx, svc.GetDB(), time.Unix(200, 0))
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestPostgres_Repository(t *testing.T) {
	svc := startPostgres(t)
	repo := repository.NewGormTodoRepository(svc.GetDB())
	ctx := context.Background()

	r1, err := repo.Create(ctx, domain.Todo{Title: "Test1", CreationDate: domain.Unix(1)})
	require.NoError(t, err)
	r2, err := repo.Create(ctx, domain.Todo{
		Title:        "Test2",
		Content:      "Hello, World!",
		Done:         true,
		Priority:     1,
		CreationDate: domain.Unix(2),
		DueDate:      domain.Unix(4),
		FinishDate:   domain.Unix(3),
	})
	require.NoError(t, err)

	list, err := repo.List(ctx, domain.ListQuery{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r2.ID, list[0].ID)
	assert.Equal(t, r1.ID, list[1].ID)

	done := false
	list, err = repo.List(ctx, domain.ListQuery{Done: &done, Search: "Test"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r1.ID, list[0].ID)

	hits, err := repo.Autocomplete(ctx, "WORLD")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, r2.ID, hits[0].ID)

	ok, err := repo.SetDone(ctx, r1.ID, false, true, domain.Unix(9))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.FindByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)
	assert.Equal(t, domain.Unix(9), got.FinishDate)

	require.NoError(t, repo.Delete(ctx, r1.ID))
	_, err = repo.FindByID(ctx, r1.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
