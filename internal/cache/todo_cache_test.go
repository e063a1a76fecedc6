package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/tick/internal/domain"
	"github.com/Tomlord1122/tick/internal/repository"
	"github.com/Tomlord1122/tick/internal/testkit"
)

func TestListKey(t *testing.T) {
	done := true
	a := listKey(domain.ListQuery{Done: &done, Search: "a b"}.Normalize())
	b := listKey(domain.ListQuery{Search: "a b", Done: &done}.Normalize())

	assert.Equal(t, a, b)
	assert.Equal(t, "todo:list:count=25&done=true&offset=0&order=desc&search=a+b&sort_by=creation_date", a)
	assert.NotEqual(t, a, listKey(domain.ListQuery{}.Normalize()))
}

func TestItemKey(t *testing.T) {
	assert.Equal(t, "todo:item:42", itemKey(42))
}

// unreachableRedis points at a port nothing listens on.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestTodoCache_RedisDownFallsThrough(t *testing.T) {
	db, fixture := testkit.Seed(t)
	c := NewTodoCache(repository.NewGormTodoRepository(db.GetDB()), unreachableRedis(t), time.Minute)
	ctx := context.Background()

	got, err := c.FindByID(ctx, fixture[1].ID)
	require.NoError(t, err)
	assert.Equal(t, fixture[1], got)

	list, err := c.List(ctx, domain.ListQuery{Order: domain.OrderAsc})
	require.NoError(t, err)
	assert.Equal(t, fixture, list)

	created, err := c.Create(ctx, domain.Todo{Title: "new", CreationDate: domain.Unix(5)})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	created.Title = "renamed"
	require.NoError(t, c.Update(ctx, created))

	ok, err := c.SetDone(ctx, created.ID, false, true, domain.Unix(6))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = c.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.True(t, got.Done)

	require.NoError(t, c.Delete(ctx, created.ID))

	// store errors still come through unchanged
	_, err = c.FindByID(ctx, created.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	err = c.Update(ctx, domain.Todo{ID: 100, Title: "ghost"})
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
