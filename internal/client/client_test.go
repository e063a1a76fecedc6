package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/tick/internal/config"
	"github.com/Tomlord1122/tick/internal/domain"
	"github.com/Tomlord1122/tick/internal/repository"
	"github.com/Tomlord1122/tick/internal/server"
	"github.com/Tomlord1122/tick/internal/service"
	"github.com/Tomlord1122/tick/internal/testkit"
)

func newLiveClient(t *testing.T) (*Client, []domain.Todo) {
	t.Helper()
	db, fixture := testkit.Seed(t)
	svc := service.NewTodoService(repository.NewGormTodoRepository(db.GetDB()))
	srv := server.New(config.HTTPConfig{RequestTimeout: 5 * time.Second}, svc, db)

	ts := httptest.NewServer(srv.RegisterRoutes())
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", ts.Client()), fixture
}

func TestClient_CRUD(t *testing.T) {
	c, fixture := newLiveClient(t)
	ctx := context.Background()

	todos, err := c.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Todo{fixture[1], fixture[0]}, todos)

	done := true
	todos, err = c.List(ctx, ListParams{Done: &done, Count: 10})
	require.NoError(t, err)
	assert.Equal(t, []domain.Todo{fixture[1]}, todos)

	got, err := c.Get(ctx, fixture[0].ID)
	require.NoError(t, err)
	assert.Equal(t, fixture[0], got)

	created, err := c.Create(ctx, domain.Todo{Title: "from client", CreationDate: domain.Unix(9)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	created.Content = "edited"
	require.NoError(t, c.Put(ctx, created))
	got, err = c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	require.NoError(t, c.Delete(ctx, created.ID))
	_, err = c.Get(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
	assert.Equal(t, "Todo with ID 3 does not exist", apiErr.Error())
}

func TestClient_ListRejectsBadSort(t *testing.T) {
	c, _ := newLiveClient(t)

	_, err := c.List(context.Background(), ListParams{SortBy: "title"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, string(domain.KindInvalid), apiErr.Code)
}

func TestClient_AutocompleteAndToggle(t *testing.T) {
	c, fixture := newLiveClient(t)
	ctx := context.Background()

	todos, err := c.Autocomplete(ctx, "HELLO, W")
	require.NoError(t, err)
	assert.Equal(t, []domain.Todo{fixture[1]}, todos)

	toggled, err := c.Toggle(ctx, fixture[1].ID)
	require.NoError(t, err)
	assert.False(t, toggled.Done)
	assert.True(t, toggled.FinishDate.IsEpoch())
}

func TestCoordinator_AgainstServer(t *testing.T) {
	c, fixture := newLiveClient(t)
	coord := &Coordinator{API: c, Now: func() time.Time { return time.Unix(777, 0) }}
	ctx := context.Background()

	got, err := coord.Toggle(ctx, fixture[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Done)

	stored, err := c.Get(ctx, fixture[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.Done)
	assert.Equal(t, domain.Unix(777), stored.FinishDate)
	assert.Equal(t, fixture[0].CreationDate, stored.CreationDate)

	stored.Done = false
	stored.FinishDate = domain.Unix(5)
	got, err = coord.Update(ctx, stored)
	require.NoError(t, err)
	assert.True(t, got.FinishDate.IsEpoch())

	stored, err = c.Get(ctx, fixture[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.FinishDate.IsEpoch())
}

func TestClient_UnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"maybe"}`))
	}))
	t.Cleanup(ts.Close)

	_, err := New(ts.URL, nil).Get(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unexpected status: "maybe"`)
}

func TestClient_ErrorWithoutMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}))
	t.Cleanup(ts.Close)

	err := New(ts.URL, nil).Delete(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "unknown error", apiErr.Message)
}

func TestClient_NotJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	t.Cleanup(ts.Close)

	_, err := New(ts.URL, nil).List(context.Background(), ListParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json parse error")
}
