package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_JSON(t *testing.T) {
	b, err := json.Marshal(Unix(1700000000))
	require.NoError(t, err)
	assert.Equal(t, "1700000000", string(b))

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte("42"), &ts))
	assert.Equal(t, int64(42), ts.Seconds())

	require.NoError(t, json.Unmarshal([]byte("null"), &ts))
	assert.True(t, ts.IsEpoch())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestTimestamp_ZeroValueIsEpoch(t *testing.T) {
	var ts Timestamp
	assert.Equal(t, int64(0), ts.Seconds())
	assert.True(t, ts.IsEpoch())

	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, "0", string(b))
}

func TestTodo_JSONFieldNames(t *testing.T) {
	td := Todo{
		ID:           7,
		Title:        "Test2",
		Content:      "Hello, World!",
		Done:         true,
		Priority:     1,
		CreationDate: Unix(2),
		DueDate:      Unix(4),
		FinishDate:   Unix(3),
	}
	b, err := json.Marshal(td)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"title": "Test2",
		"content": "Hello, World!",
		"done": true,
		"priority": 1,
		"creation_date": 2,
		"due_date": 4,
		"finish_date": 3
	}`, string(b))
}

func TestApply_KeepsIdentityAndCreationDate(t *testing.T) {
	existing := Todo{ID: 1, Title: "old", Content: "c", Priority: 5, CreationDate: Unix(10), DueDate: Unix(20)}
	payload := Todo{ID: 99, Title: "new", CreationDate: Unix(999)}

	got := Apply(existing, payload)

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, Unix(10), got.CreationDate)
	assert.Equal(t, "new", got.Title)
	// zero values overwrite: there is no partial update
	assert.Equal(t, "", got.Content)
	assert.Equal(t, int64(0), got.Priority)
	assert.True(t, got.DueDate.IsEpoch())
}

func TestSettleFinish(t *testing.T) {
	now := time.Unix(500, 123).UTC()

	tests := []struct {
		name     string
		prevDone bool
		next     Todo
		want     Timestamp
	}{
		{"open to done stamps now", false, Todo{Done: true, FinishDate: Unix(7)}, Unix(500)},
		{"done to open resets", true, Todo{Done: false, FinishDate: Unix(7)}, Epoch},
		{"done stays done keeps payload", true, Todo{Done: true, FinishDate: Unix(7)}, Unix(7)},
		{"open stays open keeps payload", false, Todo{Done: false, FinishDate: Unix(7)}, Unix(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SettleFinish(tt.prevDone, tt.next, now)
			assert.Equal(t, tt.want, got.FinishDate)
			assert.Equal(t, tt.next.Done, got.Done)
		})
	}
}

func TestToggled(t *testing.T) {
	now := time.Unix(1000, 0)

	open := Todo{ID: 3, Title: "x", FinishDate: Epoch}
	done := Toggled(open, now)
	assert.True(t, done.Done)
	assert.Equal(t, int64(1000), done.FinishDate.Seconds())
	assert.Equal(t, open.ID, done.ID)

	back := Toggled(done, now.Add(time.Hour))
	assert.False(t, back.Done)
	assert.True(t, back.FinishDate.IsEpoch())
}
