package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/tick/internal/domain"
)

func TestParseWhen(t *testing.T) {
	ts, err := parseWhen("1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), ts.Seconds())

	ts, err = parseWhen("2024-03-01T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix(), ts.Seconds())

	ts, err = parseWhen("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local).Unix(), ts.Seconds())

	ts, err = parseWhen("")
	require.NoError(t, err)
	assert.True(t, ts.IsEpoch())

	_, err = parseWhen("next tuesday")
	assert.Error(t, err)
}

func TestPrintTodos(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTodos(&buf, []domain.Todo{
		{ID: 1, Title: "Test1", CreationDate: domain.Unix(1)},
		{ID: 2, Title: "Test2", Done: true, Priority: 1, CreationDate: domain.Unix(2), FinishDate: domain.Unix(3)},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "[ ]")
	assert.Contains(t, lines[2], "[x]")
	assert.Contains(t, lines[2], "Test2")

	buf.Reset()
	require.NoError(t, printTodos(&buf, nil))
	assert.Equal(t, "no todos\n", buf.String())
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("x")
	assert.Error(t, err)
}
