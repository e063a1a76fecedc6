package repository

import (
	"strings"

	"github.com/Tomlord1122/tick/internal/domain"
)

// AutocompleteLimit caps the legacy autocomplete result.
const AutocompleteLimit = 10

// todoColumns coalesces the nullable columns so rows always decode into
// zero values.
const todoColumns = `id, title, COALESCE(content, '') AS content, done, ` +
	`COALESCE(priority, 0) AS priority, creation_date, ` +
	`COALESCE(due_date, 0) AS due_date, COALESCE(finish_date, 0) AS finish_date`

// sortColumns and sortDirections are the only tokens ever written into an
// ORDER BY clause.
var sortColumns = map[domain.SortKey]string{
	domain.SortByCreationDate: "creation_date",
	domain.SortByDueDate:      "due_date",
	domain.SortByPriority:     "priority",
	domain.SortByDone:         "done",
}

var sortDirections = map[domain.SortOrder]string{
	domain.OrderAsc:  "ASC",
	domain.OrderDesc: "DESC",
}

// BuildListQuery turns q into a SELECT statement with positional
// placeholders and its bound arguments, in placeholder order. Input values
// only ever reach the statement as arguments.
func BuildListQuery(q domain.ListQuery) (string, []any) {
	q = q.Normalize()

	var sb strings.Builder
	args := make([]any, 0, 5)

	sb.WriteString("SELECT ")
	sb.WriteString(todoColumns)
	sb.WriteString(" FROM todos WHERE 1=1")

	if q.Search != "" {
		pattern := containsPattern(q.Search)
		sb.WriteString(" AND (title LIKE ? ESCAPE '\\' OR content LIKE ? ESCAPE '\\')")
		args = append(args, pattern, pattern)
	}

	if q.Done != nil {
		sb.WriteString(" AND done = ?")
		args = append(args, flag(*q.Done))
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[domain.SortByCreationDate]
	}
	direction, ok := sortDirections[q.Order]
	if !ok {
		direction = sortDirections[domain.OrderDesc]
	}

	// id breaks ties so equal sort values page deterministically
	sb.WriteString(" ORDER BY ")
	sb.WriteString(column)
	sb.WriteByte(' ')
	sb.WriteString(direction)
	sb.WriteString(", id ")
	sb.WriteString(direction)
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, q.Count, q.Offset)

	return sb.String(), args
}

// BuildAutocompleteQuery matches term case-insensitively against title or
// content. Both sides are folded by the store's LOWER so they always agree;
// on sqlite that folds ASCII only.
func BuildAutocompleteQuery(term string) (string, []any) {
	pattern := containsPattern(term)
	query := "SELECT " + todoColumns +
		" FROM todos WHERE (LOWER(title) LIKE LOWER(?) ESCAPE '\\'" +
		" OR LOWER(content) LIKE LOWER(?) ESCAPE '\\')" +
		" ORDER BY id ASC LIMIT ?"
	return query, []any{pattern, pattern, AutocompleteLimit}
}

// likeEscaper escapes the LIKE metacharacters; statements declare
// ESCAPE '\' to match.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches term literally anywhere in a column.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// flag encodes done as the integer stored in the done column.
func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
