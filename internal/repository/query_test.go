package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tomlord1122/tick/internal/domain"
)

const selectPrefix = "SELECT " + todoColumns + " FROM todos WHERE 1=1"

func TestBuildListQuery_Defaults(t *testing.T) {
	query, args := BuildListQuery(domain.ListQuery{})

	assert.Equal(t, selectPrefix+" ORDER BY creation_date DESC, id DESC LIMIT ? OFFSET ?", query)
	assert.Equal(t, []any{25, 0}, args)
}

func TestBuildListQuery_AllClauses(t *testing.T) {
	done := true
	query, args := BuildListQuery(domain.ListQuery{
		Count:  10,
		Offset: 20,
		SortBy: domain.SortByPriority,
		Order:  domain.OrderAsc,
		Done:   &done,
		Search: "milk",
	})

	assert.Equal(t, selectPrefix+
		" AND (title LIKE ? ESCAPE '\\' OR content LIKE ? ESCAPE '\\')"+
		" AND done = ?"+
		" ORDER BY priority ASC, id ASC LIMIT ? OFFSET ?", query)
	assert.Equal(t, []any{"%milk%", "%milk%", 1, 10, 20}, args)
}

func TestBuildListQuery_DoneFalseBindsZero(t *testing.T) {
	done := false
	_, args := BuildListQuery(domain.ListQuery{Done: &done})
	assert.Equal(t, []any{0, 25, 0}, args)
}

func TestBuildListQuery_ClampsPage(t *testing.T) {
	_, args := BuildListQuery(domain.ListQuery{Count: 5000, Offset: -3})
	assert.Equal(t, []any{100, 0}, args)
}

func TestBuildListQuery_InputNeverReachesStatement(t *testing.T) {
	hostile := "'; DROP TABLE todos; --"
	query, args := BuildListQuery(domain.ListQuery{
		Search: hostile,
		SortBy: domain.SortKey("id; DROP TABLE todos"),
		Order:  domain.SortOrder("sideways"),
	})

	assert.NotContains(t, query, "DROP")
	assert.NotContains(t, query, "sideways")
	assert.Contains(t, query, " ORDER BY creation_date DESC, id DESC ")
	assert.Equal(t, "%"+hostile+"%", args[0])
}

func TestBuildListQuery_EverySortKey(t *testing.T) {
	for key, column := range sortColumns {
		for order, dir := range sortDirections {
			query, _ := BuildListQuery(domain.ListQuery{SortBy: key, Order: order})
			assert.Contains(t, query, " ORDER BY "+column+" "+dir+", id "+dir+" ")
		}
	}
}

func TestBuildAutocompleteQuery(t *testing.T) {
	query, args := BuildAutocompleteQuery("MiLk")

	assert.Equal(t, "SELECT "+todoColumns+
		" FROM todos WHERE (LOWER(title) LIKE LOWER(?) ESCAPE '\\'"+
		" OR LOWER(content) LIKE LOWER(?) ESCAPE '\\')"+
		" ORDER BY id ASC LIMIT ?", query)
	assert.Equal(t, []any{"%MiLk%", "%MiLk%", AutocompleteLimit}, args)
}

func TestContainsPattern_EscapesWildcards(t *testing.T) {
	tests := map[string]string{
		"milk":    `%milk%`,
		"%":       `%\%%`,
		"_":       `%\_%`,
		"Test_":   `%Test\_%`,
		`50% off`: `%50\% off%`,
		`C:\tmp`:  `%C:\\tmp%`,
	}
	for in, want := range tests {
		assert.Equal(t, want, containsPattern(in), in)
	}
}
