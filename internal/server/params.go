package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/tick/internal/domain"
	"github.com/Tomlord1122/tick/internal/server/bind"
)

// listParams is the raw query string of GET /todos before conversion.
type listParams struct {
	SortBy string `query:"sort_by" validate:"omitempty,oneof=creation_date due_date priority done"`
	Order  string `query:"order" validate:"omitempty,oneof=asc desc"`
}

// parseListQuery converts untrusted query parameters into a ListQuery.
// Malformed numbers or booleans and unknown sort keys or orders are
// rejected rather than defaulted.
func parseListQuery(values url.Values) (domain.ListQuery, error) {
	var q domain.ListQuery

	p := listParams{SortBy: values.Get("sort_by"), Order: values.Get("order")}
	if err := bind.Struct(p); err != nil {
		return q, err
	}
	q.SortBy = domain.SortKey(p.SortBy)
	q.Order = domain.SortOrder(p.Order)

	if s := values.Get("count"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return q, domain.Invalidf("Invalid query parameter count: %q is not an integer", s)
		}
		if n < domain.MinCount {
			n = domain.MinCount
		}
		q.Count = n
	}

	if s := values.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return q, domain.Invalidf("Invalid query parameter offset: %q is not an integer", s)
		}
		q.Offset = n
	}

	if s := values.Get("done"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, domain.Invalidf("Invalid query parameter done: %q is not a boolean", s)
		}
		q.Done = &b
	}

	q.Search = values.Get("search")

	return q.Normalize(), nil
}

// todoID reads the {id} path parameter.
func todoID(r *http.Request) (int64, error) {
	s := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, domain.Invalidf("Invalid todo ID %q", s)
	}
	return id, nil
}
