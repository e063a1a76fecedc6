package domain

// Page size bounds for list requests.
const (
	DefaultCount = 25
	MinCount     = 1
	MaxCount     = 100
)

// SortKey names a sortable column. Only the constants below are meaningful.
type SortKey string

const (
	SortByCreationDate SortKey = "creation_date"
	SortByDueDate      SortKey = "due_date"
	SortByPriority     SortKey = "priority"
	SortByDone         SortKey = "done"
)

// SortOrder is the list direction.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListQuery carries the optional filter, sort and pagination inputs of a
// list request. It lives for a single request.
type ListQuery struct {
	// Count is the page size. Zero means unspecified; parsers map an
	// explicit zero or negative count to MinCount before it gets here.
	Count  int
	Offset int
	SortBy SortKey
	Order  SortOrder
	// Done filters on completion when non-nil.
	Done *bool
	// Search matches as a substring of title or content when non-empty.
	Search string
}

// Normalize applies defaults and clamps count and offset into range.
func (q ListQuery) Normalize() ListQuery {
	switch {
	case q.Count == 0:
		q.Count = DefaultCount
	case q.Count < MinCount:
		q.Count = MinCount
	case q.Count > MaxCount:
		q.Count = MaxCount
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.SortBy == "" {
		q.SortBy = SortByCreationDate
	}
	if q.Order == "" {
		q.Order = OrderDesc
	}
	return q
}
