package paging

// DefaultSize is applied when a request carries no page size.
const DefaultSize = 100

// MaxSize caps the page size a client may request.
const MaxSize = 1000

// Request describes the page a caller wants.
type Request struct {
	// Page is the zero-based page index.
	Page int `json:"page"`
	// Size is the number of rows per page.
	Size int `json:"size"`
	// Sort is an optional "field,direction" pair, validated by the feature
	// against its search schema before use.
	Sort string `json:"sort,omitempty"`
}

// Normalize clamps the request into valid bounds.
func (r Request) Normalize() Request {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultSize
	}
	if r.Size > MaxSize {
		r.Size = MaxSize
	}
	return r
}

// Offset returns the row offset of the requested page.
func (r Request) Offset() int {
	return r.Page * r.Size
}

// Page is one page of query results. TotalGroups counts distinct group keys
// for deduplicated "most recent" queries, and raw rows for windowed queries.
type Page[T any] struct {
	Content     []T   `json:"content"`
	TotalGroups int64 `json:"totalGroups"`
	Page        int   `json:"page"`
	Size        int   `json:"size"`
}

// NewPage assembles a page from query output.
func NewPage[T any](content []T, total int64, req Request) Page[T] {
	return Page[T]{
		Content:     content,
		TotalGroups: total,
		Page:        req.Page,
		Size:        req.Size,
	}
}
