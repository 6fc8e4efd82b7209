package core

// PageRequest carries the pagination parameters accepted by list operations.
type PageRequest struct {
	Page int
	Take int
}

// PageMeta is the pagination envelope returned next to the data.
type PageMeta struct {
	Page            int  `json:"page"`
	Take            int  `json:"take"`
	ItemCount       int  `json:"itemCount"`
	PageCount       int  `json:"pageCount"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// Normalize clamps page and take to at least 1, using defaultTake when take is unset.
func (r PageRequest) Normalize(defaultTake int) PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Take < 1 {
		r.Take = defaultTake
	}
	if r.Take < 1 {
		r.Take = 1
	}
	return r
}

// Skip is the number of records preceding the requested page.
func (r PageRequest) Skip() int {
	if r.Page < 1 {
		return 0
	}
	return (r.Page - 1) * r.Take
}

// NewPage builds the envelope; pageCount = ceil(itemCount/take).
func NewPage[T any](data []T, req PageRequest, itemCount int) Page[T] {
	if data == nil {
		data = []T{}
	}
	pageCount := 0
	if req.Take > 0 {
		pageCount = (itemCount + req.Take - 1) / req.Take
	}
	return Page[T]{
		Data: data,
		Meta: PageMeta{
			Page:            req.Page,
			Take:            req.Take,
			ItemCount:       itemCount,
			PageCount:       pageCount,
			HasPreviousPage: req.Page > 1,
			HasNextPage:     req.Page < pageCount,
		},
	}
}
