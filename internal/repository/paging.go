package repository

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Paging is a 1-based page request.
type Paging struct {
	Page     int
	PageSize int
}

// Normalize clamps the request into a valid page.
func (p Paging) Normalize() Paging {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Paging) Offset() int {
	return (p.Page - 1) * p.PageSize
}
