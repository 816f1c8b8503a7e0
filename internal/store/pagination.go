package store

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a 1-indexed slice of the audit trail.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size into range.
func NewPage(number, size int) Page {
	switch {
	case size < 1:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: max(number, 1), Size: size}
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

// PageInfo describes where a page sits in the full result.
type PageInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func pageInfo(total int64, p Page) PageInfo {
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	current := p.Number
	if pages > 0 && current > pages {
		current = pages
	}
	return PageInfo{
		Total:      total,
		Page:       current,
		PageSize:   p.Size,
		TotalPages: pages,
		HasPrev:    current > 1,
		HasNext:    current < pages,
	}
}
