package domain

const DefaultPageSize = 10

// FilterCriteria is the body of a directory list request.
type FilterCriteria struct {
	Name      string      `json:"name,omitempty"`
	Status    HotelStatus `json:"status,omitempty"`
	OwnerName string      `json:"owner_name,omitempty"`
	City      string      `json:"city,omitempty"`
	Page      int         `json:"page"`
	PageSize  int         `json:"page_size"`
}

func DefaultCriteria(pageSize int) FilterCriteria {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return FilterCriteria{Page: 1, PageSize: pageSize}
}

// WithPage returns a copy with the page replaced.
func (c FilterCriteria) WithPage(p int) FilterCriteria {
	c.Page = p
	return c
}

// Offset is the zero-based row offset of the first item on the page.
func (c FilterCriteria) Offset() int {
	if c.Page < 1 {
		return 0
	}
	return (c.Page - 1) * c.PageSize
}
