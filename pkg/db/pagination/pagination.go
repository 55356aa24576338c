package pagination

const (
	DefaultLimit = 50
	MaxLimit     = 250
)

type Pagination struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

type PageInfo struct {
	NextOffset int  `json:"next_offset"`
	HasMore    bool `json:"has_more"`
}

// Normalize clamps the limit into [1, MaxLimit] and the offset to >= 0.
func (p Pagination) Normalize() Pagination {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// BuildPageInfo expects data fetched with one row more than the limit and
// trims that probe row.
func BuildPageInfo[T any](data []*T, p Pagination) ([]*T, PageInfo) {
	p = p.Normalize()
	if len(data) <= p.Limit {
		return data, PageInfo{NextOffset: p.Offset + len(data)}
	}
	return data[:p.Limit], PageInfo{NextOffset: p.Offset + p.Limit, HasMore: true}
}
