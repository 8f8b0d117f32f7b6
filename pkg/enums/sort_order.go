package enums

// SortOrder selects ascending or descending ordering for list queries.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// String implements fmt.Stringer.
func (s SortOrder) String() string {
	return string(s)
}

// ParseSortOrder normalizes raw input, defaulting to ascending.
func ParseSortOrder(value string) SortOrder {
	if value == string(SortOrderDesc) {
		return SortOrderDesc
	}
	return SortOrderAsc
}
