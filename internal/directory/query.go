package directory

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/peopledesk/peopledesk-backend/pkg/enums"
	"github.com/peopledesk/peopledesk-backend/pkg/pagination"
)

// Filters describe the supported knobs for the directory list endpoint.
// Absent or empty options contribute no constraint; everything supplied
// combines with AND.
type Filters struct {
	Search       string              `json:"search,omitempty"`
	Roles        []enums.Role        `json:"roles,omitempty"`
	AccountTypes []enums.AccountType `json:"account_types,omitempty"`
	Sensitivity  *bool               `json:"sensitivity,omitempty"`
	StartDate    string              `json:"start_date,omitempty"`
	EndDate      string              `json:"end_date,omitempty"`
}

// ListInput captures filters plus pagination and sort for one list call.
type ListInput struct {
	Filters    Filters
	Pagination pagination.Params
	SortBy     string
	SortOrder  enums.SortOrder
}

// sortColumns whitelists the sortable columns; anything else falls back
// to name.
var sortColumns = map[string]string{
	"name":         "name",
	"email":        "email",
	"role":         "role",
	"account_type": "account_type",
	"created_at":   "created_at",
}

// Apply composes the filter predicate onto the query. LOWER+LIKE keeps the
// case-insensitive search portable between postgres and sqlite.
func (f Filters) Apply(q *gorm.DB) *gorm.DB {
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	if len(f.Roles) > 0 {
		q = q.Where("role IN ?", f.Roles)
	}

	if len(f.AccountTypes) > 0 {
		q = q.Where("account_type IN ?", f.AccountTypes)
	}

	if f.Sensitivity != nil {
		q = q.Where("needs_sensitive_storage = ?", *f.Sensitivity)
	}

	// Malformed date boundaries are dropped, not rejected.
	if start, err := time.Parse("2006-01-02", f.StartDate); f.StartDate != "" && err == nil {
		q = q.Where("created_at >= ?", start)
	}
	if end, err := time.Parse("2006-01-02", f.EndDate); f.EndDate != "" && err == nil {
		q = q.Where("created_at < ?", end.AddDate(0, 0, 1))
	}

	return q
}

// OrderClause returns the validated ORDER BY expression for the input.
func (in ListInput) OrderClause() string {
	column, ok := sortColumns[in.SortBy]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if in.SortOrder == enums.SortOrderDesc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}
