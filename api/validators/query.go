package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/peopledesk/peopledesk-backend/internal/directory"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
	pkgerrors "github.com/peopledesk/peopledesk-backend/pkg/errors"
	"github.com/peopledesk/peopledesk-backend/pkg/pagination"
)

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseListQuery maps the list endpoint's query string onto the directory
// filters. Unknown role and account-type values are ignored rather than
// rejected; date boundaries are passed through for the query builder to
// drop when malformed.
func ParseListQuery(r *http.Request) (directory.ListInput, error) {
	page, err := ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return directory.ListInput{}, err
	}
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return directory.ListInput{}, err
	}

	q := r.URL.Query()
	input := directory.ListInput{
		Filters: directory.Filters{
			Search:    strings.TrimSpace(q.Get("search")),
			StartDate: strings.TrimSpace(q.Get("start_date")),
			EndDate:   strings.TrimSpace(q.Get("end_date")),
		},
		Pagination: pagination.Params{Page: page, Limit: limit},
		SortBy:     strings.TrimSpace(q.Get("sort_by")),
		SortOrder:  enums.ParseSortOrder(strings.TrimSpace(q.Get("sort_order"))),
	}

	for _, value := range splitMulti(q["roles"]) {
		if role, err := enums.ParseRole(value); err == nil {
			input.Filters.Roles = append(input.Filters.Roles, role)
		}
	}
	for _, value := range splitMulti(q["account_types"]) {
		if at, err := enums.ParseAccountType(value); err == nil {
			input.Filters.AccountTypes = append(input.Filters.AccountTypes, at)
		}
	}

	if raw := strings.TrimSpace(q.Get("sensitivity")); raw != "" {
		if flag, err := strconv.ParseBool(raw); err == nil {
			input.Filters.Sensitivity = &flag
		}
	}

	return input, nil
}

// splitMulti accepts both repeated query keys and comma-joined values.
func splitMulti(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
