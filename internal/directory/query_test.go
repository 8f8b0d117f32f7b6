package directory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
	"github.com/peopledesk/peopledesk-backend/pkg/pagination"
)

func boolPtr(b bool) *bool { return &b }

func seedPopulation(t *testing.T, tx *gorm.DB) {
	t.Helper()

	mustCreateTestUser(t, tx, func(u *models.User) {
		u.Name = "Alice Johnson"
		u.Email = "alice@example.com"
		u.AccountType = enums.AccountTypeProfessional
		u.NeedsSensitiveStorage = true
		u.CreatedAt = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	})
	mustCreateTestUser(t, tx, func(u *models.User) {
		u.Name = "Bob Stone"
		u.Email = "bob@corp.example.com"
		u.AccountType = enums.AccountTypeAcademic
		u.CreatedAt = time.Date(2026, 1, 20, 23, 30, 0, 0, time.UTC)
	})
	mustCreateTestUser(t, tx, func(u *models.User) {
		u.Name = "Carol Alston"
		u.Email = "carol@example.com"
		u.Role = enums.RoleEmployee
		u.CreatedAt = time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	})
	mustCreateTestUser(t, tx, func(u *models.User) {
		u.Name = "Dan Root"
		u.Email = "dan@example.com"
		u.Role = enums.RoleAdmin
		u.CreatedAt = time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)
	})
}

func listUsers(t *testing.T, repo *Repository, input ListInput) ([]models.User, int64) {
	t.Helper()
	users, total, err := repo.List(context.Background(), input)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	return users, total
}

func TestListEmptyFiltersMatchFullPopulation(t *testing.T) {
	tx := newTestDB(t)
	seedPopulation(t, tx)
	repo := NewRepository(tx)

	users, total := listUsers(t, repo, ListInput{})
	if total != 4 || len(users) != 4 {
		t.Fatalf("expected all 4 users, got %d rows total=%d", len(users), total)
	}
}

func TestListSearchMatchesNameOrEmail(t *testing.T) {
	tx := newTestDB(t)
	seedPopulation(t, tx)
	repo := NewRepository(tx)

	// "als" hits Carol by name (Alston) and nobody by email.
	users, _ := listUsers(t, repo, ListInput{Filters: Filters{Search: "ALS"}})
	if len(users) != 1 || users[0].Name != "Carol Alston" {
		t.Fatalf("expected Carol only, got %d rows", len(users))
	}

	// "corp" hits Bob by email only.
	users, _ = listUsers(t, repo, ListInput{Filters: Filters{Search: "corp"}})
	if len(users) != 1 || users[0].Name != "Bob Stone" {
		t.Fatalf("expected Bob only, got %d rows", len(users))
	}
}

func TestListRoleAndSearchIntersect(t *testing.T) {
	tx := newTestDB(t)
	seedPopulation(t, tx)
	repo := NewRepository(tx)

	// "o" matches every seeded user; the role set narrows it to users only.
	users, total := listUsers(t, repo, ListInput{
		Filters: Filters{Search: "o", Roles: []enums.Role{enums.RoleUser}},
	})
	if total != 2 || len(users) != 2 {
		t.Fatalf("expected the 2 user-role matches, got %d total=%d", len(users), total)
	}
	for _, u := range users {
		if u.Role != enums.RoleUser {
			t.Errorf("unexpected role %s in result", u.Role)
		}
	}
}

func TestListAccountTypeAndSensitivity(t *testing.T) {
	tx := newTestDB(t)
	seedPopulation(t, tx)
	repo := NewRepository(tx)

	users, _ := listUsers(t, repo, ListInput{
		Filters: Filters{AccountTypes: []enums.AccountType{enums.AccountTypeProfessional, enums.AccountTypeAcademic}},
	})
	if len(users) != 2 {
		t.Fatalf("expected 2 account-type matches, got %d", len(users))
	}

	users, _ = listUsers(t, repo, ListInput{Filters: Filters{Sensitivity: boolPtr(true)}})
	if len(users) != 1 || users[0].Name != "Alice Johnson" {
		t.Fatalf("expected Alice only for sensitivity=true, got %d rows", len(users))
	}

	users, _ = listUsers(t, repo, ListInput{Filters: Filters{Sensitivity: boolPtr(false)}})
	if len(users) != 3 {
		t.Fatalf("expected 3 rows for sensitivity=false, got %d", len(users))
	}
}

func TestListDateRangeIncludesWholeEndDay(t *testing.T) {
	tx := newTestDB(t)
	seedPopulation(t, tx)
	repo := NewRepository(tx)

	// Bob was created at 23:30 on the end date and must still match.
	users, _ := listUsers(t, repo, ListInput{
		Filters: Filters{StartDate: "2026-01-01", EndDate: "2026-01-20"},
	})
	if len(users) != 2 {
		t.Fatalf("expected Alice and Bob in range, got %d", len(users))
	}
}

func TestListMalformedDateBoundariesAreDropped(t *testing.T) {
	tx := newTestDB(t)
	seedPopulation(t, tx)
	repo := NewRepository(tx)

	users, total := listUsers(t, repo, ListInput{
		Filters: Filters{StartDate: "01/10/2026", EndDate: "not-a-date"},
	})
	if total != 4 || len(users) != 4 {
		t.Fatalf("malformed bounds must not constrain; got %d total=%d", len(users), total)
	}
}

func TestListPaginationBoundaries(t *testing.T) {
	tx := newTestDB(t)
	repo := NewRepository(tx)
	for i := 0; i < 25; i++ {
		mustCreateTestUser(t, tx, func(u *models.User) {
			u.Name = fmt.Sprintf("User %02d", i)
			u.Email = fmt.Sprintf("user%02d@example.com", i)
		})
	}

	users, total := listUsers(t, repo, ListInput{
		Pagination: pagination.Params{Page: 3, Limit: 10},
		SortBy:     "name",
	})
	if total != 25 {
		t.Fatalf("expected total 25, got %d", total)
	}
	if got := pagination.TotalPages(total, 10); got != 3 {
		t.Fatalf("expected 3 total pages, got %d", got)
	}
	if len(users) != 5 {
		t.Fatalf("expected page 3 to hold exactly 5 records, got %d", len(users))
	}
	if users[0].Name != "User 20" {
		t.Fatalf("expected page 3 to start at User 20, got %s", users[0].Name)
	}
}

func TestListSortOrder(t *testing.T) {
	tx := newTestDB(t)
	seedPopulation(t, tx)
	repo := NewRepository(tx)

	users, _ := listUsers(t, repo, ListInput{SortBy: "created_at", SortOrder: enums.SortOrderDesc})
	if users[0].Name != "Dan Root" {
		t.Fatalf("expected newest first, got %s", users[0].Name)
	}

	// Unknown sort columns fall back to name ascending.
	users, _ = listUsers(t, repo, ListInput{SortBy: "password_hash; DROP TABLE users"})
	if users[0].Name != "Alice Johnson" {
		t.Fatalf("expected name fallback ordering, got %s", users[0].Name)
	}
}
