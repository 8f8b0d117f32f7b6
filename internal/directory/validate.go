package directory

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/peopledesk/peopledesk-backend/pkg/enums"
)

// Mode selects which presence rules apply during validation.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

var emailRe = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,4}$`)

const (
	msgNameTooShort       = "Name must be at least 2 characters long."
	msgInvalidEmail       = "Please provide a valid email address."
	msgPasswordTooShort   = "Password must be at least 6 characters long."
	msgNewPasswordShort   = "New password must be at least 6 characters long."
	msgInvalidAccountType = "Invalid account type selected."
	msgManagementReserved = "Cannot assign 'management' account type to a 'user' role."
	msgInvalidStaffRole   = "New staff role must be 'admin' or 'employee'."
	msgUnder18            = "User must be at least 18 years old."
	msgEmailTaken         = "This email address is already registered."
)

// FieldError is a single accumulated validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors collects every violation in a request; callers decide how to
// report the aggregate.
type FieldErrors []FieldError

func (e FieldErrors) Empty() bool { return len(e) == 0 }

// Messages returns the bare message list in accumulation order.
func (e FieldErrors) Messages() []string {
	out := make([]string, 0, len(e))
	for _, fe := range e {
		out = append(out, fe.Message)
	}
	return out
}

// Joined renders the accumulated messages one per line for display.
func (e FieldErrors) Joined() string {
	return strings.Join(e.Messages(), "\n")
}

func (e *FieldErrors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Proposed carries the candidate field values for one create or update.
// A nil pointer means the field was not supplied.
type Proposed struct {
	Name        *string
	Email       *string
	Password    *string
	AccountType *string
	StaffRole   *string
	DateOfBirth *string
}

// ValidateFields runs every applicable rule and accumulates failures
// without short-circuiting. It is stateless; uniqueness is checked
// separately because it needs the directory.
func ValidateFields(p Proposed, mode Mode, now time.Time) FieldErrors {
	var errs FieldErrors

	if mode == ModeCreate || p.Name != nil {
		if p.Name == nil || utf8.RuneCountInString(*p.Name) < 2 {
			errs.add("name", msgNameTooShort)
		}
	}

	if mode == ModeCreate || p.Email != nil {
		if p.Email == nil || !emailRe.MatchString(strings.ToLower(*p.Email)) {
			errs.add("email", msgInvalidEmail)
		}
	}

	switch {
	case mode == ModeCreate:
		if p.Password == nil || utf8.RuneCountInString(*p.Password) < 6 {
			errs.add("password", msgPasswordTooShort)
		}
	case p.Password != nil && *p.Password != "":
		if utf8.RuneCountInString(*p.Password) < 6 {
			errs.add("password", msgNewPasswordShort)
		}
	}

	if p.AccountType != nil {
		if enums.AccountType(*p.AccountType) == enums.AccountTypeManagement {
			errs.add("account_type", msgManagementReserved)
		} else if _, err := enums.ParseAccountType(*p.AccountType); err != nil {
			errs.add("account_type", msgInvalidAccountType)
		}
	}

	if p.StaffRole != nil {
		if _, err := enums.ParseStaffRole(*p.StaffRole); err != nil {
			errs.add("role", msgInvalidStaffRole)
		}
	}

	if p.DateOfBirth != nil && *p.DateOfBirth != "" && !isOver18(*p.DateOfBirth, now) {
		errs.add("date_of_birth", msgUnder18)
	}

	return errs
}

// isOver18 checks a YYYY-MM-DD date against an 18-year cutoff measured in
// whole calendar days (18 * 365.25, fraction discarded), so the boundary
// never shifts with the time of day. A malformed date fails the check
// rather than erroring.
func isOver18(dateStr string, now time.Time) bool {
	dob, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -(18 * 36525 / 100))
	return !dob.After(cutoff)
}
