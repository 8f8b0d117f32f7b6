package enums

import "fmt"

// AccountType classifies a self-service user account.
type AccountType string

const (
	AccountTypePersonal     AccountType = "personal"
	AccountTypeProfessional AccountType = "professional"
	AccountTypeAcademic     AccountType = "academic"

	// AccountTypeManagement is a display projection for staff roles. It is
	// never stored and never accepted on a user-role record.
	AccountTypeManagement AccountType = "management"
)

var validAccountTypes = []AccountType{
	AccountTypePersonal,
	AccountTypeProfessional,
	AccountTypeAcademic,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is a storable user account type.
// The management projection deliberately fails this check.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountType converts raw input into a storable AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
