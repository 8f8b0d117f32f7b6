package directory

import (
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func eighteenYearCutoff(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -(18 * 36525 / 100))
}

func TestValidateFieldsAccumulatesAllViolations(t *testing.T) {
	errs := ValidateFields(Proposed{
		Name:     strPtr("x"),
		Email:    strPtr("not-an-email"),
		Password: strPtr("short"),
	}, ModeCreate, testNow)

	if len(errs) != 3 {
		t.Fatalf("expected 3 accumulated errors, got %d: %v", len(errs), errs.Messages())
	}
	joined := errs.Joined()
	for _, want := range []string{msgNameTooShort, msgInvalidEmail, msgPasswordTooShort} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing message %q in %q", want, joined)
		}
	}
}

func TestValidateFieldsCreateRequiresPresence(t *testing.T) {
	errs := ValidateFields(Proposed{}, ModeCreate, testNow)
	if len(errs) != 3 {
		t.Fatalf("expected name/email/password errors, got %v", errs.Messages())
	}
}

func TestValidateFieldsUpdateSkipsAbsentFields(t *testing.T) {
	if errs := ValidateFields(Proposed{}, ModeUpdate, testNow); !errs.Empty() {
		t.Fatalf("expected no errors for empty update, got %v", errs.Messages())
	}

	errs := ValidateFields(Proposed{Name: strPtr("x")}, ModeUpdate, testNow)
	if len(errs) != 1 || errs[0].Message != msgNameTooShort {
		t.Fatalf("expected short-name error, got %v", errs.Messages())
	}
}

func TestValidateFieldsEmailCaseInsensitive(t *testing.T) {
	errs := ValidateFields(Proposed{
		Name:     strPtr("Ana Lopez"),
		Email:    strPtr("Ana.Lopez@Example.COM"),
		Password: strPtr("secret123"),
	}, ModeCreate, testNow)
	if !errs.Empty() {
		t.Fatalf("expected mixed-case email to validate, got %v", errs.Messages())
	}
}

func TestValidateFieldsAccountType(t *testing.T) {
	cases := []struct {
		value   string
		message string
	}{
		{"personal", ""},
		{"professional", ""},
		{"academic", ""},
		{"management", msgManagementReserved},
		{"enterprise", msgInvalidAccountType},
	}

	for _, tc := range cases {
		errs := ValidateFields(Proposed{AccountType: strPtr(tc.value)}, ModeUpdate, testNow)
		if tc.message == "" {
			if !errs.Empty() {
				t.Errorf("account type %q: unexpected errors %v", tc.value, errs.Messages())
			}
			continue
		}
		if len(errs) != 1 || errs[0].Message != tc.message {
			t.Errorf("account type %q: expected %q, got %v", tc.value, tc.message, errs.Messages())
		}
	}
}

func TestValidateFieldsStaffRole(t *testing.T) {
	for _, valid := range []string{"admin", "employee"} {
		if errs := ValidateFields(Proposed{StaffRole: strPtr(valid)}, ModeUpdate, testNow); !errs.Empty() {
			t.Errorf("role %q: unexpected errors %v", valid, errs.Messages())
		}
	}
	errs := ValidateFields(Proposed{StaffRole: strPtr("user")}, ModeUpdate, testNow)
	if len(errs) != 1 || errs[0].Message != msgInvalidStaffRole {
		t.Fatalf("expected staff-role error, got %v", errs.Messages())
	}
}

func TestValidateFieldsAgeBoundary(t *testing.T) {
	cutoff := eighteenYearCutoff(testNow)

	pass := cutoff.Format("2006-01-02")
	if errs := ValidateFields(Proposed{DateOfBirth: strPtr(pass)}, ModeUpdate, testNow); !errs.Empty() {
		t.Fatalf("dob %s should pass the 18-year check, got %v", pass, errs.Messages())
	}

	fail := cutoff.AddDate(0, 0, 1).Format("2006-01-02")
	errs := ValidateFields(Proposed{DateOfBirth: strPtr(fail)}, ModeUpdate, testNow)
	if len(errs) != 1 || errs[0].Message != msgUnder18 {
		t.Fatalf("dob %s should fail the 18-year check, got %v", fail, errs.Messages())
	}
}

func TestValidateFieldsAgeBoundaryIgnoresTimeOfDay(t *testing.T) {
	dob := strPtr(eighteenYearCutoff(testNow).Format("2006-01-02"))

	// The same birth date clears the check all day long, morning or night.
	for _, hour := range []int{0, 11, 23} {
		now := time.Date(testNow.Year(), testNow.Month(), testNow.Day(), hour, 59, 0, 0, time.UTC)
		if errs := ValidateFields(Proposed{DateOfBirth: dob}, ModeUpdate, now); !errs.Empty() {
			t.Fatalf("dob %s should pass at hour %d, got %v", *dob, hour, errs.Messages())
		}
	}
}

func TestValidateFieldsMalformedDateFailsCheck(t *testing.T) {
	errs := ValidateFields(Proposed{DateOfBirth: strPtr("03/10/1990")}, ModeUpdate, testNow)
	if len(errs) != 1 || errs[0].Message != msgUnder18 {
		t.Fatalf("malformed dob should fail the age check, got %v", errs.Messages())
	}

	// An absent date implies no age constraint.
	if errs := ValidateFields(Proposed{DateOfBirth: strPtr("")}, ModeUpdate, testNow); !errs.Empty() {
		t.Fatalf("empty dob should be valid, got %v", errs.Messages())
	}
}

func TestValidateFieldsIdempotent(t *testing.T) {
	proposed := Proposed{
		Name:        strPtr("Ana Lopez"),
		Email:       strPtr("ana@example.com"),
		Password:    strPtr("secret123"),
		AccountType: strPtr("professional"),
		DateOfBirth: strPtr("1990-06-15"),
	}

	for i := 0; i < 2; i++ {
		if errs := ValidateFields(proposed, ModeCreate, testNow); !errs.Empty() {
			t.Fatalf("pass %d: expected valid payload, got %v", i, errs.Messages())
		}
	}
}
