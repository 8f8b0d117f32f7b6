package directory

// RegisterInput is the self-service registration payload.
type RegisterInput struct {
	Name                  string
	Email                 string
	Password              string
	AccountType           string
	NeedsSensitiveStorage bool
	DateOfBirth           *string
	AgreedToTerms         bool
	EmailNotifications    bool
}

func (in RegisterInput) proposed() Proposed {
	p := Proposed{
		Name:        &in.Name,
		Email:       &in.Email,
		Password:    &in.Password,
		DateOfBirth: in.DateOfBirth,
	}
	if in.AccountType != "" {
		p.AccountType = &in.AccountType
	}
	return p
}

// CreateManagedUserInput is the admin-driven creation of a user-role record.
type CreateManagedUserInput struct {
	Name                  string
	Email                 string
	Password              string
	AccountType           string
	NeedsSensitiveStorage bool
	DateOfBirth           *string
}

func (in CreateManagedUserInput) proposed() Proposed {
	p := Proposed{
		Name:        &in.Name,
		Email:       &in.Email,
		Password:    &in.Password,
		DateOfBirth: in.DateOfBirth,
	}
	if in.AccountType != "" {
		p.AccountType = &in.AccountType
	}
	return p
}

// CreateStaffInput creates an employee or admin record. It carries no
// user-only fields, so the shared validator never sees them.
type CreateStaffInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	DateOfBirth *string
}

func (in CreateStaffInput) proposed() Proposed {
	return Proposed{
		Name:        &in.Name,
		Email:       &in.Email,
		Password:    &in.Password,
		StaffRole:   &in.Role,
		DateOfBirth: in.DateOfBirth,
	}
}

// SelfUpdate is the mutation a user may apply to their own record.
// Nil fields are left untouched.
type SelfUpdate struct {
	Name               *string
	Password           *string
	EmailNotifications *bool
}

func (in SelfUpdate) proposed() Proposed {
	return Proposed{
		Name:     in.Name,
		Password: in.Password,
	}
}

// ManagedUserUpdate is the staff-driven mutation of a user-role record.
type ManagedUserUpdate struct {
	Name                  *string
	Email                 *string
	Password              *string
	AccountType           *string
	NeedsSensitiveStorage *bool
	DateOfBirth           *string
}

func (in ManagedUserUpdate) proposed() Proposed {
	return Proposed{
		Name:        in.Name,
		Email:       in.Email,
		Password:    in.Password,
		AccountType: in.AccountType,
		DateOfBirth: in.DateOfBirth,
	}
}

// StaffUpdate is the admin-driven mutation of an employee or admin record.
// account_type and needs_sensitive_storage have no representation here, so
// a staff record's projected "management" value can never reach validation.
type StaffUpdate struct {
	Name        *string
	Email       *string
	Password    *string
	Role        *string
	DateOfBirth *string
}

func (in StaffUpdate) proposed() Proposed {
	return Proposed{
		Name:        in.Name,
		Email:       in.Email,
		Password:    in.Password,
		StaffRole:   in.Role,
		DateOfBirth: in.DateOfBirth,
	}
}
