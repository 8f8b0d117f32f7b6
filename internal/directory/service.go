package directory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/peopledesk-backend/internal/blobs"
	"github.com/peopledesk/peopledesk-backend/pkg/auth"
	"github.com/peopledesk/peopledesk-backend/pkg/config"
	"github.com/peopledesk/peopledesk-backend/pkg/db"
	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
	pkgerrors "github.com/peopledesk/peopledesk-backend/pkg/errors"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
	"github.com/peopledesk/peopledesk-backend/pkg/pagination"
	"github.com/peopledesk/peopledesk-backend/pkg/security"
)

// ListResult is one page of serialized users plus pagination totals.
type ListResult struct {
	Users      []UserView `json:"users"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalUsers int64      `json:"total_users"`
	TotalPages int        `json:"total_pages"`
}

type blobPurger interface {
	PurgeUserBlobs(ctx context.Context, user *models.User) blobs.PurgeResult
}

// Service is the directory façade used by the boundary layer. Every write
// runs the same linear pipeline: authorization, field validation,
// uniqueness, persistence, re-read, serialization.
type Service interface {
	RegisterUser(ctx context.Context, input RegisterInput) (*models.User, error)
	List(ctx context.Context, actor auth.Identity, input ListInput) (*ListResult, error)
	GetByID(ctx context.Context, actor auth.Identity, id uuid.UUID) (*UserView, error)
	GetSelf(ctx context.Context, actor auth.Identity) (*UserView, error)
	CreateStaff(ctx context.Context, actor auth.Identity, input CreateStaffInput) (*UserView, error)
	CreateManagedUser(ctx context.Context, actor auth.Identity, input CreateManagedUserInput) (*UserView, error)
	UpdateSelf(ctx context.Context, actor auth.Identity, input SelfUpdate) (*UserView, error)
	UpdateManagedUser(ctx context.Context, actor auth.Identity, targetID uuid.UUID, input ManagedUserUpdate) (*UserView, error)
	UpdateStaff(ctx context.Context, actor auth.Identity, targetID uuid.UUID, input StaffUpdate) (*UserView, error)
	DeleteUser(ctx context.Context, actor auth.Identity, targetID uuid.UUID) error
	View(ctx context.Context, user *models.User, includeEmail bool) UserView
}

// Params collects the service dependencies.
type Params struct {
	Repo     *Repository
	Purger   blobPurger
	Logger   *logger.Logger
	Password config.PasswordConfig
	Avatar   config.AvatarConfig
	Now      func() time.Time
}

type service struct {
	repo     *Repository
	purger   blobPurger
	logg     *logger.Logger
	password config.PasswordConfig
	avatar   config.AvatarConfig
	now      func() time.Time
}

// NewService constructs the directory service.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, errors.New("directory: repository is required")
	}
	if p.Purger == nil {
		return nil, errors.New("directory: blob purger is required")
	}
	if p.Logger == nil {
		return nil, errors.New("directory: logger is required")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		repo:     p.Repo,
		purger:   p.Purger,
		logg:     p.Logger,
		password: p.Password,
		avatar:   p.Avatar,
		now:      p.Now,
	}, nil
}

func (s *service) View(_ context.Context, user *models.User, includeEmail bool) UserView {
	return NewUserView(user, includeEmail, s.avatar.PlaceholderBaseURL, s.now())
}

func validationError(errs FieldErrors) error {
	return pkgerrors.New(pkgerrors.CodeValidation, errs.Joined()).WithDetails(errs)
}

// checkEmailFree folds a duplicate email into the accumulated field errors
// when other violations exist; a duplicate as the sole failure surfaces as
// Conflict instead. Backend failures surface separately.
func (s *service) checkEmailFree(ctx context.Context, email string, excludeID uuid.UUID, errs *FieldErrors) error {
	taken, err := s.repo.EmailInUse(ctx, email, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email uniqueness failed")
	}
	if taken {
		if errs.Empty() {
			return pkgerrors.New(pkgerrors.CodeConflict, msgEmailTaken)
		}
		errs.add("email", msgEmailTaken)
	}
	return nil
}

// RegisterUser is the public self-service creation path. The caller mints
// the session token from the returned record.
func (s *service) RegisterUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	errs := ValidateFields(input.proposed(), ModeCreate, s.now())
	if err := s.checkEmailFree(ctx, input.Email, uuid.Nil, &errs); err != nil {
		return nil, err
	}
	if !errs.Empty() {
		return nil, validationError(errs)
	}

	user, err := s.insertUser(ctx, input.Name, input.Email, input.Password, enums.RoleUser, func(u *models.User) {
		u.AccountType = accountTypeOrDefault(input.AccountType)
		u.NeedsSensitiveStorage = input.NeedsSensitiveStorage
		u.DateOfBirth = input.DateOfBirth
		u.AgreedToTerms = input.AgreedToTerms
		u.EmailNotifications = input.EmailNotifications
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user registered")
	return user, nil
}

func (s *service) List(ctx context.Context, actor auth.Identity, input ListInput) (*ListResult, error) {
	if !auth.IsStaff(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dashboard access required")
	}

	users, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing users failed")
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, s.View(ctx, &users[i], true))
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	return &ListResult{
		Users:      views,
		Page:       pagination.NormalizePage(input.Pagination.Page),
		Limit:      limit,
		TotalUsers: total,
		TotalPages: pagination.TotalPages(total, limit),
	}, nil
}

func (s *service) GetByID(ctx context.Context, actor auth.Identity, id uuid.UUID) (*UserView, error) {
	if !auth.IsStaff(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dashboard access required")
	}
	return s.loadView(ctx, id)
}

func (s *service) GetSelf(ctx context.Context, actor auth.Identity) (*UserView, error) {
	return s.loadView(ctx, actor.ID)
}

func (s *service) CreateStaff(ctx context.Context, actor auth.Identity, input CreateStaffInput) (*UserView, error) {
	if !auth.IsAdmin(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	if input.Role == "" {
		input.Role = string(enums.RoleEmployee)
	}

	errs := ValidateFields(input.proposed(), ModeCreate, s.now())
	if err := s.checkEmailFree(ctx, input.Email, uuid.Nil, &errs); err != nil {
		return nil, err
	}
	if !errs.Empty() {
		return nil, validationError(errs)
	}

	role, _ := enums.ParseStaffRole(input.Role)
	user, err := s.insertUser(ctx, input.Name, input.Email, input.Password, role, func(u *models.User) {
		u.DateOfBirth = input.DateOfBirth
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "staff record created")
	view := s.View(ctx, user, true)
	return &view, nil
}

func (s *service) CreateManagedUser(ctx context.Context, actor auth.Identity, input CreateManagedUserInput) (*UserView, error) {
	if !auth.IsAdmin(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}

	errs := ValidateFields(input.proposed(), ModeCreate, s.now())
	if err := s.checkEmailFree(ctx, input.Email, uuid.Nil, &errs); err != nil {
		return nil, err
	}
	if !errs.Empty() {
		return nil, validationError(errs)
	}

	user, err := s.insertUser(ctx, input.Name, input.Email, input.Password, enums.RoleUser, func(u *models.User) {
		u.AccountType = accountTypeOrDefault(input.AccountType)
		u.NeedsSensitiveStorage = input.NeedsSensitiveStorage
		u.DateOfBirth = input.DateOfBirth
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "managed user created")
	view := s.View(ctx, user, true)
	return &view, nil
}

func (s *service) UpdateSelf(ctx context.Context, actor auth.Identity, input SelfUpdate) (*UserView, error) {
	if !auth.IsSelfService(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only users can update their profile")
	}

	errs := ValidateFields(input.proposed(), ModeUpdate, s.now())
	if !errs.Empty() {
		return nil, validationError(errs)
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.EmailNotifications != nil {
		updates["email_notifications"] = *input.EmailNotifications
	}
	if input.Password != nil && *input.Password != "" {
		digest, err := security.HashPassword(*input.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password failed")
		}
		updates["password_hash"] = digest
	}

	if err := s.repo.UpdateFields(ctx, actor.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating profile failed")
	}
	return s.loadView(ctx, actor.ID)
}

func (s *service) UpdateManagedUser(ctx context.Context, actor auth.Identity, targetID uuid.UUID, input ManagedUserUpdate) (*UserView, error) {
	if !auth.IsAdmin(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}

	target, err := s.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != enums.RoleUser {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "this operation only edits 'user' roles")
	}

	errs := ValidateFields(input.proposed(), ModeUpdate, s.now())
	if input.Email != nil {
		if err := s.checkEmailFree(ctx, *input.Email, targetID, &errs); err != nil {
			return nil, err
		}
	}
	if !errs.Empty() {
		return nil, validationError(errs)
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.AccountType != nil {
		updates["account_type"] = *input.AccountType
	}
	if input.NeedsSensitiveStorage != nil {
		updates["needs_sensitive_storage"] = *input.NeedsSensitiveStorage
	}
	if input.DateOfBirth != nil {
		updates["date_of_birth"] = *input.DateOfBirth
	}
	if input.Password != nil && *input.Password != "" {
		digest, err := security.HashPassword(*input.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password failed")
		}
		updates["password_hash"] = digest
	}

	if err := s.repo.UpdateFields(ctx, targetID, updates); err != nil {
		return nil, mapWriteError(err, "updating user failed")
	}
	return s.loadView(ctx, targetID)
}

func (s *service) UpdateStaff(ctx context.Context, actor auth.Identity, targetID uuid.UUID, input StaffUpdate) (*UserView, error) {
	if !auth.IsAdmin(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}

	target, err := s.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !target.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "this operation only edits staff roles")
	}

	errs := ValidateFields(input.proposed(), ModeUpdate, s.now())
	if input.Email != nil {
		if err := s.checkEmailFree(ctx, *input.Email, targetID, &errs); err != nil {
			return nil, err
		}
	}
	if !errs.Empty() {
		return nil, validationError(errs)
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Role != nil {
		updates["role"] = *input.Role
	}
	if input.DateOfBirth != nil {
		updates["date_of_birth"] = *input.DateOfBirth
	}
	if input.Password != nil && *input.Password != "" {
		digest, err := security.HashPassword(*input.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password failed")
		}
		updates["password_hash"] = digest
	}

	if err := s.repo.UpdateFields(ctx, targetID, updates); err != nil {
		return nil, mapWriteError(err, "updating staff record failed")
	}
	return s.loadView(ctx, targetID)
}

// DeleteUser removes a record after a best-effort sweep of its blobs.
// Partial purge failures are logged and never block the deletion.
func (s *service) DeleteUser(ctx context.Context, actor auth.Identity, targetID uuid.UUID) error {
	if !auth.IsAdmin(actor) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}

	target, err := s.loadUser(ctx, targetID)
	if err != nil {
		return err
	}

	result := s.purger.PurgeUserBlobs(ctx, target)
	if failed := result.Failed(); len(failed) > 0 {
		s.logg.Warn(
			s.logg.WithFields(ctx, map[string]any{"user_id": targetID.String(), "failed_blobs": len(failed)}),
			"user deletion proceeding with unpurged blobs",
		)
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		if IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting user failed")
	}

	s.logg.Info(s.logg.WithUserID(ctx, targetID.String()), "user and associated files deleted")
	return nil
}

func (s *service) insertUser(ctx context.Context, name, email, password string, role enums.Role, fill func(*models.User)) (*models.User, error) {
	digest, err := security.HashPassword(password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password failed")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: digest,
		Role:         role,
	}
	if fill != nil {
		fill(user)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapWriteError(err, "creating user failed")
	}
	return user, nil
}

// mapWriteError turns a trip of the email unique index into the same
// Conflict the pre-write check produces; the index backstops the
// check-then-write race on inserts and email updates alike.
func mapWriteError(err error, action string) error {
	if db.IsUniqueViolation(err, "idx_users_email") {
		return pkgerrors.New(pkgerrors.CodeConflict, msgEmailTaken)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user failed")
	}
	return user, nil
}

func (s *service) loadView(ctx context.Context, id uuid.UUID) (*UserView, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.View(ctx, user, true)
	return &view, nil
}

func accountTypeOrDefault(value string) enums.AccountType {
	if value == "" {
		return enums.AccountTypePersonal
	}
	return enums.AccountType(value)
}
