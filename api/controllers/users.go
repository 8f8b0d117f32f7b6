package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/peopledesk/peopledesk-backend/api/middleware"
	"github.com/peopledesk/peopledesk-backend/api/responses"
	"github.com/peopledesk/peopledesk-backend/api/validators"
	"github.com/peopledesk/peopledesk-backend/internal/directory"
	pkgAuth "github.com/peopledesk/peopledesk-backend/pkg/auth"
	pkgerrors "github.com/peopledesk/peopledesk-backend/pkg/errors"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
)

func actorFrom(r *http.Request) (pkgAuth.Identity, error) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return identity, nil
}

func pathID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid User ID")
	}
	return id, nil
}

// Me returns the authenticated actor's own record.
func Me(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetSelf(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SelfUpdateRequest mutates the caller's own profile. Absent fields are
// left untouched.
type SelfUpdateRequest struct {
	Name               *string `json:"name"`
	Password           *string `json:"password"`
	EmailNotifications *bool   `json:"email_notifications"`
}

// UpdateMyProfile applies a partial self-service profile update.
func UpdateMyProfile(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req SelfUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateSelf(r.Context(), actor, directory.SelfUpdate{
			Name:               req.Name,
			Password:           req.Password,
			EmailNotifications: req.EmailNotifications,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListUsers serves the staff dashboard's filtered, paginated user list.
func ListUsers(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := validators.ParseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetUser returns one record for the staff dashboard.
func GetUser(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetByID(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CreateStaffRequest creates an employee or admin record. Role defaults to
// employee when omitted.
type CreateStaffRequest struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required"`
	Password    string  `json:"password" validate:"required"`
	Role        string  `json:"role"`
	DateOfBirth *string `json:"date_of_birth"`
}

// CreateStaff handles admin-driven staff record creation.
func CreateStaff(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req CreateStaffRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CreateStaff(r.Context(), actor, directory.CreateStaffInput{
			Name:        req.Name,
			Email:       req.Email,
			Password:    req.Password,
			Role:        req.Role,
			DateOfBirth: req.DateOfBirth,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// StaffUpdateRequest mutates an employee or admin record. It deliberately
// has no account_type or needs_sensitive_storage fields; those belong to
// user-role records only.
type StaffUpdateRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Role        *string `json:"role"`
	DateOfBirth *string `json:"date_of_birth"`
}

// UpdateStaff handles admin-driven staff record edits.
func UpdateStaff(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req StaffUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateStaff(r.Context(), actor, id, directory.StaffUpdate{
			Name:        req.Name,
			Email:       req.Email,
			Password:    req.Password,
			Role:        req.Role,
			DateOfBirth: req.DateOfBirth,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DeleteUser removes a record and sweeps its blobs.
func DeleteUser(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteUser(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "User and all associated files deleted"})
	}
}

// ManagedUserCreateRequest is the admin-driven creation of a user-role
// record.
type ManagedUserCreateRequest struct {
	Name                  string  `json:"name" validate:"required"`
	Email                 string  `json:"email" validate:"required"`
	Password              string  `json:"password" validate:"required"`
	AccountType           string  `json:"account_type"`
	NeedsSensitiveStorage bool    `json:"needs_sensitive_storage"`
	DateOfBirth           *string `json:"date_of_birth"`
}

// AdminCreateUser handles admin-driven user-role record creation.
func AdminCreateUser(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req ManagedUserCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CreateManagedUser(r.Context(), actor, directory.CreateManagedUserInput{
			Name:                  req.Name,
			Email:                 req.Email,
			Password:              req.Password,
			AccountType:           req.AccountType,
			NeedsSensitiveStorage: req.NeedsSensitiveStorage,
			DateOfBirth:           req.DateOfBirth,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// ManagedUserUpdateRequest mutates a user-role record.
type ManagedUserUpdateRequest struct {
	Name                  *string `json:"name"`
	Email                 *string `json:"email"`
	Password              *string `json:"password"`
	AccountType           *string `json:"account_type"`
	NeedsSensitiveStorage *bool   `json:"needs_sensitive_storage"`
	DateOfBirth           *string `json:"date_of_birth"`
}

// AdminUpdateUser handles admin-driven edits of user-role records.
func AdminUpdateUser(svc directory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := pathID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req ManagedUserUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdateManagedUser(r.Context(), actor, id, directory.ManagedUserUpdate{
			Name:                  req.Name,
			Email:                 req.Email,
			Password:              req.Password,
			AccountType:           req.AccountType,
			NeedsSensitiveStorage: req.NeedsSensitiveStorage,
			DateOfBirth:           req.DateOfBirth,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
