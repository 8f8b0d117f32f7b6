package controllers

import (
	"net/http"

	"github.com/peopledesk/peopledesk-backend/api/responses"
	"github.com/peopledesk/peopledesk-backend/api/validators"
	"github.com/peopledesk/peopledesk-backend/internal/auth"
	"github.com/peopledesk/peopledesk-backend/internal/directory"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
)

// RegisterRequest is the self-service sign-up payload.
type RegisterRequest struct {
	Name                  string  `json:"name" validate:"required"`
	Email                 string  `json:"email" validate:"required"`
	Password              string  `json:"password" validate:"required"`
	AccountType           string  `json:"account_type"`
	NeedsSensitiveStorage bool    `json:"needs_sensitive_storage"`
	DateOfBirth           *string `json:"date_of_birth"`
	AgreedToTerms         bool    `json:"agreed_to_terms"`
	EmailNotifications    bool    `json:"email_notifications"`
}

// AuthRegister creates a user account and issues its first session token.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), directory.RegisterInput{
			Name:                  req.Name,
			Email:                 req.Email,
			Password:              req.Password,
			AccountType:           req.AccountType,
			NeedsSensitiveStorage: req.NeedsSensitiveStorage,
			DateOfBirth:           req.DateOfBirth,
			AgreedToTerms:         req.AgreedToTerms,
			EmailNotifications:    req.EmailNotifications,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// AuthLogin verifies credentials and returns a session token plus role.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}
