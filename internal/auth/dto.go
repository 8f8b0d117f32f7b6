package auth

import "github.com/peopledesk/peopledesk-backend/pkg/enums"

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is the token envelope returned by login and register.
type SessionResponse struct {
	Token string     `json:"token"`
	Role  enums.Role `json:"role"`
}
