package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
)

// SessionTokenPayload captures the data available when minting a session JWT.
type SessionTokenPayload struct {
	UserID uuid.UUID
	Role   enums.Role
}

// SessionTokenClaims represents the typed JWT issued to clients. The role is
// recorded at issuance time to select the expiry policy; authorization always
// re-reads the stored role when the token is resolved.
type SessionTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
