package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/peopledesk/peopledesk-backend/internal/directory"
	pkgAuth "github.com/peopledesk/peopledesk-backend/pkg/auth"
	"github.com/peopledesk/peopledesk-backend/pkg/config"
	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
	pkgerrors "github.com/peopledesk/peopledesk-backend/pkg/errors"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
	"github.com/peopledesk/peopledesk-backend/pkg/security"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgTokenMissing       = "Token is missing"
	msgTokenMalformed     = "Malformed 'Authorization' header"
	msgTokenExpired       = "Token has expired"
	msgTokenInvalid       = "Token is invalid"
)

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type registrar interface {
	RegisterUser(ctx context.Context, input directory.RegisterInput) (*models.User, error)
}

// Service orchestrates register, login, and bearer-token resolution.
type Service interface {
	Register(ctx context.Context, input directory.RegisterInput) (*SessionResponse, error)
	Login(ctx context.Context, req LoginRequest) (*SessionResponse, error)
	Resolve(ctx context.Context, authorizationHeader string) (pkgAuth.Identity, error)
}

// ServiceParams bundles the dependencies required to build the auth service.
type ServiceParams struct {
	Users     userRepository
	Directory registrar
	JWTConfig config.JWTConfig
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	users     userRepository
	directory registrar
	jwtCfg    config.JWTConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs the authentication flow service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("directory registrar is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		users:     params.Users,
		directory: params.Directory,
		jwtCfg:    params.JWTConfig,
		logg:      params.Logger,
		now:       params.Now,
	}, nil
}

// Register creates a self-service user and issues their first session token.
func (s *service) Register(ctx context.Context, input directory.RegisterInput) (*SessionResponse, error) {
	user, err := s.directory.RegisterUser(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.mintSession(user)
}

// Login verifies credentials and issues a session token carrying the
// role-dependent expiry.
func (s *service) Login(ctx context.Context, req LoginRequest) (*SessionResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidCredentials)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up user failed")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidCredentials)
	}

	resp, err := s.mintSession(user)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "login succeeded")
	return resp, nil
}

// Resolve turns a raw Authorization header into an Identity. The role comes
// from the stored record, not the claims, so a role change applies on the
// next request even while the token stays valid until expiry.
func (s *service) Resolve(ctx context.Context, authorizationHeader string) (pkgAuth.Identity, error) {
	if authorizationHeader == "" {
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgTokenMissing)
	}

	parts := strings.SplitN(authorizationHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgTokenMalformed)
	}

	claims, err := pkgAuth.ParseSessionToken(s.jwtCfg, parts[1])
	if err != nil {
		if errors.Is(err, pkgAuth.ErrTokenExpired) {
			return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgTokenExpired)
		}
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgTokenInvalid)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		// Never reveal whether the id ever existed.
		return pkgAuth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgTokenInvalid)
	}

	return pkgAuth.Identity{ID: user.ID, Role: user.Role}, nil
}

func (s *service) mintSession(user *models.User) (*SessionResponse, error) {
	token, err := pkgAuth.MintSessionToken(s.jwtCfg, s.now(), pkgAuth.SessionTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing session token failed")
	}
	return &SessionResponse{Token: token, Role: user.Role}, nil
}
