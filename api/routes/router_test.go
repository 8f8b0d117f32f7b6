package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	internalauth "github.com/peopledesk/peopledesk-backend/internal/auth"
	"github.com/peopledesk/peopledesk-backend/internal/blobs"
	"github.com/peopledesk/peopledesk-backend/internal/directory"
	pkgAuth "github.com/peopledesk/peopledesk-backend/pkg/auth"
	"github.com/peopledesk/peopledesk-backend/pkg/config"
	"github.com/peopledesk/peopledesk-backend/pkg/db/models"
	"github.com/peopledesk/peopledesk-backend/pkg/enums"
	pkgerrors "github.com/peopledesk/peopledesk-backend/pkg/errors"
)

type routeAuthService struct {
	identity pkgAuth.Identity
	resolve  error
}

func (s *routeAuthService) Register(ctx context.Context, input directory.RegisterInput) (*internalauth.SessionResponse, error) {
	return &internalauth.SessionResponse{Token: "token", Role: enums.RoleUser}, nil
}

func (s *routeAuthService) Login(ctx context.Context, req internalauth.LoginRequest) (*internalauth.SessionResponse, error) {
	return &internalauth.SessionResponse{Token: "token", Role: s.identity.Role}, nil
}

func (s *routeAuthService) Resolve(ctx context.Context, authorizationHeader string) (pkgAuth.Identity, error) {
	if s.resolve != nil {
		return pkgAuth.Identity{}, s.resolve
	}
	return s.identity, nil
}

type routeDirectoryService struct{}

func (routeDirectoryService) RegisterUser(ctx context.Context, input directory.RegisterInput) (*models.User, error) {
	return nil, nil
}

func (routeDirectoryService) List(ctx context.Context, actor pkgAuth.Identity, input directory.ListInput) (*directory.ListResult, error) {
	return &directory.ListResult{Users: []directory.UserView{}, Page: 1, Limit: 10}, nil
}

func (routeDirectoryService) GetByID(ctx context.Context, actor pkgAuth.Identity, id uuid.UUID) (*directory.UserView, error) {
	return &directory.UserView{ID: id}, nil
}

func (routeDirectoryService) GetSelf(ctx context.Context, actor pkgAuth.Identity) (*directory.UserView, error) {
	return &directory.UserView{ID: actor.ID}, nil
}

func (routeDirectoryService) CreateStaff(ctx context.Context, actor pkgAuth.Identity, input directory.CreateStaffInput) (*directory.UserView, error) {
	return &directory.UserView{}, nil
}

func (routeDirectoryService) CreateManagedUser(ctx context.Context, actor pkgAuth.Identity, input directory.CreateManagedUserInput) (*directory.UserView, error) {
	return &directory.UserView{}, nil
}

func (routeDirectoryService) UpdateSelf(ctx context.Context, actor pkgAuth.Identity, input directory.SelfUpdate) (*directory.UserView, error) {
	return &directory.UserView{}, nil
}

func (routeDirectoryService) UpdateManagedUser(ctx context.Context, actor pkgAuth.Identity, targetID uuid.UUID, input directory.ManagedUserUpdate) (*directory.UserView, error) {
	return &directory.UserView{}, nil
}

func (routeDirectoryService) UpdateStaff(ctx context.Context, actor pkgAuth.Identity, targetID uuid.UUID, input directory.StaffUpdate) (*directory.UserView, error) {
	return &directory.UserView{}, nil
}

func (routeDirectoryService) DeleteUser(ctx context.Context, actor pkgAuth.Identity, targetID uuid.UUID) error {
	return nil
}

func (routeDirectoryService) View(ctx context.Context, user *models.User, includeEmail bool) directory.UserView {
	return directory.UserView{}
}

type routeBlobService struct{}

func (routeBlobService) UploadToGallery(ctx context.Context, actor pkgAuth.Identity, files []blobs.UploadFile) ([]models.GalleryEntry, error) {
	return []models.GalleryEntry{}, nil
}

func (routeBlobService) ListUserFiles(ctx context.Context, actor pkgAuth.Identity) ([]models.GalleryEntry, error) {
	return []models.GalleryEntry{}, nil
}

func (routeBlobService) ReplaceSelfProfilePicture(ctx context.Context, actor pkgAuth.Identity, file blobs.UploadFile) error {
	return nil
}

func (routeBlobService) ReplaceProfilePictureFor(ctx context.Context, target *models.User, file blobs.UploadFile) error {
	return nil
}

func (routeBlobService) AddFileForUser(ctx context.Context, targetID uuid.UUID, file blobs.UploadFile) (*models.GalleryEntry, error) {
	return &models.GalleryEntry{}, nil
}

func (routeBlobService) RemoveFile(ctx context.Context, blobID uuid.UUID) error {
	return nil
}

func (routeBlobService) FetchFile(ctx context.Context, actor pkgAuth.Identity, blobID uuid.UUID) (*blobs.FileContent, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "File not found")
}

func (routeBlobService) FetchProfilePicture(ctx context.Context, userID uuid.UUID) (*blobs.FileContent, string, error) {
	return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "no picture")
}

func (routeBlobService) PurgeUserBlobs(ctx context.Context, user *models.User) blobs.PurgeResult {
	return blobs.PurgeResult{}
}

func testRouter(authSvc internalauth.Service) http.Handler {
	cfg := &config.Config{
		App:    config.AppConfig{Env: "dev", Port: "8080"},
		Avatar: config.AvatarConfig{PlaceholderBaseURL: "https://placehold.co/150x150/E2D9FF/6842FF"},
		Upload: config.UploadConfig{MaxUploadMB: 1},
	}
	return NewRouter(Deps{
		Config:    cfg,
		Auth:      authSvc,
		Directory: routeDirectoryService{},
		Blobs:     routeBlobService{},
	})
}

func TestRouterPublicRoutes(t *testing.T) {
	router := testRouter(&routeAuthService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("health/live: expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/profile_pic/"+uuid.NewString(), nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("profile_pic: expected placeholder redirect got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@example.com","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", resp.Code)
	}
}

func TestRouterAuthGate(t *testing.T) {
	router := testRouter(&routeAuthService{resolve: pkgerrors.New(pkgerrors.CodeUnauthorized, "Token is missing!")})

	for _, route := range []string{"/me", "/my-files", "/users"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, route, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", route, resp.Code)
		}
	}
}

func TestRouterRoleGates(t *testing.T) {
	asUser := testRouter(&routeAuthService{identity: pkgAuth.Identity{ID: uuid.New(), Role: enums.RoleUser}})
	asEmployee := testRouter(&routeAuthService{identity: pkgAuth.Identity{ID: uuid.New(), Role: enums.RoleEmployee}})
	asAdmin := testRouter(&routeAuthService{identity: pkgAuth.Identity{ID: uuid.New(), Role: enums.RoleAdmin}})

	// Dashboard list is staff-only.
	resp := httptest.NewRecorder()
	asUser.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users", nil))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("user on /users: expected 403 got %d", resp.Code)
	}
	resp = httptest.NewRecorder()
	asEmployee.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/users", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("employee on /users: expected 200 got %d", resp.Code)
	}

	// Record deletion is admin-only.
	target := uuid.NewString()
	resp = httptest.NewRecorder()
	asEmployee.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/users/"+target, nil))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("employee delete: expected 403 got %d", resp.Code)
	}
	resp = httptest.NewRecorder()
	asAdmin.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/users/"+target, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("admin delete: expected 200 got %d", resp.Code)
	}

	// Self-service surface stays open to plain users.
	resp = httptest.NewRecorder()
	asUser.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/me", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("user on /me: expected 200 got %d", resp.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := testRouter(&routeAuthService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
