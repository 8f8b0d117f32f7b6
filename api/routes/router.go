package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peopledesk/peopledesk-backend/api/controllers"
	"github.com/peopledesk/peopledesk-backend/api/middleware"
	internalauth "github.com/peopledesk/peopledesk-backend/internal/auth"
	"github.com/peopledesk/peopledesk-backend/internal/blobs"
	"github.com/peopledesk/peopledesk-backend/internal/directory"
	"github.com/peopledesk/peopledesk-backend/pkg/config"
	"github.com/peopledesk/peopledesk-backend/pkg/logger"
	"github.com/peopledesk/peopledesk-backend/pkg/metrics"
	"github.com/peopledesk/peopledesk-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *redis.Client
	Metrics     *metrics.HTTPMetrics
	Auth        internalauth.Service
	Directory   directory.Service
	Blobs       blobs.Service
	ReadyChecks map[string]controllers.Pinger
}

// NewRouter assembles the HTTP surface. The route shape mirrors the
// classic frontend's expectations, so paths stay flat rather than
// version-prefixed.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.BaseURL),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	var limiterStore middleware.RateLimiterStore
	if deps.Redis != nil {
		limiterStore = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyChecks))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	// Public surface.
	r.With(middleware.AuthRateLimit(registerPolicy, limiterStore, logg)).
		Post("/register", controllers.AuthRegister(deps.Auth, logg))
	r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).
		Post("/login", controllers.AuthLogin(deps.Auth, logg))
	r.Get("/profile_pic/{userId}", controllers.ProfilePic(deps.Blobs, cfg.Avatar, logg))

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Auth, logg))

		r.Get("/me", controllers.Me(deps.Directory, logg))
		r.Put("/my-profile", controllers.UpdateMyProfile(deps.Directory, logg))
		r.Post("/my-profile/pic", controllers.UpdateMyProfilePic(deps.Blobs, deps.Directory, cfg.Upload, logg))
		r.Post("/upload", controllers.UploadFiles(deps.Blobs, cfg.Upload, logg))
		r.Get("/my-files", controllers.MyFiles(deps.Blobs, logg))
		r.Get("/file/{fileId}", controllers.FetchFile(deps.Blobs, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Get("/users", controllers.ListUsers(deps.Directory, logg))
			r.Get("/users/{userId}", controllers.GetUser(deps.Directory, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/users", controllers.CreateStaff(deps.Directory, logg))
			r.Put("/users/{userId}", controllers.UpdateStaff(deps.Directory, logg))
			r.Delete("/users/{userId}", controllers.DeleteUser(deps.Directory, logg))
			r.Post("/admin/create-user", controllers.AdminCreateUser(deps.Directory, logg))
			r.Post("/admin/update-user/{userId}", controllers.AdminUpdateUser(deps.Directory, logg))
			r.Post("/admin/user/{userId}/file", controllers.AdminAddFile(deps.Blobs, cfg.Upload, logg))
			r.Delete("/admin/user/file/{fileId}", controllers.AdminRemoveFile(deps.Blobs, logg))
		})
	})

	return r
}
