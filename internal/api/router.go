package api

import (
	"net/http"
	"strings"

	"github.com/Rrens/salespulse/internal/api/handler"
	customMiddleware "github.com/Rrens/salespulse/internal/api/middleware"
	"github.com/Rrens/salespulse/internal/audit"
	"github.com/Rrens/salespulse/internal/config"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/metrics"
	"github.com/Rrens/salespulse/internal/ratelimit"
	"github.com/Rrens/salespulse/internal/repository/postgres"
	"github.com/Rrens/salespulse/internal/repository/redis"
	"github.com/Rrens/salespulse/internal/security"
	"github.com/Rrens/salespulse/internal/service"
	"github.com/Rrens/salespulse/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// RateLimitPolicies builds the per-family limits from configuration
func RateLimitPolicies(cfg config.RateLimitConfig) *ratelimit.Policies {
	return ratelimit.NewPolicies(
		ratelimit.Policy{Name: "default", Prefix: "/api", Max: cfg.Default.Max, Window: cfg.Default.Window},
		ratelimit.Policy{Name: "auth", Prefix: "/api/auth", Max: cfg.Auth.Max, Window: cfg.Auth.Window},
		ratelimit.Policy{Name: "upload", Prefix: "/api/upload", Max: cfg.Upload.Max, Window: cfg.Upload.Window},
	)
}

// repositories are the stores the API services run on
type repositories struct {
	workspaces  domain.WorkspaceRepository
	members     domain.MemberRepository
	invitations domain.InvitationRepository
	profiles    domain.ProfileRepository
	reports     domain.EODRepository
	products    domain.ProductRepository
}

// apiHandlers are the handlers mounted under /api
type apiHandlers struct {
	eod          *handler.EODHandler
	product      *handler.ProductHandler
	team         *handler.TeamHandler
	profile      *handler.ProfileHandler
	organization *handler.OrganizationHandler
	readiness    map[string]handler.Pinger
}

func newAPIHandlers(cfg *config.Config, repos repositories, files storage.Store, auditor service.Auditor) apiHandlers {
	// Initialize services
	eodService := service.NewEODService(repos.reports, auditor)
	productService := service.NewProductService(repos.products, auditor)
	teamService := service.NewTeamService(repos.members, repos.invitations, auditor, cfg.Auth.InvitationTTL)
	profileService := service.NewProfileService(repos.profiles, repos.workspaces, files, auditor)
	organizationService := service.NewOrganizationService(repos.workspaces, repos.members, auditor)

	return apiHandlers{
		eod:          handler.NewEODHandler(eodService),
		product:      handler.NewProductHandler(productService),
		team:         handler.NewTeamHandler(teamService),
		profile:      handler.NewProfileHandler(profileService, cfg.Storage.MaxAvatarBytes),
		organization: handler.NewOrganizationHandler(organizationService),
		readiness:    map[string]handler.Pinger{},
	}
}

// mountAPI registers the /api routes and their role gates. Workspace routes
// are readable by every member unless gated; writers excludes viewers,
// managers is admin and up.
func mountAPI(r chi.Router, auth *customMiddleware.AuthMiddleware, h apiHandlers) {
	managers := auth.RequireAtLeast(domain.RoleAdmin)
	writers := auth.RequireRoles(domain.RoleOwner, domain.RoleAdmin, domain.RoleMember)
	owners := auth.RequireRoles(domain.RoleOwner)

	// Public routes
	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(h.readiness))
	r.Get("/roles", handler.Roles)

	// Identity-only routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Method(http.MethodGet, "/workspaces", handler.Func(h.organization.Workspaces))
		r.Method(http.MethodPost, "/invitations/accept", handler.WithValidation(h.team.AcceptInvitation))

		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalWorkspace)

			r.Method(http.MethodGet, "/profile", handler.Func(h.profile.Get))
			r.Method(http.MethodPut, "/profile", handler.WithValidation(h.profile.Update))
			r.Method(http.MethodPost, "/upload/avatar", handler.Func(h.profile.UploadAvatar))
			r.Method(http.MethodDelete, "/upload/avatar", handler.Func(h.profile.DeleteAvatar))
		})
	})

	// Workspace routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(auth.ResolveWorkspace)

		r.Route("/eod", func(r chi.Router) {
			r.Method(http.MethodGet, "/", handler.Func(h.eod.List))
			r.With(writers).Method(http.MethodPost, "/", handler.WithValidation(h.eod.Submit))
			r.Method(http.MethodGet, "/summary", handler.Func(h.eod.Summary))

			r.Route("/{id}", func(r chi.Router) {
				r.Method(http.MethodGet, "/", handler.Func(h.eod.Get))
				r.With(writers).Method(http.MethodPut, "/", handler.WithValidation(h.eod.Update))
				r.With(managers).Method(http.MethodDelete, "/", handler.Func(h.eod.Delete))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Method(http.MethodGet, "/", handler.Func(h.product.List))
			r.Method(http.MethodGet, "/categories", handler.Func(h.product.Categories))
			r.With(managers).Method(http.MethodPost, "/", handler.WithValidation(h.product.Create))

			r.Route("/{id}", func(r chi.Router) {
				r.Method(http.MethodGet, "/", handler.Func(h.product.Get))
				r.With(managers).Method(http.MethodPut, "/", handler.WithValidation(h.product.Update))
				r.With(managers).Method(http.MethodDelete, "/", handler.Func(h.product.Delete))
			})
		})

		r.Route("/team", func(r chi.Router) {
			r.With(writers).Method(http.MethodGet, "/", handler.Func(h.team.List))
			r.With(managers).Method(http.MethodPost, "/", handler.WithValidation(h.team.Invite))

			r.Route("/invitations", func(r chi.Router) {
				r.Use(managers)
				r.Method(http.MethodGet, "/", handler.Func(h.team.ListInvitations))
				r.Method(http.MethodDelete, "/{id}", handler.Func(h.team.RevokeInvitation))
			})

			r.Route("/{id}", func(r chi.Router) {
				r.With(managers).Method(http.MethodGet, "/", handler.Func(h.team.Get))
				r.With(managers).Method(http.MethodPut, "/", handler.WithValidation(h.team.Update))
				r.With(owners).Method(http.MethodDelete, "/", handler.Func(h.team.Remove))
			})
		})

		r.Route("/organization", func(r chi.Router) {
			r.Method(http.MethodGet, "/", handler.Func(h.organization.Get))
			r.With(managers).Method(http.MethodPut, "/", handler.WithValidation(h.organization.Update))
		})
	})
}

// NewRouter creates and configures the HTTP router. redisClient may be nil
// when the rate limiter keeps its counters in memory.
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, limitStore ratelimit.Store, auditLogger *audit.Logger, files *storage.LocalStore) http.Handler {
	r := chi.NewRouter()

	handler.ExposeInternalErrors = cfg.Server.IsDevelopment()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.RequestInfo)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(customMiddleware.Metrics)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	r.Use(customMiddleware.SecurityHeaders(cfg.Server.IsProduction()))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", customMiddleware.WorkspaceHeader},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(customMiddleware.CSRF(cfg.Server.AllowedOrigins))

	// Initialize security components
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	// Initialize repositories
	repos := repositories{
		workspaces:  postgres.NewWorkspaceRepository(db),
		members:     postgres.NewMemberRepository(db),
		invitations: postgres.NewInvitationRepository(db),
		profiles:    postgres.NewProfileRepository(db),
		reports:     postgres.NewEODRepository(db),
		products:    postgres.NewProductRepository(db),
	}

	h := newAPIHandlers(cfg, repos, files, auditLogger)
	h.readiness = map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		h.readiness["redis"] = redisClient
	}

	// Middleware instances
	sessionService := service.NewSessionService(jwtManager, repos.members, auditLogger)
	auth := customMiddleware.NewAuthMiddleware(sessionService, cfg.Auth)
	rateLimit := customMiddleware.NewRateLimitMiddleware(ratelimit.NewLimiter(limitStore, RateLimitPolicies(cfg.RateLimit)), auditLogger)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit.Limit)
		mountAPI(r, auth, h)
	})

	// Uploaded files
	if base := strings.TrimRight(cfg.Storage.PublicBaseURL, "/"); strings.HasPrefix(base, "/") && files != nil {
		r.Handle(base+"/*", http.StripPrefix(base, http.FileServer(http.Dir(files.Dir()))))
	}

	// Frontend
	if cfg.Server.StaticDir != "" {
		log.Info().Str("dir", cfg.Server.StaticDir).Msg("Serving frontend")
		r.With(auth.ManagerPages(cfg.Server.ManagerPages)).Handle("/*", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	return r
}
