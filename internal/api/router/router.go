package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/myautoimport/site-api/internal/http/middleware"
	"github.com/myautoimport/site-api/internal/leads"
	"github.com/myautoimport/site-api/internal/matches"
	"github.com/myautoimport/site-api/internal/site"
	"github.com/myautoimport/site-api/internal/vitals"
	"github.com/myautoimport/site-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	MatchesHandler     *matches.Handler
	SiteHandler        *site.Handler
	VitalsHandler      *vitals.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// chi answers method mismatches itself, before any handler guard runs,
	// so the JSON error envelope has to be installed here.
	r.MethodNotAllowed(methodNotAllowed)

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Route("/api", func(api chi.Router) {
			if cfg.LeadsHandler != nil {
				api.Post("/leads", cfg.LeadsHandler.SubmitLead)
				// Legacy path the deployed pages still post to.
				api.Post("/notify-lead", cfg.LeadsHandler.SubmitLead)
			}
			if cfg.MatchesHandler != nil {
				api.Post("/notify-matches", cfg.MatchesHandler.NotifyMatches)
			}
			if cfg.SiteHandler != nil {
				api.Get("/public-config", cfg.SiteHandler.PublicConfig)
				api.Get("/manifest", cfg.SiteHandler.Manifest)
			}
			if cfg.VitalsHandler != nil {
				api.Get("/vitals-check", cfg.VitalsHandler.Check)
			}
			// Operator debug endpoint, JWT guarded
			if cfg.AdminAuthSecret != "" && cfg.LeadsHandler != nil {
				api.With(httpmiddleware.AdminJWT(cfg.AdminAuthSecret)).
					Get("/test-ratelimit", cfg.LeadsHandler.TestRateLimit)
			}
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = w.Write([]byte(`{"error":"method_not_allowed"}`))
}
