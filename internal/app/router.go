package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridianmar/meridian/internal/billing"
	"github.com/meridianmar/meridian/internal/ledger"
	"github.com/meridianmar/meridian/internal/observability"
	"github.com/meridianmar/meridian/internal/partners"
	"github.com/meridianmar/meridian/internal/roles"
	"github.com/meridianmar/meridian/internal/treasury"
	"github.com/meridianmar/meridian/internal/users"
	"github.com/meridianmar/meridian/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	LedgerHandler   *ledger.Handler
	BillingHandler  *billing.Handler
	PartnersHandler *partners.Handler
	TreasuryHandler *treasury.Handler
	UsersHandler    *users.Handler
	RolesHandler    *roles.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.LedgerHandler != nil {
		r.Route("/ledger", params.LedgerHandler.MountRoutes)
	}
	if params.BillingHandler != nil {
		r.Route("/billing", params.BillingHandler.MountRoutes)
	}
	if params.PartnersHandler != nil {
		r.Route("/partners", params.PartnersHandler.MountRoutes)
	}
	if params.TreasuryHandler != nil {
		r.Route("/treasury", params.TreasuryHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
