package api

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookline/bookline/pkg/auth"
	"github.com/bookline/bookline/pkg/billing"
	"github.com/bookline/bookline/pkg/httputil"
	"github.com/bookline/bookline/pkg/middleware"
	"github.com/bookline/bookline/pkg/observability"
	"github.com/bookline/bookline/pkg/plans"
	"github.com/bookline/bookline/pkg/tenants"
	"github.com/bookline/bookline/pkg/usage"
)

// PublicPaths are served without authentication
var PublicPaths = []string{"/healthz", "/readyz"}

// Server represents the API server
type Server struct {
	router  *mux.Router
	db      *sql.DB
	logger  *observability.Logger
	metrics *observability.Metrics

	limiter      *usage.Limiter
	resolver     *usage.PlanResolver
	billingStore billing.Store

	instrument *middleware.Instrument
	tenantGate *middleware.TenantResolver
	roleGate   *middleware.RoleGate
	subGate    *middleware.SubscriptionGate
	entGate    *middleware.EntitlementGate
	limitGate  *middleware.LimitGate
}

// Deps bundles the server's collaborators
type Deps struct {
	DB           *sql.DB
	Logger       *observability.Logger
	Metrics      *observability.Metrics
	Verifier     auth.Verifier
	Registry     tenants.Registry
	BillingStore billing.Store
	PlanResolver *usage.PlanResolver
	Limiter      *usage.Limiter
	GraceDays    int
}

// NewServer creates the API server and sets up all routes
func NewServer(deps Deps) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		db:           deps.DB,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		limiter:      deps.Limiter,
		resolver:     deps.PlanResolver,
		billingStore: deps.BillingStore,
		instrument:   middleware.NewInstrument(deps.Logger, deps.Metrics),
		tenantGate:   middleware.NewTenantResolver(deps.Verifier, deps.Registry, deps.Logger, deps.Metrics, PublicPaths),
		roleGate:     middleware.NewRoleGate(deps.Metrics),
		subGate:      middleware.NewSubscriptionGate(deps.BillingStore, deps.GraceDays, deps.Logger, deps.Metrics),
		entGate:      middleware.NewEntitlementGate(deps.BillingStore, deps.Logger, deps.Metrics),
		limitGate:    middleware.NewLimitGate(deps.Limiter, deps.Logger, deps.Metrics),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.instrument.Handler)
	s.router.Use(s.tenantGate.Handler)

	// Health routes (public)
	s.router.HandleFunc("/healthz", s.livenessCheck).Methods("GET")
	s.router.HandleFunc("/readyz", s.readinessCheck).Methods("GET")

	// Appointment routes
	s.router.Handle("/api/v1/appointments",
		s.roleGate.RequireRole(auth.RoleMember)(
			s.subGate.RequireSubscription()(
				s.limitGate.EnforceAppointmentLimit(
					http.HandlerFunc(s.createAppointment))))).Methods("POST")

	// Chatbot routes (professional and up, entitlement-gated)
	s.router.Handle("/api/v1/chatbot/messages",
		s.roleGate.RequireRole(auth.RoleMember)(
			s.subGate.RequireSubscription()(
				s.entGate.RequireFeature(plans.FeatureChatbot)(
					s.limitGate.EnforceChatbotLimit(
						http.HandlerFunc(s.createChatbotMessage)))))).Methods("POST")

	// Member routes
	s.router.Handle("/api/v1/members/invites",
		s.roleGate.RequireRole(auth.RoleAdmin)(
			s.subGate.RequireSubscription()(
				s.limitGate.EnforceMemberLimit(
					http.HandlerFunc(s.createMemberInvite))))).Methods("POST")

	// Usage routes
	s.router.Handle("/api/v1/usage",
		s.roleGate.RequireRole(auth.RoleViewer)(
			http.HandlerFunc(s.getUsage))).Methods("GET")
}

// Handler returns the server's HTTP handler wrapped with tracing
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "bookline-api")
}

// Router returns the raw mux router for tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// livenessCheck handles GET /healthz
func (s *Server) livenessCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessCheck handles GET /readyz. Not ready until the database answers.
func (s *Server) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.logger.WithError(err).Warn("readiness check failed")
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
