package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/bookline/pkg/httputil"
	"github.com/bookline/bookline/pkg/middleware"
	"github.com/bookline/bookline/pkg/plans"
	"github.com/bookline/bookline/pkg/usage"
)

// CreateAppointmentRequest is the body for POST /api/v1/appointments
type CreateAppointmentRequest struct {
	CustomerName string    `json:"customerName"`
	ProviderID   string    `json:"providerId,omitempty"`
	StartsAt     time.Time `json:"startsAt"`
	EndsAt       time.Time `json:"endsAt,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// Appointment is the response body for a created appointment
type Appointment struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenantId"`
	CustomerName string    `json:"customerName"`
	StartsAt     time.Time `json:"startsAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// createAppointment handles POST /api/v1/appointments
func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	tc := middleware.GetTenantContext(r)

	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerName == "" {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "customerName is required")
		return
	}
	if req.StartsAt.IsZero() {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "startsAt is required")
		return
	}

	appointment := Appointment{
		ID:           uuid.New(),
		TenantID:     tc.TenantID,
		CustomerName: req.CustomerName,
		StartsAt:     req.StartsAt,
		CreatedAt:    time.Now().UTC(),
	}

	s.recordUsage(r, plans.MetricAppointmentsMonth)
	httputil.WriteJSON(w, http.StatusCreated, appointment)
}

// ChatbotMessageRequest is the body for POST /api/v1/chatbot/messages
type ChatbotMessageRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	Text           string `json:"text"`
}

// ChatbotMessage is the response body for an accepted chatbot message
type ChatbotMessage struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversationId"`
	AcceptedAt     time.Time `json:"acceptedAt"`
}

// createChatbotMessage handles POST /api/v1/chatbot/messages
func (s *Server) createChatbotMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatbotMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "text is required")
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	message := ChatbotMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		AcceptedAt:     time.Now().UTC(),
	}

	s.recordUsage(r, plans.MetricChatbotMessages)
	httputil.WriteJSON(w, http.StatusAccepted, message)
}

// MemberInviteRequest is the body for POST /api/v1/members/invites
type MemberInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// MemberInvite is the response body for a created invite
type MemberInvite struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenantId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// createMemberInvite handles POST /api/v1/members/invites
func (s *Server) createMemberInvite(w http.ResponseWriter, r *http.Request) {
	tc := middleware.GetTenantContext(r)

	var req MemberInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		httputil.WriteErrorMessage(w, http.StatusBadRequest, "email is required")
		return
	}

	role := req.Role
	if role == "" {
		role = "member"
	}

	invite := MemberInvite{
		ID:        uuid.New(),
		TenantID:  tc.TenantID,
		Email:     req.Email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	// Member seats are counted live from the registry, so invites do not
	// touch the usage counters.
	httputil.WriteJSON(w, http.StatusCreated, invite)
}

// UsageResponse summarizes the tenant's current-period consumption
type UsageResponse struct {
	Plan    plans.Plan       `json:"plan"`
	Metrics []usage.Decision `json:"metrics"`
}

// getUsage handles GET /api/v1/usage
func (s *Server) getUsage(w http.ResponseWriter, r *http.Request) {
	tc := middleware.GetTenantContext(r)
	ctx := r.Context()

	plan, err := s.resolver.GetPlan(ctx, tc.TenantID)
	if err != nil {
		s.logger.WithError(err).WithField("tenant_id", tc.TenantID.String()).Error("plan resolution failed")
		httputil.WriteInternalError(w)
		return
	}

	checks := []func() (*usage.Decision, error){
		func() (*usage.Decision, error) { return s.limiter.CanCreateAppointment(ctx, tc.TenantID) },
		func() (*usage.Decision, error) { return s.limiter.CanUseChatbotMessage(ctx, tc.TenantID) },
		func() (*usage.Decision, error) { return s.limiter.CanInviteMember(ctx, tc.TenantID) },
	}

	resp := UsageResponse{Plan: plan}
	for _, check := range checks {
		decision, err := check()
		if err != nil {
			s.logger.WithError(err).WithField("tenant_id", tc.TenantID.String()).Error("usage summary failed")
			httputil.WriteInternalError(w)
			return
		}
		resp.Metrics = append(resp.Metrics, *decision)
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// recordUsage increments a counter-backed metric after the guarded
// operation succeeded. Recording is best-effort: a failed write is logged
// but does not fail the request the tenant already paid for.
func (s *Server) recordUsage(r *http.Request, metric plans.Metric) {
	tc := middleware.GetTenantContext(r)
	if tc == nil {
		return
	}
	if err := s.limiter.Increment(r.Context(), tc.TenantID, metric, 1); err != nil {
		s.logger.WithError(err).
			WithField("tenant_id", tc.TenantID.String()).
			WithField("metric", string(metric)).
			Error("usage increment failed")
	}
}
