// Package httputil provides HTTP response helpers for consistent JSON
// encoding and the structured gate error bodies that make 402 responses
// actionable for clients.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorMessage writes a minimal JSON error response
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, map[string]string{"error": message})
}

// WriteUnauthorized writes a 401 with a minimal body. Authentication
// failures never carry subscription details.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusUnauthorized, message)
}

// WriteInternalError writes a 500 with a minimal body. Dependency failure
// details stay in the logs, not the response.
func WriteInternalError(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
}

// RoleErrorResponse is the 403 body for role mismatches
type RoleErrorResponse struct {
	Error         string   `json:"error"`
	RequiredRoles []string `json:"requiredRoles"`
	UserRole      string   `json:"userRole"`
}

// WriteForbiddenRole writes a 403 carrying the roles the client would need
func WriteForbiddenRole(w http.ResponseWriter, message string, requiredRoles []string, userRole string) {
	_ = WriteJSON(w, http.StatusForbidden, RoleErrorResponse{
		Error:         message,
		RequiredRoles: requiredRoles,
		UserRole:      userRole,
	})
}

// PlanErrorResponse is the 402 body when the tenant's plan is not in the
// route's allowed set
type PlanErrorResponse struct {
	Error        string   `json:"error"`
	Plan         string   `json:"plan"`
	AllowedPlans []string `json:"allowedPlans"`
	Message      string   `json:"message"`
}

// WritePlanNotAllowed writes a 402 for a plan-membership rejection
func WritePlanNotAllowed(w http.ResponseWriter, plan string, allowedPlans []string) {
	_ = WriteJSON(w, http.StatusPaymentRequired, PlanErrorResponse{
		Error:        "plan_not_allowed",
		Plan:         plan,
		AllowedPlans: allowedPlans,
		Message:      "your current plan does not include access to this resource",
	})
}

// SubscriptionErrorResponse is the 402 body for an inactive subscription
type SubscriptionErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteSubscriptionInactive writes a 402 for an inactive subscription
func WriteSubscriptionInactive(w http.ResponseWriter, status string) {
	_ = WriteJSON(w, http.StatusPaymentRequired, SubscriptionErrorResponse{
		Error:   "subscription_inactive",
		Status:  status,
		Message: "your subscription is not active; update billing to restore access",
	})
}

// FeatureErrorResponse is the 402 body for a missing feature entitlement
type FeatureErrorResponse struct {
	Error   string `json:"error"`
	Feature string `json:"feature"`
	Plan    string `json:"plan"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteFeatureNotEntitled writes a 402 for a feature the plan lacks
func WriteFeatureNotEntitled(w http.ResponseWriter, feature, plan, status string) {
	_ = WriteJSON(w, http.StatusPaymentRequired, FeatureErrorResponse{
		Error:   "feature_not_entitled",
		Feature: feature,
		Plan:    plan,
		Status:  status,
		Message: "upgrade your plan to enable this feature",
	})
}

// LimitErrorResponse is the 402 body for an exhausted usage quota
type LimitErrorResponse struct {
	Error   string `json:"error"`
	Plan    string `json:"plan"`
	Used    int64  `json:"used"`
	Limit   int64  `json:"limit"`
	Message string `json:"message"`
}

// WriteLimitReached writes a 402 for an exhausted usage quota
func WriteLimitReached(w http.ResponseWriter, plan string, used, limit int64) {
	_ = WriteJSON(w, http.StatusPaymentRequired, LimitErrorResponse{
		Error:   "usage_limit_reached",
		Plan:    plan,
		Used:    used,
		Limit:   limit,
		Message: "monthly limit reached for your plan; upgrade to continue",
	})
}
