// Package plans defines the canonical plan tiers, their usage quotas, and
// their feature entitlements.
//
// # Plan Tiers
//
// Starter (free):
//   - 50 appointments/month
//   - 100 chatbot messages/month
//   - 3 team members
//
// Professional:
//   - Unlimited appointments
//   - 2000 chatbot messages/month
//   - 15 team members
//   - Chatbot, SMS reminders, custom branding
//
// Enterprise:
//   - Unlimited everything
//   - API access, multi-location
//
// Raw billing-provider plan labels are normalized through ParsePlan, which
// is total: any string maps to exactly one tier, and anything unrecognized
// maps to Starter so a bad label can never widen access.
package plans
