// Package billing provides read-only access to tenant subscription state.
//
// Subscription rows are written exclusively by the billing-webhook service;
// this package classifies them. Two questions are answered per request:
// is the subscription active at this instant (ActiveAt, with a bounded
// grace window for past_due), and what plan tier does it grant
// (EffectivePlan). A tenant with no subscription row runs on the implicit
// starter/active default; absence is never an error.
package billing
