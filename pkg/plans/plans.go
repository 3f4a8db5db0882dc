package plans

import "strings"

// Plan represents subscription plan tiers
type Plan string

const (
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// AllPlans lists every plan tier, most restrictive first.
func AllPlans() []Plan {
	return []Plan{PlanStarter, PlanProfessional, PlanEnterprise}
}

// ParsePlan maps a raw billing-provider plan label to a canonical plan.
// Labels are matched case-insensitively on markers ("enterprise", "pro")
// so that provider price IDs like "bookline-pro-monthly" resolve correctly.
// Unrecognized labels resolve to the most restrictive tier.
func ParsePlan(label string) Plan {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(l, "enterprise"):
		return PlanEnterprise
	case strings.Contains(l, "pro"):
		return PlanProfessional
	default:
		return PlanStarter
	}
}

// Metric identifies a usage-limited resource
type Metric string

const (
	MetricAppointmentsMonth Metric = "appointments_month"
	MetricChatbotMessages   Metric = "chatbot_messages_month"
	MetricMembers           Metric = "members"
)

// Unlimited marks a metric with no quota on a plan
const Unlimited = -1

// Limits is the static, compiled-in quota table. Immutable at runtime.
var Limits = map[Plan]map[Metric]int64{
	PlanStarter: {
		MetricAppointmentsMonth: 50,
		MetricChatbotMessages:   100,
		MetricMembers:           3,
	},
	PlanProfessional: {
		MetricAppointmentsMonth: Unlimited,
		MetricChatbotMessages:   2000,
		MetricMembers:           15,
	},
	PlanEnterprise: {
		MetricAppointmentsMonth: Unlimited,
		MetricChatbotMessages:   Unlimited,
		MetricMembers:           Unlimited,
	},
}

// LimitFor returns the quota for a plan and metric. Unknown combinations
// return 0, which denies the operation rather than silently allowing it.
func LimitFor(plan Plan, metric Metric) int64 {
	metrics, ok := Limits[plan]
	if !ok {
		return 0
	}
	limit, ok := metrics[metric]
	if !ok {
		return 0
	}
	return limit
}

// Feature identifies a boolean plan entitlement
type Feature string

const (
	FeatureChatbot         Feature = "chatbot"
	FeatureSMSReminders    Feature = "sms_reminders"
	FeatureCustomBranding  Feature = "custom_branding"
	FeatureAPIAccess       Feature = "api_access"
	FeatureMultiLocation   Feature = "multi_location"
)

// Entitlements is the static {plan -> {feature -> enabled}} table.
var Entitlements = map[Plan]map[Feature]bool{
	PlanStarter: {
		FeatureChatbot:        false,
		FeatureSMSReminders:   false,
		FeatureCustomBranding: false,
		FeatureAPIAccess:      false,
		FeatureMultiLocation:  false,
	},
	PlanProfessional: {
		FeatureChatbot:        true,
		FeatureSMSReminders:   true,
		FeatureCustomBranding: true,
		FeatureAPIAccess:      false,
		FeatureMultiLocation:  false,
	},
	PlanEnterprise: {
		FeatureChatbot:        true,
		FeatureSMSReminders:   true,
		FeatureCustomBranding: true,
		FeatureAPIAccess:      true,
		FeatureMultiLocation:  true,
	},
}

// FeatureEnabled reports whether a plan includes a feature.
// Unknown features are disabled.
func FeatureEnabled(plan Plan, feature Feature) bool {
	features, ok := Entitlements[plan]
	if !ok {
		return false
	}
	return features[feature]
}
