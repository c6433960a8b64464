package requirements

import "strings"

// Feature names offered by the builder.
const (
	FeatureUserAuthentication = "User authentication"
	FeatureTeamCollaboration  = "Team collaboration"
	FeaturePaymentsBilling    = "Payments and billing"
	FeatureNotifications      = "Notifications"
	FeatureAdminDashboard     = "Admin dashboard"
	FeatureAnalyticsReports   = "Analytics reports"
)

// Stack names offered by the builder.
const (
	StackStatic        = "HTML/CSS/JS"
	StackReactSupabase = "React + Supabase"
	StackNextPostgres  = "Next.js + PostgreSQL"
	StackNodeReact     = "Node API + React Frontend"
)

// Launch targets offered by the builder.
const (
	TargetBeta       = "Beta in 2 weeks"
	TargetMVP        = "MVP in 1 month"
	TargetProduction = "Production in 2 months"
	TargetScale      = "Scale in 3+ months"
)

var (
	FeatureOptions = []string{
		FeatureUserAuthentication,
		FeatureTeamCollaboration,
		FeaturePaymentsBilling,
		FeatureNotifications,
		FeatureAdminDashboard,
		FeatureAnalyticsReports,
	}
	StackOptions  = []string{StackStatic, StackReactSupabase, StackNextPostgres, StackNodeReact}
	TargetOptions = []string{TargetBeta, TargetMVP, TargetProduction, TargetScale}

	TemplateOptions = []string{
		"SaaS Dashboard",
		"Client Portal",
		"Marketplace",
		"E-commerce Storefront",
		"Booking Platform",
		"Support Helpdesk",
		"Community Platform",
		"Creator Membership Hub",
		"CRM Workspace",
		"HR Recruiting Portal",
		"Real Estate Listings",
		"Restaurant Ordering",
	}
)

// MatchOption returns the canonical spelling of value within options, compared
// case-insensitively, or "" when nothing matches.
func MatchOption(value string, options []string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	for _, opt := range options {
		if strings.EqualFold(v, opt) {
			return opt
		}
	}
	return ""
}
