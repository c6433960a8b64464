package requirements

import (
	"sort"
	"strings"
)

const setupHref = "setup.html"

// Derive computes the launch requirements for a selection and marks each one
// ready when its provider is configured in health. It never fails: values that
// match no rule simply contribute nothing. Required records come first.
func Derive(sel Selection, health HealthMap) []Requirement {
	in := normalize(sel)
	acc := newAccumulator()

	if in.stack != "" {
		acc.add(Requirement{
			ID:          IDHosting,
			Title:       "Hosting (Render)",
			Reason:      "Needed to deploy your app so users can open it online.",
			ActionLabel: "Open Setup Wizard",
			ActionHref:  setupHref,
			ProviderID:  "render",
			Required:    true,
		})
		acc.add(Requirement{
			ID:          IDGitHub,
			Title:       "GitHub Account + Repository",
			Reason:      "Render deploys from a Git repository.",
			ActionLabel: "Create GitHub Account",
			ActionHref:  "https://github.com/signup",
			Required:    true,
		})
	}

	switch {
	case strings.Contains(in.stack, "supabase"):
		acc.add(Requirement{
			ID:          IDDatabase,
			Title:       "Database (Supabase)",
			Reason:      "This stack expects Supabase for data and auth services.",
			ActionLabel: "Open Setup Wizard",
			ActionHref:  setupHref,
			ProviderID:  "supabase",
			Required:    true,
		})
	case strings.Contains(in.stack, "postgresql"), strings.Contains(in.stack, "node api"):
		acc.add(Requirement{
			ID:          IDDatabase,
			Title:       "Database (Neon or Supabase)",
			Reason:      "Backend stack needs a production database.",
			ActionLabel: "Open Setup Wizard",
			ActionHref:  setupHref,
			ProviderID:  "neon",
			Required:    true,
		})
	}

	if in.hasFeature(FeatureUserAuthentication) {
		acc.add(Requirement{
			ID:          IDAuth,
			Title:       "Authentication Provider",
			Reason:      "User login, signup, and sessions need auth configuration.",
			ActionLabel: "Use Supabase Auth",
			ActionHref:  setupHref,
			ProviderID:  "supabase",
			Required:    true,
		})
	}

	if in.hasFeature(FeatureTeamCollaboration) || in.hasFeature(FeatureAnalyticsReports) {
		// A stack-driven database choice wins over the feature default.
		provider := "supabase"
		if existing, ok := acc.get(IDDatabase); ok && existing.ProviderID != "" {
			provider = existing.ProviderID
		}
		acc.add(Requirement{
			ID:          IDDatabase,
			Title:       "Database (Neon or Supabase)",
			Reason:      "Collaboration and analytics features require persistent data storage.",
			ActionLabel: "Open Setup Wizard",
			ActionHref:  setupHref,
			ProviderID:  provider,
			Required:    true,
		})
	}

	if in.hasFeature(FeaturePaymentsBilling) {
		acc.add(Requirement{
			ID:          IDPayments,
			Title:       "Payment Gateway (Stripe)",
			Reason:      "Billing features require a payment processor account and API keys.",
			ActionLabel: "Open Stripe",
			ActionHref:  "https://dashboard.stripe.com/register",
			Required:    true,
		})
	}

	if in.hasFeature(FeatureNotifications) {
		acc.add(Requirement{
			ID:          IDNotifications,
			Title:       "Email / Notification Service",
			Reason:      "Notification features require outbound delivery for email or SMS.",
			ActionLabel: "Plan Notification Provider",
			ActionHref:  "support.html",
			Required:    true,
		})
	}

	switch {
	case strings.Contains(in.target, "mvp"), strings.Contains(in.target, "production"), strings.Contains(in.target, "scale"):
		acc.add(Requirement{
			ID:          IDDomain,
			Title:       "Domain (Dynadot)",
			Reason:      "Production launch should use a branded domain.",
			ActionLabel: "Open Setup Wizard",
			ActionHref:  setupHref,
			ProviderID:  "dynadot",
			Required:    true,
		})
	case strings.Contains(in.target, "beta"):
		acc.add(Requirement{
			ID:          IDDomain,
			Title:       "Domain (Dynadot)",
			Reason:      "Optional for beta. Required before public launch.",
			ActionLabel: "Open Setup Wizard",
			ActionHref:  setupHref,
			ProviderID:  "dynadot",
			Required:    false,
		})
	}

	out := acc.list()
	for i := range out {
		out[i].Ready = providerReady(health, out[i].ProviderID)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Required && !out[j].Required
	})
	return out
}

func providerReady(health HealthMap, providerID string) bool {
	id := strings.ToLower(strings.TrimSpace(providerID))
	if id == "" {
		return false
	}
	return health[id]
}

type normalized struct {
	stack    string
	target   string
	features map[string]struct{}
}

func normalize(sel Selection) normalized {
	features := make(map[string]struct{}, len(sel.Features))
	for _, f := range sel.Features {
		if key := strings.ToLower(strings.TrimSpace(f)); key != "" {
			features[key] = struct{}{}
		}
	}
	return normalized{
		stack:    strings.ToLower(strings.TrimSpace(sel.Stack)),
		target:   strings.ToLower(strings.TrimSpace(sel.Target)),
		features: features,
	}
}

func (n normalized) hasFeature(name string) bool {
	_, ok := n.features[strings.ToLower(name)]
	return ok
}

// accumulator merges rule matches by id, keeping first-insertion order.
type accumulator struct {
	byID  map[string]*Requirement
	order []string
}

func newAccumulator() *accumulator {
	return &accumulator{byID: make(map[string]*Requirement)}
}

func (a *accumulator) get(id string) (Requirement, bool) {
	r, ok := a.byID[id]
	if !ok {
		return Requirement{}, false
	}
	return *r, true
}

func (a *accumulator) add(item Requirement) {
	if item.ID == "" {
		return
	}
	existing, ok := a.byID[item.ID]
	if !ok {
		copied := item
		a.byID[item.ID] = &copied
		a.order = append(a.order, item.ID)
		return
	}
	existing.Required = existing.Required || item.Required
	if item.Reason != "" && !strings.Contains(existing.Reason, item.Reason) {
		existing.Reason = existing.Reason + "; " + item.Reason
	}
	if existing.ProviderID == "" && item.ProviderID != "" {
		existing.ProviderID = item.ProviderID
	}
}

func (a *accumulator) list() []Requirement {
	out := make([]Requirement, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.byID[id])
	}
	return out
}
