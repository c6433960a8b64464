package planner

import (
	"regexp"
	"strings"

	"islaapp-backend/internal/requirements"
)

const (
	defaultProjectName = "My AI App"
	defaultOwner       = "Founder"
	fallbackSummary    = "AI produced a first draft and selected a launch path."
)

var defaultNextSteps = []string{
	"Preview the generated draft and confirm the core workflow.",
	"Connect required providers only after feature proof.",
	"Generate scaffold and continue through services provisioning.",
}

// Plan is a first draft of a builder selection generated from a free-text prompt.
type Plan struct {
	ProjectName string   `json:"projectName"`
	Template    string   `json:"template"`
	Features    []string `json:"features"`
	Stack       string   `json:"stack"`
	Target      string   `json:"target"`
	Owner       string   `json:"owner"`
	Summary     string   `json:"summary"`
	NextSteps   []string `json:"nextSteps"`
}

// Selection returns the plan as requirements engine input.
func (p Plan) Selection() requirements.Selection {
	return requirements.Selection{
		Stack:    p.Stack,
		Target:   p.Target,
		Features: append([]string(nil), p.Features...),
	}
}

type keywordRule struct {
	pattern *regexp.Regexp
	value   string
}

// First match wins.
var templateRules = []keywordRule{
	{regexp.MustCompile(`marketplace|ecommerce|store|shop|listing|booking`), "Marketplace"},
	{regexp.MustCompile(`community|social|forum|member|group`), "Community Platform"},
	{regexp.MustCompile(`client|portal|agency|crm|internal|helpdesk|service desk`), "Client Portal"},
}

// Every match contributes, in option order.
var featureRules = []keywordRule{
	{regexp.MustCompile(`login|log in|sign in|auth|account|register|user profile`), requirements.FeatureUserAuthentication},
	{regexp.MustCompile(`team|workspace|member|collaborat|organization|multi user`), requirements.FeatureTeamCollaboration},
	{regexp.MustCompile(`payment|billing|checkout|subscription|invoice|charge`), requirements.FeaturePaymentsBilling},
	{regexp.MustCompile(`notification|email|sms|alert|reminder|message`), requirements.FeatureNotifications},
	{regexp.MustCompile(`admin|dashboard|manage|management|backoffice|back office`), requirements.FeatureAdminDashboard},
	{regexp.MustCompile(`analytics|report|kpi|insight|metrics|tracking`), requirements.FeatureAnalyticsReports},
}

var stackRules = []keywordRule{
	{regexp.MustCompile(`landing page|portfolio|simple site|static|html css js`), requirements.StackStatic},
	{regexp.MustCompile(`next\.?js|nextjs`), requirements.StackNextPostgres},
	{regexp.MustCompile(`node api|express|backend api|rest api`), requirements.StackNodeReact},
}

var targetRules = []keywordRule{
	{regexp.MustCompile(`today|asap|quick|fast|two weeks|2 weeks|prototype|beta`), requirements.TargetBeta},
	{regexp.MustCompile(`production|launch|public`), requirements.TargetProduction},
	{regexp.MustCompile(`scale|scaling|enterprise|global|high traffic`), requirements.TargetScale},
}

var (
	nonAlnum  = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	stopWords = map[string]struct{}{
		"build": {}, "create": {}, "make": {}, "app": {}, "website": {}, "site": {},
		"for": {}, "with": {}, "the": {}, "a": {}, "an": {}, "to": {}, "and": {},
	}
)

// Fallback builds a plan from keyword heuristics alone.
func Fallback(prompt, owner string) Plan {
	text := strings.ToLower(strings.TrimSpace(prompt))

	var features []string
	for _, r := range featureRules {
		if r.pattern.MatchString(text) {
			features = append(features, r.value)
		}
	}
	if len(features) == 0 {
		features = []string{requirements.FeatureAdminDashboard, requirements.FeatureUserAuthentication}
	}

	owner = strings.TrimSpace(owner)
	if owner == "" {
		owner = defaultOwner
	}

	return Plan{
		ProjectName: SuggestProjectName(prompt),
		Template:    firstMatch(templateRules, text, "SaaS Dashboard"),
		Features:    features,
		Stack:       firstMatch(stackRules, text, requirements.StackReactSupabase),
		Target:      firstMatch(targetRules, text, requirements.TargetMVP),
		Owner:       owner,
		Summary:     fallbackSummary,
		NextSteps:   append([]string(nil), defaultNextSteps...),
	}
}

func firstMatch(rules []keywordRule, text, fallback string) string {
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.value
		}
	}
	return fallback
}

// SuggestProjectName title-cases up to three significant prompt words and
// suffixes "App".
func SuggestProjectName(prompt string) string {
	cleaned := strings.TrimSpace(nonAlnum.ReplaceAllString(prompt, " "))
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[strings.ToLower(w)]; stop {
			continue
		}
		words = append(words, capitalize(w))
		if len(words) == 3 {
			break
		}
	}
	if len(words) == 0 {
		return defaultProjectName
	}
	title := strings.Join(words, " ")
	if strings.HasSuffix(title, "App") {
		return title
	}
	return title + " App"
}

func capitalize(w string) string {
	lower := strings.ToLower(w)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
