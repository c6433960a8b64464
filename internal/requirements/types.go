package requirements

// Requirement IDs produced by Derive.
const (
	IDHosting       = "hosting"
	IDGitHub        = "github"
	IDDatabase      = "database"
	IDAuth          = "auth"
	IDPayments      = "payments"
	IDNotifications = "notifications"
	IDDomain        = "domain"
)

// Selection is the builder input: chosen stack, features and launch target.
type Selection struct {
	Stack    string   `json:"stack"`
	Features []string `json:"features"`
	Target   string   `json:"target"`
}

// HealthMap maps a lowercase provider id to whether its credentials are configured.
type HealthMap map[string]bool

// Requirement is a launch integration inferred from a Selection.
type Requirement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Reason      string `json:"reason"`
	ActionLabel string `json:"actionLabel"`
	ActionHref  string `json:"actionHref"`
	ProviderID  string `json:"providerId"`
	Required    bool   `json:"required"`
	Ready       bool   `json:"ready"`
}

// Summary reduces a requirement list to readiness counts.
type Summary struct {
	RequiredCount      int           `json:"requiredCount"`
	RequiredReadyCount int           `json:"requiredReadyCount"`
	MissingRequired    []Requirement `json:"missingRequired"`
}

// State is the display state of a single requirement.
type State string

const (
	StateReady    State = "ready"
	StateMissing  State = "missing"
	StateOptional State = "optional"
)
