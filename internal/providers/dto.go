package providers

type HealthResponse struct {
	OK        bool     `json:"ok"`
	Providers []Status `json:"providers"`
}

type SettingsResponse struct {
	OK        bool              `json:"ok"`
	Values    map[string]string `json:"values"`
	SavedKeys []string          `json:"savedKeys"`
	Message   string            `json:"message,omitempty"`
}

type updateSettingsRequest struct {
	Values map[string]any `json:"values"`
}
