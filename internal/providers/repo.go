package providers

import "context"

// SettingsRepo stores operator-supplied provider settings.
type SettingsRepo interface {
	List(ctx context.Context) (map[string]string, error)
	Apply(ctx context.Context, change SettingsChange) (map[string]string, error)
}
