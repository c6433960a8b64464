package providers

import (
	"context"
	"sync"

	"islaapp-backend/internal/requirements"
	"islaapp-backend/internal/shared/metrics"
	"islaapp-backend/internal/shared/telemetry"
)

// Service exposes the provider catalog, credential health and operator settings.
type Service struct {
	Catalog  *Catalog
	Repo     SettingsRepo
	Resolver *Resolver
	Verifier *Verifier
}

func NewService(catalog *Catalog, repo SettingsRepo, verifier *Verifier) *Service {
	return &Service{
		Catalog:  catalog,
		Repo:     repo,
		Resolver: NewResolver(repo),
		Verifier: verifier,
	}
}

// Health evaluates every provider. With verify set, configured providers that
// have an identity endpoint are also checked live; failures are reported on
// the status and never change Configured.
func (s *Service) Health(ctx context.Context, verify bool) ([]Status, error) {
	env, err := s.Resolver.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	statuses := Evaluate(env)
	if !verify || s.Verifier == nil {
		return statuses, nil
	}

	var wg sync.WaitGroup
	for i := range statuses {
		st := &statuses[i]
		if !st.Configured || !s.Verifier.Supports(st.ID) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok := true
			if err := s.Verifier.Verify(ctx, st.ID, env); err != nil {
				ok = false
				st.VerifyError = err.Error()
				metrics.IncProviderVerifyFailed()
				telemetry.Warn("provider.verify_failed", map[string]any{"provider": st.ID, "error": err})
			}
			st.Verified = &ok
		}()
	}
	wg.Wait()
	return statuses, nil
}

// HealthMap returns the current configured map for the requirements engine.
func (s *Service) HealthMap(ctx context.Context) (requirements.HealthMap, error) {
	statuses, err := s.Health(ctx, false)
	if err != nil {
		return nil, err
	}
	return HealthMap(statuses), nil
}

// Lookup resolves a single provider setting.
func (s *Service) Lookup(ctx context.Context, key string) (string, error) {
	return s.Resolver.Lookup(ctx, key)
}

// Settings returns stored settings masked, with their sorted keys.
func (s *Service) Settings(ctx context.Context) (map[string]string, []string, error) {
	values, err := s.Repo.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	masked, keys := MaskAll(values)
	return masked, keys, nil
}

// UpdateSettings applies an update and returns the masked result.
func (s *Service) UpdateSettings(ctx context.Context, values map[string]*string) (map[string]string, []string, error) {
	change := PlanSettingsChange(values)
	updated, err := s.Repo.Apply(ctx, change)
	if err != nil {
		return nil, nil, err
	}
	masked, keys := MaskAll(updated)
	telemetry.Info("provider.settings_updated", map[string]any{
		"set":     len(change.Set),
		"removed": len(change.Remove),
	})
	return masked, keys, nil
}
