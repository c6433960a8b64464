package providers

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog lists the providers, services and plans customers can order.
type Catalog struct {
	Currency  string     `yaml:"currency" json:"currency"`
	Providers []Provider `yaml:"providers" json:"providers"`

	index map[priceKey]PlanPrice
}

type Provider struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Category    string    `yaml:"category" json:"category"`
	Description string    `yaml:"description" json:"description"`
	Services    []CatalogService `yaml:"services" json:"services"`
}

// CatalogService is one purchasable service offered by a provider.
type CatalogService struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Plans       []Plan `yaml:"plans" json:"plans"`
}

// Plan prices are keyed by billing cycle ("monthly", "yearly").
type Plan struct {
	ID      string             `yaml:"id" json:"id"`
	Label   string             `yaml:"label" json:"label"`
	Billing map[string]float64 `yaml:"billing" json:"billing"`
}

// PlanPrice is a resolved catalog entry for one billing cycle.
type PlanPrice struct {
	ProviderName string
	ServiceName  string
	PlanLabel    string
	Price        float64
}

type priceKey struct {
	provider, service, plan, cycle string
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes a YAML catalog and indexes its prices.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse provider catalog: %w", err)
	}
	if strings.TrimSpace(c.Currency) == "" {
		c.Currency = "USD"
	}
	c.index = make(map[priceKey]PlanPrice)
	for _, p := range c.Providers {
		for _, s := range p.Services {
			for _, plan := range s.Plans {
				for cycle, price := range plan.Billing {
					key := newPriceKey(p.ID, s.ID, plan.ID, cycle)
					if _, dup := c.index[key]; dup {
						return nil, fmt.Errorf("duplicate catalog entry %s/%s/%s (%s)", p.ID, s.ID, plan.ID, cycle)
					}
					c.index[key] = PlanPrice{
						ProviderName: strings.TrimSpace(p.Name),
						ServiceName:  strings.TrimSpace(s.Name),
						PlanLabel:    strings.TrimSpace(plan.Label),
						Price:        price,
					}
				}
			}
		}
	}
	return &c, nil
}

// Lookup resolves a plan price; ids and cycle compare case-insensitively.
func (c *Catalog) Lookup(providerID, serviceID, planID, cycle string) (PlanPrice, bool) {
	if c == nil {
		return PlanPrice{}, false
	}
	p, ok := c.index[newPriceKey(providerID, serviceID, planID, cycle)]
	return p, ok
}

func newPriceKey(provider, service, plan, cycle string) priceKey {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return priceKey{norm(provider), norm(service), norm(plan), norm(cycle)}
}
