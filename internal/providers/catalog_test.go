package providers

import "testing"

func TestDefaultCatalogLookup(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	if c.Currency != "USD" {
		t.Fatalf("expected USD, got %q", c.Currency)
	}

	price, ok := c.Lookup("Render", "managed-web-hosting", "PRO", "Monthly")
	if !ok {
		t.Fatalf("expected render pro plan")
	}
	if price.Price != 25 || price.ProviderName != "Render" || price.PlanLabel != "Pro" {
		t.Fatalf("unexpected price %+v", price)
	}

	if _, ok := c.Lookup("render", "managed-web-hosting", "pro", "yearly"); ok {
		t.Fatalf("render pro has no yearly price")
	}
	if _, ok := c.Lookup("vercel", "hosting", "pro", "monthly"); ok {
		t.Fatalf("unknown provider should not resolve")
	}
}

func TestParseCatalogRejectsDuplicates(t *testing.T) {
	data := []byte(`
providers:
  - id: a
    services:
      - id: s
        plans:
          - {id: p, billing: {monthly: 1}}
          - {id: P, billing: {monthly: 2}}
`)
	if _, err := ParseCatalog(data); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestParseCatalogDefaultsCurrency(t *testing.T) {
	c, err := ParseCatalog([]byte("providers: []\n"))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if c.Currency != "USD" {
		t.Fatalf("expected USD default, got %q", c.Currency)
	}
}

func TestParseCatalogServices(t *testing.T) {
	data := []byte(`
providers:
  - id: render
    name: Render
    services:
      - id: managed-web-hosting
        name: Managed Web Hosting
        plans:
          - id: pro
            label: Pro
            billing:
              monthly: 25
`)
	c, err := ParseCatalog(data)
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if len(c.Providers) != 1 || len(c.Providers[0].Services) != 1 {
		t.Fatalf("unexpected providers %+v", c.Providers)
	}
	var svc CatalogService = c.Providers[0].Services[0]
	if svc.Name != "Managed Web Hosting" || svc.Plans[0].Billing["monthly"] != 25 {
		t.Fatalf("unexpected service %+v", svc)
	}
	if _, ok := c.Lookup("render", "managed-web-hosting", "pro", "monthly"); !ok {
		t.Fatalf("parsed plan should be indexed")
	}
}
