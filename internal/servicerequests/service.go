package servicerequests

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"islaapp-backend/internal/providers"
	"islaapp-backend/internal/queue"
	"islaapp-backend/internal/shared/metrics"
	"islaapp-backend/internal/shared/telemetry"
	"islaapp-backend/internal/shared/util"
)

const (
	maxNameLength  = 200
	maxNotesLength = 4000
	maxItems       = 50
	maxIDAttempts  = 5
	defaultRegion  = "us-east-1"
	defaultReason  = "manual update"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// PriceBook resolves catalog plans.
type PriceBook interface {
	Lookup(providerID, serviceID, planID, cycle string) (providers.PlanPrice, bool)
}

// SettingLookup resolves provider settings such as DEFAULT_REGION.
type SettingLookup interface {
	Lookup(ctx context.Context, key string) (string, error)
}

type Service struct {
	Repo     Repo
	Catalog  PriceBook
	Currency string
	Queue    queue.Client
	Settings SettingLookup
	Now      func() time.Time
}

func NewService(repo Repo, catalog *providers.Catalog, q queue.Client, settings SettingLookup) *Service {
	currency := "USD"
	if catalog != nil && catalog.Currency != "" {
		currency = catalog.Currency
	}
	return &Service{
		Repo:     repo,
		Catalog:  catalog,
		Currency: currency,
		Queue:    q,
		Settings: settings,
		Now:      time.Now,
	}
}

type ItemInput struct {
	ProviderID   string `json:"providerId"`
	ServiceID    string `json:"serviceId"`
	PlanID       string `json:"planId"`
	BillingCycle string `json:"billingCycle"`
}

type CreateInput struct {
	CustomerName string
	Email        string
	Company      string
	ProjectName  string
	Notes        string
	Items        []ItemInput
}

// Create validates and prices a request and stores it as submitted.
func (s *Service) Create(ctx context.Context, in CreateInput) (ServiceRequest, error) {
	r, err := s.build(in)
	if err != nil {
		return ServiceRequest{}, err
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		r.ID, err = s.nextID(ctx, r.CreatedAt)
		if err != nil {
			return ServiceRequest{}, err
		}
		err = s.Repo.Create(ctx, r)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return ServiceRequest{}, err
		}
		metrics.IncServiceRequestsCreated()
		telemetry.Info("service_request.created", map[string]any{
			"service_request_id": r.ID,
			"items":              len(r.Items),
			"total":              r.Total,
		})
		return r, nil
	}
	return ServiceRequest{}, fmt.Errorf("%w: could not allocate request id", ErrConflict)
}

func (s *Service) build(in CreateInput) (ServiceRequest, error) {
	customer := util.SanitizeText(in.CustomerName)
	email := strings.TrimSpace(in.Email)
	project := util.SanitizeText(in.ProjectName)
	switch {
	case customer == "":
		return ServiceRequest{}, invalid("customerName is required")
	case email == "":
		return ServiceRequest{}, invalid("email is required")
	case !emailPattern.MatchString(email):
		return ServiceRequest{}, invalid("email must be valid")
	case project == "":
		return ServiceRequest{}, invalid("projectName is required")
	case len(in.Items) == 0:
		return ServiceRequest{}, invalid("items must be a non-empty array")
	case len(in.Items) > maxItems:
		return ServiceRequest{}, invalid(fmt.Sprintf("items must contain %d entries or fewer", maxItems))
	case len(customer) > maxNameLength || len(project) > maxNameLength:
		return ServiceRequest{}, invalid(fmt.Sprintf("names must be %d characters or fewer", maxNameLength))
	}
	notes := util.SanitizeText(in.Notes)
	if len(notes) > maxNotesLength {
		return ServiceRequest{}, invalid(fmt.Sprintf("notes must be %d characters or fewer", maxNotesLength))
	}

	now := s.Now().UTC()
	r := ServiceRequest{
		CreatedAt:    now,
		UpdatedAt:    now,
		CustomerName: customer,
		Email:        email,
		Company:      util.SanitizeText(in.Company),
		ProjectName:  project,
		Notes:        notes,
		Currency:     s.Currency,
		Status:       StatusSubmitted,
		StatusHistory: []StatusEvent{
			{Status: StatusSubmitted, Timestamp: now, Reason: "request created"},
		},
		Provisioning: []ProvisionEntry{},
	}

	var total, monthly, yearly float64
	for _, raw := range in.Items {
		item, err := s.resolveItem(raw)
		if err != nil {
			return ServiceRequest{}, err
		}
		r.Items = append(r.Items, item)
		total += item.UnitPrice
		switch strings.ToLower(item.BillingCycle) {
		case "monthly":
			monthly += item.UnitPrice
		case "yearly":
			yearly += item.UnitPrice
		}
	}
	r.Total = roundCents(total)
	r.TotalMonthly = roundCents(monthly)
	r.TotalYearly = roundCents(yearly)
	return r, nil
}

func (s *Service) resolveItem(raw ItemInput) (Item, error) {
	item := Item{
		ProviderID:   strings.TrimSpace(raw.ProviderID),
		ServiceID:    strings.TrimSpace(raw.ServiceID),
		PlanID:       strings.TrimSpace(raw.PlanID),
		BillingCycle: strings.TrimSpace(raw.BillingCycle),
	}
	switch {
	case item.ProviderID == "":
		return Item{}, invalid("Each item needs providerId")
	case item.ServiceID == "":
		return Item{}, invalid("Each item needs serviceId")
	case item.PlanID == "":
		return Item{}, invalid("Each item needs planId")
	case item.BillingCycle == "":
		return Item{}, invalid("Each item needs billingCycle")
	}
	price, ok := s.Catalog.Lookup(item.ProviderID, item.ServiceID, item.PlanID, item.BillingCycle)
	if !ok {
		return Item{}, invalid(fmt.Sprintf("Unknown item: %s/%s/%s (%s)",
			raw.ProviderID, raw.ServiceID, raw.PlanID, raw.BillingCycle))
	}
	item.ProviderName = price.ProviderName
	item.ServiceName = price.ServiceName
	item.PlanLabel = price.PlanLabel
	item.UnitPrice = price.Price
	return item, nil
}

// nextID returns SRV-YYYYMMDD-NNNN with NNNN one above today's highest sequence.
func (s *Service) nextID(ctx context.Context, now time.Time) (string, error) {
	prefix := "SRV-" + now.Format("20060102") + "-"
	ids, err := s.Repo.IDsWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	maxSeq := 0
	for _, id := range ids {
		seq := strings.TrimPrefix(id, prefix)
		if len(seq) != 4 {
			continue
		}
		n, err := strconv.Atoi(seq)
		if err != nil || n < 0 {
			continue
		}
		if n > maxSeq {
			maxSeq = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, maxSeq+1), nil
}

func (s *Service) List(ctx context.Context, limit int) ([]ServiceRequest, error) {
	return s.Repo.List(ctx, limit)
}

func (s *Service) Get(ctx context.Context, id string) (ServiceRequest, error) {
	return s.Repo.Get(ctx, strings.TrimSpace(id))
}

// UpdateStatus sets a manual status. Reason defaults to "manual update".
func (s *Service) UpdateStatus(ctx context.Context, id, status, reason string) (ServiceRequest, Status, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ServiceRequest{}, "", invalid("requestId is required")
	}
	if strings.TrimSpace(status) == "" {
		return ServiceRequest{}, "", invalid("status is required")
	}
	next, ok := ParseStatus(status)
	if !ok {
		return ServiceRequest{}, "", invalid("status must be one of: " + strings.Join(StatusNames(), ", "))
	}
	reason = util.SanitizeText(reason)
	if reason == "" {
		reason = defaultReason
	}

	var previous Status
	r, err := s.Repo.Mutate(ctx, id, func(r *ServiceRequest) error {
		previous = r.Status
		r.applyStatus(next, reason, s.Now().UTC())
		return nil
	})
	if err != nil {
		return ServiceRequest{}, "", err
	}
	if previous != next {
		telemetry.Info("service_request.status_changed", map[string]any{
			"service_request_id": id,
			"from":               string(previous),
			"to":                 string(next),
		})
	}
	return r, previous, nil
}

type ProvisionInput struct {
	RequestID   string
	DomainName  string
	Region      string
	RetryFailed bool
}

// Provision marks the request as provisioning and then enqueues a job for
// the worker. The status change is committed before the send so a job never
// exists for a request that is not provisioning; a failed send reverts it.
func (s *Service) Provision(ctx context.Context, in ProvisionInput) (ServiceRequest, queue.Message, error) {
	id := strings.TrimSpace(in.RequestID)
	if id == "" {
		return ServiceRequest{}, queue.Message{}, invalid("requestId is required")
	}
	region := strings.TrimSpace(in.Region)
	if region == "" {
		region = s.setting(ctx, "DEFAULT_REGION", defaultRegion)
	}

	var (
		msg    queue.Message
		before ServiceRequest
	)
	r, err := s.Repo.Mutate(ctx, id, func(r *ServiceRequest) error {
		before = clone(*r)
		if len(r.Items) == 0 {
			return invalid("Request has no service items")
		}
		reason := "provisioning run"
		var indexes []int
		if in.RetryFailed {
			indexes = r.failedIndexes()
			if len(indexes) == 0 {
				return invalid("No failed provisioning items available to retry")
			}
			reason = "retry failed provisioning"
		}

		now := s.Now().UTC()
		msg = queue.Message{
			ServiceRequestID: r.ID,
			DomainName:       domainFor(in.DomainName, r.ProjectName),
			Region:           region,
			RetryFailed:      in.RetryFailed,
			ItemIndexes:      indexes,
			EnqueuedAt:       now.Format(time.RFC3339),
			Version:          queue.MessageVersion,
		}
		r.applyStatus(StatusProvisioning, reason, now)
		return nil
	})
	if err != nil {
		return ServiceRequest{}, queue.Message{}, err
	}

	if err := s.Queue.Send(ctx, msg); err != nil {
		s.revertProvision(ctx, before, r)
		return ServiceRequest{}, queue.Message{}, fmt.Errorf("%w: %v", ErrQueue, err)
	}

	metrics.IncProvisionJobsEnqueued()
	telemetry.Info("service_request.provision_enqueued", map[string]any{
		"service_request_id": r.ID,
		"retry_failed":       in.RetryFailed,
		"items":              len(msg.ItemIndexes),
	})
	return r, msg, nil
}

var errProvisionSuperseded = errors.New("request changed since provisioning started")

// revertProvision restores the status fields from before a provisioning run
// whose job could not be enqueued, unless the request moved on meanwhile.
func (s *Service) revertProvision(ctx context.Context, before, after ServiceRequest) {
	_, err := s.Repo.Mutate(ctx, before.ID, func(r *ServiceRequest) error {
		if r.Status != after.Status || len(r.StatusHistory) != len(after.StatusHistory) {
			return errProvisionSuperseded
		}
		r.Status = before.Status
		r.StatusHistory = before.StatusHistory
		r.UpdatedAt = before.UpdatedAt
		return nil
	})
	if err != nil {
		telemetry.Error("service_request.provision_revert_failed", map[string]any{
			"service_request_id": before.ID,
			"error":              err.Error(),
		})
	}
}

func (s *Service) setting(ctx context.Context, key, fallback string) string {
	if s.Settings == nil {
		return fallback
	}
	v, err := s.Settings.Lookup(ctx, key)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

// domainFor uses the explicit domain or derives "<projectname>.com".
func domainFor(explicit, projectName string) string {
	if d := strings.TrimSpace(explicit); d != "" {
		return strings.ToLower(d)
	}
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(projectName), " ", ""))
	if name == "" {
		name = "island-project"
	}
	return name + ".com"
}

type ResultInput struct {
	ItemIndex  int    `json:"itemIndex"`
	OK         bool   `json:"ok"`
	Error      string `json:"error"`
	ResourceID string `json:"resourceId"`
}

// BatchSummary counts the outcomes of one reported batch.
type BatchSummary struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// RecordResults merges worker outcomes into a provisioning request. Once
// every item has an outcome the request settles to active, partially_active
// or provision_failed.
func (s *Service) RecordResults(ctx context.Context, id string, results []ResultInput) (ServiceRequest, BatchSummary, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ServiceRequest{}, BatchSummary{}, invalid("requestId is required")
	}
	if len(results) == 0 {
		return ServiceRequest{}, BatchSummary{}, invalid("results must be a non-empty array")
	}

	var summary BatchSummary
	r, err := s.Repo.Mutate(ctx, id, func(r *ServiceRequest) error {
		if r.Status != StatusProvisioning {
			return fmt.Errorf("%w: status is %s", ErrNotProvisioning, r.Status)
		}
		summary = BatchSummary{}
		now := s.Now().UTC()
		byIndex := make(map[int]ProvisionEntry, len(r.Provisioning)+len(results))
		for _, e := range r.Provisioning {
			byIndex[e.ItemIndex] = e
		}
		for _, res := range results {
			if res.ItemIndex < 0 || res.ItemIndex >= len(r.Items) {
				return invalid(fmt.Sprintf("itemIndex %d is out of range", res.ItemIndex))
			}
			item := r.Items[res.ItemIndex]
			entry := ProvisionEntry{
				ItemIndex:  res.ItemIndex,
				ProviderID: strings.ToLower(item.ProviderID),
				ServiceID:  strings.ToLower(item.ServiceID),
				PlanID:     strings.ToLower(item.PlanID),
				Result: ProvisionResult{
					OK:         res.OK,
					ResourceID: strings.TrimSpace(res.ResourceID),
				},
				Timestamp: now,
			}
			if !res.OK {
				entry.Result.Error = strings.TrimSpace(res.Error)
				if entry.Result.Error == "" {
					entry.Result.Error = "provisioning failed"
				}
				summary.Failed++
			} else {
				summary.Success++
			}
			byIndex[res.ItemIndex] = entry
		}
		summary.Total = summary.Success + summary.Failed

		r.Provisioning = r.Provisioning[:0]
		for i := range r.Items {
			if e, ok := byIndex[i]; ok {
				r.Provisioning = append(r.Provisioning, e)
			}
		}
		r.applyStatus(r.settleProvisioning(), "provisioning results reported", now)
		return nil
	})
	if err != nil {
		return ServiceRequest{}, BatchSummary{}, err
	}

	telemetry.Info("service_request.provision_results", map[string]any{
		"service_request_id": r.ID,
		"success":            summary.Success,
		"failed":             summary.Failed,
		"status":             string(r.Status),
	})
	return r, summary, nil
}
