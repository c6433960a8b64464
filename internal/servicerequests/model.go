package servicerequests

import (
	"math"
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusSubmitted       Status = "submitted"
	StatusReviewing       Status = "reviewing"
	StatusApproved        Status = "approved"
	StatusProvisioning    Status = "provisioning"
	StatusActive          Status = "active"
	StatusPartiallyActive Status = "partially_active"
	StatusProvisionFailed Status = "provision_failed"
	StatusOnHold          Status = "on_hold"
	StatusCancelled       Status = "cancelled"
)

var allowedStatuses = map[Status]struct{}{
	StatusSubmitted:       {},
	StatusReviewing:       {},
	StatusApproved:        {},
	StatusProvisioning:    {},
	StatusActive:          {},
	StatusPartiallyActive: {},
	StatusProvisionFailed: {},
	StatusOnHold:          {},
	StatusCancelled:       {},
}

// ParseStatus normalizes s and reports whether it is a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	_, ok := allowedStatuses[st]
	return st, ok
}

// StatusNames lists every status in sorted order.
func StatusNames() []string {
	out := make([]string, 0, len(allowedStatuses))
	for s := range allowedStatuses {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

// Item is a catalog plan resolved at submission time.
type Item struct {
	ProviderID   string  `json:"providerId"`
	ProviderName string  `json:"providerName"`
	ServiceID    string  `json:"serviceId"`
	ServiceName  string  `json:"serviceName"`
	PlanID       string  `json:"planId"`
	PlanLabel    string  `json:"planLabel"`
	BillingCycle string  `json:"billingCycle"`
	UnitPrice    float64 `json:"unitPrice"`
}

type StatusEvent struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
}

type ProvisionResult struct {
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	ResourceID string `json:"resourceId,omitempty"`
}

// ProvisionEntry is the latest outcome for one item.
type ProvisionEntry struct {
	ItemIndex  int             `json:"itemIndex"`
	ProviderID string          `json:"providerId"`
	ServiceID  string          `json:"serviceId"`
	PlanID     string          `json:"planId"`
	Result     ProvisionResult `json:"result"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ServiceRequest is a customer's order for provider plans.
type ServiceRequest struct {
	ID            string           `json:"requestId"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	CustomerName  string           `json:"customerName"`
	Email         string           `json:"email"`
	Company       string           `json:"company,omitempty"`
	ProjectName   string           `json:"projectName"`
	Notes         string           `json:"notes"`
	Items         []Item           `json:"items"`
	TotalMonthly  float64          `json:"totalMonthly"`
	TotalYearly   float64          `json:"totalYearly"`
	Total         float64          `json:"total"`
	Currency      string           `json:"currency"`
	Status        Status           `json:"status"`
	StatusHistory []StatusEvent    `json:"statusHistory"`
	Provisioning  []ProvisionEntry `json:"provisioning"`
}

// applyStatus moves r to status. The same status only refreshes UpdatedAt; a
// change prepends a history event.
func (r *ServiceRequest) applyStatus(status Status, reason string, now time.Time) {
	if _, ok := allowedStatuses[status]; !ok {
		return
	}
	r.UpdatedAt = now
	if r.Status == status {
		return
	}
	r.Status = status
	event := StatusEvent{Status: status, Timestamp: now, Reason: reason}
	r.StatusHistory = append([]StatusEvent{event}, r.StatusHistory...)
}

// failedIndexes returns the items whose latest provisioning outcome failed.
func (r *ServiceRequest) failedIndexes() []int {
	var out []int
	for _, e := range r.Provisioning {
		if !e.Result.OK {
			out = append(out, e.ItemIndex)
		}
	}
	sort.Ints(out)
	return out
}

// settleProvisioning derives the status implied by the provisioning entries.
func (r *ServiceRequest) settleProvisioning() Status {
	byIndex := make(map[int]ProvisionEntry, len(r.Provisioning))
	for _, e := range r.Provisioning {
		byIndex[e.ItemIndex] = e
	}
	if len(byIndex) < len(r.Items) {
		return StatusProvisioning
	}
	ok := 0
	for i := range r.Items {
		if byIndex[i].Result.OK {
			ok++
		}
	}
	switch ok {
	case len(r.Items):
		return StatusActive
	case 0:
		return StatusProvisionFailed
	default:
		return StatusPartiallyActive
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
