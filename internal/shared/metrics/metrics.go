package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	requirementEvaluationsTotal atomic.Uint64
	providerVerifyFailedTotal   atomic.Uint64
	serviceRequestsCreatedTotal atomic.Uint64
	provisionJobsEnqueuedTotal  atomic.Uint64
	planOpenAITotal             atomic.Uint64
	planFallbackTotal           atomic.Uint64

	providerVerifyDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000})
)

// IncRequirementEvaluations counts one requirements engine evaluation.
func IncRequirementEvaluations() {
	requirementEvaluationsTotal.Add(1)
}

// IncProviderVerifyFailed counts a failed live credential check.
func IncProviderVerifyFailed() {
	providerVerifyFailedTotal.Add(1)
}

func IncServiceRequestsCreated() {
	serviceRequestsCreatedTotal.Add(1)
}

func IncProvisionJobsEnqueued() {
	provisionJobsEnqueuedTotal.Add(1)
}

// IncPlan counts a build plan by its source ("openai" or "fallback").
func IncPlan(source string) {
	if source == "openai" {
		planOpenAITotal.Add(1)
		return
	}
	planFallbackTotal.Add(1)
}

// ObserveProviderVerifyMs records a live verification latency in milliseconds.
func ObserveProviderVerifyMs(value float64) {
	if value < 0 {
		value = 0
	}
	providerVerifyDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "requirement_evaluations_total", "Total requirement evaluations", requirementEvaluationsTotal.Load())
	writeCounter(&buf, "provider_verify_failed_total", "Total failed provider credential checks", providerVerifyFailedTotal.Load())
	writeCounter(&buf, "service_requests_created_total", "Total service requests created", serviceRequestsCreatedTotal.Load())
	writeCounter(&buf, "provision_jobs_enqueued_total", "Total provisioning jobs enqueued", provisionJobsEnqueuedTotal.Load())
	fmt.Fprintf(&buf, "# HELP build_plans_total Total AI build plans by source\n")
	fmt.Fprintf(&buf, "# TYPE build_plans_total counter\n")
	fmt.Fprintf(&buf, "build_plans_total{source=\"openai\"} %d\n", planOpenAITotal.Load())
	fmt.Fprintf(&buf, "build_plans_total{source=\"fallback\"} %d\n", planFallbackTotal.Load())
	writeHistogram(&buf, "provider_verify_duration_ms", "Provider credential check duration in milliseconds", providerVerifyDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts value in the first bucket whose bound contains it.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
