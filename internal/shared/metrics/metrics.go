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
	analysisStartedTotal   atomic.Uint64
	analysisCompletedTotal atomic.Uint64
	analysisFailedTotal    atomic.Uint64

	llmAttemptsTotal atomic.Uint64
	llmRetriesTotal  atomic.Uint64
	llmFailuresTotal atomic.Uint64

	assistGeneratedTotal atomic.Uint64
	assistFailedTotal    atomic.Uint64

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Add(1)
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Add(1)
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() {
	analysisFailedTotal.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// IncLLMAttempt counts one outbound generation request.
func IncLLMAttempt() {
	llmAttemptsTotal.Add(1)
}

// IncLLMRetry counts one backoff before a retry.
func IncLLMRetry() {
	llmRetriesTotal.Add(1)
}

// IncLLMFailure counts a generation that gave up.
func IncLLMFailure() {
	llmFailuresTotal.Add(1)
}

// IncAssistGenerated counts a successful auxiliary generation.
func IncAssistGenerated() {
	assistGeneratedTotal.Add(1)
}

// IncAssistFailed counts a failed auxiliary generation.
func IncAssistFailed() {
	assistFailedTotal.Add(1)
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
	writeCounter(&buf, "analysis_started_total", "Total analyses started", analysisStartedTotal.Load())
	writeCounter(&buf, "analysis_completed_total", "Total analyses completed", analysisCompletedTotal.Load())
	writeCounter(&buf, "analysis_failed_total", "Total analyses failed", analysisFailedTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	writeCounter(&buf, "llm_attempts_total", "Total generation requests sent upstream", llmAttemptsTotal.Load())
	writeCounter(&buf, "llm_retries_total", "Total generation retries after backoff", llmRetriesTotal.Load())
	writeCounter(&buf, "llm_failures_total", "Total generations that gave up", llmFailuresTotal.Load())
	writeCounter(&buf, "assist_generated_total", "Total auxiliary generations completed", assistGeneratedTotal.Load())
	writeCounter(&buf, "assist_failed_total", "Total auxiliary generations failed", assistFailedTotal.Load())
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

// Observe adds value to the first bucket it fits; Render accumulates.
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
