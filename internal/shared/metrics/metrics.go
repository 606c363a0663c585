package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	uploadsTotal              atomic.Uint64
	generationsStartedTotal   atomic.Uint64
	generationsCompletedTotal atomic.Uint64
	generationsFailedTotal    atomic.Uint64
	generationsMalformedTotal atomic.Uint64
	generationsRejectedTotal  atomic.Uint64
	mockGenerationsTotal      atomic.Uint64
	appliesTotal              atomic.Uint64
	editsAppliedTotal         atomic.Uint64
	editsIgnoredTotal         atomic.Uint64
	revisionConflictsTotal    atomic.Uint64
	streamChunksTotal         atomic.Uint64

	generationDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncUploads counts stored resumes.
func IncUploads() { uploadsTotal.Add(1) }

// IncGenerationStarted counts model calls admitted by the quota gate.
func IncGenerationStarted() { generationsStartedTotal.Add(1) }

// IncGenerationCompleted counts generations that produced a valid result.
func IncGenerationCompleted() { generationsCompletedTotal.Add(1) }

// IncGenerationFailed counts upstream or transport failures.
func IncGenerationFailed() { generationsFailedTotal.Add(1) }

// IncGenerationMalformed counts generations whose final text did not parse.
func IncGenerationMalformed() { generationsMalformedTotal.Add(1) }

// IncGenerationRejected counts requests refused for lack of quota.
func IncGenerationRejected() { generationsRejectedTotal.Add(1) }

// IncMockGeneration counts mock responses.
func IncMockGeneration() { mockGenerationsTotal.Add(1) }

// AddStreamChunks counts chunks written to streaming clients.
func AddStreamChunks(n int) {
	if n > 0 {
		streamChunksTotal.Add(uint64(n))
	}
}

// ObserveApply records one apply pass.
func ObserveApply(applied, ignored int) {
	appliesTotal.Add(1)
	if applied > 0 {
		editsAppliedTotal.Add(uint64(applied))
	}
	if ignored > 0 {
		editsIgnoredTotal.Add(uint64(ignored))
	}
}

// IncRevisionConflict counts stale-revision writes.
func IncRevisionConflict() { revisionConflictsTotal.Add(1) }

// ObserveGenerationDurationMs records a generation duration in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
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
	writeCounter(&buf, "resume_uploads_total", "Total resumes uploaded", uploadsTotal.Load())
	writeCounter(&buf, "recommendation_generations_started_total", "Total model generations started", generationsStartedTotal.Load())
	writeCounter(&buf, "recommendation_generations_completed_total", "Total model generations completed", generationsCompletedTotal.Load())
	writeCounter(&buf, "recommendation_generations_failed_total", "Total model generations failed upstream", generationsFailedTotal.Load())
	writeCounter(&buf, "recommendation_generations_malformed_total", "Total model generations with malformed output", generationsMalformedTotal.Load())
	writeCounter(&buf, "recommendation_generations_rejected_total", "Total generation requests rejected by quota", generationsRejectedTotal.Load())
	writeCounter(&buf, "recommendation_mock_generations_total", "Total mock generations served", mockGenerationsTotal.Load())
	writeCounter(&buf, "recommendation_stream_chunks_total", "Total stream chunks written", streamChunksTotal.Load())
	writeCounter(&buf, "recommendation_applies_total", "Total apply passes", appliesTotal.Load())
	writeCounter(&buf, "recommendation_edits_applied_total", "Total edits written into previews", editsAppliedTotal.Load())
	writeCounter(&buf, "recommendation_edits_ignored_total", "Total edits ignored as out of range", editsIgnoredTotal.Load())
	writeCounter(&buf, "resume_revision_conflicts_total", "Total stale revision writes", revisionConflictsTotal.Load())
	writeHistogram(&buf, "recommendation_generation_duration_ms", "Generation duration in milliseconds", generationDuration.Snapshot())
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
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

// SinceMillis returns the elapsed time since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
