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
	uploadsTotal           atomic.Uint64
	uploadsRejectedTotal   atomic.Uint64
	extractionsLocalTotal  atomic.Uint64
	extractionsRemoteTotal atomic.Uint64
	extractionsFailedTotal atomic.Uint64
	generationsTotal       atomic.Uint64
	generationsFailedTotal atomic.Uint64
	exportsTotal           atomic.Uint64
	exportsFailedTotal     atomic.Uint64
	chatTurnsTotal         atomic.Uint64

	remoteCallDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncUploads counts accepted uploads.
func IncUploads() { uploadsTotal.Add(1) }

// IncUploadsRejected counts uploads refused before or after extraction.
func IncUploadsRejected() { uploadsRejectedTotal.Add(1) }

// IncExtractionLocal counts extractions served by the PDF text layer.
func IncExtractionLocal() { extractionsLocalTotal.Add(1) }

// IncExtractionRemote counts extractions served by remote transcription.
func IncExtractionRemote() { extractionsRemoteTotal.Add(1) }

// IncExtractionFailed counts extraction failures.
func IncExtractionFailed() { extractionsFailedTotal.Add(1) }

// IncGeneration counts summary, schema and chat generations.
func IncGeneration() { generationsTotal.Add(1) }

// IncGenerationFailed counts failed generations.
func IncGenerationFailed() { generationsFailedTotal.Add(1) }

// IncExport counts rendered exports.
func IncExport() { exportsTotal.Add(1) }

// IncExportFailed counts failed exports.
func IncExportFailed() { exportsFailedTotal.Add(1) }

// IncChatTurn counts persisted chat turns.
func IncChatTurn() { chatTurnsTotal.Add(1) }

// ObserveRemoteCall records a model call duration.
func ObserveRemoteCall(d time.Duration) {
	value := float64(d) / float64(time.Millisecond)
	if value < 0 {
		value = 0
	}
	remoteCallDuration.Observe(value)
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
	writeCounter(&buf, "documents_uploaded_total", "Total documents uploaded", uploadsTotal.Load())
	writeCounter(&buf, "documents_rejected_total", "Total uploads rejected", uploadsRejectedTotal.Load())
	writeCounter(&buf, "extractions_local_total", "Extractions served by the PDF text layer", extractionsLocalTotal.Load())
	writeCounter(&buf, "extractions_remote_total", "Extractions served by remote transcription", extractionsRemoteTotal.Load())
	writeCounter(&buf, "extractions_failed_total", "Failed extractions", extractionsFailedTotal.Load())
	writeCounter(&buf, "generations_total", "Total model generations", generationsTotal.Load())
	writeCounter(&buf, "generations_failed_total", "Failed model generations", generationsFailedTotal.Load())
	writeCounter(&buf, "exports_total", "Rendered PDF exports", exportsTotal.Load())
	writeCounter(&buf, "exports_failed_total", "Failed PDF exports", exportsFailedTotal.Load())
	writeCounter(&buf, "chat_turns_total", "Persisted chat turns", chatTurnsTotal.Load())
	writeHistogram(&buf, "remote_call_duration_ms", "Remote model call duration in milliseconds", remoteCallDuration.Snapshot())
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

// Observe places value in the first bucket whose bound it does not exceed.
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
