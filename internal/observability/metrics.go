package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upload metrics
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioscribe_uploads_total",
		Help: "Total number of upload requests by outcome code",
	}, []string{"status"})

	uploadAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audioscribe_upload_attempts",
		Help:    "Storage write attempts per upload",
		Buckets: []float64{1, 2, 3, 4, 5},
	})

	uploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audioscribe_upload_bytes_total",
		Help: "Total audio bytes written to object storage",
	})

	// Transcription metrics
	transcriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audioscribe_transcriptions_total",
		Help: "Total number of transcription requests by provider and outcome code",
	}, []string{"provider", "status"})

	transcriptionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audioscribe_transcription_latency_seconds",
		Help:    "End-to-end transcription latency in seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"provider"})

	channelFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audioscribe_channel_fallbacks_total",
		Help: "Transcriptions retried with mono channel configuration",
	})

	unknownFormats = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audioscribe_unknown_format_total",
		Help: "Transcriptions whose declared format fell back to the default encoding",
	})
)

// RecordUpload records the outcome of one upload.
func RecordUpload(status string, attempts int, size int64) {
	uploadsTotal.WithLabelValues(status).Inc()
	if attempts > 0 {
		uploadAttempts.Observe(float64(attempts))
	}
	if status == "ok" {
		uploadBytes.Add(float64(size))
	}
}

// RecordTranscription records the outcome and latency of one transcription.
func RecordTranscription(provider, status string, elapsed time.Duration) {
	transcriptionsTotal.WithLabelValues(provider, status).Inc()
	transcriptionLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordChannelFallback counts a mono retry.
func RecordChannelFallback() {
	channelFallbacks.Inc()
}

// RecordUnknownFormat counts a format that resolved to the default encoding.
func RecordUnknownFormat() {
	unknownFormats.Inc()
}
