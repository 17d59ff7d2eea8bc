package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	RegisterRequestsTotal   metric.Int64Counter
	CaptionSegmentsTotal    metric.Int64Counter
	GestureFramesTotal      metric.Int64Counter
	GestureFramesDetected   metric.Int64Counter
	ClassifyDurationSeconds metric.Float64Histogram
	TranscriptExportsTotal  metric.Int64Counter
	SummaryRequestsTotal    metric.Int64Counter
	DbQueryDurationSeconds  metric.Float64Histogram
	DbQueryErrorsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("signbridge-api")
		var err error
		m := &AppMetrics{}

		m.RegisterRequestsTotal, err = meter.Int64Counter(
			"register_requests_total",
			metric.WithDescription("Total number of register requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create register_requests_total: %v", err)
		}

		m.CaptionSegmentsTotal, err = meter.Int64Counter(
			"caption_segments_total",
			metric.WithDescription("Total number of caption segments stored"),
			metric.WithUnit("{segment}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create caption_segments_total: %v", err)
		}

		m.GestureFramesTotal, err = meter.Int64Counter(
			"gesture_frames_total",
			metric.WithDescription("Total number of gesture frames classified"),
			metric.WithUnit("{frame}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create gesture_frames_total: %v", err)
		}

		m.GestureFramesDetected, err = meter.Int64Counter(
			"gesture_frames_detected_total",
			metric.WithDescription("Total number of frames that matched a letter code"),
			metric.WithUnit("{frame}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create gesture_frames_detected_total: %v", err)
		}

		m.ClassifyDurationSeconds, err = meter.Float64Histogram(
			"gesture_classify_duration_seconds",
			metric.WithDescription("Duration of gesture frame classification in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create gesture_classify_duration_seconds: %v", err)
		}

		m.TranscriptExportsTotal, err = meter.Int64Counter(
			"transcript_exports_total",
			metric.WithDescription("Total number of transcript exports served"),
			metric.WithUnit("{export}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create transcript_exports_total: %v", err)
		}

		m.SummaryRequestsTotal, err = meter.Int64Counter(
			"summary_requests_total",
			metric.WithDescription("Total number of AI summary requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create summary_requests_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
