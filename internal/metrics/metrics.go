// Package metrics defines the service measures and exports them to Prometheus.
package metrics

import (
	"context"
	"fmt"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/go-sod/knn/internal/logging"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	MPredictLatency = stats.Float64("knn/predict_latency", "Latency of a single prediction", stats.UnitMilliseconds)
	MPredictions    = stats.Int64("knn/predictions", "Number of predictions", stats.UnitDimensionless)
	MFits           = stats.Int64("knn/fits", "Number of fit calls", stats.UnitDimensionless)
	MFitPoints      = stats.Int64("knn/fit_points", "Points bound by a fit", stats.UnitDimensionless)
	MCacheHits      = stats.Int64("knn/cache_hits", "Predictions served from the cache", stats.UnitDimensionless)

	KeyModel  = tag.MustNewKey("model")
	KeyStatus = tag.MustNewKey("status")
)

var Views = []*view.View{
	{
		Name:        "knn/predict_latency",
		Measure:     MPredictLatency,
		Description: "Distribution of prediction latency",
		TagKeys:     []tag.Key{KeyModel},
		Aggregation: view.Distribution(0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500),
	},
	{
		Name:        "knn/predictions_total",
		Measure:     MPredictions,
		Description: "Number of predictions by status",
		TagKeys:     []tag.Key{KeyModel, KeyStatus},
		Aggregation: view.Count(),
	},
	{
		Name:        "knn/fits_total",
		Measure:     MFits,
		Description: "Number of fit calls by status",
		TagKeys:     []tag.Key{KeyModel, KeyStatus},
		Aggregation: view.Count(),
	},
	{
		Name:        "knn/fit_points",
		Measure:     MFitPoints,
		Description: "Points in the last fitted set",
		TagKeys:     []tag.Key{KeyModel},
		Aggregation: view.LastValue(),
	},
	{
		Name:        "knn/cache_hits_total",
		Measure:     MCacheHits,
		Description: "Predictions served from the cache",
		TagKeys:     []tag.Key{KeyModel},
		Aggregation: view.Count(),
	},
}

type Config struct {
	Namespace string `envconfig:"KNN_METRICS_NAMESPACE" default:"knn"`
}

// NewExporter registers the views and returns the Prometheus handler.
func NewExporter(cfg *Config) (*prometheus.Exporter, error) {
	if err := view.Register(Views...); err != nil {
		return nil, fmt.Errorf("registering views: %w", err)
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: cfg.Namespace})
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}
	return exporter, nil
}

func RecordPredict(ctx context.Context, model string, started time.Time, err error) {
	record(ctx, model, err,
		MPredictions.M(1),
		MPredictLatency.M(float64(time.Since(started))/float64(time.Millisecond)),
	)
}

func RecordFit(ctx context.Context, model string, points int, err error) {
	ms := []stats.Measurement{MFits.M(1)}
	if err == nil {
		ms = append(ms, MFitPoints.M(int64(points)))
	}
	record(ctx, model, err, ms...)
}

func RecordCacheHit(ctx context.Context, model string) {
	record(ctx, model, nil, MCacheHits.M(1))
}

func record(ctx context.Context, model string, err error, ms ...stats.Measurement) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	if err := stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyModel, model), tag.Upsert(KeyStatus, status)},
		ms...,
	); err != nil {
		logging.FromContext(ctx).Debugf("recording metrics: %v", err)
	}
}
