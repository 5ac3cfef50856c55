package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики.
var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "templatehub_http_requests_total",
		Help: "Total HTTP requests handled by templatehub-api",
	}, []string{"method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "templatehub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// Метрики операций с шаблонами.
var (
	TemplatesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "templatehub_templates_created_total",
		Help: "Total templates created",
	})

	TemplateInstantiations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "templatehub_template_instantiations_total",
		Help: "Total workflows created from templates",
	})

	TemplateReviews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "templatehub_template_reviews_total",
		Help: "Total ratings folded into template averages",
	})

	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "templatehub_validation_failures_total",
		Help: "Rejected template definitions by reason",
	}, []string{"reason"})

	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "templatehub_notify_failures_total",
		Help: "Template events that could not be published",
	})
)

// Метрики каталога, обновляются reporter.
var (
	CatalogTemplates = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "templatehub_catalog_templates",
		Help: "Public templates in the catalog",
	})

	CatalogFeatured = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "templatehub_catalog_featured_templates",
		Help: "Featured public templates",
	})

	CatalogUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "templatehub_catalog_usage",
		Help: "Total usage across public templates",
	})

	CatalogReviews = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "templatehub_catalog_reviews",
		Help: "Total reviews across public templates",
	})

	CatalogAverageRating = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "templatehub_catalog_average_rating",
		Help: "Review-weighted average rating of public templates",
	})

	CatalogByCategory = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "templatehub_catalog_templates_by_category",
		Help: "Public templates per category",
	}, []string{"category"})
)
