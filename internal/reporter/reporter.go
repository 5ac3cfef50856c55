package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/telemetry"
)

// StatsSource — источник статистики каталога (catalog.Service).
type StatsSource interface {
	GetStats(ctx context.Context) (*domain.Stats, error)
}

// Reporter обновляет gauge-метрики каталога по расписанию.
type Reporter struct {
	source   StatsSource
	schedule cron.Schedule
	logger   *slog.Logger
	now      func() time.Time
}

// Config — конфигурация Reporter.
type Config struct {
	Source StatsSource

	// Schedule — cron-выражение или дескриптор (default: @every 1m).
	Schedule string

	Logger *slog.Logger
}

// New создаёт новый Reporter.
func New(cfg Config) (*Reporter, error) {
	expr := cfg.Schedule
	if expr == "" {
		expr = "@every 1m"
	}
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reporter{
		source:   cfg.Source,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Tick читает статистику и обновляет метрики.
func (r *Reporter) Tick(ctx context.Context) error {
	stats, err := r.source.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	telemetry.CatalogTemplates.Set(float64(stats.TotalTemplates))
	telemetry.CatalogFeatured.Set(float64(stats.FeaturedTemplates))
	telemetry.CatalogUsage.Set(float64(stats.TotalUsage))
	telemetry.CatalogReviews.Set(float64(stats.TotalReviews))
	telemetry.CatalogAverageRating.Set(stats.AverageRating)
	for _, category := range domain.Categories() {
		telemetry.CatalogByCategory.WithLabelValues(string(category)).Set(float64(stats.ByCategory[category]))
	}

	r.logger.Debug("catalog stats reported",
		"templates", stats.TotalTemplates,
		"usage", stats.TotalUsage,
		"reviews", stats.TotalReviews,
	)
	return nil
}

// Run выполняет Tick сразу и затем по расписанию до отмены ctx.
// Ошибка одного тика логируется и не останавливает цикл.
func (r *Reporter) Run(ctx context.Context) error {
	r.tickAndLog(ctx)

	for {
		next := NextRun(r.schedule, r.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			r.tickAndLog(ctx)
		}
	}
}

func (r *Reporter) tickAndLog(ctx context.Context) {
	if err := r.Tick(ctx); err != nil {
		r.logger.Error("failed to report catalog stats", "error", err)
	}
}
