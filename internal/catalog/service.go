package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/templatehub/internal/access"
	"github.com/shaiso/templatehub/internal/engine"
	"github.com/shaiso/templatehub/internal/telemetry"
)

// Service — операции над шаблонами.
type Service struct {
	store      Store
	capability access.Capability
	notifier   Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// Config — конфигурация Service.
type Config struct {
	// Store — хранилище шаблонов (обязательно).
	Store Store

	// Capability — право на управление автоматизацией в tenant
	// (default: access.RoleCapability).
	Capability access.Capability

	// Notifier — доставка событий (default: NopNotifier).
	Notifier Notifier

	// Logger
	Logger *slog.Logger

	// Now — источник времени (default: time.Now).
	Now func() time.Time
}

// New создаёт новый Service.
func New(cfg Config) *Service {
	capability := cfg.Capability
	if capability == nil {
		capability = access.RoleCapability{}
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		store:      cfg.Store,
		capability: capability,
		notifier:   notifier,
		logger:     logger,
		now:        now,
	}
}

// notify отправляет событие. Ошибка доставки только логируется.
func (s *Service) notify(ctx context.Context, event Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		telemetry.NotifyFailures.Inc()
		telemetry.WithTemplateID(s.logger, event.TemplateID.String()).Warn("failed to publish template event",
			"type", event.Type,
			"error", err,
		)
	}
}

// validationFailed учитывает отклонённое определение в метриках.
func validationFailed(err error) error {
	if reason := engine.ReasonOf(err); reason != "" {
		telemetry.ValidationFailures.WithLabelValues(reason).Inc()
	}
	return err
}
