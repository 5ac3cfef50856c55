package api

import (
	"log/slog"

	"github.com/shaiso/templatehub/internal/catalog"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	service *catalog.Service
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Service *catalog.Service
	Logger  *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: cfg.Service,
		logger:  logger,
	}
}
