package domain

import (
	"time"

	"github.com/google/uuid"
)

// Границы допустимой оценки.
const (
	MinRating = 1.0
	MaxRating = 5.0
)

// Review — оценка шаблона.
//
// Отдельные отзывы не сохраняются: оценка сразу учитывается
// в ReviewCount и AverageRating шаблона.
type Review struct {
	TemplateID     uuid.UUID `json:"template_id"`
	Rating         float64   `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}
