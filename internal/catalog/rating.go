package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/templatehub/internal/access"
	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/engine"
	"github.com/shaiso/templatehub/internal/telemetry"
)

// ReviewInput — оценка шаблона пользователем.
type ReviewInput struct {
	TemplateID uuid.UUID
	Rating     float64
	Comment    string
	TenantID   string
}

// ReviewResult — шаблон после учёта оценки и сама оценка.
type ReviewResult struct {
	Template *domain.Template `json:"template"`
	Review   domain.Review    `json:"review"`
}

// ReviewTemplate учитывает оценку в рейтинге шаблона.
//
// Новое среднее считается от сохранённого (округлённого) среднего
// и округляется до одного знака. Обновление атомарно на уровне строки:
// параллельные оценки не теряются. Повторная оценка тем же
// пользователем не отслеживается.
func (s *Service) ReviewTemplate(ctx context.Context, actor domain.Actor, in ReviewInput) (*ReviewResult, error) {
	t, err := s.store.GetTemplate(ctx, in.TemplateID)
	if err != nil {
		return nil, storeError(err)
	}
	if !access.IsVisible(t, in.TenantID) {
		return nil, ErrNotFound
	}
	if err := engine.ValidateRating(in.Rating); err != nil {
		return nil, validationFailed(err)
	}

	updated, err := s.store.ApplyReview(ctx, in.TemplateID, in.Rating)
	if err != nil {
		return nil, fmt.Errorf("apply review: %w", storeError(err))
	}

	telemetry.TemplateReviews.Inc()
	telemetry.WithTemplateID(s.logger, t.ID.String()).Debug("template reviewed",
		"rating", in.Rating,
		"average_rating", updated.AverageRating,
		"review_count", updated.ReviewCount,
	)

	return &ReviewResult{
		Template: updated,
		Review: domain.Review{
			TemplateID:     in.TemplateID,
			Rating:         in.Rating,
			Comment:        in.Comment,
			OrganizationID: in.TenantID,
			UserID:         actor.ID,
			CreatedAt:      s.now().UTC(),
		},
	}, nil
}
