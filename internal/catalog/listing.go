package catalog

import (
	"context"
	"fmt"

	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/engine"
)

// ListFeatured возвращает публичные шаблоны с is_featured,
// отсортированные по usage_count.
func (s *Service) ListFeatured(ctx context.Context, limit int) ([]domain.Template, error) {
	filter := domain.TemplateFilter{
		Scope:        domain.ScopePublic,
		FeaturedOnly: true,
		SortBy:       domain.SortByUsage,
		SortDesc:     true,
		Limit:        limit,
	}
	return s.list(ctx, filter)
}

// ListByCategory возвращает публичные шаблоны категории,
// отсортированные по usage_count.
func (s *Service) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Template, error) {
	if !category.IsValid() {
		return nil, validationFailed(invalidCategory(category))
	}
	filter := domain.TemplateFilter{
		Scope:    domain.ScopePublic,
		Category: category,
		SortBy:   domain.SortByUsage,
		SortDesc: true,
	}
	return s.list(ctx, filter)
}

// SearchTemplates ищет среди шаблонов, видимых tenant.
func (s *Service) SearchTemplates(ctx context.Context, tenantID string, filter domain.TemplateFilter) ([]domain.Template, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, validationFailed(invalidCategory(filter.Category))
	}
	filter.Scope = domain.ScopeVisible
	filter.TenantID = tenantID
	return s.list(ctx, filter)
}

// ListOrganizationTemplates возвращает все шаблоны tenant,
// включая приватные, от новых к старым.
func (s *Service) ListOrganizationTemplates(ctx context.Context, tenantID string) ([]domain.Template, error) {
	filter := domain.TemplateFilter{
		Scope:    domain.ScopeOwned,
		TenantID: tenantID,
		SortBy:   domain.SortByCreatedAt,
		SortDesc: true,
		Limit:    domain.MaxListLimit,
	}
	return s.list(ctx, filter)
}

// GetStats возвращает статистику по публичным шаблонам.
func (s *Service) GetStats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("template stats: %w", err)
	}
	return stats, nil
}

func (s *Service) list(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, error) {
	templates, err := s.store.ListTemplates(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	return templates, nil
}

func invalidCategory(category domain.Category) error {
	return engine.NewFieldError("category", fmt.Sprintf("unknown category: %q", category))
}
