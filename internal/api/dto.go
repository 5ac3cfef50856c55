package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/templatehub/internal/catalog"
	"github.com/shaiso/templatehub/internal/domain"
)

// Template DTOs

// CreateTemplateRequest — запрос на создание шаблона.
type CreateTemplateRequest = domain.TemplateDefinition

// UpdateTemplateRequest — запрос на частичное обновление шаблона.
type UpdateTemplateRequest = domain.TemplatePatch

// TemplateResponse — ответ с шаблоном.
type TemplateResponse struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Category       domain.Category   `json:"category"`
	Difficulty     domain.Difficulty `json:"difficulty"`
	Nodes          []domain.Node     `json:"nodes"`
	Edges          []domain.Edge     `json:"edges"`
	Variables      map[string]any    `json:"variables"`
	Tags           []string          `json:"tags"`
	IsPublic       bool              `json:"is_public"`
	IsFeatured     bool              `json:"is_featured"`
	OrganizationID string            `json:"organization_id"`
	CreatedBy      string            `json:"created_by"`
	UsageCount     int64             `json:"usage_count"`
	ReviewCount    int64             `json:"review_count"`
	AverageRating  float64           `json:"average_rating"`
	Badge          domain.Badge      `json:"badge"`
	IsPopular      bool              `json:"is_popular"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// TemplateFromDomain конвертирует domain.Template в TemplateResponse.
func TemplateFromDomain(t *domain.Template) TemplateResponse {
	return TemplateResponse{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		Category:       t.Category,
		Difficulty:     t.Difficulty,
		Nodes:          t.Nodes,
		Edges:          t.Edges,
		Variables:      t.Variables,
		Tags:           t.Tags,
		IsPublic:       t.IsPublic,
		IsFeatured:     t.IsFeatured,
		OrganizationID: t.OrganizationID,
		CreatedBy:      t.CreatedBy,
		UsageCount:     t.UsageCount,
		ReviewCount:    t.ReviewCount,
		AverageRating:  t.AverageRating,
		Badge:          domain.QualityBadge(t.UsageCount, t.AverageRating),
		IsPopular:      domain.IsPopular(t.UsageCount, t.AverageRating),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// TemplatesFromDomain конвертирует список шаблонов.
func TemplatesFromDomain(templates []domain.Template) []TemplateResponse {
	result := make([]TemplateResponse, len(templates))
	for i := range templates {
		result[i] = TemplateFromDomain(&templates[i])
	}
	return result
}

// Workflow DTOs

// UseTemplateRequest — запрос на создание workflow из шаблона.
type UseTemplateRequest struct {
	Name        string         `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
}

// WorkflowResponse — ответ с созданным workflow.
type WorkflowResponse struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Nodes          []domain.Node `json:"nodes"`
	Edges          []domain.Edge `json:"edges"`
	OrganizationID string        `json:"organization_id"`
	CreatedBy      string        `json:"created_by"`
	IsActive       bool          `json:"is_active"`
	ExecutionCount int64         `json:"execution_count"`
	TemplateID     uuid.UUID     `json:"template_id"`
	CreatedAt      time.Time     `json:"created_at"`
}

// WorkflowFromDomain конвертирует domain.Workflow в WorkflowResponse.
func WorkflowFromDomain(wf *domain.Workflow) WorkflowResponse {
	return WorkflowResponse{
		ID:             wf.ID,
		Name:           wf.Name,
		Description:    wf.Description,
		Nodes:          wf.Nodes,
		Edges:          wf.Edges,
		OrganizationID: wf.OrganizationID,
		CreatedBy:      wf.CreatedBy,
		IsActive:       wf.IsActive,
		ExecutionCount: wf.ExecutionCount,
		TemplateID:     wf.TemplateID,
		CreatedAt:      wf.CreatedAt,
	}
}

// Review DTOs

// ReviewRequest — запрос на оценку шаблона.
type ReviewRequest struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment,omitempty"`
}

// ReviewResponse — шаблон после учёта оценки.
type ReviewResponse struct {
	Template TemplateResponse `json:"template"`
	Review   domain.Review    `json:"review"`
}

// ReviewFromResult конвертирует catalog.ReviewResult в ReviewResponse.
func ReviewFromResult(res *catalog.ReviewResult) ReviewResponse {
	return ReviewResponse{
		Template: TemplateFromDomain(res.Template),
		Review:   res.Review,
	}
}

// Validation DTOs

// ValidateResponse — результат проверки определения без сохранения.
type ValidateResponse struct {
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	Field   string   `json:"field,omitempty"`
	NodeID  string   `json:"node_id,omitempty"`
	Message string   `json:"message,omitempty"`
	Order   []string `json:"order,omitempty"`
	Tokens  []string `json:"tokens"`
}
