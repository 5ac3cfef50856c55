package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/shaiso/templatehub/internal/catalog"
	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/engine"
	"github.com/shaiso/templatehub/internal/telemetry"
)

// SearchTemplates ищет шаблоны, видимые организации пользователя.
// GET /api/v1/templates?category=&difficulty=&tags=a,b&q=&min_rating=&min_usage=&sort=&order=&limit=&offset=
func (h *Handler) SearchTemplates(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	templates, err := h.service.SearchTemplates(r.Context(), tenantID(r), filter)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	result := TemplatesFromDomain(templates)
	List(w, result, len(result))
}

// CreateTemplate создаёт шаблон в организации пользователя.
// POST /api/v1/templates
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	t, err := h.service.CreateTemplate(r.Context(), ActorFromContext(r.Context()), tenantID(r), req)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Created(w, TemplateFromDomain(t))
}

// GetTemplate возвращает шаблон по ID.
// GET /api/v1/templates/{id}
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}

	t, err := h.service.GetTemplate(r.Context(), id, tenantID(r))
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, TemplateFromDomain(t))
}

// UpdateTemplate частично обновляет шаблон.
// PUT /api/v1/templates/{id}
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}

	var req UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	t, err := h.service.UpdateTemplate(r.Context(), ActorFromContext(r.Context()), id, tenantID(r), req)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, TemplateFromDomain(t))
}

// DeleteTemplate удаляет шаблон.
// DELETE /api/v1/templates/{id}
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteTemplate(r.Context(), ActorFromContext(r.Context()), id, tenantID(r))
	if HandleServiceError(w, h.logger, err) {
		return
	}

	NoContent(w)
}

// PublishTemplate делает шаблон публичным.
// POST /api/v1/templates/{id}/publish
func (h *Handler) PublishTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}

	t, err := h.service.PublishTemplate(r.Context(), ActorFromContext(r.Context()), id, tenantID(r))
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, TemplateFromDomain(t))
}

// UseTemplate создаёт workflow из шаблона.
// POST /api/v1/templates/{id}/use
func (h *Handler) UseTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}

	// Тело необязательно: пустой запрос создаёт workflow с параметрами шаблона.
	var req UseTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(w, "invalid request body")
		return
	}

	wf, err := h.service.UseTemplate(r.Context(), ActorFromContext(r.Context()), catalog.UseTemplateInput{
		TemplateID:  id,
		Name:        req.Name,
		Description: req.Description,
		Variables:   req.Variables,
		TenantID:    tenantID(r),
	})
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Created(w, WorkflowFromDomain(wf))
}

// ReviewTemplate учитывает оценку шаблона.
// POST /api/v1/templates/{id}/reviews
func (h *Handler) ReviewTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(w, r)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	res, err := h.service.ReviewTemplate(r.Context(), ActorFromContext(r.Context()), catalog.ReviewInput{
		TemplateID: id,
		Rating:     req.Rating,
		Comment:    req.Comment,
		TenantID:   tenantID(r),
	})
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Created(w, ReviewFromResult(res))
}

// ListFeatured возвращает избранные публичные шаблоны.
// GET /api/v1/templates/featured?limit=
func (h *Handler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			BadRequest(w, "invalid limit")
			return
		}
		limit = n
	}

	templates, err := h.service.ListFeatured(r.Context(), limit)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	result := TemplatesFromDomain(templates)
	List(w, result, len(result))
}

// ListByCategory возвращает публичные шаблоны категории.
// GET /api/v1/templates/categories/{category}
func (h *Handler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(strings.ToUpper(r.PathValue("category")))

	templates, err := h.service.ListByCategory(r.Context(), category)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	result := TemplatesFromDomain(templates)
	List(w, result, len(result))
}

// ListOrganizationTemplates возвращает все шаблоны организации пользователя.
// GET /api/v1/organizations/templates
func (h *Handler) ListOrganizationTemplates(w http.ResponseWriter, r *http.Request) {
	tenant := tenantID(r)
	if tenant == "" {
		BadRequest(w, HeaderOrganizationID+" header is required")
		return
	}

	templates, err := h.service.ListOrganizationTemplates(r.Context(), tenant)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	result := TemplatesFromDomain(templates)
	List(w, result, len(result))
}

// GetStats возвращает статистику каталога.
// GET /api/v1/templates/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, stats)
}

// ValidateTemplate проверяет определение шаблона без сохранения.
// POST /api/v1/templates/validate
func (h *Handler) ValidateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	Success(w, validateDefinition(req))
}

func validateDefinition(def domain.TemplateDefinition) ValidateResponse {
	resp := ValidateResponse{Tokens: engine.ExtractTokens(def.Nodes)}

	if err := engine.ValidateDefinition(def); err != nil {
		var vErr *engine.ValidationError
		if errors.As(err, &vErr) {
			telemetry.ValidationFailures.WithLabelValues(vErr.Reason).Inc()
			resp.Reason = vErr.Reason
			resp.Field = vErr.Field
			resp.NodeID = vErr.NodeID
		}
		resp.Message = err.Error()
		return resp
	}

	resp.Valid = true
	// Граф уже проверен: ошибки здесь быть не может.
	resp.Order, _ = engine.TopologicalOrder(def.Nodes, def.Edges)
	return resp
}

// templateID разбирает {id} из пути. При ошибке отправляет 400.
func templateID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid template id")
		return uuid.Nil, false
	}
	return id, true
}

// parseFilter строит фильтр поиска из query-параметров.
func parseFilter(q url.Values) (domain.TemplateFilter, error) {
	filter := domain.TemplateFilter{
		Category:   domain.Category(strings.ToUpper(q.Get("category"))),
		Difficulty: domain.Difficulty(strings.ToUpper(q.Get("difficulty"))),
		Search:     q.Get("q"),
	}

	if filter.Difficulty != "" && !filter.Difficulty.IsValid() {
		return filter, errors.New("invalid difficulty")
	}

	if v := q.Get("tags"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}

	if v := q.Get("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("invalid min_rating")
		}
		filter.MinRating = rating
	}

	if v := q.Get("min_usage"); v != "" {
		usage, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errors.New("invalid min_usage")
		}
		filter.MinUsage = usage
	}

	if v := q.Get("sort"); v != "" {
		filter.SortBy = domain.SortField(v)
		if !filter.SortBy.IsValid() {
			return filter, errors.New("invalid sort field")
		}
		filter.SortDesc = true
	}
	switch q.Get("order") {
	case "":
	case "asc":
		filter.SortDesc = false
	case "desc":
		filter.SortDesc = true
	default:
		return filter, errors.New("invalid order: want asc or desc")
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, errors.New("invalid offset")
		}
		filter.Offset = offset
	}

	return filter, nil
}
