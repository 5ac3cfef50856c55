package repo

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/engine"
)

// MemoryStore — хранилище шаблонов в памяти.
//
// Используется для разработки (STORE=memory) и в тестах.
// Каждая строка шаблона защищена своим mutex: инкременты и оценки
// одного шаблона сериализуются, разные шаблоны не блокируют друг друга.
// Общий lock держится только на время поиска в map.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*templateRow

	wfMu      sync.RWMutex
	workflows map[uuid.UUID]domain.Workflow
}

type templateRow struct {
	mu      sync.Mutex
	t       domain.Template
	deleted bool
}

// NewMemoryStore создаёт пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[uuid.UUID]*templateRow),
		workflows: make(map[uuid.UUID]domain.Workflow),
	}
}

// row находит строку шаблона. Строка возвращается заблокированной.
func (s *MemoryStore) row(id uuid.UUID) (*templateRow, error) {
	s.mu.RLock()
	r, ok := s.templates[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	if r.deleted {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	return r, nil
}

// CreateTemplate сохраняет новый шаблон.
func (s *MemoryStore) CreateTemplate(_ context.Context, t *domain.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[t.ID]; ok {
		return ErrAlreadyExists
	}
	s.templates[t.ID] = &templateRow{t: cloneTemplate(*t)}
	return nil
}

// GetTemplate возвращает копию шаблона.
func (s *MemoryStore) GetTemplate(_ context.Context, id uuid.UUID) (*domain.Template, error) {
	r, err := s.row(id)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	t := cloneTemplate(r.t)
	return &t, nil
}

// UpdateTemplate обновляет поля определения, сохраняя счётчики.
func (s *MemoryStore) UpdateTemplate(_ context.Context, t *domain.Template) (*domain.Template, error) {
	r, err := s.row(t.ID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	next := cloneTemplate(*t)
	next.OrganizationID = r.t.OrganizationID
	next.CreatedBy = r.t.CreatedBy
	next.CreatedAt = r.t.CreatedAt
	next.IsPublic = r.t.IsPublic
	next.UsageCount = r.t.UsageCount
	next.ReviewCount = r.t.ReviewCount
	next.AverageRating = r.t.AverageRating
	r.t = next

	updated := cloneTemplate(r.t)
	return &updated, nil
}

// DeleteTemplate удаляет шаблон.
func (s *MemoryStore) DeleteTemplate(_ context.Context, id uuid.UUID) error {
	r, err := s.row(id)
	if err != nil {
		return err
	}
	r.deleted = true
	r.mu.Unlock()

	s.mu.Lock()
	delete(s.templates, id)
	s.mu.Unlock()
	return nil
}

// PublishTemplate делает шаблон публичным.
func (s *MemoryStore) PublishTemplate(_ context.Context, id uuid.UUID) (*domain.Template, error) {
	r, err := s.row(id)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	r.t.IsPublic = true
	t := cloneTemplate(r.t)
	return &t, nil
}

// Instantiate сохраняет workflow и увеличивает usage_count под lock строки.
func (s *MemoryStore) Instantiate(_ context.Context, wf *domain.Workflow) error {
	r, err := s.row(wf.TemplateID)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	s.wfMu.Lock()
	if _, ok := s.workflows[wf.ID]; ok {
		s.wfMu.Unlock()
		return ErrAlreadyExists
	}
	s.workflows[wf.ID] = *wf
	s.wfMu.Unlock()

	r.t.UsageCount++
	return nil
}

// ApplyReview учитывает оценку под lock строки.
func (s *MemoryStore) ApplyReview(_ context.Context, id uuid.UUID, rating float64) (*domain.Template, error) {
	r, err := s.row(id)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	r.t.AverageRating, r.t.ReviewCount = engine.NextRating(r.t.AverageRating, r.t.ReviewCount, rating)
	t := cloneTemplate(r.t)
	return &t, nil
}

// GetWorkflow возвращает workflow по ID.
func (s *MemoryStore) GetWorkflow(_ context.Context, id uuid.UUID) (*domain.Workflow, error) {
	s.wfMu.RLock()
	defer s.wfMu.RUnlock()

	wf, ok := s.workflows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &wf, nil
}

// WorkflowCount возвращает количество сохранённых workflow.
func (s *MemoryStore) WorkflowCount() int {
	s.wfMu.RLock()
	defer s.wfMu.RUnlock()
	return len(s.workflows)
}

// ListTemplates возвращает шаблоны по фильтру.
func (s *MemoryStore) ListTemplates(_ context.Context, filter domain.TemplateFilter) ([]domain.Template, error) {
	filter = filter.Normalize()

	var matched []domain.Template
	for _, t := range s.snapshot() {
		if matchFilter(&t, filter) {
			matched = append(matched, t)
		}
	}

	slices.SortStableFunc(matched, func(a, b domain.Template) int {
		c := compareBy(filter.SortBy, a, b)
		if filter.SortDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c = b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	if filter.Offset >= len(matched) {
		return []domain.Template{}, nil
	}
	matched = matched[filter.Offset:]
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Stats возвращает агрегаты по публичным шаблонам.
func (s *MemoryStore) Stats(_ context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{ByCategory: make(map[domain.Category]int64)}
	var weighted float64

	for _, t := range s.snapshot() {
		if !t.IsPublic {
			continue
		}
		stats.TotalTemplates++
		if t.IsFeatured {
			stats.FeaturedTemplates++
		}
		stats.TotalUsage += t.UsageCount
		stats.TotalReviews += t.ReviewCount
		weighted += t.AverageRating * float64(t.ReviewCount)
		stats.ByCategory[t.Category]++
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = engine.Round1(weighted / float64(stats.TotalReviews))
	}
	return stats, nil
}

// snapshot копирует все шаблоны, блокируя строки по одной.
func (s *MemoryStore) snapshot() []domain.Template {
	s.mu.RLock()
	rows := slices.Collect(maps.Values(s.templates))
	s.mu.RUnlock()

	result := make([]domain.Template, 0, len(rows))
	for _, r := range rows {
		r.mu.Lock()
		if !r.deleted {
			result = append(result, cloneTemplate(r.t))
		}
		r.mu.Unlock()
	}
	return result
}

func matchFilter(t *domain.Template, f domain.TemplateFilter) bool {
	switch f.Scope {
	case domain.ScopePublic:
		if !t.IsPublic {
			return false
		}
	case domain.ScopeOwned:
		if t.OrganizationID != f.TenantID {
			return false
		}
	default:
		if !t.IsPublic && (f.TenantID == "" || t.OrganizationID != f.TenantID) {
			return false
		}
	}

	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && t.Difficulty != f.Difficulty {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(tag string) bool {
		return slices.Contains(t.Tags, tag)
	}) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.MinRating > 0 && t.AverageRating < f.MinRating {
		return false
	}
	if f.MinUsage > 0 && t.UsageCount < f.MinUsage {
		return false
	}
	if f.FeaturedOnly && !t.IsFeatured {
		return false
	}
	return true
}

func compareBy(field domain.SortField, a, b domain.Template) int {
	switch field {
	case domain.SortByRating:
		return cmp.Compare(a.AverageRating, b.AverageRating)
	case domain.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case domain.SortByName:
		return strings.Compare(a.Name, b.Name)
	default:
		return cmp.Compare(a.UsageCount, b.UsageCount)
	}
}

// cloneTemplate копирует шаблон вместе со срезами и map, включая вложенные.
func cloneTemplate(t domain.Template) domain.Template {
	t.Nodes = cloneNodes(t.Nodes)
	t.Edges = slices.Clone(t.Edges)
	t.Variables = cloneData(t.Variables)
	t.Tags = slices.Clone(t.Tags)
	return t
}

func cloneNodes(nodes []domain.Node) []domain.Node {
	if nodes == nil {
		return nil
	}
	result := make([]domain.Node, len(nodes))
	for i, n := range nodes {
		n.Data = cloneData(n.Data)
		if n.Position != nil {
			pos := *n.Position
			n.Position = &pos
		}
		result[i] = n
	}
	return result
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	return cloneValue(data).(map[string]any)
}

// cloneValue рекурсивно копирует map и slice. Остальные значения неизменяемы.
func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = cloneValue(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = cloneValue(val)
		}
		return result
	case map[string]string:
		return maps.Clone(v)
	case []string:
		return slices.Clone(v)
	default:
		return value
	}
}
