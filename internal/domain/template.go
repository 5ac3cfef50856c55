package domain

import (
	"time"

	"github.com/google/uuid"
)

// NodeTypeTrigger — роль узла, с которого начинается workflow.
// В каждом шаблоне должен быть хотя бы один такой узел.
const NodeTypeTrigger = "trigger"

// Category — категория шаблона в маркетплейсе.
type Category string

// Категории шаблонов.
const (
	CategorySales      Category = "SALES"
	CategoryMarketing  Category = "MARKETING"
	CategorySupport    Category = "SUPPORT"
	CategoryContent    Category = "CONTENT"
	CategoryData       Category = "DATA"
	CategoryOperations Category = "OPERATIONS"
	CategoryFinance    Category = "FINANCE"
	CategoryHR         Category = "HR"
)

// Categories возвращает все известные категории.
func Categories() []Category {
	return []Category{
		CategorySales,
		CategoryMarketing,
		CategorySupport,
		CategoryContent,
		CategoryData,
		CategoryOperations,
		CategoryFinance,
		CategoryHR,
	}
}

// IsValid проверяет, что категория известна.
func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Difficulty — уровень сложности шаблона.
type Difficulty string

// Уровни сложности.
const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

// IsValid проверяет, что уровень сложности известен.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Template — переиспользуемый шаблон workflow.
//
// Шаблон содержит граф узлов и рёбер, значения переменных по умолчанию
// и агрегированную статистику. Поля UsageCount, ReviewCount и AverageRating
// изменяются только через instantiate и review, никогда напрямую.
type Template struct {
	// ID — уникальный идентификатор шаблона.
	ID uuid.UUID `json:"id"`

	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`

	// Nodes — упорядоченный список узлов графа.
	Nodes []Node `json:"nodes"`

	// Edges — направленные рёбра между узлами.
	Edges []Edge `json:"edges"`

	// Variables — значения переменных по умолчанию (name → value).
	Variables map[string]any `json:"variables"`

	// Tags — множество тегов (без дубликатов).
	Tags []string `json:"tags"`

	IsPublic   bool `json:"is_public"`
	IsFeatured bool `json:"is_featured"`

	// OrganizationID — tenant, которому принадлежит шаблон.
	OrganizationID string `json:"organization_id"`

	// CreatedBy — ID пользователя-автора.
	CreatedBy string `json:"created_by"`

	UsageCount    int64   `json:"usage_count"`
	ReviewCount   int64   `json:"review_count"`
	AverageRating float64 `json:"average_rating"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Node — вершина графа шаблона.
type Node struct {
	// ID — идентификатор узла, уникальный в рамках шаблона.
	ID string `json:"id"`

	// Type — роль узла: "trigger", "action", "condition" и т.д.
	Type string `json:"type"`

	// Data — произвольные данные узла. Строковые значения
	// могут содержать плейсхолдеры {{name}}.
	Data map[string]any `json:"data,omitempty"`

	// Position — координаты узла в редакторе. Движком не используются.
	Position *Position `json:"position,omitempty"`
}

// Position — координаты узла на холсте редактора.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge — направленное ребро графа.
type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// TemplateDefinition — данные, которые автор передаёт при создании шаблона.
type TemplateDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    Category       `json:"category"`
	Difficulty  Difficulty     `json:"difficulty"`
	Nodes       []Node         `json:"nodes"`
	Edges       []Edge         `json:"edges"`
	Variables   map[string]any `json:"variables,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	IsPublic    bool           `json:"is_public"`
	IsFeatured  bool           `json:"is_featured"`
}

// TemplatePatch — частичное обновление шаблона.
//
// nil означает "не менять". Счётчики и is_public сюда не входят:
// статистика меняется только через use/review, публикация — отдельное действие.
type TemplatePatch struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Category    *Category       `json:"category,omitempty"`
	Difficulty  *Difficulty     `json:"difficulty,omitempty"`
	Nodes       []Node          `json:"nodes,omitempty"`
	Edges       []Edge          `json:"edges,omitempty"`
	Variables   *map[string]any `json:"variables,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
	IsFeatured  *bool           `json:"is_featured,omitempty"`
}

// ChangesGraph сообщает, затрагивает ли patch узлы или рёбра.
func (p TemplatePatch) ChangesGraph() bool {
	return p.Nodes != nil || p.Edges != nil
}

// Apply применяет patch к шаблону.
func (p TemplatePatch) Apply(t *Template) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.Nodes != nil {
		t.Nodes = p.Nodes
	}
	if p.Edges != nil {
		t.Edges = p.Edges
	}
	if p.Variables != nil {
		t.Variables = *p.Variables
	}
	if p.Tags != nil {
		t.Tags = UniqueTags(*p.Tags)
	}
	if p.IsFeatured != nil {
		t.IsFeatured = *p.IsFeatured
	}
}

// UniqueTags убирает пустые и повторяющиеся теги, сохраняя порядок.
func UniqueTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}
