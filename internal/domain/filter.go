package domain

// Лимиты выборки шаблонов.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// SortField — поле сортировки списка шаблонов.
type SortField string

// Поля сортировки.
const (
	SortByUsage     SortField = "usage_count"
	SortByRating    SortField = "average_rating"
	SortByCreatedAt SortField = "created_at"
	SortByName      SortField = "name"
)

// IsValid проверяет поле сортировки.
func (s SortField) IsValid() bool {
	switch s {
	case SortByUsage, SortByRating, SortByCreatedAt, SortByName:
		return true
	}
	return false
}

// Scope — область видимости выборки.
type Scope int

// Области видимости.
const (
	// ScopeVisible — публичные шаблоны и шаблоны tenant.
	ScopeVisible Scope = iota

	// ScopePublic — только публичные шаблоны.
	ScopePublic

	// ScopeOwned — только шаблоны tenant (публичные и приватные).
	ScopeOwned
)

// TemplateFilter — фильтр для поиска шаблонов.
//
// Пустые поля не фильтруют.
type TemplateFilter struct {
	Scope    Scope
	TenantID string

	Category   Category
	Difficulty Difficulty

	// Tags — шаблон подходит, если содержит хотя бы один тег.
	Tags []string

	// Search — подстрока в name или description, без учёта регистра.
	Search string

	MinRating float64
	MinUsage  int64

	// FeaturedOnly — только is_featured.
	FeaturedOnly bool

	SortBy   SortField
	SortDesc bool

	Limit  int
	Offset int
}

// Normalize подставляет значения по умолчанию и обрезает лимит.
func (f TemplateFilter) Normalize() TemplateFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if !f.SortBy.IsValid() {
		f.SortBy = SortByUsage
		f.SortDesc = true
	}
	return f
}
