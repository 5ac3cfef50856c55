package domain

// Badge — метка качества шаблона для маркетплейса.
type Badge string

// Метки качества.
const (
	BadgeFeatured Badge = "FEATURED"
	BadgePopular  Badge = "POPULAR"
	BadgeNew      Badge = "NEW"
	BadgeStandard Badge = "STANDARD"
)

// QualityBadge вычисляет метку по использованию и рейтингу.
func QualityBadge(usageCount int64, rating float64) Badge {
	switch {
	case usageCount > 100 && rating >= 4.5:
		return BadgeFeatured
	case usageCount > 50 && rating >= 4.0:
		return BadgePopular
	case usageCount < 10:
		return BadgeNew
	default:
		return BadgeStandard
	}
}

// IsPopular — шаблон часто используют и хорошо оценивают.
func IsPopular(usageCount int64, rating float64) bool {
	return usageCount > 10 && rating >= 4.0
}

// Stats — агрегированная статистика по публичным шаблонам.
type Stats struct {
	TotalTemplates    int64 `json:"total_templates"`
	FeaturedTemplates int64 `json:"featured_templates"`
	TotalUsage        int64 `json:"total_usage"`
	TotalReviews      int64 `json:"total_reviews"`

	// AverageRating — средняя оценка по всем отзывам (взвешенная по review_count).
	AverageRating float64 `json:"average_rating"`

	// ByCategory — количество публичных шаблонов в каждой категории.
	ByCategory map[Category]int64 `json:"by_category"`
}
