package engine

import (
	"fmt"
	"math"

	"github.com/shaiso/templatehub/internal/domain"
)

// Ограничения на поля шаблона.
const (
	maxNameLength        = 100
	maxDescriptionLength = 2000
	maxTags              = 20
)

// ValidateDefinition выполняет полную валидацию определения шаблона.
//
// Сначала проверяются поля (name, category, difficulty, tags),
// затем структура графа через ValidateGraph.
func ValidateDefinition(def domain.TemplateDefinition) error {
	if err := ValidateFields(def.Name, def.Description, def.Category, def.Difficulty, def.Tags); err != nil {
		return err
	}
	return ValidateNodes(def.Nodes, def.Edges)
}

// ValidateFields проверяет описательные поля шаблона.
func ValidateFields(name, description string, category domain.Category, difficulty domain.Difficulty, tags []string) error {
	if name == "" {
		return NewFieldError("name", "is required")
	}
	if len(name) > maxNameLength {
		return NewFieldError("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
	if len(description) > maxDescriptionLength {
		return NewFieldError("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLength))
	}
	if !category.IsValid() {
		return NewFieldError("category", fmt.Sprintf("unknown category: %q", category))
	}
	if !difficulty.IsValid() {
		return NewFieldError("difficulty", fmt.Sprintf("unknown difficulty: %q", difficulty))
	}
	if len(tags) > maxTags {
		return NewFieldError("tags", fmt.Sprintf("at most %d tags allowed", maxTags))
	}
	return nil
}

// ValidateNodes проверяет граф, а затем то, что у каждого узла есть ID.
func ValidateNodes(nodes []domain.Node, edges []domain.Edge) error {
	if err := ValidateGraph(nodes, edges); err != nil {
		return err
	}
	for i, node := range nodes {
		if node.ID == "" {
			return NewFieldError("nodes", fmt.Sprintf("node %d has empty id", i))
		}
	}
	return nil
}

// ValidateRating проверяет, что оценка в диапазоне [1, 5].
func ValidateRating(rating float64) error {
	if math.IsNaN(rating) || rating < domain.MinRating || rating > domain.MaxRating {
		return NewFieldError("rating", fmt.Sprintf("must be between %g and %g", domain.MinRating, domain.MaxRating))
	}
	return nil
}
