package engine

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/shaiso/templatehub/internal/domain"
)

// tokenPattern — плейсхолдер {{name}}. Пробелы внутри скобок не допускаются.
var tokenPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// RenderString подставляет переменные в строку.
//
// Токен без соответствующей переменной остаётся как есть ({{name}}),
// без ошибки и предупреждения.
func RenderString(s string, variables map[string]any) string {
	// Быстрый путь: в строке нет плейсхолдеров
	if !strings.Contains(s, "{{") {
		return s
	}

	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		name := token[2 : len(token)-2]
		value, ok := variables[name]
		if !ok {
			return token
		}
		return formatValue(value)
	})
}

// formatValue приводит значение переменной к строке.
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// RenderValue рендерит произвольное значение.
// Рекурсивно обрабатывает map и slice, остальные типы возвращает как есть.
func RenderValue(value any, variables map[string]any) any {
	switch v := value.(type) {
	case string:
		return RenderString(v, variables)

	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = RenderValue(val, variables)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = RenderValue(val, variables)
		}
		return result

	case map[string]string:
		result := make(map[string]string, len(v))
		for key, val := range v {
			result[key] = RenderString(val, variables)
		}
		return result

	case []string:
		result := make([]string, len(v))
		for i, val := range v {
			result[i] = RenderString(val, variables)
		}
		return result

	default:
		return value
	}
}

// RenderNodes возвращает копии узлов с подставленными переменными.
// Исходные узлы не изменяются.
func RenderNodes(nodes []domain.Node, variables map[string]any) []domain.Node {
	rendered := make([]domain.Node, len(nodes))
	for i, node := range nodes {
		out := node
		if node.Data != nil {
			out.Data = RenderValue(node.Data, variables).(map[string]any)
		}
		if node.Position != nil {
			pos := *node.Position
			out.Position = &pos
		}
		rendered[i] = out
	}
	return rendered
}

// ExtractTokens возвращает отсортированный список уникальных имён
// переменных, на которые ссылаются узлы.
func ExtractTokens(nodes []domain.Node) []string {
	seen := make(map[string]bool)
	for _, node := range nodes {
		collectTokens(node.Data, seen)
	}

	tokens := make([]string, 0, len(seen))
	for name := range seen {
		tokens = append(tokens, name)
	}
	slices.Sort(tokens)
	return tokens
}

// collectTokens рекурсивно собирает токены из значения.
func collectTokens(value any, seen map[string]bool) {
	switch v := value.(type) {
	case string:
		for _, match := range tokenPattern.FindAllStringSubmatch(v, -1) {
			seen[match[1]] = true
		}
	case map[string]any:
		for _, val := range v {
			collectTokens(val, seen)
		}
	case []any:
		for _, val := range v {
			collectTokens(val, seen)
		}
	case map[string]string:
		for _, val := range v {
			collectTokens(val, seen)
		}
	case []string:
		for _, val := range v {
			collectTokens(val, seen)
		}
	}
}

// MergeVariables объединяет значения по умолчанию с переданными.
// Переданные значения имеют приоритет.
func MergeVariables(defaults, overrides map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(overrides))
	maps.Copy(merged, defaults)
	maps.Copy(merged, overrides)
	return merged
}
