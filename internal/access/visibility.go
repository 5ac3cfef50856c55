// Package access решает, кто может видеть и изменять шаблоны.
//
// Видимость (IsVisible) определяет чтение, использование и оценку шаблона.
// Политика изменения (CanMutate) и capability определяют запись.
package access

import "github.com/shaiso/templatehub/internal/domain"

// IsVisible возвращает true, если шаблон доступен tenant:
// шаблон публичный или принадлежит этому tenant.
func IsVisible(t *domain.Template, tenantID string) bool {
	if t == nil {
		return false
	}
	return t.IsPublic || (tenantID != "" && t.OrganizationID == tenantID)
}
