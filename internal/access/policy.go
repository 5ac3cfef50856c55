package access

import "github.com/shaiso/templatehub/internal/domain"

// Capability — внешняя проверка "может ли actor управлять автоматизацией tenant".
type Capability interface {
	CanManageAutomation(actor domain.Actor, tenantID string) bool
}

// CapabilityFunc — адаптер функции к Capability.
type CapabilityFunc func(actor domain.Actor, tenantID string) bool

// CanManageAutomation реализует Capability.
func (f CapabilityFunc) CanManageAutomation(actor domain.Actor, tenantID string) bool {
	return f(actor, tenantID)
}

// RoleCapability — проверка по ролям, используется по умолчанию.
//
// SUPER_ADMIN может всё. Остальные должны состоять в tenant
// и иметь роль OWNER, ADMIN или MEMBER (VIEWER только читает).
type RoleCapability struct{}

// CanManageAutomation реализует Capability.
func (RoleCapability) CanManageAutomation(actor domain.Actor, tenantID string) bool {
	if actor.ID == "" {
		return false
	}
	if actor.IsSuperAdmin() {
		return true
	}
	if tenantID == "" || actor.OrganizationID != tenantID {
		return false
	}
	switch actor.OrganizationRole {
	case domain.OrgRoleOwner, domain.OrgRoleAdmin, domain.OrgRoleMember:
		return true
	}
	return false
}

// Resource — то, что проверяется политикой изменения.
type Resource struct {
	CreatorID      string
	OrganizationID string
}

// ResourceOf возвращает Resource для шаблона.
func ResourceOf(t *domain.Template) Resource {
	return Resource{CreatorID: t.CreatedBy, OrganizationID: t.OrganizationID}
}

// CanMutate — политика изменения ресурса.
//
// Разрешено автору, владельцу (OWNER) той же организации и SUPER_ADMIN.
func CanMutate(actor domain.Actor, res Resource) bool {
	if actor.ID == "" {
		return false
	}
	if actor.IsSuperAdmin() {
		return true
	}
	if actor.ID == res.CreatorID {
		return true
	}
	return actor.OrganizationRole == domain.OrgRoleOwner &&
		actor.OrganizationID != "" &&
		actor.OrganizationID == res.OrganizationID
}
