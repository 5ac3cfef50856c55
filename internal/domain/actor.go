package domain

// Role — глобальная роль пользователя на платформе.
type Role string

// Глобальные роли.
const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// OrgRole — роль пользователя внутри организации (tenant).
type OrgRole string

// Роли в организации.
const (
	OrgRoleOwner  OrgRole = "OWNER"
	OrgRoleAdmin  OrgRole = "ADMIN"
	OrgRoleMember OrgRole = "MEMBER"
	OrgRoleViewer OrgRole = "VIEWER"
)

// Actor — пользователь, от имени которого выполняется операция.
//
// Приходит от внешнего провайдера сессий, движок его не создаёт.
type Actor struct {
	ID               string  `json:"id"`
	Role             Role    `json:"role"`
	OrganizationID   string  `json:"organization_id"`
	OrganizationRole OrgRole `json:"organization_role"`
}

// IsSuperAdmin возвращает true для SUPER_ADMIN.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}
