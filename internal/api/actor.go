package api

import (
	"context"
	"net/http"

	"github.com/shaiso/templatehub/internal/domain"
)

// Заголовки, которые gateway выставляет после аутентификации.
const (
	HeaderUserID           = "X-User-ID"
	HeaderUserRole         = "X-User-Role"
	HeaderOrganizationID   = "X-Organization-ID"
	HeaderOrganizationRole = "X-Organization-Role"
)

type actorKey struct{}

// ActorFromRequest читает пользователя из заголовков.
// Отсутствующие заголовки дают пустые поля: права проверяет сервис.
func ActorFromRequest(r *http.Request) domain.Actor {
	role := domain.Role(r.Header.Get(HeaderUserRole))
	if role == "" {
		role = domain.RoleUser
	}
	return domain.Actor{
		ID:               r.Header.Get(HeaderUserID),
		Role:             role,
		OrganizationID:   r.Header.Get(HeaderOrganizationID),
		OrganizationRole: domain.OrgRole(r.Header.Get(HeaderOrganizationRole)),
	}
}

// ContextWithActor добавляет пользователя в контекст.
func ContextWithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext возвращает пользователя из контекста.
func ActorFromContext(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey{}).(domain.Actor)
	return actor
}

// tenantID — организация, от имени которой выполняется запрос.
func tenantID(r *http.Request) string {
	return ActorFromContext(r.Context()).OrganizationID
}
