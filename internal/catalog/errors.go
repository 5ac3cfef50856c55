package catalog

import (
	"errors"

	"github.com/shaiso/templatehub/internal/engine"
	"github.com/shaiso/templatehub/internal/repo"
)

// Ошибки сервиса шаблонов.
var (
	// ErrNotFound — шаблон не существует или не виден tenant.
	ErrNotFound = errors.New("template not found")

	// ErrUnauthorized — у пользователя нет прав на операцию.
	ErrUnauthorized = errors.New("unauthorized")
)

// IsValidation сообщает, является ли err ошибкой валидации.
func IsValidation(err error) bool {
	var vErr *engine.ValidationError
	return errors.As(err, &vErr)
}

// storeError переводит ошибки хранилища в ошибки сервиса.
func storeError(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
