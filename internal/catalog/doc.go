// Package catalog реализует операции над шаблонами workflow.
//
// Service объединяет валидацию (engine), правила доступа (access)
// и хранилище (Store):
//   - CreateTemplate, UpdateTemplate, DeleteTemplate, PublishTemplate
//   - UseTemplate — создание workflow из шаблона
//   - ReviewTemplate — учёт оценки в рейтинге шаблона
//   - ListFeatured, ListByCategory, SearchTemplates, GetStats
//
// Все проверки выполняются до записи: при ошибке хранилище не меняется.
// Невидимый шаблон неотличим от отсутствующего (ErrNotFound).
package catalog
