// Package engine содержит движок шаблонов workflow.
//
// Включает:
//   - graph.go      — валидация графа узлов/рёбер и поиск циклов
//   - render.go     — подстановка переменных {{name}} и извлечение токенов
//   - definition.go — валидация полей определения шаблона
//   - rating.go     — пересчёт среднего рейтинга
//
// Пакет не зависит от хранилища: все функции чистые.
package engine
