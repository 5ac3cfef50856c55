// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (сервис шаблонов, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (recovery, logging, metrics, actor)
//   - actor.go            — пользователь из заголовков gateway
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - template_handler.go — обработчики для /templates
//
// Аутентификация выполняется снаружи: gateway передаёт пользователя
// в заголовках X-User-ID, X-User-Role, X-Organization-ID, X-Organization-Role.
package api
