// Package cli реализует инструмент командной строки TemplateHub.
//
// # Обзор
//
// CLI — клиентская утилита для работы с каталогом шаблонов через HTTP API.
// Внутренние пакеты API не импортируются: типы ответов продублированы
// в client.go. Исключение — validate, которая проверяет определение
// локально через engine, и events watch, которая читает очередь
// аудита через mq.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для TemplateHub API. Передаёт пользователя заголовками
// X-User-ID, X-User-Role, X-Organization-ID, X-Organization-Role.
//
//	client := cli.NewClient("http://localhost:8080", cli.Identity{UserID: "u1", OrganizationID: "org-1"})
//	templates, err := client.ListFeatured(10)
//
// ## Output
//
// Печать ответов API: Templates, Template, Workflow, Review, Stats,
// Validation и Event. Таблицы (text/tabwriter) по умолчанию, JSON с
// флагом --json; события в JSON-режиме выводятся построчно (NDJSON).
//
// Данные выводятся в stdout, уведомления (Notice) — в stderr.
// Это позволяет использовать pipe: templatehub template list --json | jq .
//
// ## Commands
//
//   - template: list, featured, category, mine, show, create, update,
//     delete, publish, use, review, stats, validate
//   - events: watch
//
// Каждая группа создаётся через фабричную функцию (NewTemplateCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
