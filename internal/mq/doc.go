// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — соединение с reconnect; Setup (обычно DeclareTopology)
//     выполняется после каждого подключения
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация событий об изменении шаблонов
//   - consumer.go   — DecodeEvent и Consumer, передающий catalog.Event обработчику
//
// Типы сообщений (routing key совпадает с типом):
//   - template.created    — шаблон создан
//   - template.updated    — шаблон изменён
//   - template.deleted    — шаблон удалён
//   - template.published  — шаблон стал публичным
//   - template.used       — из шаблона создан workflow
//
// Exchanges:
//   - templatehub.events  — события шаблонов (topic)
//   - templatehub.dlq     — dead letter queue
package mq
