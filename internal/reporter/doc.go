// Package reporter периодически публикует статистику каталога в метриках.
//
// Структура:
//   - cron.go     — парсинг расписания и вычисление следующего запуска
//   - reporter.go — цикл обновления gauge-метрик из GetStats
//
// Расписание задаётся cron-выражением из пяти полей
// или дескриптором (@every 1m, @hourly).
package reporter
