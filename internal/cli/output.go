package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shaiso/templatehub/internal/catalog"
	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/mq"
)

// Output печатает ответы API: таблицей для человека или JSON для скриптов.
//
// Данные пишутся в w, уведомления (Notice) — в errW, чтобы
// `templatehub template list --json | jq` получал чистый JSON.
type Output struct {
	jsonMode bool
	w        io.Writer
	errW     io.Writer
}

// NewOutput создаёт Output поверх stdout/stderr.
func NewOutput(jsonMode bool) *Output {
	return NewOutputTo(jsonMode, os.Stdout, os.Stderr)
}

// NewOutputTo создаёт Output с заданными потоками вывода.
func NewOutputTo(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
	}
}

// table — табличное представление ответа.
type table struct {
	headers []string
	rows    [][]string
}

var templateHeaders = []string{"ID", "NAME", "CATEGORY", "DIFFICULTY", "PUBLIC", "USAGE", "RATING", "BADGE"}

func templateRow(t TemplateResponse) []string {
	return []string{
		t.ID,
		t.Name,
		t.Category,
		t.Difficulty,
		strconv.FormatBool(t.IsPublic),
		strconv.FormatInt(t.UsageCount, 10),
		fmt.Sprintf("%.1f (%d)", t.AverageRating, t.ReviewCount),
		t.Badge,
	}
}

func templateTable(templates ...TemplateResponse) table {
	rows := make([][]string, len(templates))
	for i, t := range templates {
		rows[i] = templateRow(t)
	}
	return table{headers: templateHeaders, rows: rows}
}

// Templates печатает список шаблонов.
func (o *Output) Templates(templates []TemplateResponse) error {
	return o.render(templateTable(templates...), templates)
}

// Template печатает один шаблон. С graph=true в табличном режиме
// дополнительно выводятся узлы и рёбра.
func (o *Output) Template(t *TemplateResponse, graph bool) error {
	if err := o.render(templateTable(*t), t); err != nil {
		return err
	}
	if o.jsonMode || !graph {
		return nil
	}

	rows := make([][]string, 0, len(t.Nodes)+len(t.Edges))
	for _, n := range t.Nodes {
		rows = append(rows, []string{"node", n.ID, n.Type})
	}
	for _, e := range t.Edges {
		rows = append(rows, []string{"edge", e.Source + " -> " + e.Target, ""})
	}
	fmt.Fprintln(o.w)
	return o.writeTable(table{headers: []string{"KIND", "ID", "TYPE"}, rows: rows})
}

// Workflow печатает workflow, созданный из шаблона.
func (o *Output) Workflow(wf *WorkflowResponse) error {
	return o.render(table{
		headers: []string{"ID", "NAME", "TEMPLATE", "NODES", "ACTIVE", "CREATED"},
		rows: [][]string{{
			wf.ID,
			wf.Name,
			wf.TemplateID,
			strconv.Itoa(len(wf.Nodes)),
			strconv.FormatBool(wf.IsActive),
			wf.CreatedAt,
		}},
	}, wf)
}

// Review печатает шаблон с обновлённым рейтингом.
func (o *Output) Review(r *ReviewResponse) error {
	return o.render(templateTable(r.Template), r)
}

// Stats печатает агрегаты каталога. Категории выводятся в порядке
// domain.Categories(), отсутствующие — с нулём.
func (o *Output) Stats(s *StatsResponse) error {
	rows := [][]string{
		{"templates", strconv.FormatInt(s.TotalTemplates, 10)},
		{"featured", strconv.FormatInt(s.FeaturedTemplates, 10)},
		{"usage", strconv.FormatInt(s.TotalUsage, 10)},
		{"reviews", strconv.FormatInt(s.TotalReviews, 10)},
		{"average_rating", strconv.FormatFloat(s.AverageRating, 'f', 1, 64)},
	}
	for _, category := range domain.Categories() {
		rows = append(rows, []string{
			"category." + strings.ToLower(string(category)),
			strconv.FormatInt(s.ByCategory[string(category)], 10),
		})
	}
	return o.render(table{headers: []string{"METRIC", "VALUE"}, rows: rows}, s)
}

// Validation печатает результат локальной проверки определения.
func (o *Output) Validation(r *ValidationReport) error {
	return o.render(table{
		headers: []string{"VALID", "REASON", "NODE", "ORDER", "VARIABLES"},
		rows: [][]string{{
			strconv.FormatBool(r.Valid),
			r.Reason,
			r.NodeID,
			strings.Join(r.Order, ","),
			strings.Join(r.Tokens, ","),
		}},
	}, r)
}

// eventLine — событие в JSON-режиме `events watch`.
type eventLine struct {
	MessageID string        `json:"message_id"`
	Timestamp time.Time     `json:"timestamp"`
	Event     catalog.Event `json:"event"`
}

// Event печатает событие шаблона одной строкой.
// В JSON-режиме каждое событие — отдельный компактный JSON (NDJSON).
func (o *Output) Event(meta mq.EventMeta, event catalog.Event) error {
	if o.jsonMode {
		return json.NewEncoder(o.w).Encode(eventLine{
			MessageID: meta.MessageID,
			Timestamp: meta.Timestamp,
			Event:     event,
		})
	}

	workflow := "-"
	if event.WorkflowID != nil {
		workflow = event.WorkflowID.String()
	}
	_, err := fmt.Fprintf(o.w, "%s  %-20s  template=%s  org=%s  actor=%s  workflow=%s\n",
		meta.Timestamp.Format(time.RFC3339),
		event.Type,
		event.TemplateID,
		event.OrganizationID,
		event.ActorID,
		workflow,
	)
	return err
}

// Notice выводит сообщение для человека в stderr.
func (o *Output) Notice(format string, args ...any) {
	fmt.Fprintf(o.errW, format+"\n", args...)
}

// render выводит v в JSON-режиме, иначе таблицу t.
func (o *Output) render(t table, v any) error {
	if o.jsonMode {
		enc := json.NewEncoder(o.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return o.writeTable(t)
}

func (o *Output) writeTable(t table) error {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(t.headers, "\t"))
	dashes := make([]string, len(t.headers))
	for i, h := range t.headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if cell == "" {
				cell = "-"
			}
			cells[i] = cell
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}
