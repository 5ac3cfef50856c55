package engine

import (
	"reflect"
	"testing"

	"github.com/shaiso/templatehub/internal/domain"
)

func greetingNodes() []domain.Node {
	return []domain.Node{
		{ID: "n1", Type: domain.NodeTypeTrigger},
		{ID: "n2", Type: "action", Data: map[string]any{"msg": "Hello {{name}}"}},
	}
}

func TestRenderNodes_Greeting(t *testing.T) {
	nodes := greetingNodes()

	rendered := RenderNodes(nodes, map[string]any{"name": "Ada"})
	if got := rendered[1].Data["msg"]; got != "Hello Ada" {
		t.Errorf("expected 'Hello Ada', got %v", got)
	}

	// Без переменной токен остаётся как есть
	rendered = RenderNodes(nodes, map[string]any{})
	if got := rendered[1].Data["msg"]; got != "Hello {{name}}" {
		t.Errorf("expected 'Hello {{name}}', got %v", got)
	}

	// Исходные узлы не изменились
	if nodes[1].Data["msg"] != "Hello {{name}}" {
		t.Error("source nodes should not be modified")
	}
}

func TestRenderString(t *testing.T) {
	vars := map[string]any{
		"name":  "Ada",
		"count": 42,
		"ok":    true,
		"empty": nil,
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{name: "plain text", template: "Plain text", expected: "Plain text"},
		{name: "string", template: "Hi {{name}}!", expected: "Hi Ada!"},
		{name: "number", template: "Count: {{count}}", expected: "Count: 42"},
		{name: "bool", template: "{{ok}}", expected: "true"},
		{name: "nil value", template: "[{{empty}}]", expected: "[]"},
		{name: "repeated", template: "{{name}} and {{name}}", expected: "Ada and Ada"},
		{name: "unknown", template: "{{missing}} {{name}}", expected: "{{missing}} Ada"},
		{name: "whitespace not a token", template: "{{ name }}", expected: "{{ name }}"},
		{name: "unclosed", template: "{{name", expected: "{{name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderString(tt.template, vars); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRenderNodes_Nested(t *testing.T) {
	nodes := []domain.Node{
		{
			ID:   "n1",
			Type: domain.NodeTypeTrigger,
			Data: map[string]any{
				"headers": map[string]any{"Authorization": "Bearer {{token}}"},
				"targets": []any{"{{email}}", 7},
				"retries": 3,
			},
			Position: &domain.Position{X: 1, Y: 2},
		},
	}

	rendered := RenderNodes(nodes, map[string]any{"token": "t0k", "email": "a@b.c"})
	data := rendered[0].Data

	headers := data["headers"].(map[string]any)
	if headers["Authorization"] != "Bearer t0k" {
		t.Errorf("nested map not rendered: %v", headers["Authorization"])
	}
	targets := data["targets"].([]any)
	if targets[0] != "a@b.c" || targets[1] != 7 {
		t.Errorf("slice not rendered correctly: %v", targets)
	}
	if data["retries"] != 3 {
		t.Errorf("non-string values should be kept: %v", data["retries"])
	}

	rendered[0].Position.X = 100
	if nodes[0].Position.X != 1 {
		t.Error("position should be copied")
	}
}

func TestExtractTokens(t *testing.T) {
	nodes := []domain.Node{
		{ID: "n1", Type: domain.NodeTypeTrigger, Data: map[string]any{"event": "{{event}}"}},
		{ID: "n2", Data: map[string]any{
			"msg":  "Hello {{name}}, your {{event}} is ready",
			"meta": map[string]any{"to": "{{email}}"},
		}},
	}

	got := ExtractTokens(nodes)
	expected := []string{"email", "event", "name"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestExtractTokens_NoPlaceholders(t *testing.T) {
	nodes := []domain.Node{
		{ID: "n1", Type: domain.NodeTypeTrigger, Data: map[string]any{"msg": "static"}},
		{ID: "n2"},
	}

	if got := ExtractTokens(nodes); len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}

func TestMergeVariables(t *testing.T) {
	defaults := map[string]any{"name": "default", "lang": "en"}
	overrides := map[string]any{"name": "Ada"}

	merged := MergeVariables(defaults, overrides)
	if merged["name"] != "Ada" {
		t.Errorf("override should win, got %v", merged["name"])
	}
	if merged["lang"] != "en" {
		t.Errorf("default should be kept, got %v", merged["lang"])
	}
	if defaults["name"] != "default" {
		t.Error("defaults should not be modified")
	}

	if got := MergeVariables(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
