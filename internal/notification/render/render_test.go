package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tradekart/notifier/internal/notification/entity"
)

func TestRenderSubstitutesVariables(t *testing.T) {
	tpl := &entity.Template{
		Subject:   "Order {{orderId}}",
		Content:   "Hello {{name}}, your order {{orderId}} shipped",
		Variables: []string{"name", "orderId"},
	}

	got := Render(tpl, map[string]string{"name": "Ana", "orderId": "A-42"})
	assert.Equal(t, "Order A-42", got.Subject)
	assert.Equal(t, "Hello Ana, your order A-42 shipped", got.Body)
}

func TestRenderMissingVariableBecomesEmpty(t *testing.T) {
	tpl := &entity.Template{
		Content:   "Hello {{name}}, your order {{orderId}} shipped",
		Variables: []string{"name", "orderId"},
	}

	got := Render(tpl, map[string]string{"name": "Ana"})
	assert.Equal(t, "Hello Ana, your order  shipped", got.Body)
}

func TestRenderFallsBackToDefault(t *testing.T) {
	tpl := &entity.Template{
		Content:   "Hi {{name}}, see you at {{place}}",
		Variables: []string{"name", "place"},
		Defaults:  map[string]string{"place": "the market"},
	}

	got := Render(tpl, map[string]string{"name": "Bo"})
	assert.Equal(t, "Hi Bo, see you at the market", got.Body)

	// An explicit value still wins over the default.
	got = Render(tpl, map[string]string{"name": "Bo", "place": "warehouse 3"})
	assert.Equal(t, "Hi Bo, see you at warehouse 3", got.Body)
}

func TestRenderLeavesUndeclaredPlaceholders(t *testing.T) {
	tpl := &entity.Template{
		Content:   "Hello {{name}}, ref {{unknown}}",
		Variables: []string{"name"},
	}

	got := Render(tpl, map[string]string{"name": "Ana", "unknown": "x"})
	assert.Equal(t, "Hello Ana, ref {{unknown}}", got.Body)
}

func TestRenderIsPureAndIdempotent(t *testing.T) {
	tpl := &entity.Template{
		Subject:   "{{a}}",
		Content:   "{{a}} and {{b}}",
		Variables: []string{"a", "b"},
		Defaults:  map[string]string{"b": "two"},
	}
	vars := map[string]string{"a": "one"}

	first := Render(tpl, vars)
	second := Render(tpl, vars)
	assert.Equal(t, first, second)

	// The template itself is untouched.
	assert.Equal(t, "{{a}} and {{b}}", tpl.Content)
	assert.Equal(t, "{{a}}", tpl.Subject)
	assert.Equal(t, []string{"a", "b"}, tpl.Variables)
	assert.Equal(t, map[string]string{"b": "two"}, tpl.Defaults)
}

func TestRenderNilTemplate(t *testing.T) {
	assert.Equal(t, Rendered{}, Render(nil, map[string]string{"a": "1"}))
}

func TestRenderString(t *testing.T) {
	got := RenderString("{{a}}-{{a}}", []string{"a"}, nil, map[string]string{"a": "x"})
	assert.Equal(t, "x-x", got)

	got = RenderString("plain", nil, nil, nil)
	assert.Equal(t, "plain", got)
}
