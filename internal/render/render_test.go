package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_ReplacesKnownPlaceholders(t *testing.T) {
	out := Render("Hello {{guestName}}, table for {{partySize}}.", map[string]interface{}{
		"guestName": "Ana",
		"partySize": 2,
	})
	assert.Equal(t, "Hello Ana, table for 2.", out)
}

func TestRender_ReplacesEveryOccurrence(t *testing.T) {
	out := Render("{{name}} and {{name}} again", map[string]interface{}{
		"name": "Ana",
	})
	assert.Equal(t, "Ana and Ana again", out)
}

func TestRender_UnknownPlaceholderBecomesEmpty(t *testing.T) {
	out := Render("Hi {{guestName}}, note: {{missing}}!", map[string]interface{}{
		"guestName": "Ana",
	})
	assert.Equal(t, "Hi Ana, note: !", out)
}

func TestRender_JSONNumbersPrintWithoutDecimal(t *testing.T) {
	// A JSON-decoded data map carries numbers as float64.
	out := Render("Party of {{partySize}}", map[string]interface{}{
		"partySize": float64(4),
	})
	assert.Equal(t, "Party of 4", out)
}

func TestRender_ConditionalKeptWhenTruthy(t *testing.T) {
	tmpl := "Booking confirmed.{{#if notes}} Special Requests: {{notes}}{{/if}}"
	out := Render(tmpl, map[string]interface{}{
		"notes": "Window seat please",
	})
	assert.Equal(t, "Booking confirmed. Special Requests: Window seat please", out)
}

func TestRender_ConditionalRemovedWhenFalsy(t *testing.T) {
	tmpl := "Booking confirmed.{{#if notes}} Special Requests: {{notes}}{{/if}}"

	for name, data := range map[string]map[string]interface{}{
		"empty string": {"notes": ""},
		"whitespace":   {"notes": "   "},
		"absent":       {},
		"nil":          {"notes": nil},
		"false":        {"notes": false},
		"zero":         {"notes": 0},
	} {
		out := Render(tmpl, data)
		assert.Equal(t, "Booking confirmed.", out, name)
		assert.NotContains(t, out, "{{", name)
		assert.NotContains(t, out, "Special Requests", name)
	}
}

func TestRender_MultipleConditionals(t *testing.T) {
	tmpl := "{{#if a}}A{{/if}}-{{#if b}}B{{/if}}"
	out := Render(tmpl, map[string]interface{}{"a": "yes"})
	assert.Equal(t, "A-", out)
}

func TestRender_ConditionalInnerPlaceholdersRendered(t *testing.T) {
	tmpl := "{{#if show}}Hello {{name}}{{/if}}"
	out := Render(tmpl, map[string]interface{}{
		"show": true,
		"name": "Ana",
	})
	assert.Equal(t, "Hello Ana", out)
}

func TestRender_UnterminatedConditionalLeftAlone(t *testing.T) {
	tmpl := "before {{#if notes}} no close"
	out := Render(tmpl, map[string]interface{}{"notes": "x"})
	// The malformed block is not expanded, and the leftover-token pass strips
	// the dangling open tag.
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "no close")
}

func TestRender_NoDataLeavesPlainTextIntact(t *testing.T) {
	out := Render("Just plain text.", nil)
	assert.Equal(t, "Just plain text.", out)
}

func TestRender_Deterministic(t *testing.T) {
	tmpl := "{{a}}{{b}}{{#if c}}{{c}}{{/if}}"
	data := map[string]interface{}{"a": "1", "b": "2", "c": "3"}
	first := Render(tmpl, data)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Render(tmpl, data))
	}
}
