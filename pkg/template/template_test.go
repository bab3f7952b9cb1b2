package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	payload := map[string]any{
		"name":   "Ada",
		"budget": 5000,
		"score":  98.5,
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single placeholder", "Hello {{name}}!", "Hello Ada!"},
		{"multiple placeholders", "{{name}} has budget {{budget}}", "Ada has budget 5000"},
		{"numeric value", "score: {{score}}", "score: 98.5"},
		{"whitespace inside braces", "Hi {{ name }}", "Hi Ada"},
		{"unknown key renders empty", "Hi {{nickname}}!", "Hi !"},
		{"no placeholders untouched", "plain text", "plain text"},
		{"repeated key", "{{name}} {{name}}", "Ada Ada"},
		{"dotted key", "{{contact.email}}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.input, payload))
		})
	}
}

func TestRender_NilPayload(t *testing.T) {
	assert.Equal(t, "Hello !", Render("Hello {{name}}!", nil))
}
