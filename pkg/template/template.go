// Package template renders {{key}} placeholders in message subjects, bodies
// and targets from event payloads.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// Render replaces every {{key}} placeholder with the stringified payload
// value for that key. Unknown keys render as the empty string; the input is
// returned unchanged when it contains no placeholders.
func Render(input string, payload map[string]any) string {
	if !strings.Contains(input, "{{") {
		return input
	}

	return placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]

		value, ok := payload[key]
		if !ok || value == nil {
			return ""
		}

		return fmt.Sprintf("%v", value)
	})
}
