// Package conditions evaluates workflow conditions against event payloads.
//
// Evaluation is pure: no side effects, never panics. Unknown operators match
// permissively so that future operators never break an entire dispatch pass;
// this fallback is a deliberate, load-bearing policy.
package conditions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cadenzahq/cadenza/pkg/models"
)

// Matches reports whether every condition holds for the payload. An empty or
// nil condition list matches everything. Evaluation short-circuits on the
// first failing condition.
func Matches(conds []models.Condition, payload map[string]any) bool {
	for _, c := range conds {
		if !Match(c, payload) {
			return false
		}
	}

	return true
}

// Match evaluates a single condition against the payload.
func Match(c models.Condition, payload map[string]any) bool {
	fieldValue := payload[c.Field]

	switch c.Operator {
	case models.OperatorEquals:
		return stringify(fieldValue) == stringify(c.Value)
	case models.OperatorNotEquals:
		return stringify(fieldValue) != stringify(c.Value)
	case models.OperatorGreaterThan:
		left, right, ok := asNumbers(fieldValue, c.Value)

		return ok && left > right
	case models.OperatorLessThan:
		left, right, ok := asNumbers(fieldValue, c.Value)

		return ok && left < right
	case models.OperatorContains:
		return strings.Contains(
			strings.ToLower(stringify(fieldValue)),
			strings.ToLower(stringify(c.Value)),
		)
	default:
		// Permissive fallback: an operator this build does not know about
		// must not silently break the whole workflow dispatch pass.
		return true
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprintf("%v", v)
}

// asNumbers coerces both operands to float64. A value that cannot be coerced
// makes the numeric comparison fail rather than error.
func asNumbers(a, b any) (float64, float64, bool) {
	left, ok := asNumber(a)
	if !ok {
		return 0, 0, false
	}

	right, ok := asNumber(b)
	if !ok {
		return 0, 0, false
	}

	return left, right, true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)

		return parsed, err == nil
	case nil:
		return 0, false
	default:
		parsed, err := strconv.ParseFloat(stringify(v), 64)

		return parsed, err == nil
	}
}
