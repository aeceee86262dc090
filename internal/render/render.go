// Package render implements the minimal template grammar used by notification
// emails: {{key}} placeholders and a single level of {{#if key}}...{{/if}}
// conditional blocks. No loops, no nesting, no escaping; values are inserted
// verbatim into the HTML body.
package render

import (
	"fmt"
	"strings"
)

const (
	ifOpenPrefix = "{{#if "
	ifOpenSuffix = "}}"
	ifClose      = "{{/if}}"
)

// Render resolves a template against a data map in two passes: conditional
// blocks first, then placeholder substitution. Placeholders whose key is
// missing from data are replaced by the empty string, delimiters included.
// Pure function: deterministic, no I/O.
func Render(template string, data map[string]interface{}) string {
	result := resolveConditionals(template, data)
	return substitutePlaceholders(result, data)
}

// resolveConditionals handles {{#if key}}...{{/if}}. A truthy key keeps the
// inner content (still subject to placeholder substitution); a falsy or
// absent key removes the whole block including delimiters.
func resolveConditionals(template string, data map[string]interface{}) string {
	var builder strings.Builder
	rest := template

	for {
		start := strings.Index(rest, ifOpenPrefix)
		if start == -1 {
			builder.WriteString(rest)
			break
		}

		keyEnd := strings.Index(rest[start+len(ifOpenPrefix):], ifOpenSuffix)
		if keyEnd == -1 {
			// Unterminated open tag, leave the remainder untouched.
			builder.WriteString(rest)
			break
		}
		key := strings.TrimSpace(rest[start+len(ifOpenPrefix) : start+len(ifOpenPrefix)+keyEnd])
		bodyStart := start + len(ifOpenPrefix) + keyEnd + len(ifOpenSuffix)

		end := strings.Index(rest[bodyStart:], ifClose)
		if end == -1 {
			// Open tag without a close, leave the remainder untouched.
			builder.WriteString(rest)
			break
		}

		builder.WriteString(rest[:start])
		if isTruthy(data[key]) {
			builder.WriteString(rest[bodyStart : bodyStart+end])
		}
		rest = rest[bodyStart+end+len(ifClose):]
	}

	return builder.String()
}

// substitutePlaceholders replaces every {{key}} present in data with its
// string form, then strips any leftover {{...}} tokens to empty.
func substitutePlaceholders(template string, data map[string]interface{}) string {
	result := template

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		result = strings.ReplaceAll(result, placeholder, formatValue(v))
	}

	// Remove any remaining placeholders (missing values).
	// This handles {{missing}} -> empty string.
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		// Whole numbers print without a decimal point (party sizes, counts).
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func isTruthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}
