package events

import "strings"

// free-form objects whose keys belong to the user, not to the wire schema
var verbatimKeys = map[string]bool{
	"metadata":   true,
	"parameters": true,
}

// normalizeKeys rewrites snake_case object keys to camelCase throughout v.
func normalizeKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			key := camelCase(k)
			if verbatimKeys[key] {
				out[key] = val
				continue
			}
			out[key] = normalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalizeKeys(val)
		}
		return out
	default:
		return v
	}
}

// camelCase converts snake_case to camelCase. Leading and trailing
// underscores are kept.
func camelCase(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}

	start := 0
	for start < len(s) && s[start] == '_' {
		start++
	}
	end := len(s)
	for end > start && s[end-1] == '_' {
		end--
	}
	if start == end {
		return s
	}

	parts := strings.Split(s[start:end], "_")
	var b strings.Builder
	b.WriteString(s[:start])
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	b.WriteString(s[end:])
	return b.String()
}
