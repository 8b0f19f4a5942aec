package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseArguments decodes the JSON encoded arguments of a function call into a
// string map. Strings are kept as-is, null becomes the empty string and every
// other value is kept as its compact JSON text.
func ParseArguments(arguments string) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(arguments), &raw); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("invalid arguments: not an object")
	}

	args := make(map[string]string, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		switch {
		case bytes.Equal(v, []byte("null")):
			args[k] = ""
		case len(v) > 0 && v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return nil, fmt.Errorf("invalid argument %q: %w", k, err)
			}
			args[k] = s
		default:
			var buf bytes.Buffer
			if err := json.Compact(&buf, v); err != nil {
				return nil, fmt.Errorf("invalid argument %q: %w", k, err)
			}
			args[k] = buf.String()
		}
	}

	return args, nil
}
