package events

import (
	"strings"
	"unicode/utf8"
)

// Unescape repairs an app message that arrived JSON-string encoded as a whole.
// It strips one pair of surrounding double quotes and undoes one level of
// backslash escaping. Payloads escaped more than once are not repaired.
//
// When data is not valid UTF-8 it is returned unchanged with ok set to false.
func Unescape(data []byte) (repaired []byte, text string, ok bool) {
	if !utf8.Valid(data) {
		return data, "", false
	}

	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, `\\`, `\`)
	s = strings.ReplaceAll(s, `\"`, `"`)

	return []byte(s), s, true
}
