package tool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    map[string]string
		wantErr bool
	}{
		{name: "strings", in: `{"city":"Berlin","unit":"c"}`, want: map[string]string{"city": "Berlin", "unit": "c"}},
		{name: "scalars", in: `{"n": 42, "ok": true, "f": 1.5}`, want: map[string]string{"n": "42", "ok": "true", "f": "1.5"}},
		{name: "null", in: `{"x": null}`, want: map[string]string{"x": ""}},
		{name: "nested", in: `{"o": { "a": [1, 2] }}`, want: map[string]string{"o": `{"a":[1,2]}`}},
		{name: "escaped string", in: `{"q":"say \"hi\""}`, want: map[string]string{"q": `say "hi"`}},
		{name: "empty", in: `{}`, want: map[string]string{}},
		{name: "array", in: `[1,2]`, wantErr: true},
		{name: "null document", in: `null`, wantErr: true},
		{name: "garbage", in: `{`, wantErr: true},
		{name: "empty string", in: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArguments(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
