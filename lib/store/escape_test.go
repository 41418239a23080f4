package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeShellArg(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"double quote", `say "hi"`, `say \"hi\"`},
		{"backtick", "a `b` c", "a \\`b\\` c"},
		{"dollar", "$HOME and $(id)", `\$HOME and \$(id)`},
		{"backslash", `C:\temp`, `C:\\temp`},
		{"single quote untouched", "it's fine", "it's fine"},
		{"newline preserved", "line1\nline2", "line1\nline2"},
		{"everything", "\\\"`$\n", "\\\\\\\"\\`\\$\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, escapeShellArg(tt.in))
		})
	}
}
