package store

import "strings"

// escapeShellArg prepares s for embedding inside a double-quoted argument of
// an in-guest `sh -c` script. Backslash, double quote, backtick and the
// substitution sigil are the only characters sh treats specially inside
// double quotes, so each gets a backslash prefix. Embedded newlines are
// deliberately left untouched: argv reaches the guest shell as a single
// exec argument, so a literal newline inside the quotes is preserved in the
// written content without splitting the command. Single quotes need no
// treatment inside double quotes.
func escapeShellArg(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '"', '`', '$':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
