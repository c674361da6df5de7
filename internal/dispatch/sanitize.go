package dispatch

import "strings"

// DefaultMaxArgLength caps sanitized arguments when no limit is configured.
const DefaultMaxArgLength = 64

// Sanitize truncates s to max runes and replaces every rune outside
// [A-Za-z0-9_.] with '_'. The result is safe as a command argument or URL
// path segment.
func Sanitize(s string, max int) string {
	if max <= 0 {
		max = DefaultMaxArgLength
	}
	runes := []rune(s)
	if len(runes) > max {
		runes = runes[:max]
	}
	var b strings.Builder
	b.Grow(len(runes))
	for _, r := range runes {
		if allowed(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.':
		return true
	default:
		return false
	}
}
