package model

import (
	"strconv"
	"strings"
)

// Normalize lowercases s and collapses every run of characters outside
// [a-z0-9_] into a single underscore, trimming leading and trailing
// underscores. The result may be empty.
func Normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			if gap && b.Len() > 0 {
				b.WriteByte('_')
			}
			gap = false
			b.WriteRune(r)
		default:
			gap = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// NormalizeColumnName maps header text to a legal unquoted SQL identifier.
// An empty or digit-leading result gets a "col_" prefix.
func NormalizeColumnName(s string) string {
	return prefixIfNeeded(Normalize(s), "col_")
}

// NormalizeTableName maps a base file name (without extensions) to a legal
// unquoted SQL identifier. An empty or digit-leading result gets a "t_"
// prefix.
func NormalizeTableName(s string) string {
	return prefixIfNeeded(Normalize(s), "t_")
}

func prefixIfNeeded(name, prefix string) string {
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return prefix + name
	}
	return name
}

// NormalizeColumns maps every header entry to a unique identifier within
// the table. Collisions are resolved by appending _2, _3, ... in
// first-seen order, so the result is deterministic for a given header.
func NormalizeColumns(header Header) []string {
	seen := make(map[string]bool, len(header))
	names := make([]string, len(header))
	for i, h := range header {
		name := NormalizeColumnName(h)
		base := name
		for n := 2; seen[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}
