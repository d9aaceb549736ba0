// Package sanitize turns raw tag values into filesystem-safe path segments.
package sanitize

import "strings"

const illegalChars = `[]\/:*?"<>|`

// Clean strips characters that are unsafe in file and directory names, then
// trims leading and trailing spaces and dots. An empty result means the input
// had no usable content; callers treat that as an absent value.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), " .")
}
