// Package textutil sanitizes operator-supplied names for use as filesystem
// and workbook identifiers.
package textutil

import "strings"

// sheetNameLimit is the maximum sheet title length a workbook accepts.
const sheetNameLimit = 31

// SanitizeSheetName makes name safe to use as a workbook sheet title:
// characters a sheet title cannot contain are replaced, and the result is
// truncated to the workbook limit.
func SanitizeSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(name))

	if cleaned == "" {
		cleaned = "dish"
	}
	if len(cleaned) > sheetNameLimit {
		cleaned = cleaned[:sheetNameLimit]
	}
	return cleaned
}

// SanitizeFileName makes name safe to use as a single path segment.
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(name))

	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "unnamed"
	}
	return cleaned
}
