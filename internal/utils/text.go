package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanUTF8 removes invalid UTF8 sequences and NUL bytes, which Postgres text
// columns reject. The boolean reports whether anything was removed.
func CleanUTF8(input string) (string, bool) {
	needsCleaning := strings.Contains(input, "\x00") || !utf8.ValidString(input)

	if !needsCleaning {
		return input, false
	}

	cleaned := strings.ToValidUTF8(input, "")
	cleaned = strings.ReplaceAll(cleaned, "\x00", "")

	return cleaned, true
}

// CleanOptionalText trims and cleans user supplied free text. Blank input
// becomes nil so the column stores NULL.
func CleanOptionalText(input *string) *string {
	if input == nil {
		return nil
	}
	cleaned, _ := CleanUTF8(strings.TrimSpace(*input))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
