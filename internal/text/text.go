package text

import (
	"regexp"
	"unicode/utf8"
)

var (
	markdownLinkRegex   = regexp.MustCompile(`\[(?P<text>[^\]]+)\]\((?P<url>[^\)]+)\)`)
	multipleSpacesRegex = regexp.MustCompile(` {2,}`)
)

// replaces inline links with their text, "![alt](url)" becomes "!alt".
// reference-style links are left alone.
func RemoveMarkdownLinks(s string) string {
	return markdownLinkRegex.ReplaceAllString(s, "${text}")
}

// collapses runs of spaces into one. tabs and newlines are kept.
func ReplaceMultipleSpaces(s string) string {
	return multipleSpacesRegex.ReplaceAllString(s, " ")
}

// returns the longest prefix of s that is at most n bytes and ends on a rune boundary
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}

// returns the first n runes of s
func Left(s string, n int) string {
	if n <= 0 {
		return ""
	}

	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}

	return s
}
