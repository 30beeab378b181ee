package chunker

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var kindsByExt = map[string]Kind{
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".mdx":      KindMarkdown,
	".go":       KindGo,
	".diff":     KindDiff,
	".patch":    KindDiff,
}

// picks the splitter from the file extension
func KindFromPath(path string) (Kind, bool) {
	kind, ok := kindsByExt[strings.ToLower(filepath.Ext(path))]
	return kind, ok
}

// rough token count, ~4 characters per token
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// merges segments in order so every emitted chunk but the last reaches minChars
func coalesce(segments []string, minChars int) []string {
	var chunks []string
	var acc strings.Builder

	for _, seg := range segments {
		if acc.Len() > 0 && acc.Len() >= minChars {
			chunks = append(chunks, acc.String())
			acc.Reset()
		}

		acc.WriteString(seg)
	}

	if acc.Len() > 0 {
		chunks = append(chunks, acc.String())
	}

	return chunks
}

// cuts src at the given ascending offsets, dropping whitespace-only pieces
func cutAt(src string, offsets []int) []string {
	var segments []string

	for i, start := range offsets {
		end := len(src)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}

		if start >= end {
			continue
		}

		seg := src[start:end]
		if strings.TrimSpace(seg) == "" {
			continue
		}

		segments = append(segments, seg)
	}

	return segments
}

// packs texts in order into pieces of at most maxChars bytes, splitting
// oversized texts at rune boundaries
func Pack(texts []string, maxChars int) []string {
	if maxChars <= 0 {
		return texts
	}

	var out []string
	var acc strings.Builder

	flush := func() {
		if acc.Len() > 0 {
			out = append(out, acc.String())
			acc.Reset()
		}
	}

	for _, t := range texts {
		for len(t) > maxChars {
			flush()
			cut := maxChars
			for cut > 0 && !utf8.RuneStart(t[cut]) {
				cut--
			}
			if cut == 0 {
				// a single rune wider than maxChars
				_, cut = utf8.DecodeRuneInString(t)
			}
			out = append(out, t[:cut])
			t = t[cut:]
		}

		if acc.Len()+len(t) > maxChars {
			flush()
		}
		acc.WriteString(t)
	}

	flush()

	return out
}
