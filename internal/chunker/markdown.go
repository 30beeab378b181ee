package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New().Parser()

// splits at the line of every top-level heading. the heading stays with the
// content that follows it.
func markdownSegments(src string, headingBoundaries bool) []string {
	if !headingBoundaries {
		return cutAt(src, []int{0})
	}

	source := []byte(src)
	doc := markdownParser.Parse(gmtext.NewReader(source))

	offsets := []int{0}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() != ast.KindHeading {
			continue
		}

		lines := n.Lines()
		if lines.Len() == 0 {
			// empty heading ("#"), nothing to anchor on
			continue
		}

		start := lineStart(src, lines.At(0).Start)
		if start > offsets[len(offsets)-1] {
			offsets = append(offsets, start)
		}
	}

	return cutAt(src, offsets)
}

func lineStart(src string, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}

	return strings.LastIndexByte(src[:pos], '\n') + 1
}
