package chunker

import "strings"

const diffFileHeader = "diff --git "

// one segment per file section of a unified diff
func diffSegments(src string) []string {
	offsets := []int{0}

	pos := 0
	for pos < len(src) {
		if strings.HasPrefix(src[pos:], diffFileHeader) && pos > 0 {
			offsets = append(offsets, pos)
		}

		next := strings.IndexByte(src[pos:], '\n')
		if next < 0 {
			break
		}
		pos += next + 1
	}

	return cutAt(src, offsets)
}
