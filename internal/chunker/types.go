package chunker

import "fmt"

// selects the structural splitter for a document
type Kind int

const (
	KindMarkdown Kind = iota
	KindGo
	KindDiff
)

func (k Kind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindGo:
		return "go"
	case KindDiff:
		return "diff"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Options struct {
	// headings (markdown) open a new segment when true
	HeadingBoundaries bool
	// chunks shorter than this are merged with the next segment
	MinChunkChars int
}

// a raw input unit, only alive while it is being chunked
type Document struct {
	Path    string
	Content string
}

type Chunk struct {
	SourcePath    string
	Text          string
	SequenceIndex int
}

// returned when a document cannot be parsed; the whole document is skipped
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
