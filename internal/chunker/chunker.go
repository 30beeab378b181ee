package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"codeberg.org/askdocs/server/internal/logger"
)

const DefaultMinChunkChars = 1024

func DefaultOptions() Options {
	return Options{
		HeadingBoundaries: true,
		MinChunkChars:     DefaultMinChunkChars,
	}
}

var errInvalidUTF8 = errors.New("document is not valid utf-8")

// splits a document into ordered chunk texts: first by structure, then
// coalesced by size. empty documents produce no chunks.
func Split(kind Kind, src string, opts Options) ([]string, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}

	if !utf8.ValidString(src) {
		return nil, errInvalidUTF8
	}

	var segments []string

	switch kind {
	case KindMarkdown:
		segments = markdownSegments(src, opts.HeadingBoundaries)
	case KindGo:
		var err error
		segments, err = goSegments(src)
		if err != nil {
			return nil, err
		}
	case KindDiff:
		segments = diffSegments(src)
	default:
		return nil, fmt.Errorf("unsupported document kind %s", kind)
	}

	return coalesce(segments, opts.MinChunkChars), nil
}

// chunks a single document, failing as a unit with a *ParseError
func ChunkDocument(doc Document, opts Options) ([]Chunk, error) {
	kind, ok := KindFromPath(doc.Path)
	if !ok {
		return nil, &ParseError{Path: doc.Path, Err: errors.New("unsupported file extension")}
	}

	texts, err := Split(kind, doc.Content, opts)
	if err != nil {
		return nil, &ParseError{Path: doc.Path, Err: err}
	}

	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{
			SourcePath:    doc.Path,
			Text:          t,
			SequenceIndex: i,
		}
	}

	return chunks, nil
}

// chunks every document, skipping the ones that fail.
// returns chunks and a slice of errors encountered (one per failed document)
func ChunkDocuments(docs []Document, opts Options) ([]Chunk, []error) {
	var allChunks []Chunk
	var errs []error

	for _, doc := range docs {
		chunks, err := ChunkDocument(doc, opts)
		if err != nil {
			logger.Warn("failed to chunk document",
				"path", doc.Path,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}

		allChunks = append(allChunks, chunks...)
	}

	logger.Info("processed documents",
		"document_count", len(docs),
		"chunks_generated", len(allChunks),
		"errors", len(errs),
	)

	return allChunks, errs
}
