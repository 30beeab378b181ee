package chunker

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
)

// one segment per top-level declaration, doc comment included. the package
// clause and imports are not emitted.
func goSegments(src string) ([]string, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go source: %w", err)
	}

	tf := fset.File(file.Pos())

	var offsets []int

	for _, decl := range file.Decls {
		var pos token.Pos

		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok == token.IMPORT {
				continue
			}
			pos = d.Pos()
			if d.Doc != nil {
				pos = d.Doc.Pos()
			}
		case *ast.FuncDecl:
			pos = d.Pos()
			if d.Doc != nil {
				pos = d.Doc.Pos()
			}
		default:
			continue
		}

		offsets = append(offsets, lineStart(src, tf.Offset(pos)))
	}

	return cutAt(src, offsets), nil
}
