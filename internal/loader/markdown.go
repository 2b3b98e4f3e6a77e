package loader

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// extractMarkdown returns the readable text of a Markdown document: the
// syntax (heading markers, emphasis, link targets, fences, table pipes and
// raw HTML) is dropped and blocks are separated by newlines, top-level
// blocks by a blank line.
func extractMarkdown(src []byte) string {
	root := markdown.Parser().Parse(text.NewReader(src))

	var w textWriter
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch n.Kind() {
			case east.KindTableCell:
				w.space()
			case east.KindTableHeader, east.KindTableRow:
				w.endLine(false)
			default:
				if n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
					w.endLine(n.Parent() != nil && n.Parent().Kind() == ast.KindDocument)
				}
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			w.write(node.Segment.Value(src))
			if node.HardLineBreak() {
				w.endLine(false)
			} else if node.SoftLineBreak() {
				w.space()
			}
		case *ast.String:
			w.write(node.Value)
		case *ast.AutoLink:
			w.write(node.Label(src))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := range lines.Len() {
				seg := lines.At(i)
				w.write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML, *east.TaskCheckBox:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return string(bytes.TrimSpace(w.buf))
}

type textWriter struct {
	buf []byte
}

func (w *textWriter) write(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *textWriter) space() {
	if n := len(w.buf); n > 0 && w.buf[n-1] != ' ' && w.buf[n-1] != '\n' {
		w.buf = append(w.buf, ' ')
	}
}

// endLine trims trailing blanks and terminates the line. With blank set it
// leaves an empty line after it.
func (w *textWriter) endLine(blank bool) {
	w.buf = bytes.TrimRight(w.buf, " \t")
	if len(w.buf) == 0 {
		return
	}
	if w.buf[len(w.buf)-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	if blank && !bytes.HasSuffix(w.buf, []byte("\n\n")) {
		w.buf = append(w.buf, '\n')
	}
}
