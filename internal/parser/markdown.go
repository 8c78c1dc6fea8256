package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/lintdoc/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark with GFM tables.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	var b builder
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, src)
			if title == "" {
				continue
			}
			b.heading(title, node.Level, lineOf(src, firstOffset(node)))

		case *east.Table:
			b.table(markdownTable(node, src))

		case *ast.Paragraph:
			// Pipe rows goldmark refused to read as a table.
			if lines := pipeLines(node, src); lines != nil {
				b.table(parsePipeTable(lines))
				continue
			}
			b.text(blockText(node, src))

		default:
			b.text(blockText(n, src))
		}
	}

	return b.document(titleFromFilename(filename)), nil
}

func markdownTable(n *east.Table, src []byte) document.Table {
	t := document.Table{Line: lineOf(src, firstOffset(n))}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, cellText(c, src))
		}
		if _, ok := row.(*east.TableHeader); ok {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	checkRagged(&t)
	return t
}

func cellText(c ast.Node, src []byte) string {
	if t := inlineText(c, src); t != "" {
		return t
	}
	return strings.TrimSpace(string(linesText(c, src)))
}

// pipeLines returns the paragraph's lines when every one starts with '|'.
func pipeLines(p *ast.Paragraph, src []byte) []sourceLine {
	lines := p.Lines()
	if lines.Len() == 0 {
		return nil
	}
	out := make([]sourceLine, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		l := strings.TrimSpace(string(seg.Value(src)))
		if !strings.HasPrefix(l, "|") {
			return nil
		}
		out = append(out, sourceLine{text: l, no: lineOf(src, seg.Start)})
	}
	return out
}

// blockText gets the plain text of a block node and its descendants.
func blockText(n ast.Node, src []byte) string {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return strings.TrimSpace(string(linesText(n, src)))
	case *ast.HTMLBlock, *ast.ThematicBreak:
		return ""
	}

	if fc := n.FirstChild(); fc != nil && fc.Type() == ast.TypeInline {
		return inlineText(n, src)
	}

	sep := "\n\n"
	switch n.(type) {
	case *ast.List, *ast.ListItem:
		sep = "\n"
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, sep)
}

// inlineText concatenates the inline children of n.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Value(src))
				if t.HardLineBreak() || t.SoftLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			case *ast.AutoLink:
				buf.Write(t.Label(src))
			case *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

func linesText(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

// firstOffset finds the first source offset covered by n or a descendant.
func firstOffset(n ast.Node) int {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start
	}
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off := firstOffset(c); off >= 0 {
			return off
		}
	}
	return -1
}

// lineOf converts a byte offset into a 1-based line number.
func lineOf(src []byte, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	return bytes.Count(src[:offset], []byte("\n")) + 1
}
