package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/lintdoc/internal/document"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromFilename(filename)
	// Extract title from <title> tag if present.
	if t := findTitle(doc); t != "" {
		title = t
	}

	var (
		b   builder
		run strings.Builder // inline text since the last block boundary
	)
	flushRun := func() {
		b.text(strings.Join(strings.Fields(run.String()), " "))
		run.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			run.WriteString(n.Data)
			return
		case html.ElementNode:
			if level := headingLevel(n.Data); level > 0 {
				flushRun()
				if t := textContent(n); t != "" {
					b.heading(t, level, 0)
				}
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "title", "template":
				return
			case "table":
				flushRun()
				b.table(htmlTable(n))
				return
			case "br":
				run.WriteString(" ")
				return
			}
			if blockElements[n.Data] {
				flushRun()
				defer flushRun()
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	flushRun()

	return b.document(title), nil
}

// blockElements end a run of inline text.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"main": true, "aside": true, "blockquote": true, "pre": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"figure": true, "figcaption": true, "address": true, "hr": true,
}

// htmlTable reads the first row (or <thead>) as the header.
func htmlTable(n *html.Node) document.Table {
	var t document.Table
	first := true
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "table":
				// Nested tables are not part of this grid.
				continue
			case "tr":
				var cells []string
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						cells = append(cells, textContent(cell))
					}
				}
				if first {
					t.Header = cells
					first = false
				} else {
					t.Rows = append(t.Rows, cells)
				}
			default:
				visit(c)
			}
		}
	}
	visit(n)
	checkRagged(&t)
	return t
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
