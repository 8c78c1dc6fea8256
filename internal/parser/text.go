package parser

import (
	"bytes"
	"io"
	"iter"
	"regexp"
	"strings"

	"github.com/dgallion1/lintdoc/internal/document"
)

// TextParser handles plain text where headings are lines starting with '#'.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseText(src, titleFromFilename(filename)), nil
}

// Sections splits src at heading markers. Nothing is scanned until the
// sequence is ranged over, and every range starts again from the top.
func Sections(src []byte) iter.Seq[document.Section] {
	return func(yield func(document.Section) bool) {
		scanText(src, nil, yield)
	}
}

func parseText(src []byte, title string) *document.Document {
	var preamble string
	var sections []document.Section
	scanText(src, func(s string) { preamble = s }, func(s document.Section) bool {
		sections = append(sections, s)
		return true
	})
	return document.New(title, preamble, sections)
}

// headingMarker matches ATX-style headings: 1-6 '#', then a space or EOL,
// with an optional closing run of '#'.
var headingMarker = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?(?:[ \t]+#+)?[ \t]*$`)

var delimiterCell = regexp.MustCompile(`^:?-+:?$`)

type sourceLine struct {
	text string
	no   int
}

func scanText(src []byte, preamble func(string), yield func(document.Section) bool) {
	var (
		cur     *document.Section
		body    []string
		pre     []string
		fence   string
		rows    []sourceLine
		pending []document.Table
		lineNo  int
	)

	appendBody := func(l string) {
		if cur == nil {
			pre = append(pre, l)
		} else {
			body = append(body, l)
		}
	}
	flushTable := func() {
		if len(rows) == 0 {
			return
		}
		t := parsePipeTable(rows)
		rows = nil
		if cur == nil {
			pending = append(pending, t)
		} else {
			cur.Tables = append(cur.Tables, t)
		}
	}
	emit := func() bool {
		if cur == nil {
			return true
		}
		cur.Body = strings.TrimSpace(strings.Join(body, "\n"))
		s := *cur
		cur, body = nil, nil
		return yield(s)
	}

	for raw := range bytes.Lines(src) {
		lineNo++
		l := strings.TrimRight(string(raw), "\r\n")
		trimmed := strings.TrimSpace(l)

		if fence != "" {
			if fenceCloses(trimmed, fence) {
				fence = ""
			}
			appendBody(l)
			continue
		}
		if f := fenceOpen(trimmed); f != "" {
			flushTable()
			fence = f
			appendBody(l)
			continue
		}
		if strings.HasPrefix(trimmed, "|") {
			rows = append(rows, sourceLine{text: trimmed, no: lineNo})
			continue
		}
		flushTable()

		if m := headingMarker.FindStringSubmatch(l); m != nil && headingText(m[2]) != "" {
			if !emit() {
				return
			}
			cur = &document.Section{
				Heading: headingText(m[2]),
				Level:   len(m[1]),
				Line:    lineNo,
				Tables:  pending,
			}
			pending = nil
			continue
		}
		appendBody(l)
	}
	flushTable()
	if !emit() {
		return
	}
	if preamble != nil {
		preamble(strings.TrimSpace(strings.Join(pre, "\n")))
	}
}

// fenceOpen returns the opening run of backticks or tildes, or "".
func fenceOpen(trimmed string) string {
	if !strings.HasPrefix(trimmed, "```") && !strings.HasPrefix(trimmed, "~~~") {
		return ""
	}
	n := len(trimmed) - len(strings.TrimLeft(trimmed, trimmed[:1]))
	return trimmed[:n]
}

// fenceCloses reports whether trimmed is a bare run of the fence character
// at least as long as the opening run. A line with an info string never
// closes a fence.
func fenceCloses(trimmed, fence string) bool {
	return len(trimmed) >= len(fence) && strings.Trim(trimmed, fence[:1]) == ""
}

// headingText trims a captured heading. A heading made only of '#' is
// a closing sequence with no text.
func headingText(s string) string {
	s = strings.TrimSpace(s)
	if strings.Trim(s, "#") == "" {
		return ""
	}
	return s
}

// parsePipeTable reads consecutive '|' lines as a GFM-style table.
func parsePipeTable(lines []sourceLine) document.Table {
	t := document.Table{
		Header: splitPipeRow(lines[0].text),
		Line:   lines[0].no,
	}
	rest := lines[1:]
	if len(rest) > 0 && isDelimiterRow(rest[0].text) {
		rest = rest[1:]
	} else {
		t.Issue = "missing delimiter row"
	}
	for _, l := range rest {
		t.Rows = append(t.Rows, splitPipeRow(l.text))
	}
	checkRagged(&t)
	return t
}

func splitPipeRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}

	var cells []string
	var cell strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' && i+1 < len(line) && line[i+1] == '|' {
			cell.WriteByte('|')
			i++
			continue
		}
		if c == '|' {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
			continue
		}
		cell.WriteByte(c)
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	return cells
}

func isDelimiterRow(line string) bool {
	cells := splitPipeRow(line)
	for _, c := range cells {
		if !delimiterCell.MatchString(c) {
			return false
		}
	}
	return len(cells) > 0
}
