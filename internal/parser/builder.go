package parser

import (
	"fmt"
	"strings"

	"github.com/dgallion1/lintdoc/internal/document"
)

// builder accumulates sections the way every format walks its input:
// headings open a section, text and tables attach to the open one.
type builder struct {
	preamble strings.Builder
	sections []document.Section
	pending  []document.Table // tables seen before the first heading
	current  strings.Builder
}

func (b *builder) heading(title string, level, line int) {
	b.flush()
	s := document.Section{Heading: title, Level: level, Line: line}
	if len(b.sections) == 0 {
		s.Tables = b.pending
		b.pending = nil
	}
	b.sections = append(b.sections, s)
}

func (b *builder) text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.current.Len() > 0 {
		b.current.WriteString("\n\n")
	}
	b.current.WriteString(t)
}

func (b *builder) table(t document.Table) {
	if len(b.sections) == 0 {
		b.pending = append(b.pending, t)
		return
	}
	top := &b.sections[len(b.sections)-1]
	top.Tables = append(top.Tables, t)
}

func (b *builder) flush() {
	t := strings.TrimSpace(b.current.String())
	b.current.Reset()
	if t == "" {
		return
	}
	if len(b.sections) == 0 {
		if b.preamble.Len() > 0 {
			b.preamble.WriteString("\n\n")
		}
		b.preamble.WriteString(t)
		return
	}
	top := &b.sections[len(b.sections)-1]
	if top.Body != "" {
		top.Body += "\n\n" + t
	} else {
		top.Body = t
	}
}

func (b *builder) document(title string) *document.Document {
	b.flush()
	return document.New(title, b.preamble.String(), b.sections)
}

// checkRagged flags rows whose width differs from the header.
func checkRagged(t *document.Table) {
	if t.Issue != "" {
		return
	}
	if len(t.Header) == 0 {
		t.Issue = "table has no header row"
		return
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			t.Issue = fmt.Sprintf("row %d has %d cells, header has %d", i+1, len(row), len(t.Header))
			return
		}
	}
}
