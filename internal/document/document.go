package document

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Document is a loaded architecture description. It is immutable: accessors
// hand out copies, so rules can never change what another rule sees.
type Document struct {
	title    string
	preamble string
	sections []Section
	index    map[string]int
}

// Section is one heading and the text that follows it up to the next heading.
type Section struct {
	Heading    string   // Unique within the document
	Original   string   // Heading as written in the source
	Occurrence int      // 1 for the first section with this Original heading
	Level      int      // 1-6
	Body       string   // Prose below the heading, tables excluded
	Line       int      // 1-based source line of the heading (0 if unknown)
	Breadcrumb []string // Enclosing headings, outermost first
	Tables     []Table
}

// Table is a grid found in a section body.
type Table struct {
	Header []string
	Rows   [][]string
	Line   int
	Issue  string // Non-empty when the table could not be read cleanly
}

// Malformed reports whether the extractor flagged the table.
func (t Table) Malformed() bool {
	return t.Issue != ""
}

// New builds a Document from extracted sections. Repeated headings are
// suffixed with " (2)", " (3)"... and breadcrumbs are derived from levels.
func New(title, preamble string, sections []Section) *Document {
	d := &Document{
		title:    title,
		preamble: strings.TrimSpace(preamble),
		sections: make([]Section, 0, len(sections)),
		index:    make(map[string]int, len(sections)),
	}

	type stackEntry struct {
		heading string
		level   int
	}
	var stack []stackEntry
	seen := make(map[string]int)

	for _, s := range sections {
		s = s.clone()
		if s.Original == "" {
			s.Original = s.Heading
		}
		if s.Level < 1 {
			s.Level = 1
		}
		s.Body = strings.TrimSpace(s.Body)

		seen[s.Original]++
		s.Occurrence = seen[s.Original]
		s.Heading = s.Original
		if s.Occurrence > 1 {
			s.Heading = fmt.Sprintf("%s (%d)", s.Original, s.Occurrence)
		}
		// A literal "X (2)" heading can collide with a renamed repeat of "X".
		for n := s.Occurrence + 1; d.has(s.Heading); n++ {
			s.Heading = fmt.Sprintf("%s (%d)", s.Original, n)
		}

		for len(stack) > 0 && stack[len(stack)-1].level >= s.Level {
			stack = stack[:len(stack)-1]
		}
		s.Breadcrumb = nil
		for _, e := range stack {
			s.Breadcrumb = append(s.Breadcrumb, e.heading)
		}
		stack = append(stack, stackEntry{heading: s.Heading, level: s.Level})

		d.index[s.Heading] = len(d.sections)
		d.sections = append(d.sections, s)
	}
	return d
}

func (d *Document) has(heading string) bool {
	_, ok := d.index[heading]
	return ok
}

// Title returns the document title (from metadata or filename).
func (d *Document) Title() string { return d.title }

// Preamble returns the text that precedes the first heading.
func (d *Document) Preamble() string { return d.preamble }

// Len returns the number of sections.
func (d *Document) Len() int { return len(d.sections) }

// Sections yields every section in source order. The sequence can be ranged
// over any number of times.
func (d *Document) Sections() iter.Seq[Section] {
	return func(yield func(Section) bool) {
		for _, s := range d.sections {
			if !yield(s.clone()) {
				return
			}
		}
	}
}

// At returns the i-th section.
func (d *Document) At(i int) Section {
	return d.sections[i].clone()
}

// Lookup finds a section by its unique heading.
func (d *Document) Lookup(heading string) (Section, bool) {
	i, ok := d.index[heading]
	if !ok {
		return Section{}, false
	}
	return d.sections[i].clone(), true
}

// Scope returns the body of section i together with the bodies of every
// nested subsection below it.
func (d *Document) Scope(i int) string {
	s := d.sections[i]
	parts := []string{s.Body}
	for _, sub := range d.sections[i+1:] {
		if sub.Level <= s.Level {
			break
		}
		parts = append(parts, sub.Body)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// HasChildren reports whether section i has nested subsections.
func (d *Document) HasChildren(i int) bool {
	return i+1 < len(d.sections) && d.sections[i+1].Level > d.sections[i].Level
}

// Tables returns every table in the document in source order.
func (d *Document) Tables() []Table {
	var out []Table
	for _, s := range d.sections {
		for _, t := range s.Tables {
			out = append(out, t.clone())
		}
	}
	return out
}

// Prose returns the preamble and all section bodies joined, tables excluded.
func (d *Document) Prose() string {
	parts := make([]string, 0, len(d.sections)+1)
	if d.preamble != "" {
		parts = append(parts, d.preamble)
	}
	for _, s := range d.sections {
		if s.Body != "" {
			parts = append(parts, s.Body)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (s Section) clone() Section {
	s.Breadcrumb = slices.Clone(s.Breadcrumb)
	if s.Tables != nil {
		tables := make([]Table, len(s.Tables))
		for i, t := range s.Tables {
			tables[i] = t.clone()
		}
		s.Tables = tables
	}
	return s
}

func (t Table) clone() Table {
	t.Header = slices.Clone(t.Header)
	if t.Rows != nil {
		rows := make([][]string, len(t.Rows))
		for i, r := range t.Rows {
			rows[i] = slices.Clone(r)
		}
		t.Rows = rows
	}
	return t
}
