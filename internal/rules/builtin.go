package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/lintdoc/internal/document"
)

// Settings configures the built-in rules and adds custom ones.
type Settings struct {
	RequiredSections []string
	AllowEmpty       []string
	MaxSectionTokens int
	Disabled         []string
	Custom           []CustomRule
}

// DefaultSettings returns the rule set for a hexagonal architecture guide.
func DefaultSettings() Settings {
	return Settings{
		RequiredSections: []string{
			"Application Core",
			"Primary Ports",
			"Secondary Ports",
			"Primary Adapters",
			"Secondary Adapters",
		},
		AllowEmpty:       []string{"Links"},
		MaxSectionTokens: 1500,
	}
}

// Builtins lists the built-in rule names in evaluation order.
var Builtins = []string{
	"required-sections",
	"primary-ports-dto",
	"secondary-ports-dto",
	"mapping-table",
	"mapping-consistency",
	"table-structure",
	"unique-headings",
	"empty-sections",
	"section-size",
	"glossary-usage",
}

// Build returns the enabled built-in rules followed by the custom rules.
func Build(s Settings) ([]Rule, error) {
	all := []Rule{
		RequiredSections(s.RequiredSections),
		PortDTO("primary-ports-dto", "Primary Port"),
		PortDTO("secondary-ports-dto", "Secondary Port"),
		MappingTable(),
		MappingConsistency(),
		TableStructure(),
		UniqueHeadings(),
		EmptySections(s.AllowEmpty),
		SectionSize(s.MaxSectionTokens),
		GlossaryUsage(),
	}

	names := make(map[string]bool, len(all)+len(s.Custom))
	for _, r := range all {
		names[r.Name()] = true
	}
	for _, c := range s.Custom {
		r, err := c.Compile()
		if err != nil {
			return nil, err
		}
		if names[r.Name()] {
			return nil, fmt.Errorf("duplicate rule name %q", r.Name())
		}
		names[r.Name()] = true
		all = append(all, r)
	}

	for _, d := range s.Disabled {
		if !names[d] {
			return nil, fmt.Errorf("cannot disable unknown rule %q", d)
		}
	}

	enabled := all[:0]
	for _, r := range all {
		if !slices.Contains(s.Disabled, r.Name()) {
			enabled = append(enabled, r)
		}
	}
	return enabled, nil
}

// RequiredSections checks that every term names at least one heading.
func RequiredSections(terms []string) Rule {
	return New("required-sections", "required architecture sections are present",
		func(doc *document.Document) Result {
			if len(terms) == 0 {
				return pass("no required sections configured")
			}
			var missing []string
			for _, term := range terms {
				found := false
				for s := range doc.Sections() {
					if headingMatches(s.Heading, term) {
						found = true
						break
					}
				}
				if !found {
					missing = append(missing, term)
				}
			}
			if len(missing) > 0 {
				return fail(missing, "missing %d of %d required sections", len(missing), len(terms))
			}
			return pass("all %d required sections present", len(terms))
		})
}

// PortDTO checks that every section about term mentions a DTO in its body
// or nested subsections.
func PortDTO(name, term string) Rule {
	return New(name, fmt.Sprintf("every %s section mentions a DTO", term),
		func(doc *document.Document) Result {
			matched := 0
			var missing []string
			for i := range doc.Len() {
				s := doc.At(i)
				if !headingMatches(s.Heading, term) {
					continue
				}
				matched++
				if !mentionsDTO(doc.Scope(i)) {
					missing = append(missing, describe(s))
				}
			}
			switch {
			case matched == 0:
				return fail(nil, "no %s section found", term)
			case len(missing) > 0:
				return fail(missing, "%d of %d %s sections do not mention a DTO", len(missing), matched, term)
			}
			return pass("%d %s section(s) mention a DTO", matched, term)
		})
}

// MappingTable requires a Source/Target table with at least one row.
func MappingTable() Rule {
	return New("mapping-table", "a DTO mapping table with Source and Target columns exists",
		func(doc *document.Document) Result {
			tables := doc.Tables()
			mappings := mappingTables(tables)
			if len(mappings) == 0 {
				if len(tables) > 0 {
					return fail(nil, "no DTO mapping table found (%d table(s) lack Source/Target columns)", len(tables))
				}
				return fail(nil, "no DTO mapping table found")
			}
			rows := 0
			for _, t := range mappings {
				rows += len(t.Rows)
			}
			if rows == 0 {
				return fail(nil, "DTO mapping table has no rows")
			}
			return pass("%d mapping table(s), %d row(s)", len(mappings), rows)
		})
}

// MappingConsistency checks each mapping row's Source and Target against the
// document prose.
func MappingConsistency() Rule {
	return New("mapping-consistency", "every mapping row's Source and Target appear in prose",
		func(doc *document.Document) Result {
			mappings := mappingTables(doc.Tables())
			if len(mappings) == 0 {
				return pass("no mapping table to check")
			}

			prose := plain(doc.Prose())
			var missing, incomplete []string
			checked := 0
			for _, t := range mappings {
				src, dst := mappingColumn(t.Header, "source"), mappingColumn(t.Header, "target")
				for i, row := range t.Rows {
					for _, col := range []struct {
						name string
						idx  int
					}{{"Source", src}, {"Target", dst}} {
						if col.idx >= len(row) || strings.TrimSpace(row[col.idx]) == "" {
							incomplete = append(incomplete, fmt.Sprintf("line %d row %d: empty %s cell", t.Line, i+1, col.name))
							continue
						}
						checked++
						v := row[col.idx]
						if !strings.Contains(prose, plain(v)) {
							missing = append(missing, fmt.Sprintf("line %d row %d: %s %q not mentioned in prose", t.Line, i+1, col.name, v))
						}
					}
				}
			}

			if len(missing) > 0 {
				return fail(append(missing, incomplete...), "%d mapping value(s) not mentioned in prose", len(missing))
			}
			if len(incomplete) > 0 {
				return warn(incomplete, "%d mapping cell(s) empty", len(incomplete))
			}
			return pass("%d mapping value(s) found in prose", checked)
		})
}

// TableStructure flags unknown or malformed tables as warnings.
func TableStructure() Rule {
	return New("table-structure", "tables are well-formed",
		func(doc *document.Document) Result {
			tables := doc.Tables()
			if len(tables) == 0 {
				return pass("no tables")
			}
			var issues []string
			for _, t := range tables {
				if t.Malformed() {
					issues = append(issues, fmt.Sprintf("line %d: %s", t.Line, t.Issue))
					continue
				}
				if slices.Contains(t.Header, "") {
					issues = append(issues, fmt.Sprintf("line %d: empty header cell", t.Line))
				}
			}
			if len(issues) > 0 {
				return warn(issues, "%d of %d table(s) malformed", len(issues), len(tables))
			}
			return pass("%d table(s) well-formed", len(tables))
		})
}

// UniqueHeadings reports headings that had to be renamed on load.
func UniqueHeadings() Rule {
	return New("unique-headings", "section headings are unique",
		func(doc *document.Document) Result {
			var repeats []string
			for s := range doc.Sections() {
				if s.Occurrence > 1 {
					repeats = append(repeats, fmt.Sprintf("%q repeated at line %d (renamed to %q)", s.Original, s.Line, s.Heading))
				}
			}
			if len(repeats) > 0 {
				return warn(repeats, "%d repeated heading(s)", len(repeats))
			}
			return pass("%d unique heading(s)", doc.Len())
		})
}

// EmptySections warns about heading-only sections with no subsections,
// except headings matching allow.
func EmptySections(allow []string) Rule {
	return New("empty-sections", "sections have content",
		func(doc *document.Document) Result {
			var empty []string
			for i := range doc.Len() {
				s := doc.At(i)
				if s.Body != "" || len(s.Tables) > 0 || doc.HasChildren(i) {
					continue
				}
				if slices.ContainsFunc(allow, func(a string) bool { return headingMatches(s.Heading, a) }) {
					continue
				}
				empty = append(empty, describe(s))
			}
			if len(empty) > 0 {
				return warn(empty, "%d empty section(s)", len(empty))
			}
			return pass("no unexpected empty sections")
		})
}

// SectionSize warns when a section body exceeds max estimated tokens.
func SectionSize(max int) Rule {
	return New("section-size", fmt.Sprintf("section bodies stay under %d tokens", max),
		func(doc *document.Document) Result {
			if max <= 0 {
				return pass("no size limit configured")
			}
			var large []string
			for s := range doc.Sections() {
				if n := EstimateTokens(s.Body); n > max {
					large = append(large, fmt.Sprintf("%s: ~%d tokens", describe(s), n))
				}
			}
			if len(large) > 0 {
				return warn(large, "%d section(s) over %d tokens", len(large), max)
			}
			return pass("all sections under %d tokens", max)
		})
}

// GlossaryUsage warns about glossary terms never used outside the glossary.
func GlossaryUsage() Rule {
	return New("glossary-usage", "glossary terms are used in the document",
		func(doc *document.Document) Result {
			var terms []string
			var rest []string
			if doc.Preamble() != "" {
				rest = append(rest, doc.Preamble())
			}
			glossaries := 0
			for s := range doc.Sections() {
				if headingMatches(s.Heading, "glossary") {
					glossaries++
					terms = append(terms, glossaryTerms(s.Body)...)
					continue
				}
				rest = append(rest, s.Heading, s.Body)
			}
			if glossaries == 0 {
				return pass("no glossary section")
			}

			text := plain(strings.Join(rest, "\n"))
			var unused []string
			for _, term := range terms {
				if !strings.Contains(text, plain(term)) {
					unused = append(unused, term)
				}
			}
			if len(unused) > 0 {
				return warn(unused, "%d of %d glossary term(s) unused", len(unused), len(terms))
			}
			return pass("%d glossary term(s) used", len(terms))
		})
}

// glossaryTerms reads "Term: definition" lines, ignoring list bullets.
func glossaryTerms(body string) []string {
	var terms []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*+"))
		term, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		term = strings.Trim(strings.TrimSpace(term), "*_`")
		if term == "" || len(strings.Fields(term)) > 5 {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

func mappingTables(tables []document.Table) []document.Table {
	var out []document.Table
	for _, t := range tables {
		if mappingColumn(t.Header, "source") >= 0 && mappingColumn(t.Header, "target") >= 0 {
			out = append(out, t)
		}
	}
	return out
}

func describe(s document.Section) string {
	if s.Line > 0 {
		return fmt.Sprintf("%q (line %d)", s.Heading, s.Line)
	}
	return fmt.Sprintf("%q", s.Heading)
}
