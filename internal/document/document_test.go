package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew_BreadcrumbsFollowLevels(t *testing.T) {
	doc := New("arch", "", []Section{
		{Heading: "Architecture", Level: 1},
		{Heading: "Ports", Level: 2},
		{Heading: "Primary Ports", Level: 3},
		{Heading: "Adapters", Level: 2},
	})

	got := map[string][]string{}
	for s := range doc.Sections() {
		got[s.Heading] = s.Breadcrumb
	}
	want := map[string][]string{
		"Architecture":  nil,
		"Ports":         {"Architecture"},
		"Primary Ports": {"Architecture", "Ports"},
		"Adapters":      {"Architecture"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("breadcrumbs mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_DuplicateHeadingsBecomeUnique(t *testing.T) {
	doc := New("dup", "", []Section{
		{Heading: "Example", Level: 2},
		{Heading: "Example", Level: 2},
		{Heading: "Example (2)", Level: 2},
	})

	var headings []string
	var occurrences []int
	for s := range doc.Sections() {
		headings = append(headings, s.Heading)
		occurrences = append(occurrences, s.Occurrence)
	}
	if diff := cmp.Diff([]string{"Example", "Example (2)", "Example (2) (2)"}, headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 1}, occurrences); diff != "" {
		t.Errorf("occurrences mismatch (-want +got):\n%s", diff)
	}

	s, ok := doc.Lookup("Example (2)")
	if !ok {
		t.Fatal("expected lookup of renamed heading to succeed")
	}
	if s.Original != "Example" {
		t.Errorf("expected original %q, got %q", "Example", s.Original)
	}
}

func TestSections_Restartable(t *testing.T) {
	doc := New("r", "", []Section{
		{Heading: "A", Level: 1, Body: "a"},
		{Heading: "B", Level: 1, Body: "b"},
	})

	count := func() int {
		n := 0
		for range doc.Sections() {
			n++
		}
		return n
	}
	if first, second := count(), count(); first != 2 || second != 2 {
		t.Errorf("expected 2 sections on both passes, got %d and %d", first, second)
	}
}

func TestSections_CopiesCannotMutateDocument(t *testing.T) {
	doc := New("m", "", []Section{{
		Heading: "Mapping",
		Level:   1,
		Tables:  []Table{{Header: []string{"Source", "Target"}, Rows: [][]string{{"a", "b"}}}},
	}})

	for s := range doc.Sections() {
		s.Body = "changed"
		s.Tables[0].Rows[0][0] = "changed"
	}

	s := doc.At(0)
	if s.Body != "" {
		t.Errorf("expected body to stay empty, got %q", s.Body)
	}
	if s.Tables[0].Rows[0][0] != "a" {
		t.Errorf("expected table cell to stay %q, got %q", "a", s.Tables[0].Rows[0][0])
	}
}

func TestScope_IncludesNestedSubsections(t *testing.T) {
	doc := New("s", "", []Section{
		{Heading: "Primary Ports", Level: 2, Body: "Ports are interfaces."},
		{Heading: "Example", Level: 3, Body: "Takes an inbound DTO."},
		{Heading: "Secondary Ports", Level: 2, Body: "Outbound."},
	})

	scope := doc.Scope(0)
	want := "Ports are interfaces.\n\nTakes an inbound DTO."
	if scope != want {
		t.Errorf("expected scope %q, got %q", want, scope)
	}
	if !doc.HasChildren(0) {
		t.Error("expected first section to have children")
	}
	if doc.HasChildren(2) {
		t.Error("expected last section to have no children")
	}
}

func TestProse_ExcludesTables(t *testing.T) {
	doc := New("p", "Intro.", []Section{{
		Heading: "Mapping",
		Level:   1,
		Body:    "UserDTO maps to User.",
		Tables:  []Table{{Header: []string{"Source", "Target"}, Rows: [][]string{{"Hidden", "Cell"}}}},
	}})

	if got, want := doc.Prose(), "Intro.\n\nUserDTO maps to User."; got != want {
		t.Errorf("expected prose %q, got %q", want, got)
	}
	if n := len(doc.Tables()); n != 1 {
		t.Errorf("expected 1 table, got %d", n)
	}
}
