package parser

import (
	"bytes"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestDOCXParser_HeadingStylesAndTables(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().Style("Heading1").AddText("Application Core")
	w.AddParagraph().AddText("Business rules live here.")
	w.AddParagraph().Style("Heading2").AddText("Primary Ports")
	w.AddParagraph().AddText("Each port accepts a DTO.")

	tbl := w.AddTable(2, 2, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Source")
	tbl.TableRows[0].TableCells[1].AddParagraph().AddText("Target")
	tbl.TableRows[1].TableCells[0].AddParagraph().AddText("UserSettingsDTO")
	tbl.TableRows[1].TableCells[1].AddParagraph().AddText("UserSettings")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	p := &DOCXParser{}
	doc, err := p.Parse(&buf, "arch.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title() != "arch" {
		t.Errorf("expected title %q, got %q", "arch", doc.Title())
	}
	if doc.Len() != 2 {
		t.Fatalf("expected 2 sections, got %d", doc.Len())
	}
	core, ports := doc.At(0), doc.At(1)
	if core.Heading != "Application Core" || core.Level != 1 {
		t.Errorf("unexpected first section %+v", core)
	}
	if ports.Heading != "Primary Ports" || ports.Level != 2 {
		t.Errorf("unexpected second section %+v", ports)
	}
	if ports.Body != "Each port accepts a DTO." {
		t.Errorf("expected body %q, got %q", "Each port accepts a DTO.", ports.Body)
	}
	if len(ports.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(ports.Tables))
	}
	if got := ports.Tables[0].Rows[0][0]; got != "UserSettingsDTO" {
		t.Errorf("expected first cell %q, got %q", "UserSettingsDTO", got)
	}
}

func TestDOCXParser_NotAZip(t *testing.T) {
	p := &DOCXParser{}
	if _, err := p.Parse(bytes.NewReader([]byte("plain text")), "bad.docx"); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestDocxHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"heading 3", 3},
		{"Heading6", 6},
		{"Heading7", 0},
		{"Title", 1},
		{"Normal", 0},
	}
	for _, tt := range tests {
		para := &docx.Paragraph{}
		para.Style(tt.style)
		if got := docxHeadingLevel(para); got != tt.want {
			t.Errorf("style %q: expected level %d, got %d", tt.style, tt.want, got)
		}
	}
}
