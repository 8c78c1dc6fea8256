package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/lintdoc/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available. Headings come from the PDF
// outline when one exists, otherwise from '#' markers in the text.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "lintdoc-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, outline, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	src := markOutlineHeadings(strings.ReplaceAll(text, "\f", "\n"), outline)
	return parseText([]byte(src), titleFromFilename(filename)), nil
}

type outlineEntry struct {
	title string
	level int
}

func extractPDFText(path string) (text string, outline []outlineEntry, err error) {
	defer func() {
		// The PDF reader panics on some malformed cross-reference tables.
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(t)
	}
	return buf.String(), flattenOutline(reader.Outline(), 0, nil), nil
}

func flattenOutline(o pdflib.Outline, level int, out []outlineEntry) []outlineEntry {
	if level > 0 && strings.TrimSpace(o.Title) != "" {
		out = append(out, outlineEntry{title: strings.TrimSpace(o.Title), level: min(level, 6)})
	}
	for _, c := range o.Child {
		out = flattenOutline(c, level+1, out)
	}
	return out
}

// markOutlineHeadings prefixes lines that match outline entries, in order,
// with '#' markers so the text extractor can split on them. An entry whose
// title never appears as a line is skipped.
func markOutlineHeadings(text string, outline []outlineEntry) string {
	if len(outline) == 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	next := 0
	for i, l := range lines {
		if next >= len(outline) {
			break
		}
		l = strings.TrimSpace(l)
		for j := next; j < len(outline); j++ {
			if strings.EqualFold(l, outline[j].title) {
				lines[i] = strings.Repeat("#", outline[j].level) + " " + outline[j].title
				next = j + 1
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
