package parser

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/lintdoc/internal/document"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// Options tune parsers that shell out or fall back.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename. Unknown extensions
// are read as plain text with '#' heading markers.
func ForFile(filename string, opts Options) Parser {
	switch Kind(filename) {
	case "markdown":
		return &MarkdownParser{}
	case "html":
		return &HTMLParser{}
	case "pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}
	case "docx":
		return &DOCXParser{}
	default:
		return &TextParser{}
	}
}

// Kind names the parser family used for a filename.
func Kind(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return "markdown"
	case ".html", ".htm":
		return "html"
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	default:
		return "text"
	}
}

// titleFromFilename strips directories and the extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
