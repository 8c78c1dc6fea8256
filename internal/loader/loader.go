// Package loader reads architecture documents from disk or a stream and
// turns them into sectioned Documents.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/lintdoc/internal/document"
	"github.com/dgallion1/lintdoc/internal/parser"
)

// DefaultMaxBytes caps a single document at 50MB.
const DefaultMaxBytes int64 = 52428800

// IOError means the document could not be read at all.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FormatError means the document was read but has no usable structure.
type FormatError struct {
	Name   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ErrNoHeadings is wrapped by FormatError when no heading markers exist.
var ErrNoHeadings = errors.New("no heading markers found")

// Loader picks a parser by file extension and validates the result.
type Loader struct {
	MaxBytes int64
	Parser   parser.Options
}

// New returns a Loader with the given parser options and size cap.
func New(maxBytes int64, opts parser.Options) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{MaxBytes: maxBytes, Parser: opts}
}

// Load reads the document at path.
func (l *Loader) Load(path string) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &IOError{Path: path, Err: errors.New("is a directory")}
	}

	data, err := l.read(f, path)
	if err != nil {
		return nil, err
	}
	return l.parse(data, path)
}

// LoadReader reads a document from r; name selects the parser and title.
func (l *Loader) LoadReader(r io.Reader, name string) (*document.Document, error) {
	data, err := l.read(r, name)
	if err != nil {
		return nil, err
	}
	return l.parse(data, name)
}

func (l *Loader) read(r io.Reader, name string) ([]byte, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &IOError{Path: name, Err: err}
	}
	if int64(len(data)) > limit {
		return nil, &FormatError{Name: name, Reason: fmt.Sprintf("document exceeds max size (%d bytes)", limit)}
	}
	return data, nil
}

func (l *Loader) parse(data []byte, name string) (*document.Document, error) {
	p := parser.ForFile(name, l.Parser)
	doc, err := p.Parse(bytes.NewReader(data), name)
	if err != nil {
		return nil, &FormatError{Name: name, Reason: "cannot decode " + parser.Kind(name), Err: err}
	}
	if doc.Len() == 0 {
		return nil, &FormatError{Name: name, Reason: "not a sectioned document", Err: ErrNoHeadings}
	}
	return doc, nil
}
