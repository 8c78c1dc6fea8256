package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/lintdoc/internal/parser"
)

func TestLoad_MissingFileIsIOError(t *testing.T) {
	l := New(0, parser.Options{})
	_, err := l.Load(filepath.Join(t.TempDir(), "missing.md"))

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %T: %v", err, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestLoad_DirectoryIsIOError(t *testing.T) {
	l := New(0, parser.Options{})
	_, err := l.Load(t.TempDir())

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %T: %v", err, err)
	}
}

func TestLoad_NoHeadingsIsFormatError(t *testing.T) {
	for _, name := range []string{"plain.md", "plain.txt", "plain"} {
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte("Just prose.\n\nNo markers anywhere."), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := New(0, parser.Options{}).Load(path)
		var fmtErr *FormatError
		if !errors.As(err, &fmtErr) {
			t.Fatalf("%s: expected FormatError, got %T: %v", name, err, err)
		}
		if !errors.Is(err, ErrNoHeadings) {
			t.Errorf("%s: expected ErrNoHeadings, got %v", name, err)
		}
	}
}

func TestLoad_EmptyFileIsFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.md")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := New(0, parser.Options{}).Load(path)
	var fmtErr *FormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("expected FormatError, got %T: %v", err, err)
	}
}

func TestLoad_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arch.md")
	if err := os.WriteFile(path, []byte("# Title\nbody"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := New(0, parser.Options{}).Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Len() != 1 || doc.At(0).Heading != "Title" || doc.At(0).Body != "body" {
		t.Errorf("unexpected document: %d sections", doc.Len())
	}
	if doc.Title() != "arch" {
		t.Errorf("expected title %q, got %q", "arch", doc.Title())
	}
}

func TestLoadReader_SizeCap(t *testing.T) {
	l := New(16, parser.Options{})
	_, err := l.LoadReader(strings.NewReader("# Title\n"+strings.Repeat("x", 64)), "big.md")
	var fmtErr *FormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("expected FormatError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "max size") {
		t.Errorf("expected size message, got %q", err.Error())
	}
}

func TestLoadReader_UndecodableBinary(t *testing.T) {
	_, err := New(0, parser.Options{}).LoadReader(strings.NewReader("not a zip"), "arch.docx")
	var fmtErr *FormatError
	if !errors.As(err, &fmtErr) {
		t.Fatalf("expected FormatError, got %T: %v", err, err)
	}
	if fmtErr.Reason != "cannot decode docx" {
		t.Errorf("expected reason %q, got %q", "cannot decode docx", fmtErr.Reason)
	}
}
