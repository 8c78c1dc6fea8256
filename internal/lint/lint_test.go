package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dgallion1/lintdoc/internal/loader"
	"github.com/dgallion1/lintdoc/internal/parser"
	"github.com/dgallion1/lintdoc/internal/report"
	"github.com/dgallion1/lintdoc/internal/rules"
)

func newLinter(t *testing.T) *Linter {
	t.Helper()
	rs, err := rules.Build(rules.DefaultSettings())
	if err != nil {
		t.Fatalf("build rules: %v", err)
	}
	return New(loader.New(0, parser.Options{}), rules.NewChecker(rs...), nil, 0)
}

func TestLintFile_SampleDocumentPasses(t *testing.T) {
	l := newLinter(t)
	rep, err := l.LintFile("../../testdata/hexagonal.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.ExitCode != report.ExitOK {
		t.Errorf("expected exit code %d, got %d: %+v", report.ExitOK, rep.ExitCode, rep.Results)
	}
	if rep.Summary.Warnings != 0 {
		t.Errorf("expected no warnings, got %d", rep.Summary.Warnings)
	}
}

func TestLintFile_Idempotent(t *testing.T) {
	l := newLinter(t)
	first, err := l.LintFile("../../testdata/hexagonal.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.LintFile("../../testdata/hexagonal.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reports differ between runs (-first +second):\n%s", diff)
	}
}

func TestLintReader_TitleAndBodyFails(t *testing.T) {
	l := newLinter(t)
	rep, err := l.LintReader(strings.NewReader("# Title\nbody"), "t.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.ExitCode != report.ExitFailed {
		t.Errorf("expected exit code %d, got %d", report.ExitFailed, rep.ExitCode)
	}
	if rep.Sections != 1 {
		t.Errorf("expected 1 section, got %d", rep.Sections)
	}
}

func TestLint_LoadErrors(t *testing.T) {
	l := newLinter(t)

	_, err := l.LintFile(filepath.Join(t.TempDir(), "missing.md"))
	var ioErr *loader.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("expected IOError, got %T: %v", err, err)
	}

	_, err = l.LintReader(strings.NewReader("no headings here"), "plain.txt")
	var fmtErr *loader.FormatError
	if !errors.As(err, &fmtErr) {
		t.Errorf("expected FormatError, got %T: %v", err, err)
	}

	snap := l.Stats()
	if snap.Count != 2 || snap.Failed != 2 {
		t.Errorf("expected 2 failed runs recorded, got %+v", snap)
	}
}

func TestLintBatch_PreservesOrder(t *testing.T) {
	l := newLinter(t)
	sample, err := os.ReadFile("../../testdata/hexagonal.md")
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	inputs := []Input{
		{Name: "good.md", Data: strings.NewReader(string(sample))},
		{Name: "bad.txt", Data: strings.NewReader("no headings")},
		{Name: "short.md", Data: strings.NewReader("# Title\nbody")},
	}

	out := l.LintBatch(context.Background(), inputs, 2)
	if len(out) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(out))
	}
	if out[0].Name != "good.md" || out[0].Err != nil || out[0].Report.ExitCode != report.ExitOK {
		t.Errorf("unexpected first outcome: %+v", out[0])
	}
	if out[1].Name != "bad.txt" || out[1].Err == nil {
		t.Errorf("expected load error for bad.txt, got %+v", out[1])
	}
	if out[2].Name != "short.md" || out[2].Report == nil || out[2].Report.ExitCode != report.ExitFailed {
		t.Errorf("unexpected third outcome: %+v", out[2])
	}
}

func TestLintBatch_CancelledContext(t *testing.T) {
	l := newLinter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := l.LintBatch(ctx, []Input{{Name: "a.md", Data: strings.NewReader("# A\nb")}}, 1)
	if !errors.Is(out[0].Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", out[0].Err)
	}
}
