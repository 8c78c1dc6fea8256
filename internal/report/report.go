// Package report renders lint results and maps them to process exit codes.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dgallion1/lintdoc/internal/document"
	"github.com/dgallion1/lintdoc/internal/loader"
	"github.com/dgallion1/lintdoc/internal/rules"
)

// Process exit codes.
const (
	ExitOK     = 0 // every rule passed (warnings allowed)
	ExitFailed = 1 // at least one rule failed
	ExitError  = 2 // the document could not be loaded
)

// Format selects the output encoding.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", Text:
		return Text, nil
	case JSON:
		return JSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

// Report is the outcome of linting one document.
type Report struct {
	Source   string         `json:"source"`
	Title    string         `json:"title"`
	Sections int            `json:"sections"`
	Tables   int            `json:"tables"`
	Results  []rules.Result `json:"results"`
	Summary  Summary        `json:"summary"`
	ExitCode int            `json:"exit_code"`
}

// Summary counts results by verdict.
type Summary struct {
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Warnings int `json:"warnings"`
}

// New assembles a Report for doc.
func New(source string, doc *document.Document, results []rules.Result) *Report {
	r := &Report{
		Source:   source,
		Title:    doc.Title(),
		Sections: doc.Len(),
		Tables:   len(doc.Tables()),
		Results:  results,
	}
	if r.Results == nil {
		r.Results = []rules.Result{}
	}
	for _, res := range results {
		switch res.Verdict {
		case rules.Fail:
			r.Summary.Failed++
		case rules.Warn:
			r.Summary.Warnings++
		default:
			r.Summary.Passed++
		}
	}
	r.ExitCode = ExitOK
	if r.Summary.Failed > 0 {
		r.ExitCode = ExitFailed
	}
	return r
}

// Options control rendering.
type Options struct {
	Format  Format
	NoColor bool
	Verbose bool // also list details of passing rules
}

// Emit writes r to w and returns the exit code for it.
func Emit(w io.Writer, r *Report, opts Options) (int, error) {
	if opts.Format == JSON {
		return r.ExitCode, writeJSON(w, r)
	}
	return r.ExitCode, newPrinter(w, opts).report(r)
}

// ErrorReport is the JSON shape of a load failure.
type ErrorReport struct {
	Source   string `json:"source"`
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	ExitCode int    `json:"exit_code"`
}

// Kind classifies a load error as "io", "format" or "internal".
func Kind(err error) string {
	var ioErr *loader.IOError
	var fmtErr *loader.FormatError
	switch {
	case errors.As(err, &ioErr):
		return "io"
	case errors.As(err, &fmtErr):
		return "format"
	default:
		return "internal"
	}
}

// EmitError writes a load failure for source and returns ExitError.
func EmitError(w io.Writer, source string, err error, opts Options) int {
	if opts.Format == JSON {
		_ = writeJSON(w, ErrorReport{Source: source, Error: err.Error(), Kind: Kind(err), ExitCode: ExitError})
		return ExitError
	}
	p := newPrinter(w, opts)
	fmt.Fprintf(w, "%s %s: %v\n", p.fail.Render("ERROR"), source, err)
	return ExitError
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

type printer struct {
	w       io.Writer
	verbose bool
	pass    lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
}

func newPrinter(w io.Writer, opts Options) *printer {
	r := lipgloss.NewRenderer(w)
	if opts.NoColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return &printer{
		w:       w,
		verbose: opts.Verbose,
		pass:    r.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true),
		fail:    r.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#FFC107")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#6b7280")),
		title:   r.NewStyle().Bold(true),
	}
}

func (p *printer) label(v rules.Verdict) string {
	switch v {
	case rules.Fail:
		return p.fail.Render("FAIL")
	case rules.Warn:
		return p.warn.Render("WARN")
	default:
		return p.pass.Render("PASS")
	}
}

func (p *printer) report(r *Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", p.title.Render(r.Source),
		p.muted.Render(fmt.Sprintf("(%s, %d sections, %d tables)", r.Title, r.Sections, r.Tables)))

	width := 0
	for _, res := range r.Results {
		width = max(width, len(res.Rule))
	}
	for _, res := range r.Results {
		fmt.Fprintf(&b, "  %s  %-*s  %s\n", p.label(res.Verdict), width, res.Rule, res.Message)
		if res.Verdict == rules.Pass && !p.verbose {
			continue
		}
		for _, d := range res.Details {
			fmt.Fprintf(&b, "        %s\n", p.muted.Render("- "+d))
		}
	}

	fmt.Fprintf(&b, "%d rules: %d passed, %d warnings, %d failed\n",
		len(r.Results), r.Summary.Passed, r.Summary.Warnings, r.Summary.Failed)
	_, err := io.WriteString(p.w, b.String())
	return err
}
