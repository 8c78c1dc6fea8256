package rules

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dgallion1/lintdoc/internal/document"
)

// CustomRule is a user-defined check written as a boolean expr-lang
// expression. The expression passes when it evaluates to true.
//
//	name: has-decision-log
//	expr: HasSection("Decision Log")
//	message: add a Decision Log section
type CustomRule struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Expr        string `yaml:"expr"`
	Message     string `yaml:"message"`
	Severity    string `yaml:"severity"` // "fail" (default) or "warn"
}

// Env is the read-only view a custom expression is evaluated against.
type Env struct {
	Title    string
	Preamble string
	Sections []SectionView
	Tables   []TableView
}

// SectionView exposes one section to expressions.
type SectionView struct {
	Heading    string
	Level      int
	Body       string
	Line       int
	Tables     int
	Breadcrumb []string
	Scope      string // Body plus nested subsection bodies
}

// TableView exposes one table to expressions.
type TableView struct {
	Header    []string
	Rows      int
	Line      int
	Malformed bool
}

// HasSection reports whether any heading matches term, using the same
// matching as required-sections.
func (e Env) HasSection(term string) bool {
	for _, s := range e.Sections {
		if headingMatches(s.Heading, term) {
			return true
		}
	}
	return false
}

// Mentions reports whether the sections matching heading mention text
// (case-insensitive) in their scope.
func (e Env) Mentions(heading, text string) bool {
	needle := plain(text)
	for _, s := range e.Sections {
		if headingMatches(s.Heading, heading) && strings.Contains(plain(s.Scope), needle) {
			return true
		}
	}
	return false
}

// NewEnv builds the expression view of doc.
func NewEnv(doc *document.Document) Env {
	env := Env{
		Title:    doc.Title(),
		Preamble: doc.Preamble(),
		Sections: make([]SectionView, 0, doc.Len()),
	}
	for i := range doc.Len() {
		s := doc.At(i)
		env.Sections = append(env.Sections, SectionView{
			Heading:    s.Heading,
			Level:      s.Level,
			Body:       s.Body,
			Line:       s.Line,
			Tables:     len(s.Tables),
			Breadcrumb: s.Breadcrumb,
			Scope:      doc.Scope(i),
		})
	}
	for _, t := range doc.Tables() {
		env.Tables = append(env.Tables, TableView{
			Header:    t.Header,
			Rows:      len(t.Rows),
			Line:      t.Line,
			Malformed: t.Malformed(),
		})
	}
	return env
}

// Compile type-checks the expression and returns it as a Rule.
func (c CustomRule) Compile() (Rule, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return nil, fmt.Errorf("custom rule: name is required")
	}
	if strings.TrimSpace(c.Expr) == "" {
		return nil, fmt.Errorf("custom rule %q: expr is required", name)
	}

	onFalse := Fail
	switch strings.ToLower(strings.TrimSpace(c.Severity)) {
	case "", "fail", "error":
	case "warn", "warning":
		onFalse = Warn
	default:
		return nil, fmt.Errorf("custom rule %q: unknown severity %q", name, c.Severity)
	}

	program, err := expr.Compile(c.Expr, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile custom rule %q: %w", name, err)
	}

	desc := c.Description
	if desc == "" {
		desc = c.Expr
	}
	msg := c.Message
	if msg == "" {
		msg = "expression is false: " + c.Expr
	}
	return New(name, desc, func(doc *document.Document) Result {
		return runCustom(program, NewEnv(doc), onFalse, msg)
	}), nil
}

func runCustom(program *vm.Program, env Env, onFalse Verdict, msg string) Result {
	out, err := expr.Run(program, env)
	if err != nil {
		return fail(nil, "evaluate expression: %v", err)
	}
	if ok, _ := out.(bool); ok {
		return pass("expression holds")
	}
	return Result{Verdict: onFalse, Message: msg}
}
