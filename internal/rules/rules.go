// Package rules holds the structural checks run against an architecture
// document. Every rule is a pure function of the Document.
package rules

import (
	"fmt"

	"github.com/dgallion1/lintdoc/internal/document"
)

// Verdict is the outcome of one rule.
type Verdict string

const (
	Pass Verdict = "pass"
	Fail Verdict = "fail"
	// Warn records a consistency problem without failing the run.
	Warn Verdict = "warn"
)

// Result is a single rule outcome.
type Result struct {
	Rule    string   `json:"rule"`
	Verdict Verdict  `json:"verdict"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// Rule checks one structural property of a document.
type Rule interface {
	Name() string
	Description() string
	Check(doc *document.Document) Result
}

type funcRule struct {
	name        string
	description string
	check       func(doc *document.Document) Result
}

func (r funcRule) Name() string                        { return r.name }
func (r funcRule) Description() string                 { return r.description }
func (r funcRule) Check(doc *document.Document) Result { return r.check(doc) }

// New wraps a check function as a Rule.
func New(name, description string, check func(doc *document.Document) Result) Rule {
	return funcRule{name: name, description: description, check: check}
}

func pass(format string, args ...any) Result {
	return Result{Verdict: Pass, Message: fmt.Sprintf(format, args...)}
}

func fail(details []string, format string, args ...any) Result {
	return Result{Verdict: Fail, Message: fmt.Sprintf(format, args...), Details: details}
}

func warn(details []string, format string, args ...any) Result {
	return Result{Verdict: Warn, Message: fmt.Sprintf(format, args...), Details: details}
}

// Checker runs a fixed list of rules.
type Checker struct {
	rules []Rule
}

// NewChecker returns a Checker that evaluates rules in the given order.
func NewChecker(rules ...Rule) *Checker {
	return &Checker{rules: append([]Rule(nil), rules...)}
}

// Rules returns the registered rules.
func (c *Checker) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Check evaluates every rule against doc. Rules share no state, so one
// rule's outcome (or panic) never affects another's.
func (c *Checker) Check(doc *document.Document) []Result {
	results := make([]Result, len(c.rules))
	for i, r := range c.rules {
		results[i] = evaluate(r, doc)
	}
	return results
}

func evaluate(r Rule, doc *document.Document) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Verdict: Fail, Message: fmt.Sprintf("rule panicked: %v", p)}
		}
		res.Rule = r.Name()
	}()

	res = r.Check(doc)
	if res.Verdict == "" {
		res.Verdict = Pass
	}
	return res
}
