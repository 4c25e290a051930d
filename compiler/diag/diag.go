// Package diag collects structured diagnostics with source locations,
// distinguishing lexical, syntactic, semantic and codegen/IO failures.
package diag

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/egorTorshin/IU-Compilers-Construction/compiler/source"
)

type (
	// Kind identifies which pipeline stage raised the diagnostic.
	Kind string

	// Diagnostic is a single reported problem.
	Diagnostic struct {
		Kind    Kind
		Message string
		Span    source.Span
	}

	// Sink accumulates diagnostics for one compilation.
	Sink struct {
		diags []Diagnostic
	}
)

const (
	Lexical  Kind = "lexical"
	Syntax   Kind = "syntax"
	Semantic Kind = "semantic"
	Codegen  Kind = "codegen"
)

// New returns an empty sink.
func New() *Sink { return &Sink{} }

// Add records a diagnostic with a span.
func (s *Sink) Add(kind Kind, span source.Span, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	})
}

// Diagnostics returns every diagnostic recorded so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diags
}

// Len reports how many diagnostics have been recorded.
func (s *Sink) Len() int { return len(s.diags) }

// Empty reports whether no diagnostic has been recorded.
func (s *Sink) Empty() bool { return len(s.diags) == 0 }

// Err folds every recorded diagnostic into a single error via
// multierr.Combine, so callers that only care about pass/fail can still
// use errors.Is/errors.As against any individual cause, while callers
// that want the full list can call Diagnostics instead. Returns nil if
// the sink is empty.
func (s *Sink) Err() error {
	if s.Empty() {
		return nil
	}

	errs := make([]error, len(s.diags))
	for i, d := range s.diags {
		errs[i] = d
	}

	return multierr.Combine(errs...)
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, d.Span)
}

// String renders the diagnostic in the "<kind>: <message>" form the CLI
// prints to stderr, one line per diagnostic.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Report writes one line per diagnostic to sb in CLI-visible form.
func Report(sb *strings.Builder, diags []Diagnostic) {
	for _, d := range diags {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
}
