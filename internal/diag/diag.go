// Package diag defines structured diagnostics for every error kind the
// parser and evaluator can raise, rendered with color when standard
// error is a terminal: github.com/mattn/go-isatty gates the colorized
// output and github.com/fatih/color does the actual styling, rather than
// hand-rolling ANSI escapes.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/srcmap"
)

// Kind enumerates the error kinds the toolchain can report.
type Kind string

const (
	KindParse        Kind = "parse"
	KindUnboundVar   Kind = "unbound-identifier"
	KindTypeVariable Kind = "unbound-type-variable"
	KindMergeConflict Kind = "merge-conflict"
	KindContract     Kind = "contract-violation"
	KindRuntime      Kind = "runtime-error"
	KindImportCycle  Kind = "import-cycle"
	KindImportIO     Kind = "import-io-error"
	KindStackOverflow Kind = "stack-overflow"
)

// Diagnostic is one structured error report: kind, primary span,
// secondary spans, message, notes.
type Diagnostic struct {
	Kind      Kind
	Primary   ident.Pos
	Secondary []ident.Pos
	Message   string
	Notes     []string
}

func New(kind Kind, primary ident.Pos, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Primary: primary, Message: message}
}

// Error adapts a Diagnostic to the error interface, so the structured
// kind and span survive a trip through APIs that only pass `error` and
// can be recovered on the far side with errors.As.
type Error struct {
	Diag *Diagnostic
}

func (e *Error) Error() string { return Format(e.Diag, nil) }

func (d *Diagnostic) WithSecondary(pos ...ident.Pos) *Diagnostic {
	d.Secondary = append(d.Secondary, pos...)
	return d
}

func (d *Diagnostic) WithNote(note string) *Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// Renderer prints diagnostics, colorizing when the output stream is a
// terminal.
type Renderer struct {
	out   io.Writer
	color bool
	m     *srcmap.Map
}

// NewRenderer wraps out, auto-detecting color support: isatty on the
// underlying file descriptor, overridable by forceColor (non-nil) for
// tests.
func NewRenderer(out io.Writer, m *srcmap.Map, forceColor *bool) *Renderer {
	useColor := false
	if forceColor != nil {
		useColor = *forceColor
	} else if f, ok := out.(interface{ Fd() uintptr }); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{out: out, color: useColor, m: m}
}

func (r *Renderer) Render(d *Diagnostic) {
	header := color.New(color.FgRed, color.Bold)
	label := color.New(color.FgCyan)
	if !r.color {
		header.DisableColor()
		label.DisableColor()
	}

	fmt.Fprintf(r.out, "%s: %s\n", header.Sprint(string(d.Kind)), d.Message)
	fmt.Fprintf(r.out, "  %s %s\n", label.Sprint("at"), r.describe(d.Primary))
	for _, sec := range d.Secondary {
		fmt.Fprintf(r.out, "  %s %s\n", label.Sprint("also:"), r.describe(sec))
	}
	for _, n := range d.Notes {
		fmt.Fprintf(r.out, "  note: %s\n", n)
	}
}

func (r *Renderer) describe(p ident.Pos) string {
	if r.m == nil {
		return "<unknown>"
	}
	return r.m.Describe(p)
}

// Format renders a diagnostic to a plain string (no color), used by
// tests and by errors propagated through the embedding API (pkg/lucid),
// which has no terminal to color for.
func Format(d *Diagnostic, m *srcmap.Map) string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	b.WriteString(": ")
	b.WriteString(d.Message)
	if m != nil {
		b.WriteString(" (")
		b.WriteString(m.Describe(d.Primary))
		b.WriteString(")")
	}
	return b.String()
}
