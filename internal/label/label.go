// Package label implements the contract Label: the immutable
// breadcrumb the contract runtime (internal/contracts) carries through a
// value as it crosses arrows, lists, and record fields, so that a
// violation can be reported with both WHERE it happened (span, path) and
// WHO is responsible (polarity, tag).
// Labels are never mutated: every navigation method returns a new Label
//. This package has no
// dependency on internal/ast or internal/contracts so that both of them
// can depend on it without a cycle.
package label

import (
	"strings"

	"github.com/lucid-lang/lucid/internal/ident"
)

// Polarity tracks which party a blame is assigned to. Positive is the
// provider of a higher-order value (e.g. the author of a function);
// Negative is its consumer (e.g. the call site). Entering an arrow's
// domain flips polarity.
type Polarity bool

const (
	Positive Polarity = true
	Negative Polarity = false
)

func (p Polarity) Flip() Polarity { return !p }

func (p Polarity) String() string {
	if p == Positive {
		return "+"
	}
	return "-"
}

// Direction is one step of a Label's path, used to render a readable
// trail like ".field1.codom.dom".
type Direction struct {
	Kind  DirKind
	Field string // valid when Kind == DirField
}

type DirKind int

const (
	DirDom DirKind = iota
	DirCodom
	DirField
	DirList
)

func (d Direction) String() string {
	switch d.Kind {
	case DirDom:
		return "dom"
	case DirCodom:
		return "codom"
	case DirField:
		return "field(" + d.Field + ")"
	case DirList:
		return "list"
	default:
		return "?"
	}
}

// Label is the `{span, tag, polarity, path}` blame breadcrumb.
type Label struct {
	Pos      ident.Pos
	Tag      string
	Polarity Polarity
	Path     []Direction
}

// New creates a label at positive polarity and an empty path — the state
// of a label at the point a contract is first attached to a term.
func New(pos ident.Pos, tag string) Label {
	return Label{Pos: pos, Tag: tag, Polarity: Positive}
}

// WithTag returns a copy of l with Tag replaced, backing the
// `tag msg label` primitive.
func (l Label) WithTag(tag string) Label {
	l.Tag = tag
	return l
}

// enter appends one path element, copying the underlying slice so two
// labels produced from the same prefix never alias each other's
// backing array.
func (l Label) enter(d Direction) Label {
	path := make([]Direction, len(l.Path)+1)
	copy(path, l.Path)
	path[len(l.Path)] = d
	l.Path = path
	return l
}

func (l Label) EnterDom() Label    { return l.enter(Direction{Kind: DirDom}) }
func (l Label) EnterCodom() Label  { return l.enter(Direction{Kind: DirCodom}) }
func (l Label) EnterList() Label   { return l.enter(Direction{Kind: DirList}) }
func (l Label) EnterField(f string) Label {
	return l.enter(Direction{Kind: DirField, Field: f})
}

// FlipPolarity returns a copy of l with Polarity inverted — applied when
// a contract crosses an arrow's domain.
func (l Label) FlipPolarity() Label {
	l.Polarity = l.Polarity.Flip()
	return l
}

// Trail renders the path as a readable chain: ".field(a).codom.dom".
func (l Label) Trail() string {
	if len(l.Path) == 0 {
		return "<root>"
	}
	var b strings.Builder
	for _, d := range l.Path {
		b.WriteByte('.')
		b.WriteString(d.String())
	}
	return b.String()
}
