package ast

// MatchKind distinguishes the two shapes a record-destructuring pattern
// field can take.
type MatchKind int

const (
	// MatchSimple binds the field's value directly to an identifier:
	// `{ x, y }`.
	MatchSimple MatchKind = iota
	// MatchAssign destructures the field's value against a nested
	// pattern, optionally under a different field name: `{ x = { a, b } }`.
	MatchAssign
)

// FieldMeta carries the optional type annotation and default-value
// contract a destructured field may declare, e.g. `{ x : Num = 0 }`.
type FieldMeta struct {
	Type    TypeAnnotation
	Default Term
}

// MatchField is one field entry of a destructuring Pattern.
type MatchField struct {
	Kind MatchKind
	// FieldName is the record field being destructured.
	FieldName string
	// BindName is the identifier MatchSimple binds the field's value to.
	// For MatchAssign it is the identifier the nested pattern binds the
	// whole field to, if any (patterns can bind both a nested
	// destructure and a whole-field alias).
	BindName string
	Meta     FieldMeta
	// Nested is non-nil for MatchAssign.
	Nested *Pattern
}

// Pattern destructures a record argument. Open records permit extra
// fields to pass through unexamined; Rest, if non-empty, names the
// binding for those leftover fields.
type Pattern struct {
	Fields []MatchField
	Open   bool
	Rest   string
}
