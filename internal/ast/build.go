package ast

import "github.com/lucid-lang/lucid/internal/ident"

// Smart constructors. Every one of them takes the position explicitly so
// that positions are never silently dropped by forgetting to copy a
// field.

func NewNull(p ident.Pos) Term { return Null{base{p}} }

func NewBool(p ident.Pos, v bool) Term { return Bool{base{p}, v} }

func NewNum(p ident.Pos, v float64) Term { return Num{base{p}, v} }

func NewStr(p ident.Pos, v string) Term { return Str{base{p}, v} }

func NewEnum(p ident.Pos, tag string) Term { return Enum{base{p}, tag} }

func NewVar(p ident.Pos, name string) Term { return Var{base{p}, name} }

func NewFun(p ident.Pos, param string, body Term) Term {
	return Fun{base{p}, param, body}
}

func NewFunPattern(p ident.Pos, name *string, pat *Pattern, body Term) Term {
	return FunPattern{base{p}, name, pat, body}
}

func NewLet(p ident.Pos, name string, bound, body Term) Term {
	return Let{base{p}, name, bound, body}
}

func NewApp(p ident.Pos, fn, arg Term) Term { return App{base{p}, fn, arg} }

func NewIf(p ident.Pos, c, t, e Term) Term { return If{base{p}, c, t, e} }

func NewSwitch(p ident.Pos, scrutinee Term, cases map[string]Term, def Term) Term {
	return Switch{base{p}, scrutinee, cases, def}
}

func NewList(p ident.Pos, elems []Term) Term { return List{base{p}, elems} }

func NewRecord(p ident.Pos, fields map[string]Term, open bool) Term {
	return Record{base{p}, fields, RecordAttrs{Open: open}}
}

func NewStrChunksReversed(p ident.Pos, chunksReversed []Chunk) Term {
	return StrChunks{base{p}, chunksReversed}
}

func NewFieldAccess(p ident.Pos, record Term, field string) Term {
	return FieldAccess{base{p}, record, field}
}

func NewOp1(p ident.Pos, op string, a Term) Term { return Op1{base{p}, op, a} }

func NewOp2(p ident.Pos, op string, a, b Term) Term { return Op2{base{p}, op, a, b} }

func NewOpN(p ident.Pos, op string, args []Term) Term { return OpN{base{p}, op, args} }

func NewImport(p ident.Pos, path string) Term { return Import{base{p}, path} }

func NewParseError(p ident.Pos, msg string) Term { return ParseError{base{p}, msg} }

func NewMetaValue(p ident.Pos, inner Term) MetaValue {
	// Flatten: if inner is already a MetaValue, merge into it instead of
	// nesting.
	if mv, ok := inner.(MetaValue); ok {
		return mv
	}
	return MetaValue{base: base{p}, Value: inner}
}
