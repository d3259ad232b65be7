// Package ops implements the primitive operator library: the strict
// built-in operations Op1/Op2/OpN terms reduce to once their operands
// are already forced to weak-head-normal-form by internal/eval. A switch
// over the operator name, type-switching on operand shape, one function
// per arity. ops has no dependency on internal/eval — it only ever sees
// already-forced ast.Term values — so eval can call it freely without a
// cycle.
package ops

import (
	"fmt"
	"math"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
)

// OpError reports a primitive operator misuse (wrong operand shape,
// division by zero, index out of range).
type OpError struct {
	Pos     ident.Pos
	Message string
}

func (e *OpError) Error() string { return e.Message }

func opErr(pos ident.Pos, format string, args ...any) error {
	return &OpError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Apply1 dispatches a unary operator to an already-forced operand.
func Apply1(pos ident.Pos, op string, a ast.Term) (ast.Term, error) {
	switch op {
	case "Neg":
		n, ok := a.(ast.Num)
		if !ok {
			return nil, opErr(pos, "unary - requires a Num")
		}
		return ast.Num{Value: -n.Value}, nil
	case "BoolNot":
		b, ok := a.(ast.Bool)
		if !ok {
			return nil, opErr(pos, "! requires a Bool")
		}
		return ast.Bool{Value: !b.Value}, nil
	case "StrIsEmpty":
		s, ok := a.(ast.Str)
		if !ok {
			return nil, opErr(pos, "str_is_empty requires a Str")
		}
		return ast.Bool{Value: len(s.Value) == 0}, nil
	case "StrLength":
		s, ok := a.(ast.Str)
		if !ok {
			return nil, opErr(pos, "str_length requires a Str")
		}
		return ast.Num{Value: float64(len([]rune(s.Value)))}, nil
	case "Typeof":
		return ast.Str{Value: typeName(a)}, nil
	default:
		return nil, opErr(pos, "unknown unary operator %q", op)
	}
}

// Apply2 dispatches a binary operator to two already-forced operands.
// List, record, and equality operators that need to force nested
// elements are handled by internal/eval directly, not here (ops never
// forces anything — see the package doc).
func Apply2(pos ident.Pos, op string, a, b ast.Term) (ast.Term, error) {
	switch op {
	case "Add", "Sub", "Mul", "Div", "Mod", "Pow", "Lt", "Le", "Gt", "Ge":
		return numOp(pos, op, a, b)
	case "StrConcat":
		as, aok := a.(ast.Str)
		bs, bok := b.(ast.Str)
		if !aok || !bok {
			return nil, opErr(pos, "++ requires two Strs")
		}
		return ast.Str{Value: as.Value + bs.Value}, nil
	case "ListConcat":
		return ApplyN(pos, "ListConcat", []ast.Term{a, b})
	default:
		return nil, opErr(pos, "unknown binary operator %q", op)
	}
}

// ApplyN dispatches a variadic primitive operator (arity fixed by the
// parser/stdlib, but some primitives — record and list constructors —
// take an arbitrary number of already-forced arguments).
func ApplyN(pos ident.Pos, op string, args []ast.Term) (ast.Term, error) {
	switch op {
	case "ListConcat":
		var elems []ast.Term
		for _, a := range args {
			lst, ok := a.(ast.List)
			if !ok {
				return nil, opErr(pos, "list concatenation requires Lists")
			}
			elems = append(elems, lst.Elems...)
		}
		return ast.List{Elems: elems}, nil
	default:
		return nil, opErr(pos, "unknown n-ary operator %q", op)
	}
}

func numOp(pos ident.Pos, op string, a, b ast.Term) (ast.Term, error) {
	an, aok := a.(ast.Num)
	bn, bok := b.(ast.Num)
	if !aok || !bok {
		return nil, opErr(pos, "%s requires two Nums", op)
	}
	switch op {
	case "Add":
		return ast.Num{Value: an.Value + bn.Value}, nil
	case "Sub":
		return ast.Num{Value: an.Value - bn.Value}, nil
	case "Mul":
		return ast.Num{Value: an.Value * bn.Value}, nil
	case "Div":
		if bn.Value == 0 {
			return nil, opErr(pos, "division by zero")
		}
		return ast.Num{Value: an.Value / bn.Value}, nil
	case "Mod":
		if bn.Value == 0 {
			return nil, opErr(pos, "division by zero")
		}
		return ast.Num{Value: math.Mod(an.Value, bn.Value)}, nil
	case "Pow":
		return ast.Num{Value: math.Pow(an.Value, bn.Value)}, nil
	case "Lt":
		return ast.Bool{Value: an.Value < bn.Value}, nil
	case "Le":
		return ast.Bool{Value: an.Value <= bn.Value}, nil
	case "Gt":
		return ast.Bool{Value: an.Value > bn.Value}, nil
	case "Ge":
		return ast.Bool{Value: an.Value >= bn.Value}, nil
	default:
		return nil, opErr(pos, "unknown numeric operator %q", op)
	}
}

func typeName(t ast.Term) string {
	switch t.(type) {
	case ast.Null:
		return "Null"
	case ast.Bool:
		return "Bool"
	case ast.Num:
		return "Num"
	case ast.Str:
		return "Str"
	case ast.Enum:
		return "Enum"
	case ast.List:
		return "List"
	case ast.Record:
		return "Record"
	case ast.Closure:
		return "Function"
	case ast.LabelVal:
		return "Label"
	default:
		return "Unknown"
	}
}
