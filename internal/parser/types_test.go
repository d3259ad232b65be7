package parser

import (
	"testing"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/types"
)

func TestParseAnnotationAttachesTypeToMetaValue(t *testing.T) {
	term := parse(t, "1 | Num")
	mv, ok := term.(ast.MetaValue)
	if !ok {
		t.Fatalf("expected a MetaValue, got %#v", term)
	}
	if _, ok := mv.Type.(types.Num); !ok {
		t.Fatalf("expected Num type annotation, got %#v", mv.Type)
	}
}

func TestParseArrowTypeIsRightAssociative(t *testing.T) {
	term := parse(t, "(fun x => x) | Num -> Num -> Num")
	mv := term.(ast.MetaValue)
	arr, ok := mv.Type.(types.Arrow)
	if !ok {
		t.Fatalf("expected an Arrow type, got %#v", mv.Type)
	}
	if _, ok := arr.Dom.(types.Num); !ok {
		t.Fatalf("expected Num domain, got %#v", arr.Dom)
	}
	codom, ok := arr.Codom.(types.Arrow)
	if !ok {
		t.Fatalf("expected Num -> Num nested on the right, got %#v", arr.Codom)
	}
	if _, ok := codom.Dom.(types.Num); !ok {
		t.Fatalf("got %#v", codom.Dom)
	}
}

func TestParseForallType(t *testing.T) {
	term := parse(t, "(fun x => x) | forall a. a -> a")
	mv := term.(ast.MetaValue)
	fa, ok := mv.Type.(types.Forall)
	if !ok || fa.Var != "a" {
		t.Fatalf("expected Forall(a), got %#v", mv.Type)
	}
	if _, ok := fa.Body.(types.Arrow); !ok {
		t.Fatalf("expected an Arrow body under the Forall, got %#v", fa.Body)
	}
}

func TestParseListTypeApplication(t *testing.T) {
	term := parse(t, "[] | List Num")
	mv := term.(ast.MetaValue)
	lt, ok := mv.Type.(types.List)
	if !ok {
		t.Fatalf("expected List type, got %#v", mv.Type)
	}
	if _, ok := lt.Elem.(types.Num); !ok {
		t.Fatalf("expected Num element type, got %#v", lt.Elem)
	}
}

func TestParseStaticRecordTypeWithRowVarTail(t *testing.T) {
	term := parse(t, "{} | { a : Num, ..r }")
	mv := term.(ast.MetaValue)
	sr, ok := mv.Type.(types.StaticRecord)
	if !ok {
		t.Fatalf("expected a StaticRecord type, got %#v", mv.Type)
	}
	ext, ok := sr.Row.(types.RowExtend)
	if !ok || ext.Field != "a" {
		t.Fatalf("expected field a first in the row, got %#v", sr.Row)
	}
	if _, ok := ext.Tail.(types.RowVar); !ok {
		t.Fatalf("expected a row variable tail, got %#v", ext.Tail)
	}
}

func TestParseDynRecordType(t *testing.T) {
	term := parse(t, "{} | { _ : Num }")
	mv := term.(ast.MetaValue)
	if _, ok := mv.Type.(types.DynRecord); !ok {
		t.Fatalf("expected a DynRecord type, got %#v", mv.Type)
	}
}

func TestParseEnumTypeRow(t *testing.T) {
	term := parse(t, "`Ok | `Ok, `Err")
	mv := term.(ast.MetaValue)
	et, ok := mv.Type.(types.Enum)
	if !ok {
		t.Fatalf("expected an Enum type, got %#v", mv.Type)
	}
	if len(et.Tags) != 2 || et.Tags[0] != "Ok" || et.Tags[1] != "Err" {
		t.Fatalf("got tags %v", et.Tags)
	}
}

func TestParseFlatContractAnnotation(t *testing.T) {
	term := parse(t, "1 | #isPositive")
	mv := term.(ast.MetaValue)
	if len(mv.Contracts) != 1 {
		t.Fatalf("expected one flat contract, got %v", mv.Contracts)
	}
}

func TestParseDocAnnotation(t *testing.T) {
	term := parse(t, `1 | doc "the answer"`)
	mv := term.(ast.MetaValue)
	if mv.Doc == nil || *mv.Doc != "the answer" {
		t.Fatalf("expected doc annotation, got %#v", mv.Doc)
	}
}

func TestParseDefaultPriorityAnnotation(t *testing.T) {
	term := parse(t, "1 | default")
	mv := term.(ast.MetaValue)
	if mv.Priority != ast.PriorityDefault {
		t.Fatalf("expected PriorityDefault, got %v", mv.Priority)
	}
}
