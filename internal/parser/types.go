package parser

import (
	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/token"
	"github.com/lucid-lang/lucid/internal/types"
)

// parseType parses the annotation type grammar: `Dyn | Num | Bool | Str |
// Var(id) | Arrow(t, t) | List(t) | Forall(id, t) | StaticRecord(row) |
// DynRecord(t) | Enum(row) | Flat(term)`. Returns nil (after recording a
// diagnostic) on malformed input, the same convention parseExpr's own
// error paths use.
func (p *Parser) parseType() ast.TypeAnnotation {
	if p.at(token.FORALL) {
		return p.parseForallType()
	}
	return p.parseArrowType()
}

// parseForallType parses `forall a b. Body`, nesting one types.Forall
// per bound variable.
func (p *Parser) parseForallType() ast.TypeAnnotation {
	p.advance() // `forall`
	var vars []string
	for p.at(token.IDENT) {
		vars = append(vars, p.advance().Lexeme)
	}
	if len(vars) == 0 {
		p.errorf("expected at least one type variable after `forall`")
		return nil
	}
	if _, ok := p.expect(token.DOT); !ok {
		return nil
	}
	bodyAnn := p.parseType()
	if bodyAnn == nil {
		return nil
	}
	body := bodyAnn.(types.Type)
	for i := len(vars) - 1; i >= 0; i-- {
		body = types.Forall{Var: vars[i], Body: body}
	}
	return body
}

// parseArrowType handles `Dom -> Codom`, right-associative so that
// `Num -> Num -> Num` reads as `Num -> (Num -> Num)`.
func (p *Parser) parseArrowType() ast.TypeAnnotation {
	domAnn := p.parseAppType()
	if domAnn == nil {
		return nil
	}
	if !p.at(token.ARROW) {
		return domAnn
	}
	p.advance()
	codomAnn := p.parseArrowType()
	if codomAnn == nil {
		return nil
	}
	return types.Arrow{Dom: domAnn.(types.Type), Codom: codomAnn.(types.Type)}
}

// parseAppType handles the one type-level application lucid's grammar
// needs: `List T`. Every other type constructor takes its argument
// through explicit syntax (`{ ... }`, `forall ... .`), not juxtaposition.
func (p *Parser) parseAppType() ast.TypeAnnotation {
	if p.at(token.IDENT) && p.cur().Lexeme == "List" {
		p.advance()
		elemAnn := p.parseAppType()
		if elemAnn == nil {
			return nil
		}
		return types.List{Elem: elemAnn.(types.Type)}
	}
	return p.parsePrimaryType()
}

func (p *Parser) parsePrimaryType() ast.TypeAnnotation {
	t := p.cur()
	switch t.Kind {
	case token.IDENT:
		p.advance()
		switch t.Lexeme {
		case "Dyn":
			return types.Dyn{}
		case "Num":
			return types.Num{}
		case "Bool":
			return types.Bool{}
		case "Str":
			return types.Str{}
		default:
			return types.Var{Name: t.Lexeme}
		}
	case token.ENUM_TAG:
		return p.parseEnumType()
	case token.LBRACE:
		return p.parseRecordType()
	case token.LPAREN:
		p.advance()
		inner := p.parseType()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RPAREN); !ok {
			return nil
		}
		return inner
	case token.HASH:
		p.advance()
		pred := p.parseApp()
		if isErr(pred) {
			return nil
		}
		return types.Flat{Expr: pred}
	default:
		p.errorf("expected a type, found %q", t.Lexeme)
		return nil
	}
}

// parseEnumType parses a comma-separated run of enum tags as a row type
//. Tags are comma-separated rather than
// pipe-separated so an enum type in annotation position doesn't collide
// with the `|` that introduces the next annotation clause in parseExpr.
func (p *Parser) parseEnumType() ast.TypeAnnotation {
	var tags []string
	for p.at(token.ENUM_TAG) {
		tags = append(tags, p.advance().Lexeme)
		if p.at(token.COMMA) && p.peek(1).Kind == token.ENUM_TAG {
			p.advance()
			continue
		}
		break
	}
	return types.Enum{Tags: tags}
}

// parseRecordType parses `{ field : Type, ... }`, `{ _ : Type }` for a
// DynRecord, and an optional trailing `.. tail` row variable for
// row-polymorphic records.
func (p *Parser) parseRecordType() ast.TypeAnnotation {
	p.advance() // `{`
	if p.at(token.UNDERSCORE) {
		p.advance()
		if _, ok := p.expect(token.COLON); !ok {
			return nil
		}
		elemAnn := p.parseType()
		if elemAnn == nil {
			return nil
		}
		if _, ok := p.expect(token.RBRACE); !ok {
			return nil
		}
		return types.DynRecord{Elem: elemAnn.(types.Type)}
	}

	type field struct {
		name string
		ty   types.Type
	}
	var fields []field
	var tail types.Row = types.RowEmpty{}

	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.DOTDOT) {
			p.advance()
			if p.at(token.IDENT) {
				tail = types.RowVar{Name: p.advance().Lexeme}
			}
			break
		}
		name, ok := p.expect(token.IDENT)
		if !ok {
			return nil
		}
		var ty types.Type
		if p.at(token.COLON) {
			p.advance()
			tyAnn := p.parseType()
			if tyAnn == nil {
				return nil
			}
			ty = tyAnn.(types.Type)
		}
		fields = append(fields, field{name.Lexeme, ty})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(token.RBRACE); !ok {
		return nil
	}

	row := tail
	for i := len(fields) - 1; i >= 0; i-- {
		row = types.RowExtend{Field: fields[i].name, Ty: fields[i].ty, Tail: row}
	}
	return types.StaticRecord{Row: row}
}
