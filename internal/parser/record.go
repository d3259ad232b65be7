package parser

import (
	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/token"
)

// parseRecord parses a record literal `{ field (, field)* (, '..')? }`.
// Each field is `path (: Type)? = Expr`, where path is a dotted chain
// (`a.b.c`) that desugars into nested records. A trailing bare `..`
// marks the record Open, matching the Attrs a destructuring pattern's
// rest-catch-all produces at run time.
func (p *Parser) parseRecord(start token.Token) ast.Term {
	p.advance() // `{`
	saved := p.noBraceArg
	p.noBraceArg = false
	defer func() { p.noBraceArg = saved }()
	fields := map[string]ast.Term{}
	open := false
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.DOTDOT) {
			p.advance()
			open = true
			break
		}
		path, ok := p.parseFieldPath()
		if !ok {
			return ast.NewParseError(p.posOf(p.cur()), "expected a field name in record literal")
		}
		var ty ast.TypeAnnotation
		if p.at(token.COLON) {
			p.advance()
			ty = p.parseType()
			if ty == nil {
				return ast.NewParseError(p.posOf(p.cur()), "expected a type after `:`")
			}
		}
		if _, ok := p.expect(token.EQUAL); !ok {
			return ast.NewParseError(p.posOf(p.cur()), "expected `=` in record field")
		}
		value := p.parseExpr()
		if isErr(value) {
			return value
		}
		if ty != nil {
			value = attachType(p.spanFrom(start), value, ty)
		}
		if err := insertFieldPath(fields, p.spanFrom(start), path, value); err != nil {
			return p.errorf("%s", err.Error())
		}
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(token.RBRACE); !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected `}` to close record")
	}
	return ast.NewRecord(p.spanFrom(start), fields, open)
}

// parseFieldPath parses `ident (. ident)*` for a record field's LHS.
func (p *Parser) parseFieldPath() ([]string, bool) {
	first, ok := p.expect(token.IDENT)
	if !ok {
		return nil, false
	}
	path := []string{first.Lexeme}
	for p.at(token.DOT) {
		p.advance()
		next, ok := p.expect(token.IDENT)
		if !ok {
			return nil, false
		}
		path = append(path, next.Lexeme)
	}
	return path, true
}

func insertFieldPath(fields map[string]ast.Term, pos ident.Pos, path []string, value ast.Term) error {
	head := path[0]
	if len(path) == 1 {
		if _, dup := fields[head]; dup {
			return fieldErr(head)
		}
		fields[head] = value
		return nil
	}
	var child map[string]ast.Term
	if existing, ok := fields[head]; ok {
		rec, isRec := existing.(ast.Record)
		if !isRec {
			return fieldErr(head)
		}
		child = rec.Fields
	} else {
		child = map[string]ast.Term{}
	}
	if err := insertFieldPath(child, pos, path[1:], value); err != nil {
		return err
	}
	fields[head] = ast.NewRecord(pos, child, false)
	return nil
}

type fieldConflictError string

func (e fieldConflictError) Error() string {
	return "duplicate or conflicting field `" + string(e) + "` in record literal"
}

func fieldErr(name string) error { return fieldConflictError(name) }

// attachType wraps value in (or extends an existing) MetaValue carrying
// a type annotation, flattening so a MetaValue is never nested directly
// inside another MetaValue.
func attachType(pos ident.Pos, value ast.Term, ty ast.TypeAnnotation) ast.Term {
	if mv, ok := value.(ast.MetaValue); ok {
		if mv.Type == nil {
			mv.Type = ty
		}
		return mv
	}
	mv := ast.NewMetaValue(pos, value)
	mv.Type = ty
	return mv
}
