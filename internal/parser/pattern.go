package parser

import (
	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/token"
)

// parsePattern parses a record destructuring pattern:
//	{ x, y : Num = 0, z = { a, b }, ..rest }
// A field with no `=` binds the field's value directly (MatchSimple). A
// field whose `=` is followed by `{` destructures a nested pattern
// (MatchAssign); any other `=` value is a default for MatchSimple.
// Aliasing a MatchAssign field to an additional whole-value binding
// (`BindName`) is not exposed in surface syntax — the grammar has no
// token for it — so parsed MatchAssign fields always leave BindName
// empty.
func (p *Parser) parsePattern() *ast.Pattern {
	if !p.at(token.LBRACE) {
		return nil
	}
	p.advance() // `{`
	pat := &ast.Pattern{}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.DOTDOT) {
			p.advance()
			if p.at(token.IDENT) {
				rest := p.advance()
				pat.Rest = rest.Lexeme
			} else {
				pat.Open = true
			}
			break
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			return nil
		}

		var ty ast.TypeAnnotation
		if p.at(token.COLON) {
			p.advance()
			ty = p.parseType()
			if ty == nil {
				return nil
			}
		}

		if p.at(token.EQUAL) {
			p.advance()
			if p.at(token.LBRACE) {
				nested := p.parsePattern()
				if nested == nil {
					return nil
				}
				pat.Fields = append(pat.Fields, ast.MatchField{
					Kind:      ast.MatchAssign,
					FieldName: nameTok.Lexeme,
					Meta:      ast.FieldMeta{Type: ty},
					Nested:    nested,
				})
			} else {
				def := p.parseExpr()
				if isErr(def) {
					return nil
				}
				pat.Fields = append(pat.Fields, ast.MatchField{
					Kind:      ast.MatchSimple,
					FieldName: nameTok.Lexeme,
					BindName:  nameTok.Lexeme,
					Meta:      ast.FieldMeta{Type: ty, Default: def},
				})
			}
		} else {
			pat.Fields = append(pat.Fields, ast.MatchField{
				Kind:      ast.MatchSimple,
				FieldName: nameTok.Lexeme,
				BindName:  nameTok.Lexeme,
				Meta:      ast.FieldMeta{Type: ty},
			})
		}

		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(token.RBRACE); !ok {
		return nil
	}
	return pat
}
