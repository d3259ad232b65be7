// Package parser turns a token stream from internal/lexer into an
// internal/ast.Term: a flat token slice with an index cursor, one parse
// function per grammar level, and precedence climbing for infix and
// postfix operators at the expression core.
//
// Recovery is deliberately simple: the first malformed construct produces
// an ast.ParseError node plus a recorded diag.Diagnostic and parsing
// stops there, rather than attempting statement-level resynchronization.
// A lucid source file is a single expression, so a broken subterm
// generally voids everything depending on it anyway.
package parser

import (
	"fmt"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/diag"
	"github.com/lucid-lang/lucid/internal/ident"
	"github.com/lucid-lang/lucid/internal/lexer"
	"github.com/lucid-lang/lucid/internal/token"
)

// Parser holds the full token stream for srcID and a cursor into it.
// Buffering the whole stream up front (rather than a 1-2 token lookahead
// window) keeps the precedence climbing below simple, since a handful of
// grammar rules (record fields, pattern fields) need to peek two tokens
// ahead to disambiguate.
type Parser struct {
	toks  []token.Token
	pos   int
	srcID int
	diags []*diag.Diagnostic
	// noBraceArg suppresses `{` starting an application argument while a
	// switch scrutinee is being parsed, so the case block is not consumed
	// as a record-literal argument. Reset inside any bracketed context.
	noBraceArg bool
}

// New tokenizes content in full and returns a Parser positioned at the
// first token.
func New(srcID int, content string) *Parser {
	lx := lexer.New(content)
	var toks []token.Token
	for {
		t := lx.NextToken()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return &Parser{toks: toks, srcID: srcID}
}

// Diagnostics returns every diagnostic recorded while parsing.
func (p *Parser) Diagnostics() []*diag.Diagnostic { return p.diags }

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.errorf("expected %s, found %q", k, p.cur().Lexeme)
	return p.cur(), false
}

func (p *Parser) posOf(t token.Token) ident.Pos {
	return ident.Pos{SourceID: p.srcID, Start: t.Start, End: t.End, Valid: true}
}

func (p *Parser) spanFrom(start token.Token) ident.Pos {
	end := p.toks[p.pos-1]
	if p.pos == 0 {
		end = start
	}
	return ident.Pos{SourceID: p.srcID, Start: start.Start, End: end.End, Valid: true}
}

func (p *Parser) errorf(format string, args ...any) ast.Term {
	pos := p.posOf(p.cur())
	msg := fmt.Sprintf(format, args...)
	p.diags = append(p.diags, diag.New(diag.KindParse, pos, msg))
	return ast.NewParseError(pos, msg)
}

// ParseProgram parses a whole source file: a single top-level
// expression, required to consume every token.
func (p *Parser) ParseProgram() ast.Term {
	term := p.parseExpr()
	if !p.at(token.EOF) {
		return p.errorf("unexpected trailing input after top-level expression, starting with %q", p.cur().Lexeme)
	}
	return term
}

// Parse is the internal/imports.Parser-shaped entry point: parse source
// already registered under srcID, returning the first diagnostic (if
// any) as a *diag.Error, so callers that only see `error` still reach
// the diagnostic's kind and span through errors.As.
func Parse(srcID int, content string) (ast.Term, error) {
	p := New(srcID, content)
	term := p.ParseProgram()
	if len(p.diags) > 0 {
		return term, &diag.Error{Diag: p.diags[0]}
	}
	return term, nil
}

// ParseWithDiagnostics is Parse's richer sibling for callers that want
// every recorded diagnostic, not just the first one as an error.
func ParseWithDiagnostics(srcID int, content string) (ast.Term, []*diag.Diagnostic) {
	p := New(srcID, content)
	term := p.ParseProgram()
	return term, p.diags
}
