package parser

import (
	"strings"

	"github.com/lucid-lang/lucid/internal/ast"
	"github.com/lucid-lang/lucid/internal/contracts"
	"github.com/lucid-lang/lucid/internal/lexer"
	"github.com/lucid-lang/lucid/internal/token"
)

func isErr(t ast.Term) bool {
	_, ok := t.(ast.ParseError)
	return ok
}

// parseExpr is the entry point for any expression position: an
// operator-precedence expression optionally decorated with one or more
// `| annotation` suffixes.
func (p *Parser) parseExpr() ast.Term {
	start := p.cur()
	term := p.parseOr()
	if isErr(term) {
		return term
	}
	var doc *string
	var ty ast.TypeAnnotation
	var cs []ast.Contract
	priority := ast.PriorityNormal
	annotated := false
	for p.at(token.PIPE) {
		p.advance()
		annotated = true
		switch {
		case p.at(token.DOC):
			p.advance()
			s, ok := p.expect(token.STR_LITERAL)
			if !ok {
				return ast.NewParseError(p.posOf(p.cur()), "expected a string after `doc`")
			}
			text := s.Lexeme
			doc = &text
		case p.at(token.DEFAULT):
			p.advance()
			priority = ast.PriorityDefault
		case p.at(token.HASH):
			p.advance()
			pred := p.parseApp()
			if isErr(pred) {
				return pred
			}
			cs = append(cs, contracts.FlatC{Expr: pred})
		default:
			ty2 := p.parseType()
			if ty2 == nil {
				return ast.NewParseError(p.posOf(p.cur()), "expected an annotation after `|`")
			}
			ty = ty2
		}
	}
	if !annotated {
		return term
	}
	// NewMetaValue flattens: if term is itself annotated (parenthesized
	// inner annotations), merge into its MetaValue rather than nesting,
	// keeping the inner decoration wherever this layer adds nothing.
	mv := ast.NewMetaValue(p.spanFrom(start), term)
	if doc != nil {
		mv.Doc = doc
	}
	if mv.Type == nil {
		mv.Type = ty
	}
	mv.Contracts = append(mv.Contracts, cs...)
	if priority == ast.PriorityDefault {
		mv.Priority = priority
	}
	return mv
}

func (p *Parser) binaryLevel(next func() ast.Term, ops map[token.Kind]string) ast.Term {
	start := p.cur()
	lhs := next()
	if isErr(lhs) {
		return lhs
	}
	for {
		op, ok := ops[p.cur().Kind]
		if !ok {
			return lhs
		}
		p.advance()
		rhs := next()
		if isErr(rhs) {
			return rhs
		}
		lhs = ast.NewOp2(p.spanFrom(start), op, lhs, rhs)
	}
}

func (p *Parser) parseOr() ast.Term {
	return p.binaryLevel(p.parseAnd, map[token.Kind]string{token.OROR: "BoolOr"})
}

func (p *Parser) parseAnd() ast.Term {
	return p.binaryLevel(p.parseEq, map[token.Kind]string{token.ANDAND: "BoolAnd"})
}

func (p *Parser) parseEq() ast.Term {
	return p.binaryLevel(p.parseCmp, map[token.Kind]string{token.EQEQ: "Eq", token.NEQ: "Neq"})
}

func (p *Parser) parseCmp() ast.Term {
	return p.binaryLevel(p.parseMerge, map[token.Kind]string{
		token.LT: "Lt", token.LE: "Le", token.GT: "Gt", token.GE: "Ge",
	})
}

// parseMerge handles `&`, record merge. Placed below
// concatenation/arithmetic so `a & b ++ c` parses `b ++ c` before
// merging, matching how a config author reads a merge as "the whole
// right-hand expression".
func (p *Parser) parseMerge() ast.Term {
	start := p.cur()
	lhs := p.parseConcat()
	if isErr(lhs) {
		return lhs
	}
	for p.at(token.AMP) {
		p.advance()
		rhs := p.parseConcat()
		if isErr(rhs) {
			return rhs
		}
		lhs = ast.NewOp2(p.spanFrom(start), "Merge", lhs, rhs)
	}
	return lhs
}

func (p *Parser) parseConcat() ast.Term {
	return p.binaryLevel(p.parseAdd, map[token.Kind]string{
		token.PLUSPLUS: "StrConcat",
		token.AT:       "ListConcat",
	})
}

func (p *Parser) parseAdd() ast.Term {
	return p.binaryLevel(p.parseMul, map[token.Kind]string{token.PLUS: "Add", token.MINUS: "Sub"})
}

func (p *Parser) parseMul() ast.Term {
	return p.binaryLevel(p.parseUnary, map[token.Kind]string{
		token.STAR: "Mul", token.SLASH: "Div", token.PERCENT: "Mod",
	})
}

func (p *Parser) parseUnary() ast.Term {
	start := p.cur()
	switch p.cur().Kind {
	case token.MINUS:
		p.advance()
		a := p.parseUnary()
		if isErr(a) {
			return a
		}
		return ast.NewOp1(p.spanFrom(start), "Neg", a)
	case token.BANG:
		p.advance()
		a := p.parseUnary()
		if isErr(a) {
			return a
		}
		return ast.NewOp1(p.spanFrom(start), "BoolNot", a)
	default:
		return p.parsePow()
	}
}

// parsePow binds tighter than unary minus and is right-associative, so
// `2 ^ 3 ^ 2` parses as `2 ^ (3 ^ 2)` and `-2 ^ 2` parses as `-(2 ^ 2)`,
// matching the usual mathematical convention for exponentiation.
func (p *Parser) parsePow() ast.Term {
	start := p.cur()
	lhs := p.parseApp()
	if isErr(lhs) {
		return lhs
	}
	if !p.at(token.CARET) {
		return lhs
	}
	p.advance()
	rhs := p.parseUnary()
	if isErr(rhs) {
		return rhs
	}
	return ast.NewOp2(p.spanFrom(start), "Pow", lhs, rhs)
}

// parseApp parses left-associative application by juxtaposition:
// `f x y` is `App(App(f, x), y)`. Application binds
// tighter than every binary operator but looser than field access, so
// `f x.y` applies f to the projection, and `f x + 1` parses as
// `(f x) + 1`.
func (p *Parser) parseApp() ast.Term {
	start := p.cur()
	fn := p.parsePostfix()
	if isErr(fn) {
		return fn
	}
	for p.startsAtom(p.cur().Kind) {
		arg := p.parsePostfix()
		if isErr(arg) {
			return arg
		}
		fn = ast.NewApp(p.spanFrom(start), fn, arg)
	}
	return fn
}

// startsAtom reports whether k can begin a primary expression, used to
// decide whether application juxtaposition continues.
func (p *Parser) startsAtom(k token.Kind) bool {
	if k == token.LBRACE && p.noBraceArg {
		return false
	}
	switch k {
	case token.IDENT, token.NUM, token.STR_LITERAL, token.ENUM_TAG,
		token.TRUE, token.FALSE, token.NULL, token.UNDERSCORE,
		token.LPAREN, token.LBRACE, token.LBRACKET,
		token.LET, token.IF, token.FUN, token.SWITCH, token.IMPORT, token.BANG:
		return true
	default:
		return false
	}
}

func (p *Parser) parsePostfix() ast.Term {
	start := p.cur()
	term := p.parsePrimary()
	if isErr(term) {
		return term
	}
	for p.at(token.DOT) {
		p.advance()
		name, ok := p.expect(token.IDENT)
		if !ok {
			return ast.NewParseError(p.posOf(p.cur()), "expected a field name after `.`")
		}
		term = ast.NewFieldAccess(p.spanFrom(start), term, name.Lexeme)
	}
	return term
}

func (p *Parser) parsePrimary() ast.Term {
	t := p.cur()
	switch t.Kind {
	case token.NUM:
		p.advance()
		v, err := lexer.ParseNumberLiteral(t.Lexeme)
		if err != nil {
			return p.errorf("invalid number literal %q", t.Lexeme)
		}
		return ast.NewNum(p.posOf(t), v)
	case token.STR_LITERAL:
		p.advance()
		return p.parseStringLiteral(t)
	case token.ENUM_TAG:
		p.advance()
		return ast.NewEnum(p.posOf(t), t.Lexeme)
	case token.TRUE:
		p.advance()
		return ast.NewBool(p.posOf(t), true)
	case token.FALSE:
		p.advance()
		return ast.NewBool(p.posOf(t), false)
	case token.NULL:
		p.advance()
		return ast.NewNull(p.posOf(t))
	case token.IDENT:
		p.advance()
		return ast.NewVar(p.posOf(t), t.Lexeme)
	case token.LPAREN:
		p.advance()
		saved := p.noBraceArg
		p.noBraceArg = false
		inner := p.parseExpr()
		p.noBraceArg = saved
		if isErr(inner) {
			return inner
		}
		if _, ok := p.expect(token.RPAREN); !ok {
			return ast.NewParseError(p.posOf(p.cur()), "expected `)`")
		}
		return inner
	case token.LBRACKET:
		return p.parseList(t)
	case token.LBRACE:
		return p.parseRecord(t)
	case token.LET:
		return p.parseLet(t)
	case token.IF:
		return p.parseIf(t)
	case token.FUN:
		return p.parseFun(t)
	case token.SWITCH:
		return p.parseSwitch(t)
	case token.IMPORT:
		return p.parseImport(t)
	default:
		return p.errorf("unexpected token %q", t.Lexeme)
	}
}

func (p *Parser) parseList(start token.Token) ast.Term {
	p.advance() // `[`
	saved := p.noBraceArg
	p.noBraceArg = false
	defer func() { p.noBraceArg = saved }()
	var elems []ast.Term
	for !p.at(token.RBRACKET) && !p.at(token.EOF) {
		e := p.parseExpr()
		if isErr(e) {
			return e
		}
		elems = append(elems, e)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(token.RBRACKET); !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected `]`")
	}
	return ast.NewList(p.spanFrom(start), elems)
}

func (p *Parser) parseLet(start token.Token) ast.Term {
	p.advance() // `let`
	name, ok := p.expect(token.IDENT)
	if !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected an identifier after `let`")
	}
	if _, ok := p.expect(token.EQUAL); !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected `=` in let binding")
	}
	bound := p.parseExpr()
	if isErr(bound) {
		return bound
	}
	if _, ok := p.expect(token.IN); !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected `in` after let binding")
	}
	body := p.parseExpr()
	if isErr(body) {
		return body
	}
	return ast.NewLet(p.spanFrom(start), name.Lexeme, bound, body)
}

func (p *Parser) parseIf(start token.Token) ast.Term {
	p.advance() // `if`
	cond := p.parseExpr()
	if isErr(cond) {
		return cond
	}
	if _, ok := p.expect(token.THEN); !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected `then`")
	}
	then := p.parseExpr()
	if isErr(then) {
		return then
	}
	if _, ok := p.expect(token.ELSE); !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected `else`")
	}
	els := p.parseExpr()
	if isErr(els) {
		return els
	}
	return ast.NewIf(p.spanFrom(start), cond, then, els)
}

// parseFun parses `fun p1 p2 ... => body`, where each parameter is
// either a bare identifier or a destructuring pattern, optionally named
// (`name@{ ... }`). Multiple parameters desugar into nested single-arg
// lambdas.
func (p *Parser) parseFun(start token.Token) ast.Term {
	p.advance() // `fun`
	type param struct {
		name    string
		hasPat  bool
		pat     *ast.Pattern
		patName *string
	}
	var parsed []param
	for !p.at(token.FAT_ARROW) && !p.at(token.EOF) {
		if p.at(token.LBRACE) {
			pat := p.parsePattern()
			if pat == nil {
				return ast.NewParseError(p.posOf(p.cur()), "malformed pattern")
			}
			parsed = append(parsed, param{hasPat: true, pat: pat})
			continue
		}
		if p.at(token.IDENT) {
			nameTok := p.advance()
			if p.at(token.AT) {
				p.advance() // `@`
				if !p.at(token.LBRACE) {
					return p.errorf("expected a destructuring pattern after `@`")
				}
				pat := p.parsePattern()
				if pat == nil {
					return ast.NewParseError(p.posOf(p.cur()), "malformed pattern")
				}
				patName := nameTok.Lexeme
				parsed = append(parsed, param{hasPat: true, pat: pat, patName: &patName})
				continue
			}
			parsed = append(parsed, param{name: nameTok.Lexeme})
			continue
		}
		return p.errorf("expected a parameter or `=>` in function")
	}
	if _, ok := p.expect(token.FAT_ARROW); !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected `=>`")
	}
	body := p.parseExpr()
	if isErr(body) {
		return body
	}
	if len(parsed) == 0 {
		return p.errorf("function requires at least one parameter")
	}
	result := body
	for i := len(parsed) - 1; i >= 0; i-- {
		pr := parsed[i]
		if pr.hasPat {
			result = ast.NewFunPattern(p.spanFrom(start), pr.patName, pr.pat, result)
		} else {
			result = ast.NewFun(p.spanFrom(start), pr.name, result)
		}
	}
	return result
}

func (p *Parser) parseSwitch(start token.Token) ast.Term {
	p.advance() // `switch`
	saved := p.noBraceArg
	p.noBraceArg = true
	scrutinee := p.parseExpr()
	p.noBraceArg = saved
	if isErr(scrutinee) {
		return scrutinee
	}
	if _, ok := p.expect(token.LBRACE); !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected `{` after switch scrutinee")
	}
	cases := map[string]ast.Term{}
	var def ast.Term
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.UNDERSCORE) {
			p.advance()
			if _, ok := p.expect(token.FAT_ARROW); !ok {
				return ast.NewParseError(p.posOf(p.cur()), "expected `=>` after `_`")
			}
			branch := p.parseExpr()
			if isErr(branch) {
				return branch
			}
			if def != nil {
				return p.errorf("duplicate default case in switch")
			}
			def = branch
		} else {
			tagTok, ok := p.expect(token.ENUM_TAG)
			if !ok {
				return ast.NewParseError(p.posOf(p.cur()), "expected an enum tag or `_` in switch case")
			}
			if _, ok := p.expect(token.FAT_ARROW); !ok {
				return ast.NewParseError(p.posOf(p.cur()), "expected `=>` after case tag")
			}
			branch := p.parseExpr()
			if isErr(branch) {
				return branch
			}
			if _, dup := cases[tagTok.Lexeme]; dup {
				return p.errorf("duplicate case for tag `%s", tagTok.Lexeme)
			}
			cases[tagTok.Lexeme] = branch
		}
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if _, ok := p.expect(token.RBRACE); !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected `}` to close switch")
	}
	return ast.NewSwitch(p.spanFrom(start), scrutinee, cases, def)
}

// parseStringLiteral splits a STR_LITERAL token's already-unescaped
// lexeme on `${...}`/`#{...}` interpolation markers (internal/lexer.
// readString leaves these untouched, tracking brace depth only so it
// knows where an interpolated expression ends). A literal with no
// interpolation collapses to a plain ast.Str rather than a one-chunk
// StrChunks.
func (p *Parser) parseStringLiteral(t token.Token) ast.Term {
	pos := p.posOf(t)
	s := t.Lexeme
	var chunks []ast.Chunk
	i := 0
	for i < len(s) {
		j := indexInterpMarker(s[i:])
		if j < 0 {
			chunks = append(chunks, ast.Chunk{Kind: ast.ChunkLiteral, Text: s[i:]})
			break
		}
		j += i
		if j > i {
			chunks = append(chunks, ast.Chunk{Kind: ast.ChunkLiteral, Text: s[i:j]})
		}
		depth := 1
		k := j + 2
		for k < len(s) && depth > 0 {
			switch s[k] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
			k++
		}
		if depth != 0 {
			return p.errorf("unterminated string interpolation in %q", s)
		}
		sub := New(p.srcID, s[j+2:k])
		expr := sub.ParseProgram()
		p.diags = append(p.diags, sub.diags...)
		chunks = append(chunks, ast.Chunk{Kind: ast.ChunkExpr, Expr: expr})
		i = k + 1
	}
	if len(chunks) == 0 {
		return ast.NewStr(pos, "")
	}
	if len(chunks) == 1 && chunks[0].Kind == ast.ChunkLiteral {
		return ast.NewStr(pos, chunks[0].Text)
	}
	for l, r := 0, len(chunks)-1; l < r; l, r = l+1, r-1 {
		chunks[l], chunks[r] = chunks[r], chunks[l]
	}
	return ast.NewStrChunksReversed(pos, chunks)
}

// indexInterpMarker returns the index of whichever interpolation marker
// (`${` or `#{`) occurs first in s, or -1 if neither is present.
func indexInterpMarker(s string) int {
	dollar := strings.Index(s, "${")
	hash := strings.Index(s, "#{")
	switch {
	case dollar < 0:
		return hash
	case hash < 0:
		return dollar
	case hash < dollar:
		return hash
	default:
		return dollar
	}
}

func (p *Parser) parseImport(start token.Token) ast.Term {
	p.advance() // `import`
	s, ok := p.expect(token.STR_LITERAL)
	if !ok {
		return ast.NewParseError(p.posOf(p.cur()), "expected a string path after `import`")
	}
	return ast.NewImport(p.spanFrom(start), s.Lexeme)
}
