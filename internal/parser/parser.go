// Package parser builds an ast.File from a token stream produced by the
// lexer. It is a hand-written recursive-descent parser with Pratt-style
// expression parsing, following the same structure the lexer uses for
// position tracking.
package parser

import (
	"fmt"

	"github.com/teacompiler/teac/internal/ast"
	"github.com/teacompiler/teac/internal/diag"
	"github.com/teacompiler/teac/internal/lexer"
)

// precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	COALESCE_PREC
	OR_PREC
	AND_PREC
	EQUALS
	LESSGREATER
	RANGE_PREC
	SUM
	PRODUCT
	UNARY
	UNWRAP
	CALL
	INDEX
)

var precedences = map[lexer.TokenType]int{
	lexer.COALESCE: COALESCE_PREC,
	lexer.OR:       OR_PREC,
	lexer.AND:      AND_PREC,
	lexer.EQ:       EQUALS,
	lexer.NOT_EQ:   EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LE:       LESSGREATER,
	lexer.GE:       LESSGREATER,
	lexer.DOTDOT:   RANGE_PREC,
	lexer.DOTDOTEQ: RANGE_PREC,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.BANG:     UNWRAP,
	lexer.LPAREN:   CALL,
	lexer.DOT:      CALL,
	lexer.LBRACKET: INDEX,
}

// ParseError is a parser-level diagnostic.
type ParseError struct {
	Message string
	Span    lexer.Span
}

func (e ParseError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     diag.CodeParserUnexpectedToken,
		Message:  e.Message,
		Span: diag.Span{
			Filename: e.Span.Filename, Line: e.Span.Line, Column: e.Span.Column,
			Start: e.Span.Start, End: e.Span.End,
		},
	}
}

// Parser consumes a lexer's token stream and produces an ast.File.
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	lambdaSeq int

	Errors []ParseError
}

// New creates a parser over the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) addError(format string, args ...interface{}) {
	p.Errors = append(p.Errors, ParseError{Message: fmt.Sprintf(format, args...), Span: p.cur.Span})
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if !p.curIs(t) {
		p.addError("expected %s, found %s (%q)", t, p.cur.Type, p.cur.Raw)
		return p.cur
	}
	tok := p.cur
	p.next()
	return tok
}

func (p *Parser) accept(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	return false
}

func toSpan(s lexer.Span) lexer.Span { return s }

func joinSpan(start, end lexer.Span) lexer.Span {
	return lexer.Span{Filename: start.Filename, Line: start.Line, Column: start.Column, Start: start.Start, End: end.End}
}

// ParseFile parses an entire compilation unit.
func (p *Parser) ParseFile() *ast.File {
	start := p.cur.Span
	f := ast.NewFile(start)

	if p.curIs(lexer.PACKAGE) {
		pkgStart := p.cur.Span
		p.next()
		name := p.parseIdent()
		f.Package = ast.NewPackageDecl(name, joinSpan(pkgStart, name.Span()))
	}

	for !p.curIs(lexer.EOF) {
		if p.curIs(lexer.USE) {
			f.Uses = append(f.Uses, p.parseUseDecl())
			continue
		}
		d := p.parseDecl()
		if d != nil {
			f.Decls = append(f.Decls, d)
		} else {
			p.next()
		}
	}
	f.SetSpan(joinSpan(start, p.cur.Span))
	return f
}

func (p *Parser) parseIdent() *ast.Ident {
	tok := p.expect(lexer.IDENT)
	return ast.NewIdent(tok.Raw, tok.Span)
}

func (p *Parser) parseUseDecl() *ast.UseDecl {
	start := p.cur.Span
	p.next() // 'use'
	var path []*ast.Ident
	path = append(path, p.parseIdent())
	for p.accept(lexer.DOT) {
		path = append(path, p.parseIdent())
	}
	var alias *ast.Ident
	if p.accept(lexer.AS) {
		alias = p.parseIdent()
	}
	end := p.cur.Span
	p.accept(lexer.SEMICOLON)
	return ast.NewUseDecl(path, alias, joinSpan(start, end))
}

func (p *Parser) parseDecl() ast.Decl {
	pub := p.accept(lexer.PUB)
	switch p.cur.Type {
	case lexer.FN:
		return p.parseFnDecl(pub)
	case lexer.STRUCT:
		return p.parseStructDecl(pub)
	case lexer.ERROR:
		return p.parseErrorDecl(pub)
	case lexer.LET, lexer.MUT, lexer.CONST:
		return p.parseConstDecl(pub)
	case lexer.TEST:
		return p.parseTestDecl()
	default:
		p.addError("unexpected top-level token %s", p.cur.Type)
		return nil
	}
}

func (p *Parser) parseFnDecl(pub bool) *ast.FnDecl {
	start := p.cur.Span
	p.next() // 'fn'
	name := p.parseIdent()

	var typeParams []*ast.TypeParam
	if p.accept(lexer.LT) {
		for !p.curIs(lexer.GT) {
			typeParams = append(typeParams, ast.NewTypeParam(p.parseIdent(), p.cur.Span))
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.GT)
	}

	p.expect(lexer.LPAREN)
	var params []*ast.Param
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		pname := p.parseIdent()
		p.expect(lexer.COLON)
		ptype := p.parseTypeExpr()
		params = append(params, ast.NewParam(pname, ptype, joinSpan(pname.Span(), ptype.Span())))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)

	var ret ast.TypeExpr
	canThrow := false
	if p.accept(lexer.ARROW) {
		ret = p.parseTypeExpr()
	}
	if p.accept(lexer.BANG) {
		canThrow = true
	}

	body := p.parseBlockExpr()
	return ast.NewFnDecl(pub, name, typeParams, params, ret, canThrow, body, joinSpan(start, body.Span()))
}

func (p *Parser) parseTypeExpr() ast.TypeExpr {
	var base ast.TypeExpr
	switch p.cur.Type {
	case lexer.LBRACKET:
		start := p.cur.Span
		p.next()
		elem := p.parseTypeExpr()
		end := p.cur.Span
		p.expect(lexer.RBRACKET)
		base = ast.NewListType(elem, joinSpan(start, end))
	case lexer.LBRACE:
		start := p.cur.Span
		p.next()
		if key := p.parseIdent(); key.Name != "String" { // fixed key type: String (spec §3.1 Dict is string-keyed)
			p.addError("dict key type must be String, found %s", key.Name)
		}
		p.expect(lexer.COLON)
		val := p.parseTypeExpr()
		end := p.cur.Span
		p.expect(lexer.RBRACE)
		base = ast.NewDictType(val, joinSpan(start, end))
	case lexer.FN:
		start := p.cur.Span
		p.next()
		p.expect(lexer.LPAREN)
		var params []ast.TypeExpr
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			params = append(params, p.parseTypeExpr())
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN)
		var ret ast.TypeExpr
		if p.accept(lexer.ARROW) {
			ret = p.parseTypeExpr()
		}
		base = ast.NewFunctionType(params, ret, joinSpan(start, p.cur.Span))
	default:
		name := p.parseIdent()
		var args []ast.TypeExpr
		sp := name.Span()
		if p.accept(lexer.LT) {
			for !p.curIs(lexer.GT) {
				args = append(args, p.parseTypeExpr())
				if !p.accept(lexer.COMMA) {
					break
				}
			}
			sp = joinSpan(name.Span(), p.cur.Span)
			p.expect(lexer.GT)
		}
		if p.curIs(lexer.DOT) {
			// ErrorName.Variant type reference
			p.next()
			variant := p.parseIdent()
			base = ast.NewErrorType(name, variant, joinSpan(name.Span(), variant.Span()))
		} else {
			base = ast.NewNamedType(name, args, sp)
		}
	}
	if p.curIs(lexer.ILLEGAL) && p.cur.Raw == "?" {
		// T? optional type; the lexer yields a lone '?' as an ILLEGAL token.
		end := p.cur.Span
		p.next()
		base = ast.NewOptionalType(base, joinSpan(base.Span(), end))
	}
	return base
}

func (p *Parser) parseStructDecl(pub bool) *ast.StructDecl {
	start := p.cur.Span
	p.next() // 'struct'
	name := p.parseIdent()
	var typeParams []*ast.TypeParam
	if p.accept(lexer.LT) {
		for !p.curIs(lexer.GT) {
			typeParams = append(typeParams, ast.NewTypeParam(p.parseIdent(), p.cur.Span))
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.GT)
	}
	p.expect(lexer.LBRACE)
	var fields []*ast.StructField
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		fname := p.parseIdent()
		p.expect(lexer.COLON)
		ftype := p.parseTypeExpr()
		fields = append(fields, ast.NewStructField(fname, ftype, joinSpan(fname.Span(), ftype.Span())))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	end := p.cur.Span
	p.expect(lexer.RBRACE)
	return ast.NewStructDecl(pub, name, typeParams, fields, joinSpan(start, end))
}

func (p *Parser) parseErrorDecl(pub bool) *ast.ErrorDecl {
	start := p.cur.Span
	p.next() // 'error'
	name := p.parseIdent()
	p.expect(lexer.LBRACE)
	var variants []*ast.ErrorVariant
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		vname := p.parseIdent()
		var fields []*ast.StructField
		vstart := vname.Span()
		vend := vstart
		if p.accept(lexer.LPAREN) {
			for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
				fname := p.parseIdent()
				p.expect(lexer.COLON)
				ftype := p.parseTypeExpr()
				fields = append(fields, ast.NewStructField(fname, ftype, joinSpan(fname.Span(), ftype.Span())))
				if !p.accept(lexer.COMMA) {
					break
				}
			}
			vend = p.cur.Span
			p.expect(lexer.RPAREN)
		}
		variants = append(variants, ast.NewErrorVariant(vname, fields, joinSpan(vstart, vend)))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	end := p.cur.Span
	p.expect(lexer.RBRACE)
	return ast.NewErrorDecl(pub, name, variants, joinSpan(start, end))
}

func (p *Parser) parseConstDecl(pub bool) *ast.ConstDecl {
	start := p.cur.Span
	mutable := p.curIs(lexer.MUT)
	p.next() // 'let'/'mut'/'const'
	name := p.parseIdent()
	var typ ast.TypeExpr
	if p.accept(lexer.COLON) {
		typ = p.parseTypeExpr()
	}
	p.expect(lexer.ASSIGN)
	value := p.parseExpr(LOWEST)
	end := p.cur.Span
	p.accept(lexer.SEMICOLON)
	return ast.NewConstDecl(pub, mutable, name, typ, value, joinSpan(start, end))
}

func (p *Parser) parseTestDecl() *ast.TestDecl {
	start := p.cur.Span
	p.next() // 'test'
	nameTok := p.expect(lexer.STRING)
	name := ast.NewStringLit(nameTok.Value, nameTok.Span)
	body := p.parseBlockExpr()
	return ast.NewTestDecl(name, body, joinSpan(start, body.Span()))
}

// parseBlockExpr parses { stmt* tailExpr? }.
func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	start := p.cur.Span
	p.expect(lexer.LBRACE)

	var stmts []ast.Stmt
	var tail ast.Expr

	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if s, isTail := p.parseStmtOrTail(); isTail {
			tail = s.(tailWrap).Expr
			break
		} else {
			stmts = append(stmts, s.(ast.Stmt))
		}
	}
	end := p.cur.Span
	p.expect(lexer.RBRACE)
	return ast.NewBlockExpr(stmts, tail, joinSpan(start, end))
}

// tailWrap signals a trailing expression with no terminating semicolon.
type tailWrap struct{ Expr ast.Expr }

func (tailWrap) Span() lexer.Span { return lexer.Span{} }

// parseStmtOrTail parses one statement. It returns (tailWrap{expr}, true)
// when the parsed expression statement has no semicolon and we are at the
// end of the block (making it the block's value).
func (p *Parser) parseStmtOrTail() (interface{}, bool) {
	switch p.cur.Type {
	case lexer.LET, lexer.MUT:
		return p.parseLetStmt(), false
	case lexer.RETURN:
		return p.parseReturnStmt(), false
	case lexer.THROW:
		return p.parseThrowStmt(), false
	case lexer.BREAK:
		sp := p.cur.Span
		p.next()
		p.accept(lexer.SEMICOLON)
		return ast.NewBreakStmt(sp), false
	case lexer.CONTINUE:
		sp := p.cur.Span
		p.next()
		p.accept(lexer.SEMICOLON)
		return ast.NewContinueStmt(sp), false
	case lexer.WHILE:
		return p.parseWhileStmt(), false
	case lexer.FOR:
		return p.parseForStmt(), false
	case lexer.IF:
		ifx := p.parseIfTail()
		if p.curIs(lexer.RBRACE) {
			return tailWrap{Expr: ifx}, true
		}
		return ast.NewExprStmt(ifx, ifx.Span()), false
	default:
		expr := p.parseExpr(LOWEST)
		if p.accept(lexer.SEMICOLON) {
			return ast.NewExprStmt(expr, expr.Span()), false
		}
		if p.curIs(lexer.RBRACE) {
			return tailWrap{Expr: expr}, true
		}
		return ast.NewExprStmt(expr, expr.Span()), false
	}
}

// parseIfTail parses an `if`/`else if`/`else` chain and always returns an
// *ast.IfExpr; in statement position the caller wraps it in an ExprStmt,
// and in tail position it becomes the block's value (§4.5).
func (p *Parser) parseIfTail() ast.Expr {
	start := p.cur.Span
	var clauses []*ast.IfClause
	for {
		clauseStart := p.cur.Span
		p.expect(lexer.IF)
		cond := p.parseExpr(LOWEST)
		body := p.parseBlockExpr()
		clauses = append(clauses, ast.NewIfClause(cond, body, joinSpan(clauseStart, body.Span())))
		if p.curIs(lexer.ELSE) && p.peekIs(lexer.IF) {
			p.next()
			continue
		}
		break
	}
	var els *ast.BlockExpr
	end := clauses[len(clauses)-1].Body.Span()
	if p.accept(lexer.ELSE) {
		els = p.parseBlockExpr()
		end = els.Span()
	}
	return ast.NewIfExpr(clauses, els, joinSpan(start, end))
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	start := p.cur.Span
	mutable := p.curIs(lexer.MUT)
	p.next()
	name := p.parseIdent()
	var typ ast.TypeExpr
	if p.accept(lexer.COLON) {
		typ = p.parseTypeExpr()
	}
	p.expect(lexer.ASSIGN)
	value := p.parseExpr(LOWEST)
	end := p.cur.Span
	p.accept(lexer.SEMICOLON)
	return ast.NewLetStmt(mutable, name, typ, value, joinSpan(start, end))
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	start := p.cur.Span
	p.next()
	var value ast.Expr
	if !p.curIs(lexer.SEMICOLON) && !p.curIs(lexer.RBRACE) {
		value = p.parseExpr(LOWEST)
	}
	end := p.cur.Span
	p.accept(lexer.SEMICOLON)
	return ast.NewReturnStmt(value, joinSpan(start, end))
}

func (p *Parser) parseThrowStmt() *ast.ThrowStmt {
	start := p.cur.Span
	p.next()
	value := p.parseExpr(LOWEST)
	end := p.cur.Span
	p.accept(lexer.SEMICOLON)
	return ast.NewThrowStmt(value, joinSpan(start, end))
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.cur.Span
	p.next()
	cond := p.parseExpr(LOWEST)
	body := p.parseBlockExpr()
	return ast.NewWhileStmt(cond, body, joinSpan(start, body.Span()))
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	start := p.cur.Span
	p.next()
	var key, value *ast.Ident
	if p.accept(lexer.LPAREN) {
		key = p.parseIdent()
		p.expect(lexer.COMMA)
		value = p.parseIdent()
		p.expect(lexer.RPAREN)
	} else {
		value = p.parseIdent()
	}
	p.expect(lexer.IN)
	iterable := p.parseExpr(LOWEST)
	body := p.parseBlockExpr()
	return ast.NewForStmt(key, value, iterable, body, joinSpan(start, body.Span()))
}

// parseExpr is the Pratt-style expression parser entry point.
func (p *Parser) parseExpr(precedence int) ast.Expr {
	left := p.parsePrefix()
	for !p.curIs(lexer.SEMICOLON) && precedence < p.curPrecedence() {
		switch p.cur.Type {
		case lexer.LPAREN:
			left = p.parseCallExpr(left)
		case lexer.DOT:
			left = p.parseFieldExpr(left)
		case lexer.LBRACKET:
			left = p.parseIndexExpr(left)
		case lexer.BANG:
			sp := p.cur.Span
			p.next()
			left = ast.NewUnwrapExpr(left, joinSpan(left.Span(), sp))
		case lexer.ASSIGN:
			left = p.parseAssignExpr(left)
		case lexer.DOTDOT, lexer.DOTDOTEQ:
			left = p.parseRangeExpr(left)
		default:
			left = p.parseInfixExpr(left)
		}
	}
	return left
}

func (p *Parser) curPrecedence() int {
	if p.curIs(lexer.ASSIGN) {
		return LOWEST + 1
	}
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parsePrefix() ast.Expr {
	switch p.cur.Type {
	case lexer.IDENT:
		return p.parseIdentOrStructLiteral()
	case lexer.INT:
		tok := p.cur
		p.next()
		return ast.NewIntegerLit(tok.Raw, tok.Span)
	case lexer.FLOAT:
		tok := p.cur
		p.next()
		return ast.NewFloatLit(tok.Raw, tok.Span)
	case lexer.STRING:
		return p.parseStringLit()
	case lexer.TRUE, lexer.FALSE:
		tok := p.cur
		p.next()
		return ast.NewBoolLit(tok.Type == lexer.TRUE, tok.Span)
	case lexer.NIL:
		tok := p.cur
		p.next()
		return ast.NewNilLit(tok.Span)
	case lexer.MINUS, lexer.BANG:
		tok := p.cur
		p.next()
		operand := p.parseExpr(UNARY)
		return ast.NewPrefixExpr(tok.Type, operand, joinSpan(tok.Span, operand.Span()))
	case lexer.LPAREN:
		p.next()
		e := p.parseExpr(LOWEST)
		p.expect(lexer.RPAREN)
		return e
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseMapOrBlockLiteral()
	case lexer.PIPE:
		return p.parseFunctionLiteral()
	case lexer.IF:
		return p.parseIfTail()
	case lexer.MATCH:
		return p.parseMatchExpr()
	case lexer.TRY:
		return p.parseTryExpr()
	default:
		p.addError("unexpected token in expression: %s (%q)", p.cur.Type, p.cur.Raw)
		tok := p.cur
		p.next()
		return ast.NewNilLit(tok.Span)
	}
}

func (p *Parser) parseStringLit() ast.Expr {
	tok := p.cur
	p.next()
	if segs, ok := splitInterpolation(tok.Value); ok {
		return ast.NewInterpStringLit(segs, tok.Span)
	}
	return ast.NewStringLit(tok.Value, tok.Span)
}

func (p *Parser) parseIdentOrStructLiteral() ast.Expr {
	name := p.parseIdent()
	if p.curIs(lexer.LBRACE) && p.structLiteralLookahead() {
		return p.parseStructLiteralBody(name)
	}
	return name
}

// structLiteralLookahead reports whether the upcoming `{` begins a struct
// literal (Name { field: value } or Name {}) rather than a following block.
// The distinction matters after an `if`/`while`/`for` head (`if cond { ... }`
// must not be misread as a struct literal): a literal is assumed only when
// the `{` is followed by `}` or by an identifier and a colon.
func (p *Parser) structLiteralLookahead() bool {
	if p.peekIs(lexer.RBRACE) {
		return true
	}
	if !p.peekIs(lexer.IDENT) {
		return false
	}
	saved := *p.l
	after := p.l.NextToken()
	*p.l = saved
	return after.Type == lexer.COLON
}

func (p *Parser) parseStructLiteralBody(name ast.Expr) *ast.StructLiteral {
	start := name.Span()
	p.expect(lexer.LBRACE)
	var fields []*ast.StructLiteralField
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		fname := p.parseIdent()
		p.expect(lexer.COLON)
		val := p.parseExpr(LOWEST)
		fields = append(fields, ast.NewStructLiteralField(fname, val, joinSpan(fname.Span(), val.Span())))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	end := p.cur.Span
	p.expect(lexer.RBRACE)
	return ast.NewStructLiteral(name, fields, joinSpan(start, end))
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLiteral {
	start := p.cur.Span
	p.next()
	var elems []ast.Expr
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		elems = append(elems, p.parseExpr(LOWEST))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	end := p.cur.Span
	p.expect(lexer.RBRACKET)
	return ast.NewArrayLiteral(elems, joinSpan(start, end))
}

func (p *Parser) parseMapOrBlockLiteral() ast.Expr {
	start := p.cur.Span
	p.next()
	var entries []*ast.MapLiteralEntry
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		key := p.parseExpr(LOWEST)
		p.expect(lexer.FATARROW)
		val := p.parseExpr(LOWEST)
		entries = append(entries, ast.NewMapLiteralEntry(key, val, joinSpan(key.Span(), val.Span())))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	end := p.cur.Span
	p.expect(lexer.RBRACE)
	return ast.NewMapLiteral(entries, joinSpan(start, end))
}

func (p *Parser) parseFunctionLiteral() *ast.FunctionLiteral {
	start := p.cur.Span
	p.next() // '|'
	var params []*ast.Param
	for !p.curIs(lexer.PIPE) && !p.curIs(lexer.EOF) {
		pname := p.parseIdent()
		var ptype ast.TypeExpr
		if p.accept(lexer.COLON) {
			ptype = p.parseTypeExpr()
		}
		params = append(params, ast.NewParam(pname, ptype, pname.Span()))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.PIPE)
	body := p.parseBlockExpr()
	id := p.lambdaSeq
	p.lambdaSeq++
	return ast.NewFunctionLiteral(id, params, body, joinSpan(start, body.Span()))
}

func (p *Parser) parseMatchExpr() *ast.MatchExpr {
	start := p.cur.Span
	p.next()
	subject := p.parseExpr(LOWEST)
	p.expect(lexer.LBRACE)
	var arms []*ast.MatchArm
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		pattern := p.parseExpr(LOWEST)
		p.expect(lexer.FATARROW)
		body := p.parseBlockExpr()
		arms = append(arms, ast.NewMatchArm(pattern, body, joinSpan(pattern.Span(), body.Span())))
		p.accept(lexer.COMMA)
	}
	end := p.cur.Span
	p.expect(lexer.RBRACE)
	return ast.NewMatchExpr(subject, arms, joinSpan(start, end))
}

func (p *Parser) parseTryExpr() *ast.TryExpr {
	start := p.cur.Span
	p.next()
	body := p.parseBlockExpr()
	var arms []*ast.CatchArm
	for p.curIs(lexer.CATCH) {
		arms = append(arms, p.parseCatchArm())
	}
	end := body.Span()
	if len(arms) > 0 {
		end = arms[len(arms)-1].Span()
	}
	return ast.NewTryExpr(body, arms, joinSpan(start, end))
}

func (p *Parser) parseCatchArm() *ast.CatchArm {
	start := p.cur.Span
	p.next() // 'catch'
	var patterns []*ast.CatchPattern
	patterns = append(patterns, p.parseCatchPattern())
	for p.accept(lexer.PIPE) {
		patterns = append(patterns, p.parseCatchPattern())
	}
	var binding *ast.Ident
	if p.accept(lexer.AS) {
		binding = p.parseIdent()
	}
	body := p.parseBlockExpr()
	return ast.NewCatchArm(patterns, binding, body, joinSpan(start, body.Span()))
}

func (p *Parser) parseCatchPattern() *ast.CatchPattern {
	if p.curIs(lexer.IDENT) && p.cur.Raw == "_" {
		sp := p.cur.Span
		p.next()
		return ast.NewWildcardCatchPattern(sp)
	}
	errName := p.parseIdent()
	var variant *ast.Ident
	end := errName.Span()
	if p.accept(lexer.DOT) {
		variant = p.parseIdent()
		end = variant.Span()
	}
	return ast.NewCatchPattern(errName, variant, joinSpan(errName.Span(), end))
}

func (p *Parser) parseCallExpr(callee ast.Expr) *ast.CallExpr {
	p.next() // '('
	var args []ast.Expr
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		args = append(args, p.parseExpr(LOWEST))
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	end := p.cur.Span
	p.expect(lexer.RPAREN)
	return ast.NewCallExpr(callee, args, joinSpan(callee.Span(), end))
}

func (p *Parser) parseFieldExpr(target ast.Expr) ast.Expr {
	p.next() // '.'
	field := p.parseIdent()
	fe := ast.NewFieldExpr(target, field, joinSpan(target.Span(), field.Span()))
	if p.curIs(lexer.LBRACE) && p.structLiteralLookahead() {
		return p.parseStructLiteralBody(fe)
	}
	return fe
}

func (p *Parser) parseIndexExpr(target ast.Expr) *ast.IndexExpr {
	p.next() // '['
	idx := p.parseExpr(LOWEST)
	end := p.cur.Span
	p.expect(lexer.RBRACKET)
	return ast.NewIndexExpr(target, idx, joinSpan(target.Span(), end))
}

func (p *Parser) parseAssignExpr(target ast.Expr) *ast.AssignExpr {
	p.next() // '='
	value := p.parseExpr(LOWEST)
	return ast.NewAssignExpr(target, value, joinSpan(target.Span(), value.Span()))
}

func (p *Parser) parseRangeExpr(low ast.Expr) *ast.RangeExpr {
	inclusive := p.curIs(lexer.DOTDOTEQ)
	p.next()
	high := p.parseExpr(RANGE_PREC)
	return ast.NewRangeExpr(low, high, inclusive, joinSpan(low.Span(), high.Span()))
}

func (p *Parser) parseInfixExpr(left ast.Expr) *ast.InfixExpr {
	op := p.cur.Type
	prec := p.curPrecedence()
	p.next()
	right := p.parseExpr(prec)
	return ast.NewInfixExpr(op, left, right, joinSpan(left.Span(), right.Span()))
}

// splitInterpolation splits a decoded string value on ${...} segments. A
// plain string with no interpolation markers returns ok=false so callers
// keep using the cheaper StringLit node.
func splitInterpolation(s string) ([]ast.InterpSegment, bool) {
	var segs []ast.InterpSegment
	var lit []byte
	found := false
	i := 0
	for i < len(s) {
		if s[i] == '$' && i+1 < len(s) && s[i+1] == '{' {
			found = true
			if len(lit) > 0 {
				segs = append(segs, ast.InterpSegment{Literal: string(lit)})
				lit = lit[:0]
			}
			depth := 1
			j := i + 2
			for j < len(s) && depth > 0 {
				if s[j] == '{' {
					depth++
				} else if s[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			exprSrc := s[i+2 : j]
			sub := New(lexer.New(exprSrc))
			expr := sub.parseExpr(LOWEST)
			segs = append(segs, ast.InterpSegment{Expr: expr})
			i = j + 1
			continue
		}
		lit = append(lit, s[i])
		i++
	}
	if !found {
		return nil, false
	}
	if len(lit) > 0 {
		segs = append(segs, ast.InterpSegment{Literal: string(lit)})
	}
	return segs, true
}

var _ = toSpan
