// Package parser implements a parser for SwiftFlow source text.
//
// The parser collects every lexical and syntax error of a file in one pass:
// after an error it discards tokens up to the next statement boundary and
// carries on.
package parser

import (
	"fmt"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/lexer"
	"github.com/podhmo/swiftflow/token"
)

// ParseProgram parses src. If any error is found the returned error is an
// ErrorList sorted by position; the partial program must not be evaluated.
func ParseProgram(src string) (*ast.Program, error) {
	return ParseFile("", src)
}

// ParseFile is like ParseProgram but records filename in every error.
func ParseFile(filename, src string) (*ast.Program, error) {
	p := &parser{filename: filename, lex: lexer.New(src)}
	p.peek = p.scan()
	p.next()

	prog := &ast.Program{Stmts: p.parseStmtList(token.EOF)}
	p.errors.Sort()
	return prog, p.errors.Err()
}

type parser struct {
	filename string
	lex      *lexer.Lexer
	errors   ErrorList

	tok  token.Token // current token
	peek token.Token // one token of lookahead
	prev token.Kind  // kind of the last consumed token

	// panicking is set by the first error in a statement and suppresses
	// further reports until the parser resynchronizes.
	panicking bool

	depth int // nesting of statements and expressions being parsed
}

// MaxNesting bounds how deeply statements and expressions may nest. Deeper
// input is a syntax error instead of a Go stack overflow.
const MaxNesting = 10000

// enter records one more level of nesting and reports false, after adding
// an error, when MaxNesting is exceeded. Every call must be paired with leave.
func (p *parser) enter(what string) bool {
	p.depth++
	if p.depth > MaxNesting {
		p.error(p.tok.Pos, what+" nested too deeply")
		return false
	}
	return true
}

func (p *parser) leave() { p.depth-- }

// scan returns the next token from the lexer, recording and skipping error tokens.
func (p *parser) scan() token.Token {
	for {
		tok := p.lex.Next()
		if tok.Kind != token.ILLEGAL {
			return tok
		}
		p.errors.Add(p.filename, tok.Pos, tok.Text)
	}
}

func (p *parser) next() {
	p.prev = p.tok.Kind
	p.tok = p.peek
	p.peek = p.scan()
}

func (p *parser) error(pos token.Pos, msg string) {
	if p.panicking {
		return
	}
	p.panicking = true
	p.errors.Add(p.filename, pos, msg)
}

func (p *parser) errorExpected(what string) {
	p.error(p.tok.Pos, "expected "+what+", found "+p.tok.String())
}

// expect consumes a token of the given kind. On mismatch it reports an
// error and consumes nothing.
func (p *parser) expect(kind token.Kind) token.Pos {
	pos := p.tok.Pos
	if p.tok.Kind != kind {
		p.errorExpected("'" + kind.String() + "'")
		return pos
	}
	p.next()
	return pos
}

// semi consumes an optional statement terminator.
func (p *parser) semi() {
	if p.tok.Kind == token.SEMICOLON {
		p.next()
	}
}

func (p *parser) atStmtEnd() bool {
	switch p.tok.Kind {
	case token.SEMICOLON, token.RBRACE, token.EOF:
		return true
	}
	return false
}

// sync skips tokens after a syntax error until just after a ';' or just
// before a token that starts a statement. start is the position of the
// first token of the broken statement.
func (p *parser) sync(start token.Pos) {
	defer func() { p.panicking = false }()

	moved := p.tok.Pos != start
	if moved && (p.prev == token.SEMICOLON || p.prev == token.RBRACE) {
		return
	}
	for {
		switch p.tok.Kind {
		case token.EOF:
			return
		case token.SEMICOLON:
			p.next()
			return
		case token.RBRACE, token.VAR, token.FUNC, token.FOR, token.IF, token.WHILE,
			token.PRINT, token.RETURN, token.IMPORT:
			if p.tok.Pos != start {
				return
			}
		}
		p.next()
	}
}

// ----------------------------------------------------------------------------
// Statements

func (p *parser) parseStmtList(end token.Kind) []ast.Stmt {
	var list []ast.Stmt
	for p.tok.Kind != end && p.tok.Kind != token.EOF {
		if p.tok.Kind == token.SEMICOLON {
			p.next()
			continue
		}
		start := p.tok.Pos
		s := p.parseStmt()
		if p.panicking {
			p.sync(start)
			continue
		}
		list = append(list, s)
	}
	return list
}

func (p *parser) parseStmt() ast.Stmt {
	defer p.leave()
	if !p.enter("statement") {
		return nil
	}
	switch p.tok.Kind {
	case token.PRINT:
		pos := p.tok.Pos
		p.next()
		x := p.parseExpr()
		p.semi()
		return &ast.PrintStmt{Print: pos, Value: x}
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		pos := p.tok.Pos
		p.next()
		cond := p.parseParenExpr()
		body := p.parseStmt()
		return &ast.WhileStmt{While: pos, Cond: cond, Body: body}
	case token.FOR:
		return p.parseForStmt()
	case token.VAR:
		s := p.parseVarDecl()
		p.semi()
		return s
	case token.FUNC:
		if p.peek.Kind == token.IDENT {
			return p.parseFuncDecl()
		}
	case token.RETURN:
		pos := p.tok.Pos
		p.next()
		var x ast.Expr
		if !p.atStmtEnd() {
			x = p.parseExpr()
		}
		p.semi()
		return &ast.ReturnStmt{Return: pos, Result: x}
	case token.BREAK:
		pos := p.tok.Pos
		p.next()
		p.semi()
		return &ast.BreakStmt{Break: pos}
	case token.CONTINUE:
		pos := p.tok.Pos
		p.next()
		p.semi()
		return &ast.ContinueStmt{Continue: pos}
	case token.IMPORT:
		return p.parseImportStmt()
	case token.LBRACE:
		return p.parseBlockStmt()
	}

	x := p.parseExpr()
	p.semi()
	return &ast.ExprStmt{X: x}
}

func (p *parser) parseBlockStmt() *ast.BlockStmt {
	lbrace := p.tok.Pos
	if p.tok.Kind != token.LBRACE {
		p.errorExpected("'{'")
		return &ast.BlockStmt{Lbrace: lbrace}
	}
	p.next()
	list := p.parseStmtList(token.RBRACE)
	p.expect(token.RBRACE)
	return &ast.BlockStmt{Lbrace: lbrace, Stmts: list}
}

func (p *parser) parseParenExpr() ast.Expr {
	p.expect(token.LPAREN)
	x := p.parseExpr()
	p.expect(token.RPAREN)
	return x
}

// parseIfStmt parses an if or elif clause together with its else chain.
func (p *parser) parseIfStmt() *ast.IfStmt {
	pos := p.tok.Pos
	defer p.leave()
	if !p.enter("statement") {
		return &ast.IfStmt{If: pos}
	}
	p.next() // if or elif
	cond := p.parseParenExpr()
	then := p.parseStmt()

	s := &ast.IfStmt{If: pos, Cond: cond, Then: then}
	switch p.tok.Kind {
	case token.ELIF:
		s.Else = p.parseIfStmt()
	case token.ELSE:
		p.next()
		s.Else = p.parseStmt()
	}
	return s
}

func (p *parser) parseForStmt() *ast.ForStmt {
	s := &ast.ForStmt{For: p.tok.Pos}
	p.next()
	p.expect(token.LPAREN)
	if p.tok.Kind != token.SEMICOLON {
		if p.tok.Kind == token.VAR {
			s.Init = p.parseVarDecl()
		} else {
			s.Init = &ast.ExprStmt{X: p.parseExpr()}
		}
	}
	p.expect(token.SEMICOLON)
	if p.tok.Kind != token.SEMICOLON {
		s.Cond = p.parseExpr()
	}
	p.expect(token.SEMICOLON)
	if p.tok.Kind != token.RPAREN {
		s.Post = p.parseExpr()
	}
	p.expect(token.RPAREN)
	s.Body = p.parseStmt()
	return s
}

// parseVarDecl parses a declaration without its terminator.
func (p *parser) parseVarDecl() *ast.VarDecl {
	s := &ast.VarDecl{Decl: p.tok.Pos}
	p.next()
	s.Name = p.parseIdent()
	if p.tok.Kind == token.ASSIGN {
		p.next()
		s.Value = p.parseExpr()
	}
	return s
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	s := &ast.FuncDecl{Func: p.tok.Pos}
	p.next()
	s.Name = p.parseIdent()
	s.Params = p.parseParams()
	s.Body = p.parseFuncBody()
	return s
}

func (p *parser) parseParams() []*ast.Param {
	p.expect(token.LPAREN)
	var params []*ast.Param
	seen := map[string]bool{}
	for p.tok.Kind != token.RPAREN && p.tok.Kind != token.EOF && !p.panicking {
		param := &ast.Param{Name: p.parseIdent()}
		if p.panicking {
			break
		}
		if seen[param.Name.Name] {
			p.error(param.Name.NamePos, fmt.Sprintf("duplicate parameter %s", param.Name.Name))
		}
		seen[param.Name.Name] = true
		if p.tok.Kind == token.ASSIGN {
			p.next()
			param.Default = p.parseTernary()
		}
		params = append(params, param)
		if p.tok.Kind != token.COMMA {
			break
		}
		p.next()
	}
	p.expect(token.RPAREN)
	return params
}

// parseFuncBody parses a block, or "-> expr" which is shorthand for
// a block returning expr.
func (p *parser) parseFuncBody() *ast.BlockStmt {
	if p.tok.Kind != token.ARROW {
		return p.parseBlockStmt()
	}
	pos := p.tok.Pos
	p.next()
	x := p.parseExpr()
	return &ast.BlockStmt{Lbrace: pos, Stmts: []ast.Stmt{&ast.ReturnStmt{Return: pos, Result: x}}}
}

func (p *parser) parseImportStmt() *ast.ImportStmt {
	s := &ast.ImportStmt{Import: p.tok.Pos}
	p.next()
	if p.tok.Kind != token.STRING {
		for {
			s.Names = append(s.Names, p.parseIdent())
			if p.tok.Kind != token.COMMA || p.panicking {
				break
			}
			p.next()
		}
		p.expect(token.FROM)
	}
	if p.tok.Kind != token.STRING {
		p.errorExpected("module path")
	} else {
		s.Path = &ast.StringLit{ValuePos: p.tok.Pos, Value: p.tok.Str}
		p.next()
	}
	p.semi()
	return s
}

// ----------------------------------------------------------------------------
// Expressions

func (p *parser) parseIdent() *ast.Ident {
	pos := p.tok.Pos
	if p.tok.Kind != token.IDENT {
		p.errorExpected("identifier")
		return &ast.Ident{NamePos: pos, Name: "_"}
	}
	name := p.tok.Text
	p.next()
	return &ast.Ident{NamePos: pos, Name: name}
}

func isAssignable(x ast.Expr) bool {
	switch x.(type) {
	case *ast.Ident, *ast.IndexExpr, *ast.MemberExpr:
		return true
	}
	return false
}

// parseExpr parses an expression at assignment level. Assignment is right
// associative.
func (p *parser) parseExpr() ast.Expr {
	defer p.leave()
	if !p.enter("expression") {
		return nil
	}
	x := p.parseTernary()
	if !p.tok.Kind.IsAssignOp() {
		return x
	}
	pos, op := p.tok.Pos, p.tok.Kind
	if !isAssignable(x) {
		p.error(pos, fmt.Sprintf("cannot assign with '%s' to a non-assignable expression", op))
	}
	p.next()
	y := p.parseExpr()
	return &ast.AssignExpr{Target: x, OpPos: pos, Op: op, Value: y}
}

func (p *parser) parseTernary() ast.Expr {
	defer p.leave()
	if !p.enter("expression") {
		return nil
	}
	cond := p.parseBinaryExpr(token.LowestPrec + 1)
	if p.tok.Kind != token.QUESTION {
		return cond
	}
	p.next()
	then := p.parseExpr()
	p.expect(token.COLON)
	els := p.parseTernary()
	return &ast.TernaryExpr{Cond: cond, Then: then, Else: els}
}

func (p *parser) parseBinaryExpr(prec1 int) ast.Expr {
	x := p.parseUnaryExpr()
	for !p.panicking {
		op := p.tok.Kind
		oprec := op.Precedence()
		if oprec < prec1 {
			return x
		}
		pos := p.tok.Pos
		p.next()
		y := p.parseBinaryExpr(oprec + 1)
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseUnaryExpr() ast.Expr {
	defer p.leave()
	if !p.enter("expression") {
		return nil
	}
	switch p.tok.Kind {
	case token.MINUS, token.NOT, token.TILDE:
		pos, op := p.tok.Pos, p.tok.Kind
		p.next()
		x := p.parseUnaryExpr()
		return &ast.UnaryExpr{OpPos: pos, Op: op, X: x}
	case token.INC, token.DEC:
		pos, op := p.tok.Pos, p.tok.Kind
		p.next()
		x := p.parseUnaryExpr()
		if !isAssignable(x) {
			p.error(pos, fmt.Sprintf("invalid operand for '%s'", op))
		}
		return &ast.IncDecExpr{OpPos: pos, Op: op, X: x, Prefix: true}
	}
	return p.parsePostfixExpr()
}

func (p *parser) parsePostfixExpr() ast.Expr {
	x := p.parsePrimaryExpr()
	for !p.panicking {
		switch p.tok.Kind {
		case token.LPAREN:
			x = p.parseCallExpr(x)
		case token.LBRACK:
			lbrack := p.tok.Pos
			p.next()
			index := p.parseExpr()
			p.expect(token.RBRACK)
			x = &ast.IndexExpr{X: x, Lbrack: lbrack, Index: index}
		case token.PERIOD:
			p.next()
			x = &ast.MemberExpr{X: x, Name: p.parseIdent()}
		case token.INC, token.DEC:
			if !isAssignable(x) {
				return x
			}
			pos, op := p.tok.Pos, p.tok.Kind
			p.next()
			return &ast.IncDecExpr{OpPos: pos, Op: op, X: x}
		default:
			return x
		}
	}
	return x
}

func (p *parser) parseCallExpr(fun ast.Expr) *ast.CallExpr {
	lparen := p.tok.Pos
	p.next()
	args := p.parseExprList(token.RPAREN)
	p.expect(token.RPAREN)
	return &ast.CallExpr{Fun: fun, Lparen: lparen, Args: args}
}

// parseExprList parses comma separated expressions up to end, allowing a
// trailing comma. end itself is not consumed.
func (p *parser) parseExprList(end token.Kind) []ast.Expr {
	var list []ast.Expr
	for p.tok.Kind != end && p.tok.Kind != token.EOF {
		list = append(list, p.parseExpr())
		if p.tok.Kind != token.COMMA || p.panicking {
			break
		}
		p.next()
	}
	return list
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	tok := p.tok
	switch tok.Kind {
	case token.INT:
		p.next()
		return &ast.IntegerLit{ValuePos: tok.Pos, Value: tok.Int}
	case token.FLOAT:
		p.next()
		return &ast.FloatLit{ValuePos: tok.Pos, Value: tok.Float}
	case token.STRING:
		p.next()
		return &ast.StringLit{ValuePos: tok.Pos, Value: tok.Str}
	case token.TRUE, token.FALSE:
		p.next()
		return &ast.BoolLit{ValuePos: tok.Pos, Value: tok.Kind == token.TRUE}
	case token.NIL:
		p.next()
		return &ast.NilLit{ValuePos: tok.Pos}
	case token.IDENT:
		p.next()
		return &ast.Ident{NamePos: tok.Pos, Name: tok.Text}
	case token.LPAREN:
		p.next()
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return x
	case token.LBRACK:
		p.next()
		elems := p.parseExprList(token.RBRACK)
		p.expect(token.RBRACK)
		return &ast.ArrayLit{Lbrack: tok.Pos, Elements: elems}
	case token.LBRACE:
		return p.parseObjectLit()
	case token.FUNC:
		p.next()
		params := p.parseParams()
		body := p.parseFuncBody()
		return &ast.FuncLit{Func: tok.Pos, Params: params, Body: body}
	}
	p.errorExpected("expression")
	return nil
}

func (p *parser) parseObjectLit() *ast.ObjectLit {
	lit := &ast.ObjectLit{Lbrace: p.tok.Pos}
	p.next()
	for p.tok.Kind != token.RBRACE && p.tok.Kind != token.EOF {
		kv := &ast.KeyValue{KeyPos: p.tok.Pos}
		switch p.tok.Kind {
		case token.IDENT:
			kv.Key = p.tok.Text
		case token.STRING:
			kv.Key = p.tok.Str
		default:
			p.errorExpected("object key")
			return lit
		}
		p.next()
		p.expect(token.COLON)
		kv.Value = p.parseExpr()
		lit.Entries = append(lit.Entries, kv)
		if p.tok.Kind != token.COMMA || p.panicking {
			break
		}
		p.next()
	}
	p.expect(token.RBRACE)
	return lit
}
