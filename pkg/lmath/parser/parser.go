// Package parser builds an ast.Program from lexer tokens.
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/sambeau/lmath/pkg/lmath/ast"
	lerrors "github.com/sambeau/lmath/pkg/lmath/errors"
	"github.com/sambeau/lmath/pkg/lmath/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	SUM     // + -
	PRODUCT // * / %
	PREFIX  // -X
	POWER   // ^
	CALL    // fn(X) and a.b
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.CARET:    POWER,
	lexer.LPAREN:   CALL,
	lexer.DOT:      CALL,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	errors []*lerrors.MathError

	curToken  lexer.Token
	peekToken lexer.Token

	// open parentheses; line breaks inside them are not separators
	depth int

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tok := range []lexer.TokenType{lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT, lexer.CARET} {
		p.registerInfix(tok, p.parseInfixExpression)
	}
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.DOT, p.parseDotExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parse errors as strings.
func (p *Parser) Errors() []string {
	msgs := make([]string, len(p.errors))
	for i, e := range p.errors {
		msgs[i] = e.String()
	}
	return msgs
}

// StructuredErrors returns parse errors with codes and positions.
func (p *Parser) StructuredErrors() []*lerrors.MathError {
	return p.errors
}

func (p *Parser) addError(code string, tok lexer.Token, data map[string]any) {
	err := lerrors.NewWithPosition(code, tok.Line, tok.Column, data)
	if fn := p.l.Filename(); fn != "" && fn != "<input>" {
		err.File = fn
	}
	p.errors = append(p.errors, err)
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	switch p.curToken.Type {
	case lexer.LPAREN:
		p.depth++
	case lexer.RPAREN:
		if p.depth > 0 {
			p.depth--
		}
	}
	p.peekToken = p.l.NextToken()
	for p.depth > 0 && p.peekToken.Type == lexer.NEWLINE {
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

// ParseProgram parses statements until EOF. Parsing continues after an
// error at the next statement separator so several errors can be reported.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(lexer.EOF) {
		if p.isSeparator(p.curToken) {
			p.nextToken()
			continue
		}
		errCount := len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil && len(p.errors) == errCount {
			program.Statements = append(program.Statements, stmt)
		}
		if len(p.errors) > errCount {
			p.skipToSeparator()
			continue
		}
		p.nextToken()
		if !p.isSeparator(p.curToken) && !p.curTokenIs(lexer.EOF) {
			p.unexpected(p.curToken)
			p.skipToSeparator()
		}
	}

	return program
}

func (p *Parser) isSeparator(tok lexer.Token) bool {
	return tok.Type == lexer.NEWLINE || tok.Type == lexer.SEMICOLON
}

func (p *Parser) skipToSeparator() {
	p.depth = 0
	for !p.isSeparator(p.curToken) && !p.curTokenIs(lexer.EOF) {
		p.nextToken()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.curTokenIs(lexer.LET):
		return p.parseLetStatement()
	case p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.ASSIGN):
		return p.parseAssignmentStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT, "an identifier") {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.ASSIGN, "'='") {
		return nil
	}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseAssignmentStatement() ast.Statement {
	stmt := &ast.AssignmentStatement{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
	}
	p.nextToken() // '='
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

// parseExpression parses expressions using Pratt parsing
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}

	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	switch tok.Type {
	case lexer.ILLEGAL:
		if tok.Literal == "unterminated string" {
			p.addError("PARSE-0003", tok, nil)
			return
		}
		p.addError("PARSE-0005", tok, map[string]any{"Char": tok.Literal})
	case lexer.EOF, lexer.NEWLINE, lexer.SEMICOLON:
		p.addError("PARSE-0001", tok, map[string]any{"Expected": "an expression", "Got": tok.Type.String()})
	default:
		p.unexpected(tok)
	}
}

func (p *Parser) unexpected(tok lexer.Token) {
	if tok.Type == lexer.ILLEGAL {
		p.noPrefixParseFnError(tok)
		return
	}
	p.addError("PARSE-0002", tok, map[string]any{"Token": tok.Literal})
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, ok := ParseNumber(p.curToken.Literal)
	if !ok {
		p.addError("PARSE-0004", p.curToken, map[string]any{"Literal": p.curToken.Literal})
		return nil
	}
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	// Unary minus binds looser than ^, so -2^2 is -(2^2).
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	precedence := p.curPrecedence()
	if expr.Operator == "^" {
		// right associative
		precedence--
	}
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN, "')'") {
		return nil
	}
	return exp
}

func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	if !p.expectPeek(lexer.IDENT, "a field name") {
		return nil
	}
	return &ast.DotExpression{Token: tok, Left: left, Key: p.curToken.Literal}
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	expr := &ast.CallExpression{Token: p.curToken, Function: fn}
	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	expr.Arguments = args
	return expr
}

func (p *Parser) parseCallArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return args, true
	}

	p.nextToken()
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil, false
	}
	args = append(args, arg)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
	}

	if !p.expectPeek(lexer.RPAREN, "')'") {
		return nil, false
	}
	return args, true
}

func (p *Parser) expectPeek(t lexer.TokenType, expected string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	if p.peekToken.Type == lexer.ILLEGAL {
		p.noPrefixParseFnError(p.peekToken)
		return false
	}
	got := p.peekToken.Literal
	if p.peekToken.Type == lexer.EOF {
		got = "end of input"
	} else if p.peekToken.Type == lexer.NEWLINE {
		got = "end of line"
	}
	p.addError("PARSE-0001", p.peekToken, map[string]any{"Expected": expected, "Got": got})
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseNumber converts numeric text to a float64 the way the runtime does
// for both literals and numeric strings: decimal with optional fraction and
// exponent, hexadecimal integers and hexadecimal floats, and inf/nan.
// Surrounding whitespace is allowed. Values too large for a float64 become
// ±Inf.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Go's underscore digit separators are not part of the syntax.
	if strings.ContainsRune(s, '_') {
		return 0, false
	}

	body := strings.TrimLeft(s, "+-")
	if len(body) < len(s)-1 {
		return 0, false
	}
	neg := strings.HasPrefix(s, "-")

	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		hex := body[2:]
		if !strings.ContainsAny(hex, ".pP") {
			u, err := strconv.ParseUint(hex, 16, 64)
			if err != nil {
				if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
					// Overflowing hex integers wrap to a float the way the
					// digits accumulate.
					return accumulateHex(hex, neg)
				}
				return 0, false
			}
			f := float64(u)
			if neg {
				f = -f
			}
			return f, true
		}
		if !strings.ContainsAny(hex, "pP") {
			s += "p0"
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func accumulateHex(hex string, neg bool) (float64, bool) {
	f := 0.0
	for _, c := range hex {
		d, err := strconv.ParseUint(string(c), 16, 8)
		if err != nil {
			return 0, false
		}
		f = f*16 + float64(d)
	}
	if neg {
		f = -f
	}
	return f, !math.IsNaN(f)
}
