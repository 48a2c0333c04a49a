package lexer

import (
	"fmt"
	"strings"
)

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE // statement separator

	// Identifiers and literals
	IDENT  // random, x, ...
	NUMBER // 42, 3.5, 1e-3, 0xff
	STRING // "abc" or 'abc'

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	CARET    // ^

	// Delimiters
	COMMA     // ,
	DOT       // .
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )

	// Keywords
	LET // let
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

var tokenNames = map[TokenType]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	NEWLINE:   "NEWLINE",
	IDENT:     "IDENT",
	NUMBER:    "NUMBER",
	STRING:    "STRING",
	ASSIGN:    "=",
	PLUS:      "+",
	MINUS:     "-",
	ASTERISK:  "*",
	SLASH:     "/",
	PERCENT:   "%",
	CARET:     "^",
	COMMA:     ",",
	DOT:       ".",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",
	LET:       "let",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

var keywords = map[string]TokenType{
	"let": LET,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Lexer turns source text into tokens.
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "<input>")
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// Filename returns the name used in error positions.
func (l *Lexer) Filename() string {
	return l.filename
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.column
	var tok Token

	switch l.ch {
	case '\n':
		tok = newToken(NEWLINE, "\\n", line, col)
	case '=':
		tok = newToken(ASSIGN, "=", line, col)
	case '+':
		tok = newToken(PLUS, "+", line, col)
	case '-':
		tok = newToken(MINUS, "-", line, col)
	case '*':
		tok = newToken(ASTERISK, "*", line, col)
	case '/':
		tok = newToken(SLASH, "/", line, col)
	case '%':
		tok = newToken(PERCENT, "%", line, col)
	case '^':
		tok = newToken(CARET, "^", line, col)
	case ',':
		tok = newToken(COMMA, ",", line, col)
	case ';':
		tok = newToken(SEMICOLON, ";", line, col)
	case '(':
		tok = newToken(LPAREN, "(", line, col)
	case ')':
		tok = newToken(RPAREN, ")", line, col)
	case '"', '\'':
		str, ok := l.readString(l.ch)
		if !ok {
			return newToken(ILLEGAL, "unterminated string", line, col)
		}
		return newToken(STRING, str, line, col)
	case '.':
		if isDigit(l.peekChar()) {
			return newToken(NUMBER, l.readNumber(), line, col)
		}
		tok = newToken(DOT, ".", line, col)
	case 0:
		return newToken(EOF, "", line, col)
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return newToken(LookupIdent(ident), ident, line, col)
		}
		if isDigit(l.ch) {
			return newToken(NUMBER, l.readNumber(), line, col)
		}
		tok = newToken(ILLEGAL, string(l.ch), line, col)
	}

	l.readChar()
	return tok
}

// skipWhitespaceAndComments skips blanks and "--" line comments, stopping
// at a newline so it can become a separator token.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func newToken(tokenType TokenType, literal string, line, column int) Token {
	return Token{Type: tokenType, Literal: literal, Line: line, Column: column}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads decimal numbers with optional fraction and exponent, and
// hexadecimal numbers with an optional binary exponent. Validation happens
// in the parser.
func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '.' {
			l.readChar()
		}
		if l.ch == 'p' || l.ch == 'P' {
			l.readExponent()
		}
		return l.input[position:l.position]
	}

	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readExponent()
	}
	// Trailing letters make the literal invalid, e.g. "3abc".
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readExponent() {
	l.readChar()
	if l.ch == '+' || l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
}

// readString reads a quoted string, processing escapes. It returns false if
// the string is not closed before a newline or the end of input.
func (l *Lexer) readString(quote byte) (string, bool) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case quote:
			l.readChar()
			return sb.String(), true
		case 0, '\n':
			return sb.String(), false
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 0:
				return sb.String(), false
			default:
				sb.WriteByte(l.ch)
			}
		default:
			sb.WriteByte(l.ch)
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}
