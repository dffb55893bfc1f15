// Package lexer tokenises lambdaPi source text into the token stream
// internal/surface parses, grounded on funxy's internal/lexer/lexer.go
// (rune-at-a-time scanning with a one-character lookahead, line/column
// tracking, a newToken helper for single-character tokens) pared down
// to the small punctuation set spec.md's directive surface needs.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/lambdapi/internal/token"
)

// Lexer scans one source file.
type Lexer struct {
	file         string
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

func New(file, input string) *Lexer {
	l := &Lexer{file: file, input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) pos() token.Position {
	return token.Position{File: l.file, Line: l.line, Column: l.column}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

// NextToken returns the next token in the stream, EOF at end of input.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.pos()

	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOF, Pos: pos}
	case l.ch == '(':
		l.readChar()
		return token.Token{Type: token.LPAREN, Lexeme: "(", Pos: pos}
	case l.ch == ')':
		l.readChar()
		return token.Token{Type: token.RPAREN, Lexeme: ")", Pos: pos}
	case l.ch == ':':
		l.readChar()
		return token.Token{Type: token.COLON, Lexeme: ":", Pos: pos}
	case l.ch == ',':
		l.readChar()
		return token.Token{Type: token.COMMA, Lexeme: ",", Pos: pos}
	case l.ch == '.':
		l.readChar()
		return token.Token{Type: token.DOT, Lexeme: ".", Pos: pos}
	case l.ch == '\\':
		l.readChar()
		return token.Token{Type: token.BACKSLASH, Lexeme: "\\", Pos: pos}
	case l.ch == '?':
		l.readChar()
		return token.Token{Type: token.QUESTION, Lexeme: "?", Pos: pos}
	case l.ch == '-' && l.peekChar() == '>':
		l.readChar()
		l.readChar()
		return token.Token{Type: token.ARROW, Lexeme: "->", Pos: pos}
	case l.ch == '=' && l.peekChar() == '>':
		l.readChar()
		l.readChar()
		return token.Token{Type: token.FATARROW, Lexeme: "=>", Pos: pos}
	case l.ch == '=' && l.peekChar() == '=':
		l.readChar()
		l.readChar()
		return token.Token{Type: token.EQUIV, Lexeme: "==", Pos: pos}
	case isIdentStart(l.ch):
		lit := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(lit), Lexeme: lit, Pos: pos}
	case unicode.IsDigit(l.ch):
		lit := l.readNumber()
		return token.Token{Type: token.INT, Lexeme: lit, Pos: pos}
	default:
		ch := l.ch
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Lexeme: string(ch), Pos: pos}
	}
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '\''
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}
