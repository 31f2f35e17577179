package parser

import (
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenError TokenType = iota
	TokenEOF
	TokenString
	TokenField
	TokenCommand
)

type Token struct {
	Type  TokenType
	Value string
}

type Lexer struct {
	input []rune
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF}
	}

	// ":export" and friends
	if l.input[l.pos] == ':' {
		return l.readCommand()
	}

	// Читаем токен до пробела ИЛИ до двоеточия (если это поле)
	start := l.pos
	for l.pos < len(l.input) && !unicode.IsSpace(l.input[l.pos]) {
		if l.input[l.pos] == ':' {
			l.pos++
			word := string(l.input[start:l.pos])
			return Token{Type: TokenField, Value: strings.ToLower(strings.TrimSuffix(word, ":"))}
		}
		l.pos++
	}

	return Token{Type: TokenString, Value: string(l.input[start:l.pos])}
}

// Rest returns the unread input with surrounding whitespace removed.
// Titles keep their inner spacing and colons.
func (l *Lexer) Rest() string {
	rest := strings.TrimSpace(string(l.input[l.pos:]))
	l.pos = len(l.input)
	return rest
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) readCommand() Token {
	start := l.pos
	l.pos++
	for l.pos < len(l.input) && !unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenCommand, Value: strings.ToLower(string(l.input[start+1 : l.pos]))}
}
