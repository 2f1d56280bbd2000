package compiler

import (
	"strings"
	"unicode/utf8"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"int":    INT,
	"return": RETURN,
	"and":    AND,
	"or":     OR,
	"if":     IF,
	"else":   ELSE,
	"true":   TRUE,
	"false":  FALSE,
	"for":    FOR,
	"while":  WHILE,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // 1-based column of the next rune; reset on every newline

	// start of the token being scanned
	startPos  int
	startLine int
	startCol  int
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, col: 1}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// match consumes the current rune if it equals want.
func (l *Lexer) match(want rune) bool {
	if l.atEnd() || l.peek() != want {
		return false
	}
	l.advance()
	return true
}

// pick returns two when the next rune is '=' (consuming it), otherwise one.
func (l *Lexer) pick(one, two TokenType) TokenType {
	if l.match('=') {
		return two
	}
	return one
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isAlphaNum(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// skipTrivia discards whitespace and "//" line comments.
func (l *Lexer) skipTrivia() {
	for !l.atEnd() {
		switch {
		case isSpace(l.peek()):
			l.advance()
		case l.peek() == '/' && l.peek2() == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) makeToken(tt TokenType, value Value) Token {
	return Token{
		Type:   tt,
		Lexeme: string(l.src[l.startPos:l.pos]),
		Value:  value,
		Line:   l.startLine,
		Column: l.startCol,
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character has already been consumed.
func (l *Lexer) scanIdent() Token {
	for isAlphaNum(l.peek()) {
		l.advance()
	}
	tt := IDENTIFIER
	if kw, ok := keywords[string(l.src[l.startPos:l.pos])]; ok {
		tt = kw
	}
	return l.makeToken(tt, Value{})
}

// scanNumber collects an integer literal, or a floating literal when the
// digits are followed by '.' and another digit. The value is accumulated
// digit by digit in source order; integer overflow wraps.
// The first digit has already been consumed.
func (l *Lexer) scanNumber() Token {
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peek2()) {
		l.advance() // consume '.'
		for isDigit(l.peek()) {
			l.advance()
		}
		return l.makeToken(NUMBER, FloatValue(accumulateFloat(l.src[l.startPos:l.pos])))
	}

	return l.makeToken(NUMBER, IntValue(accumulateInt(l.src[l.startPos:l.pos])))
}

func accumulateInt(digits []rune) int64 {
	var n int64
	for _, r := range digits {
		n = n*10 + int64(r-'0')
	}
	return n
}

func accumulateFloat(text []rune) float64 {
	var (
		n        float64
		factor   = 1.0
		fraction bool
	)
	for _, r := range text {
		if r == '.' {
			fraction = true
			continue
		}
		if fraction {
			factor /= 10.0
			n += float64(r-'0') * factor
		} else {
			n = n*10.0 + float64(r-'0')
		}
	}
	return n
}

// scanString collects a string literal "...". Newlines inside the literal are
// allowed. The opening quote has already been consumed.
func (l *Lexer) scanString() (Token, error) {
	for !l.atEnd() && l.peek() != '"' {
		l.advance()
	}

	if l.atEnd() {
		return Token{}, &LexError{Kind: UnterminatedString, Line: l.line}
	}
	l.advance() // consume closing "

	text := string(l.src[l.startPos+1 : l.pos-1])
	return l.makeToken(STRING, StringValue(text)), nil
}

// nextToken skips trivia and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	l.skipTrivia()

	l.startPos, l.startLine, l.startCol = l.pos, l.line, l.col
	if l.atEnd() {
		return Token{Type: EOF, Lexeme: "", Line: l.line, Column: l.col}, nil
	}

	ch := l.advance()
	switch {
	case isAlpha(ch):
		return l.scanIdent(), nil
	case isDigit(ch):
		return l.scanNumber(), nil
	}

	var tt TokenType
	switch ch {
	case '"':
		return l.scanString()
	case '{':
		tt = LBRACE
	case '}':
		tt = RBRACE
	case '(':
		tt = LPAREN
	case ')':
		tt = RPAREN
	case ';':
		tt = SEMICOLON
	case ',':
		tt = COMMA
	case '!':
		tt = l.pick(NOT, NOT_EQ)
	case '=':
		tt = l.pick(ASSIGN, EQUALS)
	case '<':
		tt = l.pick(LESS, LESS_EQ)
	case '>':
		tt = l.pick(GREATER, GREATER_EQ)
	case '+':
		tt = l.pick(PLUS, PLUS_ASSIGN)
	case '-':
		tt = l.pick(MINUS, MINUS_ASSIGN)
	case '*':
		tt = l.pick(STAR, STAR_ASSIGN)
	case '/':
		tt = l.pick(SLASH, SLASH_ASSIGN)
	case '%':
		tt = l.pick(PERCENT, PERCENT_ASSIGN)
	default:
		return Token{}, &LexError{Kind: UnexpectedCharacter, Char: ch, Line: l.startLine}
	}
	return l.makeToken(tt, Value{}), nil
}

// Lex tokenises src and returns all tokens including the final EOF token.
// The first illegal character or unterminated string aborts the pass; no
// tokens are returned alongside the error.
func Lex(src string) ([]Token, error) {
	if !utf8.ValidString(src) {
		return nil, &LexError{Kind: OtherLexError, Line: invalidUTF8Line(src), Message: "Invalid UTF-8 encoding"}
	}

	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

// invalidUTF8Line returns the 1-based line holding the first byte that is not
// valid UTF-8.
func invalidUTF8Line(src string) int {
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return strings.Count(src[:i], "\n") + 1
		}
		i += size
	}
	return strings.Count(src, "\n") + 1
}
