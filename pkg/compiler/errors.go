package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// LexErrorKind classifies a LexError.
type LexErrorKind int

const (
	UnexpectedCharacter LexErrorKind = iota
	UnterminatedString
	OtherLexError
)

func (k LexErrorKind) String() string {
	switch k {
	case UnexpectedCharacter:
		return "UnexpectedCharacter"
	case UnterminatedString:
		return "UnterminatedString"
	case OtherLexError:
		return "Other"
	default:
		return fmt.Sprintf("LexErrorKind(%d)", int(k))
	}
}

// LexError aborts a lexing pass. Char is only set for UnexpectedCharacter.
type LexError struct {
	Kind    LexErrorKind
	Char    rune
	Line    int
	Message string
}

func (e *LexError) Error() string {
	switch e.Kind {
	case UnexpectedCharacter:
		return fmt.Sprintf("Lexer Error: Unexpected character '%c' at line %d", e.Char, e.Line)
	case UnterminatedString:
		return fmt.Sprintf("Lexer Error: Unterminated string at line %d", e.Line)
	default:
		return fmt.Sprintf("Lexer Error: %s at line %d", e.Message, e.Line)
	}
}

// ParseError is returned for every grammar violation. Token is the token the
// parser was looking at, or nil when the token stream ran out.
type ParseError struct {
	Message string
	Token   *Token
}

func (e *ParseError) Error() string {
	if e.Token == nil {
		return "Parser Error: " + e.Message
	}
	return fmt.Sprintf("Parser Error: %s at %d:%d (token: %s)",
		e.Message, e.Token.Line, e.Token.Column, e.Token.Lexeme)
}

// Line returns the source line of the offending token, or 0.
func (e *ParseError) Line() int {
	if e.Token == nil {
		return 0
	}
	return e.Token.Line
}

// Diagnostic renders err followed by the offending source line, in the same
// "|>" snippet style used throughout the toolchain. Errors that carry no line
// information are returned as plain text.
func Diagnostic(err error, src string) string {
	if err == nil {
		return ""
	}

	line := 0
	var lexErr *LexError
	var parseErr *ParseError
	switch {
	case errors.As(err, &lexErr):
		line = lexErr.Line
	case errors.As(err, &parseErr):
		line = parseErr.Line()
	}

	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return err.Error()
	}
	return fmt.Sprintf("%s\n  |> %s", err.Error(), strings.TrimSpace(lines[line-1]))
}
