package compiler

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorStrings(t *testing.T) {
	tok := Token{Type: IDENTIFIER, Lexeme: "foo", Line: 3, Column: 7}
	tests := []struct {
		err  error
		want string
	}{
		{&LexError{Kind: UnexpectedCharacter, Char: '$', Line: 4}, "Lexer Error: Unexpected character '$' at line 4"},
		{&LexError{Kind: UnterminatedString, Line: 9}, "Lexer Error: Unterminated string at line 9"},
		{&LexError{Kind: OtherLexError, Line: 1, Message: "Invalid UTF-8 encoding"}, "Lexer Error: Invalid UTF-8 encoding at line 1"},
		{&ParseError{Message: "Expected ';'", Token: &tok}, "Parser Error: Expected ';' at 3:7 (token: foo)"},
		{&ParseError{Message: "Expected identifier"}, "Parser Error: Expected identifier"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q; want %q", got, tt.want)
		}
	}

	if UnterminatedString.String() != "UnterminatedString" || LexErrorKind(9).String() != "LexErrorKind(9)" {
		t.Errorf("LexErrorKind.String wrong")
	}
}

func TestParseErrorLine(t *testing.T) {
	if (&ParseError{}).Line() != 0 {
		t.Errorf("Line() without token should be 0")
	}
	if (&ParseError{Token: &Token{Line: 5}}).Line() != 5 {
		t.Errorf("Line() should come from the token")
	}
}

func TestDiagnostic(t *testing.T) {
	src := "int main() {\n    return 1 +;\n}"

	_, err := Compile(src)
	if err == nil {
		t.Fatal("Compile succeeded")
	}
	want := "Parser Error: Unexpected token in expression at 2:15 (token: ;)\n  |> return 1 +;"
	if got := Diagnostic(err, src); got != want {
		t.Errorf("Diagnostic() =\n%s\nwant\n%s", got, want)
	}

	lexSrc := "int x;\n  @\n"
	_, err = Compile(lexSrc)
	if got := Diagnostic(err, lexSrc); got != "Lexer Error: Unexpected character '@' at line 2\n  |> @" {
		t.Errorf("Diagnostic(lex) = %q", got)
	}

	wrapped := fmt.Errorf("main.k: %w", &LexError{Kind: UnterminatedString, Line: 1})
	if got := Diagnostic(wrapped, `x = "abc`); got != "main.k: Lexer Error: Unterminated string at line 1\n  |> x = \"abc" {
		t.Errorf("Diagnostic(wrapped) = %q", got)
	}
}

func TestDiagnosticWithoutLine(t *testing.T) {
	if Diagnostic(nil, "x") != "" {
		t.Errorf("Diagnostic(nil) should be empty")
	}

	plain := errors.New("boom")
	if got := Diagnostic(plain, "x"); got != "boom" {
		t.Errorf("Diagnostic(plain) = %q", got)
	}

	noTok := &ParseError{Message: "Expected identifier"}
	if got := Diagnostic(noTok, "int"); got != "Parser Error: Expected identifier" {
		t.Errorf("Diagnostic(no token) = %q", got)
	}

	beyond := &LexError{Kind: UnterminatedString, Line: 8}
	if got := Diagnostic(beyond, "one line"); got != beyond.Error() {
		t.Errorf("Diagnostic(out of range) = %q", got)
	}
}
