package compiler

import (
	"fmt"
	"strconv"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Paired delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	// Punctuation
	SEMICOLON // ;
	COMMA     // ,

	// Comparison / assignment (each single-char form is followed by its
	// two-char form; the lexer matches greedily)
	NOT        // !
	NOT_EQ     // !=
	ASSIGN     // =
	EQUALS     // ==
	LESS       // <
	LESS_EQ    // <=
	GREATER    // >
	GREATER_EQ // >=

	// Arithmetic and compound assignment. The parser does not consume the
	// compound forms yet.
	PLUS           // +
	PLUS_ASSIGN    // +=
	MINUS          // -
	MINUS_ASSIGN   // -=
	SLASH          // /
	SLASH_ASSIGN   // /=
	PERCENT        // %
	PERCENT_ASSIGN // %=
	STAR           // *
	STAR_ASSIGN    // *=

	// Keywords
	INT    // "int"
	RETURN // "return"
	AND    // "and"
	OR     // "or"
	IF     // "if"
	ELSE   // "else"
	TRUE   // "true"
	FALSE  // "false"
	FOR    // "for"
	WHILE  // "while"

	// Literals
	IDENTIFIER // variable / function / type name
	STRING     // string literal "..."
	NUMBER     // integer or floating literal
)

// tokenNames is indexed by TokenType; the array length is pinned to the
// enum by the blank assignment below.
var tokenNames = [...]string{
	EOF:            "EOF",
	LBRACE:         "LBRACE",
	RBRACE:         "RBRACE",
	LPAREN:         "LPAREN",
	RPAREN:         "RPAREN",
	SEMICOLON:      "SEMICOLON",
	COMMA:          "COMMA",
	NOT:            "NOT",
	NOT_EQ:         "NOT_EQ",
	ASSIGN:         "ASSIGN",
	EQUALS:         "EQUALS",
	LESS:           "LESS",
	LESS_EQ:        "LESS_EQ",
	GREATER:        "GREATER",
	GREATER_EQ:     "GREATER_EQ",
	PLUS:           "PLUS",
	PLUS_ASSIGN:    "PLUS_ASSIGN",
	MINUS:          "MINUS",
	MINUS_ASSIGN:   "MINUS_ASSIGN",
	SLASH:          "SLASH",
	SLASH_ASSIGN:   "SLASH_ASSIGN",
	PERCENT:        "PERCENT",
	PERCENT_ASSIGN: "PERCENT_ASSIGN",
	STAR:           "STAR",
	STAR_ASSIGN:    "STAR_ASSIGN",
	INT:            "INT",
	RETURN:         "RETURN",
	AND:            "AND",
	OR:             "OR",
	IF:             "IF",
	ELSE:           "ELSE",
	TRUE:           "TRUE",
	FALSE:          "FALSE",
	FOR:            "FOR",
	WHILE:          "WHILE",
	IDENTIFIER:     "IDENTIFIER",
	STRING:         "STRING",
	NUMBER:         "NUMBER",
}

var _ = tokenNames[NUMBER]

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// ValueKind tags which field of a Value is meaningful.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueString
	ValueInt
	ValueFloat
)

func (k ValueKind) String() string {
	switch k {
	case ValueNone:
		return "none"
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is the literal payload attached to STRING and NUMBER tokens and
// carried into Literal nodes. Only the field selected by Kind is set, so two
// Values compare equal with == exactly when they hold the same literal.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
}

func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }
func IntValue(i int64) Value     { return Value{Kind: ValueInt, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: ValueFloat, Float: f} }

// IsNone reports whether the value is absent.
func (v Value) IsNone() bool { return v.Kind == ValueNone }

func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return "null"
	}
}

// Interface returns the payload as a plain Go value (nil, string, int64 or
// float64), which is what the structured dumps serialise.
func (v Value) Interface() any {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueInt:
		return v.Int
	case ValueFloat:
		return v.Float
	default:
		return nil
	}
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Value  Value  // literal payload for STRING and NUMBER
	Line   int    // 1-based source line
	Column int    // 1-based column of the first character
}

func (t Token) String() string {
	if t.Value.IsNone() {
		return fmt.Sprintf("%-10s %-14q  %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
	}
	return fmt.Sprintf("%-10s %-14q  %d:%d  value=%s", t.Type, t.Lexeme, t.Line, t.Column, t.Value)
}
