package compiler

import (
	"errors"
	"reflect"
	"testing"
)

func TestCompile(t *testing.T) {
	src := `
// two functions
int square(int n) { return n * n; }
void main() { print(square(3)); }
`
	unit, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}

	if got := unit.Functions(); !reflect.DeepEqual(got, []string{"square", "main"}) {
		t.Errorf("Functions() = %v", got)
	}
	if last := unit.Tokens[len(unit.Tokens)-1]; last.Type != EOF {
		t.Errorf("last token = %s, want EOF", last.Type)
	}
	if unit.Root != NodeIndex(unit.Pool.Len()-1) {
		t.Errorf("Root = %d, pool holds %d nodes", unit.Root, unit.Pool.Len())
	}
	if unit.Dump(2) != Dump(unit.Pool, unit.Root) {
		t.Errorf("Unit.Dump(2) differs from Dump")
	}
}

func TestCompileEmpty(t *testing.T) {
	unit, err := Compile("   // nothing\n")
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}
	if fns := unit.Functions(); len(fns) != 0 {
		t.Errorf("Functions() = %v", fns)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("int main() { return 1 ~ 2; }")
	var lexErr *LexError
	if !errors.As(err, &lexErr) || lexErr.Char != '~' {
		t.Errorf("Compile error = %v (%T); want unexpected '~'", err, err)
	}

	_, err = Compile("int main() { return 1 2; }")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Compile error = %v (%T); want *ParseError", err, err)
	}
	if parseErr.Message != "Expected ';' after return" || parseErr.Token.Lexeme != "2" {
		t.Errorf("ParseError = %+v", parseErr)
	}
}
