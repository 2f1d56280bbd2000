package compiler

// Unit is the result of running the front end over one source text.
type Unit struct {
	Tokens []Token
	Pool   *Pool
	Root   NodeIndex
}

// Compile lexes and parses src. The error, if any, is the *LexError or
// *ParseError from the failing stage.
func Compile(src string) (*Unit, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}

	pool, root, err := Parse(tokens)
	if err != nil {
		return nil, err
	}

	return &Unit{Tokens: tokens, Pool: pool, Root: root}, nil
}

// Dump renders the unit's AST with the given indent width.
func (u *Unit) Dump(width int) string {
	return DumpIndent(u.Pool, u.Root, width)
}

// Functions returns the names of the top-level function declarations in
// source order.
func (u *Unit) Functions() []string {
	prog, ok := u.Pool.Data(u.Root).(Program)
	if !ok {
		return nil
	}
	var names []string
	for idx := range u.Pool.List(prog.DeclarationsHead) {
		if fn, ok := u.Pool.Data(idx).(FunctionDecl); ok {
			names = append(names, fn.Name)
		}
	}
	return names
}
