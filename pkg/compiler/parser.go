package compiler

// Parser consumes the flat token slice produced by the Lexer and builds an
// AST inside a Pool.
//
// Grammar:
//
//	program              = external_declaration* EOF
//	external_declaration = type_specifier IDENTIFIER "(" parameter_list? ")" compound_stmt
//	parameter_list       = parameter_decl ("," parameter_decl)*
//	parameter_decl       = type_specifier IDENTIFIER
//	type_specifier       = "int" | IDENTIFIER
//	compound_stmt        = "{" (local_decl | statement)* "}"
//	local_decl           = type_specifier IDENTIFIER ("=" expression)? ";"
//	statement            = compound_stmt | if_stmt | while_stmt | return_stmt | expression_stmt
//	if_stmt              = "if" "(" expression ")" statement ("else" statement)?
//	while_stmt           = "while" "(" expression ")" statement
//	return_stmt          = "return" expression? ";"
//	expression_stmt      = ";" | expression ";"
//	expression           = assignment
//	assignment           = IDENTIFIER "=" assignment | logical_or
//	logical_or           = logical_and ("or" logical_and)*
//	logical_and          = equality ("and" equality)*
//	equality             = relational (("==" | "!=") relational)*
//	relational           = additive (("<" | ">" | "<=" | ">=") additive)*
//	additive             = multiplicative (("+" | "-") multiplicative)*
//	multiplicative       = unary (("*" | "/" | "%") unary)*
//	unary                = ("+" | "-" | "!") unary | primary
//	primary              = IDENTIFIER ("(" args? ")")? | STRING | NUMBER | "(" expression ")"
//	args                 = expression ("," expression)*
type Parser struct {
	tokens []Token
	pos    int
	pool   *Pool
}

// NewParser returns a parser over tokens with a fresh Pool.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, pool: NewPool()}
}

// Parse builds the AST for tokens and returns the pool together with the
// index of its Program root. On error the partially built pool is dropped.
func Parse(tokens []Token) (*Pool, NodeIndex, error) {
	return NewParser(tokens).Parse()
}

// Parse runs the parser. It must be called at most once per Parser.
func (p *Parser) Parse() (*Pool, NodeIndex, error) {
	head := EmptyNode
	for {
		tok, ok := p.peek()
		if !ok || tok.Type == EOF {
			break
		}
		decl, err := p.parseExternalDeclaration()
		if err != nil {
			return nil, EmptyNode, err
		}
		head = p.link(head, decl)
	}

	root := p.pool.Add(Program{DeclarationsHead: head})
	return p.pool, root, nil
}

//  Cursor helpers

// peek returns the current token without consuming it. ok is false once the
// token slice is exhausted.
func (p *Parser) peek() (Token, bool) {
	return p.peekAt(0)
}

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) (Token, bool) {
	if p.pos+offset >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos+offset], true
}

// check reports whether the current token has type tt.
func (p *Parser) check(tt TokenType) bool {
	tok, ok := p.peek()
	return ok && tok.Type == tt
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok
}

// match consumes the current token if it has type tt.
func (p *Parser) match(tt TokenType) (Token, bool) {
	if !p.check(tt) {
		return Token{}, false
	}
	return p.advance(), true
}

// errorf builds a ParseError pointing at the current token.
func (p *Parser) errorf(msg string) error {
	err := &ParseError{Message: msg}
	if tok, ok := p.peek(); ok {
		err.Token = &tok
	}
	return err
}

// expect consumes a token of type tt or fails with msg.
func (p *Parser) expect(tt TokenType, msg string) (Token, error) {
	tok, ok := p.match(tt)
	if !ok {
		return Token{}, p.errorf(msg)
	}
	return tok, nil
}

// link appends node to the thread at head and returns the (possibly new)
// head.
func (p *Parser) link(head, node NodeIndex) NodeIndex {
	if head == EmptyNode {
		return node
	}
	p.pool.AppendList(head, node)
	return head
}

//  Declarations

// parseExternalDeclaration parses a function definition. Global variables
// are not supported.
func (p *Parser) parseExternalDeclaration() (NodeIndex, error) {
	retType, err := p.parseTypeSpecifier()
	if err != nil {
		return EmptyNode, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return EmptyNode, err
	}

	if _, ok := p.match(LPAREN); !ok {
		return EmptyNode, p.errorf("Global variables not implemented yet")
	}

	params, err := p.parseParameterList()
	if err != nil {
		return EmptyNode, err
	}
	if _, err := p.expect(RPAREN, "Expected ')' after parameters"); err != nil {
		return EmptyNode, err
	}

	body, err := p.parseCompoundStmt()
	if err != nil {
		return EmptyNode, err
	}

	return p.pool.Add(FunctionDecl{RetType: retType, Name: name, ParamsHead: params, Body: body}), nil
}

func (p *Parser) parseParameterList() (NodeIndex, error) {
	if p.check(RPAREN) {
		return EmptyNode, nil
	}

	head, err := p.parseParameterDecl()
	if err != nil {
		return EmptyNode, err
	}
	for {
		if _, ok := p.match(COMMA); !ok {
			break
		}
		param, err := p.parseParameterDecl()
		if err != nil {
			return EmptyNode, err
		}
		head = p.link(head, param)
	}
	return head, nil
}

func (p *Parser) parseParameterDecl() (NodeIndex, error) {
	typeName, err := p.parseTypeSpecifier()
	if err != nil {
		return EmptyNode, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return EmptyNode, err
	}
	return p.pool.Add(VariableDecl{TypeName: typeName, VarName: name, InitExpr: EmptyNode}), nil
}

// parseTypeSpecifier accepts the builtin "int" or any identifier, so user
// type names such as "void" parse as types.
func (p *Parser) parseTypeSpecifier() (string, error) {
	tok, ok := p.peek()
	if !ok {
		return "", p.errorf("Expected type specifier")
	}
	if tok.Type != INT && tok.Type != IDENTIFIER {
		return "", p.errorf("Expected builtin type or type identifier")
	}
	p.advance()
	return tok.Lexeme, nil
}

func (p *Parser) parseIdent() (string, error) {
	tok, err := p.expect(IDENTIFIER, "Expected identifier")
	if err != nil {
		return "", err
	}
	return tok.Lexeme, nil
}

// tryParseLocalDecl speculatively parses "type name (= expr)? ;". On failure
// the cursor is restored to where the attempt started. committed reports
// whether "type name" had already been recognised, in which case the error
// is more specific than whatever the statement fallback would produce.
// Nodes added during an abandoned attempt stay in the pool unreferenced.
func (p *Parser) tryParseLocalDecl() (idx NodeIndex, committed bool, err error) {
	start := p.pos
	defer func() {
		if err != nil {
			p.pos = start
		}
	}()

	typeName, err := p.parseTypeSpecifier()
	if err != nil {
		return EmptyNode, false, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return EmptyNode, false, err
	}

	init := EmptyNode
	if _, ok := p.match(ASSIGN); ok {
		init, err = p.parseExpression()
		if err != nil {
			return EmptyNode, true, err
		}
	}

	if _, err = p.expect(SEMICOLON, "Expected ';' after variable declaration"); err != nil {
		return EmptyNode, true, err
	}

	return p.pool.Add(VariableDecl{TypeName: typeName, VarName: name, InitExpr: init}), true, nil
}

//  Statements

// parseCompoundStmt parses { (decl | stmt)* }.
func (p *Parser) parseCompoundStmt() (NodeIndex, error) {
	if _, err := p.expect(LBRACE, "Expected '{'"); err != nil {
		return EmptyNode, err
	}

	head := EmptyNode
	for {
		tok, ok := p.peek()
		if !ok || tok.Type == RBRACE {
			break
		}
		if tok.Type == EOF {
			return EmptyNode, p.errorf("Expected '}'")
		}

		node, committed, declErr := p.tryParseLocalDecl()
		if declErr != nil {
			var err error
			node, err = p.parseStatement()
			if err != nil {
				if committed {
					return EmptyNode, declErr
				}
				return EmptyNode, err
			}
		}
		head = p.link(head, node)
	}

	if _, err := p.expect(RBRACE, "Expected '}'"); err != nil {
		return EmptyNode, err
	}
	return p.pool.Add(BlockStmt{ChildrenHead: head}), nil
}

// parseStatement dispatches to the correct sub-parser based on the leading token.
func (p *Parser) parseStatement() (NodeIndex, error) {
	tok, ok := p.peek()
	if !ok {
		return EmptyNode, p.errorf("Unexpected end of input")
	}

	switch tok.Type {
	case LBRACE:
		return p.parseCompoundStmt()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case RETURN:
		return p.parseReturn()
	default:
		return p.parseExpressionStmt()
	}
}

// parseIf parses if ( cond ) then [ else else ]
func (p *Parser) parseIf() (NodeIndex, error) {
	if _, err := p.expect(IF, "Expected 'if'"); err != nil {
		return EmptyNode, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return EmptyNode, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return EmptyNode, err
	}

	elseBranch := EmptyNode
	if _, ok := p.match(ELSE); ok {
		elseBranch, err = p.parseStatement()
		if err != nil {
			return EmptyNode, err
		}
	}

	return p.pool.Add(IfStmt{Condition: cond, ThenBranch: then, ElseBranch: elseBranch}), nil
}

// parseWhile parses while ( cond ) body
func (p *Parser) parseWhile() (NodeIndex, error) {
	if _, err := p.expect(WHILE, "Expected 'while'"); err != nil {
		return EmptyNode, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return EmptyNode, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return EmptyNode, err
	}
	return p.pool.Add(WhileStmt{Condition: cond, Body: body}), nil
}

// parseCondition parses the parenthesised condition shared by if and while.
func (p *Parser) parseCondition() (NodeIndex, error) {
	if _, err := p.expect(LPAREN, "Expected '('"); err != nil {
		return EmptyNode, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return EmptyNode, err
	}
	if _, err := p.expect(RPAREN, "Expected ')'"); err != nil {
		return EmptyNode, err
	}
	return cond, nil
}

// parseReturn parses return [expr] ;
func (p *Parser) parseReturn() (NodeIndex, error) {
	if _, err := p.expect(RETURN, "Expected 'return'"); err != nil {
		return EmptyNode, err
	}

	expr := EmptyNode
	if tok, ok := p.peek(); ok && tok.Type != SEMICOLON {
		var err error
		expr, err = p.parseExpression()
		if err != nil {
			return EmptyNode, err
		}
	}

	if _, err := p.expect(SEMICOLON, "Expected ';' after return"); err != nil {
		return EmptyNode, err
	}
	return p.pool.Add(ReturnStmt{Expr: expr}), nil
}

// parseExpressionStmt parses ";" or expr ";"
func (p *Parser) parseExpressionStmt() (NodeIndex, error) {
	if _, ok := p.match(SEMICOLON); ok {
		return p.pool.Add(ExprStmt{Expr: EmptyNode}), nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return EmptyNode, err
	}
	if _, err := p.expect(SEMICOLON, "Expected ';' after expression"); err != nil {
		return EmptyNode, err
	}
	return p.pool.Add(ExprStmt{Expr: expr}), nil
}

//  Expressions

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (NodeIndex, error) {
	return p.parseAssignment()
}

// parseAssignment handles name = value. It is right-associative and only
// recognised when an identifier is directly followed by '='.
func (p *Parser) parseAssignment() (NodeIndex, error) {
	tok, ok := p.peek()
	next, nextOK := p.peekAt(1)
	if !ok || tok.Type != IDENTIFIER || !nextOK || next.Type != ASSIGN {
		return p.parseLogicalOr()
	}

	p.advance() // identifier
	op := p.advance()

	target := p.pool.Add(VarRef{Name: tok.Lexeme})
	value, err := p.parseAssignment()
	if err != nil {
		return EmptyNode, err
	}
	return p.pool.Add(BinaryExpr{Op: op.Lexeme, Left: target, Right: value}), nil
}

// parseBinaryLevel parses one left-associative precedence level:
// next (op next)* where op is any of ops.
func (p *Parser) parseBinaryLevel(next func() (NodeIndex, error), ops ...TokenType) (NodeIndex, error) {
	left, err := next()
	if err != nil {
		return EmptyNode, err
	}

	for {
		tok, ok := p.peek()
		if !ok || !tokenIn(tok.Type, ops) {
			return left, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return EmptyNode, err
		}
		left = p.pool.Add(BinaryExpr{Op: tok.Lexeme, Left: left, Right: right})
	}
}

func tokenIn(tt TokenType, set []TokenType) bool {
	for _, s := range set {
		if tt == s {
			return true
		}
	}
	return false
}

// parseLogicalOr handles "or"
func (p *Parser) parseLogicalOr() (NodeIndex, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, OR)
}

// parseLogicalAnd handles "and"
func (p *Parser) parseLogicalAnd() (NodeIndex, error) {
	return p.parseBinaryLevel(p.parseEquality, AND)
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (NodeIndex, error) {
	return p.parseBinaryLevel(p.parseRelational, EQUALS, NOT_EQ)
}

// parseRelational handles <, >, <= and >=
func (p *Parser) parseRelational() (NodeIndex, error) {
	return p.parseBinaryLevel(p.parseAdditive, LESS, GREATER, LESS_EQ, GREATER_EQ)
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (NodeIndex, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, PLUS, MINUS)
}

// parseMultiplicative handles *, / and %
func (p *Parser) parseMultiplicative() (NodeIndex, error) {
	return p.parseBinaryLevel(p.parseUnary, STAR, SLASH, PERCENT)
}

// parseUnary handles prefix +, - and !
func (p *Parser) parseUnary() (NodeIndex, error) {
	tok, ok := p.peek()
	if ok && (tok.Type == PLUS || tok.Type == MINUS || tok.Type == NOT) {
		p.advance()
		child, err := p.parseUnary()
		if err != nil {
			return EmptyNode, err
		}
		return p.pool.Add(UnaryExpr{Op: tok.Lexeme, Child: child}), nil
	}
	return p.parsePrimary()
}

// parsePrimary handles literals, variables, calls, and parenthesised
// expressions.
func (p *Parser) parsePrimary() (NodeIndex, error) {
	tok, ok := p.peek()
	if !ok {
		return EmptyNode, p.errorf("Expected expression")
	}

	switch tok.Type {
	case IDENTIFIER:
		p.advance()
		if p.check(LPAREN) {
			return p.parseCall(tok.Lexeme)
		}
		return p.pool.Add(VarRef{Name: tok.Lexeme}), nil

	case STRING, NUMBER:
		p.advance()
		return p.pool.Add(Literal{Value: tok.Value}), nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return EmptyNode, err
		}
		if _, err := p.expect(RPAREN, "Expected ')'"); err != nil {
			return EmptyNode, err
		}
		return expr, nil

	default:
		return EmptyNode, p.errorf("Unexpected token in expression")
	}
}

// parseCall parses ( args ) after a function name.
func (p *Parser) parseCall(name string) (NodeIndex, error) {
	if _, err := p.expect(LPAREN, "Expected '('"); err != nil {
		return EmptyNode, err
	}

	args := EmptyNode
	if tok, ok := p.peek(); ok && tok.Type != RPAREN {
		first, err := p.parseExpression()
		if err != nil {
			return EmptyNode, err
		}
		args = first
		for {
			if _, ok := p.match(COMMA); !ok {
				break
			}
			arg, err := p.parseExpression()
			if err != nil {
				return EmptyNode, err
			}
			args = p.link(args, arg)
		}
	}

	if _, err := p.expect(RPAREN, "Expected ')' after arguments"); err != nil {
		return EmptyNode, err
	}
	return p.pool.Add(FunctionCall{Name: name, ArgsHead: args}), nil
}
