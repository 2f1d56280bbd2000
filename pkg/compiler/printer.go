package compiler

import (
	"fmt"
	"strings"
)

// Dump renders the tree rooted at root as an indented, human-readable
// listing. It is a debugging aid, not an interchange format.
func Dump(pool *Pool, root NodeIndex) string {
	return DumpIndent(pool, root, 2)
}

// DumpIndent is Dump with a configurable number of spaces per level.
func DumpIndent(pool *Pool, root NodeIndex, width int) string {
	if width < 0 {
		width = 0
	}
	pr := &printer{pool: pool, width: width}
	pr.node(root)
	return pr.sb.String()
}

// printer writes one node per line. Labelled children sit one level deeper
// than their parent; sibling threads continue at the same level.
type printer struct {
	pool   *Pool
	sb     strings.Builder
	width  int
	indent int
}

func (pr *printer) pad() string {
	return strings.Repeat(" ", pr.indent*pr.width)
}

// node prints the node at idx and then every node threaded after it.
func (pr *printer) node(idx NodeIndex) {
	if idx == EmptyNode {
		pr.sb.WriteString(pr.pad() + "<null>")
		return
	}
	if !pr.pool.Valid(idx) {
		fmt.Fprintf(&pr.sb, "%s<INVALID INDEX %d>", pr.pad(), idx)
		return
	}

	pr.sb.WriteString(pr.pad())
	// printer never returns an error from its Visit methods.
	_ = pr.pool.Visit(pr, idx)

	if next := pr.pool.At(idx).Next; next != EmptyNode {
		pr.sb.WriteString("\n")
		pr.node(next)
	}
}

func (pr *printer) child(label string, idx NodeIndex) {
	fmt.Fprintf(&pr.sb, "\n%s%s:\n", pr.pad(), label)
	pr.indent++
	pr.node(idx)
	pr.indent--
}

func (pr *printer) VisitLiteral(_ NodeIndex, n Literal) error {
	pr.sb.WriteString(n.Value.String())
	return nil
}

func (pr *printer) VisitVarRef(_ NodeIndex, n VarRef) error {
	fmt.Fprintf(&pr.sb, "Var '%s'", n.Name)
	return nil
}

func (pr *printer) VisitUnary(_ NodeIndex, n UnaryExpr) error {
	fmt.Fprintf(&pr.sb, "Unary '%s'", n.Op)
	pr.child("child", n.Child)
	return nil
}

func (pr *printer) VisitBinary(_ NodeIndex, n BinaryExpr) error {
	fmt.Fprintf(&pr.sb, "Binary '%s'", n.Op)
	pr.child("L", n.Left)
	pr.child("R", n.Right)
	return nil
}

func (pr *printer) VisitCall(_ NodeIndex, n FunctionCall) error {
	fmt.Fprintf(&pr.sb, "Call '%s'", n.Name)
	if n.ArgsHead != EmptyNode {
		pr.child("args", n.ArgsHead)
	}
	return nil
}

func (pr *printer) VisitBlock(_ NodeIndex, n BlockStmt) error {
	pr.sb.WriteString("Block")
	if n.ChildrenHead != EmptyNode {
		pr.child("body", n.ChildrenHead)
	}
	return nil
}

func (pr *printer) VisitIf(_ NodeIndex, n IfStmt) error {
	pr.sb.WriteString("If")
	pr.child("cond", n.Condition)
	pr.child("then", n.ThenBranch)
	if n.ElseBranch != EmptyNode {
		pr.child("else", n.ElseBranch)
	}
	return nil
}

func (pr *printer) VisitWhile(_ NodeIndex, n WhileStmt) error {
	pr.sb.WriteString("While")
	pr.child("cond", n.Condition)
	pr.child("body", n.Body)
	return nil
}

func (pr *printer) VisitReturn(_ NodeIndex, n ReturnStmt) error {
	pr.sb.WriteString("Return")
	if n.Expr != EmptyNode {
		pr.child("val", n.Expr)
	}
	return nil
}

func (pr *printer) VisitExprStmt(_ NodeIndex, n ExprStmt) error {
	pr.sb.WriteString("ExprStmt")
	pr.child("expr", n.Expr)
	return nil
}

func (pr *printer) VisitVarDecl(_ NodeIndex, n VariableDecl) error {
	fmt.Fprintf(&pr.sb, "DeclVar '%s %s'", n.TypeName, n.VarName)
	if n.InitExpr != EmptyNode {
		pr.child("init", n.InitExpr)
	}
	return nil
}

func (pr *printer) VisitFunctionDecl(_ NodeIndex, n FunctionDecl) error {
	fmt.Fprintf(&pr.sb, "Function '%s %s'", n.RetType, n.Name)
	if n.ParamsHead != EmptyNode {
		pr.child("params", n.ParamsHead)
	}
	pr.child("body", n.Body)
	return nil
}

func (pr *printer) VisitProgram(_ NodeIndex, n Program) error {
	pr.sb.WriteString("Program")
	pr.child("roots", n.DeclarationsHead)
	return nil
}
