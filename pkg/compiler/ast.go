package compiler

import (
	"fmt"
	"iter"
)

// NodeIndex addresses a node inside one Pool. It is a distinct type so that
// raw ints (token positions, byte offsets) cannot be passed where a node is
// expected.
type NodeIndex int32

// EmptyNode is the "no node" index: an absent child or the end of a sibling
// thread.
const EmptyNode NodeIndex = -1

// IsEmpty reports whether i is EmptyNode.
func (i NodeIndex) IsEmpty() bool { return i == EmptyNode }

// NodeKind enumerates the node variants.
type NodeKind uint8

const (
	KindLiteral NodeKind = iota
	KindVarRef
	KindUnary
	KindBinary
	KindCall
	KindBlock
	KindIf
	KindWhile
	KindReturn
	KindExprStmt
	KindVarDecl
	KindFunctionDecl
	KindProgram
)

var kindNames = [...]string{
	KindLiteral:      "Literal",
	KindVarRef:       "VarRef",
	KindUnary:        "UnaryExpr",
	KindBinary:       "BinaryExpr",
	KindCall:         "FunctionCall",
	KindBlock:        "BlockStmt",
	KindIf:           "IfStmt",
	KindWhile:        "WhileStmt",
	KindReturn:       "ReturnStmt",
	KindExprStmt:     "ExprStmt",
	KindVarDecl:      "VariableDecl",
	KindFunctionDecl: "FunctionDecl",
	KindProgram:      "Program",
}

func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// NodeData is the payload of a Node. The set of implementations is closed:
// every variant below, and nothing else, satisfies it.
type NodeData interface {
	Kind() NodeKind
	accept(v Visitor, idx NodeIndex) error
}

//  Expression nodes

// Literal is a string or numeric constant.
//
//	return 42;
//	       ^^  Literal{Value: IntValue(42)}
type Literal struct {
	Value Value
}

// VarRef is a read of a named variable.
type VarRef struct {
	Name string
}

// UnaryExpr represents Op Child, where Op is "+", "-" or "!".
type UnaryExpr struct {
	Op    string
	Child NodeIndex
}

// BinaryExpr represents Left Op Right. Op is the operator's source text, so
// logical operators appear as "and"/"or" and assignment as "=".
type BinaryExpr struct {
	Op    string
	Left  NodeIndex
	Right NodeIndex
}

// FunctionCall represents name(args); ArgsHead threads the arguments.
type FunctionCall struct {
	Name     string
	ArgsHead NodeIndex
}

//  Statement nodes

// BlockStmt represents { ... }; ChildrenHead threads declarations and
// statements in source order.
type BlockStmt struct {
	ChildrenHead NodeIndex
}

// IfStmt represents if (cond) then [else else].
type IfStmt struct {
	Condition  NodeIndex
	ThenBranch NodeIndex
	ElseBranch NodeIndex // EmptyNode when absent
}

// WhileStmt represents while (cond) body.
type WhileStmt struct {
	Condition NodeIndex
	Body      NodeIndex
}

// ReturnStmt represents return [expr];
type ReturnStmt struct {
	Expr NodeIndex // EmptyNode for a bare return
}

// ExprStmt is an expression evaluated for its side effects. Expr is
// EmptyNode for the empty statement ";".
type ExprStmt struct {
	Expr NodeIndex
}

//  Declarations

// VariableDecl is a local variable or a function parameter.
type VariableDecl struct {
	TypeName string
	VarName  string
	InitExpr NodeIndex // always EmptyNode for parameters
}

// FunctionDecl represents ret name(params) { body }.
type FunctionDecl struct {
	RetType    string
	Name       string
	ParamsHead NodeIndex
	Body       NodeIndex
}

// Program is the root of every parse; DeclarationsHead threads the
// top-level function declarations.
type Program struct {
	DeclarationsHead NodeIndex
}

func (Literal) Kind() NodeKind      { return KindLiteral }
func (VarRef) Kind() NodeKind       { return KindVarRef }
func (UnaryExpr) Kind() NodeKind    { return KindUnary }
func (BinaryExpr) Kind() NodeKind   { return KindBinary }
func (FunctionCall) Kind() NodeKind { return KindCall }
func (BlockStmt) Kind() NodeKind    { return KindBlock }
func (IfStmt) Kind() NodeKind       { return KindIf }
func (WhileStmt) Kind() NodeKind    { return KindWhile }
func (ReturnStmt) Kind() NodeKind   { return KindReturn }
func (ExprStmt) Kind() NodeKind     { return KindExprStmt }
func (VariableDecl) Kind() NodeKind { return KindVarDecl }
func (FunctionDecl) Kind() NodeKind { return KindFunctionDecl }
func (Program) Kind() NodeKind      { return KindProgram }

// Node is one pool slot: the variant payload plus the sibling link.
type Node struct {
	Data NodeData
	Next NodeIndex
}

// Pool is the append-only arena every AST node lives in. Nodes are never
// removed or reordered; the only mutation after Add is linking a node onto a
// sibling thread.
type Pool struct {
	nodes []Node
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add appends a node with an empty Next link and returns its index.
// Indices are handed out in insertion order starting at 0.
func (p *Pool) Add(data NodeData) NodeIndex {
	p.nodes = append(p.nodes, Node{Data: data, Next: EmptyNode})
	return NodeIndex(len(p.nodes) - 1)
}

// AppendList walks the thread starting at head and links node after its last
// element. It is a no-op when either index is EmptyNode. Cost is linear in
// the thread length; the threads built by the parser are short.
func (p *Pool) AppendList(head, node NodeIndex) {
	if head == EmptyNode || node == EmptyNode {
		return
	}
	cur := head
	for p.nodes[cur].Next != EmptyNode {
		cur = p.nodes[cur].Next
	}
	if cur == node {
		return
	}
	p.nodes[cur].Next = node
}

// Len returns the number of nodes in the pool.
func (p *Pool) Len() int {
	return len(p.nodes)
}

// Valid reports whether i addresses a node of this pool.
func (p *Pool) Valid(i NodeIndex) bool {
	return i >= 0 && int(i) < len(p.nodes)
}

// At returns a copy of the node at i. It panics if i is not Valid.
func (p *Pool) At(i NodeIndex) Node {
	if !p.Valid(i) {
		panic(fmt.Sprintf("compiler: node index %d out of range [0,%d)", i, len(p.nodes)))
	}
	return p.nodes[i]
}

// Data returns the payload of the node at i.
func (p *Pool) Data(i NodeIndex) NodeData {
	return p.At(i).Data
}

// List iterates over the sibling thread starting at head.
func (p *Pool) List(head NodeIndex) iter.Seq[NodeIndex] {
	return func(yield func(NodeIndex) bool) {
		for cur := head; cur != EmptyNode; cur = p.nodes[cur].Next {
			if !yield(cur) {
				return
			}
		}
	}
}

// Count returns the length of the sibling thread starting at head.
func (p *Pool) Count(head NodeIndex) int {
	n := 0
	for range p.List(head) {
		n++
	}
	return n
}

// Visitor has one method per node kind. Adding a kind adds a method here,
// which turns every visitor that has not been updated into a compile error.
type Visitor interface {
	VisitLiteral(idx NodeIndex, n Literal) error
	VisitVarRef(idx NodeIndex, n VarRef) error
	VisitUnary(idx NodeIndex, n UnaryExpr) error
	VisitBinary(idx NodeIndex, n BinaryExpr) error
	VisitCall(idx NodeIndex, n FunctionCall) error
	VisitBlock(idx NodeIndex, n BlockStmt) error
	VisitIf(idx NodeIndex, n IfStmt) error
	VisitWhile(idx NodeIndex, n WhileStmt) error
	VisitReturn(idx NodeIndex, n ReturnStmt) error
	VisitExprStmt(idx NodeIndex, n ExprStmt) error
	VisitVarDecl(idx NodeIndex, n VariableDecl) error
	VisitFunctionDecl(idx NodeIndex, n FunctionDecl) error
	VisitProgram(idx NodeIndex, n Program) error
}

func (n Literal) accept(v Visitor, i NodeIndex) error      { return v.VisitLiteral(i, n) }
func (n VarRef) accept(v Visitor, i NodeIndex) error       { return v.VisitVarRef(i, n) }
func (n UnaryExpr) accept(v Visitor, i NodeIndex) error    { return v.VisitUnary(i, n) }
func (n BinaryExpr) accept(v Visitor, i NodeIndex) error   { return v.VisitBinary(i, n) }
func (n FunctionCall) accept(v Visitor, i NodeIndex) error { return v.VisitCall(i, n) }
func (n BlockStmt) accept(v Visitor, i NodeIndex) error    { return v.VisitBlock(i, n) }
func (n IfStmt) accept(v Visitor, i NodeIndex) error       { return v.VisitIf(i, n) }
func (n WhileStmt) accept(v Visitor, i NodeIndex) error    { return v.VisitWhile(i, n) }
func (n ReturnStmt) accept(v Visitor, i NodeIndex) error   { return v.VisitReturn(i, n) }
func (n ExprStmt) accept(v Visitor, i NodeIndex) error     { return v.VisitExprStmt(i, n) }
func (n VariableDecl) accept(v Visitor, i NodeIndex) error { return v.VisitVarDecl(i, n) }
func (n FunctionDecl) accept(v Visitor, i NodeIndex) error { return v.VisitFunctionDecl(i, n) }
func (n Program) accept(v Visitor, i NodeIndex) error      { return v.VisitProgram(i, n) }

// Visit dispatches the node at idx to the matching Visitor method. It does
// not descend; visitors recurse by calling Visit on child indices.
func (p *Pool) Visit(v Visitor, idx NodeIndex) error {
	if !p.Valid(idx) {
		return fmt.Errorf("invalid node index %d", idx)
	}
	return p.nodes[idx].Data.accept(v, idx)
}
