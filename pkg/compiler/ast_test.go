package compiler

import (
	"reflect"
	"slices"
	"testing"
)

func TestPoolAddAndAppendList(t *testing.T) {
	p := NewPool()
	a := p.Add(VarRef{Name: "a"})
	b := p.Add(VarRef{Name: "b"})
	c := p.Add(VarRef{Name: "c"})

	if a != 0 || b != 1 || c != 2 {
		t.Fatalf("indices = %d %d %d; want 0 1 2", a, b, c)
	}
	if p.At(a).Next != EmptyNode {
		t.Errorf("new node has Next = %d", p.At(a).Next)
	}

	p.AppendList(a, b)
	p.AppendList(a, c)
	if got := slices.Collect(p.List(a)); !reflect.DeepEqual(got, []NodeIndex{a, b, c}) {
		t.Errorf("List(a) = %v; want [0 1 2]", got)
	}
	if p.Count(a) != 3 || p.Count(b) != 2 || p.Count(EmptyNode) != 0 {
		t.Errorf("Count = %d %d %d", p.Count(a), p.Count(b), p.Count(EmptyNode))
	}

	// appending the tail to itself must not create a cycle
	p.AppendList(a, c)
	if p.Count(a) != 3 {
		t.Errorf("Count after self-append = %d", p.Count(a))
	}

	// empty indices are ignored
	p.AppendList(EmptyNode, a)
	p.AppendList(a, EmptyNode)
	if p.Count(a) != 3 {
		t.Errorf("Count after empty appends = %d", p.Count(a))
	}
}

func TestPoolListStopsEarly(t *testing.T) {
	p := NewPool()
	head := p.Add(Literal{Value: IntValue(1)})
	for i := 2; i <= 5; i++ {
		p.AppendList(head, p.Add(Literal{Value: IntValue(int64(i))}))
	}

	var seen []int64
	for idx := range p.List(head) {
		seen = append(seen, p.Data(idx).(Literal).Value.Int)
		if len(seen) == 2 {
			break
		}
	}
	if !reflect.DeepEqual(seen, []int64{1, 2}) {
		t.Errorf("seen = %v", seen)
	}
}

func TestPoolValidAndAt(t *testing.T) {
	p := NewPool()
	idx := p.Add(Program{DeclarationsHead: EmptyNode})

	if !p.Valid(idx) || p.Valid(EmptyNode) || p.Valid(1) {
		t.Errorf("Valid results wrong")
	}
	if !EmptyNode.IsEmpty() || idx.IsEmpty() {
		t.Errorf("IsEmpty results wrong")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("At(5) did not panic")
		}
	}()
	p.At(5)
}

func TestNodeKinds(t *testing.T) {
	nodes := []NodeData{
		Literal{}, VarRef{}, UnaryExpr{}, BinaryExpr{}, FunctionCall{},
		BlockStmt{}, IfStmt{}, WhileStmt{}, ReturnStmt{}, ExprStmt{},
		VariableDecl{}, FunctionDecl{}, Program{},
	}
	for i, n := range nodes {
		if n.Kind() != NodeKind(i) {
			t.Errorf("%T.Kind() = %s; want %s", n, n.Kind(), NodeKind(i))
		}
	}
	if KindProgram.String() != "Program" || NodeKind(99).String() != "NodeKind(99)" {
		t.Errorf("NodeKind.String wrong: %s %s", KindProgram, NodeKind(99))
	}
}

// kindCounter counts nodes per kind, recursing through every child field.
type kindCounter struct {
	pool   *Pool
	counts map[NodeKind]int
}

func (k *kindCounter) walk(idx NodeIndex) error {
	for cur := range k.pool.List(idx) {
		if err := k.pool.Visit(k, cur); err != nil {
			return err
		}
	}
	return nil
}

func (k *kindCounter) bump(kind NodeKind, children ...NodeIndex) error {
	k.counts[kind]++
	for _, c := range children {
		if err := k.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (k *kindCounter) VisitLiteral(_ NodeIndex, n Literal) error { return k.bump(n.Kind()) }
func (k *kindCounter) VisitVarRef(_ NodeIndex, n VarRef) error   { return k.bump(n.Kind()) }
func (k *kindCounter) VisitUnary(_ NodeIndex, n UnaryExpr) error { return k.bump(n.Kind(), n.Child) }
func (k *kindCounter) VisitBinary(_ NodeIndex, n BinaryExpr) error {
	return k.bump(n.Kind(), n.Left, n.Right)
}
func (k *kindCounter) VisitCall(_ NodeIndex, n FunctionCall) error {
	return k.bump(n.Kind(), n.ArgsHead)
}
func (k *kindCounter) VisitBlock(_ NodeIndex, n BlockStmt) error {
	return k.bump(n.Kind(), n.ChildrenHead)
}
func (k *kindCounter) VisitIf(_ NodeIndex, n IfStmt) error {
	return k.bump(n.Kind(), n.Condition, n.ThenBranch, n.ElseBranch)
}
func (k *kindCounter) VisitWhile(_ NodeIndex, n WhileStmt) error {
	return k.bump(n.Kind(), n.Condition, n.Body)
}
func (k *kindCounter) VisitReturn(_ NodeIndex, n ReturnStmt) error { return k.bump(n.Kind(), n.Expr) }
func (k *kindCounter) VisitExprStmt(_ NodeIndex, n ExprStmt) error { return k.bump(n.Kind(), n.Expr) }
func (k *kindCounter) VisitVarDecl(_ NodeIndex, n VariableDecl) error {
	return k.bump(n.Kind(), n.InitExpr)
}
func (k *kindCounter) VisitFunctionDecl(_ NodeIndex, n FunctionDecl) error {
	return k.bump(n.Kind(), n.ParamsHead, n.Body)
}
func (k *kindCounter) VisitProgram(_ NodeIndex, n Program) error {
	return k.bump(n.Kind(), n.DeclarationsHead)
}

func TestVisitorReachesEveryLiveNode(t *testing.T) {
	pool, root := mustParse(t, `int main(int a) {
		int x = -a;
		if (x < 0) { x = f(x, "s"); } else ;
		while (x) x = x - 1;
		return x;
	}`)

	k := &kindCounter{pool: pool, counts: map[NodeKind]int{}}
	if err := k.walk(root); err != nil {
		t.Fatalf("walk error = %v", err)
	}

	want := map[NodeKind]int{
		KindProgram: 1, KindFunctionDecl: 1, KindBlock: 2, KindVarDecl: 2,
		KindUnary: 1, KindIf: 1, KindWhile: 1, KindReturn: 1, KindExprStmt: 3,
		KindBinary: 4, KindCall: 1, KindVarRef: 8, KindLiteral: 3,
	}
	if !reflect.DeepEqual(k.counts, want) {
		t.Errorf("counts = %v\nwant   %v", k.counts, want)
	}

	total := 0
	for _, n := range k.counts {
		total += n
	}
	if total != pool.Len() {
		t.Errorf("visited %d nodes, pool holds %d", total, pool.Len())
	}
}

func TestVisitInvalidIndex(t *testing.T) {
	p := NewPool()
	k := &kindCounter{pool: p, counts: map[NodeKind]int{}}
	if err := p.Visit(k, 3); err == nil {
		t.Errorf("Visit(3) on an empty pool succeeded")
	}
}
