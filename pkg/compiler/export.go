package compiler

// TreeNode is a self-contained copy of an AST subtree, used for the JSON and
// YAML dumps. Index is the node's position in the pool it was exported from.
type TreeNode struct {
	Kind     string      `json:"kind" yaml:"kind"`
	Index    NodeIndex   `json:"index" yaml:"index"`
	Op       string      `json:"op,omitempty" yaml:"op,omitempty"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty"`
	Type     string      `json:"type,omitempty" yaml:"type,omitempty"`
	Value    any         `json:"value,omitempty" yaml:"value,omitempty"`
	Children []TreeChild `json:"children,omitempty" yaml:"children,omitempty"`
}

// TreeChild is one labelled edge. Thread edges (block bodies, parameter
// and argument lists, program declarations) expand to every node on the
// thread.
type TreeChild struct {
	Label string     `json:"label" yaml:"label"`
	Nodes []TreeNode `json:"nodes" yaml:"nodes"`
}

// Export converts the subtree at root into a TreeNode. An invalid root yields
// an error rather than a panic.
func Export(pool *Pool, root NodeIndex) (TreeNode, error) {
	ex := &exporter{pool: pool}
	if err := pool.Visit(ex, root); err != nil {
		return TreeNode{}, err
	}
	return ex.out, nil
}

type exporter struct {
	pool *Pool
	out  TreeNode
}

// one exports a single node, ignoring its siblings.
func (ex *exporter) one(idx NodeIndex) (TreeNode, error) {
	sub := &exporter{pool: ex.pool}
	if err := ex.pool.Visit(sub, idx); err != nil {
		return TreeNode{}, err
	}
	return sub.out, nil
}

func (ex *exporter) edge(label string, idx NodeIndex) error {
	if idx == EmptyNode {
		return nil
	}
	n, err := ex.one(idx)
	if err != nil {
		return err
	}
	ex.out.Children = append(ex.out.Children, TreeChild{Label: label, Nodes: []TreeNode{n}})
	return nil
}

func (ex *exporter) thread(label string, head NodeIndex) error {
	if head == EmptyNode {
		return nil
	}
	var nodes []TreeNode
	for idx := range ex.pool.List(head) {
		n, err := ex.one(idx)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
	}
	ex.out.Children = append(ex.out.Children, TreeChild{Label: label, Nodes: nodes})
	return nil
}

func (ex *exporter) begin(idx NodeIndex, k NodeKind) {
	ex.out = TreeNode{Kind: k.String(), Index: idx}
}

func (ex *exporter) VisitLiteral(idx NodeIndex, n Literal) error {
	ex.begin(idx, KindLiteral)
	ex.out.Type = n.Value.Kind.String()
	ex.out.Value = n.Value.Interface()
	return nil
}

func (ex *exporter) VisitVarRef(idx NodeIndex, n VarRef) error {
	ex.begin(idx, KindVarRef)
	ex.out.Name = n.Name
	return nil
}

func (ex *exporter) VisitUnary(idx NodeIndex, n UnaryExpr) error {
	ex.begin(idx, KindUnary)
	ex.out.Op = n.Op
	return ex.edge("child", n.Child)
}

func (ex *exporter) VisitBinary(idx NodeIndex, n BinaryExpr) error {
	ex.begin(idx, KindBinary)
	ex.out.Op = n.Op
	if err := ex.edge("left", n.Left); err != nil {
		return err
	}
	return ex.edge("right", n.Right)
}

func (ex *exporter) VisitCall(idx NodeIndex, n FunctionCall) error {
	ex.begin(idx, KindCall)
	ex.out.Name = n.Name
	return ex.thread("args", n.ArgsHead)
}

func (ex *exporter) VisitBlock(idx NodeIndex, n BlockStmt) error {
	ex.begin(idx, KindBlock)
	return ex.thread("body", n.ChildrenHead)
}

func (ex *exporter) VisitIf(idx NodeIndex, n IfStmt) error {
	ex.begin(idx, KindIf)
	if err := ex.edge("cond", n.Condition); err != nil {
		return err
	}
	if err := ex.edge("then", n.ThenBranch); err != nil {
		return err
	}
	return ex.edge("else", n.ElseBranch)
}

func (ex *exporter) VisitWhile(idx NodeIndex, n WhileStmt) error {
	ex.begin(idx, KindWhile)
	if err := ex.edge("cond", n.Condition); err != nil {
		return err
	}
	return ex.edge("body", n.Body)
}

func (ex *exporter) VisitReturn(idx NodeIndex, n ReturnStmt) error {
	ex.begin(idx, KindReturn)
	return ex.edge("value", n.Expr)
}

func (ex *exporter) VisitExprStmt(idx NodeIndex, n ExprStmt) error {
	ex.begin(idx, KindExprStmt)
	return ex.edge("expr", n.Expr)
}

func (ex *exporter) VisitVarDecl(idx NodeIndex, n VariableDecl) error {
	ex.begin(idx, KindVarDecl)
	ex.out.Type = n.TypeName
	ex.out.Name = n.VarName
	return ex.edge("init", n.InitExpr)
}

func (ex *exporter) VisitFunctionDecl(idx NodeIndex, n FunctionDecl) error {
	ex.begin(idx, KindFunctionDecl)
	ex.out.Type = n.RetType
	ex.out.Name = n.Name
	if err := ex.thread("params", n.ParamsHead); err != nil {
		return err
	}
	return ex.edge("body", n.Body)
}

func (ex *exporter) VisitProgram(idx NodeIndex, n Program) error {
	ex.begin(idx, KindProgram)
	return ex.thread("declarations", n.DeclarationsHead)
}
