package ast

import "github.com/podhmo/swiftflow/token"

// Fold performs constant folding over the tree rooted at node and returns
// the resulting root. A BinaryExpr whose operands are both IntegerLit and
// whose operator is + - * or / is replaced by an IntegerLit. Division by a
// literal zero is left for the evaluator to report.
//
// Folded children are written back into their parents; nodes that are not
// folded are otherwise left untouched. Running Fold on an already folded
// tree changes nothing.
func Fold(node Node) Node {
	switch n := node.(type) {
	case nil:
		return nil
	case Expr:
		return foldExpr(n)
	case Stmt:
		foldStmt(n)
		return n
	case *Program:
		for _, s := range n.Stmts {
			foldStmt(s)
		}
		return n
	}
	return node
}

func foldExpr(x Expr) Expr {
	switch n := x.(type) {
	case nil:
		return nil
	case *BinaryExpr:
		n.X = foldExpr(n.X)
		n.Y = foldExpr(n.Y)
		if lit, ok := foldIntegers(n); ok {
			return lit
		}
	case *UnaryExpr:
		n.X = foldExpr(n.X)
	case *TernaryExpr:
		n.Cond = foldExpr(n.Cond)
		n.Then = foldExpr(n.Then)
		n.Else = foldExpr(n.Else)
	case *AssignExpr:
		n.Target = foldExpr(n.Target)
		n.Value = foldExpr(n.Value)
	case *IncDecExpr:
		n.X = foldExpr(n.X)
	case *ArrayLit:
		foldExprs(n.Elements)
	case *ObjectLit:
		for _, kv := range n.Entries {
			kv.Value = foldExpr(kv.Value)
		}
	case *CallExpr:
		n.Fun = foldExpr(n.Fun)
		foldExprs(n.Args)
	case *IndexExpr:
		n.X = foldExpr(n.X)
		n.Index = foldExpr(n.Index)
	case *MemberExpr:
		n.X = foldExpr(n.X)
	case *FuncLit:
		foldParams(n.Params)
		foldStmt(n.Body)
	}
	return x
}

func foldIntegers(n *BinaryExpr) (*IntegerLit, bool) {
	l, ok := n.X.(*IntegerLit)
	if !ok {
		return nil, false
	}
	r, ok := n.Y.(*IntegerLit)
	if !ok {
		return nil, false
	}
	var v int64
	switch n.Op {
	case token.PLUS:
		v = l.Value + r.Value
	case token.MINUS:
		v = l.Value - r.Value
	case token.STAR:
		v = l.Value * r.Value
	case token.SLASH:
		if r.Value == 0 {
			return nil, false
		}
		v = l.Value / r.Value
	default:
		return nil, false
	}
	return &IntegerLit{ValuePos: l.ValuePos, Value: v}, true
}

func foldExprs(list []Expr) {
	for i, x := range list {
		list[i] = foldExpr(x)
	}
}

func foldParams(params []*Param) {
	for _, p := range params {
		p.Default = foldExpr(p.Default)
	}
}

func foldStmt(s Stmt) {
	switch n := s.(type) {
	case nil:
	case *VarDecl:
		n.Value = foldExpr(n.Value)
	case *FuncDecl:
		foldParams(n.Params)
		foldStmt(n.Body)
	case *IfStmt:
		n.Cond = foldExpr(n.Cond)
		foldStmt(n.Then)
		foldStmt(n.Else)
	case *WhileStmt:
		n.Cond = foldExpr(n.Cond)
		foldStmt(n.Body)
	case *ForStmt:
		foldStmt(n.Init)
		n.Cond = foldExpr(n.Cond)
		n.Post = foldExpr(n.Post)
		foldStmt(n.Body)
	case *ReturnStmt:
		n.Result = foldExpr(n.Result)
	case *PrintStmt:
		n.Value = foldExpr(n.Value)
	case *BlockStmt:
		for _, st := range n.Stmts {
			foldStmt(st)
		}
	case *ExprStmt:
		n.X = foldExpr(n.X)
	}
}
