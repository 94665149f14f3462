package ast

// Preorder returns an iterator over node and all of its descendants in
// depth-first preorder.
// Example:
//
//	for n := range Preorder(program) {
//		if imp, ok := n.(*ImportStmt); ok {
//			// use imp
//		}
//	}
func Preorder(node Node) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		walk(node, yield)
	}
}

// Imports returns every import statement in the program, including those
// nested in blocks and function bodies, in source order.
func Imports(prog *Program) []*ImportStmt {
	var imports []*ImportStmt
	for n := range Preorder(prog) {
		if imp, ok := n.(*ImportStmt); ok {
			imports = append(imports, imp)
		}
	}
	return imports
}

// walk reports false when the iteration was stopped.
func walk(node Node, yield func(Node) bool) bool {
	if isNil(node) {
		return true
	}
	if !yield(node) {
		return false
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Stmts {
			if !walk(s, yield) {
				return false
			}
		}
	case *BinaryExpr:
		return walk(n.X, yield) && walk(n.Y, yield)
	case *UnaryExpr:
		return walk(n.X, yield)
	case *TernaryExpr:
		return walk(n.Cond, yield) && walk(n.Then, yield) && walk(n.Else, yield)
	case *AssignExpr:
		return walk(n.Target, yield) && walk(n.Value, yield)
	case *IncDecExpr:
		return walk(n.X, yield)
	case *ArrayLit:
		for _, x := range n.Elements {
			if !walk(x, yield) {
				return false
			}
		}
	case *ObjectLit:
		for _, kv := range n.Entries {
			if !walk(kv.Value, yield) {
				return false
			}
		}
	case *CallExpr:
		if !walk(n.Fun, yield) {
			return false
		}
		for _, x := range n.Args {
			if !walk(x, yield) {
				return false
			}
		}
	case *IndexExpr:
		return walk(n.X, yield) && walk(n.Index, yield)
	case *MemberExpr:
		return walk(n.X, yield)
	case *FuncLit:
		return walkParams(n.Params, yield) && walk(n.Body, yield)
	case *VarDecl:
		return walk(n.Value, yield)
	case *FuncDecl:
		return walkParams(n.Params, yield) && walk(n.Body, yield)
	case *IfStmt:
		return walk(n.Cond, yield) && walk(n.Then, yield) && walk(n.Else, yield)
	case *WhileStmt:
		return walk(n.Cond, yield) && walk(n.Body, yield)
	case *ForStmt:
		return walk(n.Init, yield) && walk(n.Cond, yield) && walk(n.Post, yield) && walk(n.Body, yield)
	case *ReturnStmt:
		return walk(n.Result, yield)
	case *PrintStmt:
		return walk(n.Value, yield)
	case *BlockStmt:
		for _, s := range n.Stmts {
			if !walk(s, yield) {
				return false
			}
		}
	case *ExprStmt:
		return walk(n.X, yield)
	}
	return true
}

func walkParams(params []*Param, yield func(Node) bool) bool {
	for _, p := range params {
		if !walk(p.Default, yield) {
			return false
		}
	}
	return true
}

// isNil reports whether node is nil or an interface holding a nil pointer.
func isNil(node Node) bool {
	switch n := node.(type) {
	case nil:
		return true
	case *BlockStmt:
		return n == nil
	case *StringLit:
		return n == nil
	}
	return false
}
