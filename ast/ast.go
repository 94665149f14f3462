// Package ast declares the types used to represent syntax trees for
// SwiftFlow programs.
package ast

import (
	"strconv"
	"strings"

	"github.com/podhmo/swiftflow/token"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() token.Pos
	String() string
}

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ----------------------------------------------------------------------------
// Expressions

type (
	// IntegerLit is an integer literal.
	IntegerLit struct {
		ValuePos token.Pos
		Value    int64
	}

	// FloatLit is a floating point literal.
	FloatLit struct {
		ValuePos token.Pos
		Value    float64
	}

	// BoolLit is true or false.
	BoolLit struct {
		ValuePos token.Pos
		Value    bool
	}

	// StringLit holds the unescaped string value.
	StringLit struct {
		ValuePos token.Pos
		Value    string
	}

	// NilLit is nil (or null).
	NilLit struct {
		ValuePos token.Pos
	}

	Ident struct {
		NamePos token.Pos
		Name    string
	}

	// BinaryExpr is X Op Y, including && || and in.
	BinaryExpr struct {
		X     Expr
		OpPos token.Pos
		Op    token.Kind
		Y     Expr
	}

	// UnaryExpr is a prefix - ! or ~.
	UnaryExpr struct {
		OpPos token.Pos
		Op    token.Kind
		X     Expr
	}

	// TernaryExpr is Cond ? Then : Else.
	TernaryExpr struct {
		Cond Expr
		Then Expr
		Else Expr
	}

	// AssignExpr is Target Op Value where Op is = or a compound assignment.
	// Target is an *Ident, *IndexExpr or *MemberExpr.
	AssignExpr struct {
		Target Expr
		OpPos  token.Pos
		Op     token.Kind
		Value  Expr
	}

	// IncDecExpr is ++X, --X, X++ or X--.
	IncDecExpr struct {
		OpPos  token.Pos
		Op     token.Kind // INC or DEC
		X      Expr
		Prefix bool
	}

	ArrayLit struct {
		Lbrack   token.Pos
		Elements []Expr
	}

	// KeyValue is one entry of an ObjectLit.
	KeyValue struct {
		KeyPos token.Pos
		Key    string
		Value  Expr
	}

	// ObjectLit is {k: v, ...}. Entries keep source order.
	ObjectLit struct {
		Lbrace  token.Pos
		Entries []*KeyValue
	}

	CallExpr struct {
		Fun    Expr
		Lparen token.Pos
		Args   []Expr
	}

	// IndexExpr is X[Index].
	IndexExpr struct {
		X      Expr
		Lbrack token.Pos
		Index  Expr
	}

	// MemberExpr is X.Name.
	MemberExpr struct {
		X    Expr
		Name *Ident
	}

	// FuncLit is an anonymous function expression.
	FuncLit struct {
		Func   token.Pos
		Params []*Param
		Body   *BlockStmt
	}
)

// Param is a function parameter with an optional default value expression.
type Param struct {
	Name    *Ident
	Default Expr
}

func (p *Param) String() string {
	if p.Default == nil {
		return p.Name.Name
	}
	return p.Name.Name + " = " + p.Default.String()
}

func (x *IntegerLit) Pos() token.Pos  { return x.ValuePos }
func (x *FloatLit) Pos() token.Pos    { return x.ValuePos }
func (x *BoolLit) Pos() token.Pos     { return x.ValuePos }
func (x *StringLit) Pos() token.Pos   { return x.ValuePos }
func (x *NilLit) Pos() token.Pos      { return x.ValuePos }
func (x *Ident) Pos() token.Pos       { return x.NamePos }
func (x *BinaryExpr) Pos() token.Pos  { return x.X.Pos() }
func (x *UnaryExpr) Pos() token.Pos   { return x.OpPos }
func (x *TernaryExpr) Pos() token.Pos { return x.Cond.Pos() }
func (x *AssignExpr) Pos() token.Pos  { return x.Target.Pos() }
func (x *IncDecExpr) Pos() token.Pos {
	if x.Prefix {
		return x.OpPos
	}
	return x.X.Pos()
}
func (x *ArrayLit) Pos() token.Pos   { return x.Lbrack }
func (x *ObjectLit) Pos() token.Pos  { return x.Lbrace }
func (x *CallExpr) Pos() token.Pos   { return x.Fun.Pos() }
func (x *IndexExpr) Pos() token.Pos  { return x.X.Pos() }
func (x *MemberExpr) Pos() token.Pos { return x.X.Pos() }
func (x *FuncLit) Pos() token.Pos    { return x.Func }

func (x *IntegerLit) String() string { return strconv.FormatInt(x.Value, 10) }
func (x *FloatLit) String() string   { return strconv.FormatFloat(x.Value, 'g', -1, 64) }
func (x *BoolLit) String() string    { return strconv.FormatBool(x.Value) }
func (x *StringLit) String() string  { return strconv.Quote(x.Value) }
func (x *NilLit) String() string     { return "nil" }
func (x *Ident) String() string      { return x.Name }
func (x *BinaryExpr) String() string {
	return "(" + x.X.String() + " " + x.Op.String() + " " + x.Y.String() + ")"
}
func (x *UnaryExpr) String() string { return "(" + x.Op.String() + x.X.String() + ")" }
func (x *TernaryExpr) String() string {
	return "(" + x.Cond.String() + " ? " + x.Then.String() + " : " + x.Else.String() + ")"
}
func (x *AssignExpr) String() string {
	return x.Target.String() + " " + x.Op.String() + " " + x.Value.String()
}
func (x *IncDecExpr) String() string {
	if x.Prefix {
		return "(" + x.Op.String() + x.X.String() + ")"
	}
	return "(" + x.X.String() + x.Op.String() + ")"
}
func (x *ArrayLit) String() string { return "[" + joinExprs(x.Elements) + "]" }
func (x *ObjectLit) String() string {
	parts := make([]string, len(x.Entries))
	for i, kv := range x.Entries {
		parts[i] = kv.Key + ": " + kv.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (x *CallExpr) String() string   { return x.Fun.String() + "(" + joinExprs(x.Args) + ")" }
func (x *IndexExpr) String() string  { return x.X.String() + "[" + x.Index.String() + "]" }
func (x *MemberExpr) String() string { return x.X.String() + "." + x.Name.Name }
func (x *FuncLit) String() string {
	return "func(" + joinParams(x.Params) + ") " + x.Body.String()
}

func (*IntegerLit) exprNode()  {}
func (*FloatLit) exprNode()    {}
func (*BoolLit) exprNode()     {}
func (*StringLit) exprNode()   {}
func (*NilLit) exprNode()      {}
func (*Ident) exprNode()       {}
func (*BinaryExpr) exprNode()  {}
func (*UnaryExpr) exprNode()   {}
func (*TernaryExpr) exprNode() {}
func (*AssignExpr) exprNode()  {}
func (*IncDecExpr) exprNode()  {}
func (*ArrayLit) exprNode()    {}
func (*ObjectLit) exprNode()   {}
func (*CallExpr) exprNode()    {}
func (*IndexExpr) exprNode()   {}
func (*MemberExpr) exprNode()  {}
func (*FuncLit) exprNode()     {}

// ----------------------------------------------------------------------------
// Statements

type (
	// VarDecl declares Name in the current scope. Every declaration keyword
	// produces the same node.
	VarDecl struct {
		Decl  token.Pos
		Name  *Ident
		Value Expr // may be nil
	}

	// FuncDecl is a named function; it binds Name in the current scope.
	FuncDecl struct {
		Func   token.Pos
		Name   *Ident
		Params []*Param
		Body   *BlockStmt
	}

	// IfStmt is if (Cond) Then [else Else]. An elif chain is an *IfStmt in Else.
	IfStmt struct {
		If   token.Pos
		Cond Expr
		Then Stmt
		Else Stmt // may be nil
	}

	WhileStmt struct {
		While token.Pos
		Cond  Expr
		Body  Stmt
	}

	// ForStmt is for (Init; Cond; Post) Body. Each clause may be nil.
	ForStmt struct {
		For  token.Pos
		Init Stmt
		Cond Expr
		Post Expr
		Body Stmt
	}

	ReturnStmt struct {
		Return token.Pos
		Result Expr // may be nil
	}

	BreakStmt struct {
		Break token.Pos
	}

	ContinueStmt struct {
		Continue token.Pos
	}

	// ImportStmt is import "Path" or import Names... from "Path".
	ImportStmt struct {
		Import token.Pos
		Names  []*Ident // empty for a whole-module import
		Path   *StringLit
	}

	PrintStmt struct {
		Print token.Pos
		Value Expr
	}

	BlockStmt struct {
		Lbrace token.Pos
		Stmts  []Stmt
	}

	ExprStmt struct {
		X Expr
	}

	// Program is the root of a parsed source file.
	Program struct {
		Stmts []Stmt
	}
)

func (s *VarDecl) Pos() token.Pos      { return s.Decl }
func (s *FuncDecl) Pos() token.Pos     { return s.Func }
func (s *IfStmt) Pos() token.Pos       { return s.If }
func (s *WhileStmt) Pos() token.Pos    { return s.While }
func (s *ForStmt) Pos() token.Pos      { return s.For }
func (s *ReturnStmt) Pos() token.Pos   { return s.Return }
func (s *BreakStmt) Pos() token.Pos    { return s.Break }
func (s *ContinueStmt) Pos() token.Pos { return s.Continue }
func (s *ImportStmt) Pos() token.Pos   { return s.Import }
func (s *PrintStmt) Pos() token.Pos    { return s.Print }
func (s *BlockStmt) Pos() token.Pos    { return s.Lbrace }
func (s *ExprStmt) Pos() token.Pos     { return s.X.Pos() }
func (s *Program) Pos() token.Pos {
	if len(s.Stmts) > 0 {
		return s.Stmts[0].Pos()
	}
	return token.Pos{Line: 1, Column: 1}
}

func (s *VarDecl) String() string {
	if s.Value == nil {
		return "var " + s.Name.Name + ";"
	}
	return "var " + s.Name.Name + " = " + s.Value.String() + ";"
}
func (s *FuncDecl) String() string {
	return "func " + s.Name.Name + "(" + joinParams(s.Params) + ") " + s.Body.String()
}
func (s *IfStmt) String() string {
	out := "if (" + s.Cond.String() + ") " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}
func (s *WhileStmt) String() string {
	return "while (" + s.Cond.String() + ") " + s.Body.String()
}
func (s *ForStmt) String() string {
	var init, cond, post string
	if s.Init != nil {
		init = strings.TrimSuffix(s.Init.String(), ";")
	}
	if s.Cond != nil {
		cond = " " + s.Cond.String()
	}
	if s.Post != nil {
		post = " " + s.Post.String()
	}
	return "for (" + init + ";" + cond + ";" + post + ") " + s.Body.String()
}
func (s *ReturnStmt) String() string {
	if s.Result == nil {
		return "return;"
	}
	return "return " + s.Result.String() + ";"
}
func (s *BreakStmt) String() string    { return "break;" }
func (s *ContinueStmt) String() string { return "continue;" }
func (s *ImportStmt) String() string {
	if len(s.Names) == 0 {
		return "import " + s.Path.String() + ";"
	}
	names := make([]string, len(s.Names))
	for i, n := range s.Names {
		names[i] = n.Name
	}
	return "import " + strings.Join(names, ", ") + " from " + s.Path.String() + ";"
}
func (s *PrintStmt) String() string { return "print " + s.Value.String() + ";" }
func (s *BlockStmt) String() string {
	if len(s.Stmts) == 0 {
		return "{}"
	}
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}
func (s *ExprStmt) String() string { return s.X.String() + ";" }
func (s *Program) String() string {
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String()
	}
	return strings.Join(parts, "\n")
}

func (*VarDecl) stmtNode()      {}
func (*FuncDecl) stmtNode()     {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ImportStmt) stmtNode()   {}
func (*PrintStmt) stmtNode()    {}
func (*BlockStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()     {}

func joinExprs(list []Expr) string {
	parts := make([]string, len(list))
	for i, x := range list {
		parts[i] = x.String()
	}
	return strings.Join(parts, ", ")
}

func joinParams(list []*Param) string {
	parts := make([]string, len(list))
	for i, p := range list {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
