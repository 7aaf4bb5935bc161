package luavet

// Node is the interface implemented by all AST nodes.
type Node interface {
	node() // marker method
}

// Stmt is the interface implemented by statement nodes. Statements only
// occur inside function literal bodies and at the top level, where a
// bare assignment must be recognized so the walk can reject it.
type Stmt interface {
	Node
	stmt() // marker method
}

// NameExpr is a bare identifier reference.
type NameExpr struct {
	Name string
	Line int
}

// LiteralExpr is a number, string, boolean, nil, or vararg literal.
type LiteralExpr struct {
	Value string
	Line  int
}

// UnaryExpr is a prefix operator application (not, -, #).
type UnaryExpr struct {
	Op      string
	Operand Node
	Line    int
}

// BinaryExpr is an infix operator application.
type BinaryExpr struct {
	Op          string
	Left, Right Node
	Line        int
}

// FieldExpr is a dotted property access: Base.Name.
type FieldExpr struct {
	Base Node
	Name string
	Line int
}

// IndexExpr is a bracketed access: Base[Key].
type IndexExpr struct {
	Base Node
	Key  Node
	Line int
}

// CallExpr is a function or method invocation. For a method call
// (base:name(args)) the callee is a FieldExpr and Method is true.
type CallExpr struct {
	Callee Node
	Args   []Node
	Method bool
	Line   int
}

// TableExpr is a table constructor. Keys may be nil for array-style
// entries.
type TableExpr struct {
	Keys   []Node
	Values []Node
	Line   int
}

// FuncExpr is an inline function literal with its body.
type FuncExpr struct {
	Params []string
	Body   []Stmt
	Line   int
}

func (*NameExpr) node()    {}
func (*LiteralExpr) node() {}
func (*UnaryExpr) node()   {}
func (*BinaryExpr) node()  {}
func (*FieldExpr) node()   {}
func (*IndexExpr) node()   {}
func (*CallExpr) node()    {}
func (*TableExpr) node()   {}
func (*FuncExpr) node()    {}

// LocalStmt is a local declaration: local a, b = x, y. Declarations are
// allowed; only assignments to existing targets are rejected.
type LocalStmt struct {
	Names  []string
	Values []Node
	Line   int
}

// AssignStmt is an assignment: a, b.c = x, y. The walk rejects every
// occurrence.
type AssignStmt struct {
	Targets []Node
	Values  []Node
	Line    int
}

// IfStmt is an if/elseif/else chain. Conds and Blocks are parallel; a
// trailing Else block may be nil.
type IfStmt struct {
	Conds  []Node
	Blocks [][]Stmt
	Else   []Stmt
	Line   int
}

// ReturnStmt is a return with zero or more values.
type ReturnStmt struct {
	Values []Node
	Line   int
}

// ExprStmt is a bare expression in statement position.
type ExprStmt struct {
	Expr Node
	Line int
}

func (*LocalStmt) node()  {}
func (*AssignStmt) node() {}
func (*IfStmt) node()     {}
func (*ReturnStmt) node() {}
func (*ExprStmt) node()   {}

func (*LocalStmt) stmt()  {}
func (*AssignStmt) stmt() {}
func (*IfStmt) stmt()     {}
func (*ReturnStmt) stmt() {}
func (*ExprStmt) stmt()   {}
