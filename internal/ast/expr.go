package ast

// Expr is implemented by every expression node.
type Expr interface {
	Node
	isExpr()
}

// BinaryOp is "l op r".
type BinaryOp struct {
	Pos   Position
	Op    BinOp
	Left  Expr
	Right Expr
}

// UnaryOp is "op v".
type UnaryOp struct {
	Pos Position
	Op  UnOp
	V   Expr
}

// Call covers ordinary function calls, the eat/blur intrinsics, struct
// constructor calls, and method calls; internal/lower disambiguates the
// callee form during lowering.
type Call struct {
	Pos    Position
	Target Expr // IdentifierExpression, DotIndex (method call), or intrinsic name
	Args   []Expr
}

// DotIndex is "target.name": struct field access or method reference.
type DotIndex struct {
	Pos    Position
	Target Expr
	Name   Ident
}

// ArrayIndex is "target[index]".
type ArrayIndex struct {
	Pos    Position
	Target Expr
	Index  Expr
}

// ArrayInitializer is "[v0, v1, ...]".
type ArrayInitializer struct {
	Pos    Position
	Values []Expr
}

// IdentifierExpression names a variable, parameter, function, or struct tag.
type IdentifierExpression struct {
	Pos  Position
	Name string
}

// ThisExpression is the receiver of a method body.
type ThisExpression struct {
	Pos Position
}

// NumberLiteral is an integer literal.
type NumberLiteral struct {
	Pos   Position
	Value int64
}

// BooleanLiteral is "true" or "false".
type BooleanLiteral struct {
	Pos   Position
	Value bool
}

func (*BinaryOp) isExpr()             {}
func (*UnaryOp) isExpr()              {}
func (*Call) isExpr()                 {}
func (*DotIndex) isExpr()             {}
func (*ArrayIndex) isExpr()           {}
func (*ArrayInitializer) isExpr()     {}
func (*IdentifierExpression) isExpr() {}
func (*ThisExpression) isExpr()       {}
func (*NumberLiteral) isExpr()        {}
func (*BooleanLiteral) isExpr()       {}

func (e *BinaryOp) NodePos() Position             { return e.Pos }
func (e *UnaryOp) NodePos() Position              { return e.Pos }
func (e *Call) NodePos() Position                 { return e.Pos }
func (e *DotIndex) NodePos() Position             { return e.Pos }
func (e *ArrayIndex) NodePos() Position           { return e.Pos }
func (e *ArrayInitializer) NodePos() Position     { return e.Pos }
func (e *IdentifierExpression) NodePos() Position { return e.Pos }
func (e *ThisExpression) NodePos() Position        { return e.Pos }
func (e *NumberLiteral) NodePos() Position        { return e.Pos }
func (e *BooleanLiteral) NodePos() Position       { return e.Pos }

func (*BinaryOp) NodeType() NodeType             { return NODE_BINARY_OP }
func (*UnaryOp) NodeType() NodeType              { return NODE_UNARY_OP }
func (*Call) NodeType() NodeType                 { return NODE_CALL }
func (*DotIndex) NodeType() NodeType             { return NODE_DOT_INDEX }
func (*ArrayIndex) NodeType() NodeType           { return NODE_ARRAY_INDEX }
func (*ArrayInitializer) NodeType() NodeType     { return NODE_ARRAY_INITIALIZER }
func (*IdentifierExpression) NodeType() NodeType { return NODE_IDENTIFIER_EXPRESSION }
func (*ThisExpression) NodeType() NodeType       { return NODE_THIS_EXPRESSION }
func (*NumberLiteral) NodeType() NodeType        { return NODE_NUMBER_LITERAL }
func (*BooleanLiteral) NodeType() NodeType       { return NODE_BOOLEAN_LITERAL }
