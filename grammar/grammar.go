// Package grammar defines the participle/v2 grammar for LLL's surface
// syntax: fun/struct toplevels, var/val declarations, if/while control
// flow, and the usual arithmetic/comparison/logical expression grammar.
// internal/parser converts these capture structs into internal/ast,
// which is the stable contract the rest of the compiler (C7 onward) is
// specified against.
package grammar

import "github.com/alecthomas/participle/v2/lexer"

// Program is the root production: a flat sequence of struct and
// function toplevels, matching ast.Program.
type Program struct {
	Pos       lexer.Position
	Toplevels []*Toplevel `{ @@ }`
}

type Toplevel struct {
	Pos    lexer.Position
	Struct *Struct   `  @@`
	Func   *Function `| @@`
}

// Struct is "struct Name { field: Type, ... fun method(...) {...} ... }".
// Fields and methods may interleave in source order; internal/parser
// re-sorts them into ast.Struct's separate Properties/Methods slices.
type Struct struct {
	Pos     lexer.Position
	Name    string          `"struct" @Ident "{"`
	Members []*StructMember `{ @@ }`
	Close   string          `"}"`
}

type StructMember struct {
	Pos    lexer.Position
	Field  *StructField `  @@`
	Method *Function    `| @@`
}

type StructField struct {
	Pos  lexer.Position
	Name string `@Ident ":"`
	Type *Type  `@@ ","`
}

// Function covers both free functions and struct methods; the grammar
// does not distinguish them (a Function nested inside a Struct is a
// method by construction).
type Function struct {
	Pos    lexer.Position
	Pub    bool     `[ @"pub" ]`
	Name   string   `"fun" @Ident "("`
	Params []*Param `[ @@ { "," @@ } ] ")"`
	Ret    *Type    `[ ":" @@ ]`
	Body   *Block   `@@`
}

type Param struct {
	Pos  lexer.Position
	Name string `@Ident ":"`
	Type *Type  `@@`
}

// Type is one of: a named simple type ("void", "bool", "i32", "i64", or
// a struct name), a fixed-size array "[T; N]", or a function type
// "fn(T, T): T".
type Type struct {
	Pos   lexer.Position
	Array *ArrayType `  @@`
	Fn    *FnType    `| @@`
	Name  string     `| @Ident`
}

type ArrayType struct {
	Pos  lexer.Position
	Elem *Type  `"[" @@ ";"`
	Size string `@Integer "]"`
}

type FnType struct {
	Pos    lexer.Position
	Params []*Type `"fn" "(" [ @@ { "," @@ } ] ")"`
	Ret    *Type   `[ ":" @@ ]`
}

// Block is a brace-delimited statement sequence.
type Block struct {
	Pos   lexer.Position
	Stmts []*Stmt `"{" { @@ } "}"`
}

type Stmt struct {
	Pos      lexer.Position
	Decl     *Decl       `  @@`
	If       *IfStmt     `| @@`
	While    *WhileStmt  `| @@`
	Return   *ReturnStmt `| @@`
	Break    *string     `| @"break" ";"`
	Continue *string     `| @"continue" ";"`
	Simple   *SimpleStmt `| @@`
}

// Decl is "var x[: T] [= expr];" or "val x[: T] [= expr];".
type Decl struct {
	Pos   lexer.Position
	Mut   string `@( "var" | "val" )`
	Name  string `@Ident`
	Type  *Type  `[ ":" @@ ]`
	Value *Expr  `[ "=" @@ ] ";"`
}

// SimpleStmt captures an assignment "lhs = rhs;" and a bare expression
// statement "expr;" with one production: both share the leading Expr,
// and the optional "= rhs" distinguishes them. internal/parser decides
// which ast node to build based on whether RHS is nil, which sidesteps
// participle having to backtrack between two alternatives with a common
// prefix.
type SimpleStmt struct {
	Pos lexer.Position
	LHS *Expr `@@`
	RHS *Expr `[ "=" @@ ] ";"`
}

type IfStmt struct {
	Pos  lexer.Position
	Cond *Expr    `"if" "(" @@ ")"`
	Then *Block   `@@`
	Else *ElseArm `[ "else" @@ ]`
}

// ElseArm is either a plain "else { ... }" block or a chained
// "else if (...) { ... }".
type ElseArm struct {
	Pos   lexer.Position
	Block *Block  `  @@`
	If    *IfStmt `| @@`
}

type WhileStmt struct {
	Pos  lexer.Position
	Cond *Expr  `"while" "(" @@ ")"`
	Body *Block `@@`
}

type ReturnStmt struct {
	Pos   lexer.Position
	Value *Expr `"return" [ @@ ] ";"`
}

// Expr is the entry point of the precedence-climbing expression grammar,
// lowest precedence (logical or) first.
type Expr struct {
	Pos lexer.Position
	Or  *OrExpr `@@`
}

type OrExpr struct {
	Pos  lexer.Position
	Left *AndExpr   `@@`
	Rest []*AndExpr `{ "||" @@ }`
}

type AndExpr struct {
	Pos  lexer.Position
	Left *EqExpr   `@@`
	Rest []*EqExpr `{ "&&" @@ }`
}

type EqExpr struct {
	Pos  lexer.Position
	Left *RelExpr `@@`
	Rest []*EqOp  `{ @@ }`
}

type EqOp struct {
	Pos   lexer.Position
	Op    string   `@( "==" | "!=" )`
	Right *RelExpr `@@`
}

type RelExpr struct {
	Pos  lexer.Position
	Left *AddExpr `@@`
	Rest []*RelOp `{ @@ }`
}

type RelOp struct {
	Pos   lexer.Position
	Op    string   `@( "<=" | ">=" | "<" | ">" )`
	Right *AddExpr `@@`
}

type AddExpr struct {
	Pos  lexer.Position
	Left *MulExpr `@@`
	Rest []*AddOp `{ @@ }`
}

type AddOp struct {
	Pos   lexer.Position
	Op    string   `@( "+" | "-" )`
	Right *MulExpr `@@`
}

type MulExpr struct {
	Pos  lexer.Position
	Left *UnaryExpr `@@`
	Rest []*MulOp   `{ @@ }`
}

type MulOp struct {
	Pos   lexer.Position
	Op    string     `@( "*" | "/" | "%" )`
	Right *UnaryExpr `@@`
}

type UnaryExpr struct {
	Pos     lexer.Position
	Op      string       `[ @( "!" | "-" ) ]`
	Postfix *PostfixExpr `@@`
}

type PostfixExpr struct {
	Pos     lexer.Position
	Primary *PrimaryExpr `@@`
	Suffix  []*Suffix    `{ @@ }`
}

// Suffix is either ".name" / ".name(args)" (field access or method
// call) or "[index]" (array indexing).
type Suffix struct {
	Pos   lexer.Position
	Dot   *DotSuffix `  @@`
	Index *Expr      `| "[" @@ "]"`
}

type DotSuffix struct {
	Pos  lexer.Position
	Name string `"." @Ident`
	Call *Args  `[ @@ ]`
}

type Args struct {
	Pos  lexer.Position
	List []*Expr `"(" [ @@ { "," @@ } ] ")"`
}

type PrimaryExpr struct {
	Pos    lexer.Position
	Number *string      `  @Integer`
	True   *string      `| @"true"`
	False  *string      `| @"false"`
	This   *string      `| @"this"`
	Array  *ArrayLit    `| @@`
	Call   *IdentOrCall `| @@`
	Paren  *Expr        `| "(" @@ ")"`
}

// IdentOrCall is "name" or "name(args)": a bare identifier reference or
// a call whose target is that identifier (ordinary function call or
// struct constructor, disambiguated during lowering per spec.md §4.7).
type IdentOrCall struct {
	Pos  lexer.Position
	Name string `@Ident`
	Call *Args  `[ @@ ]`
}

type ArrayLit struct {
	Pos    lexer.Position
	Values []*Expr `"[" [ @@ { "," @@ } ] "]"`
}
