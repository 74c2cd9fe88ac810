package ast

// Program is the root of a parsed source file: a flat list of top-level
// function and struct declarations.
type Program struct {
	Pos       Position
	Toplevels []Toplevel
}

// Toplevel is implemented by Function and Struct.
type Toplevel interface {
	Node
	isToplevel()
}

// Param is one function parameter.
type Param struct {
	Pos  Position
	Name Ident
	Type TypeAnnotation
}

// Function is a top-level function or a struct method. Methods carry
// IsMethod=true; their receiver is bound as an implicit first parameter
// during lowering (see internal/lower).
type Function struct {
	Pos      Position
	Name     Ident
	Params   []*Param
	RetType  TypeAnnotation // nil means void
	Body     *CodeBlock
	IsMethod bool
	Receiver string // enclosing struct name, set when IsMethod
}

// StructProperty is one field of a struct declaration.
type StructProperty struct {
	Pos  Position
	Name Ident
	Type TypeAnnotation
}

// Struct is a top-level struct declaration with its fields and methods.
type Struct struct {
	Pos        Position
	Name       Ident
	Properties []*StructProperty
	Methods    []*Function
}

func (*Function) isToplevel() {}
func (*Struct) isToplevel()   {}

func (p *Program) NodePos() Position         { return p.Pos }
func (f *Function) NodePos() Position        { return f.Pos }
func (p *Param) NodePos() Position           { return p.Pos }
func (s *Struct) NodePos() Position          { return s.Pos }
func (p *StructProperty) NodePos() Position  { return p.Pos }

func (*Program) NodeType() NodeType        { return NODE_PROGRAM }
func (*Function) NodeType() NodeType       { return NODE_FUNCTION }
func (*Param) NodeType() NodeType          { return NODE_PARAM }
func (*Struct) NodeType() NodeType         { return NODE_STRUCT }
func (*StructProperty) NodeType() NodeType { return NODE_STRUCT_PROPERTY }
