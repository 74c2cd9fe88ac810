package ast

import (
	"fmt"
	"strings"
)

func (p *Program) String() string {
	var b strings.Builder
	for _, t := range p.Toplevels {
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *Function) String() string {
	var b strings.Builder
	b.WriteString("fun ")
	b.WriteString(f.Name.Value)
	b.WriteByte('(')
	for i, param := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(param.String())
	}
	b.WriteByte(')')
	if f.RetType != nil {
		b.WriteString(": ")
		b.WriteString(f.RetType.String())
	}
	b.WriteByte(' ')
	b.WriteString(f.Body.String())
	return b.String()
}

func (p *Param) String() string {
	return fmt.Sprintf("%s: %s", p.Name.Value, p.Type.String())
}

func (s *Struct) String() string {
	var b strings.Builder
	b.WriteString("struct ")
	b.WriteString(s.Name.Value)
	b.WriteString(" {\n")
	for _, prop := range s.Properties {
		b.WriteString("  ")
		b.WriteString(prop.String())
		b.WriteString(";\n")
	}
	for _, m := range s.Methods {
		b.WriteString("  ")
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}

func (p *StructProperty) String() string {
	return fmt.Sprintf("%s: %s", p.Name.Value, p.Type.String())
}

func (t *SimpleTypeAnnotation) String() string { return t.Name }

func (t *FunctionTypeAnnotation) String() string {
	var parts []string
	for _, p := range t.Params {
		parts = append(parts, p.String())
	}
	ret := "void"
	if t.Ret != nil {
		ret = t.Ret.String()
	}
	return fmt.Sprintf("fn(%s): %s", strings.Join(parts, ", "), ret)
}

func (t *ArrayTypeAnnotation) String() string {
	return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Size)
}

func (b *CodeBlock) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, stmt := range b.Statements {
		sb.WriteString("  ")
		sb.WriteString(stmt.String())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (s *IfStatement) String() string {
	if s.Else != nil {
		return fmt.Sprintf("if (%s) %s else %s", s.Cond, s.Then, s.Else)
	}
	return fmt.Sprintf("if (%s) %s", s.Cond, s.Then)
}

func (s *WhileStatement) String() string {
	return fmt.Sprintf("while (%s) %s", s.Cond, s.Body)
}

func (s *ReturnStatement) String() string {
	if s.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", s.Value)
}

func (s *BreakStatement) String() string    { return "break;" }
func (s *ContinueStatement) String() string { return "continue;" }

func (s *Declaration) String() string {
	kw := "var"
	if !s.Mutable {
		kw = "val"
	}
	var typ string
	if s.Type != nil {
		typ = ": " + s.Type.String()
	}
	var val string
	if s.Value != nil {
		val = " = " + s.Value.String()
	}
	return fmt.Sprintf("%s %s%s%s;", kw, s.Identifier.Value, typ, val)
}

func (s *Assignment) String() string {
	return fmt.Sprintf("%s = %s;", s.LHS, s.Value)
}

func (s *ExpressionStatement) String() string {
	return fmt.Sprintf("%s;", s.Expr)
}

func (e *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *UnaryOp) String() string {
	return fmt.Sprintf("(%s%s)", e.Op, e.V)
}

func (e *Call) String() string {
	var parts []string
	for _, a := range e.Args {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("%s(%s)", e.Target, strings.Join(parts, ", "))
}

func (e *DotIndex) String() string {
	return fmt.Sprintf("%s.%s", e.Target, e.Name.Value)
}

func (e *ArrayIndex) String() string {
	return fmt.Sprintf("%s[%s]", e.Target, e.Index)
}

func (e *ArrayInitializer) String() string {
	var parts []string
	for _, v := range e.Values {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

func (e *IdentifierExpression) String() string { return e.Name }
func (e *ThisExpression) String() string       { return "this" }
func (e *NumberLiteral) String() string        { return fmt.Sprintf("%d", e.Value) }
func (e *BooleanLiteral) String() string       { return fmt.Sprintf("%t", e.Value) }
