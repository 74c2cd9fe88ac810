package parser

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"lll/grammar"
	"lll/internal/ast"
)

func pos(p lexer.Position) ast.Position {
	return ast.Position{
		Filename: p.Filename,
		Offset:   p.Offset,
		Line:     p.Line,
		Column:   p.Column,
	}
}

func ident(p lexer.Position, name string) ast.Ident {
	return ast.Ident{Pos: pos(p), Value: name}
}

func convertProgram(g *grammar.Program) *ast.Program {
	prog := &ast.Program{Pos: pos(g.Pos)}
	for _, top := range g.Toplevels {
		switch {
		case top.Struct != nil:
			prog.Toplevels = append(prog.Toplevels, convertStruct(top.Struct))
		case top.Func != nil:
			prog.Toplevels = append(prog.Toplevels, convertFunction(top.Func, false, ""))
		}
	}
	return prog
}

// convertStruct splits the grammar's interleaved field/method members into
// ast.Struct's separate Properties and Methods slices, in source order
// within each slice.
func convertStruct(g *grammar.Struct) *ast.Struct {
	s := &ast.Struct{
		Pos:  pos(g.Pos),
		Name: ident(g.Pos, g.Name),
	}
	for _, m := range g.Members {
		switch {
		case m.Field != nil:
			s.Properties = append(s.Properties, &ast.StructProperty{
				Pos:  pos(m.Field.Pos),
				Name: ident(m.Field.Pos, m.Field.Name),
				Type: convertType(m.Field.Type),
			})
		case m.Method != nil:
			s.Methods = append(s.Methods, convertFunction(m.Method, true, g.Name))
		}
	}
	return s
}

func convertFunction(g *grammar.Function, isMethod bool, receiver string) *ast.Function {
	fn := &ast.Function{
		Pos:      pos(g.Pos),
		Name:     ident(g.Pos, g.Name),
		IsMethod: isMethod,
		Receiver: receiver,
	}
	for _, p := range g.Params {
		fn.Params = append(fn.Params, &ast.Param{
			Pos:  pos(p.Pos),
			Name: ident(p.Pos, p.Name),
			Type: convertType(p.Type),
		})
	}
	if g.Ret != nil {
		fn.RetType = convertType(g.Ret)
	}
	fn.Body = convertBlock(g.Body)
	return fn
}

func convertType(g *grammar.Type) ast.TypeAnnotation {
	switch {
	case g.Array != nil:
		size, err := strconv.Atoi(g.Array.Size)
		if err != nil {
			size = 0
		}
		return &ast.ArrayTypeAnnotation{
			Pos:  pos(g.Pos),
			Elem: convertType(g.Array.Elem),
			Size: size,
		}
	case g.Fn != nil:
		var params []ast.TypeAnnotation
		for _, p := range g.Fn.Params {
			params = append(params, convertType(p))
		}
		var ret ast.TypeAnnotation
		if g.Fn.Ret != nil {
			ret = convertType(g.Fn.Ret)
		}
		return &ast.FunctionTypeAnnotation{Pos: pos(g.Pos), Params: params, Ret: ret}
	default:
		return &ast.SimpleTypeAnnotation{Pos: pos(g.Pos), Name: g.Name}
	}
}

func convertBlock(g *grammar.Block) *ast.CodeBlock {
	block := &ast.CodeBlock{Pos: pos(g.Pos)}
	for _, s := range g.Stmts {
		block.Statements = append(block.Statements, convertStmt(s))
	}
	return block
}

func convertStmt(g *grammar.Stmt) ast.Stmt {
	switch {
	case g.Decl != nil:
		return convertDecl(g.Decl)
	case g.If != nil:
		return convertIf(g.If)
	case g.While != nil:
		return &ast.WhileStatement{
			Pos:  pos(g.While.Pos),
			Cond: convertExpr(g.While.Cond),
			Body: convertBlock(g.While.Body),
		}
	case g.Return != nil:
		var val ast.Expr
		if g.Return.Value != nil {
			val = convertExpr(g.Return.Value)
		}
		return &ast.ReturnStatement{Pos: pos(g.Return.Pos), Value: val}
	case g.Break != nil:
		return &ast.BreakStatement{Pos: pos(g.Pos)}
	case g.Continue != nil:
		return &ast.ContinueStatement{Pos: pos(g.Pos)}
	case g.Simple != nil:
		return convertSimple(g.Simple)
	default:
		return &ast.ExpressionStatement{Pos: pos(g.Pos)}
	}
}

func convertDecl(g *grammar.Decl) *ast.Declaration {
	decl := &ast.Declaration{
		Pos:        pos(g.Pos),
		Identifier: ident(g.Pos, g.Name),
		Mutable:    g.Mut == "var",
	}
	if g.Type != nil {
		decl.Type = convertType(g.Type)
	}
	if g.Value != nil {
		decl.Value = convertExpr(g.Value)
	}
	return decl
}

func convertIf(g *grammar.IfStmt) *ast.IfStatement {
	stmt := &ast.IfStatement{
		Pos:  pos(g.Pos),
		Cond: convertExpr(g.Cond),
		Then: convertBlock(g.Then),
	}
	if g.Else != nil {
		switch {
		case g.Else.Block != nil:
			stmt.Else = convertBlock(g.Else.Block)
		case g.Else.If != nil:
			nested := convertIf(g.Else.If)
			stmt.Else = &ast.CodeBlock{
				Pos:        nested.Pos,
				Statements: []ast.Stmt{nested},
			}
		}
	}
	return stmt
}

func convertSimple(g *grammar.SimpleStmt) ast.Stmt {
	lhs := convertExpr(g.LHS)
	if g.RHS != nil {
		return &ast.Assignment{Pos: pos(g.Pos), LHS: lhs, Value: convertExpr(g.RHS)}
	}
	return &ast.ExpressionStatement{Pos: pos(g.Pos), Expr: lhs}
}

// convertExpr walks the precedence-climbing grammar chain (OrExpr down to
// PrimaryExpr) and folds it into left-associative ast.BinaryOp/UnaryOp
// trees, flattening the one-production-per-precedence-level shape the
// grammar uses into the flat Expr interface internal/lower expects.
func convertExpr(g *grammar.Expr) ast.Expr {
	return convertOr(g.Or)
}

func convertOr(g *grammar.OrExpr) ast.Expr {
	left := convertAnd(g.Left)
	for _, r := range g.Rest {
		right := convertAnd(r)
		left = &ast.BinaryOp{Pos: left.NodePos(), Op: ast.OR, Left: left, Right: right}
	}
	return left
}

func convertAnd(g *grammar.AndExpr) ast.Expr {
	left := convertEq(g.Left)
	for _, r := range g.Rest {
		right := convertEq(r)
		left = &ast.BinaryOp{Pos: left.NodePos(), Op: ast.AND, Left: left, Right: right}
	}
	return left
}

func convertEq(g *grammar.EqExpr) ast.Expr {
	left := convertRel(g.Left)
	for _, op := range g.Rest {
		right := convertRel(op.Right)
		kind := ast.EQ
		if op.Op == "!=" {
			kind = ast.NEQ
		}
		left = &ast.BinaryOp{Pos: pos(op.Pos), Op: kind, Left: left, Right: right}
	}
	return left
}

func convertRel(g *grammar.RelExpr) ast.Expr {
	left := convertAdd(g.Left)
	for _, op := range g.Rest {
		right := convertAdd(op.Right)
		var kind ast.BinOp
		switch op.Op {
		case "<=":
			kind = ast.LTE
		case ">=":
			kind = ast.GTE
		case "<":
			kind = ast.LT
		case ">":
			kind = ast.GT
		}
		left = &ast.BinaryOp{Pos: pos(op.Pos), Op: kind, Left: left, Right: right}
	}
	return left
}

func convertAdd(g *grammar.AddExpr) ast.Expr {
	left := convertMul(g.Left)
	for _, op := range g.Rest {
		right := convertMul(op.Right)
		kind := ast.ADD
		if op.Op == "-" {
			kind = ast.SUB
		}
		left = &ast.BinaryOp{Pos: pos(op.Pos), Op: kind, Left: left, Right: right}
	}
	return left
}

func convertMul(g *grammar.MulExpr) ast.Expr {
	left := convertUnary(g.Left)
	for _, op := range g.Rest {
		right := convertUnary(op.Right)
		var kind ast.BinOp
		switch op.Op {
		case "*":
			kind = ast.MUL
		case "/":
			kind = ast.DIV
		case "%":
			kind = ast.MOD
		}
		left = &ast.BinaryOp{Pos: pos(op.Pos), Op: kind, Left: left, Right: right}
	}
	return left
}

func convertUnary(g *grammar.UnaryExpr) ast.Expr {
	postfix := convertPostfix(g.Postfix)
	if g.Op == "" {
		return postfix
	}
	op := ast.NEG
	if g.Op == "!" {
		op = ast.NOT
	}
	return &ast.UnaryOp{Pos: pos(g.Pos), Op: op, V: postfix}
}

// convertPostfix folds PostfixExpr's flat suffix list into a right-leaning
// chain of DotIndex/Call/ArrayIndex nodes, applied left to right.
func convertPostfix(g *grammar.PostfixExpr) ast.Expr {
	expr := convertPrimary(g.Primary)
	for _, suf := range g.Suffix {
		switch {
		case suf.Dot != nil:
			dot := &ast.DotIndex{
				Pos:    pos(suf.Pos),
				Target: expr,
				Name:   ident(suf.Dot.Pos, suf.Dot.Name),
			}
			if suf.Dot.Call != nil {
				expr = &ast.Call{Pos: pos(suf.Pos), Target: dot, Args: convertArgs(suf.Dot.Call)}
			} else {
				expr = dot
			}
		case suf.Index != nil:
			expr = &ast.ArrayIndex{Pos: pos(suf.Pos), Target: expr, Index: convertExpr(suf.Index)}
		}
	}
	return expr
}

func convertArgs(g *grammar.Args) []ast.Expr {
	var args []ast.Expr
	for _, a := range g.List {
		args = append(args, convertExpr(a))
	}
	return args
}

func convertPrimary(g *grammar.PrimaryExpr) ast.Expr {
	switch {
	case g.Number != nil:
		return convertNumber(pos(g.Pos), *g.Number)
	case g.True != nil:
		return &ast.BooleanLiteral{Pos: pos(g.Pos), Value: true}
	case g.False != nil:
		return &ast.BooleanLiteral{Pos: pos(g.Pos), Value: false}
	case g.This != nil:
		return &ast.ThisExpression{Pos: pos(g.Pos)}
	case g.Array != nil:
		init := &ast.ArrayInitializer{Pos: pos(g.Array.Pos)}
		for _, v := range g.Array.Values {
			init.Values = append(init.Values, convertExpr(v))
		}
		return init
	case g.Call != nil:
		name := &ast.IdentifierExpression{Pos: pos(g.Call.Pos), Name: g.Call.Name}
		if g.Call.Call != nil {
			return &ast.Call{Pos: pos(g.Call.Pos), Target: name, Args: convertArgs(g.Call.Call)}
		}
		return name
	case g.Paren != nil:
		return convertExpr(g.Paren)
	default:
		return &ast.BooleanLiteral{Pos: pos(g.Pos), Value: false}
	}
}

func convertNumber(p ast.Position, lit string) ast.Expr {
	var v int64
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		n, err := strconv.ParseUint(lit[2:], 16, 64)
		if err == nil {
			v = int64(n)
		}
	} else {
		n, err := strconv.ParseInt(lit, 10, 64)
		if err == nil {
			v = n
		}
	}
	return &ast.NumberLiteral{Pos: p, Value: v}
}
