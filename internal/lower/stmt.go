package lower

import (
	"fmt"

	"lll/internal/ast"
	"lll/internal/ir"
	"lll/internal/types"
)

func (b *builder) lowerBlock(block *ast.CodeBlock) {
	b.pushScope()
	defer b.popScope()
	for _, stmt := range block.Statements {
		b.lowerStmt(stmt)
	}
}

func (b *builder) lowerStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Declaration:
		b.lowerDeclaration(s)
	case *ast.Assignment:
		b.lowerAssignment(s)
	case *ast.ExpressionStatement:
		b.lowerExpr(s.Expr)
	case *ast.IfStatement:
		b.lowerIf(s)
	case *ast.WhileStatement:
		b.lowerWhile(s)
	case *ast.ReturnStatement:
		b.lowerReturn(s)
	case *ast.BreakStatement:
		b.lowerBreak(s)
	case *ast.ContinueStatement:
		b.lowerContinue(s)
	case *ast.CodeBlock:
		b.lowerBlock(s)
	default:
		b.l.fail(newErr(IllegalType, stmt.NodePos(), fmt.Sprintf("unsupported statement %T", stmt)))
	}
}

func (b *builder) lowerDeclaration(d *ast.Declaration) {
	var declaredType types.Type
	var err error
	if d.Type != nil {
		declaredType, err = b.l.resolveType(d.Type)
		if err != nil {
			b.l.fail(err)
			return
		}
	}

	var value ir.Node
	if d.Value != nil {
		value, err = b.lowerExprTyped(d.Value)
		if err != nil {
			b.l.fail(err)
			return
		}
	}

	if declaredType == nil {
		if value == nil {
			b.l.fail(newErr(MissingTypeDecl, d.Pos, fmt.Sprintf("declaration of %q needs a type or an initializer", d.Identifier.Value)))
			return
		}
		declaredType = value.Type()
	} else if value != nil && !typesEqual(declaredType, value.Type()) {
		b.l.fail(newErr(TypeMismatch, d.Pos, fmt.Sprintf("cannot initialize %q of type %s with value of type %s", d.Identifier.Value, declaredType, value.Type())))
		return
	}

	alloc := b.emitAlloc(declaredType)
	if value != nil {
		b.emit(ir.NewStore(b.nextID(), alloc, value))
	}

	slot := &binding{ptr: alloc, mutable: d.Mutable, typ: declaredType}
	if !b.scope.declare(d.Identifier.Value, slot) {
		b.l.fail(newErr(DuplicateDeclaration, d.Pos, fmt.Sprintf("%q already declared in this scope", d.Identifier.Value)))
	}
}

func (b *builder) lowerAssignment(a *ast.Assignment) {
	ptr, mutable, err := b.lowerLValue(a.LHS)
	if err != nil {
		b.l.fail(err)
		return
	}
	if !mutable {
		b.l.fail(newErr(AssignToImmutable, a.Pos, "cannot assign to an immutable binding"))
		return
	}
	value, err := b.lowerExprTyped(a.Value)
	if err != nil {
		b.l.fail(err)
		return
	}
	pointee, _ := types.Unpoint(ptr.Type())
	if pointee != nil && !typesEqual(pointee, value.Type()) {
		b.l.fail(newErr(TypeMismatch, a.Pos, fmt.Sprintf("cannot assign value of type %s to target of type %s", value.Type(), pointee)))
		return
	}
	b.emit(ir.NewStore(b.nextID(), ptr, value))
}

func (b *builder) lowerIf(s *ast.IfStatement) {
	cond, err := b.lowerExprTyped(s.Cond)
	if err != nil {
		b.l.fail(err)
		return
	}
	thenBlock := b.newBlock("then")
	mergeBlock := b.newBlock("endif")
	elseBlock := mergeBlock
	if s.Else != nil {
		elseBlock = b.newBlock("else")
	}
	b.cur.SetTerminator(ir.NewBranch(b.nextID(), cond, thenBlock, elseBlock))

	b.cur = thenBlock
	b.lowerBlock(s.Then)
	if b.cur.Terminator == nil {
		b.cur.SetTerminator(ir.NewJump(b.nextID(), mergeBlock))
	}

	if s.Else != nil {
		b.cur = elseBlock
		b.lowerBlock(s.Else)
		if b.cur.Terminator == nil {
			b.cur.SetTerminator(ir.NewJump(b.nextID(), mergeBlock))
		}
	}

	b.cur = mergeBlock
}

func (b *builder) lowerWhile(s *ast.WhileStatement) {
	header := b.newBlock("loop")
	body := b.newBlock("body")
	exit := b.newBlock("endloop")

	b.cur.SetTerminator(ir.NewJump(b.nextID(), header))

	b.cur = header
	cond, err := b.lowerExprTyped(s.Cond)
	if err != nil {
		b.l.fail(err)
		return
	}
	b.cur.SetTerminator(ir.NewBranch(b.nextID(), cond, body, exit))

	b.pushLoop(loopTargets{breakTo: exit, continueTo: header})
	b.cur = body
	b.lowerBlock(s.Body)
	if b.cur.Terminator == nil {
		b.cur.SetTerminator(ir.NewJump(b.nextID(), header))
	}
	b.popLoop()

	b.cur = exit
}

func (b *builder) lowerReturn(s *ast.ReturnStatement) {
	var value ir.Node
	if s.Value != nil {
		v, err := b.lowerExprTyped(s.Value)
		if err != nil {
			b.l.fail(err)
			return
		}
		if !typesEqual(v.Type(), b.fn.ReturnType) {
			b.l.fail(newErr(TypeMismatch, s.Pos, fmt.Sprintf("return value has type %s, expected %s", v.Type(), b.fn.ReturnType)))
			return
		}
		value = v
	} else {
		if !b.fn.IsVoid() {
			b.l.fail(newErr(TypeMismatch, s.Pos, fmt.Sprintf("function must return a value of type %s", b.fn.ReturnType)))
			return
		}
		value = ir.NewVoidValue(b.nextID())
	}
	b.cur.SetTerminator(ir.NewReturn(b.nextID(), value))
	b.markUnreachable()
}

func (b *builder) lowerBreak(s *ast.BreakStatement) {
	t, ok := b.currentLoop()
	if !ok {
		b.l.fail(newErr(IllegalType, s.Pos, "break outside of a loop"))
		return
	}
	b.cur.SetTerminator(ir.NewJump(b.nextID(), t.breakTo))
	b.markUnreachable()
}

func (b *builder) lowerContinue(s *ast.ContinueStatement) {
	t, ok := b.currentLoop()
	if !ok {
		b.l.fail(newErr(IllegalType, s.Pos, "continue outside of a loop"))
		return
	}
	b.cur.SetTerminator(ir.NewJump(b.nextID(), t.continueTo))
	b.markUnreachable()
}
