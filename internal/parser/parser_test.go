package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lll/internal/ast"
)

func TestParseEmptyFunction(t *testing.T) {
	source := `fun main() {
}`
	prog, err := ParseSource("test.lll", source)
	require.NoError(t, err)
	require.Len(t, prog.Toplevels, 1)

	fn, ok := prog.Toplevels[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "main", fn.Name.Value)
	assert.Nil(t, fn.RetType)
	assert.Empty(t, fn.Body.Statements)
}

func TestParseFunctionWithParamsAndReturn(t *testing.T) {
	source := `fun add(a: i32, b: i32): i32 {
    return a + b;
}`
	prog, err := ParseSource("test.lll", source)
	require.NoError(t, err)

	fn := prog.Toplevels[0].(*ast.Function)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name.Value)
	assert.Equal(t, "b", fn.Params[1].Name.Value)

	ret, ok := fn.RetType.(*ast.SimpleTypeAnnotation)
	require.True(t, ok)
	assert.Equal(t, "i32", ret.Name)

	require.Len(t, fn.Body.Statements, 1)
	retStmt, ok := fn.Body.Statements[0].(*ast.ReturnStatement)
	require.True(t, ok)

	binop, ok := retStmt.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, ast.ADD, binop.Op)
}

func TestParseDeclarations(t *testing.T) {
	source := `fun main() {
    var x: i32 = 1;
    val y = true;
}`
	prog, err := ParseSource("test.lll", source)
	require.NoError(t, err)

	fn := prog.Toplevels[0].(*ast.Function)
	require.Len(t, fn.Body.Statements, 2)

	declX := fn.Body.Statements[0].(*ast.Declaration)
	assert.True(t, declX.Mutable)
	assert.Equal(t, "x", declX.Identifier.Value)
	num, ok := declX.Value.(*ast.NumberLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(1), num.Value)

	declY := fn.Body.Statements[1].(*ast.Declaration)
	assert.False(t, declY.Mutable)
	assert.Nil(t, declY.Type)
}

func TestParseIfElseChain(t *testing.T) {
	source := `fun classify(x: i32): i32 {
    if (x < 0) {
        return 0;
    } else if (x == 0) {
        return 1;
    } else {
        return 2;
    }
}`
	prog, err := ParseSource("test.lll", source)
	require.NoError(t, err)

	fn := prog.Toplevels[0].(*ast.Function)
	ifStmt := fn.Body.Statements[0].(*ast.IfStatement)
	require.NotNil(t, ifStmt.Else)
	require.Len(t, ifStmt.Else.Statements, 1)

	nested, ok := ifStmt.Else.Statements[0].(*ast.IfStatement)
	require.True(t, ok)
	require.NotNil(t, nested.Else)
}

func TestParseWhileAndAssignment(t *testing.T) {
	source := `fun sum(n: i32): i32 {
    var total: i32 = 0;
    var i: i32 = 0;
    while (i < n) {
        total = total + i;
        i = i + 1;
    }
    return total;
}`
	prog, err := ParseSource("test.lll", source)
	require.NoError(t, err)

	fn := prog.Toplevels[0].(*ast.Function)
	require.Len(t, fn.Body.Statements, 4)

	whileStmt, ok := fn.Body.Statements[2].(*ast.WhileStatement)
	require.True(t, ok)
	require.Len(t, whileStmt.Body.Statements, 2)

	assign, ok := whileStmt.Body.Statements[0].(*ast.Assignment)
	require.True(t, ok)
	_, ok = assign.LHS.(*ast.IdentifierExpression)
	require.True(t, ok)
}

func TestParseStructWithFieldsAndMethods(t *testing.T) {
	source := `struct Point {
    x: i32,
    y: i32,

    fun length(): i32 {
        return this.x + this.y;
    }
}`
	prog, err := ParseSource("test.lll", source)
	require.NoError(t, err)
	require.Len(t, prog.Toplevels, 1)

	st, ok := prog.Toplevels[0].(*ast.Struct)
	require.True(t, ok)
	assert.Equal(t, "Point", st.Name.Value)
	require.Len(t, st.Properties, 2)
	require.Len(t, st.Methods, 1)
	assert.True(t, st.Methods[0].IsMethod)
	assert.Equal(t, "Point", st.Methods[0].Receiver)

	body := st.Methods[0].Body.Statements[0].(*ast.ReturnStatement)
	binop := body.Value.(*ast.BinaryOp)
	dot, ok := binop.Left.(*ast.DotIndex)
	require.True(t, ok)
	_, ok = dot.Target.(*ast.ThisExpression)
	require.True(t, ok)
}

func TestParseCallsAndStructConstruction(t *testing.T) {
	source := `fun main() {
    var p: Point = Point(1, 2);
    var arr: [i32; 3] = [1, 2, 3];
    p.length();
    arr[0];
}`
	prog, err := ParseSource("test.lll", source)
	require.NoError(t, err)

	fn := prog.Toplevels[0].(*ast.Function)
	declP := fn.Body.Statements[0].(*ast.Declaration)
	arrType, ok := fn.Body.Statements[1].(*ast.Declaration).Type.(*ast.ArrayTypeAnnotation)
	require.True(t, ok)
	assert.Equal(t, 3, arrType.Size)

	call, ok := declP.Value.(*ast.Call)
	require.True(t, ok)
	target, ok := call.Target.(*ast.IdentifierExpression)
	require.True(t, ok)
	assert.Equal(t, "Point", target.Name)
	require.Len(t, call.Args, 2)

	exprStmt := fn.Body.Statements[2].(*ast.ExpressionStatement)
	methodCall, ok := exprStmt.Expr.(*ast.Call)
	require.True(t, ok)
	_, ok = methodCall.Target.(*ast.DotIndex)
	require.True(t, ok)

	indexStmt := fn.Body.Statements[3].(*ast.ExpressionStatement)
	_, ok = indexStmt.Expr.(*ast.ArrayIndex)
	require.True(t, ok)
}

func TestParseHexLiteral(t *testing.T) {
	source := `fun main() {
    var x: i32 = 0xFF;
}`
	prog, err := ParseSource("test.lll", source)
	require.NoError(t, err)

	fn := prog.Toplevels[0].(*ast.Function)
	decl := fn.Body.Statements[0].(*ast.Declaration)
	num := decl.Value.(*ast.NumberLiteral)
	assert.Equal(t, int64(255), num.Value)
}

func TestParseSyntaxError(t *testing.T) {
	source := `fun main( {`
	_, err := ParseSource("test.lll", source)
	assert.Error(t, err)
}
