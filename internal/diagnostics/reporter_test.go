package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lll/internal/ast"
	"lll/internal/lower"
	"lll/internal/parser"
)

func TestReporterFormatsIdentifierNotFound(t *testing.T) {
	source := `fun test(): i32 {
    return unknownVar;
}`

	reporter := NewReporter("test.lll", source)

	d := Diagnostic{
		Level:    Error,
		Code:     ErrorIdentifierNotFound,
		Message:  "identifier 'unknownVar' not found",
		Position: ast.Position{Line: 2, Column: 12},
		Length:   10,
		Suggestions: []Suggestion{
			{Message: "did you mean 'knownVar'?"},
		},
	}
	formatted := reporter.Format(d)

	assert.Contains(t, formatted, "error["+ErrorIdentifierNotFound+"]")
	assert.Contains(t, formatted, "unknownVar")
	assert.Contains(t, formatted, "test.lll:2:12")
	assert.Contains(t, formatted, "did you mean")
}

func TestFromLowerErrorMapsCodes(t *testing.T) {
	source := `fun test(): i32 {
    return unknownVar;
}`
	prog, err := parser.ParseSource("test.lll", source)
	require.NoError(t, err)

	_, errs := lower.Lower(prog)
	require.NotEmpty(t, errs)

	lowerErr, ok := errs[0].(*lower.Error)
	require.True(t, ok)

	d := FromLowerError(lowerErr)
	assert.Equal(t, ErrorIdentifierNotFound, d.Code)
	assert.Equal(t, Error, d.Level)
	assert.Equal(t, lowerErr.Message, d.Message)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "Lowering", GetErrorCategory(ErrorIdentifierNotFound))
	assert.Equal(t, "Verification", GetErrorCategory(ErrorVerificationFailed))
	assert.Equal(t, "Runtime", GetErrorCategory(ErrorRuntimeDivisionByZero))
}
