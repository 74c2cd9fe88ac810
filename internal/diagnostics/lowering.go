package diagnostics

import (
	"github.com/alecthomas/participle/v2"

	"lll/internal/ast"
	"lll/internal/lower"
	"lll/internal/verify"
)

var lowerCodes = map[lower.Code]string{
	lower.UnknownIdentifier:    ErrorIdentifierNotFound,
	lower.DuplicateDeclaration: ErrorDuplicateDeclaration,
	lower.AssignToImmutable:    ErrorAssignToImmutable,
	lower.NonLValueTarget:      ErrorIllegalAssignTarget,
	lower.MissingTypeDecl:      ErrorMissingTypeDeclaration,
	lower.IllegalType:          ErrorIllegalType,
	lower.TypeMismatch:         ErrorTypeMismatch,
	lower.ArgumentMismatch:     ErrorArgumentMismatch,
	lower.IllegalCallTarget:    ErrorIllegalCallTarget,
	lower.IllegalDotIndex:      ErrorIllegalDotIndexTarget,
	lower.MissingReturn:        ErrorMissingReturn,
}

// FromLowerError turns a lowering failure into a Diagnostic ready for
// Reporter.Format.
func FromLowerError(err *lower.Error) Diagnostic {
	code, ok := lowerCodes[err.Code]
	if !ok {
		code = ErrorIdentifierNotFound
	}
	return Diagnostic{
		Level:    Error,
		Code:     code,
		Message:  err.Message,
		Position: err.Pos,
		Length:   1,
	}
}

// FromVerifyError turns a structural IR verification failure into a
// Diagnostic. verify.Error carries no source position, since it describes
// an invariant over IR nodes built after lowering has already discarded
// most AST position information; the diagnostic names the offending
// function/block/instruction in its message instead and anchors its
// position at the start of the file.
func FromVerifyError(err *verify.Error) Diagnostic {
	return Diagnostic{
		Level:    Error,
		Code:     ErrorVerificationFailed,
		Message:  err.Error(),
		Position: ast.Position{Line: 1, Column: 1},
		Length:   1,
	}
}

// FromParseError turns a participle parse failure into a Diagnostic.
func FromParseError(err error) Diagnostic {
	pe, ok := err.(participle.Error)
	if !ok {
		return Diagnostic{
			Level:   Error,
			Code:    ErrorSyntax,
			Message: err.Error(),
		}
	}

	pos := pe.Position()
	return Diagnostic{
		Level:   Error,
		Code:    ErrorSyntax,
		Message: pe.Message(),
		Position: ast.Position{
			Filename: pos.Filename,
			Offset:   pos.Offset,
			Line:     pos.Line,
			Column:   pos.Column,
		},
		Length: 1,
	}
}
