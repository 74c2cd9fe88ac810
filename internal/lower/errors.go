package lower

import "lll/internal/ast"

// Code identifies one of the front-end's diagnosable error kinds.
type Code string

const (
	UnknownIdentifier    Code = "unknown-identifier"
	DuplicateDeclaration Code = "duplicate-declaration"
	AssignToImmutable    Code = "assign-to-immutable"
	NonLValueTarget      Code = "non-lvalue-target"
	MissingTypeDecl      Code = "missing-type-declaration"
	IllegalType          Code = "illegal-type"
	TypeMismatch         Code = "type-mismatch"
	ArgumentMismatch     Code = "argument-mismatch"
	IllegalCallTarget    Code = "illegal-call-target"
	IllegalDotIndex      Code = "illegal-dot-index-target"
	MissingReturn        Code = "missing-return"
)

// Error is one lowering failure, reported with its source position.
type Error struct {
	Code    Code
	Pos     ast.Position
	Message string
}

func (e *Error) Error() string {
	return e.Pos.String() + ": " + e.Message
}

func newErr(code Code, pos ast.Position, msg string) *Error {
	return &Error{Code: code, Pos: pos, Message: msg}
}
