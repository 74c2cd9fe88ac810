package interp

import "fmt"

// RuntimeError is a trap: a runtime condition spec.md's error model
// assigns to the interpreter rather than the front end or the verifier
// (division by zero, signed overflow, a null-pointer dereference, a
// branch condition outside {0,1}).
type RuntimeError struct {
	Kind    string
	Message string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }
