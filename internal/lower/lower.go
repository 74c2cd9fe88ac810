// Package lower implements AST-to-IR lowering (C7): scope and variable
// resolution, control-flow flattening, type checking, and the
// Alloc+Store+Load convention for mutable locals that a later
// alloc-to-phi pass promotes to SSA.
package lower

import (
	"fmt"

	"lll/internal/ast"
	"lll/internal/ir"
	"lll/internal/types"
)

// Lowerer holds the state shared across an entire compilation unit:
// the type interner, the program's id generator, and the function/struct
// symbol tables built in a first pass before any body is lowered (so
// forward references to functions and struct types resolve correctly).
type Lowerer struct {
	interner  *types.Interner
	program   *ir.Program
	structs   map[string]*types.Struct
	astStructs map[string]*ast.Struct
	functions map[string]*ir.Function
	methodOf  map[string]string // mangled method name -> struct name
	errs      []error
}

// New creates a Lowerer sharing prog's type interner, so that pointer
// types synthesized later by optimization passes canonicalize against the
// same table lowering used.
func New(prog *ir.Program) *Lowerer {
	return &Lowerer{
		interner:   prog.Interner,
		program:    prog,
		structs:    make(map[string]*types.Struct),
		astStructs: make(map[string]*ast.Struct),
		functions:  make(map[string]*ir.Function),
		methodOf:   make(map[string]string),
	}
}

// methodName mangles a struct method into the flat function namespace.
func methodName(structName, method string) string {
	return structName + "_" + method
}

// Lower translates prog into an ir.Program. Lowering stops collecting
// further functions' bodies once registration fails (unresolved struct
// or function signature errors are fatal to lowering as a whole), but
// independent body errors across functions are all collected before
// returning.
func Lower(prog *ast.Program) (*ir.Program, []error) {
	l := New(ir.NewProgram())

	l.registerStructs(prog)
	if len(l.errs) > 0 {
		return nil, l.errs
	}
	l.registerFunctions(prog)
	if len(l.errs) > 0 {
		return nil, l.errs
	}

	for _, top := range prog.Toplevels {
		switch t := top.(type) {
		case *ast.Function:
			l.lowerFunctionBody(t, l.functions[t.Name.Value])
		case *ast.Struct:
			for _, m := range t.Methods {
				l.lowerFunctionBody(m, l.functions[methodName(t.Name.Value, m.Name.Value)])
			}
		}
	}

	if entry := l.program.FindFunction("main"); entry != nil {
		l.program.Entry = entry
	}

	return l.program, l.errs
}

func (l *Lowerer) fail(err error) { l.errs = append(l.errs, err) }

func (l *Lowerer) registerStructs(prog *ast.Program) {
	for _, top := range prog.Toplevels {
		s, ok := top.(*ast.Struct)
		if !ok {
			continue
		}
		if _, exists := l.structs[s.Name.Value]; exists {
			l.fail(newErr(DuplicateDeclaration, s.Pos, fmt.Sprintf("struct %q already declared", s.Name.Value)))
			continue
		}
		st := &types.Struct{Name: s.Name.Value}
		l.structs[s.Name.Value] = st
		l.astStructs[s.Name.Value] = s
	}
	for name, s := range l.astStructs {
		st := l.structs[name]
		for _, prop := range s.Properties {
			pt, err := l.resolveType(prop.Type)
			if err != nil {
				l.fail(err)
				continue
			}
			st.Properties = append(st.Properties, pt)
		}
	}
}

func (l *Lowerer) registerFunctions(prog *ast.Program) {
	for _, top := range prog.Toplevels {
		switch t := top.(type) {
		case *ast.Function:
			l.registerFunction(t.Name.Value, t, "")
		case *ast.Struct:
			for _, m := range t.Methods {
				l.registerFunction(methodName(t.Name.Value, m.Name.Value), m, t.Name.Value)
			}
		}
	}
}

func (l *Lowerer) registerFunction(fullName string, fn *ast.Function, receiverStruct string) {
	if _, exists := l.functions[fullName]; exists {
		l.fail(newErr(DuplicateDeclaration, fn.Pos, fmt.Sprintf("function %q already declared", fullName)))
		return
	}

	var paramTypes []types.Type
	var paramNames []string
	if receiverStruct != "" {
		st, ok := l.structs[receiverStruct]
		if !ok {
			l.fail(newErr(IllegalType, fn.Pos, fmt.Sprintf("method receiver type %q not found", receiverStruct)))
			return
		}
		paramTypes = append(paramTypes, l.interner.Pointer(st))
		paramNames = append(paramNames, "self")
	}
	for _, p := range fn.Params {
		pt, err := l.resolveType(p.Type)
		if err != nil {
			l.fail(err)
			continue
		}
		paramTypes = append(paramTypes, pt)
		paramNames = append(paramNames, p.Name.Value)
	}

	retType := types.Type(types.Void)
	if fn.RetType != nil {
		rt, err := l.resolveType(fn.RetType)
		if err != nil {
			l.fail(err)
		} else {
			retType = rt
		}
	}

	irfn := ir.NewFunction(l.program.IDs.Next(), fullName, paramTypes, retType, l.program)
	for i, name := range paramNames {
		irfn.AddParam(l.program.IDs.Next(), name, paramTypes[i])
	}
	l.program.AddFunction(irfn)
	l.functions[fullName] = irfn
}
