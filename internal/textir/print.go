// Package textir renders an *ir.Program to text and parses it back,
// satisfying the round-trip law that Parse(Print(p)) prints identically to
// p: structurally equal programs get the same deterministic names out of
// ir.NewNameEnv, so text equality after a second Print is a sufficient
// equality check and the package never needs its own program-equality
// walk.
//
// ir.Print already renders function bodies one instruction per line; what
// it does not carry is enough information to parse those lines back
// un-aided, since a struct type prints as just its name (internal/types
// keeps no field-name information, by design: field names are a surface
// syntax concern the IR has already erased). Print here adds a short
// struct-declaration preamble ahead of the function bodies so Parse has
// somewhere to look up a struct name's field types.
package textir

import (
	"fmt"
	"sort"
	"strings"

	"lll/internal/ir"
)

// Print renders p as struct declarations followed by ir.Print's function
// bodies.
func Print(p *ir.Program) string {
	var sb strings.Builder

	structs := collectStructs(p)
	sort.Slice(structs, func(i, j int) bool { return structs[i].Name < structs[j].Name })
	for _, st := range structs {
		props := make([]string, len(st.Properties))
		for i, prop := range st.Properties {
			props[i] = prop.String()
		}
		sb.WriteString(fmt.Sprintf("struct %s { %s }\n", st.Name, strings.Join(props, ", ")))
	}
	if len(structs) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(ir.Print(p))
	return sb.String()
}
