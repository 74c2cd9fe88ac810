package ir

import "fmt"

// NameEnv assigns deterministic, human-readable names to a function's
// blocks and instructions for printing: it does not mutate the IR, so two
// calls against the same function (even across passes that changed
// nothing observable) produce identical names. Blocks keep whatever Name
// they were given at construction time when non-empty; unnamed blocks and
// every instruction result are named positionally.
//
// Names are reserved in two passes, per the function's own Blocks order:
// first every block gets a name (so a forward Jump target already has one
// when an earlier block is printed), then every instruction gets a name
// in appearance order within its block.
type NameEnv struct {
	blockNames map[*BasicBlock]string
	valueNames map[Node]string
}

// NewNameEnv builds and populates a naming environment for fn.
func NewNameEnv(fn *Function) *NameEnv {
	env := &NameEnv{
		blockNames: make(map[*BasicBlock]string),
		valueNames: make(map[Node]string),
	}
	for i, b := range fn.Blocks {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("bb%d", i)
		}
		env.blockNames[b] = name
	}
	for _, p := range fn.Params {
		env.valueNames[p] = p.Name
	}
	counter := 0
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			env.valueNames[inst] = fmt.Sprintf("%d", counter)
			counter++
		}
		if b.Terminator != nil {
			env.valueNames[b.Terminator] = fmt.Sprintf("%d", counter)
			counter++
		}
	}
	return env
}

// BlockName returns b's assigned name.
func (env *NameEnv) BlockName(b *BasicBlock) string {
	if n, ok := env.blockNames[b]; ok {
		return n
	}
	return b.String()
}

// ValueName returns the textual reference for n: "%name" for a named
// value, the literal form for a Constant/UndefinedValue/VoidValue, and
// "@name" for a Function.
func (env *NameEnv) ValueName(n Node) string {
	switch v := n.(type) {
	case nil:
		return "<nil>"
	case *Constant, *UndefinedValue, *VoidValue:
		return n.String()
	case *Function:
		return "@" + v.Name
	case *BasicBlock:
		return env.BlockName(v)
	}
	if name, ok := env.valueNames[n]; ok {
		return "%" + name
	}
	return n.String()
}
