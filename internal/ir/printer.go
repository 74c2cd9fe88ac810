package ir

import (
	"fmt"
	"strings"
)

// Print renders p's text form (C4): one function per paragraph, one block
// per label, one instruction per line. Names come from a fresh NameEnv per
// function so the output is stable across calls that don't change the IR,
// independent of node ID allocation order.
func Print(p *Program) string {
	var sb strings.Builder
	for i, fn := range p.Functions {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(PrintFunction(fn))
	}
	return sb.String()
}

// PrintFunction renders one function's text form.
func PrintFunction(fn *Function) string {
	env := NewNameEnv(fn)
	var sb strings.Builder

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%%%s: %s", p.Name, p.Type())
	}
	sb.WriteString(fmt.Sprintf("fn @%s(%s): %s {\n", fn.Name, strings.Join(params, ", "), fn.ReturnType))

	for _, b := range fn.Blocks {
		sb.WriteString(fmt.Sprintf("%s:\n", env.BlockName(b)))
		for _, inst := range b.Instructions {
			sb.WriteString("  " + printInstruction(inst, env) + "\n")
		}
		if b.Terminator != nil {
			sb.WriteString("  " + printInstruction(b.Terminator, env) + "\n")
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

func ref(env *NameEnv, n Node) string {
	if n == nil {
		return "<nil>"
	}
	return env.ValueName(n)
}

func refs(env *NameEnv, ns []Node) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = ref(env, n)
	}
	return strings.Join(parts, ", ")
}

// printInstruction formats one instruction or terminator as a single
// line, dispatching on concrete kind so that every operand is rendered
// through env rather than through an instruction's own debug String.
func printInstruction(inst Instruction, env *NameEnv) string {
	name := env.ValueName(inst)
	switch v := inst.(type) {
	case *Alloc:
		return fmt.Sprintf("%s = Alloc %s", name, v.Inner)
	case *Store:
		return fmt.Sprintf("Store %s, %s", ref(env, v.Pointer()), ref(env, v.Value()))
	case *Load:
		return fmt.Sprintf("%s = Load %s", name, ref(env, v.Pointer()))
	case *BinaryInstruction:
		return fmt.Sprintf("%s = BinaryOp %s %s, %s", name, v.Op, ref(env, v.Left()), ref(env, v.Right()))
	case *UnaryInstruction:
		return fmt.Sprintf("%s = UnaryOp %s %s", name, v.Op, ref(env, v.V()))
	case *Phi:
		parts := make([]string, 0, len(v.Keys()))
		for _, k := range v.Keys() {
			src, _ := v.Source(k)
			parts = append(parts, fmt.Sprintf("%s: %s", env.BlockName(k), ref(env, src)))
		}
		return fmt.Sprintf("%s = Phi %s [%s]", name, v.Type(), strings.Join(parts, ", "))
	case *Eat:
		return fmt.Sprintf("Eat %s", refs(env, v.Args()))
	case *Blur:
		return fmt.Sprintf("%s = Blur %s", name, ref(env, v.V()))
	case *Call:
		return fmt.Sprintf("%s = Call %s(%s)", name, ref(env, v.Target()), refs(env, v.Args()))
	case *GetSubValueStruct:
		return fmt.Sprintf("%s = GetSubValue.Struct %s, %d", name, ref(env, v.Target()), v.Index)
	case *GetSubValueArray:
		return fmt.Sprintf("%s = GetSubValue.Array %s, %s", name, ref(env, v.Target()), ref(env, v.Index()))
	case *GetSubPointerStruct:
		return fmt.Sprintf("%s = GetSubPointer.Struct %s, %d", name, ref(env, v.Target()), v.Index)
	case *GetSubPointerArray:
		return fmt.Sprintf("%s = GetSubPointer.Array %s, %s", name, ref(env, v.Target()), ref(env, v.Index()))
	case *AggregateValue:
		return fmt.Sprintf("%s = AggregateValue %s [%s]", name, v.Type(), refs(env, v.Values()))
	case *Jump:
		return fmt.Sprintf("Jump %s", env.BlockName(v.Target()))
	case *Branch:
		return fmt.Sprintf("Branch %s, %s, %s", ref(env, v.Cond()), env.BlockName(v.TTrue()), env.BlockName(v.TFalse()))
	case *Return:
		return fmt.Sprintf("Return %s", ref(env, v.Value()))
	case *Exit:
		return "Exit"
	default:
		return fmt.Sprintf("<unknown instruction %T>", inst)
	}
}
