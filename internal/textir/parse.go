package textir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"lll/internal/ir"
	"lll/internal/types"
)

// funcCtx holds the per-function state threaded through parsing one
// function's body: the block and symbol tables a later instruction's
// operand reference resolves against.
type funcCtx struct {
	fn           *ir.Function
	program      *ir.Program
	reg          structRegistry
	blocksByName map[string]*ir.BasicBlock
	// symtab maps a printed name ("a" for a parameter, "3" for the fourth
	// instruction in traversal order) to the node it names.
	symtab map[string]ir.Node
}

// Parse reconstructs an *ir.Program from text Print produced. Parsing a
// function body is a three-pass walk over its instructions in exactly the
// traversal order Print used: pass one creates every Phi (its type is
// printed explicitly, so it needs no operand to exist first) so that a
// phi sourced from a loop latch block textually below it is already a
// resolvable value; pass two builds every other instruction and
// terminator left to right, by which point each operand--a parameter, an
// earlier instruction, or any phi in the function--already has a node;
// pass three fills in phi sources, since a source can name a value built
// in pass two after the phi itself was created in pass one.
func Parse(text string) (*ir.Program, error) {
	lines := strings.Split(text, "\n")
	p := ir.NewProgram()
	idx := 0

	reg, idx, err := parseStructPreamble(lines, idx, p.Interner)
	if err != nil {
		return nil, err
	}

	for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
		idx++
	}

	type funcBlock struct {
		header string
		body   []string
	}
	var blocks []funcBlock
	for idx < len(lines) {
		line := strings.TrimSpace(lines[idx])
		if line == "" {
			idx++
			continue
		}
		if !strings.HasPrefix(line, "fn @") {
			return nil, fmt.Errorf("line %d: expected a function declaration, got %q", idx+1, line)
		}
		header := line
		idx++
		var body []string
		for idx < len(lines) {
			l := strings.TrimSpace(lines[idx])
			idx++
			if l == "}" {
				break
			}
			if l != "" {
				body = append(body, l)
			}
		}
		blocks = append(blocks, funcBlock{header: header, body: body})
	}

	ctxs := make([]*funcCtx, len(blocks))
	for i, fb := range blocks {
		name, paramsStr, retStr, err := parseFunctionHeader(fb.header)
		if err != nil {
			return nil, fmt.Errorf("line for %q: %w", fb.header, err)
		}
		paramNames, paramTypeStrs, err := splitParams(paramsStr)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		paramTypes := make([]types.Type, len(paramTypeStrs))
		for j, ts := range paramTypeStrs {
			t, err := parseType(newScanner(ts), reg, p.Interner)
			if err != nil {
				return nil, fmt.Errorf("function %s param %d: %w", name, j, err)
			}
			paramTypes[j] = t
		}
		retType, err := parseType(newScanner(retStr), reg, p.Interner)
		if err != nil {
			return nil, fmt.Errorf("function %s return type: %w", name, err)
		}

		fn := ir.NewFunction(p.IDs.Next(), name, paramTypes, retType, p)
		fc := &funcCtx{
			fn:           fn,
			program:      p,
			reg:          reg,
			blocksByName: map[string]*ir.BasicBlock{},
			symtab:       map[string]ir.Node{},
		}
		for j, pn := range paramNames {
			param := fn.AddParam(p.IDs.Next(), pn, paramTypes[j])
			fc.symtab[pn] = param
		}
		p.AddFunction(fn)
		ctxs[i] = fc
	}

	for i, fb := range blocks {
		if err := parseFunctionBody(ctxs[i], fb.body); err != nil {
			return nil, fmt.Errorf("function %s: %w", ctxs[i].fn.Name, err)
		}
	}

	if entry := p.FindFunction("main"); entry != nil {
		p.Entry = entry
	}
	return p, nil
}

func parseStructPreamble(lines []string, idx int, interner *types.Interner) (structRegistry, int, error) {
	reg := structRegistry{}
	type raw struct{ name, props string }
	var decls []raw
	for idx < len(lines) {
		line := strings.TrimSpace(lines[idx])
		if line == "" {
			idx++
			continue
		}
		if !strings.HasPrefix(line, "struct ") {
			break
		}
		name, propsStr, err := parseStructHeader(line)
		if err != nil {
			return nil, idx, err
		}
		decls = append(decls, raw{name, propsStr})
		reg[name] = &types.Struct{Name: name}
		idx++
	}
	for _, d := range decls {
		itemStrs := splitTopLevel(d.props, ',')
		props := make([]types.Type, 0, len(itemStrs))
		for _, it := range itemStrs {
			it = strings.TrimSpace(it)
			if it == "" {
				continue
			}
			t, err := parseType(newScanner(it), reg, interner)
			if err != nil {
				return nil, idx, fmt.Errorf("struct %s: %w", d.name, err)
			}
			props = append(props, t)
		}
		reg[d.name].Properties = props
	}
	return reg, idx, nil
}

func parseStructHeader(line string) (name, props string, err error) {
	if !strings.HasPrefix(line, "struct ") {
		return "", "", fmt.Errorf("expected a struct declaration, got %q", line)
	}
	open := strings.Index(line, "{")
	closeIdx := strings.LastIndex(line, "}")
	if open < 0 || closeIdx < open {
		return "", "", fmt.Errorf("malformed struct declaration %q", line)
	}
	name = strings.TrimSpace(line[len("struct "):open])
	props = strings.TrimSpace(line[open+1 : closeIdx])
	return name, props, nil
}

// parseFunctionHeader splits "fn @name(params): ret {" into its name,
// unparsed parameter list, and unparsed return type. It scans the
// parameter list with paren-depth tracking rather than a regular
// expression because a parameter's own type may be a function type,
// which nests parens.
func parseFunctionHeader(line string) (name, paramsStr, retStr string, err error) {
	sc := newScanner(line)
	if err := sc.consumeLiteral("fn @"); err != nil {
		return "", "", "", err
	}
	name = sc.readIdent()
	if err := sc.consumeLiteral("("); err != nil {
		return "", "", "", err
	}
	paramsStr = readBalanced(sc, '(', ')')
	if err := sc.consumeLiteral(":"); err != nil {
		return "", "", "", err
	}
	remainder := strings.TrimSpace(sc.rest())
	remainder = strings.TrimSuffix(remainder, "{")
	retStr = strings.TrimSpace(remainder)
	return name, paramsStr, retStr, nil
}

func splitParams(s string) (names []string, typeStrs []string, err error) {
	items := splitTopLevel(s, ',')
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !strings.HasPrefix(item, "%") {
			return nil, nil, fmt.Errorf("malformed parameter %q", item)
		}
		colon := strings.Index(item, ":")
		if colon < 0 {
			return nil, nil, fmt.Errorf("malformed parameter %q", item)
		}
		names = append(names, strings.TrimSpace(item[1:colon]))
		typeStrs = append(typeStrs, strings.TrimSpace(item[colon+1:]))
	}
	return names, typeStrs, nil
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside ()
// or [] so that a function-typed parameter or an array-typed element
// doesn't get cut in half.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	tail := s[start:]
	if strings.TrimSpace(tail) != "" || len(out) > 0 {
		out = append(out, tail)
	}
	return out
}

// readBalanced consumes sc starting right after an already-consumed
// opening delimiter and returns everything up to (and consumes) the
// matching closing delimiter, honoring nesting.
func readBalanced(sc *scanner, open, close byte) string {
	depth := 1
	start := sc.pos
	for sc.pos < len(sc.s) && depth > 0 {
		switch sc.s[sc.pos] {
		case open:
			depth++
		case close:
			depth--
		}
		if depth == 0 {
			break
		}
		sc.pos++
	}
	inner := sc.s[start:sc.pos]
	if sc.pos < len(sc.s) {
		sc.pos++
	}
	return inner
}

func parseFunctionBody(fc *funcCtx, lines []string) error {
	type blockLines struct {
		block *ir.BasicBlock
		lines []string
	}
	var blockList []blockLines
	for _, line := range lines {
		if isBlockLabel(line) {
			name := strings.TrimSuffix(line, ":")
			b := ir.NewBasicBlock(fc.program.IDs.Next(), name, fc.fn)
			fc.fn.AddBlock(b)
			fc.blocksByName[name] = b
			blockList = append(blockList, blockLines{block: b})
			continue
		}
		if len(blockList) == 0 {
			return fmt.Errorf("instruction before any block label: %q", line)
		}
		last := &blockList[len(blockList)-1]
		last.lines = append(last.lines, line)
	}
	if len(blockList) > 0 {
		fc.fn.Entry = blockList[0].block
	}

	type phiPending struct {
		phi   *ir.Phi
		raw   string
	}
	var phiPendings []phiPending
	type pending struct {
		block *ir.BasicBlock
		index int
		line  string
	}
	var pendings []pending

	counter := 0
	for _, bl := range blockList {
		for _, line := range bl.lines {
			kw, rest := splitKeyword(line)
			if kindKey(kw) == "phi" {
				sc := newScanner(rest)
				t, err := parseType(sc, fc.reg, fc.program.Interner)
				if err != nil {
					return fmt.Errorf("phi type: %w", err)
				}
				if err := sc.consumeLiteral("["); err != nil {
					return err
				}
				raw := readBalanced(sc, '[', ']')
				phi := ir.NewPhi(fc.program.IDs.Next(), t)
				bl.block.Append(phi)
				fc.symtab[indexName(counter)] = phi
				phiPendings = append(phiPendings, phiPending{phi: phi, raw: raw})
				counter++
				continue
			}
			pendings = append(pendings, pending{block: bl.block, index: counter, line: line})
			counter++
		}
	}

	for _, pd := range pendings {
		inst, err := buildInstruction(fc, pd.line)
		if err != nil {
			return fmt.Errorf("%q: %w", pd.line, err)
		}
		fc.symtab[indexName(pd.index)] = inst
		if term, ok := inst.(ir.Terminator); ok {
			pd.block.SetTerminator(term)
		} else if basic, ok := inst.(ir.BasicInstruction); ok {
			pd.block.Append(basic)
		} else {
			return fmt.Errorf("%q: built neither a basic instruction nor a terminator", pd.line)
		}
	}

	for _, pp := range phiPendings {
		entries := splitTopLevel(pp.raw, ',')
		for _, e := range entries {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			colon := strings.Index(e, ":")
			if colon < 0 {
				return fmt.Errorf("malformed phi source %q", e)
			}
			blockName := strings.TrimSpace(e[:colon])
			src, ok := fc.blocksByName[blockName]
			if !ok {
				return fmt.Errorf("phi source references unknown block %q", blockName)
			}
			val, err := resolveRef(fc, strings.TrimSpace(e[colon+1:]))
			if err != nil {
				return fmt.Errorf("phi source: %w", err)
			}
			pp.phi.AddSource(src, val)
		}
	}

	return nil
}

func isBlockLabel(line string) bool {
	return strings.HasSuffix(line, ":") && !strings.ContainsAny(line, " =")
}

func indexName(n int) string { return strconv.Itoa(n) }

// splitKeyword pulls the instruction keyword and its unparsed operand
// text out of a line, discarding any "%name = " prefix: the name a line
// declares is never consulted again, since a later reference to it is
// resolved positionally through funcCtx.symtab instead.
func splitKeyword(line string) (kw, rest string) {
	text := line
	if i := strings.Index(line, " = "); i >= 0 {
		text = line[i+3:]
	}
	text = strings.TrimSpace(text)
	if sp := strings.IndexByte(text, ' '); sp >= 0 {
		return text[:sp], strings.TrimSpace(text[sp+1:])
	}
	return text, ""
}

var exactKeywords = map[string]string{
	"Alloc":                "alloc",
	"Store":                "store",
	"Load":                 "load",
	"BinaryOp":             "binary_op",
	"UnaryOp":              "unary_op",
	"Phi":                  "phi",
	"Eat":                  "eat",
	"Blur":                 "blur",
	"Call":                 "call",
	"GetSubValue.Struct":   "get_sub_value_struct",
	"GetSubValue.Array":    "get_sub_value_array",
	"GetSubPointer.Struct": "get_sub_pointer_struct",
	"GetSubPointer.Array":  "get_sub_pointer_array",
	"AggregateValue":       "aggregate_value",
	"Jump":                 "jump",
	"Branch":               "branch",
	"Return":               "return",
	"Exit":                 "exit",
}

// kindKey normalizes an instruction keyword to a dispatch key. The exact
// table covers every keyword Print emits; strcase.ToSnake is a fallback
// for hand-edited text using different casing or spelling, so a near-miss
// still dispatches instead of failing outright.
func kindKey(kw string) string {
	if k, ok := exactKeywords[kw]; ok {
		return k
	}
	return strcase.ToSnake(strings.ReplaceAll(kw, ".", "_"))
}

func buildInstruction(fc *funcCtx, line string) (ir.Instruction, error) {
	kw, rest := splitKeyword(line)
	ids := fc.program.IDs
	interner := fc.program.Interner

	switch kindKey(kw) {
	case "alloc":
		t, err := parseType(newScanner(rest), fc.reg, interner)
		if err != nil {
			return nil, err
		}
		return ir.NewAlloc(ids.Next(), t, interner), nil

	case "store":
		a, b, err := splitPair(rest)
		if err != nil {
			return nil, err
		}
		ptr, err := resolveRef(fc, a)
		if err != nil {
			return nil, err
		}
		val, err := resolveRef(fc, b)
		if err != nil {
			return nil, err
		}
		return ir.NewStore(ids.Next(), ptr, val), nil

	case "load":
		ptr, err := resolveRef(fc, strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return ir.NewLoad(ids.Next(), ptr), nil

	case "binary_op":
		opTok, remainder := splitFirstToken(rest)
		a, b, err := splitPair(remainder)
		if err != nil {
			return nil, err
		}
		left, err := resolveRef(fc, a)
		if err != nil {
			return nil, err
		}
		right, err := resolveRef(fc, b)
		if err != nil {
			return nil, err
		}
		op, err := parseBinOp(opTok)
		if err != nil {
			return nil, err
		}
		return ir.NewBinaryInstruction(ids.Next(), op, left, right, interner), nil

	case "unary_op":
		opTok, remainder := splitFirstToken(rest)
		v, err := resolveRef(fc, strings.TrimSpace(remainder))
		if err != nil {
			return nil, err
		}
		op, err := parseUnOp(opTok)
		if err != nil {
			return nil, err
		}
		return ir.NewUnaryInstruction(ids.Next(), op, v), nil

	case "eat":
		args, err := resolveRefList(fc, rest)
		if err != nil {
			return nil, err
		}
		return ir.NewEat(ids.Next(), args), nil

	case "blur":
		v, err := resolveRef(fc, strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return ir.NewBlur(ids.Next(), v), nil

	case "call":
		open := strings.IndexByte(rest, '(')
		if open < 0 || !strings.HasSuffix(rest, ")") {
			return nil, fmt.Errorf("malformed Call %q", rest)
		}
		targetTok := strings.TrimSpace(rest[:open])
		argsStr := rest[open+1 : len(rest)-1]
		target, err := resolveRef(fc, targetTok)
		if err != nil {
			return nil, err
		}
		args, err := resolveRefList(fc, argsStr)
		if err != nil {
			return nil, err
		}
		return ir.NewCall(ids.Next(), target, args), nil

	case "get_sub_value_struct":
		a, b, err := splitPair(rest)
		if err != nil {
			return nil, err
		}
		target, err := resolveRef(fc, a)
		if err != nil {
			return nil, err
		}
		index, err := strconv.Atoi(b)
		if err != nil {
			return nil, fmt.Errorf("GetSubValue.Struct index: %w", err)
		}
		return ir.NewGetSubValueStruct(ids.Next(), target, index), nil

	case "get_sub_value_array":
		a, b, err := splitPair(rest)
		if err != nil {
			return nil, err
		}
		target, err := resolveRef(fc, a)
		if err != nil {
			return nil, err
		}
		index, err := resolveRef(fc, b)
		if err != nil {
			return nil, err
		}
		return ir.NewGetSubValueArray(ids.Next(), target, index), nil

	case "get_sub_pointer_struct":
		a, b, err := splitPair(rest)
		if err != nil {
			return nil, err
		}
		target, err := resolveRef(fc, a)
		if err != nil {
			return nil, err
		}
		index, err := strconv.Atoi(b)
		if err != nil {
			return nil, fmt.Errorf("GetSubPointer.Struct index: %w", err)
		}
		return ir.NewGetSubPointerStruct(ids.Next(), target, index, interner), nil

	case "get_sub_pointer_array":
		a, b, err := splitPair(rest)
		if err != nil {
			return nil, err
		}
		target, err := resolveRef(fc, a)
		if err != nil {
			return nil, err
		}
		index, err := resolveRef(fc, b)
		if err != nil {
			return nil, err
		}
		return ir.NewGetSubPointerArray(ids.Next(), target, index, interner), nil

	case "aggregate_value":
		sc := newScanner(rest)
		t, err := parseType(sc, fc.reg, interner)
		if err != nil {
			return nil, err
		}
		if err := sc.consumeLiteral("["); err != nil {
			return nil, err
		}
		listStr := readBalanced(sc, '[', ']')
		values, err := resolveRefList(fc, listStr)
		if err != nil {
			return nil, err
		}
		return ir.NewAggregateValue(ids.Next(), t, values), nil

	case "jump":
		target, ok := fc.blocksByName[strings.TrimSpace(rest)]
		if !ok {
			return nil, fmt.Errorf("unknown block %q", rest)
		}
		return ir.NewJump(ids.Next(), target), nil

	case "branch":
		parts := splitTopLevel(rest, ',')
		if len(parts) != 3 {
			return nil, fmt.Errorf("Branch: expected 3 operands, got %d", len(parts))
		}
		cond, err := resolveRef(fc, strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, err
		}
		tTrue, ok := fc.blocksByName[strings.TrimSpace(parts[1])]
		if !ok {
			return nil, fmt.Errorf("unknown block %q", parts[1])
		}
		tFalse, ok := fc.blocksByName[strings.TrimSpace(parts[2])]
		if !ok {
			return nil, fmt.Errorf("unknown block %q", parts[2])
		}
		return ir.NewBranch(ids.Next(), cond, tTrue, tFalse), nil

	case "return":
		v, err := resolveRef(fc, strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return ir.NewReturn(ids.Next(), v), nil

	case "exit":
		return ir.NewExit(ids.Next()), nil

	default:
		return nil, fmt.Errorf("unknown instruction keyword %q", kw)
	}
}

func splitPair(s string) (a, b string, err error) {
	parts := splitTopLevel(s, ',')
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected 2 comma-separated operands in %q, got %d", s, len(parts))
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

func splitFirstToken(s string) (tok, rest string) {
	s = strings.TrimSpace(s)
	if sp := strings.IndexByte(s, ' '); sp >= 0 {
		return s[:sp], strings.TrimSpace(s[sp+1:])
	}
	return s, ""
}

func parseBinOp(tok string) (ir.BinOp, error) {
	switch ir.BinOp(tok) {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpLte, ir.OpGt, ir.OpGte:
		return ir.BinOp(tok), nil
	}
	return "", fmt.Errorf("unknown binary operator %q", tok)
}

func parseUnOp(tok string) (ir.UnOp, error) {
	switch ir.UnOp(tok) {
	case ir.OpNeg, ir.OpNot:
		return ir.UnOp(tok), nil
	}
	return "", fmt.Errorf("unknown unary operator %q", tok)
}

func resolveRefList(fc *funcCtx, s string) ([]ir.Node, error) {
	items := splitTopLevel(s, ',')
	out := make([]ir.Node, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		n, err := resolveRef(fc, it)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// resolveRef parses one operand: a %-prefixed parameter or instruction
// reference, an @-prefixed function reference, undef(T), void, or a
// typed literal like i32(10) or bool(true).
func resolveRef(fc *funcCtx, tok string) (ir.Node, error) {
	sc := newScanner(tok)
	switch sc.peek() {
	case '%':
		sc.pos++
		name := sc.readToken()
		if name == "" {
			return nil, fmt.Errorf("malformed value reference %q", tok)
		}
		if isAllDigits(name) {
			n, err := strconv.Atoi(name)
			if err != nil {
				return nil, err
			}
			node, ok := fc.symtab[indexName(n)]
			if !ok {
				return nil, fmt.Errorf("reference to undefined value %%%s", name)
			}
			return node, nil
		}
		node, ok := fc.symtab[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter %%%s", name)
		}
		return node, nil

	case '@':
		sc.pos++
		name := sc.readIdent()
		fn := fc.program.FindFunction(name)
		if fn == nil {
			return nil, fmt.Errorf("unknown function @%s", name)
		}
		return fn, nil

	default:
		ident := sc.readIdent()
		switch ident {
		case "":
			return nil, fmt.Errorf("expected an operand, got %q", tok)
		case "void":
			return ir.NewVoidValue(fc.program.IDs.Next()), nil
		case "undef":
			if err := sc.consumeLiteral("("); err != nil {
				return nil, err
			}
			t, err := parseType(sc, fc.reg, fc.program.Interner)
			if err != nil {
				return nil, err
			}
			if err := sc.consumeLiteral(")"); err != nil {
				return nil, err
			}
			return ir.NewUndefinedValue(fc.program.IDs.Next(), t), nil
		default:
			t, err := resolveNamedType(ident, sc, fc.reg, fc.program.Interner)
			if err != nil {
				return nil, fmt.Errorf("constant: %w", err)
			}
			if err := sc.consumeLiteral("("); err != nil {
				return nil, err
			}
			valTok := readBalanced(sc, '(', ')')
			var value interface{}
			switch {
			case ident == "bool" && valTok == "true":
				value = int64(1)
			case ident == "bool" && valTok == "false":
				value = int64(0)
			default:
				n, perr := strconv.ParseInt(valTok, 10, 64)
				if perr != nil {
					return nil, fmt.Errorf("constant value %q: %w", valTok, perr)
				}
				value = n
			}
			return ir.NewConstant(fc.program.IDs.Next(), t, value), nil
		}
	}
}
