// Package llvm renders a mir.Module as textual LLVM-like IR (§4.6),
// including the runtime forward declarations (§4.7) and function
// attributes the downstream optimizer consumes.
package llvm

import (
	"fmt"
	"strings"

	"github.com/teacompiler/teac/internal/mir"
)

// Generator accumulates emitted text for one module.
type Generator struct {
	module *mir.Module
	sb     strings.Builder
}

func NewGenerator(m *mir.Module) *Generator {
	return &Generator{module: m}
}

// Emit renders the full module: target header, runtime declarations,
// globals, then function bodies, matching the order the driver's
// "declare -> emit" passes produce (§4.6, §2 data flow).
func (g *Generator) Emit() string {
	g.sb.Reset()
	fmt.Fprintf(&g.sb, "; ModuleID = '%s'\n", g.module.Name)
	g.sb.WriteString(tvTypeDecl)
	g.sb.WriteString("\n")

	EmitRuntimeDeclarations(&g.sb)
	g.sb.WriteString("\n")

	for _, glob := range g.module.Globals {
		fmt.Fprintf(&g.sb, "@%s = global %s %s\n", glob.Name, glob.IRType, glob.Value)
	}
	g.sb.WriteString("\n")

	for _, fn := range g.module.Functions {
		g.emitFunction(fn)
	}
	return g.sb.String()
}

const tvTypeDecl = "%tv = type { i32, i32, i64 }\n"

func (g *Generator) emitFunction(fn *mir.Function) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %%%s", p.IRType, p.Name)
	}

	if fn.IsDecl {
		fmt.Fprintf(&g.sb, "declare %s @%s(%s)\n", fn.ReturnIR, fn.Name, strings.Join(params, ", "))
		return
	}

	attrStr := ""
	if len(fn.Attrs) > 0 {
		parts := make([]string, len(fn.Attrs))
		for i, a := range fn.Attrs {
			parts[i] = string(a)
		}
		attrStr = " " + strings.Join(parts, " ")
	}

	fmt.Fprintf(&g.sb, "define %s @%s(%s)%s {\n", fn.ReturnIR, fn.Name, strings.Join(params, ", "), attrStr)
	for _, blk := range fn.Blocks {
		g.emitBlock(blk)
	}
	g.sb.WriteString("}\n\n")
}

func (g *Generator) emitBlock(blk *mir.Block) {
	fmt.Fprintf(&g.sb, "%s:\n", blk.Label)
	for _, instr := range blk.Instrs {
		g.emitInstr(instr)
	}
}

func (g *Generator) emitInstr(i *mir.Instr) {
	g.sb.WriteString("  ")
	switch i.Op {
	case mir.OpAdd:
		g.binop("add", i)
	case mir.OpSub:
		g.binop("sub", i)
	case mir.OpMul:
		g.binop("mul", i)
	case mir.OpSDiv:
		g.binop("sdiv", i)
	case mir.OpSRem:
		g.binop("srem", i)
	case mir.OpFAdd:
		g.binop("fadd", i)
	case mir.OpFSub:
		g.binop("fsub", i)
	case mir.OpFMul:
		g.binop("fmul", i)
	case mir.OpFDiv:
		g.binop("fdiv", i)
	case mir.OpAnd:
		g.binop("and", i)
	case mir.OpOr:
		g.binop("or", i)
	case mir.OpXor:
		g.binop("xor", i)
	case mir.OpICmp:
		fmt.Fprintf(&g.sb, "%s = icmp %s %s %s, %s\n", i.Result, i.Extra, "i64", i.Operands[0].Text(), i.Operands[1].Text())
	case mir.OpFCmp:
		fmt.Fprintf(&g.sb, "%s = fcmp %s %s %s, %s\n", i.Result, i.Extra, "double", i.Operands[0].Text(), i.Operands[1].Text())
	case mir.OpAlloca:
		fmt.Fprintf(&g.sb, "%s = alloca %s\n", i.Result, i.Extra)
	case mir.OpLoad:
		fmt.Fprintf(&g.sb, "%s = load %s, ptr %s\n", i.Result, i.Type, i.Operands[0].Text())
	case mir.OpStore:
		fmt.Fprintf(&g.sb, "store %s %s, ptr %s\n", inferOperandType(i.Operands[0]), i.Operands[0].Text(), i.Operands[1].Text())
	case mir.OpGEP:
		parts := strings.SplitN(i.Extra, ",", 2)
		fmt.Fprintf(&g.sb, "%s = getelementptr %s, ptr %s, i64 %s\n", i.Result, parts[0], i.Operands[0].Text(), parts[1])
	case mir.OpCall:
		args := make([]string, len(i.Operands))
		for j, a := range i.Operands {
			args[j] = fmt.Sprintf("%s %s", inferOperandType(a), a.Text())
		}
		if i.Result == "" {
			fmt.Fprintf(&g.sb, "call void @%s(%s)\n", i.Extra, strings.Join(args, ", "))
		} else {
			fmt.Fprintf(&g.sb, "%s = call %s @%s(%s)\n", i.Result, i.Type, i.Extra, strings.Join(args, ", "))
		}
	case mir.OpPhi:
		incoming := make([]string, len(i.PhiValues))
		for j := range i.PhiValues {
			incoming[j] = fmt.Sprintf("[ %s, %%%s ]", i.PhiValues[j].Text(), i.PhiBlocks[j])
		}
		fmt.Fprintf(&g.sb, "%s = phi %s %s\n", i.Result, i.Type, strings.Join(incoming, ", "))
	case mir.OpBr:
		fmt.Fprintf(&g.sb, "br label %%%s\n", i.Extra)
	case mir.OpCondBr:
		parts := strings.SplitN(i.Extra, ",", 2)
		fmt.Fprintf(&g.sb, "br i1 %s, label %%%s, label %%%s\n", i.Operands[0].Text(), parts[0], parts[1])
	case mir.OpRet:
		fmt.Fprintf(&g.sb, "ret %s %s\n", inferOperandType(i.Operands[0]), i.Operands[0].Text())
	case mir.OpRetVoid:
		g.sb.WriteString("ret void\n")
	case mir.OpUnreachable:
		g.sb.WriteString("unreachable\n")
	case mir.OpBox:
		fmt.Fprintf(&g.sb, "%s = call %%tv @tea_box_%s(%s %s)\n", i.Result, strings.ToLower(i.Extra), inferOperandType(i.Operands[0]), i.Operands[0].Text())
	case mir.OpUnbox:
		fmt.Fprintf(&g.sb, "%s = call %s @tea_unbox_%s(ptr %s)\n", i.Result, i.Type, sanitizeTypeName(i.Extra), i.Operands[0].Text())
	case mir.OpZeroValue:
		g.zeroValue(i)
	case mir.OpNilOptional:
		fmt.Fprintf(&g.sb, "%s = call %%tv @tea_nil_optional()\n", i.Result)
	case mir.OpThrowSet:
		fmt.Fprintf(&g.sb, "call void @tea_error_set_current(ptr %s)\n", i.Operands[0].Text())
	case mir.OpCheckErrorSlot:
		fmt.Fprintf(&g.sb, "%s = call i1 @tea_error_current()\n", i.Result)
	case mir.OpErrorTemplateEq:
		fmt.Fprintf(&g.sb, "%s = call i1 @tea_error_template_eq(ptr %s)\n", i.Result, i.Extra)
	case mir.OpClearErrorSlot:
		g.sb.WriteString("call void @tea_error_clear_current()\n")
	default:
		fmt.Fprintf(&g.sb, "; unhandled op %d\n", i.Op)
	}
	if i.LoopMetadata != "" {
		g.sb.WriteString("  " + i.LoopMetadata + "\n")
	}
}

func (g *Generator) binop(mnemonic string, i *mir.Instr) {
	fmt.Fprintf(&g.sb, "%s = %s %s %s, %s\n", i.Result, mnemonic, i.Type, i.Operands[0].Text(), i.Operands[1].Text())
}

// zeroValue emits an actual zero constant of the instruction's IR type
// (§4.2 zero_value), the value every Propagate-mode error return and
// every throw outside a try block feeds into its function's ret.
func (g *Generator) zeroValue(i *mir.Instr) {
	switch i.Type {
	case "double":
		fmt.Fprintf(&g.sb, "%s = fadd double 0.0, 0.0\n", i.Result)
	case "ptr":
		fmt.Fprintf(&g.sb, "%s = bitcast ptr null to ptr\n", i.Result)
	default:
		fmt.Fprintf(&g.sb, "%s = add %s 0, 0\n", i.Result, i.Type)
	}
}

func inferOperandType(v mir.Value) string {
	if v.IRType != "" {
		return v.IRType
	}
	return "i64"
}

func sanitizeTypeName(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, s)
}
