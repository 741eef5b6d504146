// Package mir defines the SSA-form intermediate representation the
// Expression/Statement Lowerer (§4.4, §4.5) builds and that
// internal/codegen/llvm renders as textual IR (§4.6).
package mir

import "github.com/teacompiler/teac/internal/types"

// Value is a reference to an SSA value: either a virtual register name
// (e.g. "%t3") or a literal IR constant text (e.g. "5"; the type is held
// in IRType).
type Value struct {
	Name    string // "%t3" for instructions, "" for raw constants
	Literal string // used verbatim when Name == ""
	Type    types.ValueType
	IRType  string // low-level IR type string (i64, double, i1, ptr, ...)
}

func (v Value) Text() string {
	if v.Name != "" {
		return v.Name
	}
	return v.Literal
}

// Op identifies an instruction kind.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpSDiv
	OpSRem
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpICmp
	OpFCmp
	OpAnd
	OpOr
	OpXor
	OpAlloca
	OpLoad
	OpStore
	OpGEP
	OpCall
	OpPhi
	OpBitCast
	OpPtrToInt
	OpIntToPtr
	OpSIToFP
	OpBr
	OpCondBr
	OpRet
	OpRetVoid
	OpUnreachable
	OpExtractValue
	OpInsertValue

	// Domain-specific ops the lowerer emits directly rather than via raw
	// LLVM primitives, so internal/codegen/llvm can pattern-match them
	// into the correct runtime call sequence (§4.2, §4.7).
	OpBox
	OpUnbox
	OpZeroValue
	OpNilOptional
	OpThrowSet
	OpCheckErrorSlot
	OpErrorTemplateEq
	OpClearErrorSlot
)

// Instr is one SSA instruction.
type Instr struct {
	Op       Op
	Result   string // "" for instructions with no result (store, br, ret)
	Type     string // IR result type
	Operands []Value
	Extra    string // predicate (icmp), field index (gep), callee name, etc.

	// Phi incoming edges: parallel slices of (value, predecessor block).
	PhiValues []Value
	PhiBlocks []string

	// Metadata attached for the downstream optimizer (§4.4.2 loop hints).
	LoopMetadata string
}

// Block is one basic block within a function.
type Block struct {
	Label  string
	Instrs []*Instr
}

// Param is a function parameter as seen by the IR.
type Param struct {
	Name   string
	IRType string
}

// Attr are function-level hint attributes (§4.6).
type Attr string

const (
	AttrWillReturn    Attr = "willreturn"
	AttrNoSync        Attr = "nosync"
	AttrNoFree        Attr = "nofree"
	AttrNoUnwind      Attr = "nounwind"
	AttrAlwaysInline  Attr = "alwaysinline"
)

// Function is one emitted IR function.
type Function struct {
	Name       string
	Params     []Param
	ReturnIR   string
	Blocks     []*Block
	Attrs      []Attr
	IsDecl     bool // true for external runtime declarations (no body)
}

// GlobalConst is a module-level read-only constant (struct/error templates,
// string literal backing arrays, §3.3).
type GlobalConst struct {
	Name  string
	IRType string
	Value string
}

// Module is the whole compilation unit's IR (§2 data flow: "module
// verified" is the final state before optimizer invocation).
type Module struct {
	Name      string
	Functions []*Function
	Globals   []*GlobalConst
}

func NewModule(name string) *Module { return &Module{Name: name} }

func (m *Module) AddFunction(f *Function) { m.Functions = append(m.Functions, f) }
func (m *Module) AddGlobal(g *GlobalConst) { m.Globals = append(m.Globals, g) }
