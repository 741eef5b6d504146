package mir

import (
	"fmt"

	"github.com/teacompiler/teac/internal/types"
)

// Builder constructs one Function's blocks and instructions, tracking SSA
// register naming and the current insertion block. One Builder exists per
// function body being lowered (§4.6 "enter a new function context").
type Builder struct {
	Func     *Function
	cur      *Block
	regSeq   int
	blockSeq int
}

func NewBuilder(name string, params []Param, returnIR string) *Builder {
	f := &Function{Name: name, Params: params, ReturnIR: returnIR}
	b := &Builder{Func: f}
	entry := b.NewBlock("entry")
	b.SetBlock(entry)
	return b
}

// NewBlock creates (but does not switch into) a new block with a unique
// label derived from the given hint.
func (b *Builder) NewBlock(hint string) *Block {
	b.blockSeq++
	blk := &Block{Label: fmt.Sprintf("%s.%d", hint, b.blockSeq)}
	b.Func.Blocks = append(b.Func.Blocks, blk)
	return blk
}

func (b *Builder) SetBlock(blk *Block) { b.cur = blk }
func (b *Builder) CurrentBlock() *Block { return b.cur }

func (b *Builder) reg() string {
	b.regSeq++
	return fmt.Sprintf("%%t%d", b.regSeq)
}

// Terminated reports whether the current block already ends in a
// terminator instruction (br/condbr/ret/unreachable), so callers can
// avoid emitting unreachable code after an early return (§4.5 "if both
// branches terminate, the merge block emits unreachable").
func (b *Builder) Terminated() bool {
	if b.cur == nil || len(b.cur.Instrs) == 0 {
		return false
	}
	switch b.cur.Instrs[len(b.cur.Instrs)-1].Op {
	case OpBr, OpCondBr, OpRet, OpRetVoid, OpUnreachable:
		return true
	default:
		return false
	}
}

func (b *Builder) emit(i *Instr) Value {
	b.cur.Instrs = append(b.cur.Instrs, i)
	if i.Result == "" {
		return Value{}
	}
	return Value{Name: i.Result, IRType: i.Type}
}

func irIntType() string { return "i64" }

// IRTypeOf returns the low-level IR type string for a ValueType: Int,
// Float and Bool map to the unboxed scalars i64, double and i1 (§4.2);
// every other ValueType is handled through a pointer ("ptr").
func IRTypeOf(t types.ValueType) string {
	switch t.Kind {
	case types.Int:
		return "i64"
	case types.Float:
		return "double"
	case types.Bool:
		return "i1"
	default:
		return "ptr"
	}
}

func (b *Builder) BinOp(op Op, lhs, rhs Value, resultType string) Value {
	r := b.reg()
	return b.emit(&Instr{Op: op, Result: r, Type: resultType, Operands: []Value{lhs, rhs}})
}

func (b *Builder) ICmp(pred string, lhs, rhs Value) Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpICmp, Result: r, Type: "i1", Operands: []Value{lhs, rhs}, Extra: pred})
}

func (b *Builder) FCmp(pred string, lhs, rhs Value) Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpFCmp, Result: r, Type: "i1", Operands: []Value{lhs, rhs}, Extra: pred})
}

func (b *Builder) Alloca(irType string) Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpAlloca, Result: r, Type: "ptr", Extra: irType})
}

func (b *Builder) Load(irType string, ptr Value) Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpLoad, Result: r, Type: irType, Operands: []Value{ptr}})
}

func (b *Builder) Store(val, ptr Value) {
	b.emit(&Instr{Op: OpStore, Operands: []Value{val, ptr}})
}

func (b *Builder) GEP(baseType string, base Value, index int) Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpGEP, Result: r, Type: "ptr", Operands: []Value{base}, Extra: fmt.Sprintf("%s,%d", baseType, index)})
}

func (b *Builder) Call(callee string, resultType string, args ...Value) Value {
	var result string
	if resultType != "void" {
		result = b.reg()
	}
	return b.emit(&Instr{Op: OpCall, Result: result, Type: resultType, Operands: args, Extra: callee})
}

func (b *Builder) Phi(irType string) *Instr {
	r := b.reg()
	instr := &Instr{Op: OpPhi, Result: r, Type: irType}
	b.cur.Instrs = append(b.cur.Instrs, instr)
	return instr
}

// PhiValue exposes the SSA value produced by a not-yet-closed phi, so
// callers can reference it before AddIncoming completes.
func PhiValue(i *Instr) Value { return Value{Name: i.Result, IRType: i.Type} }

func (b *Builder) AddIncoming(phi *Instr, val Value, block string) {
	phi.PhiValues = append(phi.PhiValues, val)
	phi.PhiBlocks = append(phi.PhiBlocks, block)
}

func (b *Builder) Br(target *Block) {
	b.emit(&Instr{Op: OpBr, Extra: target.Label})
}

func (b *Builder) CondBr(cond Value, thenBlock, elseBlock *Block) {
	b.emit(&Instr{Op: OpCondBr, Operands: []Value{cond}, Extra: thenBlock.Label + "," + elseBlock.Label})
}

func (b *Builder) Ret(val Value) {
	b.emit(&Instr{Op: OpRet, Operands: []Value{val}})
}

func (b *Builder) RetVoid() {
	b.emit(&Instr{Op: OpRetVoid})
}

func (b *Builder) Unreachable() {
	b.emit(&Instr{Op: OpUnreachable})
}

func (b *Builder) Box(tag string, val Value) Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpBox, Result: r, Type: "%tv", Operands: []Value{val}, Extra: tag})
}

func (b *Builder) Unbox(expected types.ValueType, tagged Value) Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpUnbox, Result: r, Type: IRTypeOf(expected), Operands: []Value{tagged}, Extra: expected.String()})
}

func (b *Builder) ZeroValue(t types.ValueType) Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpZeroValue, Result: r, Type: IRTypeOf(t), Extra: t.String()})
}

func (b *Builder) NilOptional() Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpNilOptional, Result: r, Type: "%tv"})
}

func (b *Builder) ThrowSet(errVal Value) {
	b.emit(&Instr{Op: OpThrowSet, Operands: []Value{errVal}})
}

// CheckErrorSlot emits the post-call check described in §4.5.2: returns a
// boolean SSA value that is true when the thread-local error slot is set.
func (b *Builder) CheckErrorSlot() Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpCheckErrorSlot, Result: r, Type: "i1"})
}

func (b *Builder) ErrorTemplateEq(templateIR string) Value {
	r := b.reg()
	return b.emit(&Instr{Op: OpErrorTemplateEq, Result: r, Type: "i1", Extra: templateIR})
}

func (b *Builder) ClearErrorSlot() {
	b.emit(&Instr{Op: OpClearErrorSlot})
}

func (b *Builder) SetLoopMetadata(meta string) {
	if len(b.cur.Instrs) == 0 {
		return
	}
	b.cur.Instrs[len(b.cur.Instrs)-1].LoopMetadata = meta
}
