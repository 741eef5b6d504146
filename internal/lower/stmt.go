package lower

import (
	"github.com/teacompiler/teac/internal/ast"
	"github.com/teacompiler/teac/internal/mir"
	"github.com/teacompiler/teac/internal/types"
)

// lowerStmt dispatches on statement kind (§4.5).
func (l *Lowerer) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		l.lowerLetStmt(n)
	case *ast.ExprStmt:
		l.lowerExpr(n.Expr)
	case *ast.ReturnStmt:
		l.lowerReturnStmt(n)
	case *ast.ThrowStmt:
		l.lowerThrowStmt(n)
	case *ast.WhileStmt:
		l.lowerWhileStmt(n)
	case *ast.ForStmt:
		l.lowerForStmt(n)
	case *ast.BreakStmt:
		l.lowerBreakStmt()
	case *ast.ContinueStmt:
		l.lowerContinueStmt()
	case *ast.IfStmt:
		l.lowerIfStmt(n)
	}
}

// lowerLetStmt binds a var: mutable bindings get a stack slot (so a
// subsequent loop can convert them to phi-carried values), immutable
// bindings stay the bare SSA value (§3.5, §4.5).
func (l *Lowerer) lowerLetStmt(n *ast.LetStmt) {
	ev := l.lowerExpr(n.Value)
	l.localTypes[n.Name.Name] = ev.Typ
	if l.mutable[n.Name.Name] {
		slot := l.b.Alloca(mir.IRTypeOf(ev.Typ))
		l.b.Store(ev.Val, slot)
		l.locals[n.Name.Name] = slot
	} else {
		l.locals[n.Name.Name] = ev.Val
	}
}

func (l *Lowerer) lowerReturnStmt(n *ast.ReturnStmt) {
	if l.canThrow {
		l.b.ClearErrorSlot()
	}
	if n.Value == nil {
		l.b.RetVoid()
		return
	}
	ev := l.lowerExpr(n.Value)
	l.b.Ret(ev.Val)
}

// lowerThrowStmt implements §4.5/§4.5.2: in Propagate mode the error
// slot is set and the function returns immediately (mirroring an early
// return); in Capture mode only the slot is set and control falls
// through to the enclosing try's post-call check.
func (l *Lowerer) lowerThrowStmt(n *ast.ThrowStmt) {
	ev := l.lowerExpr(n.Value)
	l.b.ThrowSet(ev.Val)
	if l.currentMode() == ModePropagate {
		if l.returnType.Kind == types.Void {
			l.b.RetVoid()
		} else {
			l.b.Ret(l.b.ZeroValue(l.returnType))
		}
	}
}

func (l *Lowerer) lowerIfStmt(n *ast.IfStmt) {
	joinBlock := l.b.NewBlock("ifstmt.join")
	var emitClause func(idx int)
	emitClause = func(idx int) {
		if idx >= len(n.Clauses) {
			if n.Else != nil {
				l.lowerBlock(n.Else)
			}
			if !l.b.Terminated() {
				l.b.Br(joinBlock)
			}
			return
		}
		clause := n.Clauses[idx]
		cond := l.lowerExpr(clause.Condition)
		thenBlock := l.b.NewBlock("ifstmt.then")
		elseBlock := l.b.NewBlock("ifstmt.else")
		l.b.CondBr(cond.Val, thenBlock, elseBlock)

		l.b.SetBlock(thenBlock)
		l.lowerBlock(clause.Body)
		if !l.b.Terminated() {
			l.b.Br(joinBlock)
		}

		l.b.SetBlock(elseBlock)
		emitClause(idx + 1)
	}
	emitClause(0)
	l.b.SetBlock(joinBlock)
}

func (l *Lowerer) lowerBreakStmt() {
	if len(l.loops) == 0 {
		return
	}
	l.b.Br(l.loops[len(l.loops)-1].exitBlock)
}

func (l *Lowerer) lowerContinueStmt() {
	if len(l.loops) == 0 {
		return
	}
	l.b.Br(l.loops[len(l.loops)-1].continueBlock)
}

// lowerWhileStmt implements the §4.5.1 while-loop phi construction: every
// loop-carried mutable name gets a header phi seeded from the preheader
// value, updated from the latch value, and the stack slot is rebound to
// the phi for the duration of the body so nested reads observe it.
func (l *Lowerer) lowerWhileStmt(n *ast.WhileStmt) {
	carried := l.loopCarriedNames(n.Body)

	// Load every carried value in the preheader, before its terminator,
	// so the header phi has a well-formed incoming edge.
	preheaderVals := map[string]mir.Value{}
	for _, name := range carried {
		preheaderVals[name] = l.loadCarried(name)
	}
	preheaderLabel := l.b.CurrentBlock().Label

	headerBlock := l.b.NewBlock("while.header")
	bodyBlock := l.b.NewBlock("while.body")
	exitBlock := l.b.NewBlock("while.exit")

	l.b.Br(headerBlock)
	l.b.SetBlock(headerBlock)

	phis := map[string]*mir.Instr{}
	for _, name := range carried {
		phi := l.b.Phi(mir.IRTypeOf(l.localTypes[name]))
		l.b.AddIncoming(phi, preheaderVals[name], preheaderLabel)
		phis[name] = phi
		l.locals[name] = mir.PhiValue(phi)
		// The body reads/writes the phi value directly; no alloca
		// round-trip while inside the loop (§4.5.1).
		l.mutable[name] = false
	}

	cond := l.lowerExpr(n.Condition)
	l.b.CondBr(cond.Val, bodyBlock, exitBlock)

	l.b.SetBlock(bodyBlock)
	l.loops = append(l.loops, loopCtx{exitBlock: exitBlock, continueBlock: headerBlock})
	l.lowerBlock(n.Body)
	l.loops = l.loops[:len(l.loops)-1]
	if !l.b.Terminated() {
		latchLabel := l.b.CurrentBlock().Label
		for _, name := range carried {
			l.b.AddIncoming(phis[name], l.locals[name], latchLabel)
		}
		l.b.Br(headerBlock)
	}

	l.b.SetBlock(exitBlock)
	for _, name := range carried {
		l.locals[name] = mir.PhiValue(phis[name])
	}
}

// lowerForStmt implements §4.5.1's for-loop lowering: the iterable is
// evaluated once in the preheader, an index/cursor phi drives iteration,
// and (per §9) any mutable binding assigned inside the body is converted
// to a stack slot before entering the body so the loop body's stores are
// visible across iterations without additional phi plumbing.
func (l *Lowerer) lowerForStmt(n *ast.ForStmt) {
	iterable := l.lowerExpr(n.Iterable)
	isDict := iterable.Typ.Kind == types.Dict

	sequence := iterable.Val
	if isDict {
		sequence = l.b.Call("tea_dict_keys", "ptr", iterable.Val)
	}

	carried := l.loopCarriedNames(n.Body)
	for _, name := range carried {
		if l.mutable[name] {
			continue // already a stack slot
		}
		cur := l.locals[name]
		slot := l.b.Alloca(mir.IRTypeOf(l.localTypes[name]))
		l.b.Store(cur, slot)
		l.locals[name] = slot
		l.mutable[name] = true
	}

	lenVal := l.b.Call("tea_list_len", "i64", sequence)
	preheaderLabel := l.b.CurrentBlock().Label

	headerBlock := l.b.NewBlock("for.header")
	bodyBlock := l.b.NewBlock("for.body")
	latchBlock := l.b.NewBlock("for.latch")
	exitBlock := l.b.NewBlock("for.exit")

	l.b.Br(headerBlock)
	l.b.SetBlock(headerBlock)
	idxPhi := l.b.Phi("i64")
	l.b.AddIncoming(idxPhi, mir.Value{Literal: "0", IRType: "i64"}, preheaderLabel)
	idx := mir.PhiValue(idxPhi)
	cond := l.b.ICmp("slt", idx, lenVal)
	l.b.CondBr(cond, bodyBlock, exitBlock)

	l.b.SetBlock(bodyBlock)
	elem := l.b.Call("tea_list_get", "ptr", sequence, idx)
	if isDict {
		if n.KeyName != nil {
			l.localTypes[n.KeyName.Name] = types.StringType()
			l.locals[n.KeyName.Name] = elem
		}
		if n.ValueName != nil {
			val := l.b.Call("tea_dict_get", "ptr", iterable.Val, elem)
			l.localTypes[n.ValueName.Name] = *iterable.Typ.Value
			l.locals[n.ValueName.Name] = val
		}
	} else if n.ValueName != nil {
		elemType := types.VoidType()
		if iterable.Typ.Kind == types.List {
			elemType = *iterable.Typ.Elem
		}
		l.localTypes[n.ValueName.Name] = elemType
		l.locals[n.ValueName.Name] = elem
	}
	l.loops = append(l.loops, loopCtx{exitBlock: exitBlock, continueBlock: latchBlock})
	l.lowerBlock(n.Body)
	l.loops = l.loops[:len(l.loops)-1]
	if !l.b.Terminated() {
		l.b.Br(latchBlock)
	}

	l.b.SetBlock(latchBlock)
	next := l.b.BinOp(mir.OpAdd, idx, mir.Value{Literal: "1", IRType: "i64"}, "i64")
	l.b.AddIncoming(idxPhi, next, latchBlock.Label)
	l.b.Br(headerBlock)

	l.b.SetBlock(exitBlock)
}

// loopCarriedNames returns every mutable name assigned inside a loop body,
// which must participate in the header phi (while) or be promoted to a
// stack slot beforehand (for) per §4.5.1.
func (l *Lowerer) loopCarriedNames(body *ast.BlockExpr) []string {
	all := map[string]bool{}
	for name := range l.mutable {
		all[name] = true
	}
	mutatedHere := scanMutated(body, all)
	names := make([]string, 0, len(mutatedHere))
	for name := range mutatedHere {
		if _, known := l.localTypes[name]; known {
			names = append(names, name)
		}
	}
	return names
}

func (l *Lowerer) loadCarried(name string) mir.Value {
	val := l.locals[name]
	if l.mutable[name] {
		return l.b.Load(mir.IRTypeOf(l.localTypes[name]), val)
	}
	return val
}
