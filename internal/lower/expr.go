package lower

import (
	"fmt"

	"github.com/teacompiler/teac/internal/ast"
	"github.com/teacompiler/teac/internal/mir"
	"github.com/teacompiler/teac/internal/types"
)

// ExprValue is the result of lowering one expression: its IR value plus
// the ValueType it carries (§4.4).
type ExprValue struct {
	Val mir.Value
	Typ types.ValueType
}

func (l *Lowerer) bindingType(key types.CallSiteKey) (types.ValueType, bool) {
	t, ok := l.Tables.BindingTypes[key]
	return t, ok
}

// lowerExpr dispatches on expression kind (§4.4).
func (l *Lowerer) lowerExpr(e ast.Expr) ExprValue {
	switch n := e.(type) {
	case *ast.IntegerLit:
		return ExprValue{Val: mir.Value{Literal: n.Text, IRType: "i64"}, Typ: types.IntType()}
	case *ast.FloatLit:
		return ExprValue{Val: mir.Value{Literal: n.Text, IRType: "double"}, Typ: types.FloatType()}
	case *ast.BoolLit:
		lit := "0"
		if n.Value {
			lit = "1"
		}
		return ExprValue{Val: mir.Value{Literal: lit, IRType: "i1"}, Typ: types.BoolType()}
	case *ast.NilLit:
		return ExprValue{Val: l.b.NilOptional(), Typ: types.OptionalType(types.VoidType())}
	case *ast.StringLit:
		return l.lowerStringLiteral(n.Value)
	case *ast.InterpStringLit:
		return l.lowerInterpString(n)
	case *ast.Ident:
		return l.lowerIdent(n)
	case *ast.PrefixExpr:
		return l.lowerPrefix(n)
	case *ast.UnwrapExpr:
		return l.lowerUnwrap(n)
	case *ast.InfixExpr:
		return l.lowerInfix(n)
	case *ast.AssignExpr:
		return l.lowerAssign(n)
	case *ast.CallExpr:
		return l.lowerCall(n)
	case *ast.IndexExpr:
		return l.lowerIndex(n)
	case *ast.FieldExpr:
		return l.lowerField(n)
	case *ast.FunctionLiteral:
		return l.lowerLambda(n)
	case *ast.StructLiteral:
		return l.lowerStructLiteral(n)
	case *ast.IfExpr:
		return l.lowerIfExpr(n)
	case *ast.TryExpr:
		return l.lowerTryExpr(n)
	case *ast.ArrayLiteral:
		return l.lowerArrayLiteral(n)
	case *ast.MapLiteral:
		return l.lowerMapLiteral(n)
	case *ast.MatchExpr:
		l.reject("match", "match expressions are not supported by this backend; use if/else-if chains")
		return ExprValue{Val: l.b.ZeroValue(types.VoidType()), Typ: types.VoidType()}
	default:
		return ExprValue{Val: l.b.ZeroValue(types.VoidType()), Typ: types.VoidType()}
	}
}

func (l *Lowerer) lowerStringLiteral(s string) ExprValue {
	v := l.b.Call("tea_alloc_string", "ptr", mir.Value{Literal: fmt.Sprintf("@.str.%d", len(s)), IRType: "ptr"}, mir.Value{Literal: fmt.Sprintf("%d", len(s)), IRType: "i64"})
	return ExprValue{Val: v, Typ: types.StringType()}
}

// lowerInterpString evaluates each segment left-to-right, boxes non-string
// segments via tea_to_string, and concatenates (§4.4). An empty
// interpolated string still lowers to a single allocated empty string
// (§8 boundary behavior).
func (l *Lowerer) lowerInterpString(n *ast.InterpStringLit) ExprValue {
	if len(n.Segments) == 0 {
		return l.lowerStringLiteral("")
	}
	var acc mir.Value
	first := true
	for _, seg := range n.Segments {
		var part mir.Value
		if seg.Expr == nil {
			part = l.lowerStringLiteral(seg.Literal).Val
		} else {
			ev := l.lowerExpr(seg.Expr)
			if ev.Typ.Kind == types.String {
				part = ev.Val
			} else {
				part = l.b.Call("tea_to_string", "ptr", ev.Val)
			}
		}
		if first {
			acc = part
			first = false
		} else {
			acc = l.b.Call("tea_string_concat", "ptr", acc, part)
		}
	}
	return ExprValue{Val: acc, Typ: types.StringType()}
}

func (l *Lowerer) lowerIdent(n *ast.Ident) ExprValue {
	typ := l.localTypes[n.Name]
	if val, ok := l.locals[n.Name]; ok {
		if l.mutable[n.Name] {
			loaded := l.b.Load(mir.IRTypeOf(typ), val)
			return ExprValue{Val: loaded, Typ: typ}
		}
		return ExprValue{Val: val, Typ: typ}
	}
	if g, ok := l.Symbols.Global(n.Name); ok {
		loaded := l.b.Load(mir.IRTypeOf(g.Type), mir.Value{Literal: g.IRPointer, IRType: "ptr"})
		return ExprValue{Val: loaded, Typ: g.Type}
	}
	// Unresolved name: the checker already reported this (§7); the
	// lowerer degrades to a zero value so emission can continue.
	return ExprValue{Val: l.b.ZeroValue(types.VoidType()), Typ: types.VoidType()}
}

func (l *Lowerer) lowerPrefix(n *ast.PrefixExpr) ExprValue {
	operand := l.lowerExpr(n.Expr)
	switch n.Op {
	case "-":
		if operand.Typ.Kind == types.Float {
			zero := mir.Value{Literal: "0.0", IRType: "double"}
			return ExprValue{Val: l.b.BinOp(mir.OpFSub, zero, operand.Val, "double"), Typ: types.FloatType()}
		}
		zero := mir.Value{Literal: "0", IRType: "i64"}
		return ExprValue{Val: l.b.BinOp(mir.OpSub, zero, operand.Val, "i64"), Typ: types.IntType()}
	case "!":
		one := mir.Value{Literal: "1", IRType: "i1"}
		return ExprValue{Val: l.b.BinOp(mir.OpXor, operand.Val, one, "i1"), Typ: types.BoolType()}
	default:
		return operand
	}
}

// lowerUnwrap implements §4.4's postfix `!`: branch on nil, abort via
// tea_unwrap_failed (terminal, §7), otherwise extract the inner value.
func (l *Lowerer) lowerUnwrap(n *ast.UnwrapExpr) ExprValue {
	operand := l.lowerExpr(n.Expr)
	innerType := operand.Typ
	if operand.Typ.Kind == types.Optional {
		innerType = *operand.Typ.Elem
	}

	isNil := l.b.ICmp("eq", operand.Val, mir.Value{Literal: "9", IRType: "i64"}) // TagNil
	failBlock := l.b.NewBlock("unwrap.fail")
	okBlock := l.b.NewBlock("unwrap.ok")
	l.b.CondBr(isNil, failBlock, okBlock)

	l.b.SetBlock(failBlock)
	l.b.Call("tea_unwrap_failed", "void", mir.Value{Literal: "@.unwrap_msg", IRType: "ptr"})
	l.b.Unreachable()

	l.b.SetBlock(okBlock)
	unboxed := l.b.Unbox(innerType, operand.Val)
	return ExprValue{Val: unboxed, Typ: innerType}
}

func (l *Lowerer) lowerInfix(n *ast.InfixExpr) ExprValue {
	switch n.Op {
	case "and":
		return l.lowerShortCircuit(n, true)
	case "or":
		return l.lowerShortCircuit(n, false)
	case "??":
		return l.lowerCoalesce(n)
	}

	left := l.lowerExpr(n.Left)
	right := l.lowerExpr(n.Right)

	if n.Op == "==" || n.Op == "!=" {
		return l.lowerEquality(string(n.Op), left, right)
	}

	isFloat := left.Typ.Kind == types.Float || right.Typ.Kind == types.Float
	switch n.Op {
	case "+":
		if left.Typ.Kind == types.String {
			return ExprValue{Val: l.b.Call("tea_string_concat", "ptr", left.Val, right.Val), Typ: types.StringType()}
		}
		if left.Typ.Kind == types.List {
			return ExprValue{Val: l.b.Call("tea_list_concat", "ptr", left.Val, right.Val), Typ: left.Typ}
		}
		if isFloat {
			return ExprValue{Val: l.b.BinOp(mir.OpFAdd, left.Val, right.Val, "double"), Typ: types.FloatType()}
		}
		return ExprValue{Val: l.b.BinOp(mir.OpAdd, left.Val, right.Val, "i64"), Typ: types.IntType()}
	case "-":
		if isFloat {
			return ExprValue{Val: l.b.BinOp(mir.OpFSub, left.Val, right.Val, "double"), Typ: types.FloatType()}
		}
		return ExprValue{Val: l.b.BinOp(mir.OpSub, left.Val, right.Val, "i64"), Typ: types.IntType()}
	case "*":
		if isFloat {
			return ExprValue{Val: l.b.BinOp(mir.OpFMul, left.Val, right.Val, "double"), Typ: types.FloatType()}
		}
		return ExprValue{Val: l.b.BinOp(mir.OpMul, left.Val, right.Val, "i64"), Typ: types.IntType()}
	case "/":
		if isFloat {
			return ExprValue{Val: l.b.BinOp(mir.OpFDiv, left.Val, right.Val, "double"), Typ: types.FloatType()}
		}
		return ExprValue{Val: l.b.BinOp(mir.OpSDiv, left.Val, right.Val, "i64"), Typ: types.IntType()}
	case "%":
		return ExprValue{Val: l.b.BinOp(mir.OpSRem, left.Val, right.Val, "i64"), Typ: types.IntType()}
	case "<", ">", "<=", ">=":
		pred := map[string]string{"<": "slt", ">": "sgt", "<=": "sle", ">=": "sge"}[string(n.Op)]
		if isFloat {
			fpred := map[string]string{"<": "olt", ">": "ogt", "<=": "ole", ">=": "oge"}[string(n.Op)]
			return ExprValue{Val: l.b.FCmp(fpred, left.Val, right.Val), Typ: types.BoolType()}
		}
		return ExprValue{Val: l.b.ICmp(pred, left.Val, right.Val), Typ: types.BoolType()}
	default:
		return left
	}
}

// lowerEquality dispatches to the runtime per-type equality helpers
// (§4.4); Optional equality has the three defined cases.
func (l *Lowerer) lowerEquality(op string, left, right ExprValue) ExprValue {
	var eq mir.Value
	switch left.Typ.Kind {
	case types.String:
		eq = l.b.Call("tea_string_equal", "i1", left.Val, right.Val)
	case types.List:
		eq = l.b.Call("tea_list_equal", "i1", left.Val, right.Val)
	case types.Struct:
		eq = l.b.Call("tea_struct_equal", "i1", left.Val, right.Val)
	case types.Dict:
		eq = l.b.Call("tea_dict_equal", "i1", left.Val, right.Val)
	case types.Function:
		eq = l.b.Call("tea_closure_equal", "i1", left.Val, right.Val)
	case types.Float:
		eq = l.b.FCmp("oeq", left.Val, right.Val)
	default:
		eq = l.b.ICmp("eq", left.Val, right.Val)
	}
	if op == "!=" {
		eq = l.b.BinOp(mir.OpXor, eq, mir.Value{Literal: "1", IRType: "i1"}, "i1")
	}
	return ExprValue{Val: eq, Typ: types.BoolType()}
}

// lowerShortCircuit implements `and`/`or` via a basic-block split joined
// by a phi (§4.4).
func (l *Lowerer) lowerShortCircuit(n *ast.InfixExpr, isAnd bool) ExprValue {
	left := l.lowerExpr(n.Left)
	rhsBlock := l.b.NewBlock("shortcircuit.rhs")
	joinBlock := l.b.NewBlock("shortcircuit.join")

	shortCircuitBlockLabel := l.b.CurrentBlock().Label
	if isAnd {
		l.b.CondBr(left.Val, rhsBlock, joinBlock)
	} else {
		l.b.CondBr(left.Val, joinBlock, rhsBlock)
	}

	l.b.SetBlock(rhsBlock)
	right := l.lowerExpr(n.Right)
	rhsEndLabel := l.b.CurrentBlock().Label
	l.b.Br(joinBlock)

	l.b.SetBlock(joinBlock)
	phi := l.b.Phi("i1")
	l.b.AddIncoming(phi, left.Val, shortCircuitBlockLabel)
	l.b.AddIncoming(phi, right.Val, rhsEndLabel)
	return ExprValue{Val: mir.PhiValue(phi), Typ: types.BoolType()}
}

// lowerCoalesce implements `??` (§4.4).
func (l *Lowerer) lowerCoalesce(n *ast.InfixExpr) ExprValue {
	left := l.lowerExpr(n.Left)
	innerType := left.Typ
	if left.Typ.Kind == types.Optional {
		innerType = *left.Typ.Elem
	}
	isNil := l.b.ICmp("eq", left.Val, mir.Value{Literal: "9", IRType: "i64"})
	rhsBlock := l.b.NewBlock("coalesce.rhs")
	lhsBlock := l.b.NewBlock("coalesce.lhs")
	joinBlock := l.b.NewBlock("coalesce.join")
	l.b.CondBr(isNil, rhsBlock, lhsBlock)

	l.b.SetBlock(lhsBlock)
	lhsVal := l.b.Unbox(innerType, left.Val)
	l.b.Br(joinBlock)
	lhsEnd := l.b.CurrentBlock().Label

	l.b.SetBlock(rhsBlock)
	right := l.lowerExpr(n.Right)
	rhsEnd := l.b.CurrentBlock().Label
	l.b.Br(joinBlock)

	l.b.SetBlock(joinBlock)
	phi := l.b.Phi(mir.IRTypeOf(innerType))
	l.b.AddIncoming(phi, lhsVal, lhsEnd)
	l.b.AddIncoming(phi, right.Val, rhsEnd)
	return ExprValue{Val: mir.PhiValue(phi), Typ: innerType}
}

func (l *Lowerer) lowerArrayLiteral(n *ast.ArrayLiteral) ExprValue {
	elemType := types.VoidType()
	list := l.b.Call("tea_alloc_list", "ptr", mir.Value{Literal: fmt.Sprintf("%d", len(n.Elements)), IRType: "i64"})
	for i, el := range n.Elements {
		ev := l.lowerExpr(el)
		if i == 0 {
			elemType = ev.Typ
		}
		l.b.Call("tea_list_set", "void", list, mir.Value{Literal: fmt.Sprintf("%d", i), IRType: "i64"}, ev.Val)
	}
	return ExprValue{Val: list, Typ: types.ListType(elemType)}
}

func (l *Lowerer) lowerMapLiteral(n *ast.MapLiteral) ExprValue {
	valType := types.VoidType()
	dict := l.b.Call("tea_dict_new", "ptr")
	for i, entry := range n.Entries {
		k := l.lowerExpr(entry.Key)
		v := l.lowerExpr(entry.Value)
		if i == 0 {
			valType = v.Typ
		}
		l.b.Call("tea_dict_set", "void", dict, k.Val, v.Val)
	}
	return ExprValue{Val: dict, Typ: types.DictType(valType)}
}

func (l *Lowerer) lowerAssign(n *ast.AssignExpr) ExprValue {
	switch target := n.Target.(type) {
	case *ast.Ident:
		return l.lowerIdentAssign(target, n.Value)
	case *ast.IndexExpr:
		return l.lowerIndexAssign(target, n.Value)
	default:
		return l.lowerExpr(n.Value)
	}
}

// lowerIdentAssign applies the §4.5 string-append optimization
// (`x = x + rhs` for String x becomes an in-place push_str) and otherwise
// stores into the stack slot.
func (l *Lowerer) lowerIdentAssign(target *ast.Ident, value ast.Expr) ExprValue {
	typ := l.localTypes[target.Name]
	if typ.Kind == types.String {
		if infix, ok := value.(*ast.InfixExpr); ok && infix.Op == "+" {
			if lhsIdent, ok := infix.Left.(*ast.Ident); ok && lhsIdent.Name == target.Name {
				rhs := l.lowerExpr(infix.Right)
				slot := l.locals[target.Name]
				l.b.Call("tea_string_push_str", "void", slot, rhs.Val)
				loaded := l.b.Load("ptr", slot)
				return ExprValue{Val: loaded, Typ: typ}
			}
		}
	}

	ev := l.lowerExpr(value)
	if l.mutable[target.Name] {
		l.b.Store(ev.Val, l.locals[target.Name])
	} else {
		l.locals[target.Name] = ev.Val
	}
	l.localTypes[target.Name] = ev.Typ
	return ev
}

// lowerIndexAssign: Dict index assignment mutates in place (runtime set);
// List index assignment rebuilds the list via runtime set, replacing the
// binding with the (possibly new) returned pointer (§4.5).
func (l *Lowerer) lowerIndexAssign(target *ast.IndexExpr, value ast.Expr) ExprValue {
	container := l.lowerExpr(target.Target)
	index := l.lowerExpr(target.Index)
	val := l.lowerExpr(value)

	switch container.Typ.Kind {
	case types.Dict:
		l.b.Call("tea_dict_set", "void", container.Val, index.Val, val.Val)
		return val
	case types.List:
		newList := l.b.Call("tea_list_set", "ptr", container.Val, index.Val, val.Val)
		if ident, ok := target.Target.(*ast.Ident); ok {
			if l.mutable[ident.Name] {
				l.b.Store(newList, l.locals[ident.Name])
			} else {
				l.locals[ident.Name] = newList
			}
		}
		return val
	default:
		return val
	}
}

func (l *Lowerer) lowerIndex(n *ast.IndexExpr) ExprValue {
	target := l.lowerExpr(n.Target)
	if rangeIdx, ok := n.Index.(*ast.RangeExpr); ok {
		low := l.lowerExpr(rangeIdx.Low)
		high := l.lowerExpr(rangeIdx.High)
		switch target.Typ.Kind {
		case types.String:
			return ExprValue{Val: l.b.Call("tea_string_slice", "ptr", target.Val, low.Val, high.Val), Typ: types.StringType()}
		default:
			return ExprValue{Val: l.b.Call("tea_list_slice", "ptr", target.Val, low.Val, high.Val), Typ: target.Typ}
		}
	}
	index := l.lowerExpr(n.Index)
	switch target.Typ.Kind {
	case types.List:
		return ExprValue{Val: l.b.Call("tea_list_get", "ptr", target.Val, index.Val), Typ: *target.Typ.Elem}
	case types.Dict:
		return ExprValue{Val: l.b.Call("tea_dict_get", "ptr", target.Val, index.Val), Typ: *target.Typ.Value}
	case types.String:
		return ExprValue{Val: l.b.Call("tea_string_index", "ptr", target.Val, index.Val), Typ: types.StringType()}
	default:
		return ExprValue{Val: l.b.ZeroValue(types.VoidType()), Typ: types.VoidType()}
	}
}

// lowerField implements member access (§4.4): inline load for Struct,
// runtime accessor for Error, string-keyed get for Dict.
func (l *Lowerer) lowerField(n *ast.FieldExpr) ExprValue {
	target := l.lowerExpr(n.Target)
	switch target.Typ.Kind {
	case types.Struct:
		fieldTypes, _ := l.Symbols.StructFieldVariants(target.Typ.Name)
		entry, _ := l.Symbols.Struct(target.Typ.Name)
		idx := 0
		var fieldType types.ValueType
		if entry != nil {
			for i, name := range entry.FieldNames {
				if name == n.Field.Name {
					idx = i
					if i < len(fieldTypes) {
						fieldType = fieldTypes[i]
					}
					break
				}
			}
		}
		ptr := l.b.GEP("%tv", target.Val, idx)
		loaded := l.b.Load("%tv", ptr)
		unboxed := l.b.Unbox(fieldType, loaded)
		return ExprValue{Val: unboxed, Typ: fieldType}
	case types.Error:
		idx := 0
		if variant, ok := l.Symbols.ErrorVariant(target.Typ.Name, target.Typ.VariantName); ok {
			for i, name := range variant.FieldNames {
				if name == n.Field.Name {
					idx = i
					break
				}
			}
		}
		loaded := l.b.Call("tea_error_field_get", "%tv", target.Val, mir.Value{Literal: fmt.Sprintf("%d", idx), IRType: "i64"})
		return ExprValue{Val: loaded, Typ: types.VoidType()}
	case types.Dict:
		key := l.lowerStringLiteral(n.Field.Name)
		return ExprValue{Val: l.b.Call("tea_dict_get", "ptr", target.Val, key.Val), Typ: *target.Typ.Value}
	default:
		return target
	}
}

// lowerIfExpr implements the §4.4 conditional pattern: the value of each
// arm that reaches the join block feeds a phi there; no result slot is
// used.
func (l *Lowerer) lowerIfExpr(n *ast.IfExpr) ExprValue {
	joinBlock := l.b.NewBlock("if.join")
	var resultType types.ValueType
	var incomingVals []mir.Value
	var incomingBlocks []string

	var emitClause func(idx int)
	emitClause = func(idx int) {
		if idx >= len(n.Clauses) {
			if n.Else != nil {
				ev := l.lowerBlock(n.Else)
				if ev != nil {
					if resultType.Kind == types.Void {
						resultType = ev.Typ
					}
					incomingVals = append(incomingVals, ev.Val)
					incomingBlocks = append(incomingBlocks, l.b.CurrentBlock().Label)
				}
			}
			if !l.b.Terminated() {
				l.b.Br(joinBlock)
			}
			return
		}
		clause := n.Clauses[idx]
		cond := l.lowerExpr(clause.Condition)
		thenBlock := l.b.NewBlock("if.then")
		elseBlock := l.b.NewBlock("if.else")
		l.b.CondBr(cond.Val, thenBlock, elseBlock)

		l.b.SetBlock(thenBlock)
		ev := l.lowerBlock(clause.Body)
		if ev != nil {
			if resultType.Kind == types.Void {
				resultType = ev.Typ
			}
			incomingVals = append(incomingVals, ev.Val)
			incomingBlocks = append(incomingBlocks, l.b.CurrentBlock().Label)
		}
		if !l.b.Terminated() {
			l.b.Br(joinBlock)
		}

		l.b.SetBlock(elseBlock)
		emitClause(idx + 1)
	}
	emitClause(0)

	l.b.SetBlock(joinBlock)
	if len(incomingVals) == 0 {
		return ExprValue{Val: mir.Value{}, Typ: types.VoidType()}
	}
	phi := l.b.Phi(mir.IRTypeOf(resultType))
	for i := range incomingVals {
		l.b.AddIncoming(phi, incomingVals[i], incomingBlocks[i])
	}
	return ExprValue{Val: mir.PhiValue(phi), Typ: resultType}
}

// lowerStructLiteral resolves the literal's name against the struct and
// error-variant namespaces (§4.4.1 call resolution shares this
// namespace) and emits either a struct allocation or an error
// construction.
func (l *Lowerer) lowerStructLiteral(n *ast.StructLiteral) ExprValue {
	errorName, variantName, isError := splitStructLiteralName(n.Name)
	if isError {
		variant, ok := l.Symbols.ErrorVariant(errorName, variantName)
		template := ""
		if ok {
			template = variant.TemplateIR
		}
		val := l.b.Call("tea_alloc_error", "ptr", mir.Value{Literal: template, IRType: "ptr"})
		for _, f := range n.Fields {
			ev := l.lowerExpr(f.Value)
			idx := 0
			if ok {
				for i, name := range variant.FieldNames {
					if name == f.Name.Name {
						idx = i
						break
					}
				}
			}
			ptr := l.b.GEP("%tv", val, idx)
			l.b.Store(ev.Val, ptr)
		}
		return ExprValue{Val: val, Typ: types.ErrorType(errorName, variantName)}
	}

	structName := structLiteralBaseName(n.Name)
	entry, _ := l.Symbols.Struct(structName)
	template := ""
	if entry != nil {
		template = entry.TemplateIR
	}
	val := l.b.Call("tea_alloc_struct", "ptr", mir.Value{Literal: template, IRType: "ptr"})
	for _, f := range n.Fields {
		ev := l.lowerExpr(f.Value)
		idx := 0
		if entry != nil {
			for i, name := range entry.FieldNames {
				if name == f.Name.Name {
					idx = i
					break
				}
			}
		}
		ptr := l.b.GEP("%tv", val, idx)
		l.b.Store(ev.Val, ptr)
	}
	return ExprValue{Val: val, Typ: types.StructType(structName)}
}

func splitStructLiteralName(name ast.Expr) (errorName, variantName string, isError bool) {
	if fe, ok := name.(*ast.FieldExpr); ok {
		if base, ok := fe.Target.(*ast.Ident); ok {
			return base.Name, fe.Field.Name, true
		}
	}
	return "", "", false
}

func structLiteralBaseName(name ast.Expr) string {
	if id, ok := name.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

// lowerTryExpr implements §4.4/§4.5.2: the body runs in Capture mode so
// any throw sets the error slot instead of unwinding; on return, the
// slot is inspected and dispatched to the first matching catch arm.
func (l *Lowerer) lowerTryExpr(n *ast.TryExpr) ExprValue {
	l.pushMode(ModeCapture)
	bodyTail := l.lowerBlock(n.Body)
	l.popMode()

	hasError := l.b.CheckErrorSlot()
	catchBlock := l.b.NewBlock("try.catch")
	okBlock := l.b.NewBlock("try.ok")
	joinBlock := l.b.NewBlock("try.join")
	l.b.CondBr(hasError, catchBlock, okBlock)

	resultType := types.VoidType()
	if bodyTail != nil {
		resultType = bodyTail.Typ
	}

	l.b.SetBlock(okBlock)
	var okVal mir.Value
	if bodyTail != nil {
		okVal = bodyTail.Val
	} else {
		okVal = l.b.ZeroValue(resultType)
	}
	okEnd := l.b.CurrentBlock().Label
	l.b.Br(joinBlock)

	l.b.SetBlock(catchBlock)
	catchVal := l.lowerCatchArms(n.Arms, resultType)
	catchEnd := l.b.CurrentBlock().Label
	if !l.b.Terminated() {
		l.b.Br(joinBlock)
	}

	l.b.SetBlock(joinBlock)
	if resultType.Kind == types.Void {
		return ExprValue{Val: mir.Value{}, Typ: types.VoidType()}
	}
	phi := l.b.Phi(mir.IRTypeOf(resultType))
	l.b.AddIncoming(phi, okVal, okEnd)
	l.b.AddIncoming(phi, catchVal, catchEnd)
	return ExprValue{Val: mir.PhiValue(phi), Typ: resultType}
}

// lowerCatchArms matches arms in source order; an unqualified error-type
// pattern OR-dispatches across every declared variant of that type, and
// the wildcard `_` always matches (§4.5.2).
func (l *Lowerer) lowerCatchArms(arms []*ast.CatchArm, resultType types.ValueType) mir.Value {
	var emit func(idx int) mir.Value
	emit = func(idx int) mir.Value {
		if idx >= len(arms) {
			l.b.Call("tea_panic", "void", mir.Value{Literal: "@.unmatched_catch", IRType: "ptr"})
			l.b.Unreachable()
			return l.b.ZeroValue(resultType)
		}
		arm := arms[idx]
		matchBlock := l.b.NewBlock("catch.match")
		nextBlock := l.b.NewBlock("catch.next")

		cond := l.buildCatchCond(arm.Patterns)
		l.b.CondBr(cond, matchBlock, nextBlock)

		l.b.SetBlock(matchBlock)
		l.b.ClearErrorSlot()
		tail := l.lowerBlock(arm.Body)
		var val mir.Value
		if tail != nil {
			val = tail.Val
		} else {
			val = l.b.ZeroValue(resultType)
		}

		l.b.SetBlock(nextBlock)
		_ = emit(idx + 1)
		return val
	}
	return emit(0)
}

func (l *Lowerer) buildCatchCond(patterns []*ast.CatchPattern) mir.Value {
	var acc mir.Value
	first := true
	for _, p := range patterns {
		var cond mir.Value
		if p.Wildcard {
			cond = mir.Value{Literal: "1", IRType: "i1"}
		} else if p.VariantName != nil {
			variant, _ := l.Symbols.ErrorVariant(p.ErrorName.Name, p.VariantName.Name)
			template := ""
			if variant != nil {
				template = variant.TemplateIR
			}
			cond = l.b.ErrorTemplateEq(template)
		} else {
			for _, variant := range l.Symbols.ErrorVariants(p.ErrorName.Name) {
				c := l.b.ErrorTemplateEq(variant.TemplateIR)
				if first {
					cond = c
				} else {
					cond = l.b.BinOp(mir.OpOr, cond, c, "i1")
				}
				first = false
			}
		}
		if first {
			acc = cond
		} else {
			acc = l.b.BinOp(mir.OpOr, acc, cond, "i1")
		}
		first = false
	}
	if len(patterns) == 0 {
		return mir.Value{Literal: "0", IRType: "i1"}
	}
	return acc
}

// lowerBlock lowers every statement and, if present, the tail expression,
// returning its value and type (or nil for a statement-only block).
func (l *Lowerer) lowerBlock(b *ast.BlockExpr) *ExprValue {
	for _, s := range b.Stmts {
		l.lowerStmt(s)
		if l.b.Terminated() {
			return nil
		}
	}
	if b.Tail != nil {
		ev := l.lowerExpr(b.Tail)
		return &ev
	}
	return nil
}
