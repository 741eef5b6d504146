package lower

import (
	"github.com/teacompiler/teac/internal/ast"
	"github.com/teacompiler/teac/internal/mir"
	"github.com/teacompiler/teac/internal/types"
)

// collectionMethods names the methods inline-expanded into loops rather
// than lowered as true calls (§4.4.2).
var collectionMethods = map[string]bool{
	"map": true, "filter": true, "reduce": true,
	"find": true, "any": true, "all": true,
}

// rejectedBuiltins names the call-style constructs that parse but are
// rejected at lowering time, with the exact message to surface (§9 Open
// Question, resolved in SPEC_FULL.md §4 [FULL]).
var rejectedBuiltins = map[string]string{
	"assert_snapshot": "assert_snapshot is not supported outside the reference interpreter",
	"assert_empty":    "assert_empty is not supported outside the reference interpreter",
	"stdin_lines":     "standard input streaming is not available to AOT-compiled programs",
	"read_to_end":     "standard input streaming is not available to AOT-compiled programs",
}

// moduleBuiltins maps a module-qualified builtin name (module.function) to
// its runtime entry point (§4.7, §6.5). The module part is matched
// literally against the call's target identifier; `use` declarations and
// their aliases are not consulted.
var moduleBuiltins = map[string]string{
	"io.print":       "tea_io_print",
	"io.println":     "tea_io_println",
	"fs.read_file":   "tea_fs_read_file",
	"fs.write_file":  "tea_fs_write_file",
	"process.spawn":  "tea_process_spawn",
	"process.exit":   "tea_process_exit",
	"regex.compile":  "tea_regex_compile",
	"regex.match":    "tea_regex_match",
	"json.parse":     "tea_json_parse",
	"json.stringify": "tea_json_stringify",
}

// lowerCall implements the §4.4.1 call resolution. A field callee is tried
// as a module-qualified runtime builtin, then as a collection method on a
// List target; an identifier callee is tried as a rejected builtin, a
// generic function instance, a plain function, then a local closure; any
// other callee is a closure call. Struct
// and error-variant construction never reach here: the parser produces
// ast.StructLiteral for that syntax exclusively (brace-literal form), never
// ast.CallExpr.
func (l *Lowerer) lowerCall(n *ast.CallExpr) ExprValue {
	if field, ok := n.Callee.(*ast.FieldExpr); ok {
		if ident, isIdent := field.Target.(*ast.Ident); isIdent {
			if key := ident.Name + "." + field.Field.Name; moduleBuiltins[key] != "" {
				return l.lowerModuleBuiltinCall(key, n.Args)
			}
		}
		targetVal := l.lowerExpr(field.Target)
		if targetVal.Typ.Kind == types.List && collectionMethods[field.Field.Name] {
			return l.lowerCollectionMethod(field.Field.Name, targetVal, n.Args)
		}
		// An unrecognized field call invokes a closure stored in a field.
		return l.lowerClosureCall(targetVal, n.Args)
	}

	if ident, ok := n.Callee.(*ast.Ident); ok {
		if msg, rejected := rejectedBuiltins[ident.Name]; rejected {
			l.reject(ident.Name, msg)
			return ExprValue{Val: l.b.ZeroValue(types.VoidType()), Typ: types.VoidType()}
		}

		key := types.KeyFromSpan(n.Span())
		if meta, ok := l.Tables.FunctionCallMetadata[key]; ok && meta.Instance != nil {
			return l.lowerDirectCall(meta.Instance.MangledName, n.Args, meta.Instance.ReturnType, meta.Instance.CanThrow)
		}
		if entry, ok := l.Symbols.Functions[ident.Name]; ok {
			return l.lowerDirectCall(ident.Name, n.Args, entry.ReturnType, entry.CanThrow)
		}
		if _, isLocal := l.locals[ident.Name]; isLocal {
			return l.lowerClosureCall(l.lowerIdent(ident), n.Args)
		}
	}

	// Anything else (an immediately-invoked lambda literal, or any other
	// expression producing a closure value) is a closure call.
	callee := l.lowerExpr(n.Callee)
	return l.lowerClosureCall(callee, n.Args)
}

func (l *Lowerer) lowerModuleBuiltinCall(key string, args []ast.Expr) ExprValue {
	runtimeFn := moduleBuiltins[key]
	vals := make([]mir.Value, len(args))
	for i, a := range args {
		vals[i] = l.lowerExpr(a).Val
	}
	val := l.b.Call(runtimeFn, "ptr", vals...)
	return ExprValue{Val: val, Typ: types.VoidType()}
}

// lowerCollectionMethod inline-expands map/filter/reduce/find/any/all into
// an explicit index-driven loop over the target list, attaching a
// vectorization hint for the downstream optimizer (§4.4.2). List elements
// are stored boxed (%tv); the callback operates on the unboxed value.
func (l *Lowerer) lowerCollectionMethod(method string, target ExprValue, args []ast.Expr) ExprValue {
	elemType := types.VoidType()
	if target.Typ.Kind == types.List {
		elemType = *target.Typ.Elem
	}
	lenVal := l.b.Call("tea_list_len", "i64", target.Val)

	callbackArg := args[0]
	var resultList mir.Value
	var reduceSlot mir.Value
	var reduceType types.ValueType
	var foundSlot, foundValSlot mir.Value
	var boolSlot mir.Value
	var resultType types.ValueType

	switch method {
	case "map":
		resultList = l.b.Call("tea_alloc_list", "ptr", lenVal)
	case "filter":
		resultList = l.b.Call("tea_alloc_list", "ptr", mir.Value{Literal: "0", IRType: "i64"})
		resultType = target.Typ
	case "reduce":
		init := l.lowerExpr(args[1])
		reduceType = init.Typ
		reduceSlot = l.b.Alloca(mir.IRTypeOf(reduceType))
		l.b.Store(init.Val, reduceSlot)
	case "find":
		foundSlot = l.b.Alloca("i1")
		l.b.Store(mir.Value{Literal: "0", IRType: "i1"}, foundSlot)
		foundValSlot = l.b.Alloca(mir.IRTypeOf(elemType))
		resultType = types.OptionalType(elemType)
	case "any", "all":
		boolSlot = l.b.Alloca("i1")
		initLit := "0"
		if method == "all" {
			initLit = "1"
		}
		l.b.Store(mir.Value{Literal: initLit, IRType: "i1"}, boolSlot)
		resultType = types.BoolType()
	}

	idxSlot := l.b.Alloca("i64")
	l.b.Store(mir.Value{Literal: "0", IRType: "i64"}, idxSlot)

	headerBlock := l.b.NewBlock(method + ".header")
	bodyBlock := l.b.NewBlock(method + ".body")
	latchBlock := l.b.NewBlock(method + ".latch")
	exitBlock := l.b.NewBlock(method + ".exit")

	l.b.Br(headerBlock)
	l.b.SetBlock(headerBlock)
	idx := l.b.Load("i64", idxSlot)
	cond := l.b.ICmp("slt", idx, lenVal)
	l.b.CondBr(cond, bodyBlock, exitBlock)
	l.b.SetLoopMetadata(`!{!"llvm.loop.vectorize.enable", i1 true}`)

	l.b.SetBlock(bodyBlock)
	boxedElem := l.b.Call("tea_list_get", "ptr", target.Val, idx)
	elem := l.b.Unbox(elemType, boxedElem)

	switch method {
	case "map":
		result := l.invokeInlineCallback(callbackArg, []mir.Value{elem}, []types.ValueType{elemType})
		boxedResult := l.b.Box(result.Typ.String(), result.Val)
		l.b.Call("tea_list_set", "void", resultList, idx, boxedResult)
		resultType = types.ListType(result.Typ)
	case "filter":
		keep := l.invokeInlineCallback(callbackArg, []mir.Value{elem}, []types.ValueType{elemType})
		matchBlock := l.b.NewBlock("filter.match")
		skipBlock := l.b.NewBlock("filter.skip")
		l.b.CondBr(keep.Val, matchBlock, skipBlock)
		l.b.SetBlock(matchBlock)
		l.b.Call("tea_list_append", "void", resultList, boxedElem)
		l.b.Br(skipBlock)
		l.b.SetBlock(skipBlock)
	case "reduce":
		acc := l.b.Load(mir.IRTypeOf(reduceType), reduceSlot)
		next := l.invokeInlineCallback(callbackArg, []mir.Value{acc, elem}, []types.ValueType{reduceType, elemType})
		l.b.Store(next.Val, reduceSlot)
	case "find", "any", "all":
		hit := l.invokeInlineCallback(callbackArg, []mir.Value{elem}, []types.ValueType{elemType})
		hitBlock := l.b.NewBlock(method + ".hit")
		missBlock := l.b.NewBlock(method + ".miss")
		if method == "all" {
			l.b.CondBr(hit.Val, missBlock, hitBlock) // first falsy short-circuits to exit
		} else {
			l.b.CondBr(hit.Val, hitBlock, missBlock)
		}
		l.b.SetBlock(hitBlock)
		switch method {
		case "find":
			l.b.Store(mir.Value{Literal: "1", IRType: "i1"}, foundSlot)
			l.b.Store(elem, foundValSlot)
		case "any":
			l.b.Store(mir.Value{Literal: "1", IRType: "i1"}, boolSlot)
		case "all":
			l.b.Store(mir.Value{Literal: "0", IRType: "i1"}, boolSlot)
		}
		l.b.Br(exitBlock)
		l.b.SetBlock(missBlock)
	}

	if !l.b.Terminated() {
		l.b.Br(latchBlock)
	}
	l.b.SetBlock(latchBlock)
	nextIdx := l.b.BinOp(mir.OpAdd, idx, mir.Value{Literal: "1", IRType: "i64"}, "i64")
	l.b.Store(nextIdx, idxSlot)
	l.b.Br(headerBlock)

	l.b.SetBlock(exitBlock)
	switch method {
	case "map", "filter":
		return ExprValue{Val: resultList, Typ: resultType}
	case "reduce":
		final := l.b.Load(mir.IRTypeOf(reduceType), reduceSlot)
		return ExprValue{Val: final, Typ: reduceType}
	case "find":
		found := l.b.Load("i1", foundSlot)
		someBlock := l.b.NewBlock("find.some")
		noneBlock := l.b.NewBlock("find.none")
		joinBlock := l.b.NewBlock("find.join")
		l.b.CondBr(found, someBlock, noneBlock)

		l.b.SetBlock(someBlock)
		val := l.b.Load(mir.IRTypeOf(elemType), foundValSlot)
		someVal := l.b.Box(elemType.String(), val)
		l.b.Br(joinBlock)

		l.b.SetBlock(noneBlock)
		noneVal := l.b.NilOptional()
		l.b.Br(joinBlock)

		l.b.SetBlock(joinBlock)
		phi := l.b.Phi(mir.IRTypeOf(resultType))
		l.b.AddIncoming(phi, someVal, someBlock.Label)
		l.b.AddIncoming(phi, noneVal, noneBlock.Label)
		return ExprValue{Val: mir.PhiValue(phi), Typ: resultType}
	case "any", "all":
		loaded := l.b.Load("i1", boolSlot)
		return ExprValue{Val: loaded, Typ: types.BoolType()}
	default:
		return ExprValue{Val: mir.Value{}, Typ: types.VoidType()}
	}
}

// invokeInlineCallback lowers a one-off call to a lambda expression passed
// to a collection method: inlined directly into the loop body rather than
// lifted to a standalone function, since it is only ever invoked once per
// iteration here (§4.4.2). A non-literal callback (a closure value held in
// a variable) falls back to a true closure call.
func (l *Lowerer) invokeInlineCallback(fn ast.Expr, args []mir.Value, argTypes []types.ValueType) ExprValue {
	lambda, ok := fn.(*ast.FunctionLiteral)
	if !ok {
		callee := l.lowerExpr(fn)
		retType := types.VoidType()
		if callee.Typ.Kind == types.Function {
			retType = *callee.Typ.Return
		}
		resultIR := "void"
		if retType.Kind != types.Void {
			resultIR = mir.IRTypeOf(retType)
		}
		val := l.b.Call("tea_closure_invoke", resultIR, append([]mir.Value{callee.Val}, args...)...)
		return ExprValue{Val: val, Typ: retType}
	}

	saved := l.snapshotScope()
	for i, p := range lambda.Params {
		if i < len(args) {
			l.localTypes[p.Name.Name] = argTypes[i]
			l.locals[p.Name.Name] = args[i]
			l.mutable[p.Name.Name] = false
		}
	}
	result := l.lowerBlock(lambda.Body)
	l.restoreScope(saved)
	if result == nil {
		return ExprValue{Val: l.b.ZeroValue(types.VoidType()), Typ: types.VoidType()}
	}
	return *result
}

type scopeSnapshot struct {
	locals     map[string]mir.Value
	localTypes map[string]types.ValueType
	mutable    map[string]bool
}

// snapshotScope copies the current binding maps so a nested scope (an
// inlined lambda body) can introduce its own params without leaking them
// into the enclosing loop body once lowering returns.
func (l *Lowerer) snapshotScope() scopeSnapshot {
	s := scopeSnapshot{
		locals:     map[string]mir.Value{},
		localTypes: map[string]types.ValueType{},
		mutable:    map[string]bool{},
	}
	for k, v := range l.locals {
		s.locals[k] = v
	}
	for k, v := range l.localTypes {
		s.localTypes[k] = v
	}
	for k, v := range l.mutable {
		s.mutable[k] = v
	}
	return s
}

func (l *Lowerer) restoreScope(s scopeSnapshot) {
	l.locals = s.locals
	l.localTypes = s.localTypes
	l.mutable = s.mutable
}

func (l *Lowerer) lowerDirectCall(mangled string, argExprs []ast.Expr, retType types.ValueType, canThrow bool) ExprValue {
	args := make([]mir.Value, len(argExprs))
	for i, a := range argExprs {
		args[i] = l.lowerExpr(a).Val
	}
	resultIR := "void"
	if retType.Kind != types.Void {
		resultIR = mir.IRTypeOf(retType)
	}
	val := l.b.Call(mangled, resultIR, args...)
	if canThrow && l.currentMode() == ModePropagate {
		hasError := l.b.CheckErrorSlot()
		propagateBlock := l.b.NewBlock("propagate")
		continueBlock := l.b.NewBlock("continue")
		l.b.CondBr(hasError, propagateBlock, continueBlock)

		l.b.SetBlock(propagateBlock)
		if l.returnType.Kind == types.Void {
			l.b.RetVoid()
		} else {
			l.b.Ret(l.b.ZeroValue(l.returnType))
		}

		l.b.SetBlock(continueBlock)
	}
	return ExprValue{Val: val, Typ: retType}
}

func (l *Lowerer) lowerClosureCall(closure ExprValue, argExprs []ast.Expr) ExprValue {
	args := make([]mir.Value, len(argExprs)+1)
	args[0] = closure.Val
	for i, a := range argExprs {
		args[i+1] = l.lowerExpr(a).Val
	}
	retType := types.VoidType()
	if closure.Typ.Kind == types.Function {
		retType = *closure.Typ.Return
	}
	resultIR := "void"
	if retType.Kind != types.Void {
		resultIR = mir.IRTypeOf(retType)
	}
	val := l.b.Call("tea_closure_invoke", resultIR, args...)
	return ExprValue{Val: val, Typ: retType}
}
