package lower

import (
	"fmt"

	"github.com/teacompiler/teac/internal/ast"
	"github.com/teacompiler/teac/internal/mir"
	"github.com/teacompiler/teac/internal/types"
)

// lowerLambda implements §4.6's lambda lifting: every free variable is
// captured by value into a closure environment allocated at the
// definition site, and the lambda body is lifted into its own IR
// function taking the closure pointer as a hidden first parameter. A
// given FunctionLiteral occurs once in the source, so its body is lifted
// at most once; repeated evaluation (e.g. inside a loop) only re-builds
// the closure environment, not the function itself.
func (l *Lowerer) lowerLambda(n *ast.FunctionLiteral) ExprValue {
	info := l.Tables.LambdaSignatures[n.ID]
	mangled := fmt.Sprintf("tea_lambda_%d", n.ID)

	captureTypes := make([]types.ValueType, len(info.Captures))
	captureVals := make([]mir.Value, len(info.Captures))
	for i, name := range info.Captures {
		captureTypes[i] = l.localTypes[name]
		captureVals[i] = l.loadCarried(name)
	}

	if _, declared := l.Symbols.Lambda(n.ID); !declared {
		l.Symbols.DeclareLambda(n.ID, mangled, info.Captures, captureTypes)
		l.liftLambdaBody(n, mangled, info, captureTypes)
	}

	fnType := types.FunctionType(info.ParamTypes, info.ReturnType)
	closure := l.b.Call("tea_closure_new", "ptr",
		mir.Value{Name: "@" + mangled, IRType: "ptr"},
		mir.Value{Literal: fmt.Sprintf("%d", len(info.Captures)), IRType: "i64"})
	for i, cv := range captureVals {
		boxed := l.b.Box(captureTypes[i].String(), cv)
		l.b.Call("tea_closure_set_capture", "void", closure,
			mir.Value{Literal: fmt.Sprintf("%d", i), IRType: "i64"}, boxed)
	}
	return ExprValue{Val: closure, Typ: fnType}
}

// liftLambdaBody emits the lambda's body as a standalone top-level IR
// function, saving and restoring the Lowerer's per-function state so the
// enclosing function's in-progress lowering resumes unaffected (§4.6).
func (l *Lowerer) liftLambdaBody(n *ast.FunctionLiteral, mangled string, info types.LambdaInfo, captureTypes []types.ValueType) {
	savedB := l.b
	savedMutable := l.mutable
	savedLocals := l.locals
	savedLocalTypes := l.localTypes
	savedReturnType := l.returnType
	savedCanThrow := l.canThrow
	savedErrorModes := l.errorModes
	savedLoops := l.loops

	params := make([]mir.Param, len(n.Params)+1)
	params[0] = mir.Param{Name: "closure_env", IRType: "ptr"}
	for i, p := range n.Params {
		params[i+1] = mir.Param{Name: p.Name.Name, IRType: mir.IRTypeOf(info.ParamTypes[i])}
	}
	retIR := "void"
	if info.ReturnType.Kind != types.Void {
		retIR = mir.IRTypeOf(info.ReturnType)
	}

	l.b = mir.NewBuilder(mangled, params, retIR)
	bodyNames := map[string]bool{}
	for _, p := range n.Params {
		bodyNames[p.Name.Name] = true
	}
	l.mutable = scanMutated(n.Body, bodyNames)
	l.locals = map[string]mir.Value{}
	l.localTypes = map[string]types.ValueType{}
	l.returnType = info.ReturnType
	l.canThrow = false
	l.errorModes = []ErrorMode{ModePropagate}
	l.loops = nil

	envPtr := mir.Value{Name: "%closure_env", IRType: "ptr"}
	for i, name := range info.Captures {
		fieldPtr := l.b.GEP("ptr", envPtr, i)
		boxed := l.b.Load("ptr", fieldPtr)
		l.localTypes[name] = captureTypes[i]
		l.locals[name] = l.b.Unbox(captureTypes[i], boxed)
	}

	for i, p := range n.Params {
		pt := info.ParamTypes[i]
		l.localTypes[p.Name.Name] = pt
		irType := mir.IRTypeOf(pt)
		if l.mutable[p.Name.Name] {
			slot := l.b.Alloca(irType)
			l.b.Store(mir.Value{Name: "%" + p.Name.Name, IRType: irType}, slot)
			l.locals[p.Name.Name] = slot
		} else {
			l.locals[p.Name.Name] = mir.Value{Name: "%" + p.Name.Name, IRType: irType}
		}
	}

	tail := l.lowerBlock(n.Body)
	if !l.b.Terminated() {
		if info.ReturnType.Kind == types.Void {
			l.b.RetVoid()
		} else if tail != nil {
			l.b.Ret(tail.Val)
		}
	}
	l.b.Func.Attrs = append(l.b.Func.Attrs, mir.AttrWillReturn)
	l.Module.AddFunction(l.b.Func)

	l.b = savedB
	l.mutable = savedMutable
	l.locals = savedLocals
	l.localTypes = savedLocalTypes
	l.returnType = savedReturnType
	l.canThrow = savedCanThrow
	l.errorModes = savedErrorModes
	l.loops = savedLoops
}
