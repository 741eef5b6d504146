// Package lower implements the Expression Lowerer (§4.4), Statement
// Lowerer (§4.5), and the per-function driving logic of Function &
// Closure Codegen (§4.6). It translates an ast.File plus its
// types.SideTables into a mir.Module ready for textual IR emission.
package lower

import (
	"github.com/teacompiler/teac/internal/ast"
	"github.com/teacompiler/teac/internal/mir"
	"github.com/teacompiler/teac/internal/symtab"
	"github.com/teacompiler/teac/internal/types"
)

// ErrorMode is the two-state error-handling stack described in §4.5.2.
type ErrorMode int

const (
	ModePropagate ErrorMode = iota
	ModeCapture
)

// smallFunctionStatementThreshold is the §4.6 alwaysinline cutoff.
const smallFunctionStatementThreshold = 20

type loopCtx struct {
	exitBlock     *mir.Block
	continueBlock *mir.Block
}

// Lowerer holds the whole-module state (symbol table) plus the per-function
// context that is pushed/popped as functions are emitted (§4.6 step 1/4).
type Lowerer struct {
	Tables  *types.SideTables
	Symbols *symtab.Table
	Module  *mir.Module

	// per-function state
	b          *mir.Builder
	mutable    map[string]bool
	locals     map[string]mir.Value // current SSA value, or pointer if mutable
	localTypes map[string]types.ValueType
	returnType types.ValueType
	canThrow   bool
	errorModes []ErrorMode
	loops      []loopCtx

	rejected []RejectedConstruct
}

// RejectedConstruct records a construct that parses but is rejected at
// lowering time (§9 Open Question; resolved in SPEC_FULL.md §4 [FULL]).
type RejectedConstruct struct {
	Construct string
	Message   string
}

func New(tables *types.SideTables, symbols *symtab.Table) *Lowerer {
	return &Lowerer{
		Tables:  tables,
		Symbols: symbols,
		Module:  mir.NewModule("tea_module"),
	}
}

// LowerFile runs the full declare-then-emit pipeline (§4.6) over every
// top-level function.
func (l *Lowerer) LowerFile(f *ast.File) {
	// Struct/error declaration pass: struct and error-variant literals
	// (§4.4.1's shared construction namespace) resolve their field layout
	// and template pointer against the symbol table, so every declared
	// type must be registered before any body that constructs one is
	// lowered.
	for _, d := range f.Decls {
		switch decl := d.(type) {
		case *ast.StructDecl:
			l.declareStruct(decl)
		case *ast.ErrorDecl:
			l.declareError(decl)
		}
	}

	// Declaration pass: forward references resolve before any body is
	// emitted (§4.6 "Declaration pass").
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FnDecl); ok && len(fn.TypeParams) == 0 {
			l.declareFunction(fn, "", nil)
		}
	}
	for name, instances := range l.Tables.FunctionInstances {
		fn := l.findFnDecl(f, name)
		if fn == nil {
			continue
		}
		for _, inst := range instances {
			l.declareFunction(fn, inst.MangledName, &inst)
		}
	}

	// Body emission pass.
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FnDecl); ok && len(fn.TypeParams) == 0 {
			l.emitFunctionBody(fn, fn.Name.Name, nil)
		}
	}
	for name, instances := range l.Tables.FunctionInstances {
		fn := l.findFnDecl(f, name)
		if fn == nil {
			continue
		}
		for i := range instances {
			l.emitFunctionBody(fn, instances[i].MangledName, &instances[i])
		}
	}
}

func (l *Lowerer) findFnDecl(f *ast.File, name string) *ast.FnDecl {
	for _, d := range f.Decls {
		if fn, ok := d.(*ast.FnDecl); ok && fn.Name.Name == name {
			return fn
		}
	}
	return nil
}

func (l *Lowerer) declareFunction(fn *ast.FnDecl, mangled string, inst *types.FunctionInstance) {
	name := mangled
	if name == "" {
		name = fn.Name.Name
	}
	ret := types.VoidType()
	params := make([]types.ValueType, len(fn.Params))
	if inst != nil {
		ret = inst.ReturnType
		copy(params, inst.ParamTypes)
	} else {
		binds := types.NewBindingStack()
		if fn.ReturnType != nil {
			ret, _ = types.Lower(fn.ReturnType, binds, l.Symbols)
		}
		for i, p := range fn.Params {
			params[i], _ = types.Lower(p.Type, binds, l.Symbols)
		}
	}
	l.Symbols.DeclareFunction(name, ret, params, fn.CanThrow)
}

// declareStruct registers a non-generic struct's field layout and lazily
// materialized template pointer (§3.3). Structs with type parameters are
// skipped and not registered at all: the lowerer does not read
// types.SideTables.StructInstances, so no per-instance layout exists.
func (l *Lowerer) declareStruct(d *ast.StructDecl) {
	if len(d.TypeParams) != 0 {
		return
	}
	binds := types.NewBindingStack()
	names := make([]string, len(d.Fields))
	fieldTypes := make([]types.ValueType, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name.Name
		fieldTypes[i], _ = types.Lower(f.Type, binds, l.Symbols)
	}
	l.Symbols.DeclareStruct(d.Name.Name, d.Name.Name, names, fieldTypes)
}

// declareError registers every variant of a tagged error type (§3.3); each
// variant gets its own symtab entry, matching how catch-pattern OR-dispatch
// looks variants up independently via symtab.Table.ErrorVariants.
func (l *Lowerer) declareError(d *ast.ErrorDecl) {
	binds := types.NewBindingStack()
	for _, v := range d.Variants {
		names := make([]string, len(v.Fields))
		fieldTypes := make([]types.ValueType, len(v.Fields))
		for i, f := range v.Fields {
			names[i] = f.Name.Name
			fieldTypes[i], _ = types.Lower(f.Type, binds, l.Symbols)
		}
		l.Symbols.DeclareErrorVariant(d.Name.Name, v.Name.Name, names, fieldTypes)
	}
}

// emitFunctionBody performs §4.6 "Body emission" steps 1-4.
func (l *Lowerer) emitFunctionBody(fn *ast.FnDecl, mangled string, inst *types.FunctionInstance) {
	entry, ok := l.Symbols.Functions[mangled]
	if !ok {
		return
	}

	params := make([]mir.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = mir.Param{Name: p.Name.Name, IRType: mir.IRTypeOf(entry.ParamTypes[i])}
	}
	retIR := "void"
	if entry.ReturnType.Kind != types.Void {
		retIR = mir.IRTypeOf(entry.ReturnType)
	}

	l.b = mir.NewBuilder(mangled, params, retIR)
	l.mutable = scanMutated(fn.Body, paramNames(fn.Params))
	l.locals = map[string]mir.Value{}
	l.localTypes = map[string]types.ValueType{}
	l.returnType = entry.ReturnType
	l.canThrow = fn.CanThrow
	l.errorModes = []ErrorMode{ModePropagate}
	l.loops = nil

	for i, p := range fn.Params {
		pt := entry.ParamTypes[i]
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

	tail := l.lowerBlock(fn.Body)

	if !l.b.Terminated() {
		if entry.ReturnType.Kind == types.Void {
			if l.canThrow {
				l.b.ClearErrorSlot()
			}
			l.b.RetVoid()
		} else if tail != nil {
			if l.canThrow {
				l.b.ClearErrorSlot()
			}
			l.b.Ret(tail.Val)
		}
		// else: a non-void function without a return leaves this block
		// unterminated. Neither this package nor the checker reports a
		// diagnostic for it; driver.VerifyModule rejects the module.
	}

	l.b.Func.Attrs = append(l.b.Func.Attrs, mir.AttrWillReturn, mir.AttrNoSync, mir.AttrNoFree)
	if !fn.CanThrow {
		l.b.Func.Attrs = append(l.b.Func.Attrs, mir.AttrNoUnwind)
	}
	if countStatements(fn.Body) < smallFunctionStatementThreshold {
		l.b.Func.Attrs = append(l.b.Func.Attrs, mir.AttrAlwaysInline)
	}

	l.Module.AddFunction(l.b.Func)
}

func paramNames(params []*ast.Param) map[string]bool {
	s := map[string]bool{}
	for _, p := range params {
		s[p.Name.Name] = true
	}
	return s
}

func countStatements(b *ast.BlockExpr) int {
	n := len(b.Stmts)
	for _, s := range b.Stmts {
		switch st := s.(type) {
		case *ast.WhileStmt:
			n += countStatements(st.Body)
		case *ast.ForStmt:
			n += countStatements(st.Body)
		}
	}
	return n
}

func (l *Lowerer) currentMode() ErrorMode {
	return l.errorModes[len(l.errorModes)-1]
}

func (l *Lowerer) pushMode(m ErrorMode) { l.errorModes = append(l.errorModes, m) }
func (l *Lowerer) popMode()             { l.errorModes = l.errorModes[:len(l.errorModes)-1] }

func (l *Lowerer) reject(construct, message string) {
	l.rejected = append(l.rejected, RejectedConstruct{Construct: construct, Message: message})
}

// Rejected returns every rejected-at-lowering construct encountered so far
// (§9 Open Question; surfaced by the driver as diag.CodeRejectedConstruct).
func (l *Lowerer) Rejected() []RejectedConstruct { return l.rejected }
