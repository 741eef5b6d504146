package types

import (
	"fmt"

	"github.com/teacompiler/teac/internal/ast"
	"github.com/teacompiler/teac/internal/diag"
)

// FnSig is the declared signature of a top-level function, generic or not.
type FnSig struct {
	Decl       *ast.FnDecl
	TypeParams []string
	ParamTypes []ast.TypeExpr // raw, lowered per-instantiation
	ReturnType ast.TypeExpr
	CanThrow   bool
}

// Checker performs the minimal forward pass described in SPEC_FULL.md §3
// [FULL]: name resolution, monomorphization triggering, and side-table
// population. It is not a full type checker; it trusts well-formed input
// and reports only the errors the core itself depends on (§7).
type Checker struct {
	functions map[string]*FnSig
	structs   map[string]*ast.StructDecl
	errors    map[string]*ast.ErrorDecl

	tables *SideTables

	scopes []map[string]ValueType

	Diagnostics []diag.Diagnostic
}

func NewChecker() *Checker {
	return &Checker{
		functions: map[string]*FnSig{},
		structs:   map[string]*ast.StructDecl{},
		errors:    map[string]*ast.ErrorDecl{},
		tables:    NewSideTables(),
	}
}

func (c *Checker) IsStructName(name string) bool { _, ok := c.structs[name]; return ok }
func (c *Checker) IsErrorName(name string) bool   { _, ok := c.errors[name]; return ok }

func (c *Checker) pushScope() { c.scopes = append(c.scopes, map[string]ValueType{}) }
func (c *Checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) bind(name string, t ValueType) {
	c.scopes[len(c.scopes)-1][name] = t
}

func (c *Checker) lookup(name string) (ValueType, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v, true
		}
	}
	return ValueType{}, false
}

func (c *Checker) errorf(span ast.Node, code diag.Code, format string, args ...interface{}) {
	sp := span.Span()
	c.Diagnostics = append(c.Diagnostics, diag.New(diag.StageTypes, code, diag.Span{
		Filename: sp.Filename, Line: sp.Line, Column: sp.Column, Start: sp.Start, End: sp.End,
	}, format, args...))
}

// Check walks the file, registers declarations, and populates the side
// tables. It returns the completed SideTables bundle; callers should check
// c.Diagnostics for compile errors first.
func (c *Checker) Check(f *ast.File) *SideTables {
	c.registerDecls(f)
	for _, d := range f.Decls {
		switch n := d.(type) {
		case *ast.FnDecl:
			if len(n.TypeParams) == 0 {
				c.checkFunction(n, nil)
			}
		case *ast.TestDecl:
			c.pushScope()
			c.checkBlock(n.Body, nil)
			c.popScope()
		}
	}
	return c.tables
}

func (c *Checker) registerDecls(f *ast.File) {
	for _, d := range f.Decls {
		switch n := d.(type) {
		case *ast.FnDecl:
			tp := make([]string, len(n.TypeParams))
			for i, t := range n.TypeParams {
				tp[i] = t.Name.Name
			}
			params := make([]ast.TypeExpr, len(n.Params))
			for i, p := range n.Params {
				params[i] = p.Type
			}
			c.functions[n.Name.Name] = &FnSig{Decl: n, TypeParams: tp, ParamTypes: params, ReturnType: n.ReturnType, CanThrow: n.CanThrow}
		case *ast.StructDecl:
			c.structs[n.Name.Name] = n
			c.registerStructDef(n, nil)
		case *ast.ErrorDecl:
			c.errors[n.Name.Name] = n
			c.registerErrorDef(n)
		}
	}
}

func (c *Checker) registerStructDef(n *ast.StructDecl, binds *BindingStack) {
	if binds == nil {
		binds = NewBindingStack()
	}
	names := make([]string, len(n.Fields))
	ftypes := make([]ValueType, len(n.Fields))
	for i, fld := range n.Fields {
		names[i] = fld.Name.Name
		vt, err := Lower(fld.Type, binds, c)
		if err != nil {
			vt = ValueType{Kind: Struct, Name: "$unresolved"}
		}
		ftypes[i] = vt
	}
	tp := make([]string, len(n.TypeParams))
	for i, t := range n.TypeParams {
		tp[i] = t.Name.Name
	}
	c.tables.StructDefs[n.Name.Name] = StructDef{Name: n.Name.Name, TypeParams: tp, FieldNames: names, FieldTypes: ftypes}
}

func (c *Checker) registerErrorDef(n *ast.ErrorDecl) {
	def := ErrorDef{Name: n.Name.Name}
	binds := NewBindingStack()
	for _, v := range n.Variants {
		names := make([]string, len(v.Fields))
		ftypes := make([]ValueType, len(v.Fields))
		for i, fld := range v.Fields {
			names[i] = fld.Name.Name
			vt, err := Lower(fld.Type, binds, c)
			if err != nil {
				vt = StringType()
			}
			ftypes[i] = vt
		}
		def.Variants = append(def.Variants, ErrorVariantDef{Name: v.Name.Name, FieldNames: names, FieldTypes: ftypes})
	}
	c.tables.ErrorDefs[n.Name.Name] = def
}

// checkFunction type-walks a concrete (possibly monomorphized) function
// body. binds is nil for non-generic functions.
func (c *Checker) checkFunction(n *ast.FnDecl, binds *BindingStack) {
	if binds == nil {
		binds = NewBindingStack()
	}
	c.pushScope()
	for _, p := range n.Params {
		vt, err := Lower(p.Type, binds, c)
		if err != nil {
			c.errorf(p, diag.CodeUnresolvedTypeParam, "unresolved type for parameter %s: %v", p.Name.Name, err)
			vt = VoidType()
		}
		c.bind(p.Name.Name, vt)
	}
	c.checkBlock(n.Body, binds)
	c.popScope()
}

func (c *Checker) checkBlock(b *ast.BlockExpr, binds *BindingStack) ValueType {
	for _, s := range b.Stmts {
		c.checkStmt(s, binds)
	}
	if b.Tail != nil {
		return c.inferExpr(b.Tail, binds)
	}
	return VoidType()
}

func (c *Checker) checkStmt(s ast.Stmt, binds *BindingStack) {
	switch n := s.(type) {
	case *ast.LetStmt:
		vt := c.inferExpr(n.Value, binds)
		if n.Type != nil {
			if declared, err := Lower(n.Type, binds, c); err == nil {
				vt = declared
			}
		}
		c.bind(n.Name.Name, vt)
		c.tables.BindingTypes[KeyFromSpan(n.Name.Span())] = vt
	case *ast.ExprStmt:
		c.inferExpr(n.Expr, binds)
	case *ast.ReturnStmt:
		if n.Value != nil {
			c.inferExpr(n.Value, binds)
		}
	case *ast.ThrowStmt:
		c.inferExpr(n.Value, binds)
	case *ast.WhileStmt:
		c.inferExpr(n.Condition, binds)
		c.pushScope()
		c.checkBlock(n.Body, binds)
		c.popScope()
	case *ast.ForStmt:
		iterType := c.inferExpr(n.Iterable, binds)
		c.pushScope()
		switch iterType.Kind {
		case List:
			if n.KeyName != nil {
				c.errorf(n, diag.CodeForOverListWithKeyPattern, "cannot destructure (key, value) over a list")
			}
			c.bind(n.ValueName.Name, *iterType.Elem)
		case Dict:
			if n.KeyName != nil {
				c.bind(n.KeyName.Name, StringType())
			}
			c.bind(n.ValueName.Name, *iterType.Value)
		default:
			c.bind(n.ValueName.Name, VoidType())
		}
		c.checkBlock(n.Body, binds)
		c.popScope()
	case *ast.BreakStmt, *ast.ContinueStmt:
		// no type obligations
	}
}

// inferExpr performs lightweight type inference sufficient to populate the
// side tables; it is not a full checker and assumes well-typed input.
func (c *Checker) inferExpr(e ast.Expr, binds *BindingStack) ValueType {
	switch n := e.(type) {
	case *ast.IntegerLit:
		return IntType()
	case *ast.FloatLit:
		return FloatType()
	case *ast.BoolLit:
		return BoolType()
	case *ast.StringLit:
		return StringType()
	case *ast.InterpStringLit:
		for _, seg := range n.Segments {
			if seg.Expr != nil {
				c.inferExpr(seg.Expr, binds)
			}
		}
		return StringType()
	case *ast.NilLit:
		return OptionalType(VoidType())
	case *ast.Ident:
		if vt, ok := c.lookup(n.Name); ok {
			return vt
		}
		c.errorf(n, diag.CodeUnresolvedName, "unresolved name %q", n.Name)
		return VoidType()
	case *ast.ArrayLiteral:
		elem := VoidType()
		for i, el := range n.Elements {
			t := c.inferExpr(el, binds)
			if i == 0 {
				elem = t
			}
		}
		return ListType(elem)
	case *ast.MapLiteral:
		val := VoidType()
		for i, entry := range n.Entries {
			c.inferExpr(entry.Key, binds)
			t := c.inferExpr(entry.Value, binds)
			if i == 0 {
				val = t
			}
		}
		return DictType(val)
	case *ast.PrefixExpr:
		return c.inferExpr(n.Expr, binds)
	case *ast.UnwrapExpr:
		inner := c.inferExpr(n.Expr, binds)
		if inner.Kind == Optional {
			return *inner.Elem
		}
		return inner
	case *ast.InfixExpr:
		left := c.inferExpr(n.Left, binds)
		right := c.inferExpr(n.Right, binds)
		switch n.Op {
		case "==", "!=", "<", ">", "<=", ">=", "and", "or":
			return BoolType()
		case "??":
			if left.Kind == Optional {
				return *left.Elem
			}
			return left
		default:
			if left.Kind == Float || right.Kind == Float {
				return FloatType()
			}
			return left
		}
	case *ast.RangeExpr:
		c.inferExpr(n.Low, binds)
		c.inferExpr(n.High, binds)
		return ListType(IntType())
	case *ast.AssignExpr:
		return c.inferExpr(n.Value, binds)
	case *ast.IndexExpr:
		target := c.inferExpr(n.Target, binds)
		c.inferExpr(n.Index, binds)
		switch target.Kind {
		case List:
			if _, isRange := n.Index.(*ast.RangeExpr); isRange {
				return target
			}
			return *target.Elem
		case Dict:
			return *target.Value
		case String:
			return StringType()
		default:
			return VoidType()
		}
	case *ast.FieldExpr:
		target := c.inferExpr(n.Target, binds)
		if target.Kind == Struct {
			if def, ok := c.tables.StructDefs[target.Name]; ok {
				for i, name := range def.FieldNames {
					if name == n.Field.Name {
						return def.FieldTypes[i]
					}
				}
			}
		}
		return VoidType()
	case *ast.FunctionLiteral:
		return c.inferLambda(n, binds)
	case *ast.StructLiteral:
		return c.inferStructLiteral(n, binds)
	case *ast.CallExpr:
		return c.inferCall(n, binds)
	case *ast.IfExpr:
		var result ValueType
		for i, clause := range n.Clauses {
			c.inferExpr(clause.Condition, binds)
			c.pushScope()
			t := c.checkBlock(clause.Body, binds)
			c.popScope()
			if i == 0 {
				result = t
			}
		}
		if n.Else != nil {
			c.pushScope()
			c.checkBlock(n.Else, binds)
			c.popScope()
		}
		return result
	case *ast.TryExpr:
		c.pushScope()
		result := c.checkBlock(n.Body, binds)
		c.popScope()
		for _, arm := range n.Arms {
			c.pushScope()
			if arm.Binding != nil {
				errType := c.narrowCatchType(arm)
				c.bind(arm.Binding.Name, errType)
				c.tables.TypeTestMetadata[KeyFromSpan(arm.Span())] = errType
			}
			c.checkBlock(arm.Body, binds)
			c.popScope()
		}
		return result
	case *ast.MatchExpr:
		// Parses successfully; rejected at lowering time (SPEC_FULL §4 FULL).
		return VoidType()
	default:
		return VoidType()
	}
}

func (c *Checker) narrowCatchType(arm *ast.CatchArm) ValueType {
	if len(arm.Patterns) != 1 || arm.Patterns[0].Wildcard {
		return ErrorType("", "")
	}
	p := arm.Patterns[0]
	variant := ""
	if p.VariantName != nil {
		variant = p.VariantName.Name
	}
	return ErrorType(p.ErrorName.Name, variant)
}

func (c *Checker) inferLambda(n *ast.FunctionLiteral, binds *BindingStack) ValueType {
	outer := map[string]bool{}
	for _, scope := range c.scopes {
		for name := range scope {
			outer[name] = true
		}
	}
	c.pushScope()
	paramTypes := make([]ValueType, len(n.Params))
	for i, p := range n.Params {
		vt := VoidType()
		if p.Type != nil {
			if lt, err := Lower(p.Type, binds, c); err == nil {
				vt = lt
			}
		}
		paramTypes[i] = vt
		c.bind(p.Name.Name, vt)
	}
	captures := freeVariables(n.Body, paramSet(n.Params), outer)
	ret := c.checkBlock(n.Body, binds)
	c.popScope()

	c.tables.LambdaCaptures[n.ID] = captures
	c.tables.LambdaSignatures[n.ID] = LambdaInfo{Captures: captures, ParamTypes: paramTypes, ReturnType: ret}
	return FunctionType(paramTypes, ret)
}

func paramSet(params []*ast.Param) map[string]bool {
	s := map[string]bool{}
	for _, p := range params {
		s[p.Name.Name] = true
	}
	return s
}

func (c *Checker) inferStructLiteral(n *ast.StructLiteral, binds *BindingStack) ValueType {
	name, isErrVariant := structLiteralName(n.Name)
	for _, f := range n.Fields {
		c.inferExpr(f.Value, binds)
	}
	span := KeyFromSpan(n.Span())
	if isErrVariant {
		parts := name // "Error.Variant"
		errName, variantName := splitDot(parts)
		c.tables.StructCallMetadata[span] = StructCallMetadata{BaseName: errName}
		return ErrorType(errName, variantName)
	}
	if def, ok := c.tables.StructDefs[name]; ok && len(def.TypeParams) > 0 {
		argTypes := make([]ValueType, len(n.Fields))
		for i, f := range n.Fields {
			argTypes[i] = c.inferExpr(f.Value, binds)
		}
		inst := StructInstance{TypeArguments: argTypes, FieldTypes: argTypes, MangledName: FormatStructVariantName(name, argTypes)}
		c.tables.StructInstances[name] = append(c.tables.StructInstances[name], inst)
		c.tables.StructCallMetadata[span] = StructCallMetadata{BaseName: name, Instance: &inst}
		return StructType(inst.MangledName)
	}
	if _, ok := c.errors[name]; ok {
		c.tables.StructCallMetadata[span] = StructCallMetadata{BaseName: name}
		return ErrorType(name, "")
	}
	c.tables.StructCallMetadata[span] = StructCallMetadata{BaseName: name}
	return StructType(name)
}

func structLiteralName(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name, false
	case *ast.FieldExpr:
		base, _ := structLiteralName(n.Target)
		return base + "." + n.Field.Name, true
	default:
		return "", false
	}
}

func splitDot(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

func (c *Checker) inferCall(n *ast.CallExpr, binds *BindingStack) ValueType {
	argTypes := make([]ValueType, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.inferExpr(a, binds)
	}
	span := KeyFromSpan(n.Span())

	ident, isIdent := n.Callee.(*ast.Ident)
	if !isIdent {
		// collection method call, module call, or indirect closure call;
		// the lowerer (internal/lower) performs full §4.4.1 dispatch. The
		// checker only needs to have inferred argument types above.
		c.inferExpr(n.Callee, binds)
		return VoidType()
	}

	sig, isFn := c.functions[ident.Name]
	if !isFn {
		if _, isErr := c.errors[ident.Name]; isErr {
			c.tables.StructCallMetadata[span] = StructCallMetadata{BaseName: ident.Name}
			return ErrorType(ident.Name, "")
		}
		if _, isStruct := c.structs[ident.Name]; isStruct {
			c.tables.StructCallMetadata[span] = StructCallMetadata{BaseName: ident.Name}
			return StructType(ident.Name)
		}
		return VoidType()
	}

	if len(sig.TypeParams) == 0 {
		retType, _ := Lower(sig.ReturnType, binds, c)
		paramTypes := make([]ValueType, len(sig.ParamTypes))
		for i, p := range sig.ParamTypes {
			paramTypes[i], _ = Lower(p, binds, c)
		}
		inst := FunctionInstance{ParamTypes: paramTypes, ReturnType: retType, CanThrow: sig.CanThrow, MangledName: ident.Name}
		c.tables.FunctionCallMetadata[span] = CallMetadata{BaseName: ident.Name, Instance: &inst}
		return retType
	}

	// Generic: bind type parameters positionally from the inferred
	// argument types, instantiate if this exact combination hasn't been
	// seen (§9 "generics without dynamic dispatch").
	newBinds := NewBindingStack()
	frame := map[string]ValueType{}
	for i, tp := range sig.TypeParams {
		if i < len(argTypes) {
			frame[tp] = argTypes[i]
		}
	}
	newBinds.Push(frame)

	typeArgs := make([]ValueType, len(sig.TypeParams))
	for i, tp := range sig.TypeParams {
		typeArgs[i] = frame[tp]
		_ = tp
	}
	mangled := Mangle(ident.Name, typeArgs)

	existing := c.tables.FunctionInstances[ident.Name]
	var found *FunctionInstance
	for i := range existing {
		if sameTypeArgs(existing[i].TypeArguments, typeArgs) {
			found = &existing[i]
			break
		}
	}
	if found == nil {
		paramTypes := make([]ValueType, len(sig.ParamTypes))
		for i, p := range sig.ParamTypes {
			paramTypes[i], _ = Lower(p, newBinds, c)
		}
		retType, _ := Lower(sig.ReturnType, newBinds, c)
		inst := FunctionInstance{TypeArguments: typeArgs, ParamTypes: paramTypes, ReturnType: retType, CanThrow: sig.CanThrow, MangledName: mangled}
		c.tables.FunctionInstances[ident.Name] = append(c.tables.FunctionInstances[ident.Name], inst)
		found = &c.tables.FunctionInstances[ident.Name][len(c.tables.FunctionInstances[ident.Name])-1]

		// Check the instantiated body once, under the new bindings, so
		// nested calls/structs inside it also get recorded.
		c.checkFunction(sig.Decl, newBinds)
	}
	c.tables.FunctionCallMetadata[span] = CallMetadata{BaseName: ident.Name, Instance: found}
	return found.ReturnType
}

func sameTypeArgs(a, b []ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// freeVariables collects identifiers referenced in body that are neither
// lambda parameters nor locally bound, restricted to names known in the
// enclosing scope (§9 "free variables of the lambda at definition site").
func freeVariables(body *ast.BlockExpr, params map[string]bool, outer map[string]bool) []string {
	seen := map[string]bool{}
	var order []string
	var walkExpr func(e ast.Expr)
	var walkStmt func(s ast.Stmt)

	record := func(name string) {
		if params[name] || seen[name] || !outer[name] {
			return
		}
		seen[name] = true
		order = append(order, name)
	}

	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Ident:
			record(n.Name)
		case *ast.PrefixExpr:
			walkExpr(n.Expr)
		case *ast.UnwrapExpr:
			walkExpr(n.Expr)
		case *ast.InfixExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.RangeExpr:
			walkExpr(n.Low)
			walkExpr(n.High)
		case *ast.AssignExpr:
			walkExpr(n.Target)
			walkExpr(n.Value)
		case *ast.CallExpr:
			walkExpr(n.Callee)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.IndexExpr:
			walkExpr(n.Target)
			walkExpr(n.Index)
		case *ast.FieldExpr:
			walkExpr(n.Target)
		case *ast.ArrayLiteral:
			for _, el := range n.Elements {
				walkExpr(el)
			}
		case *ast.MapLiteral:
			for _, entry := range n.Entries {
				walkExpr(entry.Key)
				walkExpr(entry.Value)
			}
		case *ast.StructLiteral:
			for _, f := range n.Fields {
				walkExpr(f.Value)
			}
		case *ast.FunctionLiteral:
			for _, s := range n.Body.Stmts {
				walkStmt(s)
			}
			if n.Body.Tail != nil {
				walkExpr(n.Body.Tail)
			}
		case *ast.IfExpr:
			for _, clause := range n.Clauses {
				walkExpr(clause.Condition)
				for _, s := range clause.Body.Stmts {
					walkStmt(s)
				}
				if clause.Body.Tail != nil {
					walkExpr(clause.Body.Tail)
				}
			}
			if n.Else != nil {
				for _, s := range n.Else.Stmts {
					walkStmt(s)
				}
			}
		case *ast.TryExpr:
			for _, s := range n.Body.Stmts {
				walkStmt(s)
			}
			for _, arm := range n.Arms {
				for _, s := range arm.Body.Stmts {
					walkStmt(s)
				}
			}
		}
	}

	walkStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.LetStmt:
			walkExpr(n.Value)
		case *ast.ExprStmt:
			walkExpr(n.Expr)
		case *ast.ReturnStmt:
			if n.Value != nil {
				walkExpr(n.Value)
			}
		case *ast.ThrowStmt:
			walkExpr(n.Value)
		case *ast.WhileStmt:
			walkExpr(n.Condition)
			for _, s2 := range n.Body.Stmts {
				walkStmt(s2)
			}
		case *ast.ForStmt:
			walkExpr(n.Iterable)
			for _, s2 := range n.Body.Stmts {
				walkStmt(s2)
			}
		}
	}

	for _, s := range body.Stmts {
		walkStmt(s)
	}
	if body.Tail != nil {
		walkExpr(body.Tail)
	}
	return order
}

var _ = fmt.Sprintf
