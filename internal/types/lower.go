package types

import (
	"fmt"

	"github.com/teacompiler/teac/internal/ast"
)

// ErrUnresolvedTypeParam is returned by Lower when a generic parameter has
// no active binding on the stack (§4.1 edge case).
type ErrUnresolvedTypeParam struct {
	Name string
}

func (e *ErrUnresolvedTypeParam) Error() string {
	return fmt.Sprintf("unresolved type parameter %q", e.Name)
}

// ErrDictKeyNotString describes a Dict type annotation with a non-String
// key type (§4.1 edge case). Lower never returns it: ast.DictType carries
// no key type, and the parser reports a non-String key itself.
type ErrDictKeyNotString struct{}

func (e *ErrDictKeyNotString) Error() string { return "dict key type must be String" }

// BindingStack substitutes generic type parameters while lowering the body
// of an instantiated function or struct (§4.1, §9 "generics without
// dynamic dispatch").
type BindingStack struct {
	frames []map[string]ValueType
}

func NewBindingStack() *BindingStack { return &BindingStack{} }

func (b *BindingStack) Push(bindings map[string]ValueType) {
	b.frames = append(b.frames, bindings)
}

func (b *BindingStack) Pop() {
	b.frames = b.frames[:len(b.frames)-1]
}

func (b *BindingStack) lookup(name string) (ValueType, bool) {
	for i := len(b.frames) - 1; i >= 0; i-- {
		if v, ok := b.frames[i][name]; ok {
			return v, true
		}
	}
	return ValueType{}, false
}

// StructRegistry resolves bare struct/error names to ValueType during
// lowering; satisfied by internal/symtab.Table in the driver wiring.
type StructRegistry interface {
	IsStructName(name string) bool
	IsErrorName(name string) bool
}

// Lower maps a source type expression to its ValueType (§4.1). Nil and
// Void both lower to Void.
func Lower(t ast.TypeExpr, binds *BindingStack, reg StructRegistry) (ValueType, error) {
	if t == nil {
		return VoidType(), nil
	}
	switch n := t.(type) {
	case *ast.NamedType:
		return lowerNamed(n, binds, reg)
	case *ast.ListType:
		elem, err := Lower(n.Elem, binds, reg)
		if err != nil {
			return ValueType{}, err
		}
		return ListType(elem), nil
	case *ast.DictType:
		val, err := Lower(n.Value, binds, reg)
		if err != nil {
			return ValueType{}, err
		}
		return DictType(val), nil
	case *ast.OptionalType:
		inner, err := Lower(n.Inner, binds, reg)
		if err != nil {
			return ValueType{}, err
		}
		return OptionalType(inner), nil
	case *ast.FunctionType:
		params := make([]ValueType, len(n.Params))
		for i, p := range n.Params {
			pv, err := Lower(p, binds, reg)
			if err != nil {
				return ValueType{}, err
			}
			params[i] = pv
		}
		ret, err := Lower(n.Return, binds, reg)
		if err != nil {
			return ValueType{}, err
		}
		return FunctionType(params, ret), nil
	case *ast.ErrorType:
		variant := ""
		if n.VariantName != nil {
			variant = n.VariantName.Name
		}
		return ErrorType(n.ErrorName.Name, variant), nil
	default:
		return ValueType{}, fmt.Errorf("unsupported type expression %T", t)
	}
}

func lowerNamed(n *ast.NamedType, binds *BindingStack, reg StructRegistry) (ValueType, error) {
	switch n.Name.Name {
	case "Int":
		return IntType(), nil
	case "Float":
		return FloatType(), nil
	case "Bool":
		return BoolType(), nil
	case "String":
		return StringType(), nil
	case "Void", "Nil":
		return VoidType(), nil
	}
	if v, ok := binds.lookup(n.Name.Name); ok {
		return v, nil
	}
	if len(n.Args) == 0 {
		if reg != nil && reg.IsErrorName(n.Name.Name) {
			return ErrorType(n.Name.Name, ""), nil
		}
		// Bare uppercase identifiers with no recorded binding and no
		// registry hit are assumed to be (possibly forward-declared)
		// struct names; the symbol table materializes the template
		// lazily on first use (§3.5).
		if looksLikeTypeParam(n.Name.Name) {
			return ValueType{}, &ErrUnresolvedTypeParam{Name: n.Name.Name}
		}
		return StructType(n.Name.Name), nil
	}
	args := make([]ValueType, len(n.Args))
	for i, a := range n.Args {
		av, err := Lower(a, binds, reg)
		if err != nil {
			return ValueType{}, err
		}
		args[i] = av
	}
	return StructType(FormatStructVariantName(n.Name.Name, args)), nil
}

// looksLikeTypeParam applies the conventional single-uppercase-letter
// heuristic (T, U, K, V, ...) used throughout the fixtures and the
// original source's generic declarations.
func looksLikeTypeParam(name string) bool {
	return len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z'
}
