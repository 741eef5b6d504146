// Package types implements type lowering (§4.1): mapping source-level type
// expressions to the low-level ValueType lattice, generic name mangling,
// and a minimal checker that produces the semantic side-tables the rest of
// the core consumes (§3.4).
package types

import (
	"fmt"
	"strings"
)

// Kind identifies a member of the ValueType sum (§3.1).
type Kind int

const (
	Void Kind = iota
	Int
	Float
	Bool
	String
	List
	Dict
	Struct
	Error
	Function
	Optional
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "Void"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case List:
		return "List"
	case Dict:
		return "Dict"
	case Struct:
		return "Struct"
	case Error:
		return "Error"
	case Function:
		return "Function"
	case Optional:
		return "Optional"
	default:
		return "Unknown"
	}
}

// ValueType is the compile-time low-level type lattice (§3.1).
type ValueType struct {
	Kind Kind

	Elem  *ValueType // List element / Optional inner
	Value *ValueType // Dict value type

	Name        string // Struct name (mangled) / Error name
	VariantName string // Error variant name; "" means "any variant"

	Params []ValueType // Function params
	Return *ValueType  // Function return
}

func VoidType() ValueType   { return ValueType{Kind: Void} }
func IntType() ValueType    { return ValueType{Kind: Int} }
func FloatType() ValueType  { return ValueType{Kind: Float} }
func BoolType() ValueType   { return ValueType{Kind: Bool} }
func StringType() ValueType { return ValueType{Kind: String} }

func ListType(elem ValueType) ValueType {
	e := elem
	return ValueType{Kind: List, Elem: &e}
}

func DictType(value ValueType) ValueType {
	v := value
	return ValueType{Kind: Dict, Value: &v}
}

func StructType(name string) ValueType { return ValueType{Kind: Struct, Name: name} }

func ErrorType(name, variant string) ValueType {
	return ValueType{Kind: Error, Name: name, VariantName: variant}
}

func FunctionType(params []ValueType, ret ValueType) ValueType {
	r := ret
	return ValueType{Kind: Function, Params: params, Return: &r}
}

func OptionalType(inner ValueType) ValueType {
	i := inner
	return ValueType{Kind: Optional, Elem: &i}
}

// Equal reports structural equality of two ValueTypes.
func (v ValueType) Equal(o ValueType) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case List, Optional:
		return v.Elem.Equal(*o.Elem)
	case Dict:
		return v.Value.Equal(*o.Value)
	case Struct:
		return v.Name == o.Name
	case Error:
		return v.Name == o.Name && v.VariantName == o.VariantName
	case Function:
		if len(v.Params) != len(o.Params) || !v.Return.Equal(*o.Return) {
			return false
		}
		for i := range v.Params {
			if !v.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders a ValueType for diagnostics and mangled-name debugging.
func (v ValueType) String() string {
	switch v.Kind {
	case List:
		return fmt.Sprintf("List(%s)", v.Elem.String())
	case Dict:
		return fmt.Sprintf("Dict(%s)", v.Value.String())
	case Struct:
		return fmt.Sprintf("Struct(%s)", v.Name)
	case Error:
		if v.VariantName == "" {
			return fmt.Sprintf("Error(%s)", v.Name)
		}
		return fmt.Sprintf("Error(%s.%s)", v.Name, v.VariantName)
	case Optional:
		return fmt.Sprintf("Optional(%s)", v.Elem.String())
	case Function:
		parts := make([]string, len(v.Params))
		for i, p := range v.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("Function(%s)->%s", strings.Join(parts, ","), v.Return.String())
	default:
		return v.Kind.String()
	}
}

// Mangle produces a deterministic, collision-resistant symbol for a
// generic instantiation (§4.1). Identical arguments always produce
// identical output.
func Mangle(name string, typeArgs []ValueType) string {
	if len(typeArgs) == 0 {
		return name
	}
	parts := make([]string, len(typeArgs))
	for i, t := range typeArgs {
		parts[i] = mangleOne(t)
	}
	return name + "$" + strings.Join(parts, "$")
}

func mangleOne(v ValueType) string {
	switch v.Kind {
	case List:
		return "L" + mangleOne(*v.Elem)
	case Dict:
		return "D" + mangleOne(*v.Value)
	case Optional:
		return "O" + mangleOne(*v.Elem)
	case Struct:
		return "S" + v.Name
	case Error:
		if v.VariantName == "" {
			return "E" + v.Name
		}
		return "E" + v.Name + "_" + v.VariantName
	case Function:
		parts := make([]string, len(v.Params))
		for i, p := range v.Params {
			parts[i] = mangleOne(p)
		}
		return "F" + strings.Join(parts, "_") + "_" + mangleOne(*v.Return)
	default:
		return v.Kind.String()
	}
}

// FormatStructVariantName produces the name used in ValueType::Struct for
// an instantiated generic struct (§4.1).
func FormatStructVariantName(structName string, typeArgs []ValueType) string {
	return Mangle(structName, typeArgs)
}
