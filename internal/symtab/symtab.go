// Package symtab implements the Symbol & Metadata Tables component (§4.3):
// per-module bookkeeping for declared functions, struct/error templates,
// global bindings, and lambda metadata, with the interning and idempotence
// guarantees the spec requires.
package symtab

import (
	"fmt"

	"github.com/teacompiler/teac/internal/types"
)

// FunctionEntry records a declared IR function (§4.3 functions table).
type FunctionEntry struct {
	MangledName string
	ReturnType  types.ValueType
	ParamTypes  []types.ValueType
	CanThrow    bool
	// IRName is the emitted symbol; set once during the declare pass
	// (§4.6) so later body emission and call sites agree on it.
	IRName string
}

// StructEntry records a declared struct's field shape and its emitted
// template global (§3.3, §4.3).
type StructEntry struct {
	Name        string
	FieldNames  []string
	FieldTypes  []types.ValueType
	TemplateIR  string // name of the emitted read-only template global
	declared    bool
}

// ErrorVariantEntry records one (error_name, variant_name) template.
type ErrorVariantEntry struct {
	ErrorName   string
	VariantName string
	FieldNames  []string
	FieldTypes  []types.ValueType
	TemplateIR  string
}

// GlobalSlot records a module-global binding (§3.5).
type GlobalSlot struct {
	Name        string
	IRPointer   string
	Type        types.ValueType
	Mutable     bool
	Initialized bool
}

// LambdaEntry records a lifted lambda's IR function and its captured
// value types, in capture order (§4.3, §4.6).
type LambdaEntry struct {
	IRFunc        string
	CaptureTypes  []types.ValueType
	CaptureNames  []string
}

// Table is the complete per-module symbol table (§4.3).
type Table struct {
	Functions map[string]*FunctionEntry

	structs             map[string]*StructEntry
	structFieldVariants map[string][]types.ValueType // variant_name -> field types
	structVariantBases  map[string]string            // variant_name -> base struct name

	errors      map[string]map[string]*ErrorVariantEntry // error_name -> variant_name -> entry
	errorOrder  map[string][]string                      // error_name -> variant_name, declaration order

	globals map[string]*GlobalSlot

	lambdas map[int]*LambdaEntry

	templateSeq int
}

func New() *Table {
	return &Table{
		Functions:           map[string]*FunctionEntry{},
		structs:             map[string]*StructEntry{},
		structFieldVariants: map[string][]types.ValueType{},
		structVariantBases:  map[string]string{},
		errors:              map[string]map[string]*ErrorVariantEntry{},
		errorOrder:          map[string][]string{},
		globals:             map[string]*GlobalSlot{},
		lambdas:             map[int]*LambdaEntry{},
	}
}

func (t *Table) IsStructName(name string) bool { _, ok := t.structs[name]; return ok }
func (t *Table) IsErrorName(name string) bool   { _, ok := t.errors[name]; return ok }

// DeclareFunction registers a function entry. Re-declaring under the same
// mangled name returns the existing entry (idempotent, §3.5).
func (t *Table) DeclareFunction(mangled string, ret types.ValueType, params []types.ValueType, canThrow bool) *FunctionEntry {
	if e, ok := t.Functions[mangled]; ok {
		return e
	}
	e := &FunctionEntry{MangledName: mangled, ReturnType: ret, ParamTypes: params, CanThrow: canThrow, IRName: mangled}
	t.Functions[mangled] = e
	return e
}

// DeclareStruct materializes a struct template lazily and idempotently
// (§3.5): repeat requests for the same variant name return the original
// entry without allocating a new template pointer.
func (t *Table) DeclareStruct(variantName, baseName string, fieldNames []string, fieldTypes []types.ValueType) *StructEntry {
	if e, ok := t.structs[variantName]; ok {
		return e
	}
	t.templateSeq++
	e := &StructEntry{
		Name:       variantName,
		FieldNames: fieldNames,
		FieldTypes: fieldTypes,
		TemplateIR: fmt.Sprintf("@struct.template.%s.%d", sanitize(variantName), t.templateSeq),
		declared:   true,
	}
	t.structs[variantName] = e
	t.structFieldVariants[variantName] = fieldTypes
	t.structVariantBases[variantName] = baseName
	return e
}

func (t *Table) Struct(variantName string) (*StructEntry, bool) {
	e, ok := t.structs[variantName]
	return e, ok
}

func (t *Table) StructFieldVariants(variantName string) ([]types.ValueType, bool) {
	v, ok := t.structFieldVariants[variantName]
	return v, ok
}

func (t *Table) StructVariantBase(variantName string) (string, bool) {
	v, ok := t.structVariantBases[variantName]
	return v, ok
}

// DeclareErrorVariant materializes an error variant template, keyed by the
// (error_name, variant_name) string pair, interned idempotently and
// pointer-stably (§9 "do deduplicate by string keys"). Populated
// progressively: each first access materializes it (§4.3 invariant).
func (t *Table) DeclareErrorVariant(errorName, variantName string, fieldNames []string, fieldTypes []types.ValueType) *ErrorVariantEntry {
	variants, ok := t.errors[errorName]
	if !ok {
		variants = map[string]*ErrorVariantEntry{}
		t.errors[errorName] = variants
	}
	if e, ok := variants[variantName]; ok {
		return e
	}
	t.templateSeq++
	e := &ErrorVariantEntry{
		ErrorName:   errorName,
		VariantName: variantName,
		FieldNames:  fieldNames,
		FieldTypes:  fieldTypes,
		TemplateIR:  fmt.Sprintf("@error.template.%s.%s.%d", sanitize(errorName), sanitize(variantName), t.templateSeq),
	}
	variants[variantName] = e
	t.errorOrder[errorName] = append(t.errorOrder[errorName], variantName)
	return e
}

func (t *Table) ErrorVariant(errorName, variantName string) (*ErrorVariantEntry, bool) {
	variants, ok := t.errors[errorName]
	if !ok {
		return nil, false
	}
	e, ok := variants[variantName]
	return e, ok
}

// ErrorVariants returns every variant of an error type, in the order they
// were first declared via DeclareErrorVariant, for use in catch-pattern
// OR-dispatch against an unqualified error type (§4.5.2).
func (t *Table) ErrorVariants(errorName string) []*ErrorVariantEntry {
	variants, ok := t.errors[errorName]
	if !ok {
		return nil
	}
	order := t.errorOrder[errorName]
	out := make([]*ErrorVariantEntry, 0, len(order))
	for _, name := range order {
		out = append(out, variants[name])
	}
	return out
}

// DeclareGlobal registers a module-global binding. Redeclaring with a
// different type or mutability is rejected (§4.3 invariant) by returning
// ok=false; callers surface this as a compile error.
func (t *Table) DeclareGlobal(name string, typ types.ValueType, mutable bool) (*GlobalSlot, bool) {
	if existing, ok := t.globals[name]; ok {
		if !existing.Type.Equal(typ) || existing.Mutable != mutable {
			return existing, false
		}
		return existing, true
	}
	slot := &GlobalSlot{Name: name, IRPointer: fmt.Sprintf("@global.%s", sanitize(name)), Type: typ, Mutable: mutable}
	t.globals[name] = slot
	return slot, true
}

func (t *Table) Global(name string) (*GlobalSlot, bool) {
	g, ok := t.globals[name]
	return g, ok
}

// DeclareLambda registers a lifted lambda's IR function name and capture
// shape (§4.3, §4.6).
func (t *Table) DeclareLambda(lambdaID int, irFunc string, captureNames []string, captureTypes []types.ValueType) *LambdaEntry {
	if e, ok := t.lambdas[lambdaID]; ok {
		return e
	}
	e := &LambdaEntry{IRFunc: irFunc, CaptureTypes: captureTypes, CaptureNames: captureNames}
	t.lambdas[lambdaID] = e
	return e
}

func (t *Table) Lambda(lambdaID int) (*LambdaEntry, bool) {
	e, ok := t.lambdas[lambdaID]
	return e, ok
}

func sanitize(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			out = append(out, c)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}
