package types

import "github.com/teacompiler/teac/internal/lexer"

// CallSiteKey identifies a call expression by its source span, matching
// the spec's "call_site_span" keys (§3.4).
type CallSiteKey struct {
	Line, Column, Start, End int
}

func KeyFromSpan(s lexer.Span) CallSiteKey {
	return CallSiteKey{Line: s.Line, Column: s.Column, Start: s.Start, End: s.End}
}

// FunctionInstance records one monomorphized instantiation of a generic
// function (§3.4 function_instances).
type FunctionInstance struct {
	TypeArguments []ValueType
	ParamTypes    []ValueType
	ReturnType    ValueType
	CanThrow      bool
	MangledName   string
}

// StructInstance records one monomorphized instantiation of a generic
// struct (§3.4 struct_instances).
type StructInstance struct {
	TypeArguments []ValueType
	FieldTypes    []ValueType
	MangledName   string
}

// CallMetadata resolves a call site to a concrete function/struct instance.
type CallMetadata struct {
	BaseName string
	Instance *FunctionInstance
}

type StructCallMetadata struct {
	BaseName string
	Instance *StructInstance
}

// LambdaInfo records a lambda's free-variable capture list and signature
// (§3.4 lambda_captures / lambda_signatures).
type LambdaInfo struct {
	Captures   []string
	ParamTypes []ValueType
	ReturnType ValueType
}

// StructDef / ErrorVariantDef mirror the declared shape used to build
// symbol-table templates (§3.3).
type StructDef struct {
	Name       string
	TypeParams []string
	FieldNames []string
	FieldTypes []ValueType
}

type ErrorVariantDef struct {
	Name       string
	FieldNames []string
	FieldTypes []ValueType
}

type ErrorDef struct {
	Name     string
	Variants []ErrorVariantDef
}

// SideTables is the complete bundle the core consumes before lowering
// (§3.4). It is intentionally a plain data bag: the checker populates it,
// the lowerer only reads it.
type SideTables struct {
	LambdaCaptures   map[int][]string
	LambdaSignatures map[int]LambdaInfo

	StructDefs map[string]StructDef
	ErrorDefs  map[string]ErrorDef

	FunctionInstances map[string][]FunctionInstance
	StructInstances   map[string][]StructInstance

	FunctionCallMetadata map[CallSiteKey]CallMetadata
	StructCallMetadata   map[CallSiteKey]StructCallMetadata

	BindingTypes map[CallSiteKey]ValueType

	// TypeTestMetadata maps a catch arm's span to the error/variant type
	// its binding is narrowed to (§3.4 type_test_metadata); arms without a
	// binding get no entry.
	TypeTestMetadata map[CallSiteKey]ValueType
}

func NewSideTables() *SideTables {
	return &SideTables{
		LambdaCaptures:       map[int][]string{},
		LambdaSignatures:     map[int]LambdaInfo{},
		StructDefs:           map[string]StructDef{},
		ErrorDefs:            map[string]ErrorDef{},
		FunctionInstances:    map[string][]FunctionInstance{},
		StructInstances:      map[string][]StructInstance{},
		FunctionCallMetadata: map[CallSiteKey]CallMetadata{},
		StructCallMetadata:   map[CallSiteKey]StructCallMetadata{},
		BindingTypes:         map[CallSiteKey]ValueType{},
		TypeTestMetadata:     map[CallSiteKey]ValueType{},
	}
}
