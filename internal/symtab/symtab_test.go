package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teacompiler/teac/internal/symtab"
	"github.com/teacompiler/teac/internal/types"
)

func TestDeclareStructIdempotent(t *testing.T) {
	tab := symtab.New()
	e1 := tab.DeclareStruct("Point", "Point", []string{"x", "y"}, []types.ValueType{types.FloatType(), types.FloatType()})
	e2 := tab.DeclareStruct("Point", "Point", []string{"x", "y"}, []types.ValueType{types.FloatType(), types.FloatType()})
	assert.Same(t, e1, e2)
	assert.Equal(t, e1.TemplateIR, e2.TemplateIR)
}

func TestDeclareErrorVariantInternsByStringKey(t *testing.T) {
	tab := symtab.New()
	e1 := tab.DeclareErrorVariant("IoError", "NotFound", []string{"path"}, []types.ValueType{types.StringType()})
	e2 := tab.DeclareErrorVariant("IoError", "NotFound", []string{"path"}, []types.ValueType{types.StringType()})
	assert.Same(t, e1, e2)

	tab.DeclareErrorVariant("IoError", "PermissionDenied", nil, nil)
	variants := tab.ErrorVariants("IoError")
	assert.Len(t, variants, 2)
	assert.Equal(t, "NotFound", variants[0].VariantName)
	assert.Equal(t, "PermissionDenied", variants[1].VariantName)
}

func TestDeclareGlobalRejectsTypeChange(t *testing.T) {
	tab := symtab.New()
	_, ok := tab.DeclareGlobal("counter", types.IntType(), true)
	assert.True(t, ok)
	_, ok = tab.DeclareGlobal("counter", types.StringType(), true)
	assert.False(t, ok)
}

func TestDeclareFunctionIdempotent(t *testing.T) {
	tab := symtab.New()
	e1 := tab.DeclareFunction("add", types.IntType(), []types.ValueType{types.IntType(), types.IntType()}, false)
	e2 := tab.DeclareFunction("add", types.IntType(), []types.ValueType{types.IntType(), types.IntType()}, false)
	assert.Same(t, e1, e2)
}
