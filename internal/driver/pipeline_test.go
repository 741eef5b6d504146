package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teacompiler/teac/internal/mir"
)

func TestVerifyModuleRejectsMissingTerminator(t *testing.T) {
	m := mir.NewModule("test")
	fn := mir.NewBuilder("bad_fn", nil, "void")
	fn.CurrentBlock().Instrs = append(fn.CurrentBlock().Instrs, &mir.Instr{Op: mir.OpAdd})
	m.AddFunction(fn.Func)

	err := VerifyModule(m)
	assert.Error(t, err)
}

func TestVerifyModuleAcceptsWellFormedFunction(t *testing.T) {
	m := mir.NewModule("test")
	fn := mir.NewBuilder("good_fn", nil, "void")
	fn.RetVoid()
	m.AddFunction(fn.Func)

	err := VerifyModule(m)
	assert.NoError(t, err)
}

func TestUnrecognizedRuntimeSymbols(t *testing.T) {
	ir := "call %tv @tea_alloc_list(i64 0)\ncall %tv @tea_made_up_symbol(i64 0)\n"
	unknown := unrecognizedRuntimeSymbols(ir)
	assert.Equal(t, []string{"tea_made_up_symbol"}, unknown)
}

func TestNormalizeTripleCollapsesArchAndDarwinSuffix(t *testing.T) {
	assert.Equal(t, "aarch64-apple-darwin", NormalizeTriple("arm64-apple-darwin23.0.0"))
	assert.Equal(t, "x86_64-pc-windows-msvc", NormalizeTriple("x86_64-pc-windows-msvc"))
}

func TestUsesPIC(t *testing.T) {
	assert.True(t, UsesPIC("x86_64-unknown-linux-gnu"))
	assert.False(t, UsesPIC("x86_64-pc-windows-msvc"))
}
