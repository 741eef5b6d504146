package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenameEntrySymbolRewritesDefinitionAndCallSites(t *testing.T) {
	ir := "define %tv @main() {\n  ret void\n}\n\ncall void @main()\n"
	got := renameEntrySymbol(ir, "tea_start")

	assert.Contains(t, got, "define %tv @tea_start()")
	assert.Contains(t, got, "call void @tea_start()")
	assert.NotContains(t, got, "@main")
}

func TestRenameEntrySymbolLeavesUnrelatedSymbolsAlone(t *testing.T) {
	ir := "declare %tv @tea_alloc_struct(ptr)\ndefine %tv @main() {\n  ret void\n}\n"
	got := renameEntrySymbol(ir, "run")

	assert.Contains(t, got, "@tea_alloc_struct")
	assert.Contains(t, got, "@run")
}
