package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredSymbolsIncludesNamedConstants(t *testing.T) {
	symbols := RequiredSymbols()
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		assert.False(t, seen[s], "duplicate symbol %s", s)
		seen[s] = true
	}

	for _, named := range []string{
		SymErrorCurrent, SymErrorSetCurrent, SymErrorClearCurrent, SymErrorGetTemplate,
		SymPanic, SymUnwrapFailed,
	} {
		assert.True(t, seen[named], "RequiredSymbols missing named constant %s", named)
	}
}
