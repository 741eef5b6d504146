package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teacompiler/teac/internal/lexer"
	"github.com/teacompiler/teac/internal/lower"
	"github.com/teacompiler/teac/internal/parser"
	"github.com/teacompiler/teac/internal/symtab"
	"github.com/teacompiler/teac/internal/types"
)

func lowerSource(t *testing.T, src string) *lower.Lowerer {
	t.Helper()
	p := parser.New(lexer.New(src))
	f := p.ParseFile()
	require.Empty(t, p.Errors)

	checker := types.NewChecker()
	tables := checker.Check(f)
	require.Empty(t, checker.Diagnostics)

	symbols := symtab.New()
	l := lower.New(tables, symbols)
	l.LowerFile(f)
	require.Empty(t, l.Rejected())
	return l
}

// TestStructLiteralFieldsAreDeclared ensures every field write in a struct
// literal lands at the field's declared index rather than always index 0,
// which requires the struct declaration pass to have registered the
// struct's layout before the literal is lowered.
func TestStructLiteralFieldsAreDeclared(t *testing.T) {
	l := lowerSource(t, `
struct Point { x: Int, y: Int }

fn origin() -> Point {
	Point { x: 0, y: 0 }
}`)

	entry, ok := l.Symbols.Struct("Point")
	require.True(t, ok)
	require.NotNil(t, entry)
	assert.Equal(t, []string{"x", "y"}, entry.FieldNames)
}

// TestErrorVariantIsDeclared ensures error variants are registered so
// field construction and catch-pattern dispatch can resolve them.
func TestErrorVariantIsDeclared(t *testing.T) {
	l := lowerSource(t, `
error IoError { NotFound(path: String), PermissionDenied }

fn notFound(p: String) -> IoError {
	IoError.NotFound { path: p }
}`)

	variant, ok := l.Symbols.ErrorVariant("IoError", "NotFound")
	require.True(t, ok)
	assert.Equal(t, []string{"path"}, variant.FieldNames)

	variants := l.Symbols.ErrorVariants("IoError")
	assert.Len(t, variants, 2)
}
