package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teacompiler/teac/internal/ast"
	"github.com/teacompiler/teac/internal/lexer"
	"github.com/teacompiler/teac/internal/parser"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	p := parser.New(lexer.New(src))
	f := p.ParseFile()
	require.Empty(t, p.Errors)
	return f
}

func TestParseFnDecl(t *testing.T) {
	f := parse(t, `fn add(a: Int, b: Int) -> Int { a + b }`)
	require.Len(t, f.Decls, 1)
	fn, ok := f.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name.Name)
	assert.Len(t, fn.Params, 2)
	assert.NotNil(t, fn.Body.Tail)
}

func TestParseStructDecl(t *testing.T) {
	f := parse(t, `struct Point { x: Int, y: Int }`)
	st, ok := f.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", st.Name.Name)
	assert.Len(t, st.Fields, 2)
}

func TestParseErrorDecl(t *testing.T) {
	f := parse(t, `error IoError { NotFound(path: String), PermissionDenied }`)
	ed, ok := f.Decls[0].(*ast.ErrorDecl)
	require.True(t, ok)
	assert.Len(t, ed.Variants, 2)
	assert.Len(t, ed.Variants[0].Fields, 1)
	assert.Len(t, ed.Variants[1].Fields, 0)
}

func TestParseWhileAndMutation(t *testing.T) {
	f := parse(t, `
fn count() -> Int {
	mut total = 0;
	mut i = 0;
	while i < 10 {
		total = total + i;
		i = i + 1;
	}
	total
}`)
	fn := f.Decls[0].(*ast.FnDecl)
	assert.NotNil(t, fn.Body.Tail)
}

func TestParseForOverDict(t *testing.T) {
	f := parse(t, `
fn sumValues(d: {String: Int}) -> Int {
	mut total = 0;
	for (k, v) in d {
		total = total + v;
	}
	total
}`)
	fn := f.Decls[0].(*ast.FnDecl)
	stmt := fn.Body.Stmts[1].(*ast.ForStmt)
	require.NotNil(t, stmt.KeyName)
	assert.Equal(t, "k", stmt.KeyName.Name)
	assert.Equal(t, "v", stmt.ValueName.Name)
}

func TestParseTryCatch(t *testing.T) {
	f := parse(t, `
fn safeDiv(a: Int, b: Int) -> Int {
	try {
		a / b
	} catch MathError.DivByZero {
		0
	} catch _ as e {
		-1
	}
}`)
	fn := f.Decls[0].(*ast.FnDecl)
	tryExpr, ok := fn.Body.Tail.(*ast.TryExpr)
	require.True(t, ok)
	assert.Len(t, tryExpr.Arms, 2)
	assert.True(t, tryExpr.Arms[1].Patterns[0].Wildcard)
	assert.Equal(t, "e", tryExpr.Arms[1].Binding.Name)
}

func TestParseInterpolatedString(t *testing.T) {
	f := parse(t, `fn greet(name: String) -> String { "hello ${name}!" }`)
	fn := f.Decls[0].(*ast.FnDecl)
	lit, ok := fn.Body.Tail.(*ast.InterpStringLit)
	require.True(t, ok)
	require.Len(t, lit.Segments, 3)
	assert.Equal(t, "hello ", lit.Segments[0].Literal)
	assert.NotNil(t, lit.Segments[1].Expr)
	assert.Equal(t, "!", lit.Segments[2].Literal)
}

func TestParseLambdaAndCollectionCall(t *testing.T) {
	f := parse(t, `
fn doubled(xs: [Int]) -> [Int] {
	xs.map(|x| { x * 2 })
}`)
	fn := f.Decls[0].(*ast.FnDecl)
	call, ok := fn.Body.Tail.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 1)
	_, ok = call.Args[0].(*ast.FunctionLiteral)
	assert.True(t, ok)
}

func TestParseStructLiteral(t *testing.T) {
	f := parse(t, `
fn origin() -> Point {
	Point { x: 0, y: 0 }
}`)
	fn := f.Decls[0].(*ast.FnDecl)
	lit, ok := fn.Body.Tail.(*ast.StructLiteral)
	require.True(t, ok)
	assert.Len(t, lit.Fields, 2)
}

func TestParseOptionalParamAndUnwrap(t *testing.T) {
	f := parse(t, `
fn pick(a: Int?, b: Int) -> Int {
	a!
}`)
	fn := f.Decls[0].(*ast.FnDecl)
	_, ok := fn.Body.Tail.(*ast.UnwrapExpr)
	assert.True(t, ok)
}
