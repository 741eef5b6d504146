// Package ast defines the node types the core consumes as input: a fully
// parsed module tree. Producing this tree (lexing and parsing) is an
// external collaborator; this package only fixes its shape.
package ast

import "github.com/teacompiler/teac/internal/lexer"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl represents a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// TypeExpr represents a type annotation expression.
type TypeExpr interface {
	Node
	typeNode()
}

// File represents a parsed compilation unit.
type File struct {
	Package *PackageDecl
	Uses    []*UseDecl
	Decls   []Decl
	span    lexer.Span
}

func (f *File) Span() lexer.Span     { return f.span }
func (f *File) SetSpan(s lexer.Span) { f.span = s }
func NewFile(span lexer.Span) *File  { return &File{span: span} }

// PackageDecl names the package a file belongs to.
type PackageDecl struct {
	Name *Ident
	span lexer.Span
}

func (d *PackageDecl) Span() lexer.Span { return d.span }
func NewPackageDecl(name *Ident, span lexer.Span) *PackageDecl {
	return &PackageDecl{Name: name, span: span}
}

// UseDecl imports a module, optionally under an alias. The lowerer does not
// read use declarations: builtin call dispatch (§4.4.1) matches fixed
// module names.
type UseDecl struct {
	Path  []*Ident
	Alias *Ident
	span  lexer.Span
}

func (d *UseDecl) Span() lexer.Span { return d.span }
func (*UseDecl) declNode()          {}
func NewUseDecl(path []*Ident, alias *Ident, span lexer.Span) *UseDecl {
	return &UseDecl{Path: path, Alias: alias, span: span}
}

// AliasName returns the effective module alias: the explicit alias if
// present, otherwise the last path segment.
func (d *UseDecl) AliasName() string {
	if d.Alias != nil {
		return d.Alias.Name
	}
	if len(d.Path) == 0 {
		return ""
	}
	return d.Path[len(d.Path)-1].Name
}

// FnDecl represents a function declaration.
type FnDecl struct {
	Pub        bool
	Name       *Ident
	TypeParams []*TypeParam
	Params     []*Param
	ReturnType TypeExpr // nil means Void
	CanThrow   bool     // declared effect includes throwing (§4.5.2)
	Body       *BlockExpr
	span       lexer.Span
}

func (d *FnDecl) Span() lexer.Span { return d.span }
func (*FnDecl) declNode()          {}
func NewFnDecl(pub bool, name *Ident, typeParams []*TypeParam, params []*Param, ret TypeExpr, canThrow bool, body *BlockExpr, span lexer.Span) *FnDecl {
	return &FnDecl{Pub: pub, Name: name, TypeParams: typeParams, Params: params, ReturnType: ret, CanThrow: canThrow, Body: body, span: span}
}

// TypeParam represents a generic type parameter (no bounds: the checker
// resolves constraints outside the core's scope).
type TypeParam struct {
	Name *Ident
	span lexer.Span
}

func (p *TypeParam) Span() lexer.Span { return p.span }
func NewTypeParam(name *Ident, span lexer.Span) *TypeParam {
	return &TypeParam{Name: name, span: span}
}

// Param represents a function parameter.
type Param struct {
	Name *Ident
	Type TypeExpr
	span lexer.Span
}

func (p *Param) Span() lexer.Span { return p.span }
func NewParam(name *Ident, typ TypeExpr, span lexer.Span) *Param {
	return &Param{Name: name, Type: typ, span: span}
}

// BlockExpr represents a sequence of statements with an optional tail
// expression (the block's value when used as an expression).
type BlockExpr struct {
	Stmts []Stmt
	Tail  Expr
	span  lexer.Span
}

func (b *BlockExpr) Span() lexer.Span { return b.span }
func (*BlockExpr) exprNode()          {}
func NewBlockExpr(stmts []Stmt, tail Expr, span lexer.Span) *BlockExpr {
	return &BlockExpr{Stmts: stmts, Tail: tail, span: span}
}

// LetStmt represents a var binding. Mutable bindings become stack slots;
// immutable bindings stay SSA values (§3.5).
type LetStmt struct {
	Mutable bool
	Name    *Ident
	Type    TypeExpr
	Value   Expr
	span    lexer.Span
}

func (s *LetStmt) Span() lexer.Span { return s.span }
func (*LetStmt) stmtNode()          {}
func NewLetStmt(mutable bool, name *Ident, typ TypeExpr, value Expr, span lexer.Span) *LetStmt {
	return &LetStmt{Mutable: mutable, Name: name, Type: typ, Value: value, span: span}
}

// StructDecl represents a record type declaration.
type StructDecl struct {
	Pub        bool
	Name       *Ident
	TypeParams []*TypeParam
	Fields     []*StructField
	span       lexer.Span
}

func (d *StructDecl) Span() lexer.Span { return d.span }
func (*StructDecl) declNode()          {}
func NewStructDecl(pub bool, name *Ident, typeParams []*TypeParam, fields []*StructField, span lexer.Span) *StructDecl {
	return &StructDecl{Pub: pub, Name: name, TypeParams: typeParams, Fields: fields, span: span}
}

// StructField represents a single field within a struct declaration.
type StructField struct {
	Name *Ident
	Type TypeExpr
	span lexer.Span
}

func (f *StructField) Span() lexer.Span { return f.span }
func NewStructField(name *Ident, typ TypeExpr, span lexer.Span) *StructField {
	return &StructField{Name: name, Type: typ, span: span}
}

// ErrorDecl represents a tagged error declaration: a named error type with
// one or more variants, each carrying its own field list (§3.1, §3.3).
type ErrorDecl struct {
	Pub      bool
	Name     *Ident
	Variants []*ErrorVariant
	span     lexer.Span
}

func (d *ErrorDecl) Span() lexer.Span { return d.span }
func (*ErrorDecl) declNode()          {}
func NewErrorDecl(pub bool, name *Ident, variants []*ErrorVariant, span lexer.Span) *ErrorDecl {
	return &ErrorDecl{Pub: pub, Name: name, Variants: variants, span: span}
}

// ErrorVariant represents one variant of an error type.
type ErrorVariant struct {
	Name   *Ident
	Fields []*StructField
	span   lexer.Span
}

func (v *ErrorVariant) Span() lexer.Span { return v.span }
func NewErrorVariant(name *Ident, fields []*StructField, span lexer.Span) *ErrorVariant {
	return &ErrorVariant{Name: name, Fields: fields, span: span}
}

// ConstDecl represents a top-level global binding (§3.5).
type ConstDecl struct {
	Pub     bool
	Mutable bool
	Name    *Ident
	Type    TypeExpr
	Value   Expr
	span    lexer.Span
}

func (d *ConstDecl) Span() lexer.Span { return d.span }
func (*ConstDecl) declNode()          {}
func NewConstDecl(pub bool, mutable bool, name *Ident, typ TypeExpr, value Expr, span lexer.Span) *ConstDecl {
	return &ConstDecl{Pub: pub, Mutable: mutable, Name: name, Type: typ, Value: value, span: span}
}

// TestDecl represents a `test "name" { ... }` block.
type TestDecl struct {
	Name *StringLit
	Body *BlockExpr
	span lexer.Span
}

func (d *TestDecl) Span() lexer.Span { return d.span }
func (*TestDecl) declNode()          {}
func NewTestDecl(name *StringLit, body *BlockExpr, span lexer.Span) *TestDecl {
	return &TestDecl{Name: name, Body: body, span: span}
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	Value Expr // nil for void return
	span  lexer.Span
}

func (s *ReturnStmt) Span() lexer.Span { return s.span }
func (*ReturnStmt) stmtNode()          {}
func NewReturnStmt(value Expr, span lexer.Span) *ReturnStmt {
	return &ReturnStmt{Value: value, span: span}
}

// ThrowStmt represents a throw statement (§4.5, §7).
type ThrowStmt struct {
	Value Expr
	span  lexer.Span
}

func (s *ThrowStmt) Span() lexer.Span { return s.span }
func (*ThrowStmt) stmtNode()          {}
func NewThrowStmt(value Expr, span lexer.Span) *ThrowStmt {
	return &ThrowStmt{Value: value, span: span}
}

// ExprStmt represents an expression statement.
type ExprStmt struct {
	Expr Expr
	span lexer.Span
}

func (s *ExprStmt) Span() lexer.Span { return s.span }
func (*ExprStmt) stmtNode()          {}
func NewExprStmt(expr Expr, span lexer.Span) *ExprStmt {
	return &ExprStmt{Expr: expr, span: span}
}

// IfClause is one branch of an if/else-if chain.
type IfClause struct {
	Condition Expr
	Body      *BlockExpr
	span      lexer.Span
}

func (c *IfClause) Span() lexer.Span { return c.span }
func NewIfClause(cond Expr, body *BlockExpr, span lexer.Span) *IfClause {
	return &IfClause{Condition: cond, Body: body, span: span}
}

// IfExpr represents a conditional used as a value (§4.4 three-block pattern).
type IfExpr struct {
	Clauses []*IfClause
	Else    *BlockExpr
	span    lexer.Span
}

func (e *IfExpr) Span() lexer.Span { return e.span }
func (*IfExpr) exprNode()          {}
func NewIfExpr(clauses []*IfClause, els *BlockExpr, span lexer.Span) *IfExpr {
	return &IfExpr{Clauses: clauses, Else: els, span: span}
}

// IfStmt represents a conditional used as a statement (no result value).
type IfStmt struct {
	Clauses []*IfClause
	Else    *BlockExpr
	span    lexer.Span
}

func (s *IfStmt) Span() lexer.Span { return s.span }
func (*IfStmt) stmtNode()          {}
func NewIfStmt(clauses []*IfClause, els *BlockExpr, span lexer.Span) *IfStmt {
	return &IfStmt{Clauses: clauses, Else: els, span: span}
}

// WhileStmt represents a while loop (§4.5.1).
type WhileStmt struct {
	Condition Expr
	Body      *BlockExpr
	span      lexer.Span
}

func (s *WhileStmt) Span() lexer.Span { return s.span }
func (*WhileStmt) stmtNode()          {}
func NewWhileStmt(cond Expr, body *BlockExpr, span lexer.Span) *WhileStmt {
	return &WhileStmt{Condition: cond, Body: body, span: span}
}

// ForStmt represents `for x in iterable { ... }` or `for (k, v) in iterable { ... }`.
type ForStmt struct {
	KeyName   *Ident // non-nil only for (key, value) destructuring over a dict
	ValueName *Ident
	Iterable  Expr
	Body      *BlockExpr
	span      lexer.Span
}

func (s *ForStmt) Span() lexer.Span { return s.span }
func (*ForStmt) stmtNode()          {}
func NewForStmt(key, value *Ident, iterable Expr, body *BlockExpr, span lexer.Span) *ForStmt {
	return &ForStmt{KeyName: key, ValueName: value, Iterable: iterable, Body: body, span: span}
}

// BreakStmt / ContinueStmt require an active loop context (§4.5).
type BreakStmt struct{ span lexer.Span }

func (s *BreakStmt) Span() lexer.Span        { return s.span }
func (*BreakStmt) stmtNode()                 {}
func NewBreakStmt(span lexer.Span) *BreakStmt { return &BreakStmt{span: span} }

type ContinueStmt struct{ span lexer.Span }

func (s *ContinueStmt) Span() lexer.Span         { return s.span }
func (*ContinueStmt) stmtNode()                  {}
func NewContinueStmt(span lexer.Span) *ContinueStmt { return &ContinueStmt{span: span} }

// MatchArm / MatchExpr: parseable per §6.1 but rejected at lowering (§9).
type MatchArm struct {
	Pattern Expr
	Body    *BlockExpr
	span    lexer.Span
}

func (a *MatchArm) Span() lexer.Span { return a.span }
func NewMatchArm(pattern Expr, body *BlockExpr, span lexer.Span) *MatchArm {
	return &MatchArm{Pattern: pattern, Body: body, span: span}
}

type MatchExpr struct {
	Subject Expr
	Arms    []*MatchArm
	span    lexer.Span
}

func (e *MatchExpr) Span() lexer.Span { return e.span }
func (*MatchExpr) exprNode()          {}
func NewMatchExpr(subject Expr, arms []*MatchArm, span lexer.Span) *MatchExpr {
	return &MatchExpr{Subject: subject, Arms: arms, span: span}
}

// Ident represents an identifier.
type Ident struct {
	Name string
	span lexer.Span
}

func (i *Ident) Span() lexer.Span { return i.span }
func (*Ident) exprNode()          {}
func NewIdent(name string, span lexer.Span) *Ident {
	return &Ident{Name: name, span: span}
}

// Literal nodes.

type IntegerLit struct {
	Text string
	span lexer.Span
}

func (l *IntegerLit) Span() lexer.Span { return l.span }
func (*IntegerLit) exprNode()          {}
func NewIntegerLit(text string, span lexer.Span) *IntegerLit {
	return &IntegerLit{Text: text, span: span}
}

// StringLit represents a plain string literal with no interpolation.
type StringLit struct {
	Value string
	span  lexer.Span
}

func (l *StringLit) Span() lexer.Span { return l.span }
func (*StringLit) exprNode()          {}
func NewStringLit(value string, span lexer.Span) *StringLit {
	return &StringLit{Value: value, span: span}
}

// InterpStringLit represents an interpolated string made of literal and
// expression segments, evaluated and concatenated left-to-right (§4.4).
type InterpStringLit struct {
	Segments []InterpSegment
	span     lexer.Span
}

func (l *InterpStringLit) Span() lexer.Span { return l.span }
func (*InterpStringLit) exprNode()          {}
func NewInterpStringLit(segments []InterpSegment, span lexer.Span) *InterpStringLit {
	return &InterpStringLit{Segments: segments, span: span}
}

// InterpSegment is either a literal chunk (Expr == nil) or an embedded
// expression (Literal == "").
type InterpSegment struct {
	Literal string
	Expr    Expr
}

type BoolLit struct {
	Value bool
	span  lexer.Span
}

func (l *BoolLit) Span() lexer.Span { return l.span }
func (*BoolLit) exprNode()          {}
func NewBoolLit(value bool, span lexer.Span) *BoolLit {
	return &BoolLit{Value: value, span: span}
}

type FloatLit struct {
	Text string
	span lexer.Span
}

func (l *FloatLit) Span() lexer.Span { return l.span }
func (*FloatLit) exprNode()          {}
func NewFloatLit(text string, span lexer.Span) *FloatLit {
	return &FloatLit{Text: text, span: span}
}

type NilLit struct{ span lexer.Span }

func (l *NilLit) Span() lexer.Span { return l.span }
func (*NilLit) exprNode()          {}
func NewNilLit(span lexer.Span) *NilLit { return &NilLit{span: span} }

// ArrayLiteral represents a list literal: [1, 2, 3].
type ArrayLiteral struct {
	Elements []Expr
	span     lexer.Span
}

func (a *ArrayLiteral) Span() lexer.Span { return a.span }
func (*ArrayLiteral) exprNode()          {}
func NewArrayLiteral(elements []Expr, span lexer.Span) *ArrayLiteral {
	return &ArrayLiteral{Elements: elements, span: span}
}

// MapLiteralEntry / MapLiteral represent dict literals: {k => v, ...}.
type MapLiteralEntry struct {
	Key   Expr
	Value Expr
	span  lexer.Span
}

func (e *MapLiteralEntry) Span() lexer.Span { return e.span }
func NewMapLiteralEntry(key, value Expr, span lexer.Span) *MapLiteralEntry {
	return &MapLiteralEntry{Key: key, Value: value, span: span}
}

type MapLiteral struct {
	Entries []*MapLiteralEntry
	span    lexer.Span
}

func (m *MapLiteral) Span() lexer.Span { return m.span }
func (*MapLiteral) exprNode()          {}
func NewMapLiteral(entries []*MapLiteralEntry, span lexer.Span) *MapLiteral {
	return &MapLiteral{Entries: entries, span: span}
}

// PrefixExpr represents a unary expression: +, -, !.
type PrefixExpr struct {
	Op   lexer.TokenType
	Expr Expr
	span lexer.Span
}

func (e *PrefixExpr) Span() lexer.Span { return e.span }
func (*PrefixExpr) exprNode()          {}
func NewPrefixExpr(op lexer.TokenType, expr Expr, span lexer.Span) *PrefixExpr {
	return &PrefixExpr{Op: op, Expr: expr, span: span}
}

// UnwrapExpr represents the postfix `!` optional-unwrap operator (§4.4).
type UnwrapExpr struct {
	Expr Expr
	span lexer.Span
}

func (e *UnwrapExpr) Span() lexer.Span { return e.span }
func (*UnwrapExpr) exprNode()          {}
func NewUnwrapExpr(expr Expr, span lexer.Span) *UnwrapExpr {
	return &UnwrapExpr{Expr: expr, span: span}
}

// InfixExpr represents a binary expression, including `and`/`or`/`??`.
type InfixExpr struct {
	Op    lexer.TokenType
	Left  Expr
	Right Expr
	span  lexer.Span
}

func (e *InfixExpr) Span() lexer.Span { return e.span }
func (*InfixExpr) exprNode()          {}
func NewInfixExpr(op lexer.TokenType, left, right Expr, span lexer.Span) *InfixExpr {
	return &InfixExpr{Op: op, Left: left, Right: right, span: span}
}

// RangeExpr represents `a..b` or `a..=b`.
type RangeExpr struct {
	Low, High Expr
	Inclusive bool
	span      lexer.Span
}

func (e *RangeExpr) Span() lexer.Span { return e.span }
func (*RangeExpr) exprNode()          {}
func NewRangeExpr(low, high Expr, inclusive bool, span lexer.Span) *RangeExpr {
	return &RangeExpr{Low: low, High: high, Inclusive: inclusive, span: span}
}

// AssignExpr represents an assignment expression.
type AssignExpr struct {
	Target Expr
	Value  Expr
	span   lexer.Span
}

func (e *AssignExpr) Span() lexer.Span { return e.span }
func (*AssignExpr) exprNode()          {}
func NewAssignExpr(target, value Expr, span lexer.Span) *AssignExpr {
	return &AssignExpr{Target: target, Value: value, span: span}
}

// CallExpr represents a function call.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	span   lexer.Span
}

func (e *CallExpr) Span() lexer.Span { return e.span }
func (*CallExpr) exprNode()          {}
func NewCallExpr(callee Expr, args []Expr, span lexer.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, span: span}
}

// FunctionLiteral represents a lambda: |params| { body }. ID is assigned
// sequentially at parse time and is the key into the lambda side tables (§3.4).
type FunctionLiteral struct {
	ID     int
	Params []*Param
	Body   *BlockExpr
	span   lexer.Span
}

func (e *FunctionLiteral) Span() lexer.Span { return e.span }
func (*FunctionLiteral) exprNode()          {}
func NewFunctionLiteral(id int, params []*Param, body *BlockExpr, span lexer.Span) *FunctionLiteral {
	return &FunctionLiteral{ID: id, Params: params, Body: body, span: span}
}

// FieldExpr represents member access: target.field.
type FieldExpr struct {
	Target Expr
	Field  *Ident
	span   lexer.Span
}

func (e *FieldExpr) Span() lexer.Span { return e.span }
func (*FieldExpr) exprNode()          {}
func NewFieldExpr(target Expr, field *Ident, span lexer.Span) *FieldExpr {
	return &FieldExpr{Target: target, Field: field, span: span}
}

// IndexExpr represents target[index], including range indices.
type IndexExpr struct {
	Target Expr
	Index  Expr
	span   lexer.Span
}

func (e *IndexExpr) Span() lexer.Span { return e.span }
func (*IndexExpr) exprNode()          {}
func NewIndexExpr(target, index Expr, span lexer.Span) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, span: span}
}

// NamedType represents a named type reference, optionally generic.
type NamedType struct {
	Name *Ident
	Args []TypeExpr
	span lexer.Span
}

func (t *NamedType) Span() lexer.Span { return t.span }
func (*NamedType) typeNode()          {}
func NewNamedType(name *Ident, args []TypeExpr, span lexer.Span) *NamedType {
	return &NamedType{Name: name, Args: args, span: span}
}

// ListType represents [T].
type ListType struct {
	Elem TypeExpr
	span lexer.Span
}

func (t *ListType) Span() lexer.Span { return t.span }
func (*ListType) typeNode()          {}
func NewListType(elem TypeExpr, span lexer.Span) *ListType {
	return &ListType{Elem: elem, span: span}
}

// DictType represents {String: V}.
type DictType struct {
	Value TypeExpr
	span  lexer.Span
}

func (t *DictType) Span() lexer.Span { return t.span }
func (*DictType) typeNode()          {}
func NewDictType(value TypeExpr, span lexer.Span) *DictType {
	return &DictType{Value: value, span: span}
}

// OptionalType represents T?.
type OptionalType struct {
	Inner TypeExpr
	span  lexer.Span
}

func (t *OptionalType) Span() lexer.Span { return t.span }
func (*OptionalType) typeNode()          {}
func NewOptionalType(inner TypeExpr, span lexer.Span) *OptionalType {
	return &OptionalType{Inner: inner, span: span}
}

// FunctionType represents fn(A, B) -> C.
type FunctionType struct {
	Params []TypeExpr
	Return TypeExpr
	span   lexer.Span
}

func (t *FunctionType) Span() lexer.Span { return t.span }
func (*FunctionType) typeNode()          {}
func NewFunctionType(params []TypeExpr, ret TypeExpr, span lexer.Span) *FunctionType {
	return &FunctionType{Params: params, Return: ret, span: span}
}

// ErrorType represents a reference to an error type, optionally a specific
// variant (MyError.Variant) used in catch-pattern and return-type position.
type ErrorType struct {
	ErrorName   *Ident
	VariantName *Ident // nil means "any variant"
	span        lexer.Span
}

func (t *ErrorType) Span() lexer.Span { return t.span }
func (*ErrorType) typeNode()          {}
func NewErrorType(errorName, variantName *Ident, span lexer.Span) *ErrorType {
	return &ErrorType{ErrorName: errorName, VariantName: variantName, span: span}
}

// StructLiteralField represents a field assignment in a struct/error literal.
type StructLiteralField struct {
	Name  *Ident
	Value Expr
	span  lexer.Span
}

func (f *StructLiteralField) Span() lexer.Span { return f.span }
func NewStructLiteralField(name *Ident, value Expr, span lexer.Span) *StructLiteralField {
	return &StructLiteralField{Name: name, Value: value, span: span}
}

// StructLiteral represents a struct or error-variant brace literal
// (resolved against the declaration namespace at lowering time, §4.4.1).
type StructLiteral struct {
	Name   Expr // *Ident, or *FieldExpr for Err.Variant { ... }
	Fields []*StructLiteralField
	span   lexer.Span
}

func (l *StructLiteral) Span() lexer.Span { return l.span }
func (*StructLiteral) exprNode()          {}
func NewStructLiteral(name Expr, fields []*StructLiteralField, span lexer.Span) *StructLiteral {
	return &StructLiteral{Name: name, Fields: fields, span: span}
}

// TryExpr represents `try { body } catch ... { ... } catch _ { ... }` (§4.4, §4.5.2).
type TryExpr struct {
	Body *BlockExpr
	Arms []*CatchArm
	span lexer.Span
}

func (e *TryExpr) Span() lexer.Span { return e.span }
func (*TryExpr) exprNode()          {}
func NewTryExpr(body *BlockExpr, arms []*CatchArm, span lexer.Span) *TryExpr {
	return &TryExpr{Body: body, Arms: arms, span: span}
}

// CatchArm is one `catch <patterns> { body }` clause. Binding is the name
// bound to the caught error value inside Body, if any.
type CatchArm struct {
	Patterns []*CatchPattern
	Binding  *Ident
	Body     *BlockExpr
	span     lexer.Span
}

func (a *CatchArm) Span() lexer.Span { return a.span }
func NewCatchArm(patterns []*CatchPattern, binding *Ident, body *BlockExpr, span lexer.Span) *CatchArm {
	return &CatchArm{Patterns: patterns, Binding: binding, Body: body, span: span}
}

// CatchPattern matches a concrete variant (ErrorName.Variant), an entire
// error type (ErrorName, matching any of its variants), or the wildcard `_`.
type CatchPattern struct {
	Wildcard    bool
	ErrorName   *Ident
	VariantName *Ident // nil: matches any variant of ErrorName
	span        lexer.Span
}

func (p *CatchPattern) Span() lexer.Span { return p.span }
func NewWildcardCatchPattern(span lexer.Span) *CatchPattern {
	return &CatchPattern{Wildcard: true, span: span}
}
func NewCatchPattern(errorName, variantName *Ident, span lexer.Span) *CatchPattern {
	return &CatchPattern{ErrorName: errorName, VariantName: variantName, span: span}
}
