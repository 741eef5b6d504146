// Package diag defines compiler diagnostics shared across every lowering
// stage, from lexing through object emission.
package diag

import "fmt"

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageLexer    Stage = "lexer"
	StageParser   Stage = "parser"
	StageTypes    Stage = "types"
	StageLower    Stage = "lower"
	StageCodegen  Stage = "codegen"
	StageDriver   Stage = "driver"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	CodeLexerUnterminatedString       Code = "LEXER_UNTERMINATED_STRING"
	CodeLexerUnterminatedBlockComment Code = "LEXER_UNTERMINATED_BLOCK_COMMENT"
	CodeLexerIllegalRune              Code = "LEXER_ILLEGAL_RUNE"

	CodeParserUnexpectedToken Code = "PARSER_UNEXPECTED_TOKEN"

	CodeUnresolvedName            Code = "TYPES_UNRESOLVED_NAME"
	CodeMissingTypeMetadata       Code = "TYPES_MISSING_TYPE_METADATA"
	CodeArgumentMismatch          Code = "TYPES_ARGUMENT_MISMATCH"
	CodeConstReassignment         Code = "TYPES_CONST_REASSIGNMENT"
	CodeUndeclaredErrorVariant    Code = "TYPES_UNDECLARED_ERROR_VARIANT"
	CodeMissingReturn             Code = "TYPES_MISSING_RETURN"
	CodeDuplicateField            Code = "TYPES_DUPLICATE_CONSTRUCTOR_FIELD"
	CodeGenericInstanceNotFound   Code = "TYPES_GENERIC_INSTANCE_NOT_FOUND"
	CodeUnresolvedTypeParam       Code = "TYPES_UNRESOLVED_TYPE_PARAM"
	CodeInvalidDictKey            Code = "TYPES_INVALID_DICT_KEY"
	CodeInvalidAssignmentTarget   Code = "LOWER_INVALID_ASSIGNMENT_TARGET"
	CodeBreakOutsideLoop          Code = "LOWER_BREAK_OUTSIDE_LOOP"
	CodeContinueOutsideLoop       Code = "LOWER_CONTINUE_OUTSIDE_LOOP"
	CodeForOverListWithKeyPattern Code = "LOWER_FOR_LIST_KEY_PATTERN"
	CodeRejectedConstruct         Code = "LOWER_REJECTED_CONSTRUCT"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// IsValid reports whether the span carries real source position information.
func (s Span) IsValid() bool {
	return s.Line > 0
}

// String renders the span as "file:line:column".
func (s Span) String() string {
	filename := s.Filename
	if filename == "" {
		filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", filename, s.Line, s.Column)
}

// Diagnostic is a compiler diagnostic surfaced to end-users. All
// compile-time errors raised by the core (§7) carry a Span when one is
// available; lowering never attempts recovery after emitting one.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span
}

// Error implements the error interface so diagnostics can flow through
// ordinary Go error returns.
func (d Diagnostic) Error() string {
	if d.Span.IsValid() {
		return fmt.Sprintf("%s: %s (%s)", d.Severity, d.Message, d.Span)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// New constructs an error-severity diagnostic at the given stage and span.
func New(stage Stage, code Code, span Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	}
}
