package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teacompiler/teac/internal/diag"
	"github.com/teacompiler/teac/internal/lexer"
)

func TestFromLexerError(t *testing.T) {
	err := lexer.LexerError{
		Kind:    lexer.ErrUnterminatedString,
		Message: "unterminated string literal",
		Span: lexer.Span{
			Line:   1,
			Column: 3,
			Start:  2,
			End:    6,
		},
	}

	d := err.ToDiagnostic()

	assert.Equal(t, diag.StageLexer, d.Stage)
	assert.Equal(t, diag.CodeLexerUnterminatedString, d.Code)
	assert.Equal(t, err.Message, d.Message)
	assert.Equal(t, diag.SeverityError, d.Severity)

	wantSpan := diag.Span{Line: err.Span.Line, Column: err.Span.Column, Start: err.Span.Start, End: err.Span.End}
	assert.Equal(t, wantSpan, d.Span)
}

func TestSpanString(t *testing.T) {
	s := diag.Span{Filename: "foo.tea", Line: 4, Column: 2}
	assert.Equal(t, "foo.tea:4:2", s.String())
}
