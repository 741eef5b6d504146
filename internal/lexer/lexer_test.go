package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teacompiler/teac/internal/lexer"
)

func collect(input string) []lexer.TokenType {
	l := lexer.New(input)
	var types []lexer.TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == lexer.EOF {
			break
		}
	}
	return types
}

func TestNextToken_Operators(t *testing.T) {
	types := collect(`+ - * / % == != <= >= ?? -> =>`)
	assert.Equal(t, []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT,
		lexer.EQ, lexer.NOT_EQ, lexer.LE, lexer.GE, lexer.COALESCE,
		lexer.ARROW, lexer.FATARROW, lexer.EOF,
	}, types)
}

func TestNextToken_Keywords(t *testing.T) {
	types := collect(`fn let mut try catch throw error struct enum`)
	assert.Equal(t, []lexer.TokenType{
		lexer.FN, lexer.LET, lexer.MUT, lexer.TRY, lexer.CATCH, lexer.THROW,
		lexer.ERROR, lexer.STRUCT, lexer.ENUM, lexer.EOF,
	}, types)
}

func TestNextToken_Range(t *testing.T) {
	types := collect(`0..10 0..=10`)
	assert.Equal(t, []lexer.TokenType{
		lexer.INT, lexer.DOTDOT, lexer.INT,
		lexer.INT, lexer.DOTDOTEQ, lexer.INT, lexer.EOF,
	}, types)
}

func TestNextToken_StringEscapes(t *testing.T) {
	l := lexer.New(`"hello\nworld"`)
	tok := l.NextToken()
	assert.Equal(t, lexer.STRING, tok.Type)
	assert.Equal(t, "hello\nworld", tok.Value)
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := lexer.New(`"oops`)
	l.NextToken()
	assert.Len(t, l.Errors, 1)
	assert.Equal(t, lexer.ErrUnterminatedString, l.Errors[0].Kind)
}

func TestNextToken_FloatLiteral(t *testing.T) {
	types := collect(`3.14 1_000.5 6.022e23`)
	for _, typ := range types[:len(types)-1] {
		assert.Equal(t, lexer.FLOAT, typ)
	}
}
