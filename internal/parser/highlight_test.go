package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlight(t *testing.T) {
	kinds := func(tokens []Token) []TokenKind {
		out := make([]TokenKind, len(tokens))
		for i, tok := range tokens {
			out[i] = tok.Kind
		}
		return out
	}

	t.Run("classifies every run", func(t *testing.T) {
		tokens := Highlight("2ax + sin[x, 1.5]")
		assert.Equal(t, []TokenKind{
			TokenNumber, TokenParameter, TokenVariable, TokenSpace, TokenOperator, TokenSpace,
			TokenFunction, TokenBracket, TokenVariable, TokenComma, TokenSpace, TokenNumber, TokenBracket,
		}, kinds(tokens))
		assert.Equal(t, "sin", tokens[6].Text)
		assert.Equal(t, "1.5", tokens[11].Text)
	})

	t.Run("covers the input", func(t *testing.T) {
		in := " log[x^2 ,a] $ (1e3 "
		var b strings.Builder
		for _, tok := range Highlight(in) {
			b.WriteString(tok.Text)
		}
		assert.Equal(t, in, b.String())
	})

	t.Run("matches brackets", func(t *testing.T) {
		tokens := Highlight("(sin[x])")
		assert.Equal(t, []TokenKind{
			TokenBracket, TokenFunction, TokenBracket, TokenVariable, TokenBracket, TokenBracket,
		}, kinds(tokens))
		assert.Equal(t, 5, tokens[0].Match)
		assert.Equal(t, 0, tokens[5].Match)
		assert.Equal(t, 0, tokens[0].Depth)
		assert.Equal(t, 4, tokens[2].Match)
		assert.Equal(t, 1, tokens[2].Depth)
	})

	t.Run("marks errors", func(t *testing.T) {
		tokens := Highlight("(x]+y2$")
		assert.Equal(t, []TokenKind{
			TokenError, TokenVariable, TokenError, TokenOperator, TokenParameter, TokenError, TokenError,
		}, kinds(tokens))
		assert.Equal(t, -1, tokens[0].Match)
	})

	t.Run("keeps runes whole", func(t *testing.T) {
		tokens := Highlight("x+π")
		assert.Equal(t, []TokenKind{TokenVariable, TokenOperator, TokenError}, kinds(tokens))
		assert.Equal(t, "π", tokens[2].Text)
		assert.Equal(t, 2, tokens[2].Offset)
	})
}
