package parser

import (
	"unicode/utf8"

	"github.com/lacquerai/deriv/internal/algebra"
)

// TokenKind classifies a run of characters for syntax highlighting.
type TokenKind string

const (
	TokenNumber    TokenKind = "number"
	TokenVariable  TokenKind = "variable"
	TokenParameter TokenKind = "parameter"
	TokenFunction  TokenKind = "function"
	TokenOperator  TokenKind = "operator"
	TokenComma     TokenKind = "comma"
	TokenBracket   TokenKind = "bracket"
	TokenSpace     TokenKind = "space"
	TokenError     TokenKind = "error"
)

// Token is a highlighted run of the input. For brackets, Match is the index of
// the partner token and Depth the nesting level; unmatched brackets are
// reported as TokenError with Match -1.
type Token struct {
	Kind   TokenKind `json:"kind"`
	Text   string    `json:"text"`
	Offset int       `json:"offset"`
	Match  int       `json:"match"`
	Depth  int       `json:"depth"`
}

// Highlight splits text into classified tokens covering every byte. It never
// fails: anything the parser would reject is marked as an error token.
func Highlight(text string) []Token {
	var tokens []Token
	add := func(kind TokenKind, start, end int) {
		tokens = append(tokens, Token{Kind: kind, Text: text[start:end], Offset: start, Match: -1})
	}

	var open []int
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			j := i + 1
			for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
				j++
			}
			add(TokenSpace, i, j)
			i = j

		case isDigit(c) || c == '.':
			n := algebra.MatchNumber(text[i:])
			if n == 0 {
				add(TokenError, i, i+1)
				i++
				continue
			}
			add(TokenNumber, i, i+n)
			i += n

		case isLetter(c):
			j := i + 1
			for j < len(text) && isAlnum(text[j]) {
				j++
			}
			if j < len(text) && text[j] == '[' {
				add(TokenFunction, i, j)
				i = j
				continue
			}
			for ; i < j; i++ {
				switch {
				case !isLetter(text[i]):
					add(TokenError, i, i+1)
				case string(text[i]) == algebra.VariableName:
					add(TokenVariable, i, i+1)
				default:
					add(TokenParameter, i, i+1)
				}
			}

		case c == '(' || c == '[':
			open = append(open, len(tokens))
			add(TokenError, i, i+1)
			i++

		case c == ')' || c == ']':
			add(TokenError, i, i+1)
			closer := len(tokens) - 1
			// unmatched openers inside a mismatched pair stay errors
			for len(open) > 0 {
				o := open[len(open)-1]
				open = open[:len(open)-1]
				if closing(text[tokens[o].Offset]) == c {
					tokens[o].Kind, tokens[closer].Kind = TokenBracket, TokenBracket
					tokens[o].Match, tokens[closer].Match = closer, o
					tokens[o].Depth, tokens[closer].Depth = len(open), len(open)
					break
				}
			}
			i++

		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			add(TokenOperator, i, i+1)
			i++

		case c == ',':
			add(TokenComma, i, i+1)
			i++

		default:
			_, size := utf8.DecodeRuneInString(text[i:])
			add(TokenError, i, i+size)
			i += size
		}
	}
	return tokens
}
