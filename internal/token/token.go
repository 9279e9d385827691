// Package token defines the vocabulary of the s-expression reader that
// feeds the codegen core (internal/codegen). The core itself never sees a
// token — only the internal/sexpr tree the reader builds from them.
package token

// TokenType is a string alias for token types.
type TokenType string

// Token pairs a type with its literal text and the position it started at.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	LPAREN TokenType = "("
	RPAREN TokenType = ")"

	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"

	// SYMBOL is a bare word: an identifier, a keyword head (class, defm,
	// if, ...), or an operator-method name (<<).
	SYMBOL TokenType = "SYMBOL"

	// SYMLIT is a colon-prefixed symbol literal, e.g. :foo. Its Literal
	// does not include the leading colon.
	SYMLIT TokenType = "SYMLIT"
)

// symbolPunct is the set of punctuation characters a bare SYMBOL may be
// made of when it isn't an alphanumeric identifier: operator-method names
// like << or the raw arithmetic/comparison spellings a hand-written test
// fixture might use.
const symbolPunct = "+-*/<>=!&|^%"

func IsSymbolPunct(ch byte) bool {
	for i := 0; i < len(symbolPunct); i++ {
		if symbolPunct[i] == ch {
			return true
		}
	}
	return false
}
