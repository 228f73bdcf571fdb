package view

import (
	"sort"
	"strings"
)

// TokenList is an ordered set of whitespace-free tokens, used for class
// names. Insertion order is kept for serialization, comparisons ignore it.
type TokenList struct {
	tokens []string
}

// NewTokenList parses a whitespace separated token string.
func NewTokenList(value string) *TokenList {
	tl := &TokenList{}
	tl.Add(strings.Fields(value)...)
	return tl
}

// Add appends tokens that are not present yet. Empty tokens are ignored.
func (tl *TokenList) Add(tokens ...string) {
	for _, tok := range tokens {
		for _, t := range strings.Fields(tok) {
			if !tl.contains(t) {
				tl.tokens = append(tl.tokens, t)
			}
		}
	}
}

// Remove deletes the given tokens.
func (tl *TokenList) Remove(tokens ...string) {
	for _, tok := range tokens {
		for i, t := range tl.tokens {
			if t == tok {
				tl.tokens = append(tl.tokens[:i], tl.tokens[i+1:]...)
				break
			}
		}
	}
}

// Has reports whether all given tokens are present.
func (tl *TokenList) Has(tokens ...string) bool {
	for _, tok := range tokens {
		if !tl.contains(tok) {
			return false
		}
	}
	return true
}

func (tl *TokenList) contains(tok string) bool {
	for _, t := range tl.tokens {
		if t == tok {
			return true
		}
	}
	return false
}

// Toggle adds the token when absent and removes it otherwise. It returns
// whether the token is present afterwards.
func (tl *TokenList) Toggle(token string) bool {
	if tl.contains(token) {
		tl.Remove(token)
		return false
	}
	tl.Add(token)
	return true
}

// Replace swaps old for replacement in place.
func (tl *TokenList) Replace(old, replacement string) bool {
	for i, t := range tl.tokens {
		if t == old {
			if tl.contains(replacement) {
				tl.tokens = append(tl.tokens[:i], tl.tokens[i+1:]...)
			} else {
				tl.tokens[i] = replacement
			}
			return true
		}
	}
	return false
}

// Tokens returns the tokens in insertion order.
func (tl *TokenList) Tokens() []string {
	out := make([]string, len(tl.tokens))
	copy(out, tl.tokens)
	return out
}

// Sorted returns the tokens in lexical order.
func (tl *TokenList) Sorted() []string {
	out := tl.Tokens()
	sort.Strings(out)
	return out
}

// Len returns the number of tokens.
func (tl *TokenList) Len() int { return len(tl.tokens) }

// IsEmpty reports whether there are no tokens.
func (tl *TokenList) IsEmpty() bool { return len(tl.tokens) == 0 }

// Equal reports whether both lists hold the same set of tokens.
func (tl *TokenList) Equal(o *TokenList) bool {
	if tl.Len() != o.Len() {
		return false
	}
	return tl.Has(o.tokens...)
}

// Clone returns an independent copy.
func (tl *TokenList) Clone() *TokenList {
	return &TokenList{tokens: tl.Tokens()}
}

// Clear removes all tokens.
func (tl *TokenList) Clear() { tl.tokens = nil }

// String joins the tokens with spaces in insertion order.
func (tl *TokenList) String() string { return strings.Join(tl.tokens, " ") }
