// Package moderation classifies chat text as profane or clean.
package moderation

import (
	"slices"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Classifier reports whether a string contains profanity.
type Classifier interface {
	IsProfane(text string) bool
}

// Filter matches whole words against a word list with an Aho-Corasick automaton.
// Matching ignores case and common leet substitutions ("sh1t", "@ss").
type Filter struct {
	// matcher is nil when the word list is empty.
	matcher *goahocorasick.Machine
	size    int
}

// NewFilter builds a filter for words. Entries without a single word
// character ("", "   ", "--") are ignored.
func NewFilter(words []string) (*Filter, error) {
	patterns := lo.Uniq(lo.FilterMap(words, func(w string, _ int) (string, bool) {
		n := strings.TrimSpace(string(normalizeRunes([]rune(w))))
		return n, strings.ContainsFunc(n, isWordRune)
	}))
	if len(patterns) == 0 {
		return &Filter{}, nil
	}
	slices.Sort(patterns)

	m := new(goahocorasick.Machine)
	if err := m.Build(lo.Map(patterns, func(p string, _ int) []rune { return []rune(p) })); err != nil {
		return nil, err
	}
	return &Filter{matcher: m, size: len(patterns)}, nil
}

// Size returns the number of distinct patterns in the filter.
func (f *Filter) Size() int {
	return f.size
}

// IsProfane reports whether any listed word appears in text as a whole word.
// A listed word embedded in a longer word ("hell" in "hello") does not count.
func (f *Filter) IsProfane(text string) bool {
	if f.matcher == nil || text == "" {
		return false
	}

	norm := normalizeRunes([]rune(text))
	for _, term := range f.matcher.MultiPatternSearch(norm, false) {
		start := term.Pos
		end := start + len(term.Word)
		if start < 0 || end > len(norm) {
			continue
		}
		if (start == 0 || isBoundary(norm[start-1])) && (end == len(norm) || isBoundary(norm[end])) {
			return true
		}
	}
	return false
}

// normalizeRunes lower-cases and undoes leet substitutions. Everything that
// cannot be part of a word collapses to a space so word boundaries survive.
func normalizeRunes(in []rune) []rune {
	out := make([]rune, 0, len(in))
	for _, r := range in {
		r = simplifyRune(r)
		if !isWordRune(r) {
			r = ' '
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isWordRune reports letters, digits and "_"; anything else separates words.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isBoundary(r rune) bool {
	return r == ' '
}
