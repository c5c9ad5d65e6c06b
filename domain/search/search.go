package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"songnote/errors"
)

// PrefixSentinel is a high Unicode code point appended to the normalized
// terms to form the inclusive upper bound of a prefix range scan: every
// string starting with the terms sorts between the terms and this bound.
const PrefixSentinel = ""

const (
	minQueryLen = 2
	maxQueryLen = 50
)

// Query represents normalized parameters for a message search.
// It decouples the raw UI input from the index engine requirements.
type Query struct {
	Raw   string // the original input
	Terms string // trimmed, lower-cased text used as the range lower bound
}

// NewQuery validates and normalizes raw search input.
//
// An empty or all-whitespace input is not an error: it yields an empty
// Query (IsEmpty returns true) and the caller is expected to return an
// empty result without touching the store. Anything else must be between
// 2 and 50 trimmed characters and contain at least one non-whitespace rune.
func NewQuery(raw string) (Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Query{Raw: raw}, nil
	}
	if utf8.RuneCountInString(trimmed) < minQueryLen {
		return Query{}, errors.ErrQueryTooShort
	}
	if utf8.RuneCountInString(trimmed) > maxQueryLen {
		return Query{}, errors.ErrQueryTooLong
	}
	if !strings.ContainsFunc(trimmed, func(r rune) bool { return !unicode.IsSpace(r) }) {
		return Query{}, errors.ErrQueryInvalid
	}
	return Query{Raw: raw, Terms: strings.ToLower(trimmed)}, nil
}

// IsEmpty reports whether the query should run no store queries at all.
func (q Query) IsEmpty() bool {
	return q.Terms == ""
}

// LowerBound is the inclusive lower range bound for a prefix scan.
func (q Query) LowerBound() string {
	return q.Terms
}

// UpperBound is the inclusive upper range bound for a prefix scan.
func (q Query) UpperBound() string {
	return q.Terms + PrefixSentinel
}
