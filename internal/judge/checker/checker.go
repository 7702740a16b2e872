// Package checker compares program output against expected output with
// tolerant normalization: numbers by value, sequences element-by-element,
// booleans case-insensitively. Anything it cannot confidently parse falls
// back to strict string equality, so normalization never fabricates a match.
package checker

import (
	"strconv"
	"strings"
)

type tokenKind int

const (
	kindInt tokenKind = iota
	kindFloat
	kindBool
	kindString
)

type token struct {
	kind tokenKind
	i    int64
	f    float64
	b    bool
	s    string
}

// Equivalent reports whether actual and expected are the same output under
// the tolerant grammar. Order of sequence elements matters.
func Equivalent(actual, expected string) bool {
	a := strings.TrimRight(actual, " \t\r\n")
	e := strings.TrimRight(expected, " \t\r\n")
	if a == e {
		return true
	}

	at, aok := tokenize(a)
	et, eok := tokenize(e)
	if !aok || !eok {
		// Non-confident parse on either side: strict equality already failed.
		return false
	}
	return tokensEqual(at, et)
}

// EquivalentBool is the leniency variant for a declared boolean return type:
// boolean literals additionally equate to 0/1.
func EquivalentBool(actual, expected string) bool {
	av, aok := parseBoolish(strings.TrimSpace(actual))
	ev, eok := parseBoolish(strings.TrimSpace(expected))
	if aok && eok {
		return av == ev
	}
	return Equivalent(actual, expected)
}

func parseBoolish(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// tokenize splits a possibly bracketed, comma/whitespace separated value
// into classified tokens. The second return is false when the text does not
// fit the grammar: interior brackets, quote characters, or nothing to
// tokenize.
func tokenize(s string) ([]token, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return nil, false
	}
	if strings.ContainsAny(s, "[]{}\"'") {
		return nil, false
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, false
	}

	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, classify(f))
	}
	return tokens, true
}

func classify(s string) token {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return token{kind: kindInt, i: i, f: float64(i)}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return token{kind: kindFloat, f: f}
	}
	switch strings.ToLower(s) {
	case "true":
		return token{kind: kindBool, b: true}
	case "false":
		return token{kind: kindBool, b: false}
	}
	return token{kind: kindString, s: s}
}

func tokensEqual(a, b []token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !tokenEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func tokenEqual(a, b token) bool {
	if isNumeric(a.kind) && isNumeric(b.kind) {
		if a.kind == kindInt && b.kind == kindInt {
			return a.i == b.i
		}
		return a.f == b.f
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case kindBool:
		return a.b == b.b
	default:
		return a.s == b.s
	}
}

func isNumeric(k tokenKind) bool {
	return k == kindInt || k == kindFloat
}
