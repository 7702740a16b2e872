package checker_test

import (
	"testing"

	"codearena/internal/judge/checker"
)

func TestEquivalent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		actual   string
		expected string
		want     bool
	}{
		{name: "exact", actual: "hello", expected: "hello", want: true},
		{name: "trailing-newline", actual: "42\n", expected: "42", want: true},
		{name: "trailing-spaces", actual: "42  \t", expected: "42", want: true},
		{name: "bracketed-vs-plain", actual: "[0, 1]", expected: "0 1", want: true},
		{name: "plain-vs-bracketed", actual: "1 2 3", expected: "[1,2,3]", want: true},
		{name: "float-vs-int", actual: "3.0", expected: "3", want: true},
		{name: "int-vs-float", actual: "3", expected: "3.0", want: true},
		{name: "float-text", actual: "0.5", expected: ".5", want: true},
		{name: "bool-case", actual: "True", expected: "true", want: true},
		{name: "comma-vs-space", actual: "1,2,3", expected: "1 2 3", want: true},
		{name: "order-matters", actual: "1 2", expected: "2 1", want: false},
		{name: "length-differs", actual: "1 2", expected: "1 2 3", want: false},
		{name: "wrong-number", actual: "41", expected: "42", want: false},
		{name: "string-tokens", actual: "abc def", expected: "abc def", want: true},
		{name: "string-mismatch", actual: "abc", expected: "abd", want: false},
		{name: "interior-brackets-strict", actual: "[[1], [2]]", expected: "[[1],[2]]", want: false},
		{name: "quotes-strict", actual: `"a" "b"`, expected: "a b", want: false},
		{name: "empty-vs-empty", actual: "", expected: "", want: true},
		{name: "empty-vs-value", actual: "", expected: "1", want: false},
		{name: "leading-space-differs", actual: " 42", expected: "42", want: true},
		{name: "bool-vs-string", actual: "true", expected: "truthy", want: false},
		{name: "int-not-bool", actual: "1", expected: "true", want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := checker.Equivalent(tt.actual, tt.expected); got != tt.want {
				t.Fatalf("Equivalent(%q, %q) = %v, want %v", tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestEquivalentBool(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		actual   string
		expected string
		want     bool
	}{
		{name: "true-vs-1", actual: "true", expected: "1", want: true},
		{name: "false-vs-0", actual: "False", expected: "0", want: true},
		{name: "1-vs-true", actual: "1", expected: "True", want: true},
		{name: "true-vs-0", actual: "true", expected: "0", want: false},
		{name: "trailing-newline", actual: "true\n", expected: "1", want: true},
		{name: "fallback-to-general", actual: "42", expected: "42", want: true},
		{name: "fallback-mismatch", actual: "42", expected: "41", want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := checker.EquivalentBool(tt.actual, tt.expected); got != tt.want {
				t.Fatalf("EquivalentBool(%q, %q) = %v, want %v", tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}
