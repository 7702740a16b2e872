// Package model defines the judge-facing domain types: function specs,
// test cases and queue messages.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SemanticType identifies the wire-level type of a parameter or return value.
type SemanticType string

const (
	TypeInt        SemanticType = "int"
	TypeFloat      SemanticType = "float"
	TypeString     SemanticType = "string"
	TypeBool       SemanticType = "bool"
	TypeIntList    SemanticType = "list<int>"
	TypeFloatList  SemanticType = "list<float>"
	TypeStringList SemanticType = "list<string>"
)

// typeAliases maps spellings seen in stored problem definitions to canonical
// semantic types.
var typeAliases = map[string]SemanticType{
	"int":          TypeInt,
	"integer":      TypeInt,
	"float":        TypeFloat,
	"double":       TypeFloat,
	"str":          TypeString,
	"string":       TypeString,
	"bool":         TypeBool,
	"boolean":      TypeBool,
	"list":         TypeIntList,
	"array":        TypeIntList,
	"list[int]":    TypeIntList,
	"list<int>":    TypeIntList,
	"list[float]":  TypeFloatList,
	"list<float>":  TypeFloatList,
	"list[str]":    TypeStringList,
	"list[string]": TypeStringList,
	"list<string>": TypeStringList,
}

// NormalizeType maps a stored type spelling to its canonical SemanticType.
// Returns false for spellings no generator understands.
func NormalizeType(raw string) (SemanticType, bool) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

// IsList reports whether the type decodes from one whitespace-separated line
// rather than a single scalar token.
func (t SemanticType) IsList() bool {
	switch t {
	case TypeIntList, TypeFloatList, TypeStringList:
		return true
	}
	return false
}

// Element returns the scalar element type of a list type.
func (t SemanticType) Element() SemanticType {
	switch t {
	case TypeIntList:
		return TypeInt
	case TypeFloatList:
		return TypeFloat
	case TypeStringList:
		return TypeString
	}
	return t
}

// Parameter is one declared argument of the solution function. Order within
// FunctionSpec.Parameters is the order both the scaffold reads stdin and the
// input adapter writes it.
type Parameter struct {
	Name string       `json:"name"`
	Type SemanticType `json:"type"`
}

// FunctionSpec describes the solution function a problem expects. It is
// immutable once published: generation is pure, so one (spec, language) pair
// identifies exactly one scaffold.
type FunctionSpec struct {
	Name       string       `json:"name"`
	Parameters []Parameter  `json:"parameters"`
	ReturnType SemanticType `json:"return_type"`
}

// Validate checks the spec is complete enough to generate a scaffold.
func (s FunctionSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("function name is empty")
	}
	seen := make(map[string]struct{}, len(s.Parameters))
	for _, p := range s.Parameters {
		if p.Name == "" {
			return fmt.Errorf("parameter with empty name")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Fingerprint returns a stable digest of the spec, used as a template cache
// key together with the language tag.
func (s FunctionSpec) Fingerprint() string {
	var b strings.Builder
	b.WriteString(s.Name)
	for _, p := range s.Parameters {
		b.WriteByte('|')
		b.WriteString(p.Name)
		b.WriteByte(':')
		b.WriteString(string(p.Type))
	}
	b.WriteByte('>')
	b.WriteString(string(s.ReturnType))
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// TestCase is one input/expected-output pair owned by a problem. InputData is
// either a JSON object keyed by parameter name or raw line-oriented text.
type TestCase struct {
	ID             int64  `json:"id"`
	InputData      string `json:"input_data"`
	ExpectedOutput string `json:"expected_output"`
	IsHidden       bool   `json:"is_hidden"`
}
