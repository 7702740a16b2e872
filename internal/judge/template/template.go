// Package template generates language-specific solution scaffolds from a
// function spec. Generation is pure: identical (spec, language) inputs yield
// byte-identical source, so results can be cached by spec fingerprint.
//
// Each language registers a generator; each generator consults its own
// per-semantic-type rules. Adding a language or a type is an additive change.
package template

import (
	"sort"

	"codearena/internal/judge/model"
	appErr "codearena/pkg/errors"
)

type languageGenerator interface {
	generate(spec model.FunctionSpec) (string, error)
}

// Generator dispatches scaffold generation by language tag.
type Generator struct {
	langs map[string]languageGenerator
}

// New creates a Generator with all built-in languages registered.
func New() *Generator {
	return &Generator{langs: map[string]languageGenerator{
		"python":     pythonGenerator{},
		"javascript": javascriptGenerator{},
		"cpp":        cppGenerator{},
		"java":       javaGenerator{},
		"c":          cGenerator{},
	}}
}

// Generate produces the scaffold for one (spec, language) pair.
func (g *Generator) Generate(spec model.FunctionSpec, language string) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", appErr.Wrap(err, appErr.ValidationFailed)
	}
	gen, ok := g.langs[language]
	if !ok {
		return "", appErr.Newf(appErr.LanguageNotSupported, "no template generator for language %q", language)
	}
	return gen.generate(spec)
}

// Languages returns the registered language tags, sorted.
func (g *Generator) Languages() []string {
	out := make([]string, 0, len(g.langs))
	for lang := range g.langs {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

func unsupportedType(language string, t model.SemanticType) error {
	return appErr.Newf(appErr.TypeNotSupported, "type %q is not supported by the %s generator", t, language)
}
