// Package config provides the in-memory language registry used by the
// sandbox layer.
package config

import (
	"context"

	"codearena/internal/judge/sandbox/profile"
	appErr "codearena/pkg/errors"
)

// LanguageSpecRepository resolves language ids to execution specs.
type LanguageSpecRepository interface {
	GetLanguageSpec(ctx context.Context, id string) (profile.LanguageSpec, error)
}

// LocalRepository loads language specs from memory.
type LocalRepository struct {
	languages map[string]profile.LanguageSpec
}

// NewLocalRepository creates a repository from a config list. Entries without
// an ID are skipped; later entries override earlier ones, so operators can
// patch a single built-in language in YAML without restating the rest.
func NewLocalRepository(languages []profile.LanguageSpec) *LocalRepository {
	langMap := make(map[string]profile.LanguageSpec)
	for _, lang := range languages {
		if lang.ID == "" {
			continue
		}
		langMap[lang.ID] = lang
	}
	return &LocalRepository{languages: langMap}
}

// NewDefaultRepository creates a repository with the built-in languages,
// overlaid by the given overrides.
func NewDefaultRepository(overrides []profile.LanguageSpec) *LocalRepository {
	return NewLocalRepository(append(DefaultLanguages(), overrides...))
}

// GetLanguageSpec returns a language spec.
func (r *LocalRepository) GetLanguageSpec(ctx context.Context, id string) (profile.LanguageSpec, error) {
	if id == "" {
		return profile.LanguageSpec{}, appErr.ValidationError("language", "required")
	}
	lang, ok := r.languages[id]
	if !ok {
		return profile.LanguageSpec{}, appErr.Newf(appErr.LanguageNotSupported, "language %q not supported", id)
	}
	return lang, nil
}

// DefaultLanguages returns the built-in language set. Interpreted languages
// run straight from source; compiled ones build a submission-scoped binary
// reused across tests.
func DefaultLanguages() []profile.LanguageSpec {
	return []profile.LanguageSpec{
		{
			ID:             "python",
			Name:           "Python 3",
			SourceFile:     "main.py",
			CompileEnabled: false,
			RunCmdTpl:      "python3 {src}",
			RunTimeoutMs:   5000,
			TimeMultiplier: 2,
		},
		{
			ID:             "javascript",
			Name:           "Node.js",
			SourceFile:     "main.js",
			CompileEnabled: false,
			RunCmdTpl:      "node {src}",
			RunTimeoutMs:   5000,
			TimeMultiplier: 2,
		},
		{
			ID:               "cpp",
			Name:             "C++17",
			SourceFile:       "main.cpp",
			BinaryFile:       "main",
			CompileEnabled:   true,
			CompileCmdTpl:    "g++ -O2 -std=c++17 {src} -o {bin}",
			RunCmdTpl:        "{bin}",
			CompileTimeoutMs: 10000,
			RunTimeoutMs:     5000,
			TimeMultiplier:   1,
		},
		{
			ID:               "c",
			Name:             "C11",
			SourceFile:       "main.c",
			BinaryFile:       "main",
			CompileEnabled:   true,
			CompileCmdTpl:    "gcc -O2 -std=c11 {src} -o {bin}",
			RunCmdTpl:        "{bin}",
			CompileTimeoutMs: 10000,
			RunTimeoutMs:     5000,
			TimeMultiplier:   1,
		},
		{
			ID:               "java",
			Name:             "Java 17",
			SourceFile:       "Solution.java",
			BinaryFile:       "Solution",
			CompileEnabled:   true,
			CompileCmdTpl:    "javac {src}",
			RunCmdTpl:        "java -cp . Solution",
			CompileTimeoutMs: 10000,
			RunTimeoutMs:     5000,
			TimeMultiplier:   2,
		},
	}
}
