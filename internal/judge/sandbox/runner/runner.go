// Package runner layers compile/run workflows on the sandbox engine.
package runner

import (
	"context"

	"codearena/internal/judge/sandbox/profile"
	"codearena/internal/judge/sandbox/result"
)

// CompileRequest prepares one submission's artifact in WorkDir.
type CompileRequest struct {
	SubmissionID string
	WorkDir      string
	Source       string
	Language     profile.LanguageSpec
}

// RunRequest executes the prepared artifact against one test's stdin.
type RunRequest struct {
	SubmissionID string
	TestID       int64
	WorkDir      string

	// ArtifactDir is the compile directory holding the source and, for
	// compiled languages, the binary.
	ArtifactDir string
	Language    profile.LanguageSpec
	Stdin       string

	// WallTimeMs overrides the language default when positive.
	WallTimeMs int64
}

// Runner implements compile/run workflows for supported languages.
type Runner interface {
	Compile(ctx context.Context, req CompileRequest) (result.CompileResult, error)
	Run(ctx context.Context, req RunRequest) (result.RunResult, error)
}
