// Package sandbox evaluates one submission against its test cases: compile
// once, run each test in an isolated workdir, compare output.
package sandbox

import (
	"context"

	"codearena/internal/judge/model"
	"codearena/internal/judge/sandbox/result"
)

// Evaluator is the high-level sandbox entrypoint used by the judge layer.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvalRequest) (result.SubmissionResult, error)
}

// EvalRequest contains all data needed to evaluate one submission. Source is
// already decoded and verified; Tests are already filtered for the mode.
type EvalRequest struct {
	SubmissionID string
	Language     string
	Source       string
	Mode         model.EvalMode

	// Spec drives stdin rendering and return-type-aware comparison.
	Spec  model.FunctionSpec
	Tests []model.TestCase

	// WorkRoot is the directory submission workdirs are created under.
	WorkRoot string

	// PerTestTimeoutMs overrides the language default when positive.
	PerTestTimeoutMs int64
}
