// Package problemstore loads function specs and test cases for judging.
package problemstore

import (
	"context"

	"codearena/internal/judge/model"
)

// Store resolves problem data the judge needs. Implementations must return
// test cases in their declared order; the judge never reorders them.
type Store interface {
	// GetFunctionSpec returns the declared solution function of a problem.
	GetFunctionSpec(ctx context.Context, problemID int64) (model.FunctionSpec, error)

	// GetTestCases returns a problem's test cases. With includeHidden false
	// only public tests are returned (run mode).
	GetTestCases(ctx context.Context, problemID int64, includeHidden bool) ([]model.TestCase, error)
}
