package sandbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"codearena/internal/judge/checker"
	"codearena/internal/judge/iofmt"
	"codearena/internal/judge/model"
	"codearena/internal/judge/sandbox/config"
	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/runner"
	appErr "codearena/pkg/errors"
)

// Worker evaluates submissions one at a time. Tests within a submission run
// strictly sequentially: submit mode's stop-on-first-failure contract and the
// compile-once artifact reuse both depend on ordered progression.
type Worker struct {
	runner         runner.Runner
	langRepo       config.LanguageSpecRepository
	statusReporter StatusReporter
}

// NewWorker creates a worker with required dependencies.
func NewWorker(r runner.Runner, langRepo config.LanguageSpecRepository) *Worker {
	return &Worker{runner: r, langRepo: langRepo}
}

// SetStatusReporter injects a reporter for intermediate progress updates.
func (w *Worker) SetStatusReporter(reporter StatusReporter) {
	w.statusReporter = reporter
}

// Evaluate runs the full judge workflow for one submission: compile once,
// then run each test case in its own workdir. Verdicts are carried in the
// returned SubmissionResult; a non-nil error means the evaluation itself
// failed (infrastructure, malformed test data, cancellation) and no verdict
// was reached.
func (w *Worker) Evaluate(ctx context.Context, req EvalRequest) (result.SubmissionResult, error) {
	if err := validateEvalRequest(req); err != nil {
		return result.SubmissionResult{}, err
	}
	if w.runner == nil || w.langRepo == nil {
		return result.SubmissionResult{}, appErr.New(appErr.JudgeSystemError).WithMessage("worker dependencies are not initialized")
	}

	lang, err := w.langRepo.GetLanguageSpec(ctx, req.Language)
	if err != nil {
		return result.SubmissionResult{}, err
	}

	res := result.SubmissionResult{SubmissionID: req.SubmissionID}
	totalTests := len(req.Tests)

	submissionRoot := filepath.Join(req.WorkRoot, req.SubmissionID)
	if err := os.MkdirAll(submissionRoot, 0755); err != nil {
		return res, appErr.Wrapf(err, appErr.JudgeSystemError, "create submission work root failed")
	}
	// Workdirs are scoped to this evaluation; released on every exit path.
	defer func() {
		_ = os.RemoveAll(submissionRoot)
	}()

	compileDir := filepath.Join(submissionRoot, "compile")
	if err := os.MkdirAll(compileDir, 0755); err != nil {
		return res, appErr.Wrapf(err, appErr.JudgeSystemError, "create compile workdir failed")
	}

	compileRes, err := w.runner.Compile(ctx, runner.CompileRequest{
		SubmissionID: req.SubmissionID,
		WorkDir:      compileDir,
		Source:       req.Source,
		Language:     lang,
	})
	if err != nil {
		return res, err
	}
	res.Compile = &compileRes
	if !compileRes.OK {
		res.Status = result.VerdictCompilationError
		res.Message = "Compilation failed."
		res.Results = []result.TestCaseResult{}
		return res, nil
	}

	worst := result.VerdictAccepted
	attempted := 0
	passed := 0
	w.reportProgress(ctx, req, totalTests, 0)

	for _, tc := range req.Tests {
		stdin, err := iofmt.EncodeStdin(req.Spec.Parameters, tc.InputData)
		if err != nil {
			return res, appErr.Wrapf(err, appErr.GetCode(err), "render stdin for test case %d failed", tc.ID)
		}

		testDir := filepath.Join(submissionRoot, strconv.FormatInt(tc.ID, 10))
		runRes, err := w.runner.Run(ctx, runner.RunRequest{
			SubmissionID: req.SubmissionID,
			TestID:       tc.ID,
			WorkDir:      testDir,
			ArtifactDir:  compileDir,
			Language:     lang,
			Stdin:        stdin,
			WallTimeMs:   req.PerTestTimeoutMs,
		})
		if err != nil {
			// Cancellation and infrastructure failures surface as errors,
			// never as a verdict.
			return res, err
		}

		tcRes := classify(req.Spec, tc, runRes)
		res.Results = append(res.Results, tcRes)
		res.TotalDurationMs += tcRes.DurationMs
		attempted++
		if tcRes.Passed {
			passed++
		}
		worst = result.Worse(worst, tcRes.Verdict)
		w.reportProgress(ctx, req, totalTests, attempted)

		if req.Mode == model.ModeSubmit && !tcRes.Passed {
			break
		}
	}

	res.Status = worst
	res.TotalTests = attempted
	res.PassedTests = passed
	if worst == result.VerdictAccepted {
		res.Message = fmt.Sprintf("Accepted! All %d test cases passed.", attempted)
	} else {
		res.Message = fmt.Sprintf("Passed %d/%d test cases.", passed, attempted)
	}
	return res, nil
}

// classify maps one raw run onto a verdict. Timeout dominates the exit code:
// the kill that enforces the limit also makes the process exit abnormally,
// and that must not read as a crash.
func classify(spec model.FunctionSpec, tc model.TestCase, run result.RunResult) result.TestCaseResult {
	tcRes := result.TestCaseResult{
		TestCaseID: tc.ID,
		Input:      tc.InputData,
		Expected:   tc.ExpectedOutput,
		Actual:     run.Stdout,
		DurationMs: run.TimeMs,
		Hidden:     tc.IsHidden,
	}
	switch {
	case run.TimedOut:
		tcRes.Verdict = result.VerdictTimeLimitExceeded
		tcRes.Error = "time limit exceeded"
	case run.ExitCode != 0:
		tcRes.Verdict = result.VerdictRuntimeError
		tcRes.Error = run.Stderr
	default:
		equal := false
		if spec.ReturnType == model.TypeBool {
			equal = checker.EquivalentBool(run.Stdout, tc.ExpectedOutput)
		} else {
			equal = checker.Equivalent(run.Stdout, tc.ExpectedOutput)
		}
		if equal {
			tcRes.Verdict = result.VerdictAccepted
			tcRes.Passed = true
		} else {
			tcRes.Verdict = result.VerdictWrongAnswer
		}
	}
	return tcRes
}

func (w *Worker) reportProgress(ctx context.Context, req EvalRequest, totalTests, doneTests int) {
	if w.statusReporter == nil {
		return
	}
	_ = w.statusReporter.ReportStatus(ctx, StatusUpdate{
		SubmissionID: req.SubmissionID,
		Status:       result.StatusRunning,
		Language:     req.Language,
		TotalTests:   totalTests,
		DoneTests:    doneTests,
		ReceivedAt:   time.Now().Unix(),
	})
}

func validateEvalRequest(req EvalRequest) error {
	if req.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	if req.Language == "" {
		return appErr.ValidationError("language", "required")
	}
	if req.Source == "" {
		return appErr.ValidationError("source", "required")
	}
	if req.WorkRoot == "" {
		return appErr.ValidationError("work_root", "required")
	}
	if !req.Mode.Valid() {
		return appErr.ValidationError("mode", "must be run or submit")
	}
	if err := req.Spec.Validate(); err != nil {
		return appErr.Wrap(err, appErr.FunctionSpecEmpty)
	}
	if len(req.Tests) == 0 {
		return appErr.New(appErr.TestCaseNotFound).WithMessage("no test cases to evaluate")
	}
	return nil
}
