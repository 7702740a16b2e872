// Package result defines sandbox execution results, submission verdicts and
// the external masking rules for hidden tests.
package result

// JudgeStatus represents the lifecycle state of a submission.
type JudgeStatus string

const (
	StatusPending  JudgeStatus = "Pending"
	StatusRunning  JudgeStatus = "Running"
	StatusFinished JudgeStatus = "Finished"
	StatusFailed   JudgeStatus = "Failed"
)

// Verdict is the outcome of evaluating user code. Verdicts are data carried
// in results, never Go errors.
type Verdict string

const (
	VerdictAccepted          Verdict = "Accepted"
	VerdictWrongAnswer       Verdict = "WrongAnswer"
	VerdictTimeLimitExceeded Verdict = "TimeLimitExceeded"
	VerdictRuntimeError      Verdict = "RuntimeError"
	VerdictCompilationError  Verdict = "CompilationError"
)

// verdictRank orders verdicts by severity for run-mode aggregation. A lower
// rank dominates: a submission's status is its worst observed verdict.
var verdictRank = map[Verdict]int{
	VerdictCompilationError:  0,
	VerdictRuntimeError:      1,
	VerdictTimeLimitExceeded: 2,
	VerdictWrongAnswer:       3,
	VerdictAccepted:          4,
}

// Worse returns the more severe of two verdicts.
func Worse(a, b Verdict) Verdict {
	ra, ok := verdictRank[a]
	if !ok {
		return b
	}
	rb, ok := verdictRank[b]
	if !ok {
		return a
	}
	if rb < ra {
		return b
	}
	return a
}

// RunResult captures raw sandbox execution data for one process run.
type RunResult struct {
	ExitCode int
	TimeMs   int64
	Stdout   string
	Stderr   string

	// TimedOut is set when the wall-clock limit killed the process. A timed
	// out run is never reported as a crash.
	TimedOut bool
}

// CompileResult contains compilation outcomes.
type CompileResult struct {
	OK       bool
	ExitCode int
	TimeMs   int64

	// Error holds compiler diagnostics when OK is false.
	Error string
}

// TestCaseResult contains per-test outcomes. Input/Expected/Actual are
// cleared by Sanitize before a hidden test leaves the judge.
type TestCaseResult struct {
	TestCaseID int64   `json:"test_case_id"`
	Verdict    Verdict `json:"verdict"`
	Passed     bool    `json:"passed"`
	Input      string  `json:"input,omitempty"`
	Expected   string  `json:"expected_output,omitempty"`
	Actual     string  `json:"actual_output,omitempty"`
	Error      string  `json:"error,omitempty"`
	DurationMs int64   `json:"duration_ms"`
	Hidden     bool    `json:"hidden"`
}

// SubmissionResult is the terminal outcome of one evaluation. Results
// preserve test declaration order; in submit mode they may be a strict prefix
// of the full test list.
type SubmissionResult struct {
	SubmissionID    string           `json:"submission_id"`
	Status          Verdict          `json:"status"`
	Message         string           `json:"message"`
	Compile         *CompileResult   `json:"compile,omitempty"`
	Results         []TestCaseResult `json:"results"`
	TotalTests      int              `json:"total_tests"`
	PassedTests     int              `json:"passed_tests"`
	TotalDurationMs int64            `json:"total_duration_ms"`
}

// Sanitize returns a copy safe for external exposure: hidden tests keep only
// pass/fail, verdict and timing.
func (r SubmissionResult) Sanitize() SubmissionResult {
	out := r
	out.Results = make([]TestCaseResult, len(r.Results))
	for i, tr := range r.Results {
		if tr.Hidden {
			tr.Input = ""
			tr.Expected = ""
			tr.Actual = ""
			tr.Error = ""
		}
		out.Results[i] = tr
	}
	return out
}
