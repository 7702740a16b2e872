package model

import "codearena/internal/judge/sandbox/result"

// JudgeStatusResponse is the externally visible state of one submission. The
// embedded Result is present only once the lifecycle reaches Finished, and is
// always the sanitized form.
type JudgeStatusResponse struct {
	SubmissionID string                   `json:"submission_id"`
	Status       result.JudgeStatus       `json:"status"`
	Language     string                   `json:"language"`
	Mode         EvalMode                 `json:"mode,omitempty"`
	Progress     Progress                 `json:"progress"`
	Result       *result.SubmissionResult `json:"result,omitempty"`
	ReceivedAt   int64                    `json:"received_at,omitempty"`
	FinishedAt   int64                    `json:"finished_at,omitempty"`
	ErrorCode    int                      `json:"error_code,omitempty"`
	ErrorMessage string                   `json:"error_message,omitempty"`
}

// Progress reports how far the test loop has advanced.
type Progress struct {
	TotalTests int `json:"total_tests"`
	DoneTests  int `json:"done_tests"`
}

// Terminal reports whether the status can no longer change.
func (s JudgeStatusResponse) Terminal() bool {
	return s.Status == result.StatusFinished || s.Status == result.StatusFailed
}

// StatusEventFinal marks an event carrying a terminal status.
const StatusEventFinal = "final"

// StatusEvent is the queue payload emitted when a submission reaches a
// terminal state.
type StatusEvent struct {
	Type      string              `json:"type"`
	Status    JudgeStatusResponse `json:"status"`
	CreatedAt int64               `json:"created_at"`
}
