package sandbox

import (
	"context"

	"codearena/internal/judge/sandbox/result"
)

// StatusUpdate carries intermediate judge progress data.
type StatusUpdate struct {
	SubmissionID string
	Status       result.JudgeStatus
	Language     string
	TotalTests   int
	DoneTests    int
	ReceivedAt   int64
	FinishedAt   int64
}

// StatusReporter persists intermediate status updates.
type StatusReporter interface {
	ReportStatus(ctx context.Context, update StatusUpdate) error
}
