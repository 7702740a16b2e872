package service

import (
	"context"
	"errors"
	"time"

	"codearena/internal/judge/model"
	"codearena/internal/judge/sandbox"
	"codearena/internal/judge/sandbox/result"
	appErr "codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"go.uber.org/zap"
)

func (s *Service) persistStatus(ctx context.Context, status model.JudgeStatusResponse) error {
	ctxStatus, cancel := s.scopedContext(ctx, s.statusTimeout)
	defer cancel()
	return s.statusRepo.Save(ctxStatus, status)
}

// ReportStatus updates intermediate judge progress in cache. Implements
// sandbox.StatusReporter.
func (s *Service) ReportStatus(ctx context.Context, update sandbox.StatusUpdate) error {
	status := model.JudgeStatusResponse{
		SubmissionID: update.SubmissionID,
		Status:       update.Status,
		Language:     update.Language,
		Progress: model.Progress{
			TotalTests: update.TotalTests,
			DoneTests:  update.DoneTests,
		},
		ReceivedAt: update.ReceivedAt,
		FinishedAt: update.FinishedAt,
	}
	if err := s.persistStatus(ctx, status); err != nil {
		logger.Warn(ctx, "update intermediate status failed", zap.Error(err))
		return err
	}
	return nil
}

// handleFailure records a Failed terminal status. Retryable failures are
// returned so the message is redelivered; caller and data errors are
// swallowed after recording, since redelivery cannot fix them.
func (s *Service) handleFailure(ctx context.Context, payload model.JudgeMessage, receivedAt int64, err error) error {
	code := appErr.GetCode(err)
	failed := model.JudgeStatusResponse{
		SubmissionID: payload.SubmissionID,
		Status:       result.StatusFailed,
		Language:     payload.Language,
		Mode:         payload.Mode,
		ErrorCode:    int(code),
		ErrorMessage: err.Error(),
		ReceivedAt:   receivedAt,
		FinishedAt:   time.Now().Unix(),
	}
	if saveErr := s.persistStatus(ctx, failed); saveErr != nil {
		logger.Warn(ctx, "update failure status failed", zap.Error(saveErr))
	}
	s.publishFinal(ctx, failed)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if code.Retryable() {
		return err
	}
	logger.Warn(ctx, "submission failed", zap.Int("error_code", int(code)), zap.Error(err))
	return nil
}

func (s *Service) publishFinal(ctx context.Context, status model.JudgeStatusResponse) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishFinalStatus(ctx, status); err != nil {
		logger.Warn(ctx, "publish final status failed", zap.Error(err))
	}
}
