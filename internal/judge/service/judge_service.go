// Package service orchestrates judge tasks: it consumes queue messages,
// gathers problem data and submitted source, runs the sandbox worker under a
// bounded pool, and persists status transitions.
package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"codearena/internal/common/mq"
	"codearena/internal/common/storage"
	"codearena/internal/judge/model"
	"codearena/internal/judge/problemstore"
	"codearena/internal/judge/repository"
	"codearena/internal/judge/sandbox"
	"codearena/internal/judge/sandbox/result"
	appErr "codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

const defaultMaxSourceBytes = 256 * 1024

// Service handles judge tasks end to end.
type Service struct {
	evaluator  sandbox.Evaluator
	statusRepo *repository.StatusRepository
	problems   problemstore.Store
	storage    storage.ObjectStorage
	publisher  repository.StatusEventPublisher
	queue      mq.MessageQueue
	retryTopic string
	deadLetter string

	sourceBucket   string
	workRoot       string
	maxSourceBytes int64

	workerTimeout  time.Duration
	problemTimeout time.Duration
	storageTimeout time.Duration
	statusTimeout  time.Duration

	specTTL   time.Duration
	specMu    sync.Mutex
	specCache map[int64]specEntry

	poolWait      time.Duration
	poolRetryMax  int
	poolRetryBase time.Duration
	poolRetryMaxD time.Duration
	sem           chan struct{}
}

// Config holds service dependencies and settings.
type Config struct {
	Evaluator  sandbox.Evaluator
	StatusRepo *repository.StatusRepository
	Problems   problemstore.Store
	Storage    storage.ObjectStorage

	// Publisher is optional; terminal statuses are announced on it when set.
	Publisher repository.StatusEventPublisher

	// Queue and RetryTopic enable requeueing when the worker pool is full.
	Queue           mq.MessageQueue
	RetryTopic      string
	DeadLetterTopic string

	SourceBucket   string
	WorkRoot       string
	MaxSourceBytes int64

	WorkerTimeout  time.Duration
	ProblemTimeout time.Duration
	StorageTimeout time.Duration
	StatusTimeout  time.Duration
	SpecCacheTTL   time.Duration

	WorkerPoolSize int
	PoolWait       time.Duration
	PoolRetryMax   int
	PoolRetryBase  time.Duration
	PoolRetryMaxD  time.Duration
}

// NewService creates a new judge service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if cfg.StatusRepo == nil {
		return nil, fmt.Errorf("status repository is required")
	}
	if cfg.Problems == nil {
		return nil, fmt.Errorf("problem store is required")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.SourceBucket == "" {
		return nil, fmt.Errorf("source bucket is required")
	}
	if cfg.WorkRoot == "" {
		return nil, fmt.Errorf("work root is required")
	}
	poolSize := cfg.WorkerPoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	poolWait := cfg.PoolWait
	if poolWait <= 0 {
		poolWait = 2 * time.Second
	}
	maxSource := cfg.MaxSourceBytes
	if maxSource <= 0 {
		maxSource = defaultMaxSourceBytes
	}
	return &Service{
		evaluator:      cfg.Evaluator,
		statusRepo:     cfg.StatusRepo,
		problems:       cfg.Problems,
		storage:        cfg.Storage,
		publisher:      cfg.Publisher,
		queue:          cfg.Queue,
		retryTopic:     cfg.RetryTopic,
		deadLetter:     cfg.DeadLetterTopic,
		sourceBucket:   cfg.SourceBucket,
		workRoot:       cfg.WorkRoot,
		maxSourceBytes: maxSource,
		workerTimeout:  cfg.WorkerTimeout,
		problemTimeout: cfg.ProblemTimeout,
		storageTimeout: cfg.StorageTimeout,
		statusTimeout:  cfg.StatusTimeout,
		specTTL:        cfg.SpecCacheTTL,
		specCache:      make(map[int64]specEntry),
		poolWait:       poolWait,
		poolRetryMax:   cfg.PoolRetryMax,
		poolRetryBase:  cfg.PoolRetryBase,
		poolRetryMaxD:  cfg.PoolRetryMaxD,
		sem:            make(chan struct{}, poolSize),
	}, nil
}

// HandleMessage processes one judge task message. A nil return commits the
// message; an error requests redelivery, so only retryable failures return
// errors.
func (s *Service) HandleMessage(ctx context.Context, msg *mq.Message) error {
	if msg == nil {
		return nil
	}
	var payload model.JudgeMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		logger.Warn(ctx, "discard undecodable judge message", zap.Error(err), zap.String("message_id", msg.ID))
		return nil
	}
	if err := payload.Validate(); err != nil {
		logger.Warn(ctx, "discard invalid judge message", zap.Error(err), zap.String("message_id", msg.ID))
		return nil
	}
	ctx = logger.ContextWithSubmission(ctx, payload.SubmissionID, payload.ProblemID)

	receivedAt := time.Now().Unix()
	pending := model.JudgeStatusResponse{
		SubmissionID: payload.SubmissionID,
		Status:       result.StatusPending,
		Language:     payload.Language,
		Mode:         payload.Mode,
		ReceivedAt:   receivedAt,
	}
	if err := s.persistStatus(ctx, pending); err != nil {
		return err
	}

	if err := s.acquireSlot(ctx); err != nil {
		if appErr.Is(err, appErr.JudgeQueueFull) {
			return s.requeueForPoolFull(ctx, msg)
		}
		return err
	}
	defer s.releaseSlot()

	running := pending
	running.Status = result.StatusRunning
	if err := s.persistStatus(ctx, running); err != nil {
		return err
	}

	spec, err := s.getFunctionSpec(ctx, payload.ProblemID)
	if err != nil {
		return s.handleFailure(ctx, payload, receivedAt, err)
	}

	// Run mode judges public tests only; hidden tests are reserved for
	// submissions.
	includeHidden := payload.Mode == model.ModeSubmit
	ctxDB, cancelDB := s.scopedContext(ctx, s.problemTimeout)
	tests, err := s.problems.GetTestCases(ctxDB, payload.ProblemID, includeHidden)
	cancelDB()
	if err != nil {
		return s.handleFailure(ctx, payload, receivedAt, err)
	}

	source, err := s.fetchSource(ctx, payload)
	if err != nil {
		return s.handleFailure(ctx, payload, receivedAt, err)
	}

	running.Progress.TotalTests = len(tests)
	if err := s.persistStatus(ctx, running); err != nil {
		return err
	}

	ctxWorker, cancelWorker := s.scopedContext(ctx, s.workerTimeout)
	defer cancelWorker()
	res, err := s.evaluator.Evaluate(ctxWorker, sandbox.EvalRequest{
		SubmissionID:     payload.SubmissionID,
		Language:         payload.Language,
		Source:           source,
		Mode:             payload.Mode,
		Spec:             spec,
		Tests:            tests,
		WorkRoot:         s.workRoot,
		PerTestTimeoutMs: payload.PerTestTimeoutMs,
	})
	if err != nil {
		return s.handleFailure(ctx, payload, receivedAt, err)
	}

	sanitized := res.Sanitize()
	finished := model.JudgeStatusResponse{
		SubmissionID: payload.SubmissionID,
		Status:       result.StatusFinished,
		Language:     payload.Language,
		Mode:         payload.Mode,
		Progress:     model.Progress{TotalTests: res.TotalTests, DoneTests: res.TotalTests},
		Result:       &sanitized,
		ReceivedAt:   receivedAt,
		FinishedAt:   time.Now().Unix(),
	}
	if err := s.persistStatus(ctx, finished); err != nil {
		return err
	}
	s.publishFinal(ctx, finished)
	logger.Info(ctx, "submission judged",
		zap.String("status", string(res.Status)),
		zap.Int("passed", res.PassedTests),
		zap.Int("total", res.TotalTests),
		zap.Int64("duration_ms", res.TotalDurationMs))
	return nil
}

// fetchSource downloads, verifies and decodes the submitted source. The hash
// covers the stored bytes as uploaded; decoding happens after verification.
func (s *Service) fetchSource(ctx context.Context, payload model.JudgeMessage) (string, error) {
	ctxStorage, cancel := s.scopedContext(ctx, s.storageTimeout)
	defer cancel()

	reader, err := s.storage.GetObject(ctxStorage, s.sourceBucket, payload.SourceKey)
	if err != nil {
		return "", appErr.Wrapf(err, appErr.StorageError, "download source failed")
	}
	defer reader.Close()

	raw, err := io.ReadAll(io.LimitReader(reader, s.maxSourceBytes+1))
	if err != nil {
		return "", appErr.Wrapf(err, appErr.StorageError, "read source failed")
	}
	if int64(len(raw)) > s.maxSourceBytes {
		return "", appErr.Newf(appErr.CodeTooLarge, "source exceeds %d bytes", s.maxSourceBytes)
	}

	if payload.SourceHash != "" {
		sum := sha256.Sum256(raw)
		if !strings.EqualFold(hex.EncodeToString(sum[:]), payload.SourceHash) {
			return "", appErr.New(appErr.SourceHashMismatch).WithMessage("source hash mismatch")
		}
	}

	if payload.SourceEncoding == model.SourceEncodingZstd {
		dec, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", appErr.Wrapf(err, appErr.SourceDecodeFailed, "open zstd stream failed")
		}
		defer dec.Close()
		decoded, err := io.ReadAll(io.LimitReader(dec, s.maxSourceBytes+1))
		if err != nil {
			return "", appErr.Wrapf(err, appErr.SourceDecodeFailed, "decode source failed")
		}
		if int64(len(decoded)) > s.maxSourceBytes {
			return "", appErr.Newf(appErr.CodeTooLarge, "decoded source exceeds %d bytes", s.maxSourceBytes)
		}
		raw = decoded
	}
	return string(raw), nil
}

func (s *Service) scopedContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {}
}
