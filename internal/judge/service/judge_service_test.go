package service_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"testing"
	"time"

	"codearena/internal/common/cache"
	"codearena/internal/common/mq"
	"codearena/internal/common/storage"
	"codearena/internal/judge/model"
	"codearena/internal/judge/repository"
	"codearena/internal/judge/sandbox"
	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/service"
	appErr "codearena/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeEvaluator struct {
	res  result.SubmissionResult
	err  error
	reqs []sandbox.EvalRequest
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, req sandbox.EvalRequest) (result.SubmissionResult, error) {
	f.reqs = append(f.reqs, req)
	return f.res, f.err
}

type specCall struct {
	problemID int64
}

type fakeProblemStore struct {
	spec     model.FunctionSpec
	specErr  error
	tests    []model.TestCase
	testsErr error

	specCalls   []specCall
	hiddenFlags []bool
}

func (f *fakeProblemStore) GetFunctionSpec(ctx context.Context, problemID int64) (model.FunctionSpec, error) {
	f.specCalls = append(f.specCalls, specCall{problemID: problemID})
	return f.spec, f.specErr
}

func (f *fakeProblemStore) GetTestCases(ctx context.Context, problemID int64, includeHidden bool) ([]model.TestCase, error) {
	f.hiddenFlags = append(f.hiddenFlags, includeHidden)
	if f.testsErr != nil {
		return nil, f.testsErr
	}
	if includeHidden {
		return f.tests, nil
	}
	public := make([]model.TestCase, 0, len(f.tests))
	for _, tc := range f.tests {
		if !tc.IsHidden {
			public = append(public, tc)
		}
	}
	return public, nil
}

type fakeObjectReader struct {
	*bytes.Reader
}

func (fakeObjectReader) Close() error { return nil }

type fakeStorage struct {
	objects map[string][]byte
	err     error
}

func (f *fakeStorage) GetObject(ctx context.Context, bucket, objectKey string) (storage.ObjectReader, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[objectKey]
	if !ok {
		return nil, appErr.NotFoundError("object")
	}
	return fakeObjectReader{bytes.NewReader(data)}, nil
}

func (f *fakeStorage) PutObject(ctx context.Context, bucket, objectKey string, reader io.Reader, sizeBytes int64, contentType string) error {
	return nil
}

func (f *fakeStorage) StatObject(ctx context.Context, bucket, objectKey string) (storage.ObjectStat, error) {
	data, ok := f.objects[objectKey]
	if !ok {
		return storage.ObjectStat{}, appErr.NotFoundError("object")
	}
	return storage.ObjectStat{SizeBytes: int64(len(data))}, nil
}

type fakePublisher struct {
	statuses []model.JudgeStatusResponse
}

func (f *fakePublisher) PublishFinalStatus(ctx context.Context, status model.JudgeStatusResponse) error {
	f.statuses = append(f.statuses, status)
	return nil
}

type testHarness struct {
	svc       *service.Service
	repo      *repository.StatusRepository
	evaluator *fakeEvaluator
	problems  *fakeProblemStore
	storage   *fakeStorage
	publisher *fakePublisher
}

func newHarness(t *testing.T, mutate func(*service.Config)) *testHarness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redisCache, err := cache.NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	repo := repository.NewStatusRepository(redisCache, time.Minute)

	evaluator := &fakeEvaluator{res: result.SubmissionResult{
		SubmissionID: "sub-1",
		Status:       result.VerdictAccepted,
		Message:      "Accepted! All 1 test cases passed.",
		Results:      []result.TestCaseResult{{TestCaseID: 1, Verdict: result.VerdictAccepted, Passed: true}},
		TotalTests:   1,
		PassedTests:  1,
	}}
	problems := &fakeProblemStore{
		spec: model.FunctionSpec{
			Name:       "solve",
			Parameters: []model.Parameter{{Name: "n", Type: model.TypeInt}},
			ReturnType: model.TypeInt,
		},
		tests: []model.TestCase{
			{ID: 1, InputData: `{"n": 1}`, ExpectedOutput: "1"},
			{ID: 2, InputData: `{"n": 2}`, ExpectedOutput: "2", IsHidden: true},
		},
	}
	source := []byte("print(int(input()))")
	store := &fakeStorage{objects: map[string][]byte{"sources/sub-1": source}}
	publisher := &fakePublisher{}

	cfg := service.Config{
		Evaluator:    evaluator,
		StatusRepo:   repo,
		Problems:     problems,
		Storage:      store,
		Publisher:    publisher,
		SourceBucket: "submissions",
		WorkRoot:     t.TempDir(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := service.NewService(cfg)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return &testHarness{svc: svc, repo: repo, evaluator: evaluator, problems: problems, storage: store, publisher: publisher}
}

func judgeTaskMessage(t *testing.T, source []byte, mode model.EvalMode) *mq.Message {
	t.Helper()
	sum := sha256.Sum256(source)
	payload, err := json.Marshal(model.JudgeMessage{
		SubmissionID: "sub-1",
		ProblemID:    7,
		Language:     "python",
		Mode:         mode,
		SourceKey:    "sources/sub-1",
		SourceHash:   hex.EncodeToString(sum[:]),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	msg := mq.NewMessage(payload)
	msg.ID = "sub-1"
	return msg
}

func TestHandleMessageAccepted(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()

	msg := judgeTaskMessage(t, []byte("print(int(input()))"), model.ModeSubmit)
	if err := h.svc.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	status, err := h.repo.Get(ctx, "sub-1")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.Status != result.StatusFinished {
		t.Fatalf("expected Finished, got %s", status.Status)
	}
	if status.Result == nil || status.Result.Status != result.VerdictAccepted {
		t.Fatalf("result missing or wrong: %+v", status.Result)
	}
	if len(h.publisher.statuses) != 1 {
		t.Fatalf("expected 1 final event, got %d", len(h.publisher.statuses))
	}
	if len(h.evaluator.reqs) != 1 {
		t.Fatalf("expected 1 evaluation, got %d", len(h.evaluator.reqs))
	}
	// Submit mode must include hidden tests.
	if len(h.problems.hiddenFlags) != 1 || !h.problems.hiddenFlags[0] {
		t.Fatalf("submit mode must request hidden tests: %v", h.problems.hiddenFlags)
	}
	if got := len(h.evaluator.reqs[0].Tests); got != 2 {
		t.Fatalf("expected 2 tests handed to evaluator, got %d", got)
	}
}

func TestHandleMessageRunModeFiltersHidden(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	msg := judgeTaskMessage(t, []byte("print(int(input()))"), model.ModeRun)
	if err := h.svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(h.problems.hiddenFlags) != 1 || h.problems.hiddenFlags[0] {
		t.Fatalf("run mode must exclude hidden tests: %v", h.problems.hiddenFlags)
	}
	if got := len(h.evaluator.reqs[0].Tests); got != 1 {
		t.Fatalf("expected 1 public test handed to evaluator, got %d", got)
	}
}

func TestHandleMessageSanitizesHiddenResults(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.evaluator.res = result.SubmissionResult{
		SubmissionID: "sub-1",
		Status:       result.VerdictWrongAnswer,
		Message:      "Passed 1/2 test cases.",
		Results: []result.TestCaseResult{
			{TestCaseID: 1, Verdict: result.VerdictAccepted, Passed: true, Input: "1", Expected: "1", Actual: "1"},
			{TestCaseID: 2, Verdict: result.VerdictWrongAnswer, Input: "2", Expected: "2", Actual: "3", Hidden: true},
		},
		TotalTests:  2,
		PassedTests: 1,
	}

	msg := judgeTaskMessage(t, []byte("print(int(input()))"), model.ModeSubmit)
	if err := h.svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	status, err := h.repo.Get(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	hidden := status.Result.Results[1]
	if hidden.Input != "" || hidden.Expected != "" || hidden.Actual != "" {
		t.Fatalf("hidden test leaked through status: %+v", hidden)
	}
	if status.Result.Results[0].Input == "" {
		t.Fatalf("public test was masked")
	}
}

func TestHandleMessageDiscardsMalformed(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	ctx := context.Background()

	if err := h.svc.HandleMessage(ctx, mq.NewMessage([]byte("not json"))); err != nil {
		t.Fatalf("undecodable message must commit, got %v", err)
	}

	payload, _ := json.Marshal(model.JudgeMessage{SubmissionID: "sub-1"})
	if err := h.svc.HandleMessage(ctx, mq.NewMessage(payload)); err != nil {
		t.Fatalf("invalid message must commit, got %v", err)
	}
	if len(h.evaluator.reqs) != 0 {
		t.Fatalf("invalid messages must not reach the evaluator")
	}
}

func TestHandleMessageTerminalFailureCommits(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.problems.specErr = appErr.New(appErr.ProblemNotFound)

	msg := judgeTaskMessage(t, []byte("print(int(input()))"), model.ModeSubmit)
	if err := h.svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("non-retryable failure must commit, got %v", err)
	}

	status, err := h.repo.Get(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.Status != result.StatusFailed {
		t.Fatalf("expected Failed, got %s", status.Status)
	}
	if status.ErrorCode != int(appErr.ProblemNotFound) {
		t.Fatalf("expected ProblemNotFound code, got %d", status.ErrorCode)
	}
	if len(h.publisher.statuses) != 1 {
		t.Fatalf("terminal failure must publish a final event")
	}
}

func TestHandleMessageRetryableFailureRedelivers(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)
	h.problems.specErr = appErr.New(appErr.DatabaseError)

	msg := judgeTaskMessage(t, []byte("print(int(input()))"), model.ModeSubmit)
	err := h.svc.HandleMessage(context.Background(), msg)
	if !appErr.Is(err, appErr.DatabaseError) {
		t.Fatalf("retryable failure must be returned for redelivery, got %v", err)
	}
}

func TestHandleMessageHashMismatch(t *testing.T) {
	t.Parallel()
	h := newHarness(t, nil)

	msg := judgeTaskMessage(t, []byte("tampered source"), model.ModeSubmit)
	if err := h.svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("hash mismatch must commit, got %v", err)
	}

	status, err := h.repo.Get(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.Status != result.StatusFailed {
		t.Fatalf("expected Failed, got %s", status.Status)
	}
	if status.ErrorCode != int(appErr.SourceHashMismatch) {
		t.Fatalf("expected SourceHashMismatch, got %d", status.ErrorCode)
	}
	if len(h.evaluator.reqs) != 0 {
		t.Fatalf("tampered source must not be evaluated")
	}
}

func TestHandleMessageSourceTooLarge(t *testing.T) {
	t.Parallel()
	h := newHarness(t, func(cfg *service.Config) {
		cfg.MaxSourceBytes = 8
	})

	msg := judgeTaskMessage(t, []byte("print(int(input()))"), model.ModeSubmit)
	if err := h.svc.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("oversized source must commit, got %v", err)
	}

	status, err := h.repo.Get(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if status.ErrorCode != int(appErr.CodeTooLarge) {
		t.Fatalf("expected CodeTooLarge, got %d", status.ErrorCode)
	}
}

func TestFunctionSpecCache(t *testing.T) {
	t.Parallel()
	h := newHarness(t, func(cfg *service.Config) {
		cfg.SpecCacheTTL = time.Minute
	})
	ctx := context.Background()
	source := []byte("print(int(input()))")

	if err := h.svc.HandleMessage(ctx, judgeTaskMessage(t, source, model.ModeSubmit)); err != nil {
		t.Fatalf("first handle failed: %v", err)
	}
	if err := h.svc.HandleMessage(ctx, judgeTaskMessage(t, source, model.ModeSubmit)); err != nil {
		t.Fatalf("second handle failed: %v", err)
	}
	if len(h.problems.specCalls) != 1 {
		t.Fatalf("expected 1 spec load with warm cache, got %d", len(h.problems.specCalls))
	}
}
