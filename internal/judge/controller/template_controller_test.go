package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codearena/internal/common/cache"
	"codearena/internal/judge/controller"
	"codearena/internal/judge/model"
	"codearena/internal/judge/repository"
	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/template"
	appErr "codearena/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type fakeProblemStore struct {
	spec      model.FunctionSpec
	specErr   error
	specCalls int
}

func (f *fakeProblemStore) GetFunctionSpec(ctx context.Context, problemID int64) (model.FunctionSpec, error) {
	f.specCalls++
	return f.spec, f.specErr
}

func (f *fakeProblemStore) GetTestCases(ctx context.Context, problemID int64, includeHidden bool) ([]model.TestCase, error) {
	return nil, appErr.New(appErr.TestCaseNotFound)
}

type apiEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTemplateRouter(store *fakeProblemStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	ctrl := controller.NewTemplateController(store, template.New())
	ctrl.RegisterRoutes(router.Group("/api/v1/judge"))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var envelope apiEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return rec, envelope
}

func TestGetTemplate(t *testing.T) {
	t.Parallel()
	store := &fakeProblemStore{spec: model.FunctionSpec{
		Name:       "twoSum",
		Parameters: []model.Parameter{{Name: "nums", Type: model.TypeIntList}, {Name: "target", Type: model.TypeInt}},
		ReturnType: model.TypeIntList,
	}}
	router := newTemplateRouter(store)

	rec, envelope := doRequest(t, router, "/api/v1/judge/problems/7/template?language=python")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var data struct {
		ProblemID int64  `json:"problem_id"`
		Language  string `json:"language"`
		Function  string `json:"function"`
		Code      string `json:"code"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Function != "twoSum" || data.Language != "python" {
		t.Fatalf("unexpected payload: %+v", data)
	}
	if data.Code == "" {
		t.Fatalf("empty scaffold")
	}

	// Second request for the same (spec, language) must come from the cache.
	doRequest(t, router, "/api/v1/judge/problems/7/template?language=python")
	if store.specCalls != 2 {
		t.Fatalf("expected the spec to load per request, got %d calls", store.specCalls)
	}
}

func TestGetTemplateValidation(t *testing.T) {
	t.Parallel()
	store := &fakeProblemStore{spec: model.FunctionSpec{Name: "solve"}}
	router := newTemplateRouter(store)

	rec, _ := doRequest(t, router, "/api/v1/judge/problems/abc/template?language=python")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, "/api/v1/judge/problems/7/template")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing language, got %d", rec.Code)
	}

	rec, envelope := doRequest(t, router, "/api/v1/judge/problems/7/template?language=cobol")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown language, got %d", rec.Code)
	}
	if envelope.Code != int(appErr.LanguageNotSupported) {
		t.Fatalf("expected LanguageNotSupported code, got %d", envelope.Code)
	}
}

func TestGetTemplateProblemNotFound(t *testing.T) {
	t.Parallel()
	store := &fakeProblemStore{specErr: appErr.New(appErr.ProblemNotFound)}
	router := newTemplateRouter(store)

	rec, envelope := doRequest(t, router, "/api/v1/judge/problems/7/template?language=python")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if envelope.Code != int(appErr.ProblemNotFound) {
		t.Fatalf("expected ProblemNotFound code, got %d", envelope.Code)
	}
}

func TestGetLanguages(t *testing.T) {
	t.Parallel()
	router := newTemplateRouter(&fakeProblemStore{})

	rec, envelope := doRequest(t, router, "/api/v1/judge/languages")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var data struct {
		Languages []string `json:"languages"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Languages) != 5 {
		t.Fatalf("expected 5 languages, got %v", data.Languages)
	}
}

func newStatusRouter(t *testing.T) (*gin.Engine, *repository.StatusRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	redisCache, err := cache.NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	repo := repository.NewStatusRepository(redisCache, time.Minute)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller.NewJudgeController(repo).RegisterRoutes(router.Group("/api/v1/judge"))
	return router, repo
}

func TestGetStatus(t *testing.T) {
	t.Parallel()
	router, repo := newStatusRouter(t)

	saved := model.JudgeStatusResponse{
		SubmissionID: "sub-1",
		Status:       result.StatusRunning,
		Language:     "python",
		Progress:     model.Progress{TotalTests: 3, DoneTests: 1},
	}
	if err := repo.Save(context.Background(), saved); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	rec, envelope := doRequest(t, router, "/api/v1/judge/submissions/sub-1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got model.JudgeStatusResponse
	if err := json.Unmarshal(envelope.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.Status != result.StatusRunning || got.Progress.DoneTests != 1 {
		t.Fatalf("unexpected status payload: %+v", got)
	}
}

func TestGetStatusNotFound(t *testing.T) {
	t.Parallel()
	router, _ := newStatusRouter(t)

	rec, envelope := doRequest(t, router, "/api/v1/judge/submissions/missing/status")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if envelope.Code != int(appErr.SubmissionNotFound) {
		t.Fatalf("expected SubmissionNotFound code, got %d", envelope.Code)
	}
}
