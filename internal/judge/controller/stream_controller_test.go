package controller_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codearena/internal/common/cache"
	"codearena/internal/judge/controller"
	"codearena/internal/judge/model"
	"codearena/internal/judge/repository"
	"codearena/internal/judge/sandbox/result"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

func newStreamServer(t *testing.T) (*httptest.Server, *repository.StatusRepository) {
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
	controller.NewStreamController(repo, 10*time.Millisecond, time.Second).RegisterRoutes(router.Group("/api/v1/judge"))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, repo
}

func dialStream(t *testing.T, srv *httptest.Server, submissionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/judge/submissions/" + submissionID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestStreamStatusSendsSnapshotsUntilTerminal(t *testing.T) {
	t.Parallel()
	srv, repo := newStreamServer(t)
	ctx := context.Background()

	running := model.JudgeStatusResponse{
		SubmissionID: "sub-1",
		Status:       result.StatusRunning,
		Progress:     model.Progress{TotalTests: 2, DoneTests: 0},
	}
	if err := repo.Save(ctx, running); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	conn := dialStream(t, srv, "sub-1")
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first model.JudgeStatusResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first snapshot: %v", err)
	}
	if first.Status != result.StatusRunning {
		t.Fatalf("expected Running snapshot, got %s", first.Status)
	}

	finished := running
	finished.Status = result.StatusFinished
	finished.Progress.DoneTests = 2
	if err := repo.Save(ctx, finished); err != nil {
		t.Fatalf("update status: %v", err)
	}

	var second model.JudgeStatusResponse
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read terminal snapshot: %v", err)
	}
	if second.Status != result.StatusFinished {
		t.Fatalf("expected Finished snapshot, got %s", second.Status)
	}

	// After the terminal snapshot the server closes normally.
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal closure, got %v", err)
	}
}

func TestStreamStatusUnknownSubmission(t *testing.T) {
	t.Parallel()
	srv, _ := newStreamServer(t)

	conn := dialStream(t, srv, "missing")
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
}
