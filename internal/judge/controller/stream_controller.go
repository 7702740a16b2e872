package controller

import (
	"net/http"
	"strconv"
	"time"

	"codearena/internal/judge/repository"
	appErr "codearena/pkg/errors"
	"codearena/pkg/utils/logger"
	"codearena/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// StreamController pushes status updates over a websocket until the
// submission reaches a terminal state. Clients that only need the final
// verdict can poll GetStatus instead.
type StreamController struct {
	repo         *repository.StatusRepository
	pollInterval time.Duration
	maxDuration  time.Duration
	upgrader     websocket.Upgrader
}

// NewStreamController creates a new controller.
func NewStreamController(repo *repository.StatusRepository, pollInterval, maxDuration time.Duration) *StreamController {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if maxDuration <= 0 {
		maxDuration = 5 * time.Minute
	}
	return &StreamController{
		repo:         repo,
		pollInterval: pollInterval,
		maxDuration:  maxDuration,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The judge API sits behind the gateway, which owns origin policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes mounts the controller on a router group.
func (h *StreamController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/submissions/:id/stream", h.StreamStatus)
}

// StreamStatus upgrades to a websocket and sends a status snapshot whenever
// it changes, closing after the terminal snapshot.
func (h *StreamController) StreamStatus(c *gin.Context) {
	submissionID := c.Param("id")
	if submissionID == "" {
		response.BadRequest(c, "submission id is required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(h.maxDuration)
	defer deadline.Stop()

	var lastSent string
	for {
		status, err := h.repo.Get(ctx, submissionID)
		if err != nil {
			if appErr.Is(err, appErr.SubmissionNotFound) {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "submission not found"),
					time.Now().Add(time.Second))
				return
			}
			logger.Warn(ctx, "stream status load failed", zap.Error(err))
			return
		}

		snapshot := string(status.Status) + "/" +
			strconv.Itoa(status.Progress.DoneTests) + "/" +
			strconv.Itoa(status.Progress.TotalTests)
		if snapshot != lastSent {
			if err := conn.WriteJSON(status); err != nil {
				return
			}
			lastSent = snapshot
		}
		if status.Terminal() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-ticker.C:
		}
	}
}
