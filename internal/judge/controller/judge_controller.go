// Package controller exposes the judge HTTP API: submission status, status
// streaming and solution templates.
package controller

import (
	"strconv"

	"codearena/internal/judge/repository"
	appErr "codearena/pkg/errors"
	"codearena/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// JudgeController handles judge status requests.
type JudgeController struct {
	repo *repository.StatusRepository
}

// NewJudgeController creates a new controller.
func NewJudgeController(repo *repository.StatusRepository) *JudgeController {
	return &JudgeController{repo: repo}
}

// RegisterRoutes mounts the controller on a router group.
func (h *JudgeController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/submissions/:id/status", h.GetStatus)
}

// GetStatus returns the current status for one submission.
func (h *JudgeController) GetStatus(c *gin.Context) {
	submissionID := c.Param("id")
	if submissionID == "" {
		response.BadRequest(c, "submission id is required")
		return
	}
	status, err := h.repo.Get(c.Request.Context(), submissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status)
}

func parseProblemID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErr.ValidationError("problem_id", "must be a positive integer")
	}
	return id, nil
}
