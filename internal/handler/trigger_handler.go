package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-comment-bot/internal/dto"
	"blog-comment-bot/internal/response"
	"blog-comment-bot/internal/service"
)

// TriggerHandler receives the new-post webhook and the cron sweep call
type TriggerHandler struct {
	jobService service.JobService
	logger     *zap.Logger
}

func NewTriggerHandler(jobService service.JobService, logger *zap.Logger) *TriggerHandler {
	return &TriggerHandler{jobService: jobService, logger: logger}
}

// NewPost schedules a delayed director run for a freshly published post.
// POST /webhook/new-post
func (h *TriggerHandler) NewPost(c *gin.Context) {
	var req dto.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	job, err := h.jobService.Enqueue(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	message := fmt.Sprintf("%d분 후 댓글 생성이 예약되었습니다.", job.DelayMinutes)
	response.SendSuccessWithMessage(c, http.StatusCreated, message, job)
}

// Sweep processes every due job. Wired for external schedulers; the in-process
// cron calls the same service.
// GET|POST /cron/sweep
func (h *TriggerHandler) Sweep(c *gin.Context) {
	report, err := h.jobService.Sweep(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	var message string
	switch {
	case report.LockHeld:
		message = "다른 인스턴스에서 처리 중입니다."
	case len(report.Results) == 0:
		message = "실행할 작업이 없습니다."
	default:
		message = fmt.Sprintf("%d개 작업이 처리되었습니다.", report.ProcessedCount)
	}
	response.SendSuccessWithMessage(c, http.StatusOK, message, report)
}
