package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-comment-bot/internal/dto"
	"blog-comment-bot/internal/response"
	"blog-comment-bot/internal/service"
)

// BotHandler runs the director on demand
type BotHandler struct {
	botService service.BotService
	logger     *zap.Logger
}

func NewBotHandler(botService service.BotService, logger *zap.Logger) *BotHandler {
	return &BotHandler{botService: botService, logger: logger}
}

// RunDirector generates one bot comment immediately.
// POST /bot/director
func (h *BotHandler) RunDirector(c *gin.Context) {
	var req dto.DirectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	result, err := h.botService.RunDirector(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, result)
}

// AutoTrigger reports the post's comment activity and runs the director.
// POST /bot/auto-trigger
func (h *BotHandler) AutoTrigger(c *gin.Context) {
	var req dto.AutoTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	result, err := h.botService.AutoTrigger(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccessWithMessage(c, http.StatusCreated, "자동 봇 트리거가 실행되었습니다.", result)
}
