package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-comment-bot/internal/dto"
	"blog-comment-bot/internal/response"
	"blog-comment-bot/internal/service"
)

// CommentHandler serves the public comment API used by the blog
type CommentHandler struct {
	commentService service.CommentService
	logger         *zap.Logger
}

func NewCommentHandler(commentService service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{commentService: commentService, logger: logger}
}

// GetComments returns the approved thread of a post.
// GET /comments?postId=ko/weekly/250823
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID := c.Query("postId")
	if postID == "" {
		postID = c.Query("post_id")
	}

	thread, err := h.commentService.ListThread(c.Request.Context(), postID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, thread)
}

// CreateComment stores a visitor comment.
// POST /comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body")
		return
	}

	comment, err := h.commentService.CreateHumanComment(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccessWithMessage(c, http.StatusCreated, "댓글이 등록되었습니다.", comment)
}
