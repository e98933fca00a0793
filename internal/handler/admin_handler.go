package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"blog-comment-bot/internal/response"
	"blog-comment-bot/internal/service"
)

// AdminHandler serves moderation and reporting endpoints
type AdminHandler struct {
	commentService service.CommentService
	jobService     service.JobService
	logger         *zap.Logger
}

func NewAdminHandler(commentService service.CommentService, jobService service.JobService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{commentService: commentService, jobService: jobService, logger: logger}
}

// ListComments returns comments in every status, newest first.
// GET /admin/comments?postId=&page=&limit=
func (h *AdminHandler) ListComments(c *gin.Context) {
	page, limit := pagination(c)
	postID := c.Query("postId")
	if postID == "" {
		postID = c.Query("post_id")
	}

	list, err := h.commentService.ListAdmin(c.Request.Context(), postID, page, limit)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, list)
}

// DeleteComment hides a comment.
// DELETE /admin/comments/:id
func (h *AdminHandler) DeleteComment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid comment ID")
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccessWithMessage(c, http.StatusOK, "댓글이 삭제되었습니다.", gin.H{"id": id})
}

// ListJobs returns scheduled jobs, optionally filtered by status.
// GET /admin/jobs?status=pending
func (h *AdminHandler) ListJobs(c *gin.Context) {
	page, limit := pagination(c)

	jobs, err := h.jobService.ListJobs(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, jobs)
}

// PostsStats joins the blog sitemap with comment counts.
// GET /admin/posts-stats
func (h *AdminHandler) PostsStats(c *gin.Context) {
	stats, err := h.commentService.PostsStats(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, stats)
}

// pagination reads page and limit; the services clamp them
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
