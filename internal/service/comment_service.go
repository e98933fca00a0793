package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog-comment-bot/internal/client"
	"blog-comment-bot/internal/domain"
	"blog-comment-bot/internal/dto"
	"blog-comment-bot/internal/metrics"
	"blog-comment-bot/internal/repository"
	"blog-comment-bot/internal/response"
)

// CommentService handles human submissions and comment administration
type CommentService interface {
	ListThread(ctx context.Context, postID string) (*dto.CommentThreadResponse, error)
	CreateHumanComment(ctx context.Context, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListAdmin(ctx context.Context, postID string, page, limit int) (*dto.CommentListResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PostsStats(ctx context.Context) (*dto.PostsStatsResponse, error)
}

// commentServiceImpl is the implementation of CommentService
type commentServiceImpl struct {
	commentRepo   repository.CommentRepository
	blog          client.BlogClient
	defaultAvatar string
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// NewCommentService creates a new instance of CommentService
func NewCommentService(
	commentRepo repository.CommentRepository,
	blog client.BlogClient,
	defaultAvatar string,
	logger *zap.Logger,
	m *metrics.Metrics,
) CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &commentServiceImpl{
		commentRepo:   commentRepo,
		blog:          blog,
		defaultAvatar: defaultAvatar,
		logger:        logger,
		metrics:       m,
	}
}

// ListThread returns approved comments with replies nested under their parents
func (s *commentServiceImpl) ListThread(ctx context.Context, postID string) (*dto.CommentThreadResponse, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, response.NewAppError(response.ErrCodeMissingFields, "postId is required", "")
	}

	comments, err := s.commentRepo.FindApprovedByPostID(ctx, postID)
	if err != nil {
		s.logger.Error("Failed to load comments", zap.String("post_id", postID), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load comments", err.Error())
	}

	return &dto.CommentThreadResponse{
		PostID:   postID,
		Total:    len(comments),
		Comments: buildThread(comments),
	}, nil
}

// buildThread nests replies under their parents. Input is chronological and so
// is every level of the output. Replies whose parent is not visible are lifted
// to the top level.
func buildThread(comments []*domain.Comment) []*dto.CommentResponse {
	nodes := make(map[uuid.UUID]*dto.CommentResponse, len(comments))
	for _, c := range comments {
		nodes[c.ID] = dto.NewCommentResponse(c)
	}

	roots := make([]*dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// CreateHumanComment validates and stores a visitor comment. Comments are
// approved on arrival.
func (s *commentServiceImpl) CreateHumanComment(ctx context.Context, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	req.Normalize()

	var missing []string
	if req.PostID == "" {
		missing = append(missing, "post_id")
	}
	if req.Content == "" {
		missing = append(missing, "content")
	}
	if req.AuthorName == "" {
		missing = append(missing, "author_name")
	}
	if len(missing) > 0 {
		return nil, response.NewAppError(response.ErrCodeMissingFields, "Missing required fields", strings.Join(missing, ", "))
	}
	if utf8.RuneCountInString(req.Content) > domain.MaxCommentLength {
		return nil, response.NewAppError(response.ErrCodeContentTooLong, "Comment is too long", "max 1000 characters")
	}

	comment := &domain.Comment{
		PostID:       req.PostID,
		Content:      req.Content,
		AuthorName:   req.AuthorName,
		AuthorAvatar: req.AuthorAvatar,
		IsBot:        false,
		Status:       domain.CommentStatusApproved,
	}
	if comment.AuthorAvatar == "" {
		comment.AuthorAvatar = s.defaultAvatar + url.QueryEscape(req.AuthorName)
	}

	if req.ParentID != nil {
		parentID, err := uuid.Parse(strings.TrimSpace(*req.ParentID))
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeValidation, "Invalid parent_id", *req.ParentID)
		}
		parent, err := s.commentRepo.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewAppError(response.ErrCodeValidation, "Parent comment not found", parentID.String())
			}
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load parent comment", err.Error())
		}
		if parent.PostID != req.PostID || parent.Status != domain.CommentStatusApproved {
			return nil, response.NewAppError(response.ErrCodeValidation, "Parent comment does not belong to this post", parentID.String())
		}
		comment.ParentID = &parentID
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		s.logger.Error("Failed to create comment", zap.String("post_id", req.PostID), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to create comment", err.Error())
	}

	s.metrics.IncrementCommentCreated(metrics.SourceHuman)
	s.logger.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("post_id", comment.PostID),
		zap.Bool("is_reply", comment.IsReply()),
	)
	return dto.NewCommentResponse(comment), nil
}

// ListAdmin returns a page of comments in every status, newest first
func (s *commentServiceImpl) ListAdmin(ctx context.Context, postID string, page, limit int) (*dto.CommentListResponse, error) {
	page, limit = normalizePage(page, limit)

	comments, total, err := s.commentRepo.List(ctx, repository.CommentFilter{PostID: strings.TrimSpace(postID)}, page, limit)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list comments", err.Error())
	}

	resp := &dto.CommentListResponse{Comments: make([]*dto.CommentResponse, 0, len(comments)), Total: total, Page: page, Limit: limit}
	for _, c := range comments {
		resp.Comments = append(resp.Comments, dto.NewCommentResponse(c))
	}
	return resp, nil
}

// Delete hides a comment. The row stays so replies keep a valid parent.
func (s *commentServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.commentRepo.UpdateStatus(ctx, id, domain.CommentStatusDeleted); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Comment not found", id.String())
		}
		return response.NewAppError(response.ErrCodeInternal, "Failed to delete comment", err.Error())
	}
	s.metrics.IncrementCommentDeleted()
	s.logger.Info("Comment deleted", zap.String("comment_id", id.String()))
	return nil
}

// PostsStats joins the blog sitemap with approved comment counts
func (s *commentServiceImpl) PostsStats(ctx context.Context) (*dto.PostsStatsResponse, error) {
	entries, err := s.blog.FetchSitemap(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch sitemap", zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeBadGateway, "Failed to fetch sitemap", err.Error())
	}

	counts, err := s.commentRepo.CountApprovedByPost(ctx)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to count comments", err.Error())
	}
	byPost := make(map[string]int64, len(counts))
	for _, c := range counts {
		byPost[c.PostID] = c.Count
	}

	resp := &dto.PostsStatsResponse{
		Posts:             []dto.PostStats{},
		GroupedByCategory: map[string][]dto.PostStats{},
	}
	for _, entry := range entries {
		postID, ok := postIDFromURL(entry.Loc)
		if !ok {
			continue
		}
		parts := strings.Split(postID, "/")
		stat := dto.PostStats{
			PostID:       postID,
			URL:          entry.Loc,
			Language:     parts[0],
			Category:     parts[1],
			LastModified: entry.LastMod,
			CommentCount: byPost[postID],
		}
		stat.HasComments = stat.CommentCount > 0

		resp.Posts = append(resp.Posts, stat)
		resp.GroupedByCategory[stat.Category] = append(resp.GroupedByCategory[stat.Category], stat)

		resp.Summary.TotalComments += stat.CommentCount
		if stat.HasComments {
			resp.Summary.PostsWithComments++
		} else {
			resp.Summary.PostsWithoutComments++
		}
	}
	resp.Summary.TotalPosts = len(resp.Posts)
	return resp, nil
}

// postIDFromURL turns https://host/blog/ko/weekly/250823/ into ko/weekly/250823.
// Pages without at least a language and a category segment are not posts.
func postIDFromURL(loc string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(loc))
	if err != nil {
		return "", false
	}
	path := strings.Trim(u.Path, "/")
	if !strings.HasPrefix(path, "blog/") {
		return "", false
	}
	postID := strings.TrimPrefix(path, "blog/")
	if len(strings.Split(postID, "/")) < 2 {
		return "", false
	}
	return postID, true
}
