package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"blog-comment-bot/internal/domain"
)

// CreateCommentRequest is a human comment submission. Both snake_case and
// camelCase field names are accepted.
type CreateCommentRequest struct {
	PostID          string  `json:"post_id"`
	PostIDAlt       string  `json:"postId"`
	Content         string  `json:"content"`
	AuthorName      string  `json:"author_name"`
	AuthorNameAlt   string  `json:"authorName"`
	Name            string  `json:"name"`
	AuthorAvatar    string  `json:"author_avatar"`
	AuthorAvatarAlt string  `json:"authorAvatar"`
	ParentID        *string `json:"parent_id"`
	ParentIDAlt     *string `json:"parentId"`
}

// Normalize folds the alias fields into the canonical ones and trims values
func (r *CreateCommentRequest) Normalize() {
	r.PostID = strings.TrimSpace(firstNonEmpty(r.PostID, r.PostIDAlt))
	r.AuthorName = strings.TrimSpace(firstNonEmpty(r.AuthorName, r.AuthorNameAlt, r.Name))
	r.AuthorAvatar = strings.TrimSpace(firstNonEmpty(r.AuthorAvatar, r.AuthorAvatarAlt))
	r.Content = strings.TrimSpace(r.Content)
	if r.ParentID == nil {
		r.ParentID = r.ParentIDAlt
	}
	if r.ParentID != nil && strings.TrimSpace(*r.ParentID) == "" {
		r.ParentID = nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// CommentResponse represents a comment, optionally with its replies nested
type CommentResponse struct {
	ID           uuid.UUID          `json:"id"`
	PostID       string             `json:"post_id"`
	ParentID     *uuid.UUID         `json:"parent_id"`
	Content      string             `json:"content"`
	AuthorName   string             `json:"author_name"`
	AuthorAvatar string             `json:"author_avatar"`
	IsBot        bool               `json:"is_bot"`
	Status       string             `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	Replies      []*CommentResponse `json:"replies,omitempty"`
}

// NewCommentResponse converts a domain comment
func NewCommentResponse(c *domain.Comment) *CommentResponse {
	return &CommentResponse{
		ID:           c.ID,
		PostID:       c.PostID,
		ParentID:     c.ParentID,
		Content:      c.Content,
		AuthorName:   c.AuthorName,
		AuthorAvatar: c.AuthorAvatar,
		IsBot:        c.IsBot,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
	}
}

// CommentThreadResponse is the public view of a post's discussion
type CommentThreadResponse struct {
	PostID   string             `json:"post_id"`
	Total    int                `json:"total"`
	Comments []*CommentResponse `json:"comments"`
}

// CommentListResponse is a page of comments for administrators
type CommentListResponse struct {
	Comments []*CommentResponse `json:"comments"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
}

// PostStats is the comment activity of one sitemap post
type PostStats struct {
	PostID       string `json:"post_id"`
	URL          string `json:"url"`
	Category     string `json:"category"`
	Language     string `json:"language"`
	LastModified string `json:"last_modified"`
	CommentCount int64  `json:"comment_count"`
	HasComments  bool   `json:"has_comments"`
}

// PostsStatsSummary aggregates PostStats
type PostsStatsSummary struct {
	TotalPosts           int   `json:"total_posts"`
	TotalComments        int64 `json:"total_comments"`
	PostsWithComments    int   `json:"posts_with_comments"`
	PostsWithoutComments int   `json:"posts_without_comments"`
}

// PostsStatsResponse is the admin overview of comment activity per post
type PostsStatsResponse struct {
	Summary           PostsStatsSummary      `json:"summary"`
	Posts             []PostStats            `json:"posts"`
	GroupedByCategory map[string][]PostStats `json:"grouped_by_category"`
}
