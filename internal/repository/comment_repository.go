package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blog-comment-bot/internal/domain"
)

// CommentFilter narrows admin comment listings
type CommentFilter struct {
	PostID string
	Status domain.CommentStatus
}

// PostCommentCount is the number of approved comments on one post
type PostCommentCount struct {
	PostID string
	Count  int64
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	FindApprovedByPostID(ctx context.Context, postID string) ([]*domain.Comment, error)
	FindByGenerationKey(ctx context.Context, key string) (*domain.Comment, error)
	List(ctx context.Context, filter CommentFilter, page, limit int) ([]*domain.Comment, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CommentStatus) error
	CountApprovedByPost(ctx context.Context) ([]PostCommentCount, error)
	CountByPostID(ctx context.Context, postID string) (total int64, bots int64, err error)
}

// commentRepositoryImpl is the GORM implementation of CommentRepository
type commentRepositoryImpl struct {
	db *gorm.DB
}

// NewCommentRepository creates a new instance of CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{db: db}
}

// Create inserts a new comment
func (r *commentRepositoryImpl) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindByID finds a comment by its ID regardless of status
func (r *commentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindApprovedByPostID returns the visible thread of a post, oldest first
func (r *commentRepositoryImpl) FindApprovedByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ? AND status = ?", postID, domain.CommentStatusApproved).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// FindByGenerationKey finds the bot comment produced under an idempotency key
func (r *commentRepositoryImpl) FindByGenerationKey(ctx context.Context, key string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).Where("generation_key = ?", key).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// List returns a page of comments, newest first
func (r *commentRepositoryImpl) List(ctx context.Context, filter CommentFilter, page, limit int) ([]*domain.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Comment{})
	if filter.PostID != "" {
		query = query.Where("post_id = ?", filter.PostID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*domain.Comment
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// UpdateStatus transitions a comment to the given status
func (r *commentRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CommentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountApprovedByPost groups approved comments by post
func (r *commentRepositoryImpl) CountApprovedByPost(ctx context.Context) ([]PostCommentCount, error) {
	var counts []PostCommentCount
	if err := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("status = ?", domain.CommentStatusApproved).
		Group("post_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

// CountByPostID returns approved comment totals for one post
func (r *commentRepositoryImpl) CountByPostID(ctx context.Context, postID string) (int64, int64, error) {
	var total, bots int64
	base := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("post_id = ? AND status = ?", postID, domain.CommentStatusApproved)
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := base.Session(&gorm.Session{}).Where("is_bot = ?", true).Count(&bots).Error; err != nil {
		return 0, 0, err
	}
	return total, bots, nil
}
