package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"blog-comment-bot/internal/client"
	"blog-comment-bot/internal/database"
	"blog-comment-bot/internal/director"
	"blog-comment-bot/internal/domain"
	"blog-comment-bot/internal/repository"
)

// setupTestDB opens a migrated in-memory database. One connection keeps every
// goroutine on the same memory database.
func setupTestDB() *gorm.DB {
	db, err := database.Open(sqlite.Open(":memory:"), database.Config{TablePrefix: "test_", MaxOpenConns: 1})
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	if err := database.AutoMigrate(db, zap.NewNop()); err != nil {
		panic("failed to migrate database: " + err.Error())
	}
	return db
}

// MockDirector is a mock implementation of director.Director
type MockDirector struct {
	RunFunc func(ctx context.Context, req director.RunRequest) (*director.Result, error)

	mu    sync.Mutex
	calls []director.RunRequest
}

func (m *MockDirector) Run(ctx context.Context, req director.RunRequest) (*director.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, req)
	}
	return &director.Result{
		Comment: &domain.Comment{BaseModel: domain.BaseModel{ID: uuid.New()}, PostID: req.PostID, IsBot: true},
		Type:    director.CommentTypeNew,
	}, nil
}

func (m *MockDirector) Calls() []director.RunRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]director.RunRequest(nil), m.calls...)
}

// MockLocker is a mock implementation of Locker
type MockLocker struct {
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (func(), bool, error)

	unlocked int
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	return func() { m.unlocked++ }, true, nil
}

// MockJobRepository is a mock implementation of JobRepository
type MockJobRepository struct {
	CreateFunc func(ctx context.Context, job *domain.ScheduledJob) error
	ListFunc   func(ctx context.Context, status domain.JobStatus, page, limit int) ([]*domain.ScheduledJob, int64, error)

	created []*domain.ScheduledJob
}

func (m *MockJobRepository) Create(ctx context.Context, job *domain.ScheduledJob) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, job); err != nil {
			return err
		}
	}
	m.created = append(m.created, job)
	return nil
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledJob, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *MockJobRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledJob, error) {
	return nil, nil
}

func (m *MockJobRepository) Claim(ctx context.Context, id uuid.UUID, owner string, now, leaseUntil time.Time) (bool, error) {
	return false, nil
}

func (m *MockJobRepository) Complete(ctx context.Context, id uuid.UUID, owner string, executedAt time.Time) (bool, error) {
	return false, nil
}

func (m *MockJobRepository) Release(ctx context.Context, id uuid.UUID, owner string, reason string) error {
	return nil
}

func (m *MockJobRepository) List(ctx context.Context, status domain.JobStatus, page, limit int) ([]*domain.ScheduledJob, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, page, limit)
	}
	return nil, 0, nil
}

func (m *MockJobRepository) CountByStatus(ctx context.Context, status domain.JobStatus) (int64, error) {
	return 0, nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	CountApprovedByPostFunc func(ctx context.Context) ([]repository.PostCommentCount, error)
	CountByPostIDFunc       func(ctx context.Context, postID string) (int64, int64, error)
	UpdateStatusFunc        func(ctx context.Context, id uuid.UUID, status domain.CommentStatus) error
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return nil
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *MockCommentRepository) FindApprovedByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	return nil, nil
}

func (m *MockCommentRepository) FindByGenerationKey(ctx context.Context, key string) (*domain.Comment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *MockCommentRepository) List(ctx context.Context, filter repository.CommentFilter, page, limit int) ([]*domain.Comment, int64, error) {
	return nil, 0, nil
}

func (m *MockCommentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CommentStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockCommentRepository) CountApprovedByPost(ctx context.Context) ([]repository.PostCommentCount, error) {
	if m.CountApprovedByPostFunc != nil {
		return m.CountApprovedByPostFunc(ctx)
	}
	return nil, nil
}

func (m *MockCommentRepository) CountByPostID(ctx context.Context, postID string) (int64, int64, error) {
	if m.CountByPostIDFunc != nil {
		return m.CountByPostIDFunc(ctx, postID)
	}
	return 0, 0, nil
}

// MockBlogClient is a mock implementation of client.BlogClient
type MockBlogClient struct {
	FetchSitemapFunc func(ctx context.Context) ([]client.SitemapEntry, error)
}

func (m *MockBlogClient) FetchPostContent(ctx context.Context, postID string) (string, error) {
	return "본문", nil
}

func (m *MockBlogClient) FetchSitemap(ctx context.Context) ([]client.SitemapEntry, error) {
	if m.FetchSitemapFunc != nil {
		return m.FetchSitemapFunc(ctx)
	}
	return nil, nil
}

func (m *MockBlogClient) PostURL(postID string) string {
	return "https://blog.test/blog/" + postID + "/"
}
