package director

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blog-comment-bot/internal/domain"
	"blog-comment-bot/internal/repository"
)

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	CreateFunc               func(ctx context.Context, comment *domain.Comment) error
	FindByIDFunc             func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	FindApprovedByPostIDFunc func(ctx context.Context, postID string) ([]*domain.Comment, error)
	FindByGenerationKeyFunc  func(ctx context.Context, key string) (*domain.Comment, error)

	created []*domain.Comment
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, comment); err != nil {
			return err
		}
	}
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	m.created = append(m.created, comment)
	return nil
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockCommentRepository) FindApprovedByPostID(ctx context.Context, postID string) ([]*domain.Comment, error) {
	if m.FindApprovedByPostIDFunc != nil {
		return m.FindApprovedByPostIDFunc(ctx, postID)
	}
	return nil, nil
}

func (m *MockCommentRepository) FindByGenerationKey(ctx context.Context, key string) (*domain.Comment, error) {
	if m.FindByGenerationKeyFunc != nil {
		return m.FindByGenerationKeyFunc(ctx, key)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockCommentRepository) List(ctx context.Context, filter repository.CommentFilter, page, limit int) ([]*domain.Comment, int64, error) {
	return nil, 0, nil
}

func (m *MockCommentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CommentStatus) error {
	return nil
}

func (m *MockCommentRepository) CountApprovedByPost(ctx context.Context) ([]repository.PostCommentCount, error) {
	return nil, nil
}

func (m *MockCommentRepository) CountByPostID(ctx context.Context, postID string) (int64, int64, error) {
	return 0, 0, nil
}

// MockPersonaRepository is a mock implementation of PersonaRepository
type MockPersonaRepository struct {
	ListActiveFunc func(ctx context.Context, lang string) ([]*domain.BotPersona, error)
}

func (m *MockPersonaRepository) ListActive(ctx context.Context, lang string) ([]*domain.BotPersona, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, lang)
	}
	return nil, nil
}

func (m *MockPersonaRepository) ListAll(ctx context.Context) ([]*domain.BotPersona, error) {
	return nil, nil
}

func (m *MockPersonaRepository) Upsert(ctx context.Context, persona *domain.BotPersona) error {
	return nil
}

// MockContentFetcher is a mock implementation of ContentFetcher
type MockContentFetcher struct {
	FetchPostContentFunc func(ctx context.Context, postID string) (string, error)
}

func (m *MockContentFetcher) FetchPostContent(ctx context.Context, postID string) (string, error) {
	if m.FetchPostContentFunc != nil {
		return m.FetchPostContentFunc(ctx, postID)
	}
	return "Go 1.24의 새로운 기능을 정리했습니다.", nil
}

// MockModelGateway is a mock implementation of ModelGateway
type MockModelGateway struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	prompts []string
}

func (m *MockModelGateway) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}
