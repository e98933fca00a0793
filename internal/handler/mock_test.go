package handler

import (
	"context"

	"github.com/google/uuid"

	"blog-comment-bot/internal/dto"
)

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	ListThreadFunc         func(ctx context.Context, postID string) (*dto.CommentThreadResponse, error)
	CreateHumanCommentFunc func(ctx context.Context, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	ListAdminFunc          func(ctx context.Context, postID string, page, limit int) (*dto.CommentListResponse, error)
	DeleteFunc             func(ctx context.Context, id uuid.UUID) error
	PostsStatsFunc         func(ctx context.Context) (*dto.PostsStatsResponse, error)
}

func (m *MockCommentService) ListThread(ctx context.Context, postID string) (*dto.CommentThreadResponse, error) {
	if m.ListThreadFunc != nil {
		return m.ListThreadFunc(ctx, postID)
	}
	return &dto.CommentThreadResponse{PostID: postID, Comments: []*dto.CommentResponse{}}, nil
}

func (m *MockCommentService) CreateHumanComment(ctx context.Context, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if m.CreateHumanCommentFunc != nil {
		return m.CreateHumanCommentFunc(ctx, req)
	}
	return &dto.CommentResponse{ID: uuid.New()}, nil
}

func (m *MockCommentService) ListAdmin(ctx context.Context, postID string, page, limit int) (*dto.CommentListResponse, error) {
	if m.ListAdminFunc != nil {
		return m.ListAdminFunc(ctx, postID, page, limit)
	}
	return &dto.CommentListResponse{Comments: []*dto.CommentResponse{}, Page: page, Limit: limit}, nil
}

func (m *MockCommentService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockCommentService) PostsStats(ctx context.Context) (*dto.PostsStatsResponse, error) {
	if m.PostsStatsFunc != nil {
		return m.PostsStatsFunc(ctx)
	}
	return &dto.PostsStatsResponse{}, nil
}

// MockJobService is a mock implementation of JobService
type MockJobService struct {
	EnqueueFunc  func(ctx context.Context, req *dto.EnqueueRequest) (*dto.EnqueueResponse, error)
	SweepFunc    func(ctx context.Context) (*dto.SweepReport, error)
	ListJobsFunc func(ctx context.Context, status string, page, limit int) (*dto.JobListResponse, error)
}

func (m *MockJobService) Enqueue(ctx context.Context, req *dto.EnqueueRequest) (*dto.EnqueueResponse, error) {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, req)
	}
	return &dto.EnqueueResponse{JobID: uuid.New(), PostID: req.PostID, DelayMinutes: 1}, nil
}

func (m *MockJobService) Sweep(ctx context.Context) (*dto.SweepReport, error) {
	if m.SweepFunc != nil {
		return m.SweepFunc(ctx)
	}
	return &dto.SweepReport{Results: []dto.SweepJobResult{}}, nil
}

func (m *MockJobService) ListJobs(ctx context.Context, status string, page, limit int) (*dto.JobListResponse, error) {
	if m.ListJobsFunc != nil {
		return m.ListJobsFunc(ctx, status, page, limit)
	}
	return &dto.JobListResponse{Jobs: []*dto.JobResponse{}, Page: page, Limit: limit}, nil
}

// MockBotService is a mock implementation of BotService
type MockBotService struct {
	RunDirectorFunc func(ctx context.Context, req *dto.DirectorRequest) (*dto.DirectorResponse, error)
	AutoTriggerFunc func(ctx context.Context, req *dto.AutoTriggerRequest) (*dto.AutoTriggerResponse, error)
}

func (m *MockBotService) RunDirector(ctx context.Context, req *dto.DirectorRequest) (*dto.DirectorResponse, error) {
	if m.RunDirectorFunc != nil {
		return m.RunDirectorFunc(ctx, req)
	}
	return &dto.DirectorResponse{}, nil
}

func (m *MockBotService) AutoTrigger(ctx context.Context, req *dto.AutoTriggerRequest) (*dto.AutoTriggerResponse, error) {
	if m.AutoTriggerFunc != nil {
		return m.AutoTriggerFunc(ctx, req)
	}
	return &dto.AutoTriggerResponse{}, nil
}

// MockPersonaService is a mock implementation of PersonaService
type MockPersonaService struct {
	ListPersonasFunc func(ctx context.Context, lang string) ([]*dto.PersonaResponse, error)
}

func (m *MockPersonaService) ListPersonas(ctx context.Context, lang string) ([]*dto.PersonaResponse, error) {
	if m.ListPersonasFunc != nil {
		return m.ListPersonasFunc(ctx, lang)
	}
	return []*dto.PersonaResponse{}, nil
}
