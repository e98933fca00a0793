package service

import (
	"context"

	"go.uber.org/zap"

	"blog-comment-bot/internal/director"
	"blog-comment-bot/internal/dto"
	"blog-comment-bot/internal/repository"
	"blog-comment-bot/internal/response"
)

// BotService exposes immediate director runs
type BotService interface {
	RunDirector(ctx context.Context, req *dto.DirectorRequest) (*dto.DirectorResponse, error)
	AutoTrigger(ctx context.Context, req *dto.AutoTriggerRequest) (*dto.AutoTriggerResponse, error)
}

// botServiceImpl is the implementation of BotService
type botServiceImpl struct {
	director    director.Director
	commentRepo repository.CommentRepository
	logger      *zap.Logger
}

// NewBotService creates a new instance of BotService
func NewBotService(dir director.Director, commentRepo repository.CommentRepository, logger *zap.Logger) BotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &botServiceImpl{director: dir, commentRepo: commentRepo, logger: logger}
}

// RunDirector runs the director once, without an idempotency key.
// Director failures are returned unchanged so callers can report the stage.
func (s *botServiceImpl) RunDirector(ctx context.Context, req *dto.DirectorRequest) (*dto.DirectorResponse, error) {
	req.Normalize()
	if req.PostID == "" {
		return nil, response.NewAppError(response.ErrCodeMissingFields, "post_id is required", "")
	}

	result, err := s.director.Run(ctx, director.RunRequest{PostID: req.PostID})
	if err != nil {
		return nil, err
	}
	return newDirectorResponse(result), nil
}

// AutoTrigger reports the post's current comment mix, then runs the director.
// Activity counts are informational; a counting failure reports zeros.
func (s *botServiceImpl) AutoTrigger(ctx context.Context, req *dto.AutoTriggerRequest) (*dto.AutoTriggerResponse, error) {
	req.Normalize()
	if req.PostID == "" {
		return nil, response.NewAppError(response.ErrCodeMissingFields, "post_id is required", "")
	}

	var activity dto.BotActivity
	total, bots, err := s.commentRepo.CountByPostID(ctx, req.PostID)
	if err != nil {
		s.logger.Warn("Failed to count post comments", zap.String("post_id", req.PostID), zap.Error(err))
	} else {
		activity = dto.BotActivity{TotalComments: total, BotComments: bots, HumanComments: total - bots}
	}

	result, err := s.director.Run(ctx, director.RunRequest{PostID: req.PostID})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Auto trigger completed",
		zap.String("post_id", req.PostID),
		zap.String("trigger_type", req.TriggerType),
		zap.Int64("total_comments", activity.TotalComments),
	)
	return &dto.AutoTriggerResponse{
		PostID:      req.PostID,
		TriggerType: req.TriggerType,
		Activity:    activity,
		Director:    newDirectorResponse(result),
	}, nil
}

func newDirectorResponse(result *director.Result) *dto.DirectorResponse {
	resp := &dto.DirectorResponse{
		Comment:            dto.NewCommentResponse(result.Comment),
		CommentType:        string(result.Type),
		TypeCorrected:      result.TypeCorrected,
		ConsideredPersonas: make([]dto.PersonaSummary, 0, len(result.Considered)),
		Language:           result.Language,
		Reused:             result.Reused,
	}
	for _, p := range result.Considered {
		resp.ConsideredPersonas = append(resp.ConsideredPersonas, dto.PersonaSummary{ID: p.ID, Nickname: p.Nickname, Name: p.Name})
	}
	if result.Persona != nil {
		resp.SelectedPersona = &dto.SelectedPersona{
			PersonaSummary:      dto.PersonaSummary{ID: result.Persona.ID, Nickname: result.Persona.Nickname, Name: result.Persona.Name},
			SelectionReason:     result.SelectionReason,
			ReplyTargetID:       result.ReplyTargetID,
			ReplyTargetNickname: result.ReplyTargetNickname,
		}
	}
	return resp
}
