package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-comment-bot/internal/director"
	"blog-comment-bot/internal/domain"
	"blog-comment-bot/internal/dto"
	"blog-comment-bot/internal/response"
)

func directorResult(postID string) *director.Result {
	persona := &domain.BotPersona{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Fixer", Nickname: "코드수리공"}
	other := &domain.BotPersona{BaseModel: domain.BaseModel{ID: uuid.New()}, Name: "Wanderer", Nickname: "여행자"}
	parentID := uuid.New()
	return &director.Result{
		Comment: &domain.Comment{
			BaseModel:  domain.BaseModel{ID: uuid.New()},
			PostID:     postID,
			ParentID:   &parentID,
			Content:    "@방문자 좋은 질문이에요",
			AuthorName: persona.Nickname,
			IsBot:      true,
			Status:     domain.CommentStatusApproved,
		},
		Persona:             persona,
		SelectionReason:     "기술 질문",
		ReplyTargetID:       &parentID,
		ReplyTargetNickname: "방문자",
		DeclaredType:        director.CommentTypeNew,
		Type:                director.CommentTypeReply,
		TypeCorrected:       true,
		Considered:          []*domain.BotPersona{persona, other},
		Language:            "ko",
	}
}

func TestBotService_RunDirector(t *testing.T) {
	t.Run("성공: 디렉터 결과 변환", func(t *testing.T) {
		dir := &MockDirector{RunFunc: func(ctx context.Context, req director.RunRequest) (*director.Result, error) {
			return directorResult(req.PostID), nil
		}}
		svc := NewBotService(dir, &MockCommentRepository{}, nil)

		resp, err := svc.RunDirector(context.Background(), &dto.DirectorRequest{PostIDAlt: "/ko/weekly/1/"})

		require.NoError(t, err)
		calls := dir.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "ko/weekly/1", calls[0].PostID)
		assert.Empty(t, calls[0].IdempotencyKey)

		require.NotNil(t, resp.SelectedPersona)
		assert.Equal(t, "코드수리공", resp.SelectedPersona.Nickname)
		assert.Equal(t, "기술 질문", resp.SelectedPersona.SelectionReason)
		assert.Equal(t, "방문자", resp.SelectedPersona.ReplyTargetNickname)
		assert.Equal(t, resp.Comment.ParentID, resp.SelectedPersona.ReplyTargetID)
		assert.Equal(t, "reply", resp.CommentType)
		assert.True(t, resp.TypeCorrected)
		assert.Len(t, resp.ConsideredPersonas, 2)
		assert.Equal(t, "ko", resp.Language)
	})

	t.Run("성공: 재사용 결과에는 선택 페르소나 없음", func(t *testing.T) {
		dir := &MockDirector{RunFunc: func(ctx context.Context, req director.RunRequest) (*director.Result, error) {
			return &director.Result{
				Comment: &domain.Comment{BaseModel: domain.BaseModel{ID: uuid.New()}, PostID: req.PostID},
				Type:    director.CommentTypeNew,
				Reused:  true,
			}, nil
		}}
		svc := NewBotService(dir, &MockCommentRepository{}, nil)

		resp, err := svc.RunDirector(context.Background(), &dto.DirectorRequest{PostID: "ko/weekly/1"})

		require.NoError(t, err)
		assert.Nil(t, resp.SelectedPersona)
		assert.True(t, resp.Reused)
		assert.Empty(t, resp.ConsideredPersonas)
	})

	t.Run("실패: 디렉터 실패는 그대로 전달", func(t *testing.T) {
		failure := &director.Failure{Kind: director.ErrParse, Stage: director.StageParse}
		dir := &MockDirector{RunFunc: func(ctx context.Context, req director.RunRequest) (*director.Result, error) {
			return nil, failure
		}}
		svc := NewBotService(dir, &MockCommentRepository{}, nil)

		_, err := svc.RunDirector(context.Background(), &dto.DirectorRequest{PostID: "ko/weekly/1"})

		var got *director.Failure
		require.ErrorAs(t, err, &got)
		assert.Equal(t, director.StageParse, got.Stage)
	})

	t.Run("실패: post_id 누락", func(t *testing.T) {
		dir := &MockDirector{}
		svc := NewBotService(dir, &MockCommentRepository{}, nil)

		_, err := svc.RunDirector(context.Background(), &dto.DirectorRequest{})

		assertAppError(t, err, response.ErrCodeMissingFields)
		assert.Empty(t, dir.Calls())
	})
}

func TestBotService_AutoTrigger(t *testing.T) {
	t.Run("성공: 활동 정보와 디렉터 결과", func(t *testing.T) {
		repo := &MockCommentRepository{CountByPostIDFunc: func(ctx context.Context, postID string) (int64, int64, error) {
			return 7, 3, nil
		}}
		dir := &MockDirector{RunFunc: func(ctx context.Context, req director.RunRequest) (*director.Result, error) {
			return directorResult(req.PostID), nil
		}}
		svc := NewBotService(dir, repo, nil)

		resp, err := svc.AutoTrigger(context.Background(), &dto.AutoTriggerRequest{PostID: "ko/weekly/1"})

		require.NoError(t, err)
		assert.Equal(t, "webhook", resp.TriggerType)
		assert.Equal(t, dto.BotActivity{TotalComments: 7, BotComments: 3, HumanComments: 4}, resp.Activity)
		require.NotNil(t, resp.Director)
		assert.Equal(t, "reply", resp.Director.CommentType)
	})

	t.Run("성공: 집계 실패 시 0으로 보고", func(t *testing.T) {
		repo := &MockCommentRepository{CountByPostIDFunc: func(ctx context.Context, postID string) (int64, int64, error) {
			return 0, 0, errors.New("timeout")
		}}
		svc := NewBotService(&MockDirector{}, repo, nil)

		resp, err := svc.AutoTrigger(context.Background(), &dto.AutoTriggerRequest{PostID: "ko/weekly/1", TriggerType: "manual"})

		require.NoError(t, err)
		assert.Equal(t, "manual", resp.TriggerType)
		assert.Equal(t, dto.BotActivity{}, resp.Activity)
	})

	t.Run("실패: 디렉터 실패", func(t *testing.T) {
		dir := &MockDirector{RunFunc: func(ctx context.Context, req director.RunRequest) (*director.Result, error) {
			return nil, &director.Failure{Kind: director.ErrNoPersonasAvailable, Stage: director.StageListPersonas}
		}}
		svc := NewBotService(dir, &MockCommentRepository{}, nil)

		_, err := svc.AutoTrigger(context.Background(), &dto.AutoTriggerRequest{PostID: "ko/weekly/1"})

		assert.ErrorIs(t, err, director.ErrNoPersonasAvailable)
	})
}
