package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"blog-comment-bot/internal/domain"
	"blog-comment-bot/internal/dto"
	"blog-comment-bot/internal/repository"
	"blog-comment-bot/internal/response"
)

// PersonaService lists the configured personas for administrators
type PersonaService interface {
	ListPersonas(ctx context.Context, lang string) ([]*dto.PersonaResponse, error)
}

// personaServiceImpl is the implementation of PersonaService
type personaServiceImpl struct {
	personaRepo repository.PersonaRepository
	logger      *zap.Logger
}

// NewPersonaService creates a new instance of PersonaService
func NewPersonaService(personaRepo repository.PersonaRepository, logger *zap.Logger) PersonaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &personaServiceImpl{personaRepo: personaRepo, logger: logger}
}

// ListPersonas returns every persona, or only the active ones of lang when
// lang is given, which is exactly the candidate set the director sees.
func (s *personaServiceImpl) ListPersonas(ctx context.Context, lang string) ([]*dto.PersonaResponse, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))

	var personas []*domain.BotPersona
	var err error
	if lang == "" {
		personas, err = s.personaRepo.ListAll(ctx)
	} else {
		personas, err = s.personaRepo.ListActive(ctx, lang)
	}
	if err != nil {
		s.logger.Error("Failed to list personas", zap.String("lang", lang), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list personas", err.Error())
	}

	result := make([]*dto.PersonaResponse, 0, len(personas))
	for _, p := range personas {
		result = append(result, &dto.PersonaResponse{
			ID:           p.ID,
			Name:         p.Name,
			Nickname:     p.Nickname,
			Lang:         p.Lang,
			Avatar:       p.Avatar,
			IsActive:     p.IsActive,
			SystemPrompt: p.SystemPrompt,
		})
	}
	return result, nil
}
