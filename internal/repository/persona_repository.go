package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"blog-comment-bot/internal/domain"
)

// PersonaRepository is the read side of the persona directory plus seeding
type PersonaRepository interface {
	ListActive(ctx context.Context, lang string) ([]*domain.BotPersona, error)
	ListAll(ctx context.Context) ([]*domain.BotPersona, error)
	Upsert(ctx context.Context, persona *domain.BotPersona) error
}

// personaRepositoryImpl is the GORM implementation of PersonaRepository
type personaRepositoryImpl struct {
	db *gorm.DB
}

// NewPersonaRepository creates a new instance of PersonaRepository
func NewPersonaRepository(db *gorm.DB) PersonaRepository {
	return &personaRepositoryImpl{db: db}
}

// ListActive returns active personas for a language in a stable order
func (r *personaRepositoryImpl) ListActive(ctx context.Context, lang string) ([]*domain.BotPersona, error) {
	var personas []*domain.BotPersona
	if err := r.db.WithContext(ctx).
		Where("lang = ? AND is_active = ?", lang, true).
		Order("created_at ASC").
		Find(&personas).Error; err != nil {
		return nil, err
	}
	return personas, nil
}

// ListAll returns every persona including inactive ones
func (r *personaRepositoryImpl) ListAll(ctx context.Context) ([]*domain.BotPersona, error) {
	var personas []*domain.BotPersona
	if err := r.db.WithContext(ctx).Order("lang ASC, created_at ASC").Find(&personas).Error; err != nil {
		return nil, err
	}
	return personas, nil
}

// Upsert inserts a persona or refreshes the one with the same (nickname, lang)
func (r *personaRepositoryImpl) Upsert(ctx context.Context, persona *domain.BotPersona) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "nickname"}, {Name: "lang"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "system_prompt", "avatar", "is_active", "updated_at"}),
	}).Create(persona).Error
}
