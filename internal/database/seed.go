package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"blog-comment-bot/internal/domain"
)

// PersonaSeed is one persona entry in the seed file
type PersonaSeed struct {
	Name         string `yaml:"name"`
	Nickname     string `yaml:"nickname"`
	Lang         string `yaml:"lang"`
	SystemPrompt string `yaml:"system_prompt"`
	Avatar       string `yaml:"avatar"`
	IsActive     *bool  `yaml:"is_active"`
}

type personaSeedFile struct {
	Personas []PersonaSeed `yaml:"personas"`
}

// PersonaUpserter is the persistence the seeder needs
type PersonaUpserter interface {
	Upsert(ctx context.Context, persona *domain.BotPersona) error
}

// LoadPersonaSeed reads persona definitions from a yaml file
func LoadPersonaSeed(path string) ([]PersonaSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona seed %s: %w", path, err)
	}
	var file personaSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse persona seed %s: %w", path, err)
	}
	for i, p := range file.Personas {
		if strings.TrimSpace(p.Nickname) == "" || strings.TrimSpace(p.Lang) == "" {
			return nil, fmt.Errorf("persona seed entry %d: nickname and lang are required", i)
		}
	}
	return file.Personas, nil
}

// SeedPersonas upserts every seed entry keyed by (nickname, lang)
func SeedPersonas(ctx context.Context, repo PersonaUpserter, seeds []PersonaSeed, logger *zap.Logger) error {
	for _, s := range seeds {
		active := true
		if s.IsActive != nil {
			active = *s.IsActive
		}
		persona := &domain.BotPersona{
			Name:         s.Name,
			Nickname:     strings.TrimSpace(s.Nickname),
			Lang:         strings.TrimSpace(s.Lang),
			SystemPrompt: strings.TrimSpace(s.SystemPrompt),
			Avatar:       s.Avatar,
			IsActive:     active,
		}
		if err := repo.Upsert(ctx, persona); err != nil {
			return fmt.Errorf("seed persona %s/%s: %w", persona.Lang, persona.Nickname, err)
		}
	}
	logger.Info("Persona seed applied", zap.Int("count", len(seeds)))
	return nil
}
