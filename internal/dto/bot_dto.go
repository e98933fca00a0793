package dto

import (
	"strings"

	"github.com/google/uuid"
)

// DirectorRequest asks for one immediate director run
type DirectorRequest struct {
	PostID    string `json:"post_id"`
	PostIDAlt string `json:"postId"`
}

// Normalize folds the alias fields into the canonical ones
func (r *DirectorRequest) Normalize() {
	r.PostID = strings.Trim(strings.TrimSpace(firstNonEmpty(r.PostID, r.PostIDAlt)), "/")
}

// PersonaSummary identifies a persona in API responses
type PersonaSummary struct {
	ID       uuid.UUID `json:"id"`
	Nickname string    `json:"nickname"`
	Name     string    `json:"name"`
}

// SelectedPersona is the persona the model chose and why
type SelectedPersona struct {
	PersonaSummary
	SelectionReason     string     `json:"selection_reason"`
	ReplyTargetID       *uuid.UUID `json:"reply_target_id"`
	ReplyTargetNickname string     `json:"reply_target_nickname,omitempty"`
}

// DirectorResponse is the outcome of a director run
type DirectorResponse struct {
	SelectedPersona    *SelectedPersona `json:"selected_persona,omitempty"`
	Comment            *CommentResponse `json:"comment"`
	CommentType        string           `json:"comment_type"`
	TypeCorrected      bool             `json:"type_corrected"`
	ConsideredPersonas []PersonaSummary `json:"considered_personas"`
	Language           string           `json:"language"`
	Reused             bool             `json:"reused"`
}

// AutoTriggerRequest runs the director with activity info attached
type AutoTriggerRequest struct {
	PostID      string `json:"post_id"`
	PostIDAlt   string `json:"postId"`
	TriggerType string `json:"trigger_type"`
}

// Normalize folds the alias fields into the canonical ones
func (r *AutoTriggerRequest) Normalize() {
	r.PostID = strings.Trim(strings.TrimSpace(firstNonEmpty(r.PostID, r.PostIDAlt)), "/")
	if r.TriggerType == "" {
		r.TriggerType = "webhook"
	}
}

// BotActivity is the comment mix of a post before a bot run
type BotActivity struct {
	TotalComments int64 `json:"total_comments"`
	BotComments   int64 `json:"bot_comments"`
	HumanComments int64 `json:"human_comments"`
}

// AutoTriggerResponse reports activity and the director outcome
type AutoTriggerResponse struct {
	PostID      string            `json:"post_id"`
	TriggerType string            `json:"trigger_type"`
	Activity    BotActivity       `json:"activity"`
	Director    *DirectorResponse `json:"director"`
}

// PersonaResponse is the admin view of a persona
type PersonaResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Nickname     string    `json:"nickname"`
	Lang         string    `json:"lang"`
	Avatar       string    `json:"avatar"`
	IsActive     bool      `json:"is_active"`
	SystemPrompt string    `json:"system_prompt"`
}
