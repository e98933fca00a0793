package domain

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CommentStatus represents the moderation state of a comment
type CommentStatus string

const (
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusDeleted  CommentStatus = "deleted"
)

// MaxCommentLength is the maximum number of characters in a comment body
const MaxCommentLength = 1000

// Comment is a single entry in a post's discussion thread.
// ParentID, when set, names an earlier comment on the same post.
type Comment struct {
	BaseModel
	PostID       string        `gorm:"type:varchar(255);not null;index" json:"post_id"`
	ParentID     *uuid.UUID    `gorm:"type:uuid;index" json:"parent_id"`
	Content      string        `gorm:"type:text;not null" json:"content"`
	AuthorName   string        `gorm:"type:varchar(100);not null" json:"author_name"`
	AuthorAvatar string        `gorm:"type:text" json:"author_avatar"`
	IsBot        bool          `gorm:"not null;default:false" json:"is_bot"`
	Status       CommentStatus `gorm:"type:varchar(20);not null;default:'approved';index" json:"status"`
	// GenerationKey ties a bot comment to the scheduled run that produced it
	GenerationKey *string        `gorm:"type:varchar(128);uniqueIndex" json:"-"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
}

// IsReply reports whether the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// GenerationMetadata is stored on bot comments to explain how they were produced
type GenerationMetadata struct {
	PersonaID           string `json:"persona_id,omitempty"`
	PersonaName         string `json:"persona_name,omitempty"`
	SelectionReason     string `json:"selection_reason,omitempty"`
	DeclaredType        string `json:"declared_type,omitempty"`
	ReplyTargetNickname string `json:"reply_target_nickname,omitempty"`
	TypeCorrected       bool   `json:"type_corrected,omitempty"`
	Model               string `json:"model,omitempty"`
}

// NewGenerationMetadata encodes the metadata as a JSON column value
func NewGenerationMetadata(meta GenerationMetadata) datatypes.JSON {
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
