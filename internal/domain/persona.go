package domain

// BotPersona is a configured AI character that may author bot comments.
// The nickname is the display name used as the comment author.
type BotPersona struct {
	BaseModel
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	Nickname     string `gorm:"type:varchar(100);not null;uniqueIndex:,composite:lang_nickname" json:"nickname"`
	Lang         string `gorm:"type:varchar(10);not null;uniqueIndex:,composite:lang_nickname;index" json:"lang"`
	SystemPrompt string `gorm:"type:text;not null" json:"system_prompt"`
	Avatar       string `gorm:"type:text" json:"avatar"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
}
