package director

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog-comment-bot/internal/domain"
	"blog-comment-bot/internal/metrics"
	"blog-comment-bot/internal/repository"
)

// ContentFetcher returns the plain text body of a published post
type ContentFetcher interface {
	FetchPostContent(ctx context.Context, postID string) (string, error)
}

// ModelGateway turns a prompt into raw model text
type ModelGateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options tune a director. Zero values fall back to sensible defaults.
type Options struct {
	DefaultLanguage string
	MaxCommentRunes int
	ParseMode       ParseMode
	ModelName       string
}

// RunRequest identifies one generation attempt. IdempotencyKey is optional;
// when set, at most one comment is ever persisted for it.
type RunRequest struct {
	PostID         string
	IdempotencyKey string
}

// Result is the persisted comment plus how it was chosen
type Result struct {
	Comment             *domain.Comment
	Persona             *domain.BotPersona
	SelectionReason     string
	ReplyTargetID       *uuid.UUID
	ReplyTargetNickname string
	DeclaredType        CommentType
	Type                CommentType
	TypeCorrected       bool
	Considered          []*domain.BotPersona
	Language            string
	Reused              bool
}

// Director turns a post id into one persisted bot comment
type Director interface {
	Run(ctx context.Context, req RunRequest) (*Result, error)
}

type directorImpl struct {
	comments repository.CommentRepository
	personas repository.PersonaRepository
	content  ContentFetcher
	model    ModelGateway
	opts     Options
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewDirector creates a new Director. m may be nil.
func NewDirector(
	comments repository.CommentRepository,
	personas repository.PersonaRepository,
	content ContentFetcher,
	model ModelGateway,
	opts Options,
	logger *zap.Logger,
	m *metrics.Metrics,
) Director {
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "ko"
	}
	if opts.MaxCommentRunes <= 0 {
		opts.MaxCommentRunes = domain.MaxCommentLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &directorImpl{
		comments: comments,
		personas: personas,
		content:  content,
		model:    model,
		opts:     opts,
		logger:   logger,
		metrics:  m,
	}
}

// Run executes one generation attempt. Nothing is written unless every step
// before persistence succeeds.
func (d *directorImpl) Run(ctx context.Context, req RunRequest) (result *Result, err error) {
	start := time.Now()
	defer func() {
		var failure *Failure
		switch {
		case errors.As(err, &failure):
			d.metrics.RecordDirectorRun(metrics.OutcomeFailure, string(failure.Stage), time.Since(start))
			d.logger.Warn("Director run failed",
				zap.String("post_id", req.PostID),
				zap.String("stage", string(failure.Stage)),
				zap.Error(err),
			)
		case result != nil && result.Reused:
			d.metrics.RecordDirectorRun(metrics.OutcomeReused, "", time.Since(start))
		case result != nil:
			d.metrics.RecordDirectorRun(metrics.OutcomeSuccess, "", time.Since(start))
			d.metrics.IncrementCommentCreated(metrics.SourceBot)
		}
	}()

	language := LanguageOf(req.PostID, d.opts.DefaultLanguage)

	if req.IdempotencyKey != "" {
		existing, err := d.comments.FindByGenerationKey(ctx, req.IdempotencyKey)
		switch {
		case err == nil:
			d.logger.Info("Comment already generated for key, reusing",
				zap.String("post_id", req.PostID),
				zap.String("comment_id", existing.ID.String()),
			)
			return reusedResult(existing, language), nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, newFailure(ErrPersistence, StageLoadThread, err)
		}
	}

	thread, err := d.comments.FindApprovedByPostID(ctx, req.PostID)
	if err != nil {
		return nil, newFailure(ErrPersistence, StageLoadThread, err)
	}

	content, err := d.content.FetchPostContent(ctx, req.PostID)
	if err != nil {
		return nil, newFailure(ErrContentUnavailable, StageFetchContent, err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, newFailure(ErrContentUnavailable, StageFetchContent, nil)
	}

	analysis := AnalyzeThread(thread)

	candidates, err := d.personas.ListActive(ctx, language)
	if err != nil {
		return nil, newFailure(ErrPersistence, StageListPersonas, err)
	}
	if len(candidates) == 0 {
		return nil, newFailure(ErrNoPersonasAvailable, StageListPersonas, errors.New("language "+language))
	}

	prompt := BuildPrompt(PromptInput{
		PostID:      req.PostID,
		Language:    language,
		PostContent: content,
		Comments:    thread,
		Analysis:    analysis,
		Personas:    candidates,
		MaxRunes:    d.opts.MaxCommentRunes,
	})

	text, err := d.model.Generate(ctx, prompt)
	if err != nil {
		return nil, newFailure(ErrGateway, StageGenerate, err)
	}

	parsed, err := ParseResponse(text, d.opts.ParseMode)
	if err != nil {
		return nil, newFailure(ErrParse, StageParse, err)
	}

	persona := d.findPersona(candidates, parsed.PersonaName)
	if persona == nil {
		return nil, newFailure(ErrPersonaNotFound, StageSelectPersona, errors.New(parsed.PersonaName))
	}

	body := truncateRunes(strings.TrimSpace(parsed.Body), d.opts.MaxCommentRunes)
	target := resolveReplyTarget(parsed, body, thread)
	if target.wantedReply && target.parent == nil {
		d.logger.Warn("Reply target could not be resolved, posting as new comment",
			zap.String("post_id", req.PostID),
			zap.String("target_id", parsed.ReplyTargetID),
			zap.String("target_nickname", parsed.ReplyTargetNickname),
		)
	}

	comment := &domain.Comment{
		PostID:       req.PostID,
		Content:      body,
		AuthorName:   persona.Nickname,
		AuthorAvatar: persona.Avatar,
		IsBot:        true,
		Status:       domain.CommentStatusApproved,
		Metadata: domain.NewGenerationMetadata(domain.GenerationMetadata{
			PersonaID:           persona.ID.String(),
			PersonaName:         persona.Name,
			SelectionReason:     parsed.Reason,
			DeclaredType:        string(parsed.Type),
			ReplyTargetNickname: target.nickname,
			TypeCorrected:       target.corrected,
			Model:               d.opts.ModelName,
		}),
	}
	if target.parent != nil {
		parentID := target.parent.ID
		comment.ParentID = &parentID
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		comment.GenerationKey = &key
	}

	if err := d.comments.Create(ctx, comment); err != nil {
		if req.IdempotencyKey != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, findErr := d.comments.FindByGenerationKey(ctx, req.IdempotencyKey); findErr == nil {
				return reusedResult(existing, language), nil
			}
		}
		return nil, newFailure(ErrPersistence, StagePersist, err)
	}

	d.logger.Info("Bot comment created",
		zap.String("post_id", req.PostID),
		zap.String("comment_id", comment.ID.String()),
		zap.String("persona", persona.Nickname),
		zap.String("type", string(target.commentType)),
		zap.Bool("type_corrected", target.corrected),
	)

	return &Result{
		Comment:             comment,
		Persona:             persona,
		SelectionReason:     parsed.Reason,
		ReplyTargetID:       comment.ParentID,
		ReplyTargetNickname: target.nickname,
		DeclaredType:        parsed.Type,
		Type:                target.commentType,
		TypeCorrected:       target.corrected,
		Considered:          candidates,
		Language:            language,
	}, nil
}

// findPersona matches the model's pick against the candidate nicknames.
// Tolerant parsing also forgives an honorific or an @ the model added.
func (d *directorImpl) findPersona(candidates []*domain.BotPersona, name string) *domain.BotPersona {
	for _, p := range candidates {
		if p.Nickname == name {
			return p
		}
	}
	if d.opts.ParseMode == ParseStrict {
		return nil
	}
	relaxed := trimHonorific(strings.TrimPrefix(name, "@"))
	for _, p := range candidates {
		if strings.EqualFold(p.Nickname, relaxed) {
			return p
		}
	}
	return nil
}

type replyTarget struct {
	parent      *domain.Comment
	nickname    string
	commentType CommentType
	wantedReply bool
	corrected   bool
}

// resolveReplyTarget decides the parent of the new comment. A body opening
// with @handle is a reply whatever type the model declared. The parent is the
// declared target id when it belongs to this thread, otherwise the latest
// comment by the named or mentioned author. With no match the comment is
// posted top-level.
func resolveReplyTarget(parsed *ParsedResponse, body string, thread []*domain.Comment) replyTarget {
	mention := leadingMention(body)
	target := replyTarget{
		commentType: CommentTypeNew,
		wantedReply: parsed.Type == CommentTypeReply || mention != "",
	}
	if !target.wantedReply {
		return target
	}

	if id, err := uuid.Parse(strings.TrimSpace(parsed.ReplyTargetID)); err == nil {
		for _, c := range thread {
			if c.ID == id {
				target.parent = c
				break
			}
		}
	}

	if target.parent == nil {
		names := []string{
			trimHonorific(bracketStripper.Replace(strings.TrimPrefix(parsed.ReplyTargetNickname, "@"))),
			mention,
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			if c := latestBy(thread, name); c != nil {
				target.parent = c
				break
			}
		}
	}

	if target.parent != nil {
		target.commentType = CommentTypeReply
		target.nickname = target.parent.AuthorName
		// only a mention that actually became a reply overrides the declared type
		target.corrected = parsed.Type != CommentTypeReply
	}
	return target
}

func latestBy(thread []*domain.Comment, author string) *domain.Comment {
	for i := len(thread) - 1; i >= 0; i-- {
		if thread[i].AuthorName == author {
			return thread[i]
		}
	}
	return nil
}

func reusedResult(existing *domain.Comment, language string) *Result {
	result := &Result{
		Comment:       existing,
		ReplyTargetID: existing.ParentID,
		Type:          CommentTypeNew,
		Language:      language,
		Reused:        true,
	}
	if existing.IsReply() {
		result.Type = CommentTypeReply
	}
	var meta domain.GenerationMetadata
	if len(existing.Metadata) > 0 && json.Unmarshal(existing.Metadata, &meta) == nil {
		result.SelectionReason = meta.SelectionReason
		result.ReplyTargetNickname = meta.ReplyTargetNickname
		result.DeclaredType = CommentType(meta.DeclaredType)
		result.TypeCorrected = meta.TypeCorrected
	}
	return result
}

// LanguageOf derives the language from the post id prefix, e.g. "ko" for
// "ko/weekly/250823". Ids without a prefix use fallback.
func LanguageOf(postID, fallback string) string {
	trimmed := strings.TrimPrefix(postID, "/")
	idx := strings.Index(trimmed, "/")
	if idx <= 0 {
		return fallback
	}
	return strings.ToLower(trimmed[:idx])
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}
