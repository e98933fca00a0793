package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"blog-comment-bot/internal/database"
	"blog-comment-bot/internal/domain"
)

var baseTime = time.Date(2025, 8, 23, 10, 0, 0, 0, time.UTC)

// setupTestDB opens a migrated in-memory database with a table prefix
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"), database.Config{TablePrefix: "test_", MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))
	return db
}

func createComment(t *testing.T, repo CommentRepository, postID, author string, isBot bool, at time.Time) *domain.Comment {
	t.Helper()
	c := &domain.Comment{
		BaseModel:  domain.BaseModel{CreatedAt: at, UpdatedAt: at},
		PostID:     postID,
		Content:    "content by " + author,
		AuthorName: author,
		IsBot:      isBot,
		Status:     domain.CommentStatusApproved,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestCommentRepository_TablePrefix(t *testing.T) {
	db := setupTestDB(t)
	assert.True(t, db.Migrator().HasTable("test_comments"))
	assert.True(t, db.Migrator().HasTable("test_bot_personas"))
	assert.True(t, db.Migrator().HasTable("test_scheduled_jobs"))
}

func TestCommentRepository_FindApprovedByPostID(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(setupTestDB(t))

	second := createComment(t, repo, "ko/weekly/1", "B", false, baseTime.Add(2*time.Minute))
	first := createComment(t, repo, "ko/weekly/1", "A", false, baseTime.Add(time.Minute))
	hidden := createComment(t, repo, "ko/weekly/1", "C", false, baseTime.Add(3*time.Minute))
	createComment(t, repo, "ko/weekly/2", "D", false, baseTime)
	require.NoError(t, repo.UpdateStatus(ctx, hidden.ID, domain.CommentStatusDeleted))

	thread, err := repo.FindApprovedByPostID(ctx, "ko/weekly/1")

	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, first.ID, thread[0].ID)
	assert.Equal(t, second.ID, thread[1].ID)
}

func TestCommentRepository_GenerationKey(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(setupTestDB(t))
	key := "job-key-1"

	t.Run("성공: 키로 조회", func(t *testing.T) {
		c := &domain.Comment{PostID: "ko/weekly/1", Content: "hi", AuthorName: "bot", IsBot: true,
			Status: domain.CommentStatusApproved, GenerationKey: &key}
		require.NoError(t, repo.Create(ctx, c))

		found, err := repo.FindByGenerationKey(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
	})

	t.Run("실패: 같은 키로 두 번째 댓글", func(t *testing.T) {
		dup := &domain.Comment{PostID: "ko/weekly/1", Content: "again", AuthorName: "bot", IsBot: true,
			Status: domain.CommentStatusApproved, GenerationKey: &key}
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})

	t.Run("실패: 없는 키", func(t *testing.T) {
		_, err := repo.FindByGenerationKey(ctx, "missing")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("성공: 키 없는 댓글은 여러 개 저장", func(t *testing.T) {
		createComment(t, repo, "ko/weekly/1", "human1", false, baseTime)
		createComment(t, repo, "ko/weekly/1", "human2", false, baseTime)
	})
}

func TestCommentRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(setupTestDB(t))

	for i := 0; i < 5; i++ {
		createComment(t, repo, "ko/weekly/1", "A", false, baseTime.Add(time.Duration(i)*time.Minute))
	}
	createComment(t, repo, "ko/weekly/2", "B", true, baseTime)

	t.Run("성공: 포스트 필터와 페이지", func(t *testing.T) {
		comments, total, err := repo.List(ctx, CommentFilter{PostID: "ko/weekly/1"}, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, comments, 2)
		// newest first: page 2 holds the third and fourth newest
		assert.True(t, comments[0].CreatedAt.After(comments[1].CreatedAt))
		assert.Equal(t, baseTime.Add(2*time.Minute), comments[0].CreatedAt.UTC())
	})

	t.Run("성공: 전체 목록", func(t *testing.T) {
		comments, total, err := repo.List(ctx, CommentFilter{}, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(6), total)
		assert.Len(t, comments, 6)
	})
}

func TestCommentRepository_UpdateStatus_NotFound(t *testing.T) {
	repo := NewCommentRepository(setupTestDB(t))

	err := repo.UpdateStatus(context.Background(), uuid.New(), domain.CommentStatusDeleted)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommentRepository_Counts(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(setupTestDB(t))

	createComment(t, repo, "ko/weekly/1", "A", false, baseTime)
	createComment(t, repo, "ko/weekly/1", "bot", true, baseTime)
	createComment(t, repo, "ko/weekly/1", "bot", true, baseTime)
	deleted := createComment(t, repo, "ko/weekly/1", "bot", true, baseTime)
	createComment(t, repo, "en/weekly/1", "B", false, baseTime)
	require.NoError(t, repo.UpdateStatus(ctx, deleted.ID, domain.CommentStatusDeleted))

	total, bots, err := repo.CountByPostID(ctx, "ko/weekly/1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), bots)

	counts, err := repo.CountApprovedByPost(ctx)
	require.NoError(t, err)
	byPost := map[string]int64{}
	for _, c := range counts {
		byPost[c.PostID] = c.Count
	}
	assert.Equal(t, map[string]int64{"ko/weekly/1": 3, "en/weekly/1": 1}, byPost)
}

func TestPersonaRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPersonaRepository(setupTestDB(t))

	upsert := func(t *testing.T, nickname, lang, prompt string, active bool, at time.Time) {
		t.Helper()
		require.NoError(t, repo.Upsert(ctx, &domain.BotPersona{
			BaseModel:    domain.BaseModel{CreatedAt: at, UpdatedAt: at},
			Name:         nickname + " name",
			Nickname:     nickname,
			Lang:         lang,
			SystemPrompt: prompt,
			IsActive:     active,
		}))
	}

	upsert(t, "호기심", "ko", "curious", true, baseTime.Add(time.Minute))
	upsert(t, "분석가", "ko", "analytic", true, baseTime)
	upsert(t, "휴면", "ko", "sleepy", false, baseTime)
	upsert(t, "Curious", "en", "curious", true, baseTime)

	t.Run("성공: 언어별 활성 페르소나", func(t *testing.T) {
		personas, err := repo.ListActive(ctx, "ko")
		require.NoError(t, err)
		require.Len(t, personas, 2)
		assert.Equal(t, "분석가", personas[0].Nickname)
		assert.Equal(t, "호기심", personas[1].Nickname)
	})

	t.Run("성공: 없는 언어는 빈 목록", func(t *testing.T) {
		personas, err := repo.ListActive(ctx, "ja")
		require.NoError(t, err)
		assert.Empty(t, personas)
	})

	t.Run("성공: 같은 닉네임과 언어는 갱신", func(t *testing.T) {
		upsert(t, "호기심", "ko", "curious v2", false, baseTime.Add(time.Hour))

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 4)

		active, err := repo.ListActive(ctx, "ko")
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "분석가", active[0].Nickname)

		for _, p := range all {
			if p.Nickname == "호기심" {
				assert.Equal(t, "curious v2", p.SystemPrompt)
				assert.False(t, p.IsActive)
			}
		}
	})
}
