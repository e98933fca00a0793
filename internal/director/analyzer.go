package director

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"blog-comment-bot/internal/domain"
)

// MaxThreadDepth bounds the parent walk so malformed chains terminate
const MaxThreadDepth = 10

// ThreadStage is the qualitative phase of a discussion
type ThreadStage string

const (
	ThreadStageNewPost    ThreadStage = "new_post"
	ThreadStageActive     ThreadStage = "active"
	ThreadStageNeedsDepth ThreadStage = "needs_depth"
	ThreadStageEarly      ThreadStage = "early_stage"
)

// ThreadAnalysis is the structural summary of a post's comments
type ThreadAnalysis struct {
	TotalCount  int
	ParentCount int
	ReplyCount  int
	MaxDepth    int
	Stage       ThreadStage
	Description string
}

var stageMessages = map[ThreadStage]string{
	ThreadStageNewPost:    "새로운 포스트입니다. 첫 댓글을 작성할 차례입니다.",
	ThreadStageActive:     "대화가 활발하게 진행되고 있습니다. 적절한 대댓글이나 새로운 관점의 댓글이 도움이 될 수 있습니다.",
	ThreadStageNeedsDepth: "여러 메인 댓글이 있지만 대화가 깊어지지 않았습니다. 대화를 이끌어갈 수 있는 댓글이 필요합니다.",
	ThreadStageEarly:      "아직 대화 초기 단계입니다. 포스트 내용에 대한 다양한 관점의 댓글이 도움이 될 수 있습니다.",
}

// AnalyzeThread computes counts, depth and a stage description for the thread
func AnalyzeThread(comments []*domain.Comment) ThreadAnalysis {
	analysis := ThreadAnalysis{TotalCount: len(comments)}
	if len(comments) == 0 {
		analysis.Stage = ThreadStageNewPost
		analysis.Description = stageMessages[ThreadStageNewPost]
		return analysis
	}

	index := make(map[uuid.UUID]*domain.Comment, len(comments))
	for _, c := range comments {
		index[c.ID] = c
	}

	for _, c := range comments {
		if c.ParentID == nil {
			analysis.ParentCount++
		} else {
			analysis.ReplyCount++
		}
		if d := depthOf(c, index); d > analysis.MaxDepth {
			analysis.MaxDepth = d
		}
	}

	switch {
	case analysis.ReplyCount > 0:
		analysis.Stage = ThreadStageActive
	case analysis.ParentCount >= 2:
		analysis.Stage = ThreadStageNeedsDepth
	default:
		analysis.Stage = ThreadStageEarly
	}

	var b strings.Builder
	fmt.Fprintf(&b, "대화 현황: %d개 메인 댓글, %d개 대댓글\n", analysis.ParentCount, analysis.ReplyCount)
	fmt.Fprintf(&b, "대화 깊이: 최대 %d단계\n", analysis.MaxDepth)
	b.WriteString(stageMessages[analysis.Stage])
	analysis.Description = b.String()
	return analysis
}

// depthOf counts parent hops from c. A reference to a comment outside the
// index still counts as one hop and ends the walk.
func depthOf(c *domain.Comment, index map[uuid.UUID]*domain.Comment) int {
	depth := 0
	current := c
	for current.ParentID != nil && depth < MaxThreadDepth {
		depth++
		parent, ok := index[*current.ParentID]
		if !ok {
			break
		}
		current = parent
	}
	return depth
}
