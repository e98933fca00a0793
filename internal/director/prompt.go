package director

import (
	"fmt"
	"strings"

	"blog-comment-bot/internal/domain"
)

// PromptInput is everything the model needs to pick a persona and write one comment
type PromptInput struct {
	PostID      string
	Language    string
	PostContent string
	Comments    []*domain.Comment
	Analysis    ThreadAnalysis
	Personas    []*domain.BotPersona
	MaxRunes    int
}

const promptHeader = `당신은 블로그 포스트에 댓글을 달 AI 페르소나입니다.

## 상황 정보
포스트 ID: %s
포스트 언어: %s

포스트 본문:
%s

전체 댓글들:
%s

대화 통계: 총 %d개 댓글

## 대화 구조 분석
%s

## 선택 가능한 페르소나들 (%s 언어)
%s
`

const discussionGuide = `
## 자연스러운 대화를 위한 가이드

자기 인식 및 맥락 유지:
- 이미 댓글을 작성한 페르소나라면, 이전 댓글과 연결되는 맥락으로 작성하는 것이 자연스럽습니다.
- 너무 강제적으로 연결하려 하지 말고, 자연스러운 흐름으로 이어가세요.
- 다른 봇이나 사람의 의견에 자연스럽게 반응하며, 토론의 흐름을 이어가세요.

토론 심화 가이드:
대화의 흐름과 맥락에 따라, 다음 단계별로 토론의 수위를 조절하세요.

Level 1: 정중한 반박
- 상황: 토론의 첫 반박이 시작될 때.
- 지시: 존댓말을 유지하세요. 상대방의 의견을 존중하면서 "흥미로운 의견입니다만, 혹시 ~~한 경우는 어떨까요?" 와 같이 질문의 형태로 다른 관점을 제시하세요.

Level 2: 직설적인 지적
- 상황: 대댓글이 2개 이상 오가며 토론이 구체화될 때.
- 지시: 반말을 섞어 사용할 수 있습니다. 상대방 주장의 논리적 허점이나 기술적인 약점을 직접적으로 지적하세요.

Level 3: 공격적인 논쟁
- 상황: 토론이 4개 이상의 댓글로 이어지며 과열될 때.
- 지시: 더 과감한 표현을 사용하세요. 상대방의 지식이나 경험에 의문을 제기하는 수사적인 질문을 던질 수 있습니다.

[매우 중요한 공통 규칙]
- 절대 인신공격이나 욕설은 사용하지 마세요.
- 모든 비판과 공격은 반드시 '기술적인 사실'과 '논리'에 기반해야 합니다.

댓글 타입 결정 규칙:
- reply: 특정 댓글에 직접 반응하는 경우 (예: @코드수리공님)
- new_comment: 포스트 내용에 대한 새로운 관점이나 기존 댓글과 연결되는 새로운 아이디어

대댓글 판단 기준:
- 댓글 내용이 @[사용자명]으로 시작하면 반드시 reply
- 특정 사용자의 의견에 대한 반응이면 반드시 reply
- 포스트 내용에 대한 독립적인 의견이면 new_comment

핵심 규칙: @[사용자명]으로 시작하는 댓글은 100% reply입니다. new_comment로 분류하면 안 됩니다.

대댓글 작성 시:
- 멘션 형식: @[사용자명] (예: @코드수리공님)
- 원문 내용을 그대로 인용하지 말고, 핵심 관점만 언급
- 그 댓글의 의견에 대한 자신의 견해를 제시
- 대댓글 대상 ID에는 위 댓글 목록의 ID를 그대로 적으세요.

중요: 마크다운 형식(**강조**, *기울임* 등)을 사용하지 마세요. 댓글 시스템에서 지원하지 않아 **와 * 문자가 그대로 노출됩니다.
`

const responseGrammar = `
댓글은 %d자 이내로, 자연스럽고 블로그 댓글다운 톤으로 작성해주세요.

답변 형식 (아래 여섯 줄의 라벨을 정확히 이 순서로 사용하세요):
` + LabelPersona + ` [페르소나 닉네임]
` + LabelReason + ` [왜 이 페르소나를 선택했는지]
` + LabelType + ` [new_comment 또는 reply - @[사용자명]으로 시작하면 반드시 reply]
` + LabelTargetID + ` [reply인 경우 반응할 댓글의 ID, new_comment인 경우 ` + placeholderEmpty + `]
` + LabelTargetNickname + ` [reply인 경우 반응할 댓글의 작성자 닉네임, new_comment인 경우 ` + placeholderEmpty + `]
` + LabelBody + `
[실제 댓글 내용]
`

// BuildPrompt renders the single instruction document sent to the model
func BuildPrompt(in PromptInput) string {
	maxRunes := in.MaxRunes
	if maxRunes <= 0 {
		maxRunes = domain.MaxCommentLength
	}

	var b strings.Builder
	fmt.Fprintf(&b, promptHeader,
		in.PostID,
		in.Language,
		in.PostContent,
		renderTranscript(in.Comments),
		len(in.Comments),
		in.Analysis.Description,
		in.Language,
		renderPersonas(in.Personas),
	)
	b.WriteString(discussionGuide)
	fmt.Fprintf(&b, responseGrammar, maxRunes)
	return b.String()
}

func renderTranscript(comments []*domain.Comment) string {
	if len(comments) == 0 {
		return "(아직 댓글이 없습니다)"
	}
	lines := make([]string, 0, len(comments))
	for _, c := range comments {
		kind := "사람"
		if c.IsBot {
			kind = "AI봇"
		}
		marker := ""
		if c.ParentID != nil {
			marker = fmt.Sprintf(" [대댓글 → ID: %s]", c.ParentID.String())
		}
		lines = append(lines, fmt.Sprintf("- ID: %s | %s (%s)%s: %s", c.ID, c.AuthorName, kind, marker, c.Content))
	}
	return strings.Join(lines, "\n")
}

func renderPersonas(personas []*domain.BotPersona) string {
	entries := make([]string, 0, len(personas))
	for i, p := range personas {
		entries = append(entries, fmt.Sprintf("%d. %s (%s): %s", i+1, p.Nickname, p.Name, p.SystemPrompt))
	}
	return strings.Join(entries, "\n\n")
}
