package director

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedResponse = `선택된 페르소나: 코드수리공
선택 이유: 실무 경험 기반의 반론이 필요한 시점
댓글 타입: new_comment
대댓글 대상 ID: 비워두기
대댓글 대상 닉네임: 비워두기
댓글:
제네릭 도입 이후로 코드가 정말 줄었나요?
운영에서 측정한 수치가 궁금합니다.`

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		mode         ParseMode
		wantPersona  string
		wantReason   string
		wantType     CommentType
		wantTargetID string
		wantNickname string
		wantBody     string
	}{
		{
			name:        "성공: 정상 응답 strict",
			text:        wellFormedResponse,
			mode:        ParseStrict,
			wantPersona: "코드수리공",
			wantReason:  "실무 경험 기반의 반론이 필요한 시점",
			wantType:    CommentTypeNew,
			wantBody:    "제네릭 도입 이후로 코드가 정말 줄었나요?\n운영에서 측정한 수치가 궁금합니다.",
		},
		{
			name: "성공: reply와 대상 ID",
			text: "선택된 페르소나: 신기술너무좋아\n선택 이유: 반박\n댓글 타입: reply\n" +
				"대댓글 대상 ID: 2b6f0c1e-7f3a-4a39-9d4e-1f6f0b3c9a10\n대댓글 대상 닉네임: 코드수리공\n댓글:\n@코드수리공님 벤치마크를 보세요.",
			mode:         ParseStrict,
			wantPersona:  "신기술너무좋아",
			wantReason:   "반박",
			wantType:     CommentTypeReply,
			wantTargetID: "2b6f0c1e-7f3a-4a39-9d4e-1f6f0b3c9a10",
			wantNickname: "코드수리공",
			wantBody:     "@코드수리공님 벤치마크를 보세요.",
		},
		{
			name:        "성공: 본문이 라벨과 같은 줄에서 시작",
			text:        "선택된 페르소나: 데이터덕후\n댓글: 측정 방법이 궁금합니다.\n둘째 줄",
			mode:        ParseStrict,
			wantPersona: "데이터덕후",
			wantType:    CommentTypeNew,
			wantBody:    "측정 방법이 궁금합니다.\n둘째 줄",
		},
		{
			name:        "성공: 중복 라벨은 첫 번째가 이김",
			text:        "선택된 페르소나: 첫번째\n선택된 페르소나: 두번째\n댓글 타입: reply\n댓글 타입: new_comment\n댓글:\n본문",
			mode:        ParseStrict,
			wantPersona: "첫번째",
			wantType:    CommentTypeReply,
			wantBody:    "본문",
		},
		{
			name:        "성공: 본문 안의 라벨은 본문으로 유지",
			text:        "선택된 페르소나: 코드수리공\n댓글:\n첫 줄\n선택 이유: 이것도 본문",
			mode:        ParseStrict,
			wantPersona: "코드수리공",
			wantType:    CommentTypeNew,
			wantBody:    "첫 줄\n선택 이유: 이것도 본문",
		},
		{
			name: "성공: tolerant 마크다운과 대괄호",
			text: "**선택된 페르소나:** [코드수리공]\n- **선택 이유**: 경험\n### 댓글 타입: Reply\n" +
				"  대댓글 대상 ID: 없음\n대댓글 대상 닉네임： 「데이터덕후」\n**댓글:**\n[본문입니다]",
			mode:         ParseTolerant,
			wantPersona:  "코드수리공",
			wantReason:   "경험",
			wantType:     CommentTypeReply,
			wantNickname: "데이터덕후",
			wantBody:     "[본문입니다]",
		},
		{
			name:        "성공: tolerant 같은 줄 본문의 * 는 유지",
			text:        "선택된 페르소나: 코드수리공\n" + LabelBody + " *args 로 받으면 됩니다",
			mode:        ParseTolerant,
			wantPersona: "코드수리공",
			wantType:    CommentTypeNew,
			wantBody:    "*args 로 받으면 됩니다",
		},
		{
			name:        "성공: tolerant 같은 줄 본문의 __ 는 유지",
			text:        "선택된 페르소나: 코드수리공\n" + LabelBody + " __init__ 에서 처리하세요",
			mode:        ParseTolerant,
			wantPersona: "코드수리공",
			wantType:    CommentTypeNew,
			wantBody:    "__init__ 에서 처리하세요",
		},
		{
			name:        "성공: tolerant 대괄호 하나로 된 본문은 유지",
			text:        "선택된 페르소나: 코드수리공\n" + LabelBody + " [참고]",
			mode:        ParseTolerant,
			wantPersona: "코드수리공",
			wantType:    CommentTypeNew,
			wantBody:    "[참고]",
		},
		{
			name:        "성공: 굵은 라벨의 닫는 ** 만 제거",
			text:        "선택된 페르소나: 코드수리공\n**" + LabelBody + "** **중요**: 캐시부터 보세요",
			mode:        ParseTolerant,
			wantPersona: "코드수리공",
			wantType:    CommentTypeNew,
			wantBody:    "**중요**: 캐시부터 보세요",
		},
		{
			name:        "성공: 라벨 안에서 닫힌 굵기는 본문에 영향 없음",
			text:        "선택된 페르소나: 코드수리공\n**댓글**: *args 도 됩니다",
			mode:        ParseTolerant,
			wantPersona: "코드수리공",
			wantType:    CommentTypeNew,
			wantBody:    "*args 도 됩니다",
		},
		{
			name:        "성공: CRLF 줄바꿈",
			text:        "선택된 페르소나: 코드수리공\r\n댓글 타입: 대댓글\r\n댓글:\r\n한 줄\r\n두 줄",
			mode:        ParseTolerant,
			wantPersona: "코드수리공",
			wantType:    CommentTypeReply,
			wantBody:    "한 줄\n두 줄",
		},
		{
			name:        "성공: 알 수 없는 타입은 new_comment",
			text:        "선택된 페르소나: 코드수리공\n댓글 타입: ???\n댓글: 본문",
			mode:        ParseTolerant,
			wantPersona: "코드수리공",
			wantType:    CommentTypeNew,
			wantBody:    "본문",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseResponse(tt.text, tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPersona, parsed.PersonaName)
			assert.Equal(t, tt.wantReason, parsed.Reason)
			assert.Equal(t, tt.wantType, parsed.Type)
			assert.Equal(t, tt.wantTargetID, parsed.ReplyTargetID)
			assert.Equal(t, tt.wantNickname, parsed.ReplyTargetNickname)
			assert.Equal(t, tt.wantBody, parsed.Body)
		})
	}
}

func TestParseResponse_Errors(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		mode       ParseMode
		wantReason string
	}{
		{"실패: 페르소나 라벨 없음", "선택 이유: x\n댓글:\n본문", ParseTolerant, "selected persona is missing"},
		{"실패: 페르소나 값이 비워두기", "선택된 페르소나: 비워두기\n댓글:\n본문", ParseStrict, "selected persona is missing"},
		{"실패: 본문 라벨 없음", "선택된 페르소나: 코드수리공\n선택 이유: x", ParseTolerant, "comment body label is missing"},
		{"실패: 본문이 공백뿐", "선택된 페르소나: 코드수리공\n댓글:   \n  \n\t", ParseTolerant, "comment body is empty"},
		{"실패: 빈 입력", "", ParseTolerant, "selected persona is missing"},
		{"실패: strict에서 들여쓴 라벨", "  선택된 페르소나: 코드수리공\n댓글: 본문", ParseStrict, "selected persona is missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseResponse(tt.text, tt.mode)
			assert.Nil(t, parsed)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.wantReason, parseErr.Reason)
		})
	}
}

func TestLeadingMention(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"@코드수리공님 좋은 지적입니다", "코드수리공"},
		{"@[코드수리공]님, 동의합니다", "코드수리공"},
		{"@バグハンターさん、確かに", "バグハンター"},
		{"@데이터덕후", "데이터덕후"},
		{"좋은 글입니다 @코드수리공", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.want, leadingMention(tt.body))
		})
	}
}

func TestParseResponse_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("well-formed responses parse back to their fields", prop.ForAll(
		func(persona, reason, targetID, nickname, first string, rest []string) bool {
			bodyLines := append([]string{first}, rest...)
			text := strings.Join([]string{
				LabelPersona + " " + persona,
				LabelReason + " " + reason,
				LabelType + " reply",
				LabelTargetID + " " + targetID,
				LabelTargetNickname + " " + nickname,
				LabelBody,
				strings.Join(bodyLines, "\n"),
			}, "\n")

			parsed, err := ParseResponse(text, ParseStrict)
			if err != nil {
				return false
			}
			return parsed.PersonaName == persona &&
				parsed.Reason == reason &&
				parsed.Type == CommentTypeReply &&
				parsed.ReplyTargetID == targetID &&
				parsed.ReplyTargetNickname == nickname &&
				parsed.Body == strings.TrimSpace(strings.Join(bodyLines, "\n"))
		},
		gen.Identifier(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.Identifier(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestParseResponse_ArbitraryInputNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("parser returns a value or a ParseError for any text", prop.ForAll(
		func(prefix string, noise string) bool {
			for _, mode := range []ParseMode{ParseStrict, ParseTolerant} {
				text := prefix + "\n" + LabelBody + noise
				parsed, err := ParseResponse(text, mode)
				if err == nil && (parsed == nil || parsed.PersonaName == "" || parsed.Body == "") {
					return false
				}
				if err != nil {
					if _, ok := err.(*ParseError); !ok {
						return false
					}
				}
			}
			return true
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
