package director

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommentType is the model-declared kind of comment
type CommentType string

const (
	CommentTypeNew   CommentType = "new_comment"
	CommentTypeReply CommentType = "reply"
)

// Response grammar labels, in the order the model is asked to emit them
const (
	LabelPersona        = "선택된 페르소나:"
	LabelReason         = "선택 이유:"
	LabelType           = "댓글 타입:"
	LabelTargetID       = "대댓글 대상 ID:"
	LabelTargetNickname = "대댓글 대상 닉네임:"
	LabelBody           = "댓글:"

	placeholderEmpty = "비워두기"
)

// ParseMode selects how forgiving the parser is about decoration around labels
type ParseMode int

const (
	// ParseTolerant accepts leading whitespace, markdown emphasis, bullets,
	// full-width colons and bracketed values.
	ParseTolerant ParseMode = iota
	// ParseStrict requires every label to start its line exactly as specified.
	ParseStrict
)

// ParsedResponse is the structured command extracted from a model reply
type ParsedResponse struct {
	PersonaName         string
	Reason              string
	Type                CommentType
	RawType             string
	ReplyTargetID       string
	ReplyTargetNickname string
	Body                string
}

// ParseError describes why a model reply could not be turned into a command
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse model response: " + e.Reason
}

// headerLabels are matched before the body label; longer labels first so that
// no label shadows another.
var headerLabels = []string{
	LabelTargetNickname,
	LabelTargetID,
	LabelPersona,
	LabelReason,
	LabelType,
}

var bracketStripper = strings.NewReplacer("[", "", "]", "")

var emptyMarkers = map[string]bool{
	placeholderEmpty: true,
	"없음":             true,
	"-":              true,
	"none":           true,
	"null":           true,
	"n/a":            true,
}

// ParseResponse scans the reply top-down. The first occurrence of each label
// wins; everything after the body label is the body, newlines included.
func ParseResponse(text string, mode ParseMode) (*ParsedResponse, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	seen := make(map[string]bool, len(headerLabels))
	values := make(map[string]string, len(headerLabels))
	body := ""
	bodyFound := false

	for i, line := range lines {
		if value, ok := matchLabel(line, LabelBody, mode); ok {
			body = collectBody(value, lines[i+1:])
			bodyFound = true
			break
		}
		for _, label := range headerLabels {
			if seen[label] {
				continue
			}
			if value, ok := matchLabel(line, label, mode); ok {
				seen[label] = true
				values[label] = cleanValue(value, mode)
				break
			}
		}
	}

	parsed := &ParsedResponse{
		PersonaName:         values[LabelPersona],
		Reason:              values[LabelReason],
		RawType:             values[LabelType],
		ReplyTargetID:       values[LabelTargetID],
		ReplyTargetNickname: values[LabelTargetNickname],
		Body:                body,
	}
	parsed.Type = classifyType(parsed.RawType, mode)

	if parsed.PersonaName == "" {
		return nil, &ParseError{Reason: "selected persona is missing"}
	}
	if !bodyFound {
		return nil, &ParseError{Reason: "comment body label is missing"}
	}
	if parsed.Body == "" {
		return nil, &ParseError{Reason: "comment body is empty"}
	}
	return parsed, nil
}

// matchLabel returns the text after the label's colon when line carries label
func matchLabel(line, label string, mode ParseMode) (string, bool) {
	if mode == ParseStrict {
		if strings.HasPrefix(line, label) {
			return line[len(label):], true
		}
		return "", false
	}

	probe := strings.TrimLeftFunc(line, isDecoration)
	name := strings.TrimSuffix(label, ":")
	if len(probe) < len(name) || !strings.EqualFold(probe[:len(name)], name) {
		return "", false
	}
	lead := line[:len(line)-len(probe)]
	emphasis := lead[len(strings.TrimRight(lead, "*_")):]

	after := probe[len(name):]
	rest := strings.TrimLeft(after, " \t*_")
	if strings.ContainsAny(after[:len(after)-len(rest)], "*_") {
		// "**댓글**:" closes its emphasis before the colon
		emphasis = ""
	}

	var value string
	switch {
	case strings.HasPrefix(rest, ":"):
		value = rest[1:]
	case strings.HasPrefix(rest, "："):
		value = rest[len("："):]
	default:
		return "", false
	}
	return closeEmphasis(value, emphasis), true
}

// closeEmphasis drops the marker that closes a label opened with emphasis,
// as in "**댓글:** 본문". Anything else after the colon is left alone.
func closeEmphasis(value, emphasis string) string {
	if emphasis == "" {
		return value
	}
	trimmed := strings.TrimLeft(value, " \t")
	if strings.HasPrefix(trimmed, emphasis) {
		return trimmed[len(emphasis):]
	}
	return value
}

// isDecoration matches characters models put in front of labels
func isDecoration(r rune) bool {
	switch r {
	case '*', '_', '#', '-', '>', '`', '•':
		return true
	}
	return unicode.IsSpace(r)
}

func cleanValue(value string, mode ParseMode) string {
	value = strings.TrimSpace(value)
	if mode == ParseTolerant {
		value = strings.Trim(value, "*_` ")
		value = unwrap(value)
		value = strings.TrimSpace(value)
		if emptyMarkers[strings.ToLower(value)] {
			return ""
		}
		return value
	}
	if value == placeholderEmpty {
		return ""
	}
	return value
}

// unwrap removes one pair of enclosing brackets or quotes
func unwrap(value string) string {
	pairs := [][2]string{{"[", "]"}, {"(", ")"}, {"\"", "\""}, {"'", "'"}, {"“", "”"}, {"「", "」"}}
	for _, p := range pairs {
		if len(value) >= len(p[0])+len(p[1]) && strings.HasPrefix(value, p[0]) && strings.HasSuffix(value, p[1]) {
			inner := value[len(p[0]) : len(value)-len(p[1])]
			if !strings.Contains(inner, p[0]) {
				return inner
			}
		}
	}
	return value
}

func collectBody(first string, rest []string) string {
	first = strings.TrimLeftFunc(first, unicode.IsSpace)
	var body string
	if first == "" {
		body = strings.Join(rest, "\n")
	} else {
		body = strings.Join(append([]string{first}, rest...), "\n")
	}
	return strings.TrimSpace(body)
}

func classifyType(raw string, mode ParseMode) CommentType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if mode == ParseStrict {
		if normalized == string(CommentTypeReply) {
			return CommentTypeReply
		}
		return CommentTypeNew
	}
	if strings.Contains(normalized, "new") {
		return CommentTypeNew
	}
	if strings.Contains(normalized, "reply") || strings.Contains(normalized, "대댓글") {
		return CommentTypeReply
	}
	return CommentTypeNew
}

// leadingMention returns the handle of an @mention that opens the body, with
// honorific suffixes removed. The empty string means there is no mention.
func leadingMention(body string) string {
	if !strings.HasPrefix(body, "@") {
		return ""
	}
	rest := body[1:]
	end := len(rest)
	for i, r := range rest {
		if unicode.IsSpace(r) || strings.ContainsRune(",.!?:;，。！？、", r) {
			end = i
			break
		}
	}
	return trimHonorific(bracketStripper.Replace(rest[:end]))
}

// trimHonorific strips the Korean and Japanese forms of address a model
// appends to nicknames.
func trimHonorific(name string) string {
	name = strings.TrimSpace(name)
	for _, suffix := range []string{"님", "さん", "様", "씨"} {
		if strings.HasSuffix(name, suffix) && utf8.RuneCountInString(name) > utf8.RuneCountInString(suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
