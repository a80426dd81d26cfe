package bot

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Action classifies one incoming message.
type Action string

const (
	ActionList        Action = "list"
	ActionAnalysis    Action = "analysis"
	ActionHelp        Action = "help"
	ActionMainMenu    Action = "main_menu"
	ActionSelectSport Action = "select_sport"
	ActionQueryUID    Action = "query_uid"
	ActionSetAdmin    Action = "set_admin"
	ActionRemoveAdmin Action = "remove_admin"
	ActionGenCode     Action = "gen_code"
	ActionCheckExpiry Action = "check_expiry"
	ActionRedeem      Action = "redeem"
)

// Command is the parsed form of a user message.
type Command struct {
	Action     Action
	Sport      string
	DateOffset int
	// Keyword carries the action argument: a team search term, a
	// top-up code, a target user id or a code duration label.
	Keyword string
}

// sportKeywords maps user vocabulary to sport keys. Order matters: the
// first keyword contained in the message wins.
var sportKeywords = []struct {
	word  string
	sport string
}{
	{"籃球", "basketball"}, {"nba", "basketball"}, {"sbl", "basketball"},
	{"棒球", "baseball"}, {"mlb", "baseball"}, {"中職", "baseball"}, {"日職", "baseball"},
	{"足球", "soccer"},
	{"冰球", "hockey"}, {"nhl", "hockey"},
	{"網球", "tennis"},
}

// SportNames maps sport keys back to display names.
var SportNames = map[string]string{
	"basketball": "籃球",
	"baseball":   "棒球",
	"soccer":     "足球",
	"hockey":     "冰球",
	"tennis":     "網球",
}

// AllSports is the search order when no sport was specified.
var AllSports = []string{"basketball", "baseball", "soccer", "hockey", "tennis"}

// ParseCommand maps a raw user message to a command. Button presses
// arrive with a decorative leading emoji, which is stripped before
// matching.
func ParseCommand(rawText string) Command {
	raw := stripLeadingSymbols(strings.TrimSpace(rawText))
	text := strings.ToLower(raw)

	if text == "查詢uid" || text == "uid" || text == "我的uid" {
		return Command{Action: ActionQueryUID}
	}

	if rest, ok := strings.CutPrefix(raw, "設為管理員"); ok {
		return Command{Action: ActionSetAdmin, Keyword: strings.TrimSpace(rest)}
	}
	if rest, ok := strings.CutPrefix(raw, "移除管理員"); ok {
		return Command{Action: ActionRemoveAdmin, Keyword: strings.TrimSpace(rest)}
	}
	if rest, ok := strings.CutPrefix(raw, "生成序號"); ok {
		return Command{Action: ActionGenCode, Keyword: strings.TrimSpace(rest)}
	}

	switch text {
	case "help", "幫助", "說明", "指令", "功能", "menu", "start":
		return Command{Action: ActionHelp}
	case "查詢到期", "到期", "到期日", "會員到期":
		return Command{Action: ActionCheckExpiry}
	}

	if strings.HasPrefix(text, "儲值序號") || text == "儲值" {
		code := strings.ReplaceAll(raw, "儲值序號", "")
		code = strings.ReplaceAll(code, "儲值", "")
		return Command{Action: ActionRedeem, Keyword: strings.TrimSpace(code)}
	}

	switch text {
	case "主選單", "選單", "返回", "返回主選單":
		return Command{Action: ActionMainMenu}
	case "今日賽事", "賽事", "今天":
		return Command{Action: ActionSelectSport}
	case "明日賽事":
		return Command{Action: ActionSelectSport, DateOffset: 1}
	case "返回運動選擇", "選運動":
		return Command{Action: ActionSelectSport}
	}

	dateOffset := 0
	switch {
	case strings.Contains(text, "昨天") || strings.Contains(text, "昨日"):
		dateOffset = -1
		text = stripWords(text, "昨天", "昨日")
	case strings.Contains(text, "明天") || strings.Contains(text, "明日"):
		dateOffset = 1
		text = stripWords(text, "明天", "明日")
	case strings.Contains(text, "後天"):
		dateOffset = 2
		text = stripWords(text, "後天")
	}

	if rest, ok := strings.CutPrefix(text, "分析"); ok {
		return Command{Action: ActionAnalysis, DateOffset: dateOffset, Keyword: strings.TrimSpace(rest)}
	}

	switch text {
	case "比分", "即時比分", "score", "scores", "今日比分":
		return Command{Action: ActionSelectSport}
	}

	for _, entry := range sportKeywords {
		if !strings.Contains(text, entry.word) {
			continue
		}
		if strings.Contains(text, "分析") {
			keyword := stripWords(text, entry.word, "分析")
			return Command{Action: ActionAnalysis, Sport: entry.sport, DateOffset: dateOffset, Keyword: keyword}
		}
		return Command{Action: ActionList, Sport: entry.sport, DateOffset: dateOffset}
	}

	// A short free-form message is treated as a team search.
	if text != "" && utf8.RuneCountInString(text) <= 10 {
		return Command{Action: ActionAnalysis, DateOffset: dateOffset, Keyword: text}
	}

	return Command{Action: ActionHelp}
}

func stripWords(text string, words ...string) string {
	for _, w := range words {
		text = strings.ReplaceAll(text, w, "")
	}
	return strings.TrimSpace(text)
}

// stripLeadingSymbols removes decorative emoji and punctuation from the
// front of a message, keeping the first letter or digit onward.
func stripLeadingSymbols(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
