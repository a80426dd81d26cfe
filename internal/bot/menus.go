package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sportiq/internal/pkg/models"
)

// maxGameButtons caps the per-game analysis buttons so the keyboard
// stays usable next to the two navigation buttons.
const maxGameButtons = 11

var sportOptions = []struct {
	name  string
	emoji string
}{
	{"籃球", "🏀"},
	{"棒球", "⚾"},
	{"足球", "⚽"},
	{"冰球", "🏒"},
	{"網球", "🎾"},
}

// mainMenuKeyboard is the first menu level.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🏆 今日賽事"),
			tgbotapi.NewKeyboardButton("📅 明日賽事"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🔍 查詢到期"),
			tgbotapi.NewKeyboardButton("💰 儲值序號"),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// sportSelectKeyboard is the second level. A non-zero date offset bakes
// the 明天 prefix into each sport button.
func sportSelectKeyboard(dateOffset int) tgbotapi.ReplyKeyboardMarkup {
	prefix := ""
	if dateOffset != 0 {
		prefix = "明天 "
	}
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, s := range sportOptions {
		row = append(row, tgbotapi.NewKeyboardButton(s.emoji+" "+prefix+s.name))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("↩ 返回主選單"),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// gameKeyboard is the third level: one analysis button per game, keyed
// by home team so the button text feeds straight back into the parser.
func gameKeyboard(games []*models.Game) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	seen := make(map[string]struct{})
	count := 0
	for _, g := range games {
		if g.Home == "" || g.Home == models.UnknownTeam {
			continue
		}
		if _, dup := seen[g.Home]; dup {
			continue
		}
		seen[g.Home] = struct{}{}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("分析 "+g.Home),
		))
		count++
		if count >= maxGameButtons {
			break
		}
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton("↩ 返回運動選擇"),
		tgbotapi.NewKeyboardButton("🏠 主選單"),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}
