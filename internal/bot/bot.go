package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sportiq/internal/analyzer"
	"sportiq/internal/membership"
	"sportiq/internal/pkg/config"
	"sportiq/internal/pkg/models"
	"sportiq/internal/scraper"
)

// maxMessageLen is where long replies are split; Telegram rejects
// messages over 4096 characters.
const maxMessageLen = 4000

var taipeiTZ = time.FixedZone("Asia/Taipei", 8*60*60)

var weekdayNames = []string{"日", "一", "二", "三", "四", "五", "六"}

// Bot serves the Telegram chat surface: hierarchical reply-keyboard
// menus over the game fetcher, the analyzer and the membership service.
type Bot struct {
	api     *tgbotapi.BotAPI
	games   *scraper.Service
	members *membership.Service
	logger  *slog.Logger
	timeout int
	now     func() time.Time

	// Last browsed date offset per user, so a bare 分析 reuses it.
	mu          sync.Mutex
	dateOffsets map[int64]int
}

func New(cfg *config.BotConfig, games *scraper.Service, members *membership.Service, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	api.Debug = false

	return &Bot{
		api:         api,
		games:       games,
		members:     members,
		logger:      logger,
		timeout:     cfg.UpdateTimeout,
		now:         time.Now,
		dateOffsets: make(map[int64]int),
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.logger.Info("bot authorized", "account", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	cmd := ParseCommand(msg.Text)

	b.logger.Info("message",
		"user_id", userID,
		"action", string(cmd.Action),
		"sport", cmd.Sport)

	var reply string
	keyboard := mainMenuKeyboard()

	switch cmd.Action {
	case ActionMainMenu:
		reply = mainMenuMessage
	case ActionHelp:
		reply = helpMessage
	case ActionQueryUID:
		reply = b.handleQueryUID(ctx, userID)
	case ActionSetAdmin:
		reply = b.handleSetAdmin(ctx, userID, cmd.Keyword)
	case ActionRemoveAdmin:
		reply = b.handleRemoveAdmin(ctx, userID, cmd.Keyword)
	case ActionGenCode:
		reply = b.handleGenCode(ctx, userID, cmd.Keyword)
	case ActionCheckExpiry:
		reply = b.handleCheckExpiry(ctx, userID)
	case ActionRedeem:
		reply = b.handleRedeem(ctx, userID, cmd.Keyword)

	case ActionSelectSport, ActionList, ActionAnalysis:
		if !b.members.IsMemberActive(ctx, userID) {
			reply = memberRequiredMessage
			break
		}
		switch cmd.Action {
		case ActionSelectSport:
			b.setDateOffset(userID, cmd.DateOffset)
			reply = fmt.Sprintf(
				"╭────────────────╮\n│  🏆 選擇運動類型       │\n│  📅 %s            │\n╰────────────────╯\n\n👇 點擊下方按鈕選擇想查看的運動",
				b.displayDate(cmd.DateOffset))
			keyboard = sportSelectKeyboard(cmd.DateOffset)
		case ActionList:
			b.setDateOffset(userID, cmd.DateOffset)
			var games []*models.Game
			reply, games = b.handleList(ctx, cmd.Sport, cmd.DateOffset)
			if len(games) > 0 {
				keyboard = gameKeyboard(games)
			} else {
				keyboard = sportSelectKeyboard(cmd.DateOffset)
			}
		case ActionAnalysis:
			offset := cmd.DateOffset
			if offset == 0 {
				offset = b.dateOffset(userID)
			}
			reply = b.handleAnalysis(ctx, cmd.Sport, offset, cmd.Keyword)
		}

	default:
		reply = helpMessage
	}

	b.sendReply(msg.Chat.ID, reply, keyboard)
}

func (b *Bot) handleList(ctx context.Context, sport string, dateOffset int) (string, []*models.Game) {
	if sport == "" {
		sport = "basketball"
	}
	date := b.dateKey(dateOffset)
	display := b.displayDate(dateOffset)

	games, err := b.games.FetchAll(ctx, sport, date)
	if err != nil {
		b.logger.Error("fetch games failed", "sport", sport, "error", err)
	}
	if len(games) == 0 {
		name := SportNames[sport]
		if name == "" {
			name = sport
		}
		return fmt.Sprintf("📅 %s\n\n%s 今日無賽事，請切換日期或運動類型。", display, name), nil
	}
	return analyzer.FormatDigest(games, sport, display), games
}

func (b *Bot) handleAnalysis(ctx context.Context, sport string, dateOffset int, keyword string) string {
	sports := AllSports
	if sport != "" {
		sports = []string{sport}
	}
	date := b.dateKey(dateOffset)

	type match struct {
		game  *models.Game
		sport string
	}
	var matched []match
	for _, s := range sports {
		games, err := b.games.FetchAll(ctx, s, date)
		if err != nil {
			b.logger.Error("fetch games failed", "sport", s, "error", err)
			continue
		}
		if keyword != "" {
			for _, g := range findGamesByKeyword(games, keyword) {
				matched = append(matched, match{g, s})
			}
		} else if len(games) > 0 {
			matched = append(matched, match{games[0], s})
			break
		}
	}

	if len(matched) == 0 {
		if keyword != "" {
			return fmt.Sprintf("❌ 找不到與「%s」相關的賽事。\n\n請確認隊名是否正確，或嘗試其他關鍵字。", keyword)
		}
		return "❌ 今日暫無賽事資料。"
	}

	if len(matched) > 3 {
		matched = matched[:3]
	}
	results := make([]string, 0, len(matched))
	for _, m := range matched {
		results = append(results, analyzer.FormatAnalysis(m.game, m.sport))
	}
	return strings.Join(results, "\n\n")
}

func findGamesByKeyword(games []*models.Game, keyword string) []*models.Game {
	keyword = strings.ToLower(keyword)
	var matched []*models.Game
	for _, g := range games {
		if strings.Contains(strings.ToLower(g.Home), keyword) ||
			strings.Contains(strings.ToLower(g.Away), keyword) {
			matched = append(matched, g)
		}
	}
	return matched
}

func (b *Bot) handleQueryUID(ctx context.Context, userID int64) string {
	role := "👤 一般用戶"
	if b.members.IsAdmin(ctx, userID) {
		role = "👑 管理員"
	}
	member := b.members.MemberExpiryText(ctx, userID)
	if member == "" {
		member = "⚠️ 未開通"
	}
	return fmt.Sprintf(
		"╭────────────────╮\n│  🔑 用戶資訊            │\n╰────────────────╯\n\n▸ 身份：%s\n▸ 會員：%s\n\n──────────────────\nUID：\n%d",
		role, member, userID)
}

func (b *Bot) handleSetAdmin(ctx context.Context, operator int64, target string) string {
	if !b.members.IsAdmin(ctx, operator) {
		return adminOnlyMessage
	}
	if target == "" {
		return "╭────────────────╮\n│  👑 設為管理員         │\n╰────────────────╯\n\n請提供目標用戶 UID\n\n▸ 格式：設為管理員 <UID>"
	}
	targetID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return "❌ UID 格式錯誤，請輸入數字 UID。"
	}
	if b.members.IsAdmin(ctx, targetID) {
		return fmt.Sprintf("⚠️ %d 已經是管理員。", targetID)
	}
	if err := b.members.AddAdmin(ctx, targetID); err != nil {
		b.logger.Error("add admin failed", "target", targetID, "error", err)
		return systemBusyMessage
	}
	return fmt.Sprintf("╭────────────────╮\n│  ✅ 操作成功            │\n╰────────────────╯\n\n已將以下用戶設為管理員：\n%d", targetID)
}

func (b *Bot) handleRemoveAdmin(ctx context.Context, operator int64, target string) string {
	if !b.members.IsAdmin(ctx, operator) {
		return adminOnlyMessage
	}
	if target == "" {
		return "❌ 請提供目標用戶 UID。\n\n▸ 格式：移除管理員 <UID>"
	}
	targetID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return "❌ UID 格式錯誤，請輸入數字 UID。"
	}
	if !b.members.IsAdmin(ctx, targetID) {
		return fmt.Sprintf("⚠️ %d 不是管理員。", targetID)
	}
	if err := b.members.RemoveAdmin(ctx, targetID); err != nil {
		b.logger.Error("remove admin failed", "target", targetID, "error", err)
		return systemBusyMessage
	}
	return fmt.Sprintf("╭────────────────╮\n│  ✅ 操作成功            │\n╰────────────────╯\n\n已移除以下用戶的管理員資格：\n%d", targetID)
}

func (b *Bot) handleGenCode(ctx context.Context, operator int64, durationLabel string) string {
	if !b.members.IsAdmin(ctx, operator) {
		return adminOnlyMessage
	}
	if durationLabel == "" {
		var options strings.Builder
		for _, label := range membership.DurationLabels {
			options.WriteString("  ▸ " + label + "\n")
		}
		return fmt.Sprintf(
			"╭────────────────╮\n│  🎫 生成序號            │\n╰────────────────╯\n\n請指定有效期限：\n%s\n──────────────────\n範例：生成序號 7天",
			options.String())
	}

	code, err := b.members.GenerateCode(ctx, durationLabel)
	if err != nil {
		return fmt.Sprintf("❌ 無效的期限。\n\n可用選項：%s", strings.Join(membership.DurationLabels, "、"))
	}
	return fmt.Sprintf(
		"╭────────────────╮\n│  ✅ 序號生成成功       │\n╰────────────────╯\n\n▸ 序號\n  %s\n\n▸ 有效期限\n  %s\n\n──────────────────\n用戶輸入以下內容即可開通：\n儲值序號 %s",
		code, durationLabel, code)
}

func (b *Bot) handleCheckExpiry(ctx context.Context, userID int64) string {
	expiry := b.members.MemberExpiryText(ctx, userID)
	if expiry == "" {
		return "╭────────────────╮\n│  📋 會員狀態            │\n╰────────────────╯\n\n⚠️ 尚未開通會員資格\n\n▸ 請輸入「儲值序號 你的序號」\n  來開通或續費會員。"
	}
	adminTag := ""
	if b.members.IsAdmin(ctx, userID) {
		adminTag = "  👑 管理員"
	}
	return fmt.Sprintf("╭────────────────╮\n│  📋 會員狀態%s       │\n╰────────────────╯\n\n%s", adminTag, expiry)
}

func (b *Bot) handleRedeem(ctx context.Context, userID int64, code string) string {
	if code == "" {
		return "╭────────────────╮\n│  💰 儲值序號            │\n╰────────────────╯\n\n請輸入您的儲值序號：\n\n▸ 格式\n  儲值序號 XXXX-XXXX-XXXX\n\n▸ 範例\n  儲值序號 AB12-CD34-EF56"
	}
	ok, msg := b.members.RedeemCode(ctx, userID, code)
	icon := "❌"
	if ok {
		icon = "✅"
	}
	return fmt.Sprintf("╭────────────────╮\n│  %s 儲值序號            │\n╰────────────────╯\n\n%s", icon, msg)
}

func (b *Bot) setDateOffset(userID int64, offset int) {
	b.mu.Lock()
	b.dateOffsets[userID] = offset
	b.mu.Unlock()
}

func (b *Bot) dateOffset(userID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dateOffsets[userID]
}

// dateKey returns the YYYYMMDD fetch key for today plus offset days in
// Taiwan time.
func (b *Bot) dateKey(offset int) string {
	return b.now().In(taipeiTZ).AddDate(0, 0, offset).Format("20060102")
}

// displayDate renders the date as M/D with the Chinese weekday letter.
func (b *Bot) displayDate(offset int) string {
	t := b.now().In(taipeiTZ).AddDate(0, 0, offset)
	return fmt.Sprintf("%d/%d (%s)", int(t.Month()), t.Day(), weekdayNames[int(t.Weekday())])
}

// sendReply delivers the reply, splitting on line boundaries when it
// exceeds the Telegram message limit. The keyboard rides on the final
// chunk.
func (b *Bot) sendReply(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) {
	chunks := splitMessage(text, maxMessageLen)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if i == len(chunks)-1 {
			msg.ReplyMarkup = keyboard
		}
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("send message failed", "chat_id", chatID, "error", err)
			return
		}
	}
}

func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	var builder strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if builder.Len() > 0 && builder.Len()+len(line)+1 > limit {
			chunks = append(chunks, builder.String())
			builder.Reset()
		}
		if builder.Len() > 0 {
			builder.WriteByte('\n')
		}
		builder.WriteString(line)
	}
	if builder.Len() > 0 {
		chunks = append(chunks, builder.String())
	}
	return chunks
}

const mainMenuMessage = "╭────────────────╮\n│  🏆 SPORTIQ              │\n│  體育即時分析平台     │\n╰────────────────╯\n\n👇 請點擊下方按鈕選擇功能"

const adminOnlyMessage = "╭────────────────╮\n│  ⛔ 權限不足            │\n╰────────────────╯\n\n僅管理員可執行此操作。"

const systemBusyMessage = "❌ 系統忙碌中，請稍後再試。"

const memberRequiredMessage = "╭────────────────╮\n│  🔒 權限不足            │\n╰────────────────╯\n\n此功能需要會員資格\n\n▸ 請先儲值序號來開通會員\n  格式：儲值序號 XXXX-XXXX-XXXX\n\n▸ 輸入「查詢到期」可查看會員狀態"

const helpMessage = "╭────────────────╮\n│  🏆 SPORTIQ              │\n│  體育即時分析平台     │\n╰────────────────╯\n\n▸ 查看賽事\n  點擊「🏆 今日賽事」按鈕\n  或輸入「籃球」「棒球」「足球」...\n\n▸ AI 智能分析\n  在賽事列表中點擊比賽按鈕\n  或輸入「分析 隊名」\n\n▸ 查看不同日期\n  點擊「📅 明日賽事」按鈕\n  或輸入「明天 籃球」\n\n──────────────────\n📡 資料來源：playsport.cc"
