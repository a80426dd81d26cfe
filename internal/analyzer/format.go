package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sportiq/internal/pkg/models"
)

const separator = "━━━━━━━━━━━━━━━"

// barWidth is the character width of the probability bar chart.
const barWidth = 10

var statusLabels = map[models.MatchStatus]string{
	models.StatusLive:      "🔴 進行中",
	models.StatusUpcoming:  "⏳ 未開始",
	models.StatusFinished:  "✅ 已結束",
	models.StatusPostponed: "⚠️ 延期",
}

var sportEmoji = map[string]string{
	"basketball": "🏀",
	"baseball":   "⚾",
	"soccer":     "⚽",
	"hockey":     "🏒",
	"tennis":     "🎾",
}

// SportEmoji returns the icon for a sport key, with a trophy fallback.
func SportEmoji(sport string) string {
	if e, ok := sportEmoji[sport]; ok {
		return e
	}
	return "🏆"
}

// FormatGameLine renders the one-game block of the list view: status,
// teams, score-or-VS and the derived betting recommendation.
func FormatGameLine(game *models.Game, sport string) string {
	status, ok := statusLabels[game.Status]
	if !ok {
		status = "未知"
	}
	home, away := game.Home, game.Away
	if home == "" {
		home = models.UnknownTeam
	}
	if away == "" {
		away = models.UnknownTeam
	}

	score := "VS"
	if game.HomeScore != nil && game.AwayScore != nil {
		score = fmt.Sprintf("%d : %d", *game.HomeScore, *game.AwayScore)
	}

	spread, hasSpread := parseSpread(game.Odds.Spread)
	var spreadText, spreadFav string
	if hasSpread {
		spreadFav = home
		if spread < 0 {
			spreadFav = away
		}
		spreadText = fmt.Sprintf("📌 推薦：%s 讓%s", spreadFav, formatDecimal(math.Abs(spread)))
	}

	// Mark the line when a finished game landed on the favored side.
	winMark := ""
	if game.Status == models.StatusFinished && game.HomeScore != nil && game.AwayScore != nil && spreadFav != "" {
		winner := home
		if *game.HomeScore <= *game.AwayScore {
			winner = away
		}
		if winner == spreadFav {
			winMark = " 🎯✔"
		}
	}

	analysis := Analyze(game, sport)
	recommend := recommendation(analysis, home, away, spread, hasSpread)

	lines := []string{
		separator,
		fmt.Sprintf("%s  %s%s", status, game.Time, winMark),
		"🏠 " + home,
		"🚌 " + away,
		"📊 " + score,
		recommend,
	}
	if spreadText != "" {
		lines = append(lines, spreadText)
	}
	return strings.Join(lines, "\n")
}

// recommendation picks one bet direction from the probability spread:
// a wide edge backs the favorite against the line, a moderate edge backs
// the favorite outright, otherwise the underdog takes the points, and
// with no line at all the total is picked by confidence.
func recommendation(analysis Analysis, home, away string, spread float64, hasSpread bool) string {
	diff := analysis.HomeWin - analysis.AwayWin
	if diff < 0 {
		diff = -diff
	}
	fav := home
	if analysis.HomeWin < analysis.AwayWin {
		fav = away
	}

	switch {
	case diff > 20:
		return fmt.Sprintf("🔮 推薦：%s 讓分", fav)
	case diff > 10:
		return fmt.Sprintf("🔮 推薦：%s 獨贏", fav)
	case hasSpread:
		dog := home
		if spread > 0 {
			dog = away
		}
		return fmt.Sprintf("🔮 推薦：%s 受讓", dog)
	case analysis.Confidence >= 55:
		return "🔮 推薦：推大分"
	default:
		return "🔮 推薦：推小分"
	}
}

// FormatAnalysis renders the full single-game analysis view with the
// probability bar chart and the rationale lines verbatim.
func FormatAnalysis(game *models.Game, sport string) string {
	analysis := Analyze(game, sport)
	home, away := game.Home, game.Away
	if home == "" {
		home = models.UnknownTeam
	}
	if away == "" {
		away = models.UnknownTeam
	}

	lines := []string{
		"⚡ 賽事分析",
		separator,
		"🏠 " + home,
		"🚌 " + away,
		"",
		"📈 勝率預測",
		fmt.Sprintf("主 %s %d%%", probabilityBar(analysis.HomeWin), analysis.HomeWin),
	}

	if sport != "basketball" {
		lines = append(lines, fmt.Sprintf("平 %s %d%%", probabilityBar(analysis.Draw), analysis.Draw))
	}

	lines = append(lines,
		fmt.Sprintf("客 %s %d%%", probabilityBar(analysis.AwayWin), analysis.AwayWin),
		"",
		fmt.Sprintf("🎯 信心指數：%d%%", analysis.Confidence),
	)

	if len(analysis.Lines) > 0 {
		lines = append(lines, "", separator, "📝 分析建議")
		for _, l := range analysis.Lines {
			if s := strings.TrimSpace(l); s != "" {
				lines = append(lines, s)
			}
		}
	}

	return strings.Join(lines, "\n")
}

func probabilityBar(pct int) string {
	n := int(math.Round(float64(pct) / 100 * barWidth))
	return strings.Repeat("█", n)
}

// FormatDigest renders the multi-league digest: games grouped under
// league headers in input order, with a trailing call to action.
func FormatDigest(games []*models.Game, sport, dateStr string) string {
	if len(games) == 0 {
		return fmt.Sprintf("📅 %s\n%s\n目前沒有賽事資料，請稍後再試。", dateStr, separator)
	}

	lines := []string{
		SportEmoji(sport) + " SPORTIQ 賽事",
		separator,
	}
	if dateStr != "" {
		lines = append(lines, "📅 "+dateStr)
	}
	lines = append(lines, "📊 共 "+strconv.Itoa(len(games))+" 場賽事", "")

	var leagueOrder []string
	grouped := make(map[string][]*models.Game)
	for _, g := range games {
		league := g.League
		if league == "" {
			league = "未知"
		}
		if _, seen := grouped[league]; !seen {
			leagueOrder = append(leagueOrder, league)
		}
		grouped[league] = append(grouped[league], g)
	}

	for _, league := range leagueOrder {
		leagueGames := grouped[league]
		lines = append(lines, fmt.Sprintf("🏷 %s【%d 場】", league, len(leagueGames)))
		for _, g := range leagueGames {
			lines = append(lines, FormatGameLine(g, sport))
		}
		lines = append(lines, "")
	}

	if len(games) > 11 {
		lines = append(lines, "👇 點擊按鈕或輸入「分析 隊名」查看詳細分析")
	} else {
		lines = append(lines, "👇 點擊下方按鈕查看詳細分析")
	}
	return strings.Join(lines, "\n")
}
