package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sportiq/internal/pkg/models"
)

// Analysis is the outcome of the rule engine for one game: a probability
// triple summing to exactly 100, a confidence score and the rationale
// lines in presentation order.
type Analysis struct {
	HomeWin    int
	Draw       int
	AwayWin    int
	Confidence int
	Lines      []string
}

// Suggestion joins the rationale lines the way the chat layer renders them.
func (a Analysis) Suggestion() string {
	return strings.Join(a.Lines, "\n")
}

// Signal weights for the pre-game branch. Each signal that fires nudges
// exactly one accumulator.
const (
	weightSeasonRecord = 8
	weightHotStreak    = 5
	weightColdStreak   = 3
	weightHomeCourt    = 4
	weightRoadSplit    = 3
	weightH2H          = 3
	maxSpreadWeight    = 10
)

// Analyze derives a win-probability narrative for one game. It is a pure
// function of its inputs: identical game and sport always produce an
// identical result.
func Analyze(game *models.Game, sport string) Analysis {
	drawPossible := sport != "basketball"

	homeName := game.Home
	if homeName == "" {
		homeName = "主隊"
	}
	awayName := game.Away
	if awayName == "" {
		awayName = "客隊"
	}

	spread, hasSpread := parseSpread(game.Odds.Spread)

	if game.Status == models.StatusFinished && game.HomeScore != nil && game.AwayScore != nil {
		return analyzeFinished(game, homeName, awayName, spread, hasSpread, drawPossible)
	}
	if game.Status == models.StatusLive {
		return analyzeLive(game, homeName, awayName, drawPossible)
	}
	return analyzeUpcoming(game, homeName, awayName, spread, hasSpread, drawPossible)
}

func parseSpread(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

func analyzeFinished(game *models.Game, homeName, awayName string, spread float64, hasSpread, drawPossible bool) Analysis {
	hs, as := *game.HomeScore, *game.AwayScore
	diff := hs - as
	winner, loser := homeName, awayName
	if diff <= 0 {
		winner, loser = awayName, homeName
	}
	margin := diff
	if margin < 0 {
		margin = -margin
	}

	var desc string
	switch {
	case margin >= 15:
		desc = "大幅領先取得壓倒性勝利"
	case margin >= 8:
		desc = "穩定發揮拉開差距"
	default:
		desc = "雙方纏鬥至終場"
	}

	lines := []string{
		fmt.Sprintf("本場比賽由 %s 以 %d:%d 擊敗 %s，%s。", winner, max(hs, as), min(hs, as), loser, desc),
	}

	if hasSpread {
		fav := homeName
		// Positive spread means the home side gives the points; covering
		// requires strictly beating the line in the line's direction.
		covered := float64(diff) > spread
		if spread < 0 {
			fav = awayName
			covered = float64(diff) < spread
		}
		verdict := "成功過盤"
		if !covered {
			verdict = "未能過盤"
		}
		lines = append(lines, fmt.Sprintf("盤口方面，%s 讓 %s 分，%s。", fav, formatDecimal(math.Abs(spread)), verdict))
	}

	homeWin, awayWin, draw := 70.0, 30.0, 0.0
	if diff <= 0 {
		homeWin = 25
	}
	if drawPossible {
		awayWin = 20
		if diff < 0 {
			awayWin = 60
		}
		draw = 100 - homeWin - awayWin
	} else {
		awayWin = 100 - homeWin
	}

	h, d, a := normalizeTriple(homeWin, draw, awayWin, drawPossible)
	return Analysis{HomeWin: h, Draw: d, AwayWin: a, Confidence: 90, Lines: lines}
}

func analyzeLive(game *models.Game, homeName, awayName string, drawPossible bool) Analysis {
	hs, as := 0, 0
	if game.HomeScore != nil {
		hs = *game.HomeScore
	}
	if game.AwayScore != nil {
		as = *game.AwayScore
	}
	diff := hs - as

	var line string
	switch {
	case diff > 0:
		line = fmt.Sprintf("比賽進行中，%s 以 %d:%d 領先 %d 分，掌握場上主動權。", homeName, hs, as, diff)
	case diff < 0:
		line = fmt.Sprintf("比賽進行中，%s 以 %d:%d 領先 %d 分，客場表現強勢。", awayName, as, hs, -diff)
	default:
		line = fmt.Sprintf("比賽進行中，雙方 %d:%d 戰成平手，比賽膠著。", hs, as)
	}

	homeWin := 48.0
	switch {
	case diff > 0:
		homeWin = 62
	case diff < 0:
		homeWin = 35
	}
	awayWin, draw := 100-homeWin, 0.0
	if drawPossible {
		awayWin = 30
		if diff < 0 {
			awayWin = 55
		}
		draw = 100 - homeWin - awayWin
	}

	h, d, a := normalizeTriple(homeWin, draw, awayWin, drawPossible)
	return Analysis{HomeWin: h, Draw: d, AwayWin: a, Confidence: 55, Lines: []string{line}}
}

func analyzeUpcoming(game *models.Game, homeName, awayName string, spread float64, hasSpread, drawPossible bool) Analysis {
	rec := game.Record

	homeRec := ParseRecord(rec.HomeRecord)
	awayRec := ParseRecord(rec.AwayRecord)
	homeRecent := ParseRecord(rec.HomeRecent)
	awayRecent := ParseRecord(rec.AwayRecent)
	homeAvg := ParseAvgScore(rec.HomeAvg)
	awayAvg := ParseAvgScore(rec.AwayAvg)
	homeHA := ParseRecord(rec.HomeHomeAway)
	awayHA := ParseRecord(rec.AwayHomeAway)
	homeH2H := ParseRecord(rec.HomeH2H)
	awayH2H := ParseRecord(rec.AwayH2H)

	var lines []string
	var homeAdj, awayAdj float64

	// 1. Season record.
	if homeRec != nil && awayRec != nil {
		lines = append(lines, fmt.Sprintf("【整體戰績】%s（%d勝%d敗，勝率 %s%%）vs %s（%d勝%d敗，勝率 %s%%）。",
			homeName, homeRec.Wins, homeRec.Losses, formatPct(homeRec.WinPct),
			awayName, awayRec.Wins, awayRec.Losses, formatPct(awayRec.WinPct)))
		switch {
		case homeRec.WinPct-awayRec.WinPct > 15:
			lines = append(lines, fmt.Sprintf("%s 整體戰績明顯優於對手，具備較強的陣容深度與穩定性。", homeName))
			homeAdj += weightSeasonRecord
		case awayRec.WinPct-homeRec.WinPct > 15:
			lines = append(lines, fmt.Sprintf("%s 本季表現更為出色，整體實力佔優。", awayName))
			awayAdj += weightSeasonRecord
		default:
			lines = append(lines, "兩隊本季戰績相近，實力在伯仲之間。")
		}
	}

	// 2. Recent form (last ten games).
	if homeRecent != nil && awayRecent != nil {
		lines = append(lines, fmt.Sprintf("【近期狀態】%s 近十場 %d勝%d敗；%s 近十場 %d勝%d敗。",
			homeName, homeRecent.Wins, homeRecent.Losses, awayName, awayRecent.Wins, awayRecent.Losses))
		if homeRecent.Wins >= 7 {
			lines = append(lines, fmt.Sprintf("%s 近期手感火燙，處於連勝節奏中。", homeName))
			homeAdj += weightHotStreak
		} else if homeRecent.Wins <= 3 {
			lines = append(lines, fmt.Sprintf("%s 近況低迷，需留意狀態調整。", homeName))
			awayAdj += weightColdStreak
		}
		if awayRecent.Wins >= 7 {
			lines = append(lines, fmt.Sprintf("%s 近期狀態極佳，客場作戰信心充足。", awayName))
			awayAdj += weightHotStreak
		} else if awayRecent.Wins <= 3 {
			lines = append(lines, fmt.Sprintf("%s 近期表現不穩，客場挑戰難度加大。", awayName))
			homeAdj += weightColdStreak
		}
	}

	// 3. Home/away split.
	if homeHA != nil && awayHA != nil {
		lines = append(lines, fmt.Sprintf("【主客場】%s 主場 %d勝%d敗；%s 客場 %d勝%d敗。",
			homeName, homeHA.Wins, homeHA.Losses, awayName, awayHA.Wins, awayHA.Losses))
		if homeHA.WinPct > 60 {
			lines = append(lines, fmt.Sprintf("%s 主場勝率突出，主場龍優勢不容忽視。", homeName))
			homeAdj += weightHomeCourt
		}
		if awayHA.WinPct < 40 {
			lines = append(lines, fmt.Sprintf("%s 客場戰績不佳，客場蟲劣勢明顯。", awayName))
			homeAdj += weightRoadSplit
		} else if awayHA.WinPct > 55 {
			lines = append(lines, fmt.Sprintf("%s 客場表現穩健，具備客場搶分能力。", awayName))
			awayAdj += weightRoadSplit
		}
	}

	// 4. Scoring averages.
	if homeAvg != nil && awayAvg != nil {
		lines = append(lines, fmt.Sprintf("【攻防數據】%s 場均得 %s 失 %s 分；%s 場均得 %s 失 %s 分。",
			homeName, formatDecimal(homeAvg.Scored), formatDecimal(homeAvg.Allowed),
			awayName, formatDecimal(awayAvg.Scored), formatDecimal(awayAvg.Allowed)))
		homeNet := homeAvg.Scored - homeAvg.Allowed
		awayNet := awayAvg.Scored - awayAvg.Allowed
		switch {
		case homeNet > 5 && awayNet < -3:
			lines = append(lines, fmt.Sprintf("%s 攻守兩端均佔優勢，淨勝分差距顯著。", homeName))
		case awayNet > 5 && homeNet < -3:
			lines = append(lines, fmt.Sprintf("%s 攻防效率更高，數據面具有明顯優勢。", awayName))
		case homeAvg.Scored > awayAvg.Scored+5:
			lines = append(lines, fmt.Sprintf("%s 進攻火力更強，場均得分領先對手。", homeName))
		case awayAvg.Scored > homeAvg.Scored+5:
			lines = append(lines, fmt.Sprintf("%s 進攻端更具威脅，得分能力佔優。", awayName))
		}

		if !drawPossible {
			expectedTotal := (homeAvg.Scored + awayAvg.Scored + homeAvg.Allowed + awayAvg.Allowed) / 2
			if expectedTotal > 225 {
				lines = append(lines, fmt.Sprintf("預計本場節奏偏快，大分機率較高（預估總分 %.0f 分上下）。", expectedTotal))
			} else if expectedTotal < 210 {
				lines = append(lines, fmt.Sprintf("雙方防守強度較高，小分值得關注（預估總分 %.0f 分上下）。", expectedTotal))
			}
		}
	}

	// 5. Point spread.
	if hasSpread {
		fav, dog := homeName, awayName
		if spread < 0 {
			fav, dog = awayName, homeName
		}
		absSpread := math.Abs(spread)
		lineText := fmt.Sprintf("【盤口解讀】本場開出 %s 讓 %s 分，", fav, formatDecimal(absSpread))
		switch {
		case absSpread >= 10:
			lineText += fmt.Sprintf("讓分幅度較大，盤口看好 %s 大勝。建議留意 %s 是否具備爆冷實力。", fav, dog)
		case absSpread >= 5:
			lineText += fmt.Sprintf("屬於中等讓分，%s 被看好但需穩定發揮方能過盤。", fav)
		default:
			lineText += "讓分較小，反映兩隊實力差距不大，比賽懸念較高。"
		}
		lines = append(lines, lineText)

		contribution := math.Min(maxSpreadWeight, absSpread)
		if spread > 0 {
			homeAdj += contribution
		} else {
			awayAdj += contribution
		}
	}

	// 6. Head-to-head.
	if homeH2H != nil && awayH2H != nil {
		lines = append(lines, fmt.Sprintf("【歷史交鋒】%s %d勝%d敗 vs %s %d勝%d敗。",
			homeName, homeH2H.Wins, homeH2H.Losses, awayName, awayH2H.Wins, awayH2H.Losses))
		if homeH2H.Wins > awayH2H.Wins+2 {
			lines = append(lines, fmt.Sprintf("%s 在歷史對戰中佔據心理優勢。", homeName))
			homeAdj += weightH2H
		} else if awayH2H.Wins > homeH2H.Wins+2 {
			lines = append(lines, fmt.Sprintf("%s 在交手紀錄中更勝一籌。", awayName))
			awayAdj += weightH2H
		}
	}

	// No signal fired at all: generic home-advantage rationale and the
	// untouched baseline split.
	if len(lines) == 0 {
		lines = []string{
			fmt.Sprintf("本場比賽 %s（主）迎戰 %s（客），主隊擁有主場優勢。", homeName, awayName),
			"建議關注兩隊近期傷病動態與輪休情況，作為投注參考依據。",
		}
		if drawPossible {
			return Analysis{HomeWin: 45, Draw: 25, AwayWin: 30, Confidence: 50, Lines: lines}
		}
		return Analysis{HomeWin: 45, Draw: 0, AwayWin: 55, Confidence: 50, Lines: lines}
	}

	// 7. Closing summary.
	totalAdj := homeAdj - awayAdj
	switch {
	case totalAdj > 10:
		lines = append(lines, fmt.Sprintf("📌 綜合評估：%s 各項數據全面佔優，本場值得看好主勝方向。", homeName))
	case totalAdj > 4:
		lines = append(lines, fmt.Sprintf("📌 綜合評估：%s 略佔優勢，可適度關注主勝，但需注意客隊反撲能力。", homeName))
	case totalAdj < -10:
		lines = append(lines, fmt.Sprintf("📌 綜合評估：%s 綜合實力更強，客勝方向值得重點關注。", awayName))
	case totalAdj < -4:
		lines = append(lines, fmt.Sprintf("📌 綜合評估：%s 稍佔上風，客場搶分機會較大。", awayName))
	default:
		lines = append(lines, "📌 綜合評估：兩隊勢均力敵，比賽充滿變數，建議謹慎操作或觀望。")
	}

	homeWin := clampFloat(45+homeAdj-awayAdj/2, 15, 80)
	awayWin := clampFloat(45+awayAdj-homeAdj/2, 15, 80)

	var h, d, a int
	if drawPossible {
		draw := math.Max(5, 100-homeWin-awayWin)
		h, d, a = normalizeTriple(homeWin, draw, awayWin, true)
	} else {
		h, d, a = normalizeTriple(homeWin, 0, awayWin, false)
	}

	confidence := clampInt(int(math.Round(50+math.Abs(totalAdj)*2)), 40, 85)

	return Analysis{HomeWin: h, Draw: d, AwayWin: a, Confidence: confidence, Lines: lines}
}

// formatPct renders a one-decimal win percentage ("54.5", "50.0").
func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatDecimal renders a site decimal the way the source page shows it:
// whole numbers keep one decimal ("6.0"), everything else is minimal.
func formatDecimal(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
