package analyzer

import (
	"reflect"
	"strings"
	"testing"

	"sportiq/internal/pkg/models"
)

func strongHomeGame() *models.Game {
	return &models.Game{
		Home:   "湖人",
		Away:   "活塞",
		Status: models.StatusUpcoming,
		Record: models.RecordSet{
			HomeRecord:   "40勝20敗",
			AwayRecord:   "25勝35敗",
			HomeRecent:   "8勝2敗",
			AwayRecent:   "3勝7敗",
			HomeHomeAway: "20勝10敗",
			AwayHomeAway: "客10勝20敗",
			HomeAvg:      "115.2 / 105.1",
			AwayAvg:      "108.0 / 112.3",
			HomeH2H:      "4勝1敗",
			AwayH2H:      "1勝4敗",
		},
		Odds: models.Odds{Spread: "6.5"},
	}
}

func TestAnalyzeUpcomingStrongHome(t *testing.T) {
	got := Analyze(strongHomeGame(), "basketball")

	// Every home signal fires: 8+5+3+4+3+6.5+3 = 32.5 toward home.
	if got.HomeWin != 73 || got.AwayWin != 27 || got.Draw != 0 {
		t.Errorf("probabilities = %d/%d/%d, want 73/0/27", got.HomeWin, got.Draw, got.AwayWin)
	}
	if got.Confidence != 85 {
		t.Errorf("confidence = %d, want 85", got.Confidence)
	}

	suggestion := got.Suggestion()
	for _, fragment := range []string{
		"【整體戰績】", "勝率 66.7%",
		"【近期狀態】", "手感火燙",
		"【主客場】", "主場龍", "客場蟲",
		"【攻防數據】", "攻守兩端均佔優勢",
		"【盤口解讀】", "湖人 讓 6.5 分",
		"【歷史交鋒】", "心理優勢",
		"📌 綜合評估：湖人 各項數據全面佔優",
	} {
		if !strings.Contains(suggestion, fragment) {
			t.Errorf("suggestion missing %q\n%s", fragment, suggestion)
		}
	}
}

func TestAnalyzeUpcomingAwayFavoredDrawSport(t *testing.T) {
	game := &models.Game{
		Home:   "水手",
		Away:   "巨人",
		Status: models.StatusUpcoming,
		Record: models.RecordSet{
			HomeRecord: "10勝20敗",
			AwayRecord: "20勝10敗",
		},
		Odds: models.Odds{Spread: "-7.5"},
	}

	got := Analyze(game, "soccer")

	// Away adjustments: season 8 + spread 7.5 = 15.5.
	if got.HomeWin != 36 || got.Draw != 5 || got.AwayWin != 59 {
		t.Errorf("probabilities = %d/%d/%d, want 36/5/59", got.HomeWin, got.Draw, got.AwayWin)
	}
	if got.Confidence != 81 {
		t.Errorf("confidence = %d, want 81", got.Confidence)
	}

	suggestion := got.Suggestion()
	if !strings.Contains(suggestion, "巨人 讓 7.5 分") {
		t.Errorf("expected away side to give the points\n%s", suggestion)
	}
	if !strings.Contains(suggestion, "📌 綜合評估：巨人 綜合實力更強") {
		t.Errorf("expected strong-away summary\n%s", suggestion)
	}
}

func TestAnalyzeUpcomingBalanced(t *testing.T) {
	game := &models.Game{
		Home:   "綠衫軍",
		Away:   "勇士",
		Status: models.StatusUpcoming,
		Record: models.RecordSet{
			HomeRecord: "30勝30敗",
			AwayRecord: "30勝30敗",
			HomeRecent: "5勝5敗",
			AwayRecent: "5勝5敗",
		},
	}

	got := Analyze(game, "basketball")

	if got.HomeWin != 50 || got.AwayWin != 50 || got.Draw != 0 {
		t.Errorf("probabilities = %d/%d/%d, want 50/0/50", got.HomeWin, got.Draw, got.AwayWin)
	}
	if got.Confidence != 50 {
		t.Errorf("confidence = %d, want 50", got.Confidence)
	}
	if !strings.Contains(got.Suggestion(), "兩隊勢均力敵") {
		t.Errorf("expected even-matchup summary\n%s", got.Suggestion())
	}
}

func TestAnalyzeUpcomingNoContext(t *testing.T) {
	game := &models.Game{Home: "湖人", Away: "勇士", Status: models.StatusUpcoming}

	got := Analyze(game, "basketball")
	if got.HomeWin != 45 || got.Draw != 0 || got.AwayWin != 55 {
		t.Errorf("probabilities = %d/%d/%d, want 45/0/55", got.HomeWin, got.Draw, got.AwayWin)
	}
	if got.Confidence != 50 {
		t.Errorf("confidence = %d, want 50", got.Confidence)
	}
	if len(got.Lines) != 2 {
		t.Fatalf("got %d lines, want exactly 2 generic lines:\n%s", len(got.Lines), got.Suggestion())
	}
	if !strings.Contains(got.Lines[0], "主場優勢") {
		t.Errorf("unexpected first line %q", got.Lines[0])
	}

	soccer := Analyze(game, "soccer")
	if soccer.HomeWin != 45 || soccer.Draw != 25 || soccer.AwayWin != 30 {
		t.Errorf("soccer baseline = %d/%d/%d, want 45/25/30", soccer.HomeWin, soccer.Draw, soccer.AwayWin)
	}
}

func TestAnalyzeLive(t *testing.T) {
	tests := []struct {
		name       string
		home, away int
		sport      string
		wantH      int
		wantD      int
		wantA      int
		fragment   string
	}{
		{"home leading basketball", 55, 50, "basketball", 62, 0, 38, "領先 5 分"},
		{"away leading basketball", 48, 60, "basketball", 35, 0, 65, "客場表現強勢"},
		{"tied basketball", 70, 70, "basketball", 48, 0, 52, "戰成平手"},
		{"away leading soccer", 0, 2, "soccer", 35, 10, 55, "領先 2 分"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := &models.Game{
				Home:      "主人",
				Away:      "客人",
				Status:    models.StatusLive,
				HomeScore: models.IntPtr(tt.home),
				AwayScore: models.IntPtr(tt.away),
			}
			got := Analyze(game, tt.sport)
			if got.HomeWin != tt.wantH || got.Draw != tt.wantD || got.AwayWin != tt.wantA {
				t.Errorf("probabilities = %d/%d/%d, want %d/%d/%d",
					got.HomeWin, got.Draw, got.AwayWin, tt.wantH, tt.wantD, tt.wantA)
			}
			if got.Confidence != 55 {
				t.Errorf("confidence = %d, want 55", got.Confidence)
			}
			if !strings.Contains(got.Suggestion(), tt.fragment) {
				t.Errorf("suggestion missing %q\n%s", tt.fragment, got.Suggestion())
			}
		})
	}
}

func TestAnalyzeLiveMissingScores(t *testing.T) {
	game := &models.Game{Home: "主人", Away: "客人", Status: models.StatusLive}
	got := Analyze(game, "basketball")
	if got.Confidence != 55 {
		t.Errorf("confidence = %d, want 55", got.Confidence)
	}
	if !strings.Contains(got.Suggestion(), "0:0") {
		t.Errorf("missing scores should read as 0:0\n%s", got.Suggestion())
	}
}

func TestAnalyzeFinished(t *testing.T) {
	game := &models.Game{
		Home:      "湖人",
		Away:      "勇士",
		Status:    models.StatusFinished,
		HomeScore: models.IntPtr(110),
		AwayScore: models.IntPtr(95),
		Odds:      models.Odds{Spread: "6.5"},
	}

	got := Analyze(game, "basketball")
	if got.HomeWin != 70 || got.AwayWin != 30 || got.Draw != 0 {
		t.Errorf("probabilities = %d/%d/%d, want 70/0/30", got.HomeWin, got.Draw, got.AwayWin)
	}
	if got.Confidence != 90 {
		t.Errorf("confidence = %d, want 90", got.Confidence)
	}
	suggestion := got.Suggestion()
	if !strings.Contains(suggestion, "湖人 以 110:95 擊敗 勇士") {
		t.Errorf("wrong result line\n%s", suggestion)
	}
	if !strings.Contains(suggestion, "壓倒性勝利") {
		t.Errorf("expected blowout descriptor for 15-point margin\n%s", suggestion)
	}
	if !strings.Contains(suggestion, "成功過盤") {
		t.Errorf("15-point win over a 6.5 line should cover\n%s", suggestion)
	}
}

func TestAnalyzeFinishedSpreadNotCovered(t *testing.T) {
	game := &models.Game{
		Home:      "湖人",
		Away:      "勇士",
		Status:    models.StatusFinished,
		HomeScore: models.IntPtr(100),
		AwayScore: models.IntPtr(96),
		Odds:      models.Odds{Spread: "6.5"},
	}
	got := Analyze(game, "basketball")
	if !strings.Contains(got.Suggestion(), "未能過盤") {
		t.Errorf("4-point win over a 6.5 line should not cover\n%s", got.Suggestion())
	}
}

func TestAnalyzeFinishedAwayWinDrawSport(t *testing.T) {
	game := &models.Game{
		Home:      "水手",
		Away:      "巨人",
		Status:    models.StatusFinished,
		HomeScore: models.IntPtr(1),
		AwayScore: models.IntPtr(2),
	}
	got := Analyze(game, "baseball")
	if got.HomeWin != 25 || got.Draw != 15 || got.AwayWin != 60 {
		t.Errorf("probabilities = %d/%d/%d, want 25/15/60", got.HomeWin, got.Draw, got.AwayWin)
	}
	if !strings.Contains(got.Suggestion(), "雙方纏鬥至終場") {
		t.Errorf("expected close-game descriptor\n%s", got.Suggestion())
	}
}

func TestAnalyzeNegativeSpreadCoverage(t *testing.T) {
	// Away gives 3.5 and wins by 5: covered.
	game := &models.Game{
		Home:      "主人",
		Away:      "客人",
		Status:    models.StatusFinished,
		HomeScore: models.IntPtr(100),
		AwayScore: models.IntPtr(105),
		Odds:      models.Odds{Spread: "-3.5"},
	}
	got := Analyze(game, "basketball")
	if !strings.Contains(got.Suggestion(), "客人 讓 3.5 分，成功過盤") {
		t.Errorf("away favorite winning by 5 over 3.5 should cover\n%s", got.Suggestion())
	}
}

func TestAnalyzeUpcomingSeasonRecordOnly(t *testing.T) {
	game := &models.Game{
		Home:   "湖人",
		Away:   "活塞",
		Status: models.StatusUpcoming,
		Record: models.RecordSet{
			HomeRecord: "30勝25敗",
			AwayRecord: "20勝35敗",
		},
	}

	got := Analyze(game, "basketball")
	if got.HomeWin <= 50 {
		t.Errorf("HomeWin = %d, want > 50 with only the season-record edge", got.HomeWin)
	}
	if !strings.Contains(got.Suggestion(), "【整體戰績】") {
		t.Errorf("missing season-record line\n%s", got.Suggestion())
	}
}

func TestAnalyzeFinishedCloseNoSpread(t *testing.T) {
	game := &models.Game{
		Home:      "湖人",
		Away:      "勇士",
		Status:    models.StatusFinished,
		HomeScore: models.IntPtr(102),
		AwayScore: models.IntPtr(98),
	}

	got := Analyze(game, "basketball")
	if got.Confidence != 90 {
		t.Errorf("confidence = %d, want 90", got.Confidence)
	}
	suggestion := got.Suggestion()
	if !strings.Contains(suggestion, "湖人 以 102:98 擊敗 勇士") {
		t.Errorf("wrong result line\n%s", suggestion)
	}
	if !strings.Contains(suggestion, "雙方纏鬥至終場") {
		t.Errorf("4-point margin should use the close-game descriptor\n%s", suggestion)
	}
	if strings.Contains(suggestion, "盤口方面") {
		t.Errorf("no line posted, no coverage sentence expected\n%s", suggestion)
	}
}

func TestAnalyzeFinishedAwayFavoriteMissesLine(t *testing.T) {
	// Away gives 6 but loses by 20: dominant home win, line not covered.
	game := &models.Game{
		Home:      "主人",
		Away:      "客人",
		Status:    models.StatusFinished,
		HomeScore: models.IntPtr(100),
		AwayScore: models.IntPtr(80),
		Odds:      models.Odds{Spread: "-6"},
	}

	got := Analyze(game, "basketball")
	suggestion := got.Suggestion()
	if !strings.Contains(suggestion, "壓倒性勝利") {
		t.Errorf("20-point margin should use the blowout descriptor\n%s", suggestion)
	}
	if !strings.Contains(suggestion, "客人 讓 6.0 分，未能過盤") {
		t.Errorf("away favorite losing by 20 must miss the line\n%s", suggestion)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	game := strongHomeGame()
	first := Analyze(game, "basketball")
	second := Analyze(game, "basketball")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", first, second)
	}
}
