package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"sportiq/internal/pkg/models"
)

var (
	gameboxIDRe = regexp.MustCompile(`^outer-gamebox-(\d+)$`)
	vsSplitRe   = regexp.MustCompile(`\s*vs\s*`)
	matchTimeRe = regexp.MustCompile(`比賽時間[\s\S]*?(\d{1,2}:\d{2})`)
	digitsRe    = regexp.MustCompile(`^\d+$`)
)

// statField locates one labeled record row inside the preview block and
// stores its left/right (away/home) pair. Rows are independently
// optional: a missing label just leaves both fields absent.
type statField struct {
	label  string
	assign func(rec *models.RecordSet, left, right string)
}

var statFields = []statField{
	{"戰績", func(r *models.RecordSet, l, h string) { r.AwayRecord, r.HomeRecord = l, h }},
	{"近十場", func(r *models.RecordSet, l, h string) { r.AwayRecent, r.HomeRecent = l, h }},
	{"對戰紀錄", func(r *models.RecordSet, l, h string) { r.AwayH2H, r.HomeH2H = l, h }},
	{"平均得 / 失分", func(r *models.RecordSet, l, h string) { r.AwayAvg, r.HomeAvg = l, h }},
	{"主 / 客戰績", func(r *models.RecordSet, l, h string) { r.AwayHomeAway, r.HomeHomeAway = l, h }},
}

type selectOption struct {
	value string
	away  string
	home  string
}

// ExtractGames turns the pre-game view markup of one league/date into
// Game entities. Every field extraction is independently optional; a
// game is emitted as long as at least one side's name was recoverable
// through any fallback source. A failed structured pass falls back to
// one minimal game per drop-down option.
func ExtractGames(rawMarkup, leagueID, gamedate, leagueName string) ([]*models.Game, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawMarkup))
	if err != nil {
		return nil, fmt.Errorf("parse pre-game document: %w", err)
	}

	dateStr := isoDate(gamedate)
	options := parseSelectOptions(doc)

	var games []*models.Game
	doc.Find("[id^='outer-gamebox-']").Each(func(_ int, box *goquery.Selection) {
		id, ok := box.Attr("id")
		if !ok {
			return
		}
		m := gameboxIDRe.FindStringSubmatch(id)
		if m == nil {
			return
		}
		oid, ok := box.Attr("data-oid")
		if !ok {
			return
		}
		if g := extractGame(doc, box, m[1], oid, leagueID, dateStr, leagueName, options); g != nil {
			games = append(games, g)
		}
	})

	// Structured path produced nothing: one minimal game per option.
	if len(games) == 0 {
		for idx, opt := range options {
			games = append(games, &models.Game{
				ID:       fmt.Sprintf("%s_%s_sel_%d", leagueID, gamedate, idx),
				GameID:   fmt.Sprintf("sel_%d", idx),
				OID:      opt.value,
				League:   leagueName,
				LeagueID: leagueID,
				Away:     opt.away,
				Home:     opt.home,
				Date:     dateStr,
				Status:   models.StatusUpcoming,
			})
		}
	}

	return games, nil
}

func extractGame(doc *goquery.Document, box *goquery.Selection, gameID, oid, leagueID, dateStr, leagueName string, options []selectOption) *models.Game {
	var away, home, timeStr string
	var record models.RecordSet
	var odds models.Odds

	teamCodes := ""
	if parts := strings.Split(oid, "_"); len(parts) > 2 {
		teamCodes = parts[2]
	}

	// Primary source: the structured preview block.
	preview := doc.Find("#gamebox-preview-" + gameID)
	if preview.Length() > 0 {
		away = strings.TrimSpace(preview.Find(".team_left a").First().Text())
		home = strings.TrimSpace(preview.Find(".team_right a").First().Text())
		timeStr = ownText(preview.Find(".team_cinter").First())

		for _, field := range statFields {
			if left, right, ok := findStatPair(preview, field.label); ok {
				field.assign(&record, left, right)
			}
		}
	}

	// Odds and name/time fallbacks live on the outer game container.
	if v, ok := box.Attr("data-aheadprice"); ok {
		odds.Spread = v
	}
	if v, ok := box.Attr("data-aheadodds"); ok {
		odds.SpreadOdds = v
	}
	if home == "" {
		if v, ok := box.Attr("data-nameh"); ok {
			home = v
		}
	}
	if away == "" {
		if v, ok := box.Attr("data-namea"); ok {
			away = v
		}
	}
	if timeStr == "" {
		if m := matchTimeRe.FindStringSubmatch(box.Text()); m != nil {
			timeStr = m[1]
		}
	}

	// Last resort for names: the drop-down option with the same oid.
	if away == "" || home == "" {
		for _, opt := range options {
			if opt.value == oid {
				if away == "" {
					away = opt.away
				}
				if home == "" {
					home = opt.home
				}
				break
			}
		}
	}

	// Neither side recoverable: the game is not emitted at all.
	if away == "" && home == "" {
		return nil
	}
	if away == "" {
		away = models.UnknownTeam
	}
	if home == "" {
		home = models.UnknownTeam
	}

	return &models.Game{
		ID:        fmt.Sprintf("%s_%s_%s", leagueID, strings.ReplaceAll(dateStr, "-", ""), gameID),
		GameID:    gameID,
		OID:       oid,
		League:    leagueName,
		LeagueID:  leagueID,
		Away:      away,
		Home:      home,
		Date:      dateStr,
		Time:      timeStr,
		Status:    models.StatusUpcoming,
		Record:    record,
		Odds:      odds,
		TeamCodes: teamCodes,
	}
}

// parseSelectOptions collects every "A vs B" drop-down option on the
// page, keyed by its battle identifier.
func parseSelectOptions(doc *goquery.Document) []selectOption {
	var options []selectOption
	doc.Find("option").Each(func(_ int, opt *goquery.Selection) {
		val, _ := opt.Attr("value")
		text := strings.TrimSpace(opt.Text())
		if val == "" || val == "0" || !strings.Contains(text, "vs") {
			return
		}
		parts := vsSplitRe.Split(text, -1)
		if len(parts) != 2 {
			return
		}
		options = append(options, selectOption{
			value: val,
			away:  strings.TrimSpace(parts[0]),
			home:  strings.TrimSpace(parts[1]),
		})
	})
	return options
}

// findStatPair locates the label cell of one record row and returns the
// cleaned away/home texts of its value cells.
func findStatPair(preview *goquery.Selection, label string) (left, right string, ok bool) {
	preview.Find(".datd_c").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if !strings.Contains(normalizeSpace(cell.Text()), label) {
			return true
		}
		row := cell.Closest("tr")
		scope := row
		if scope.Find(".datd_l").Length() == 0 {
			scope = row.NextAll()
		}
		l := scope.Find(".datd_l").First()
		r := scope.Find(".datd_r").First()
		if l.Length() == 0 || r.Length() == 0 {
			return true
		}
		left = cleanStatText(l.Text())
		right = cleanStatText(r.Text())
		ok = true
		return false
	})
	return left, right, ok
}

func cleanStatText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "詳細比分", ""))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ownText returns the element's direct text content, ignoring child
// elements. The preview center slot holds the schedule time as a bare
// text node next to markup.
func ownText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	for node := sel.Get(0).FirstChild; node != nil; node = node.NextSibling {
		if node.Type == html.TextNode {
			if text := strings.TrimSpace(node.Data); text != "" {
				return text
			}
		}
	}
	return ""
}

// isoDate converts a YYYYMMDD date key into YYYY-MM-DD.
func isoDate(gamedate string) string {
	if len(gamedate) != 8 {
		return gamedate
	}
	return gamedate[:4] + "-" + gamedate[4:6] + "-" + gamedate[6:8]
}
