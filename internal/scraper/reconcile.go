package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sportiq/internal/pkg/models"
)

// maxPeriods bounds the per-period score probe: regulation quarters or
// innings plus overtime slots.
const maxPeriods = 8

// ReconcileScores reads the live-score view of the same league/date and
// merges score state into the already-extracted games in place. Merging
// only ever adds information: a value found in the live view overwrites
// the stale one, a value missing from the live view never clears what
// the pre-game pass produced, and a finished status is never rolled
// back.
func ReconcileScores(rawMarkup string, games []*models.Game) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawMarkup))
	if err != nil {
		return fmt.Errorf("parse live document: %w", err)
	}

	byGameID := make(map[string]*models.Game, len(games))
	for _, g := range games {
		byGameID[g.GameID] = g
	}

	doc.Find("[id^='outer-gamebox-']").Each(func(_ int, box *goquery.Selection) {
		id, ok := box.Attr("id")
		if !ok {
			return
		}
		m := gameboxIDRe.FindStringSubmatch(id)
		if m == nil {
			return
		}
		game, ok := byGameID[m[1]]
		if !ok {
			return
		}
		mergeLiveBox(doc, box, game)
	})

	return nil
}

func mergeLiveBox(doc *goquery.Document, box *goquery.Selection, game *models.Game) {
	gid := game.GameID

	awayScore := scoreMarker(doc, gid+"_asr_big", gid+"_asr")
	homeScore := scoreMarker(doc, gid+"_hsr_big", gid+"_hsr")
	if awayScore != nil {
		game.AwayScore = awayScore
	}
	if homeScore != nil {
		game.HomeScore = homeScore
	}

	// Status flips only on a complete score pair, and only forward.
	if awayScore != nil && homeScore != nil {
		if box.Find(".gamebox-notend").Length() > 0 || box.HasClass("gamebox-notend") {
			game.Status = models.StatusLive
		} else {
			game.Status = models.StatusFinished
		}
	}

	if periods := periodScores(doc, gid); periods != nil {
		game.PeriodScores = periods
	}
}

// scoreMarker resolves one side's running total through its marker id
// chain. The marker must hold bare digits; anything else means the slot
// is empty or decorated and the score is treated as absent.
func scoreMarker(doc *goquery.Document, ids ...string) *int {
	for _, id := range ids {
		sel := doc.Find("#" + id)
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.First().Text())
		if !digitsRe.MatchString(text) {
			continue
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			continue
		}
		return models.IntPtr(n)
	}
	return nil
}

// periodScores probes the per-period marker slots for both sides. The
// two sides may have unequal counts late in a period; the collection is
// kept only when at least one period resolved.
func periodScores(doc *goquery.Document, gid string) *models.PeriodScores {
	var ps models.PeriodScores
	for q := 1; q <= maxPeriods; q++ {
		if v := scoreMarker(doc, fmt.Sprintf("%s_as%d", gid, q), fmt.Sprintf("%s_a%d", gid, q)); v != nil {
			ps.Away = append(ps.Away, *v)
		}
		if v := scoreMarker(doc, fmt.Sprintf("%s_hs%d", gid, q), fmt.Sprintf("%s_h%d", gid, q)); v != nil {
			ps.Home = append(ps.Home, *v)
		}
	}
	if len(ps.Away) == 0 && len(ps.Home) == 0 {
		return nil
	}
	return &ps
}
