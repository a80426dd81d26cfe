package scraper

import (
	"testing"

	"sportiq/internal/pkg/models"
)

func upcomingGame(gameID string) *models.Game {
	return &models.Game{
		ID:     "3_20250110_" + gameID,
		GameID: gameID,
		Home:   "湖人",
		Away:   "勇士",
		Status: models.StatusUpcoming,
	}
}

func TestReconcileScoresFinished(t *testing.T) {
	markup := `<html><body>
<div id="outer-gamebox-777">
  <span id="777_asr_big">95</span>
  <span id="777_hsr_big">110</span>
  <span id="777_as1">22</span><span id="777_hs1">30</span>
  <span id="777_as2">25</span><span id="777_hs2">28</span>
</div>
</body></html>`

	game := upcomingGame("777")
	if err := ReconcileScores(markup, []*models.Game{game}); err != nil {
		t.Fatalf("ReconcileScores: %v", err)
	}

	if game.AwayScore == nil || *game.AwayScore != 95 {
		t.Errorf("AwayScore = %v, want 95", game.AwayScore)
	}
	if game.HomeScore == nil || *game.HomeScore != 110 {
		t.Errorf("HomeScore = %v, want 110", game.HomeScore)
	}
	if game.Status != models.StatusFinished {
		t.Errorf("Status = %q, want finished", game.Status)
	}
	if game.PeriodScores == nil {
		t.Fatal("PeriodScores = nil, want per-period values")
	}
	if len(game.PeriodScores.Away) != 2 || game.PeriodScores.Away[0] != 22 || game.PeriodScores.Away[1] != 25 {
		t.Errorf("away periods = %v, want [22 25]", game.PeriodScores.Away)
	}
	if len(game.PeriodScores.Home) != 2 || game.PeriodScores.Home[0] != 30 {
		t.Errorf("home periods = %v, want [30 28]", game.PeriodScores.Home)
	}
}

func TestReconcileScoresLiveMarker(t *testing.T) {
	markup := `<html><body>
<div id="outer-gamebox-777" class="gamebox-notend">
  <span id="777_asr_big">50</span>
  <span id="777_hsr_big">55</span>
</div>
</body></html>`

	game := upcomingGame("777")
	if err := ReconcileScores(markup, []*models.Game{game}); err != nil {
		t.Fatalf("ReconcileScores: %v", err)
	}
	if game.Status != models.StatusLive {
		t.Errorf("Status = %q, want live", game.Status)
	}
}

func TestReconcileScoresFallbackMarkers(t *testing.T) {
	markup := `<html><body>
<div id="outer-gamebox-777">
  <span id="777_asr">3</span>
  <span id="777_hsr">1</span>
  <span id="777_a1">1</span><span id="777_h1">0</span>
</div>
</body></html>`

	game := upcomingGame("777")
	if err := ReconcileScores(markup, []*models.Game{game}); err != nil {
		t.Fatalf("ReconcileScores: %v", err)
	}
	if game.AwayScore == nil || *game.AwayScore != 3 {
		t.Errorf("AwayScore = %v, want 3 via fallback marker", game.AwayScore)
	}
	if game.PeriodScores == nil || len(game.PeriodScores.Away) != 1 || game.PeriodScores.Away[0] != 1 {
		t.Errorf("PeriodScores = %+v, want away [1]", game.PeriodScores)
	}
}

func TestReconcileScoresPartialNeverFlipsStatus(t *testing.T) {
	markup := `<html><body>
<div id="outer-gamebox-777">
  <span id="777_asr_big">12</span>
  <span id="777_hsr_big">&nbsp;</span>
</div>
</body></html>`

	game := upcomingGame("777")
	if err := ReconcileScores(markup, []*models.Game{game}); err != nil {
		t.Fatalf("ReconcileScores: %v", err)
	}
	if game.AwayScore == nil || *game.AwayScore != 12 {
		t.Errorf("AwayScore = %v, want 12", game.AwayScore)
	}
	if game.HomeScore != nil {
		t.Errorf("HomeScore = %v, want nil for a non-numeric marker", game.HomeScore)
	}
	if game.Status != models.StatusUpcoming {
		t.Errorf("Status = %q, want upcoming with only one score", game.Status)
	}
}

func TestReconcileScoresNeverClearsValues(t *testing.T) {
	markup := `<html><body>
<div id="outer-gamebox-777"></div>
</body></html>`

	game := upcomingGame("777")
	game.HomeScore = models.IntPtr(100)
	game.AwayScore = models.IntPtr(98)
	game.Status = models.StatusFinished
	game.PeriodScores = &models.PeriodScores{Away: []int{50, 48}, Home: []int{55, 45}}

	if err := ReconcileScores(markup, []*models.Game{game}); err != nil {
		t.Fatalf("ReconcileScores: %v", err)
	}
	if game.HomeScore == nil || *game.HomeScore != 100 {
		t.Errorf("HomeScore = %v, existing value must survive an empty live view", game.HomeScore)
	}
	if game.Status != models.StatusFinished {
		t.Errorf("Status = %q, finished must not be rolled back", game.Status)
	}
	if game.PeriodScores == nil {
		t.Error("PeriodScores cleared by empty live view")
	}
}

func TestReconcileScoresIgnoresUnknownBoxes(t *testing.T) {
	markup := `<html><body>
<div id="outer-gamebox-555">
  <span id="555_asr_big">7</span>
  <span id="555_hsr_big">9</span>
</div>
</body></html>`

	game := upcomingGame("777")
	if err := ReconcileScores(markup, []*models.Game{game}); err != nil {
		t.Fatalf("ReconcileScores: %v", err)
	}
	if game.AwayScore != nil || game.HomeScore != nil {
		t.Errorf("scores for a different game id must not leak: %v/%v", game.AwayScore, game.HomeScore)
	}
}
