package models

// MatchStatus is the lifecycle phase of a game within one fetch cycle.
// Transitions only move forward (upcoming -> live -> finished); the
// reconciler never rolls a status back.
type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusLive      MatchStatus = "live"
	StatusFinished  MatchStatus = "finished"
	StatusPostponed MatchStatus = "postponed"
)

// StatusOrder returns the display priority of a status (lower sorts first).
// Unknown statuses sink to the end.
func StatusOrder(s MatchStatus) int {
	switch s {
	case StatusLive:
		return 0
	case StatusUpcoming:
		return 1
	case StatusPostponed:
		return 2
	case StatusFinished:
		return 3
	default:
		return 9
	}
}

// UnknownTeam is the placeholder for a side whose name could not be
// recovered from any source. Team names are never empty strings.
const UnknownTeam = "—"

// RecordSet holds the pre-game context fragments for one game.
// Every field is raw site text, parsed lazily by the analyzer;
// an empty string means the fragment was absent from the document.
type RecordSet struct {
	AwayRecord   string `json:"awayRecord,omitempty"`
	HomeRecord   string `json:"homeRecord,omitempty"`
	AwayRecent   string `json:"awayRecent,omitempty"`
	HomeRecent   string `json:"homeRecent,omitempty"`
	AwayH2H      string `json:"awayH2H,omitempty"`
	HomeH2H      string `json:"homeH2H,omitempty"`
	AwayAvg      string `json:"awayAvg,omitempty"`
	HomeAvg      string `json:"homeAvg,omitempty"`
	AwayHomeAway string `json:"awayHomeAway,omitempty"`
	HomeHomeAway string `json:"homeHomeAway,omitempty"`
}

// Odds holds the posted point-spread line. Spread is the raw signed
// decimal text (positive favors the home side); empty means no line.
type Odds struct {
	Spread     string `json:"spread,omitempty"`
	SpreadOdds string `json:"spreadOdds,omitempty"`
}

// PeriodScores holds per-period score sequences split by side.
type PeriodScores struct {
	Away []int `json:"away"`
	Home []int `json:"home"`
}

// Game is the unit the whole pipeline operates on. It is built once by
// the extractor, enriched once by the reconciler, and immutable after that.
type Game struct {
	// ID is the composite identity: <leagueId>_<date>_<siteGameId>.
	ID string `json:"id"`
	// GameID is the site-local game id (join key for the live view).
	GameID string `json:"gameId"`
	// OID is the site's opaque battle identifier from the game container.
	OID string `json:"oid"`

	League   string `json:"league"`
	LeagueID string `json:"leagueId"`

	Away string `json:"away"`
	Home string `json:"home"`

	// Scores are nil until the live view supplies them; both nil means
	// the game has not started.
	AwayScore *int `json:"awayScore"`
	HomeScore *int `json:"homeScore"`

	// Date is the ISO calendar date (YYYY-MM-DD); Time is free display text.
	Date string `json:"date"`
	Time string `json:"time"`

	Status MatchStatus `json:"status"`

	Record RecordSet `json:"record"`
	Odds   Odds      `json:"odds"`

	TeamCodes string `json:"teamCodes,omitempty"`

	PeriodScores *PeriodScores `json:"quarterScores,omitempty"`
}

// IntPtr returns a pointer to v. Convenience for score fields.
func IntPtr(v int) *int {
	return &v
}

// League describes one configured league of a sport.
type League struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}
