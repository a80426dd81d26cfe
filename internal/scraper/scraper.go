package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"sportiq/internal/pkg/cache"
	"sportiq/internal/pkg/config"
	"sportiq/internal/pkg/models"
)

// taipeiTZ is the site's schedule timezone; date keys are derived in it
// regardless of where the process runs.
var taipeiTZ = time.FixedZone("Asia/Taipei", 8*60*60)

// Service fetches, extracts and reconciles the games of every league of
// a sport for one date.
type Service struct {
	fetcher Fetcher
	cache   cache.GameCache
	baseURL string
	leagues map[string][]models.League
	logger  *slog.Logger
}

func NewService(cfg *config.ScraperConfig, fetcher Fetcher, gameCache cache.GameCache, logger *slog.Logger) *Service {
	leagues := cfg.Leagues
	if len(leagues) == 0 {
		leagues = config.DefaultLeagues()
	}
	return &Service{
		fetcher: fetcher,
		cache:   gameCache,
		baseURL: cfg.BaseURL,
		leagues: leagues,
		logger:  logger,
	}
}

// Sports lists the sport keys the service knows leagues for.
func (s *Service) Sports() []string {
	keys := make([]string, 0, len(s.leagues))
	for k := range s.leagues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FetchAll returns all games of a sport for the given YYYYMMDD date,
// sorted live first, then upcoming, postponed and finished, ties broken
// by schedule time. An empty date means today in the site timezone. A
// single failing league is logged and contributes no games; it never
// fails the whole fetch.
func (s *Service) FetchAll(ctx context.Context, sport, date string) ([]*models.Game, error) {
	if date == "" {
		date = time.Now().In(taipeiTZ).Format("20060102")
	}

	if s.cache != nil {
		if games, ok := s.cache.Get(ctx, sport, date); ok {
			return games, nil
		}
	}

	leagues, ok := s.leagues[sport]
	if !ok {
		return nil, fmt.Errorf("unknown sport %q", sport)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		games []*models.Game
	)
	for _, league := range leagues {
		wg.Add(1)
		go func(league models.League) {
			defer wg.Done()
			leagueGames, err := s.fetchLeague(ctx, league, date)
			if err != nil {
				s.logger.Error("league fetch failed",
					"sport", sport,
					"league", league.Name,
					"league_id", league.ID,
					"error", err)
				return
			}
			mu.Lock()
			games = append(games, leagueGames...)
			mu.Unlock()
		}(league)
	}
	wg.Wait()

	sortGames(games)

	if s.cache != nil {
		s.cache.Set(ctx, sport, date, games)
	}
	return games, nil
}

// fetchLeague runs the two-document pipeline for one league: the
// pre-game view carries the schedule and records, the live view carries
// score state. A failed live pass degrades to schedule-only games.
func (s *Service) fetchLeague(ctx context.Context, league models.League, date string) ([]*models.Game, error) {
	preURL := fmt.Sprintf("%s/livescore/%s?gamedate=%s&mode=2", s.baseURL, league.ID, date)
	liveURL := fmt.Sprintf("%s/livescore/%s?gamedate=%s", s.baseURL, league.ID, date)

	preMarkup, err := s.fetcher.Fetch(ctx, preURL)
	if err != nil {
		return nil, fmt.Errorf("fetch pre-game view: %w", err)
	}
	games, err := ExtractGames(preMarkup, league.ID, date, league.Name)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, nil
	}

	liveMarkup, err := s.fetcher.Fetch(ctx, liveURL)
	if err != nil {
		s.logger.Warn("live view fetch failed, keeping schedule data",
			"league", league.Name, "error", err)
		return games, nil
	}
	if err := ReconcileScores(liveMarkup, games); err != nil {
		s.logger.Warn("live view reconcile failed, keeping schedule data",
			"league", league.Name, "error", err)
	}
	return games, nil
}

// sortGames orders games by status priority, in-progress games first
// and finished games last, with lexical schedule time as the tie break.
func sortGames(games []*models.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		oi, oj := models.StatusOrder(games[i].Status), models.StatusOrder(games[j].Status)
		if oi != oj {
			return oi < oj
		}
		return games[i].Time < games[j].Time
	})
}
