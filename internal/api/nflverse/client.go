// Package nflverse reads the public nflverse CSV releases.
package nflverse

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/numbersff/internal/platform/http"
	"github.com/Alias1177/numbersff/models"
)

// Default release locations
const (
	DefaultReleasesURL = "https://github.com/nflverse/nflverse-data/releases/download"
	DefaultGamesURL    = "https://github.com/nflverse/nfldata/raw/master/data/games.csv"
)

// Client is the nflverse data client
type Client struct {
	releasesURL string
	gamesURL    string
	httpClient  *httpClient.Client
	logger      zerolog.Logger
}

// ClientOptions holds options for creating a new nflverse client
type ClientOptions struct {
	ReleasesURL     string
	GamesURL        string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new nflverse client
func NewClient(options ClientOptions) *Client {
	if options.ReleasesURL == "" {
		options.ReleasesURL = DefaultReleasesURL
	}
	if options.GamesURL == "" {
		options.GamesURL = DefaultGamesURL
	}
	// Release files are large; allow a generous timeout
	if options.RequestTimeout == 0 {
		options.RequestTimeout = 2 * time.Minute
	}

	return &Client{
		releasesURL: options.ReleasesURL,
		gamesURL:    options.GamesURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			UserAgent:       "numbersff",
		}),
		logger: log.With().Str("component", "nflverse_client").Logger(),
	}
}

var _ models.StatsProvider = (*Client)(nil)

// fetch downloads url and streams its rows to fn
func (c *Client) fetch(ctx context.Context, url string, required []string, fn func(record) error) error {
	c.logger.Debug().Str("url", url).Msg("Fetching release")

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := readCSV(resp.Body, required, fn); err != nil {
		return fmt.Errorf("parse %s: %w", url, err)
	}
	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// WeeklyPlayerStats returns every player's weekly box score for season
func (c *Client) WeeklyPlayerStats(ctx context.Context, season int) ([]models.ProviderPlayerStat, error) {
	url := fmt.Sprintf("%s/player_stats/player_stats_%d.csv", c.releasesURL, season)

	var out []models.ProviderPlayerStat
	err := c.fetch(ctx, url, []string{"player_id", "season", "week", "position", "recent_team"}, func(r record) error {
		s := models.ProviderPlayerStat{
			PlayerID:          r.str("player_id"),
			PlayerDisplayName: r.str("player_display_name", "player_name"),
			Position:          r.str("position"),
			HeadshotURL:       r.str("headshot_url"),
			RecentTeam:        r.str("recent_team", "team"),
			OpponentTeam:      r.str("opponent_team"),
			SeasonType:        r.str("season_type"),
		}
		var err error
		if s.Season, err = r.intCol("season"); err != nil {
			return err
		}
		if s.Week, err = r.intCol("week"); err != nil {
			return err
		}

		floats := []struct {
			col  string
			dest **float64
		}{
			{"passing_yards", &s.PassingYards},
			{"passing_tds", &s.PassingTDs},
			{"interceptions", &s.Interceptions},
			{"sack_fumbles_lost", &s.SackFumblesLost},
			{"passing_2pt_conversions", &s.Passing2PtConversions},
			{"rushing_yards", &s.RushingYards},
			{"rushing_tds", &s.RushingTDs},
			{"rushing_fumbles_lost", &s.RushingFumblesLost},
			{"rushing_2pt_conversions", &s.Rushing2PtConversions},
			{"receptions", &s.Receptions},
			{"receiving_yards", &s.ReceivingYards},
			{"receiving_tds", &s.ReceivingTDs},
			{"receiving_fumbles_lost", &s.ReceivingFumblesLost},
			{"receiving_2pt_conversions", &s.Receiving2PtConversions},
			{"fantasy_points", &s.FantasyPoints},
			{"fantasy_points_ppr", &s.FantasyPointsPPR},
		}
		for _, f := range floats {
			if *f.dest, err = r.floatCol(f.col); err != nil {
				return err
			}
		}

		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("season", season).Int("count", len(out)).Msg("Fetched player stats")
	return out, nil
}

// WeeklyRosters returns every weekly roster row for season
func (c *Client) WeeklyRosters(ctx context.Context, season int) ([]models.ProviderRosterEntry, error) {
	url := fmt.Sprintf("%s/weekly_rosters/roster_weekly_%d.csv", c.releasesURL, season)

	var out []models.ProviderRosterEntry
	err := c.fetch(ctx, url, []string{"season", "week", "team", "position", "status"}, func(r record) error {
		e := models.ProviderRosterEntry{
			Team:       r.str("team"),
			Position:   r.str("position"),
			Status:     r.str("status"),
			PlayerID:   r.str("gsis_id", "player_id"),
			PlayerName: r.str("full_name", "player_name"),
			BirthDate:  r.str("birth_date"),
		}
		var err error
		if e.Season, err = r.intCol("season"); err != nil {
			return err
		}
		if e.Week, err = r.intCol("week"); err != nil {
			return err
		}
		// rows without a gsis id can't be joined to stats
		if e.PlayerID == "" {
			return nil
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("season", season).Int("count", len(out)).Msg("Fetched weekly rosters")
	return out, nil
}

// DepthCharts returns every depth chart row for season
func (c *Client) DepthCharts(ctx context.Context, season int) ([]models.ProviderDepthEntry, error) {
	url := fmt.Sprintf("%s/depth_charts/depth_charts_%d.csv", c.releasesURL, season)

	var out []models.ProviderDepthEntry
	err := c.fetch(ctx, url, []string{"season", "week", "club_code", "gsis_id", "position", "depth_position", "depth_team"}, func(r record) error {
		e := models.ProviderDepthEntry{
			ClubCode:      r.str("club_code"),
			PlayerID:      r.str("gsis_id"),
			Position:      r.str("position"),
			DepthPosition: r.str("depth_position"),
		}
		// preseason rows have no week
		if r.str("week") == "" || e.PlayerID == "" {
			return nil
		}
		var err error
		if e.Season, err = r.intCol("season"); err != nil {
			return err
		}
		if e.Week, err = r.intCol("week"); err != nil {
			return err
		}
		if e.DepthTeam, err = r.intCol("depth_team"); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("season", season).Int("count", len(out)).Msg("Fetched depth charts")
	return out, nil
}

// Schedules returns the games of season, including the postseason
func (c *Client) Schedules(ctx context.Context, season int) ([]models.Game, error) {
	var out []models.Game
	err := c.fetch(ctx, c.gamesURL, []string{"game_id", "season", "week", "gameday", "home_team", "away_team"}, func(r record) error {
		s, err := r.intCol("season")
		if err != nil {
			return err
		}
		if s != season {
			return nil
		}
		g := models.Game{
			GameID:   r.str("game_id"),
			Season:   s,
			GameDay:  r.str("gameday"),
			GameTime: r.str("gametime"),
			Weekday:  r.str("weekday"),
			HomeTeam: r.str("home_team"),
			AwayTeam: r.str("away_team"),
		}
		if g.Week, err = r.intCol("week"); err != nil {
			return err
		}
		if _, err := time.Parse(models.GameDayFormat, g.GameDay); err != nil {
			return fmt.Errorf("game %s: invalid gameday %q", g.GameID, g.GameDay)
		}
		out = append(out, g)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("season", season).Int("count", len(out)).Msg("Fetched schedule")
	return out, nil
}
