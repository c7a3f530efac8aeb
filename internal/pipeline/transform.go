package pipeline

import (
	"time"

	"github.com/Alias1177/numbersff/models"
)

// ActiveStatus marks a rostered player who can take the field
const ActiveStatus = "ACT"

// fantasyPosition maps a provider position onto the scored positions.
// Fullbacks are scored as running backs.
func fantasyPosition(pos string) (string, bool) {
	switch pos {
	case "QB", "RB", "WR", "TE":
		return pos, true
	case "FB":
		return "RB", true
	}
	return "", false
}

// teamGames indexes the week's games by both participating teams
func teamGames(games []models.Game, sw models.SeasonWeek) map[string]models.Game {
	out := make(map[string]models.Game)
	for _, g := range games {
		if g.Season != sw.Season || g.Week != sw.Week {
			continue
		}
		out[g.HomeTeam] = g
		out[g.AwayTeam] = g
	}
	return out
}

// depthRankings returns each player's depth chart slot for the week.
// Only rows where the listed position is the player's own position count;
// when a player appears more than once the deepest slot wins.
func depthRankings(depth []models.ProviderDepthEntry, sw models.SeasonWeek) map[string]int {
	out := make(map[string]int)
	for _, d := range depth {
		if d.Season != sw.Season || d.Week != sw.Week {
			continue
		}
		if _, ok := fantasyPosition(d.Position); !ok || d.Position != d.DepthPosition {
			continue
		}
		if cur, ok := out[d.PlayerID]; !ok || d.DepthTeam > cur {
			out[d.PlayerID] = d.DepthTeam
		}
	}
	return out
}

// rosterAges returns each rostered player's age at the start of the season
func rosterAges(rosters []models.ProviderRosterEntry, sw models.SeasonWeek) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range rosters {
		if r.Season != sw.Season || r.Week != sw.Week || r.BirthDate == "" {
			continue
		}
		birth, err := time.Parse(models.GameDayFormat, r.BirthDate)
		if err != nil {
			continue
		}
		out[r.PlayerID] = models.AgeAt(birth, sw.Season)
	}
	return out
}

func sumLost(values ...*float64) *float64 {
	var (
		total    float64
		recorded bool
	)
	for _, v := range values {
		if v != nil {
			total += *v
			recorded = true
		}
	}
	if !recorded {
		return nil
	}
	return &total
}

// BuildWeeklyStats turns the provider's player stats into actual lines for sw.
// Depth and age come from the depth chart and roster when present.
func BuildWeeklyStats(
	sw models.SeasonWeek,
	stats []models.ProviderPlayerStat,
	games []models.Game,
	depth []models.ProviderDepthEntry,
	rosters []models.ProviderRosterEntry,
) []models.WeeklyStats {
	byTeam := teamGames(games, sw)
	ranks := depthRankings(depth, sw)
	ages := rosterAges(rosters, sw)

	var out []models.WeeklyStats
	for _, s := range stats {
		if s.Season != sw.Season || s.Week != sw.Week || s.PlayerID == "" {
			continue
		}
		pos, ok := fantasyPosition(s.Position)
		if !ok {
			continue
		}

		ws := models.WeeklyStats{
			PlayerWeek:       models.PlayerWeek{Season: s.Season, Week: s.Week, PlayerID: s.PlayerID},
			PlayerName:       s.PlayerDisplayName,
			Position:         pos,
			HeadshotURL:      s.HeadshotURL,
			Team:             s.RecentTeam,
			Opponent:         s.OpponentTeam,
			HomeAway:         "away",
			FantasyPointsPPR: s.FantasyPointsPPR,
			Stats: models.StatLine{
				FantasyPoints:           s.FantasyPoints,
				PassingYards:            s.PassingYards,
				PassingTDs:              s.PassingTDs,
				Interceptions:           s.Interceptions,
				Fumbles:                 sumLost(s.SackFumblesLost, s.RushingFumblesLost, s.ReceivingFumblesLost),
				RushingYards:            s.RushingYards,
				RushingTDs:              s.RushingTDs,
				Rushing2PtConversions:   s.Rushing2PtConversions,
				Receptions:              s.Receptions,
				ReceivingYards:          s.ReceivingYards,
				ReceivingTDs:            s.ReceivingTDs,
				Receiving2PtConversions: s.Receiving2PtConversions,
				Passing2PtConversions:   s.Passing2PtConversions,
			},
		}
		if g, ok := byTeam[s.RecentTeam]; ok {
			if g.HomeTeam == s.RecentTeam {
				ws.HomeAway = "home"
			}
			if ws.Opponent == "" {
				ws.Opponent = g.Opponent(s.RecentTeam)
			}
		}
		if rank, ok := ranks[s.PlayerID]; ok {
			r := rank
			ws.DepthRanking = &r
		}
		if age, ok := ages[s.PlayerID]; ok {
			ws.Age = models.Float(age)
		}
		out = append(out, ws)
	}
	return out
}

// BuildRoster keeps active fantasy-position players for sw and attaches
// their opponent, depth slot and age. Teams on bye get an empty opponent.
func BuildRoster(
	sw models.SeasonWeek,
	rosters []models.ProviderRosterEntry,
	games []models.Game,
	depth []models.ProviderDepthEntry,
) []models.RosterEntry {
	byTeam := teamGames(games, sw)
	ranks := depthRankings(depth, sw)
	ages := rosterAges(rosters, sw)

	seen := make(map[string]bool)
	var out []models.RosterEntry
	for _, r := range rosters {
		if r.Season != sw.Season || r.Week != sw.Week || r.Status != ActiveStatus || seen[r.PlayerID] {
			continue
		}
		pos, ok := fantasyPosition(r.Position)
		if !ok {
			continue
		}
		seen[r.PlayerID] = true

		e := models.RosterEntry{
			PlayerWeek: models.PlayerWeek{Season: r.Season, Week: r.Week, PlayerID: r.PlayerID},
			PlayerName: r.PlayerName,
			Position:   pos,
			Status:     r.Status,
			Team:       r.Team,
		}
		if g, ok := byTeam[r.Team]; ok {
			e.Opponent = g.Opponent(r.Team)
		}
		if rank, ok := ranks[r.PlayerID]; ok {
			d := rank
			e.DepthRanking = &d
		}
		if age, ok := ages[r.PlayerID]; ok {
			e.Age = models.Float(age)
		}
		out = append(out, e)
	}
	return out
}

// BuildPredictions pairs roster entries with the regressor output.
// lines must be index-aligned with roster.
func BuildPredictions(roster []models.RosterEntry, lines []models.StatLine) []models.PredictionRecord {
	out := make([]models.PredictionRecord, len(roster))
	for i, r := range roster {
		line := lines[i]
		line.FantasyPoints = nil
		out[i] = models.PredictionRecord{
			PlayerWeek: r.PlayerWeek,
			PlayerName: r.PlayerName,
			Team:       r.Team,
			Opponent:   r.Opponent,
			Position:   r.Position,
			Stats:      line,
		}
	}
	return out
}

// seasonWeeks lists the distinct weeks present in stats, in order of appearance
func seasonWeeks(stats []models.ProviderPlayerStat) []models.SeasonWeek {
	seen := make(map[models.SeasonWeek]bool)
	var out []models.SeasonWeek
	for _, s := range stats {
		sw := models.SeasonWeek{Season: s.Season, Week: s.Week}
		if !seen[sw] {
			seen[sw] = true
			out = append(out, sw)
		}
	}
	return out
}
