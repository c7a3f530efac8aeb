package pipeline

import (
	"testing"

	"github.com/Alias1177/numbersff/models"
)

var week3 = models.SeasonWeek{Season: 2024, Week: 3}

func sampleGames() []models.Game {
	return []models.Game{
		{GameID: "2024_03_KC_ATL", Season: 2024, Week: 3, GameDay: "2024-09-22", HomeTeam: "ATL", AwayTeam: "KC"},
		{GameID: "2024_02_CIN_KC", Season: 2024, Week: 2, GameDay: "2024-09-15", HomeTeam: "KC", AwayTeam: "CIN"},
	}
}

func sampleDepth() []models.ProviderDepthEntry {
	return []models.ProviderDepthEntry{
		{Season: 2024, Week: 3, PlayerID: "rb1", Position: "RB", DepthPosition: "RB", DepthTeam: 1},
		{Season: 2024, Week: 3, PlayerID: "rb1", Position: "RB", DepthPosition: "RB", DepthTeam: 2},
		// special teams listing is ignored
		{Season: 2024, Week: 3, PlayerID: "rb1", Position: "RB", DepthPosition: "KR", DepthTeam: 3},
		{Season: 2024, Week: 2, PlayerID: "wr1", Position: "WR", DepthPosition: "WR", DepthTeam: 4},
	}
}

func sampleRosters() []models.ProviderRosterEntry {
	return []models.ProviderRosterEntry{
		{Season: 2024, Week: 3, Team: "KC", Position: "RB", Status: "ACT", PlayerID: "rb1", PlayerName: "Runner", BirthDate: "2000-09-01"},
		{Season: 2024, Week: 3, Team: "KC", Position: "FB", Status: "ACT", PlayerID: "fb1", PlayerName: "Blocker"},
		{Season: 2024, Week: 3, Team: "ATL", Position: "WR", Status: "INA", PlayerID: "wr2", PlayerName: "Hurt"},
		{Season: 2024, Week: 3, Team: "ATL", Position: "K", Status: "ACT", PlayerID: "k1", PlayerName: "Kicker"},
		{Season: 2024, Week: 3, Team: "DEN", Position: "TE", Status: "ACT", PlayerID: "te1", PlayerName: "Bye"},
		{Season: 2024, Week: 2, Team: "KC", Position: "WR", Status: "ACT", PlayerID: "wr1", PlayerName: "Other Week"},
	}
}

func TestBuildWeeklyStats(t *testing.T) {
	stats := []models.ProviderPlayerStat{
		{
			PlayerID: "rb1", PlayerDisplayName: "Runner", Position: "RB", RecentTeam: "KC",
			Season: 2024, Week: 3,
			RushingYards:         models.Float(80),
			RushingFumblesLost:   models.Float(1),
			ReceivingFumblesLost: models.Float(1),
		},
		{
			PlayerID: "fb1", Position: "FB", RecentTeam: "ATL", OpponentTeam: "KC",
			Season: 2024, Week: 3,
		},
		{PlayerID: "k1", Position: "K", RecentTeam: "ATL", Season: 2024, Week: 3},
		{PlayerID: "rb1", Position: "RB", RecentTeam: "KC", Season: 2024, Week: 2},
		{PlayerID: "", Position: "RB", RecentTeam: "KC", Season: 2024, Week: 3},
	}

	got := BuildWeeklyStats(week3, stats, sampleGames(), sampleDepth(), sampleRosters())
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2: %+v", len(got), got)
	}

	rb := got[0]
	if rb.Position != "RB" || rb.HomeAway != "away" || rb.Opponent != "ATL" {
		t.Errorf("rb1 = %s %s vs %s", rb.Position, rb.HomeAway, rb.Opponent)
	}
	if rb.Stats.Fumbles == nil || *rb.Stats.Fumbles != 2 {
		t.Errorf("fumbles = %v, want 2", rb.Stats.Fumbles)
	}
	if rb.DepthRanking == nil || *rb.DepthRanking != 2 {
		t.Errorf("depth ranking = %v, want 2", rb.DepthRanking)
	}
	if rb.Age == nil || *rb.Age < 23.99 || *rb.Age > 24.01 {
		t.Errorf("age = %v, want 24", rb.Age)
	}

	fb := got[1]
	if fb.Position != "RB" {
		t.Errorf("fullback position = %q, want RB", fb.Position)
	}
	if fb.HomeAway != "home" || fb.Opponent != "KC" {
		t.Errorf("fb1 = %s vs %s", fb.HomeAway, fb.Opponent)
	}
	if fb.Stats.Fumbles != nil {
		t.Errorf("fumbles with nothing recorded = %v, want nil", *fb.Stats.Fumbles)
	}
	if fb.DepthRanking != nil || fb.Age != nil {
		t.Error("fb1 should have no depth ranking or age")
	}
}

func TestBuildRoster(t *testing.T) {
	got := BuildRoster(week3, sampleRosters(), sampleGames(), sampleDepth())

	want := map[string]struct {
		pos, opp string
	}{
		"rb1": {"RB", "ATL"},
		"fb1": {"RB", "ATL"},
		"te1": {"TE", ""},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d roster entries, want %d: %+v", len(got), len(want), got)
	}
	for _, e := range got {
		w, ok := want[e.PlayerID]
		if !ok {
			t.Errorf("unexpected player %s", e.PlayerID)
			continue
		}
		if e.Position != w.pos || e.Opponent != w.opp {
			t.Errorf("%s = %s vs %q, want %s vs %q", e.PlayerID, e.Position, e.Opponent, w.pos, w.opp)
		}
		if e.Week != 3 || e.Status != ActiveStatus {
			t.Errorf("%s has week %d status %s", e.PlayerID, e.Week, e.Status)
		}
	}
	if got[0].DepthRanking == nil || *got[0].DepthRanking != 2 {
		t.Errorf("rb1 depth = %v, want 2", got[0].DepthRanking)
	}
}

func TestBuildRosterDeduplicates(t *testing.T) {
	rosters := append(sampleRosters(), sampleRosters()[0])
	if got := BuildRoster(week3, rosters, sampleGames(), nil); len(got) != 3 {
		t.Errorf("got %d entries, want 3", len(got))
	}
}

func TestBuildPredictions(t *testing.T) {
	roster := BuildRoster(week3, sampleRosters(), sampleGames(), nil)
	lines := make([]models.StatLine, len(roster))
	lines[0] = models.StatLine{RushingYards: models.Float(70), FantasyPoints: models.Float(99)}

	preds := BuildPredictions(roster, lines)
	if len(preds) != len(roster) {
		t.Fatalf("got %d predictions, want %d", len(preds), len(roster))
	}
	if preds[0].PlayerWeek != roster[0].PlayerWeek || preds[0].Opponent != "ATL" {
		t.Errorf("prediction key %+v", preds[0])
	}
	if preds[0].Stats.FantasyPoints != nil {
		t.Error("regressor fantasy points must be left for scoring")
	}
	if *preds[0].Stats.RushingYards != 70 {
		t.Errorf("rushing yards = %v", *preds[0].Stats.RushingYards)
	}
}

func TestSeasonWeeks(t *testing.T) {
	stats := []models.ProviderPlayerStat{
		{Season: 2024, Week: 2}, {Season: 2024, Week: 1}, {Season: 2024, Week: 2},
	}
	got := seasonWeeks(stats)
	if len(got) != 2 || got[0].Week != 2 || got[1].Week != 1 {
		t.Errorf("seasonWeeks() = %v", got)
	}
}
