package models

// ProviderPlayerStat is one row of the provider's weekly player stats feed.
type ProviderPlayerStat struct {
	PlayerID                string
	PlayerDisplayName       string
	Position                string
	HeadshotURL             string
	RecentTeam              string
	OpponentTeam            string
	Season                  int
	Week                    int
	SeasonType              string
	PassingYards            *float64
	PassingTDs              *float64
	Interceptions           *float64
	SackFumblesLost         *float64
	Passing2PtConversions   *float64
	RushingYards            *float64
	RushingTDs              *float64
	RushingFumblesLost      *float64
	Rushing2PtConversions   *float64
	Receptions              *float64
	ReceivingYards          *float64
	ReceivingTDs            *float64
	ReceivingFumblesLost    *float64
	Receiving2PtConversions *float64
	FantasyPoints           *float64
	FantasyPointsPPR        *float64
}

// ProviderRosterEntry is one row of the provider's weekly roster feed.
type ProviderRosterEntry struct {
	Season     int
	Week       int
	Team       string
	Position   string
	Status     string
	PlayerID   string
	PlayerName string
	BirthDate  string // YYYY-MM-DD, may be empty
}

// ProviderDepthEntry is one row of the provider's depth chart feed.
type ProviderDepthEntry struct {
	Season        int
	Week          int
	ClubCode      string
	PlayerID      string
	Position      string
	DepthPosition string
	DepthTeam     int
}
