package models

// Stat identifies one tracked box-score field.
type Stat string

const (
	FantasyPoints           Stat = "fantasy_points"
	PassingYards            Stat = "passing_yards"
	PassingTDs              Stat = "passing_tds"
	Interceptions           Stat = "interceptions"
	Fumbles                 Stat = "fumbles"
	RushingYards            Stat = "rushing_yards"
	RushingTDs              Stat = "rushing_tds"
	Rushing2PtConversions   Stat = "rushing_2pt_conversions"
	Receptions              Stat = "receptions"
	ReceivingYards          Stat = "receiving_yards"
	ReceivingTDs            Stat = "receiving_tds"
	Receiving2PtConversions Stat = "receiving_2pt_conversions"
	Passing2PtConversions   Stat = "passing_2pt_conversions"
)

// ScoredStats are the raw fields a PointsConfig assigns a multiplier to.
var ScoredStats = []Stat{
	PassingYards,
	PassingTDs,
	Interceptions,
	Fumbles,
	RushingYards,
	RushingTDs,
	Rushing2PtConversions,
	Receptions,
	ReceivingYards,
	ReceivingTDs,
	Receiving2PtConversions,
	Passing2PtConversions,
}

// TrackedStats are the fields reconciled and measured for accuracy.
// The order is the column order used by storage and reports.
var TrackedStats = append([]Stat{FantasyPoints}, ScoredStats...)

// IsScored reports whether s carries a scoring multiplier.
func (s Stat) IsScored() bool {
	for _, scored := range ScoredStats {
		if s == scored {
			return true
		}
	}
	return false
}

// IsTracked reports whether s is part of the closed stat list.
func (s Stat) IsTracked() bool {
	return s == FantasyPoints || s.IsScored()
}

// StatLine is one player's box score for one season/week.
// A nil field means the value was not recorded.
type StatLine struct {
	FantasyPoints           *float64 `json:"fantasy_points"`
	PassingYards            *float64 `json:"passing_yards"`
	PassingTDs              *float64 `json:"passing_tds"`
	Interceptions           *float64 `json:"interceptions"`
	Fumbles                 *float64 `json:"fumbles"`
	RushingYards            *float64 `json:"rushing_yards"`
	RushingTDs              *float64 `json:"rushing_tds"`
	Rushing2PtConversions   *float64 `json:"rushing_2pt_conversions"`
	Receptions              *float64 `json:"receptions"`
	ReceivingYards          *float64 `json:"receiving_yards"`
	ReceivingTDs            *float64 `json:"receiving_tds"`
	Receiving2PtConversions *float64 `json:"receiving_2pt_conversions"`
	Passing2PtConversions   *float64 `json:"passing_2pt_conversions"`
}

// Get returns the raw (possibly nil) value recorded for stat.
func (l StatLine) Get(stat Stat) *float64 {
	if p := l.Field(stat); p != nil {
		return *p
	}
	return nil
}

// Set stores v for stat. Unknown stats are ignored.
func (l *StatLine) Set(stat Stat, v *float64) {
	if p := l.Field(stat); p != nil {
		*p = v
	}
}

// Value returns the value for stat with the null-as-zero policy applied.
func (l StatLine) Value(stat Stat) float64 {
	return Coalesce(l.Get(stat))
}

// Field returns the address of the field backing stat, nil for unknown stats.
// Stores scan columns straight into it.
func (l *StatLine) Field(stat Stat) **float64 {
	switch stat {
	case FantasyPoints:
		return &l.FantasyPoints
	case PassingYards:
		return &l.PassingYards
	case PassingTDs:
		return &l.PassingTDs
	case Interceptions:
		return &l.Interceptions
	case Fumbles:
		return &l.Fumbles
	case RushingYards:
		return &l.RushingYards
	case RushingTDs:
		return &l.RushingTDs
	case Rushing2PtConversions:
		return &l.Rushing2PtConversions
	case Receptions:
		return &l.Receptions
	case ReceivingYards:
		return &l.ReceivingYards
	case ReceivingTDs:
		return &l.ReceivingTDs
	case Receiving2PtConversions:
		return &l.Receiving2PtConversions
	case Passing2PtConversions:
		return &l.Passing2PtConversions
	}
	return nil
}

// Coalesce is the single place where a missing stat becomes zero.
func Coalesce(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
