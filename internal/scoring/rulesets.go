package scoring

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Alias1177/numbersff/models"
)

// Ruleset pairs a PointsConfig with its stable id and fantasy points table.
type Ruleset struct {
	ID     string
	Table  string
	Config PointsConfig
}

// Built-in ruleset ids
const (
	RulesetFullPPR = "full_ppr"
	RulesetHalfPPR = "half_ppr"
	RulesetDKDFS   = "dk_dfs"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// DefaultRulesets are the rulesets every deployment scores.
func DefaultRulesets() []Ruleset {
	return []Ruleset{
		{ID: RulesetFullPPR, Table: "weekly_predictions_std_full_ppr", Config: STANDARD_PPR},
		{ID: RulesetHalfPPR, Table: "weekly_predictions_std_half_ppr", Config: STANDARD_HALF_PPR},
		{ID: RulesetDKDFS, Table: "weekly_predictions_dk_dfs", Config: DK_DFS},
	}
}

// Registry is a read-only lookup of rulesets by id.
type Registry struct {
	byID  map[string]Ruleset
	order []string
}

// NewRegistry validates ids and table names; both must be unique identifiers.
func NewRegistry(rulesets ...Ruleset) (*Registry, error) {
	r := &Registry{byID: make(map[string]Ruleset, len(rulesets))}
	tables := make(map[string]bool, len(rulesets))
	for _, rs := range rulesets {
		if !identifierPattern.MatchString(rs.ID) {
			return nil, fmt.Errorf("%w: ruleset id %q", ErrInvalidConfig, rs.ID)
		}
		if !identifierPattern.MatchString(rs.Table) {
			return nil, fmt.Errorf("%w: ruleset %s table %q", ErrInvalidConfig, rs.ID, rs.Table)
		}
		if rs.Config.multipliers == nil {
			return nil, fmt.Errorf("%w: ruleset %s has no points config", ErrInvalidConfig, rs.ID)
		}
		if _, dup := r.byID[rs.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate ruleset id %q", ErrInvalidConfig, rs.ID)
		}
		if tables[rs.Table] {
			return nil, fmt.Errorf("%w: duplicate ruleset table %q", ErrInvalidConfig, rs.Table)
		}
		tables[rs.Table] = true
		r.byID[rs.ID] = rs
		r.order = append(r.order, rs.ID)
	}
	return r, nil
}

// Get returns the ruleset registered under id.
func (r *Registry) Get(id string) (Ruleset, bool) {
	rs, ok := r.byID[id]
	return rs, ok
}

// All returns rulesets in registration order.
func (r *Registry) All() []Ruleset {
	out := make([]Ruleset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Info lists ids and tables, sorted by id.
func (r *Registry) Info() []models.RulesetInfo {
	out := make([]models.RulesetInfo, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, models.RulesetInfo{ID: id, Table: r.byID[id].Table})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// rulesetFile is the YAML layout of a custom rulesets file.
type rulesetFile struct {
	Rulesets []struct {
		ID          string             `yaml:"id"`
		Table       string             `yaml:"table"`
		Multipliers map[string]float64 `yaml:"multipliers"`
		Bonuses     map[string]Bonus   `yaml:"bonuses"`
	} `yaml:"rulesets"`
}

// ParseRulesets decodes custom rulesets from YAML.
func ParseRulesets(data []byte) ([]Ruleset, error) {
	var f rulesetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rulesets: %w", err)
	}

	out := make([]Ruleset, 0, len(f.Rulesets))
	for _, raw := range f.Rulesets {
		multipliers := make(map[models.Stat]float64, len(raw.Multipliers))
		for k, v := range raw.Multipliers {
			multipliers[models.Stat(k)] = v
		}
		bonuses := make(map[models.Stat]Bonus, len(raw.Bonuses))
		for k, v := range raw.Bonuses {
			bonuses[models.Stat(k)] = v
		}
		pc, err := NewPointsConfig(multipliers, bonuses)
		if err != nil {
			return nil, fmt.Errorf("ruleset %q: %w", raw.ID, err)
		}
		out = append(out, Ruleset{ID: raw.ID, Table: raw.Table, Config: pc})
	}
	return out, nil
}

// LoadRegistry builds the registry from the defaults plus an optional YAML file.
func LoadRegistry(path string) (*Registry, error) {
	rulesets := DefaultRulesets()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rulesets: %w", err)
		}
		custom, err := ParseRulesets(data)
		if err != nil {
			return nil, err
		}
		rulesets = append(rulesets, custom...)
	}
	return NewRegistry(rulesets...)
}
